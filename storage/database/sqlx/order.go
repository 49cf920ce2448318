package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/enroll"
	"github.com/courcompanion/backend/core/order"
)

type orderRow struct {
	ID              int       `db:"id"`
	Total           float64   `db:"total"`
	Status          string    `db:"status"`
	PaymentIntentID string    `db:"payment_intent_id"`
	PaidCourseID    int       `db:"paid_course_id"`
	UserID          int       `db:"user_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (row orderRow) toCore() order.Order {
	return order.Order{
		ID:              row.ID,
		Total:           row.Total,
		Status:          order.Status(row.Status),
		PaymentIntentID: row.PaymentIntentID,
		PaidCourseID:    row.PaidCourseID,
		UserID:          row.UserID,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

type orderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) order.Repository {
	return &orderRepository{db: db}
}

func (repo *orderRepository) CreateOrder(ctx context.Context, ord order.Order) (order.Order, error) {
	var row orderRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO orders (total, status, payment_intent_id, paid_course_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		ord.Total, ord.Status, ord.PaymentIntentID, ord.PaidCourseID, ord.UserID)
	if err != nil {
		return order.Order{}, errors.Wrap(err, "creating order")
	}
	return row.toCore(), nil
}

func (repo *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]order.Order, error) {
	var rows []orderRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying orders")
	}
	orders := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toCore())
	}
	return orders, nil
}

func (repo *orderRepository) QueryAllOrders(ctx context.Context) ([]order.Order, error) {
	return repo.queryOrders(ctx, `SELECT * FROM orders ORDER BY id DESC`)
}

func (repo *orderRepository) QueryOrdersByUser(ctx context.Context, userID int) ([]order.Order, error) {
	return repo.queryOrders(ctx, `SELECT * FROM orders WHERE user_id = $1 ORDER BY id DESC`, userID)
}

func (repo *orderRepository) QueryOrdersByCoach(ctx context.Context, coachID int) ([]order.Order, error) {
	return repo.queryOrders(ctx, `
		SELECT o.* FROM orders o
		JOIN paid_courses c ON c.id = o.paid_course_id
		WHERE c.coach_id = $1
		ORDER BY o.id DESC`, coachID)
}

func (repo *orderRepository) GetOrderByID(ctx context.Context, id int) (order.Order, error) {
	var row orderRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM orders WHERE id = $1`, id); err != nil {
		return order.Order{}, mapNoRows(err, order.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *orderRepository) GetOrderByIntentID(ctx context.Context, intentID string) (order.Order, error) {
	var row orderRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM orders WHERE payment_intent_id = $1`, intentID)
	if err != nil {
		return order.Order{}, mapNoRows(err, order.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *orderRepository) MarkPaymentSucceeded(ctx context.Context, intentID string) (order.Order, error) {
	var row orderRow
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &row, `
			UPDATE orders SET status = $2, updated_at = now()
			WHERE payment_intent_id = $1 AND status = $3
			RETURNING *`,
			intentID, order.StatusSuccess, order.StatusPending)
		if err != nil {
			return mapNoRows(err, order.ErrNotFound)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO enrollments (user_id, paid_course_id, status)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			row.UserID, row.PaidCourseID, enroll.StatusStarted)
		if err != nil {
			return errors.Wrap(err, "creating enrollment")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE paid_courses SET student_quantity = student_quantity + 1, updated_at = now()
			WHERE id = $1`, row.PaidCourseID)
		if err != nil {
			return errors.Wrap(err, "bumping student count")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users SET started_courses = started_courses + 1, updated_at = now()
			WHERE id = $1`, row.UserID)
		return errors.Wrap(err, "bumping started count")
	})
	if err != nil {
		return order.Order{}, err
	}
	return row.toCore(), nil
}

func (repo *orderRepository) MarkPaymentFailed(ctx context.Context, intentID string) (order.Order, error) {
	var row orderRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE payment_intent_id = $1 AND status = $3
		RETURNING *`,
		intentID, order.StatusFailed, order.StatusPending)
	if err != nil {
		return order.Order{}, mapNoRows(err, order.ErrNotFound)
	}
	return row.toCore(), nil
}

type revenueRow struct {
	Year    int     `db:"year"`
	Month   int     `db:"month"`
	Revenue float64 `db:"revenue"`
	Orders  int     `db:"orders"`
}

func (repo *orderRepository) revenue(ctx context.Context, query string, args ...interface{}) ([]order.MonthlyRevenue, error) {
	var rows []revenueRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying revenue")
	}
	revs := make([]order.MonthlyRevenue, 0, len(rows))
	for _, row := range rows {
		revs = append(revs, order.MonthlyRevenue{Year: row.Year, Month: row.Month, Revenue: row.Revenue, Orders: row.Orders})
	}
	return revs, nil
}

func (repo *orderRepository) RevenueByMonth(ctx context.Context, year int) ([]order.MonthlyRevenue, error) {
	return repo.revenue(ctx, `
		SELECT EXTRACT(YEAR FROM created_at)::int AS year,
		       EXTRACT(MONTH FROM created_at)::int AS month,
		       COALESCE(SUM(total), 0)::float8 AS revenue,
		       COUNT(*)::int AS orders
		FROM orders
		WHERE status = 'success' AND EXTRACT(YEAR FROM created_at) = $1
		GROUP BY 1, 2
		ORDER BY 1, 2`, year)
}

func (repo *orderRepository) RevenueByMonthForCoach(ctx context.Context, coachID, year int) ([]order.MonthlyRevenue, error) {
	return repo.revenue(ctx, `
		SELECT EXTRACT(YEAR FROM o.created_at)::int AS year,
		       EXTRACT(MONTH FROM o.created_at)::int AS month,
		       COALESCE(SUM(o.total), 0)::float8 AS revenue,
		       COUNT(*)::int AS orders
		FROM orders o
		JOIN paid_courses c ON c.id = o.paid_course_id
		WHERE o.status = 'success' AND c.coach_id = $1 AND EXTRACT(YEAR FROM o.created_at) = $2
		GROUP BY 1, 2
		ORDER BY 1, 2`, coachID, year)
}
