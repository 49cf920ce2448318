package inmemdb

import (
	"context"
	"sort"

	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/enroll"
	"github.com/courcompanion/backend/core/order"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) order.Repository {
	return &orderRepository{db: db}
}

func (repo *orderRepository) CreateOrder(ctx context.Context, ord order.Order) (order.Order, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ord.ID = repo.db.nextID()
	ord.CreatedAt = now()
	ord.UpdatedAt = ord.CreatedAt
	repo.db.orders[ord.ID] = &ord
	return ord, nil
}

func (repo *orderRepository) query(match func(*order.Order) bool) []order.Order {
	var orders []order.Order
	for _, ord := range repo.db.orders {
		if match(ord) {
			orders = append(orders, *ord)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders
}

func (repo *orderRepository) QueryAllOrders(ctx context.Context) ([]order.Order, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(*order.Order) bool { return true }), nil
}

func (repo *orderRepository) QueryOrdersByUser(ctx context.Context, userID int) ([]order.Order, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(ord *order.Order) bool { return ord.UserID == userID }), nil
}

func (repo *orderRepository) QueryOrdersByCoach(ctx context.Context, coachID int) ([]order.Order, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(ord *order.Order) bool {
		course, ok := repo.db.paidCourses[ord.PaidCourseID]
		return ok && course.CoachID == coachID
	}), nil
}

func (repo *orderRepository) GetOrderByID(ctx context.Context, id int) (order.Order, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ord, ok := repo.db.orders[id]; ok {
		return *ord, nil
	}
	return order.Order{}, order.ErrNotFound
}

func (repo *orderRepository) GetOrderByIntentID(ctx context.Context, intentID string) (order.Order, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ord := repo.byIntentID(intentID); ord != nil {
		return *ord, nil
	}
	return order.Order{}, order.ErrNotFound
}

// byIntentID must be called with the lock held.
func (repo *orderRepository) byIntentID(intentID string) *order.Order {
	for _, ord := range repo.db.orders {
		if ord.PaymentIntentID == intentID {
			return ord
		}
	}
	return nil
}

func (repo *orderRepository) MarkPaymentSucceeded(ctx context.Context, intentID string) (order.Order, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ord := repo.byIntentID(intentID)
	if ord == nil || ord.Status != order.StatusPending {
		return order.Order{}, order.ErrNotFound
	}
	ord.Status = order.StatusSuccess
	ord.UpdatedAt = now()

	courseID := ord.PaidCourseID
	enr := enroll.Enrollment{
		ID:           repo.db.nextID(),
		UserID:       ord.UserID,
		PaidCourseID: &courseID,
		Status:       enroll.StatusStarted,
		CreatedAt:    now(),
		UpdatedAt:    now(),
	}
	repo.db.enrollments[enr.ID] = &enr

	if course, ok := repo.db.paidCourses[courseID]; ok {
		course.StudentQuantity++
		course.UpdatedAt = now()
	}
	if usr, ok := repo.db.accounts[account.RoleUser][ord.UserID]; ok {
		usr.StartedCourses++
		usr.UpdatedAt = now()
	}
	return *ord, nil
}

func (repo *orderRepository) MarkPaymentFailed(ctx context.Context, intentID string) (order.Order, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ord := repo.byIntentID(intentID)
	if ord == nil || ord.Status != order.StatusPending {
		return order.Order{}, order.ErrNotFound
	}
	ord.Status = order.StatusFailed
	ord.UpdatedAt = now()
	return *ord, nil
}

func (repo *orderRepository) revenue(year int, match func(*order.Order) bool) []order.MonthlyRevenue {
	byMonth := make(map[int]*order.MonthlyRevenue)
	for _, ord := range repo.db.orders {
		if ord.Status != order.StatusSuccess || ord.CreatedAt.Year() != year || !match(ord) {
			continue
		}
		month := int(ord.CreatedAt.Month())
		rev, ok := byMonth[month]
		if !ok {
			rev = &order.MonthlyRevenue{Year: year, Month: month}
			byMonth[month] = rev
		}
		rev.Revenue += ord.Total
		rev.Orders++
	}

	revs := make([]order.MonthlyRevenue, 0, len(byMonth))
	for _, rev := range byMonth {
		revs = append(revs, *rev)
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i].Month < revs[j].Month })
	return revs
}

func (repo *orderRepository) RevenueByMonth(ctx context.Context, year int) ([]order.MonthlyRevenue, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.revenue(year, func(*order.Order) bool { return true }), nil
}

func (repo *orderRepository) RevenueByMonthForCoach(ctx context.Context, coachID, year int) ([]order.MonthlyRevenue, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.revenue(year, func(ord *order.Order) bool {
		course, ok := repo.db.paidCourses[ord.PaidCourseID]
		return ok && course.CoachID == coachID
	}), nil
}
