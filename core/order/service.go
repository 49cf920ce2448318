package order

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/catalog"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrCourseClosed = errors.New("course is closed for registration")
)

// PaymentProvider abstracts the payment gateway. Amounts are in the smallest
// currency unit.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (id, clientSecret string, err error)
}

type Repository interface {
	CreateOrder(ctx context.Context, ord Order) (Order, error)
	QueryAllOrders(ctx context.Context) ([]Order, error)
	QueryOrdersByUser(ctx context.Context, userID int) ([]Order, error)
	QueryOrdersByCoach(ctx context.Context, coachID int) ([]Order, error)
	GetOrderByID(ctx context.Context, id int) (Order, error)
	GetOrderByIntentID(ctx context.Context, intentID string) (Order, error)

	// MarkPaymentSucceeded flips the order to success, inserts the paid
	// enrollment and bumps the course's student count and the user's started
	// count, all in one transaction.
	MarkPaymentSucceeded(ctx context.Context, intentID string) (Order, error)
	MarkPaymentFailed(ctx context.Context, intentID string) (Order, error)

	RevenueByMonth(ctx context.Context, year int) ([]MonthlyRevenue, error)
	RevenueByMonthForCoach(ctx context.Context, coachID, year int) ([]MonthlyRevenue, error)
}

type ServiceInterface interface {
	CreateIntent(ctx context.Context, userID int, ni NewIntent) (Intent, error)
	Create(ctx context.Context, userID int, no NewOrder) (Order, error)
	QueryAll(ctx context.Context) ([]Order, error)
	QueryByUser(ctx context.Context, userID int) ([]Order, error)
	QueryByCoach(ctx context.Context, coachID int) ([]Order, error)
	GetByID(ctx context.Context, id int) (Order, error)
	HandlePaymentSucceeded(ctx context.Context, intentID string) (Order, error)
	HandlePaymentFailed(ctx context.Context, intentID string) (Order, error)
	RevenueByMonth(ctx context.Context, year int) ([]MonthlyRevenue, error)
	RevenueByMonthForCoach(ctx context.Context, coachID, year int) ([]MonthlyRevenue, error)
}

type Service struct {
	repo     Repository
	catalog  catalog.ServiceInterface
	accounts account.ServiceInterface
	payments PaymentProvider
	mailSvc  core.EmailService
	validate *validator.Validate
	currency string
}

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	catalogSvc catalog.ServiceInterface,
	accountSvc account.ServiceInterface,
	payments PaymentProvider,
	mailSvc core.EmailService,
	validate *validator.Validate,
) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalogSvc,
		accounts: accountSvc,
		payments: payments,
		mailSvc:  mailSvc,
		validate: validate,
		currency: "usd",
	}
}

// CreateIntent opens a payment attempt for a paid course. The course must be
// open for registration.
func (svc *Service) CreateIntent(ctx context.Context, userID int, ni NewIntent) (Intent, error) {
	if err := ni.Validate(svc.validate); err != nil {
		return Intent{}, err
	}
	course, err := svc.catalog.GetPaidCourseByID(ctx, ni.PaidCourseID)
	if err != nil {
		return Intent{}, err
	}
	if course.Status != catalog.StatusOpen {
		return Intent{}, ErrCourseClosed
	}

	amount := int64(course.Price * 100) // smallest currency unit
	meta := map[string]string{
		"user_id":   fmt.Sprintf("%d", userID),
		"course_id": fmt.Sprintf("%d", course.ID),
	}
	id, secret, err := svc.payments.CreateIntent(ctx, amount, svc.currency, meta)
	if err != nil {
		return Intent{}, errors.Wrap(err, "creating payment intent")
	}
	return Intent{ID: id, ClientSecret: secret, Amount: course.Price}, nil
}

// Create records a pending order for a created intent. The order stays
// pending until the gateway's webhook settles it.
func (svc *Service) Create(ctx context.Context, userID int, no NewOrder) (Order, error) {
	if err := no.Validate(svc.validate); err != nil {
		return Order{}, err
	}
	course, err := svc.catalog.GetPaidCourseByID(ctx, no.PaidCourseID)
	if err != nil {
		return Order{}, err
	}
	return svc.repo.CreateOrder(ctx, Order{
		Total:           course.Price,
		Status:          StatusPending,
		PaymentIntentID: no.PaymentIntentID,
		PaidCourseID:    no.PaidCourseID,
		UserID:          userID,
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Order, error) {
	return svc.repo.QueryAllOrders(ctx)
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]Order, error) {
	return svc.repo.QueryOrdersByUser(ctx, userID)
}

func (svc *Service) QueryByCoach(ctx context.Context, coachID int) ([]Order, error) {
	return svc.repo.QueryOrdersByCoach(ctx, coachID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Order, error) {
	return svc.repo.GetOrderByID(ctx, id)
}

// HandlePaymentSucceeded reconciles a settled payment and emails the buyer a
// confirmation. A mail failure does not undo the reconciliation; it is
// reported to the caller.
func (svc *Service) HandlePaymentSucceeded(ctx context.Context, intentID string) (Order, error) {
	ord, err := svc.repo.MarkPaymentSucceeded(ctx, intentID)
	if err != nil {
		return Order{}, err
	}

	usr, err := svc.accounts.GetByID(ctx, account.RoleUser, ord.UserID)
	if err != nil {
		return ord, err
	}
	course, err := svc.catalog.GetPaidCourseByID(ctx, ord.PaidCourseID)
	if err != nil {
		return ord, err
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject: "Your enrollment is confirmed",
		TextContent: fmt.Sprintf(
			"Hi %s,\n\nYour payment of %.2f was received and you are now enrolled in %q. Happy learning!",
			usr.FirstName, ord.Total, course.Name,
		),
	}
	if err = svc.mailSvc.Send(ctx, msg); err != nil {
		return ord, err
	}
	return ord, nil
}

func (svc *Service) HandlePaymentFailed(ctx context.Context, intentID string) (Order, error) {
	return svc.repo.MarkPaymentFailed(ctx, intentID)
}

func (svc *Service) RevenueByMonth(ctx context.Context, year int) ([]MonthlyRevenue, error) {
	return svc.repo.RevenueByMonth(ctx, year)
}

func (svc *Service) RevenueByMonthForCoach(ctx context.Context, coachID, year int) ([]MonthlyRevenue, error) {
	return svc.repo.RevenueByMonthForCoach(ctx, coachID, year)
}
