package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/auth"
	"github.com/courcompanion/backend/core/catalog"
	"github.com/courcompanion/backend/core/enroll"
	"github.com/courcompanion/backend/core/order"
	"github.com/courcompanion/backend/core/quiz"
	"github.com/courcompanion/backend/core/review"
	paymentsvc "github.com/courcompanion/backend/services/payment"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		AccountSvc account.ServiceInterface
		AuthSvc    auth.ServiceInterface
		CatalogSvc catalog.ServiceInterface
		QuizSvc    quiz.ServiceInterface
		EnrollSvc  enroll.ServiceInterface
		OrderSvc   order.ServiceInterface
		ReviewSvc  review.ServiceInterface
		Webhooks   paymentsvc.WebhookVerifier
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	appJWTConfig.SigningKey = []byte(conf.SecretKey)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/api/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(v1, s.deps.AuthSvc, s.deps.Validate, conf)
	registerAccountAPI(v1, jwt, s.deps.AccountSvc, s.deps.Validate)
	registerCatalogAPI(v1, jwt, s.deps.CatalogSvc, s.deps.Validate)
	registerQuizAPI(v1, jwt, s.deps.QuizSvc, s.deps.Validate)
	registerEnrollAPI(v1, jwt, s.deps.EnrollSvc, s.deps.Validate)
	registerOrderAPI(v1, jwt, s.deps.OrderSvc, s.deps.Webhooks, s.deps.Logger, s.deps.Validate)
	registerReviewAPI(v1, jwt, s.deps.ReviewSvc, s.deps.Validate)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown triggers a graceful shutdown when an unrecoverable error is caught.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to CourCompanion API!")
}
