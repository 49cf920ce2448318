package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	echoapi "github.com/courcompanion/backend/apps/api/echo"
	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/auth"
	"github.com/courcompanion/backend/core/catalog"
	"github.com/courcompanion/backend/core/enroll"
	"github.com/courcompanion/backend/core/order"
	"github.com/courcompanion/backend/core/quiz"
	"github.com/courcompanion/backend/core/review"
	emailsvc "github.com/courcompanion/backend/services/email"
	filesvc "github.com/courcompanion/backend/services/files"
	logsvc "github.com/courcompanion/backend/services/logger"
	paymentsvc "github.com/courcompanion/backend/services/payment"
	"github.com/courcompanion/backend/storage/database"
	sqlxrepos "github.com/courcompanion/backend/storage/database/sqlx"
	otpstore "github.com/courcompanion/backend/storage/otp"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// refuse to start on blank secrets outside DEV|TEST
	if err := conf.Check(); err != nil {
		logger.Fatal(fmt.Sprintf("invalid configuration: %v", err), err)
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	var otpStore auth.OTPStore
	if conf.Debug {
		otpStore = otpstore.NewInMemStore()
	} else {
		otpStore = otpstore.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		}))
	}

	var payments interface {
		order.PaymentProvider
		paymentsvc.WebhookVerifier
	}
	if conf.Debug {
		payments = paymentsvc.NewDummyService()
	} else {
		payments = paymentsvc.NewStripeService(conf)
	}

	var files core.FileStore
	if conf.Debug {
		files = filesvc.NewLocalService(filepath.Join(conf.WorkDir, "media"))
	} else {
		if files, err = filesvc.NewS3Service(context.Background(), conf); err != nil {
			logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
		}
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	registry := account.NewRegistry(
		sqlxrepos.NewAccountRepository(db, account.RoleAdmin),
		sqlxrepos.NewAccountRepository(db, account.RoleUser),
		sqlxrepos.NewAccountRepository(db, account.RoleCoach),
	)
	acctSvc := account.NewService(registry, files, validate)
	authSvc := auth.NewService(acctSvc, otpStore, mailSvc, conf)
	catalogSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(db), validate)
	quizSvc := quiz.NewService(sqlxrepos.NewQuizRepository(db), validate)
	enrollSvc := enroll.NewService(sqlxrepos.NewEnrollRepository(db), catalogSvc, validate)
	orderSvc := order.NewService(sqlxrepos.NewOrderRepository(db), catalogSvc, acctSvc, payments, mailSvc, validate)
	reviewSvc := review.NewService(sqlxrepos.NewReviewRepository(db), catalogSvc, validate)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			AccountSvc: acctSvc,
			AuthSvc:    authSvc,
			CatalogSvc: catalogSvc,
			QuizSvc:    quizSvc,
			EnrollSvc:  enrollSvc,
			OrderSvc:   orderSvc,
			ReviewSvc:  reviewSvc,
			Webhooks:   payments,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
