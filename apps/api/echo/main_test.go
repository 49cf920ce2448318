package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/courcompanion/backend/apps/api/echo"
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
	inmemdb "github.com/courcompanion/backend/storage/database/inmem"
	otpstore "github.com/courcompanion/backend/storage/otp"
)

var (
	conf *core.Config
	db   *inmemdb.DB
	app  Server

	registry *account.Registry
	acctSvc  account.ServiceInterface
	authSvc  auth.ServiceInterface

	mailSvc  *emailsvc.ConsoleServiceMock
	otpStore *otpstore.InMemStore
	payments *paymentsvc.DummyService

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}

	otpCodeRegex = regexp.MustCompile(`code is (\d+)`)
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.SecretKey = "s3cr3t-k3y"

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up DB & repos
	db = inmemdb.NewDB()
	registry = account.NewRegistry(
		inmemdb.NewAccountRepository(db, account.RoleAdmin),
		inmemdb.NewAccountRepository(db, account.RoleUser),
		inmemdb.NewAccountRepository(db, account.RoleCoach),
	)

	mediaDir, err := os.MkdirTemp("", "media")
	if err != nil {
		fmt.Printf("os.MkdirTemp(): %v", err)
		os.Exit(1)
	}
	defer os.RemoveAll(mediaDir)

	// set up services
	mailSvc = emailsvc.NewConsoleServiceMock(conf)
	otpStore = otpstore.NewInMemStore()
	payments = paymentsvc.NewDummyService()

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	acctSvc = account.NewService(registry, filesvc.NewLocalService(mediaDir), validate)
	authSvc = auth.NewService(acctSvc, otpStore, mailSvc, conf)
	catalogSvc := catalog.NewService(inmemdb.NewCatalogRepository(db), validate)
	quizSvc := quiz.NewService(inmemdb.NewQuizRepository(db), validate)
	enrollSvc := enroll.NewService(inmemdb.NewEnrollRepository(db), catalogSvc, validate)
	orderSvc := order.NewService(inmemdb.NewOrderRepository(db), catalogSvc, acctSvc, payments, mailSvc, validate)
	reviewSvc := review.NewService(inmemdb.NewReviewRepository(db), catalogSvc, validate)

	// set up server
	app = NewServer(
		ServerDeps{
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

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// createAccount seeds an account directly in the store, bypassing the API.
func createAccount(t *testing.T, role account.Role, first, last, email, pwd string) account.Account {
	t.Helper()
	acct, err := acctSvc.Create(context.Background(), role, account.NewAccount{
		FirstName:       first,
		LastName:        last,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	if err != nil {
		t.Fatalf("createAccount(): %v", err)
	}
	return acct
}

func getToken(t *testing.T, acct account.Account) string {
	t.Helper()
	token, err := GenerateToken(GetAccountClaims(acct, conf))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

// lastOTP extracts the code from the most recent captured email.
func lastOTP(t *testing.T) string {
	t.Helper()
	if len(emailsvc.SentMessages) == 0 {
		t.Fatal("lastOTP(): no messages sent")
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	m := otpCodeRegex.FindStringSubmatch(msg.TextContent)
	if m == nil {
		t.Fatalf("lastOTP(): no code in %q", msg.TextContent)
	}
	return m[1]
}

func itoa(id int) string { return strconv.Itoa(id) }

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
