package auth_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/auth"
	emailsvc "github.com/courcompanion/backend/services/email"
	filesvc "github.com/courcompanion/backend/services/files"
	inmemdb "github.com/courcompanion/backend/storage/database/inmem"
	otpstore "github.com/courcompanion/backend/storage/otp"
)

var codeRegex = regexp.MustCompile(`code is (\d+)`)

func TestGenerateCode(t *testing.T) {
	for _, digits := range []int{4, 6, 8} {
		code, err := auth.GenerateCode(digits)
		require.NoError(t, err)
		assert.Len(t, code, digits)
		assert.Regexp(t, `^\d+$`, code)
	}

	// non-positive falls back to 6
	code, err := auth.GenerateCode(0)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

type authFixture struct {
	svc      *auth.Service
	accounts account.ServiceInterface
	otp      *otpstore.InMemStore
	mail     *emailsvc.ConsoleServiceMock
	conf     *core.Config
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = true
	conf.OTP.Digits = 6
	conf.OTP.TTL = 5 * time.Minute

	db := inmemdb.NewDB()
	registry := account.NewRegistry(
		inmemdb.NewAccountRepository(db, account.RoleAdmin),
		inmemdb.NewAccountRepository(db, account.RoleUser),
		inmemdb.NewAccountRepository(db, account.RoleCoach),
	)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	accounts := account.NewService(registry, filesvc.NewLocalService(t.TempDir()), validate)
	otp := otpstore.NewInMemStore()
	mail := emailsvc.NewConsoleServiceMock(conf)
	return &authFixture{
		svc:      auth.NewService(accounts, otp, mail, conf),
		accounts: accounts,
		otp:      otp,
		mail:     mail,
		conf:     conf,
	}
}

func (f *authFixture) createAccount(t *testing.T, role account.Role, email, pwd string) account.Account {
	t.Helper()
	acct, err := f.accounts.Create(context.Background(), role, account.NewAccount{
		FirstName:       "Test",
		LastName:        "User",
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	require.NoError(t, err)
	return acct
}

func (f *authFixture) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, emailsvc.SentMessages)
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	m := codeRegex.FindStringSubmatch(msg.TextContent)
	require.NotNil(t, m, "no code in %q", msg.TextContent)
	return m[1]
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.createAccount(t, account.RoleUser, "jdoe@test.cd", "LolC@t123")
	emailsvc.ClearSentMessages()

	t.Run("unknown email", func(t *testing.T) {
		err := f.svc.Login(ctx, account.RoleUser, "nobody@test.cd", "LolC@t123")
		assert.Equal(t, account.ErrNotFound, errors.Cause(err))
	})

	t.Run("role mismatch", func(t *testing.T) {
		err := f.svc.Login(ctx, account.RoleCoach, "jdoe@test.cd", "LolC@t123")
		assert.Equal(t, account.ErrNotFound, errors.Cause(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		err := f.svc.Login(ctx, account.RoleUser, "jdoe@test.cd", "wrong-password")
		assert.Equal(t, auth.ErrInvalidCredentials, errors.Cause(err))
		assert.Empty(t, emailsvc.SentMessages)
	})

	t.Run("success mails a code", func(t *testing.T) {
		require.NoError(t, f.svc.Login(ctx, account.RoleUser, "jdoe@test.cd", "LolC@t123"))
		require.Len(t, emailsvc.SentMessages, 1)
		assert.Equal(t, "Your OTP Code", emailsvc.SentMessages[0].Subject)
		assert.Len(t, f.lastCode(t), f.conf.OTP.Digits)
	})

	t.Run("delivery failure is surfaced", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		f.mail.FailNext = true
		err := f.svc.Login(ctx, account.RoleUser, "jdoe@test.cd", "LolC@t123")
		assert.True(t, core.IsDeliveryError(err))
		assert.Empty(t, emailsvc.SentMessages)
	})
}

func TestService_VerifyOTP(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	acct := f.createAccount(t, account.RoleUser, "jdoe@test.cd", "LolC@t123")
	emailsvc.ClearSentMessages()

	require.NoError(t, f.svc.Login(ctx, account.RoleUser, "jdoe@test.cd", "LolC@t123"))
	code := f.lastCode(t)

	// wrong code does not consume the stored one
	_, err := f.svc.VerifyOTP(ctx, account.RoleUser, "jdoe@test.cd", "000000")
	if code != "000000" {
		assert.Equal(t, auth.ErrInvalidOTP, errors.Cause(err))
	}

	// code is scoped to the role it was issued for
	_, err = f.svc.VerifyOTP(ctx, account.RoleCoach, "jdoe@test.cd", code)
	assert.Equal(t, auth.ErrInvalidOTP, errors.Cause(err))

	got, err := f.svc.VerifyOTP(ctx, account.RoleUser, "JDoe@Test.CD", code)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
	assert.Equal(t, acct.Email, got.Email)

	// single use
	_, err = f.svc.VerifyOTP(ctx, account.RoleUser, "jdoe@test.cd", code)
	assert.Equal(t, auth.ErrInvalidOTP, errors.Cause(err))
}

func TestService_VerifyOTP_expiry(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.createAccount(t, account.RoleUser, "jdoe@test.cd", "LolC@t123")
	emailsvc.ClearSentMessages()

	require.NoError(t, f.svc.Login(ctx, account.RoleUser, "jdoe@test.cd", "LolC@t123"))
	code := f.lastCode(t)

	f.otp.Now = func() time.Time { return time.Now().Add(f.conf.OTP.TTL + time.Minute) }
	_, err := f.svc.VerifyOTP(ctx, account.RoleUser, "jdoe@test.cd", code)
	assert.Equal(t, auth.ErrInvalidOTP, errors.Cause(err))
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.createAccount(t, account.RoleCoach, "coach@test.cd", "LolC@t123")
	emailsvc.ClearSentMessages()

	t.Run("unknown account", func(t *testing.T) {
		err := f.svc.RequestPasswordReset(ctx, account.RoleUser, "coach@test.cd")
		assert.Equal(t, account.ErrNotFound, errors.Cause(err))
	})

	require.NoError(t, f.svc.RequestPasswordReset(ctx, account.RoleCoach, "coach@test.cd"))
	code := f.lastCode(t)

	t.Run("bad code leaves the password", func(t *testing.T) {
		err := f.svc.ResetPassword(ctx, account.RoleCoach, "coach@test.cd", "000000", "N3wP@ssw0rd")
		if code != "000000" {
			assert.Equal(t, auth.ErrInvalidOTP, errors.Cause(err))
		}
		assert.NoError(t, f.svc.Login(ctx, account.RoleCoach, "coach@test.cd", "LolC@t123"))
	})

	require.NoError(t, f.svc.ResetPassword(ctx, account.RoleCoach, "coach@test.cd", code, "N3wP@ssw0rd"))

	t.Run("old password rejected", func(t *testing.T) {
		err := f.svc.Login(ctx, account.RoleCoach, "coach@test.cd", "LolC@t123")
		assert.Equal(t, auth.ErrInvalidCredentials, errors.Cause(err))
	})
	t.Run("new password accepted", func(t *testing.T) {
		assert.NoError(t, f.svc.Login(ctx, account.RoleCoach, "coach@test.cd", "N3wP@ssw0rd"))
	})
}
