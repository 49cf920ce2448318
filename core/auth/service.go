package auth

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	ServiceInterface interface {
		Login(ctx context.Context, role account.Role, email, password string) error
		VerifyOTP(ctx context.Context, role account.Role, email, code string) (account.Account, error)
		RequestPasswordReset(ctx context.Context, role account.Role, email string) error
		ResetPassword(ctx context.Context, role account.Role, email, code, newPassword string) error
	}

	// Service drives the credential + OTP login flow:
	// credential check → code issuance → timed verification window → the API
	// layer mints the session token from the returned account.
	Service struct {
		accounts account.ServiceInterface
		otp      OTPStore
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(accounts account.ServiceInterface, otp OTPStore, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		accounts: accounts,
		otp:      otp,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

// Login verifies the role+email+password triple and, on success, issues and
// emails a fresh OTP. The account is never returned here; the caller only
// learns that a code is on its way.
func (svc *Service) Login(ctx context.Context, role account.Role, email, password string) error {
	acct, err := svc.accounts.GetByEmail(ctx, role, email)
	if err != nil {
		return err // account.ErrNotFound or a store error
	}
	if err = acct.CheckPassword(password); err != nil {
		return ErrInvalidCredentials
	}
	return svc.sendOTP(ctx, acct)
}

// otpKey scopes a stored code to a single identity: the same address under
// another role keeps its own code.
func otpKey(role account.Role, email string) string {
	return string(role) + ":" + email
}

// VerifyOTP consumes the code and resolves the authenticated account.
func (svc *Service) VerifyOTP(ctx context.Context, role account.Role, email, code string) (account.Account, error) {
	email = core.CleanString(email, true /* lower */)
	if err := svc.otp.VerifyAndConsume(ctx, otpKey(role, email), code); err != nil {
		return account.Account{}, err
	}
	acct, err := svc.accounts.GetByEmail(ctx, role, email)
	if err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

// RequestPasswordReset mirrors Login without the password check.
func (svc *Service) RequestPasswordReset(ctx context.Context, role account.Role, email string) error {
	acct, err := svc.accounts.GetByEmail(ctx, role, email)
	if err != nil {
		return err
	}
	return svc.sendOTP(ctx, acct)
}

// ResetPassword consumes the code and overwrites the stored password hash.
func (svc *Service) ResetPassword(ctx context.Context, role account.Role, email, code, newPassword string) error {
	email = core.CleanString(email, true /* lower */)
	if err := svc.otp.VerifyAndConsume(ctx, otpKey(role, email), code); err != nil {
		return err
	}
	return svc.accounts.SetPassword(ctx, role, email, newPassword)
}

// sendOTP issues a new code (invalidating any prior one for this email) and
// delivers it synchronously. A delivery failure invalidates nothing: the code
// stays stored until its TTL, but the caller gets a *core.DeliveryError and
// must not report "OTP sent".
func (svc *Service) sendOTP(ctx context.Context, acct account.Account) error {
	code, err := GenerateCode(svc.conf.OTP.Digits)
	if err != nil {
		return err
	}
	if err = svc.otp.Put(ctx, otpKey(acct.Role, acct.Email), code, svc.conf.OTP.TTL); err != nil {
		return errors.Wrap(err, "storing OTP code")
	}

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: acct.FullName(), Address: acct.Email}},
		Subject: "Your OTP Code",
		TextContent: fmt.Sprintf(
			"Your OTP code is %s. It is valid for %d minutes.",
			code, int(svc.conf.OTP.TTL.Minutes()),
		),
	}
	return svc.mailSvc.Send(ctx, msg)
}
