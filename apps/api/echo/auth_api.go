package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/auth"
)

type authApi struct {
	svc      auth.ServiceInterface
	validate *validator.Validate
	conf     *core.Config
}

func registerAuthAPI(g *echo.Group, svc auth.ServiceInterface, validate *validator.Validate, conf *core.Config) {
	api := authApi{svc: svc, validate: validate, conf: conf}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/verify-otp", api.verifyOTP)
	ag.POST("/forgot-password", api.forgotPassword)
	ag.POST("/reset-password", api.resetPassword)
	ag.POST("/logout", api.logout)
}

// login checks the credentials and emails an OTP; the session token is only
// minted once the OTP is verified.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	role, err := account.ParseRole(data.Role)
	if err != nil {
		return err
	}
	if err = api.svc.Login(ctx.Request().Context(), role, data.Email, data.Password); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Message: "OTP sent to your email"})
}

func (api *authApi) verifyOTP(ctx echo.Context) error {
	var data VerifyOTPRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyOTPRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	role, err := account.ParseRole(data.Role)
	if err != nil {
		return err
	}
	acct, err := api.svc.VerifyOTP(ctx.Request().Context(), role, data.Email, data.OTP)
	if err != nil {
		return err
	}

	token, err := GenerateToken(GetAccountClaims(acct, api.conf))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token, Account: acct})
}

func (api *authApi) forgotPassword(ctx echo.Context) error {
	var data ForgotPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPasswordRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	role, err := account.ParseRole(data.Role)
	if err != nil {
		return err
	}
	if err = api.svc.RequestPasswordReset(ctx.Request().Context(), role, data.Email); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Message: "OTP sent to your email"})
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data ResetPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPasswordRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	role, err := account.ParseRole(data.Role)
	if err != nil {
		return err
	}
	if err = api.svc.ResetPassword(ctx.Request().Context(), role, data.Email, data.OTP, data.NewPassword); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Message: "password has been reset"})
}

// logout is an acknowledgment only: sessions are stateless JWTs, the client
// discards its token.
func (api *authApi) logout(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, LoginResponse{Message: "logout successful"})
}
