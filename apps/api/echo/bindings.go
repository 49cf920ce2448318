package echoapi

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// LoginRequest carries the role discriminator alongside the credentials; it
// selects the identity store, and an unknown value is rejected outright.
type LoginRequest struct {
	Role     string `json:"role" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

type VerifyOTPRequest struct {
	Role  string `json:"role" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

func (vr *VerifyOTPRequest) Validate(validate *validator.Validate) error {
	vr.Email = core.CleanString(vr.Email, true /* lower */)
	vr.OTP = core.CleanString(vr.OTP)
	return validate.Struct(vr)
}

type ForgotPasswordRequest struct {
	Role  string `json:"role" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (fr *ForgotPasswordRequest) Validate(validate *validator.Validate) error {
	fr.Email = core.CleanString(fr.Email, true /* lower */)
	return validate.Struct(fr)
}

type ResetPasswordRequest struct {
	Role        string `json:"role" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (rr *ResetPasswordRequest) Validate(validate *validator.Validate) error {
	rr.Email = core.CleanString(rr.Email, true /* lower */)
	rr.OTP = core.CleanString(rr.OTP)
	return validate.Struct(rr)
}

type LoginResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	Token   string          `json:"token"`
	Account account.Account `json:"account"`
}
