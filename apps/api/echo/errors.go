package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/auth"
	"github.com/courcompanion/backend/core/catalog"
	"github.com/courcompanion/backend/core/enroll"
	"github.com/courcompanion/backend/core/order"
	"github.com/courcompanion/backend/core/quiz"
	"github.com/courcompanion/backend/core/review"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// statusFor maps domain errors to HTTP codes. Unknown identities are 404;
// bad passwords, codes and payloads are 400; an undeliverable OTP email is a
// 502 so the caller never believes a code is on its way.
func statusFor(err error) (int, bool) {
	switch err {
	case account.ErrNotFound, catalog.ErrNotFound, quiz.ErrNotFound,
		enroll.ErrNotFound, order.ErrNotFound, review.ErrNotFound:
		return http.StatusNotFound, true
	case auth.ErrInvalidCredentials, auth.ErrInvalidOTP, account.ErrInvalidRole,
		account.ErrEmailExists, catalog.ErrNameExists, enroll.ErrAlreadyEnrolled,
		review.ErrAlreadyReviewed, order.ErrCourseClosed:
		return http.StatusBadRequest, true
	case review.ErrNotOwner:
		return http.StatusForbidden, true
	}
	if core.IsDeliveryError(err) {
		return http.StatusBadGateway, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if c, ok := statusFor(cause); ok {
			code = c
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var acct account.Account
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					acct.ID = claims.AccountID()
					acct.Email = claims.Email
					acct.Role = account.Role(claims.Role)
				}
				logger.Error(msg, errors.Wrap(err, msg), acct)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
