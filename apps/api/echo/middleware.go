package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/account"
)

// roleMiddleware allows only authenticated accounts carrying one of the
// given role claims. A token with an unknown role claim is rejected, never
// routed to a default store.
func roleMiddleware(roles ...account.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			role, err := account.ParseRole(claims.Role)
			if err != nil {
				return errHttpForbidden
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(account.RoleAdmin)
}
