package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/account"
)

type accountApi struct {
	svc      account.ServiceInterface
	validate *validator.Validate
	role     account.Role
}

// registerAccountAPI mounts one CRUD surface per role table. Users and
// coaches self-register; admin accounts are created by an existing admin
// (or the CLI).
func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc account.ServiceInterface, validate *validator.Validate) {
	for role, prefix := range map[account.Role]string{
		account.RoleUser:  "/users",
		account.RoleCoach: "/coaches",
		account.RoleAdmin: "/admins",
	} {
		api := accountApi{svc: svc, validate: validate, role: role}
		rg := g.Group(prefix)

		if role == account.RoleAdmin {
			rg.POST("/register", api.create, jwt, adminMiddleware())
		} else {
			rg.POST("/register", api.create)
		}

		ag := rg.Group("", jwt)
		ag.GET("", api.query, adminMiddleware())
		ag.GET("/me", api.retrieveSelf)

		dg := ag.Group("/:id", api.selfOrAdminMiddleware())
		dg.GET("", api.retrieve)
		dg.PUT("", api.update)
		dg.DELETE("", api.destroy, adminMiddleware())
		dg.POST("/password", api.changePassword)
		dg.POST("/avatar", api.uploadAvatar)
	}
}

// selfOrAdminMiddleware lets an account through to its own record; admins
// pass for any record of this role.
func (api *accountApi) selfOrAdminMiddleware() echo.MiddlewareFunc {
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
			if role == account.RoleAdmin {
				return next(ctx)
			}
			id, err := pathID(ctx)
			if err != nil {
				return err
			}
			if role == api.role && claims.AccountID() == id {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

func (api *accountApi) create(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acct, err := api.svc.Create(ctx.Request().Context(), api.role, data)
	if err != nil {
		return errors.Wrap(err, "creating account")
	}
	return ctx.JSON(http.StatusCreated, acct)
}

func (api *accountApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	accts, err := api.svc.QueryAll(ctx.Request().Context(), api.role, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying accounts")
	}
	return ctx.JSON(http.StatusOK, accts)
}

func (api *accountApi) retrieveSelf(ctx echo.Context) error {
	acct, err := getContextAccount(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acct)
}

func (api *accountApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	acct, err := api.svc.GetByID(ctx.Request().Context(), api.role, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acct)
}

func (api *accountApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data account.UpdateAccount
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAccount")
	}

	acct, err := api.svc.Update(ctx.Request().Context(), api.role, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acct)
}

func (api *accountApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), api.role, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) changePassword(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data account.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if err = api.svc.ChangePassword(ctx.Request().Context(), api.role, id, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (api *accountApi) uploadAvatar(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data account.AvatarUpload
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AvatarUpload")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	acct, err := api.svc.UpdateAvatar(ctx.Request().Context(), api.role, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acct)
}
