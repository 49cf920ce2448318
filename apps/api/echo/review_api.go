package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/review"
)

type reviewApi struct {
	svc      review.ServiceInterface
	validate *validator.Validate
}

func registerReviewAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc review.ServiceInterface, validate *validator.Validate) {
	api := reviewApi{svc: svc, validate: validate}
	userOnly := roleMiddleware(account.RoleUser)

	g.GET("/paid-courses/:id/reviews", api.queryByCourse)

	rg := g.Group("/reviews", jwt, userOnly)
	rg.POST("", api.create)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
}

func (api *reviewApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data review.NewReview
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	rev, err := api.svc.Create(ctx.Request().Context(), claims.AccountID(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rev)
}

func (api *reviewApi) queryByCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	revs, err := api.svc.QueryByCourse(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, revs)
}

func (api *reviewApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data review.UpdateReview
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReview")
	}
	rev, err := api.svc.Update(ctx.Request().Context(), claims.AccountID(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rev)
}

func (api *reviewApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), claims.AccountID(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
