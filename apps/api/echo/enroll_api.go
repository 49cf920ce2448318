package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/enroll"
)

type enrollApi struct {
	svc      enroll.ServiceInterface
	validate *validator.Validate
}

func registerEnrollAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc enroll.ServiceInterface, validate *validator.Validate) {
	api := enrollApi{svc: svc, validate: validate}
	userOnly := roleMiddleware(account.RoleUser)
	coachOrAdmin := roleMiddleware(account.RoleCoach, account.RoleAdmin)

	eg := g.Group("/enrollments", jwt)
	eg.POST("", api.enroll, userOnly)
	eg.GET("/me", api.queryMine, userOnly)
	eg.GET("/course/:id", api.queryByCourse, coachOrAdmin)

	pg := g.Group("/progress", jwt, userOnly)
	pg.POST("", api.completeLesson)
	pg.GET("/me", api.queryMyProgress)
}

// enroll joins the authenticated user to a free course. Paid enrollments
// come from payment reconciliation only.
func (api *enrollApi) enroll(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data enroll.NewEnrollment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	enr, err := api.svc.EnrollFree(ctx.Request().Context(), claims.AccountID(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	enrs, err := api.svc.QueryByUser(ctx.Request().Context(), claims.AccountID())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollApi) queryByCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	enrs, err := api.svc.QueryByPaidCourse(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollApi) completeLesson(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data enroll.NewProgress
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgress")
	}
	prog, err := api.svc.CompleteLesson(ctx.Request().Context(), claims.AccountID(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, prog)
}

func (api *enrollApi) queryMyProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	progress, err := api.svc.ProgressByUser(ctx.Request().Context(), claims.AccountID())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, progress)
}
