package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/quiz"
)

type quizApi struct {
	svc      quiz.ServiceInterface
	validate *validator.Validate
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc quiz.ServiceInterface, validate *validator.Validate) {
	api := quizApi{svc: svc, validate: validate}
	coachOrAdmin := roleMiddleware(account.RoleCoach, account.RoleAdmin)

	qg := g.Group("/questions", jwt)
	qg.POST("", api.create, coachOrAdmin)
	qg.GET("/:id", api.retrieve)
	qg.GET("/:id/answers", api.queryAnswers)
	qg.PUT("/:id", api.update, coachOrAdmin)
	qg.DELETE("/:id", api.destroy, coachOrAdmin)

	g.GET("/free-lessons/:id/questions", api.queryByFreeLesson, jwt)
	g.GET("/paid-lessons/:id/questions", api.queryByPaidLesson, jwt)
	g.POST("/quiz/submit", api.submit, jwt, roleMiddleware(account.RoleUser))
}

func (api *quizApi) create(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	q, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	q, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quizApi) queryAnswers(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	answers, err := api.svc.AnswersFor(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, answers)
}

func (api *quizApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data quiz.UpdateQuestion
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuestion")
	}
	q, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quizApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *quizApi) queryByFreeLesson(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	qs, err := api.svc.QueryByFreeLesson(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qs)
}

func (api *quizApi) queryByPaidLesson(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	qs, err := api.svc.QueryByPaidLesson(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qs)
}

func (api *quizApi) submit(ctx echo.Context) error {
	var data quiz.QuizSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}
	result, err := api.svc.Grade(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, result)
}
