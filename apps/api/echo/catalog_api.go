package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/catalog"
)

type catalogApi struct {
	svc      catalog.ServiceInterface
	validate *validator.Validate
}

// registerCatalogAPI mounts the course catalog. Reads are public; category
// and free course writes are admin-only, paid course writes belong to
// coaches (and admins).
func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc catalog.ServiceInterface, validate *validator.Validate) {
	api := catalogApi{svc: svc, validate: validate}
	coachOrAdmin := roleMiddleware(account.RoleCoach, account.RoleAdmin)

	cg := g.Group("/categories")
	cg.GET("", api.queryCategories)
	cg.GET("/:id", api.retrieveCategory)
	cg.POST("", api.createCategory, jwt, adminMiddleware())
	cg.PUT("/:id", api.updateCategory, jwt, adminMiddleware())
	cg.DELETE("/:id", api.destroyCategory, jwt, adminMiddleware())

	fg := g.Group("/free-courses")
	fg.GET("", api.queryFreeCourses)
	fg.GET("/:id", api.retrieveFreeCourse)
	fg.GET("/:id/lessons", api.queryFreeLessons)
	fg.POST("", api.createFreeCourse, jwt, adminMiddleware())
	fg.PUT("/:id", api.updateFreeCourse, jwt, adminMiddleware())
	fg.DELETE("/:id", api.destroyFreeCourse, jwt, adminMiddleware())

	pg := g.Group("/paid-courses")
	pg.GET("", api.queryPaidCourses)
	pg.GET("/:id", api.retrievePaidCourse)
	pg.GET("/:id/lessons", api.queryPaidLessons, jwt)
	pg.POST("", api.createPaidCourse, jwt, coachOrAdmin)
	pg.PUT("/:id", api.updatePaidCourse, jwt, coachOrAdmin)
	pg.DELETE("/:id", api.destroyPaidCourse, jwt, coachOrAdmin)

	flg := g.Group("/free-lessons", jwt)
	flg.GET("/:id", api.retrieveFreeLesson)
	flg.POST("", api.createFreeLesson, adminMiddleware())
	flg.PUT("/:id", api.updateFreeLesson, adminMiddleware())
	flg.DELETE("/:id", api.destroyFreeLesson, adminMiddleware())

	plg := g.Group("/paid-lessons", jwt)
	plg.GET("/:id", api.retrievePaidLesson)
	plg.POST("", api.createPaidLesson, coachOrAdmin)
	plg.PUT("/:id", api.updatePaidLesson, coachOrAdmin)
	plg.DELETE("/:id", api.destroyPaidLesson, coachOrAdmin)
}

func (api *catalogApi) createCategory(ctx echo.Context) error {
	var data catalog.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *catalogApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryAllCategories(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *catalogApi) retrieveCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	cat, err := api.svc.GetCategoryByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) updateCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data catalog.NewCategory
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) destroyCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteCategory(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) createFreeCourse(ctx echo.Context) error {
	var data catalog.NewFreeCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFreeCourse")
	}
	course, err := api.svc.CreateFreeCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *catalogApi) queryFreeCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryAllFreeCourses(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) retrieveFreeCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	course, err := api.svc.GetFreeCourseByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *catalogApi) updateFreeCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data catalog.UpdateFreeCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFreeCourse")
	}
	course, err := api.svc.UpdateFreeCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *catalogApi) destroyFreeCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteFreeCourse(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) createPaidCourse(ctx echo.Context) error {
	var data catalog.NewPaidCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPaidCourse")
	}

	// a coach may only create courses under their own account
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if claims.Role == account.RoleCoach.String() {
		data.CoachID = claims.AccountID()
	}

	course, err := api.svc.CreatePaidCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *catalogApi) queryPaidCourses(ctx echo.Context) error {
	courses, err := api.svc.QueryAllPaidCourses(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) retrievePaidCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	course, err := api.svc.GetPaidCourseByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

// ownsPaidCourse guards coach writes to someone else's course.
func (api *catalogApi) ownsPaidCourse(ctx echo.Context, courseID int) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if claims.Role != account.RoleCoach.String() {
		return nil // admins pass
	}
	course, err := api.svc.GetPaidCourseByID(ctx.Request().Context(), courseID)
	if err != nil {
		return err
	}
	if course.CoachID != claims.AccountID() {
		return errHttpForbidden
	}
	return nil
}

func (api *catalogApi) updatePaidCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.ownsPaidCourse(ctx, id); err != nil {
		return err
	}
	var data catalog.UpdatePaidCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePaidCourse")
	}
	course, err := api.svc.UpdatePaidCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *catalogApi) destroyPaidCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.ownsPaidCourse(ctx, id); err != nil {
		return err
	}
	if err = api.svc.DeletePaidCourse(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) queryFreeLessons(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	lessons, err := api.svc.QueryFreeLessonsByCourse(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *catalogApi) queryPaidLessons(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	lessons, err := api.svc.QueryPaidLessonsByCourse(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *catalogApi) createFreeLesson(ctx echo.Context) error {
	var data catalog.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	lesson, err := api.svc.CreateFreeLesson(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

func (api *catalogApi) retrieveFreeLesson(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	lesson, err := api.svc.GetFreeLessonByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lesson)
}

func (api *catalogApi) updateFreeLesson(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data catalog.UpdateLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	lesson, err := api.svc.UpdateFreeLesson(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lesson)
}

func (api *catalogApi) destroyFreeLesson(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteFreeLesson(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) createPaidLesson(ctx echo.Context) error {
	var data catalog.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := api.ownsPaidCourse(ctx, data.CourseID); err != nil {
		return err
	}
	lesson, err := api.svc.CreatePaidLesson(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

func (api *catalogApi) retrievePaidLesson(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	lesson, err := api.svc.GetPaidLessonByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lesson)
}

func (api *catalogApi) updatePaidLesson(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	lesson, err := api.svc.GetPaidLessonByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err = api.ownsPaidCourse(ctx, lesson.CourseID); err != nil {
		return err
	}
	var data catalog.UpdateLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	lesson, err = api.svc.UpdatePaidLesson(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lesson)
}

func (api *catalogApi) destroyPaidLesson(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	lesson, err := api.svc.GetPaidLessonByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if err = api.ownsPaidCourse(ctx, lesson.CourseID); err != nil {
		return err
	}
	if err = api.svc.DeletePaidLesson(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
