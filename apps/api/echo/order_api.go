package echoapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/order"
	paymentsvc "github.com/courcompanion/backend/services/payment"
)

type orderApi struct {
	svc      order.ServiceInterface
	webhooks paymentsvc.WebhookVerifier
	logger   core.Logger
	validate *validator.Validate
}

func registerOrderAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc order.ServiceInterface,
	webhooks paymentsvc.WebhookVerifier,
	logger core.Logger,
	validate *validator.Validate,
) {
	api := orderApi{svc: svc, webhooks: webhooks, logger: logger, validate: validate}
	userOnly := roleMiddleware(account.RoleUser)
	coachOnly := roleMiddleware(account.RoleCoach)

	og := g.Group("/orders")
	og.POST("/webhook", api.webhook) // authenticated by gateway signature
	og.POST("/intent", api.createIntent, jwt, userOnly)
	og.POST("", api.create, jwt, userOnly)
	og.GET("", api.queryAll, jwt, adminMiddleware())
	og.GET("/me", api.queryMine, jwt, userOnly)
	og.GET("/coach", api.queryByCoach, jwt, coachOnly)
	og.GET("/:id", api.retrieve, jwt, adminMiddleware())

	rg := g.Group("/revenue", jwt)
	rg.GET("", api.revenue, adminMiddleware())
	rg.GET("/coach", api.coachRevenue, coachOnly)
}

func (api *orderApi) createIntent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data order.NewIntent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIntent")
	}
	intent, err := api.svc.CreateIntent(ctx.Request().Context(), claims.AccountID(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, intent)
}

func (api *orderApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data order.NewOrder
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOrder")
	}
	ord, err := api.svc.Create(ctx.Request().Context(), claims.AccountID(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ord)
}

// webhook settles a pending order from a gateway notification. The payload
// signature is verified before anything is trusted. Reconciliation errors
// surface as 4xx/5xx so the gateway retries; an unknown event type is
// acknowledged and skipped.
func (api *orderApi) webhook(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading webhook payload")
	}
	event, err := api.webhooks.ParseEvent(payload, ctx.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
	}

	switch event.Type {
	case paymentsvc.EventPaymentSucceeded:
		ord, err := api.svc.HandlePaymentSucceeded(ctx.Request().Context(), event.IntentID)
		if err != nil {
			if core.IsDeliveryError(errors.Cause(err)) {
				// order is settled; only the confirmation email failed
				api.logger.Error("order confirmation email failed", err)
				break
			}
			return err
		}
		api.logger.Info("order settled", map[string]interface{}{"order_id": ord.ID})
	case paymentsvc.EventPaymentFailed:
		if _, err := api.svc.HandlePaymentFailed(ctx.Request().Context(), event.IntentID); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"received": true})
}

func (api *orderApi) queryAll(ctx echo.Context) error {
	orders, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, orders)
}

func (api *orderApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	orders, err := api.svc.QueryByUser(ctx.Request().Context(), claims.AccountID())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, orders)
}

func (api *orderApi) queryByCoach(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	orders, err := api.svc.QueryByCoach(ctx.Request().Context(), claims.AccountID())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, orders)
}

func (api *orderApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	ord, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ord)
}

func yearParam(ctx echo.Context) int {
	if y, err := strconv.Atoi(ctx.QueryParam("year")); err == nil {
		return y
	}
	return time.Now().UTC().Year()
}

func (api *orderApi) revenue(ctx echo.Context) error {
	revs, err := api.svc.RevenueByMonth(ctx.Request().Context(), yearParam(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, revs)
}

func (api *orderApi) coachRevenue(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	revs, err := api.svc.RevenueByMonthForCoach(ctx.Request().Context(), claims.AccountID(), yearParam(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, revs)
}
