// Package paymentsvc implements the payment gateway port on Stripe, plus a
// dummy gateway for tests and local runs.
package paymentsvc

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/order"
)

// Gateway event types surfaced to the webhook handler.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Event is a gateway notification reduced to what reconciliation needs.
type Event struct {
	Type     string
	IntentID string
}

// WebhookVerifier authenticates and parses a raw gateway notification.
type WebhookVerifier interface {
	ParseEvent(payload []byte, sigHeader string) (Event, error)
}

type stripeService struct {
	api           *client.API
	webhookSecret string
}

var (
	_ order.PaymentProvider = (*stripeService)(nil)
	_ WebhookVerifier       = (*stripeService)(nil)
)

func NewStripeService(conf *core.Config) *stripeService {
	api := &client.API{}
	api.Init(conf.Stripe.SecretKey, nil)
	return &stripeService{api: api, webhookSecret: conf.Stripe.WebhookSecret}
}

func (svc *stripeService) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := svc.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", errors.Wrap(err, "creating payment intent")
	}
	return pi.ID, pi.ClientSecret, nil
}

// ParseEvent checks the webhook signature before trusting the payload.
func (svc *stripeService) ParseEvent(payload []byte, sigHeader string) (Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, svc.webhookSecret)
	if err != nil {
		return Event{}, errors.Wrap(err, "verifying webhook signature")
	}

	// Data.Raw holds the PaymentIntent for the events we subscribe to
	var pi stripe.PaymentIntent
	if err = json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return Event{}, errors.Wrap(err, "parsing webhook payload")
	}
	return Event{Type: string(event.Type), IntentID: pi.ID}, nil
}
