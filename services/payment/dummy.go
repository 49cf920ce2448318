package paymentsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/courcompanion/backend/core/order"
)

// DummyService fabricates intents locally and accepts any webhook payload of
// the form {"type": ..., "intent_id": ...} without signature checks.
type DummyService struct {
	counter int
}

var (
	_ order.PaymentProvider = (*DummyService)(nil)
	_ WebhookVerifier       = (*DummyService)(nil)
)

func NewDummyService() *DummyService {
	return &DummyService{}
}

func (svc *DummyService) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, string, error) {
	svc.counter++
	id := fmt.Sprintf("pi_dummy_%d", svc.counter)
	return id, id + "_secret", nil
}

func (svc *DummyService) ParseEvent(payload []byte, sigHeader string) (Event, error) {
	var body struct {
		Type     string `json:"type"`
		IntentID string `json:"intent_id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return Event{}, err
	}
	return Event{Type: body.Type, IntentID: body.IntentID}, nil
}
