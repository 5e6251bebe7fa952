package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/abiagrow/connect-backend/internal/orders"
	"github.com/abiagrow/connect-backend/pkg/logger"
	"github.com/abiagrow/connect-backend/pkg/pubsub"
)

const publishTimeout = 10 * time.Second

// Notifier fans order lifecycle events out to the orders Pub/Sub topic.
// Publishing is best-effort: a broker failure is logged and swallowed so
// it can never fail the request that produced the event.
type Notifier struct {
	publisher *gcppubsub.Publisher
	logg      *logger.Logger
}

// New wires a notifier on the orders topic.
func New(client *pubsub.Client, logg *logger.Logger) (*Notifier, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	publisher := client.OrdersPublisher()
	if publisher == nil {
		return nil, fmt.Errorf("orders publisher not configured")
	}
	return &Notifier{publisher: publisher, logg: logg}, nil
}

// OrderEvent publishes one lifecycle event. Implements orders.EventPublisher.
func (n *Notifier) OrderEvent(ctx context.Context, event orders.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logg.Error(ctx, "marshal order event", err)
		return
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type":  event.Type,
			"order_id":    event.OrderID.String(),
			"store_id":    event.StoreID.String(),
			"occurred_at": event.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	result := n.publisher.Publish(publishCtx, msg)
	if _, err := result.Get(publishCtx); err != nil {
		fields := map[string]any{
			"event_type": event.Type,
			"order_id":   event.OrderID.String(),
		}
		n.logg.Error(n.logg.WithFields(ctx, fields), "publish order event", err)
	}
}

var _ orders.EventPublisher = (*Notifier)(nil)
