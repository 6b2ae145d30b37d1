package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/quickkart/storefront-gateway/internal/orders"
	"github.com/quickkart/storefront-gateway/pkg/logger"
	"github.com/quickkart/storefront-gateway/pkg/money"
)

const defaultPublishTimeout = 15 * time.Second

// OrderPlaced is the payload emitted after a successful order submission.
type OrderPlaced struct {
	OrderID         string      `json:"orderId"`
	ClientRequestID string      `json:"clientRequestId"`
	SessionID       string      `json:"sessionId"`
	PaymentMode     string      `json:"paymentMode"`
	TotalAmount     money.Paise `json:"totalAmount"`
	ItemCount       int         `json:"itemCount"`
	PlacedAt        time.Time   `json:"placedAt"`
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// Publisher emits order lifecycle events to Pub/Sub. A nil Publisher is inert,
// so eventing stays optional in deployments without a GCP project.
type Publisher struct {
	pub  publisher
	logg *logger.Logger
}

// NewPublisher wraps the orders topic publisher. Pass nil to disable eventing.
func NewPublisher(pub *gcppubsub.Publisher, logg *logger.Logger) *Publisher {
	if pub == nil {
		return nil
	}
	return &Publisher{pub: &gcpPublisher{Publisher: pub}, logg: logg}
}

// OrderPlaced publishes the event. Failures are logged and swallowed: the
// order already exists upstream and eventing must not fail the checkout.
func (p *Publisher) OrderPlaced(ctx context.Context, record *orders.Record, req orders.Request, sessionID string) {
	if p == nil || p.pub == nil || record == nil {
		return
	}

	event := OrderPlaced{
		OrderID:         record.ID,
		ClientRequestID: req.ClientRequestID,
		SessionID:       sessionID,
		PaymentMode:     string(req.PaymentMode),
		TotalAmount:     req.TotalAmount,
		ItemCount:       len(req.Items),
		PlacedAt:        time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logError(ctx, "marshal order-placed event", err)
		return
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": "order.placed",
			"order_id":   record.ID,
			"created_at": event.PlacedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultPublishTimeout)
	defer cancel()
	result := p.pub.Publish(publishCtx, msg)
	if result == nil {
		p.logError(ctx, "publish order-placed event", errors.New("publisher returned nil result"))
		return
	}
	if _, err := result.Get(publishCtx); err != nil {
		p.logError(ctx, "publish order-placed event", err)
	}
}

func (p *Publisher) logError(ctx context.Context, msg string, err error) {
	if p.logg != nil {
		p.logg.Error(ctx, msg, err)
	}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
