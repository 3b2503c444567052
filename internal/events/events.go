package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cloud-wave-best-zizon/storefront-service/pkg/middleware"
)

type EventType string

const (
	ProductCreated EventType = "product.created"
	ProductUpdated EventType = "product.updated"
	ProductDeleted EventType = "product.deleted"
	CartUpdated    EventType = "cart.updated"
	CartCleared    EventType = "cart.cleared"
)

// Event is the envelope written to the storefront topic. Key is the product
// id for catalog events and the user id for cart events, so that events for
// one entity land on one partition.
type Event struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	Key       string    `json:"key"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

func New(ctx context.Context, t EventType, key string, payload any) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      t,
		Key:       key,
		RequestID: middleware.RequestIDFromContext(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// 상품 삭제 이벤트
type ProductDeletedPayload struct {
	ProductID string `json:"product_id"`
}

// 장바구니 변경 이벤트
type CartChangedPayload struct {
	UserID     string  `json:"user_id"`
	Version    int64   `json:"version"`
	TotalItems int     `json:"total_items"`
	TotalPrice float64 `json:"total_price"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
