package ports

import (
	"context"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

// EventPublisher ships committed domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
