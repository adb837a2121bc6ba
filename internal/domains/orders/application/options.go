package application

import (
	"context"
	"log/slog"
	"time"

	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"
)

// Option customizes the order services.
type Option func(*collaborators)

// WithIdempotencyStore enables Idempotency-Key handling for order placement.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(c *collaborators) {
		c.idempotency = store
	}
}

// WithEventPublisher publishes domain events after each committed mutation.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(c *collaborators) {
		c.events = publisher
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(c *collaborators) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for post-commit failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *collaborators) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReplayBackoff sets the waits between reads of an order replayed by idempotency key
// that is not visible yet because its placement has not committed.
func WithReplayBackoff(waits ...time.Duration) Option {
	return func(c *collaborators) {
		c.replayBackoff = waits
	}
}

// collaborators holds the dependencies shared by the order and line item services.
type collaborators struct {
	orders      ports.OrderRepository
	details     ports.OrderDetailRepository
	products    catalogports.Repository
	tx          unitofwork.Transactor
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	logger      *slog.Logger
	now         func() time.Time

	replayBackoff []time.Duration
}

func newCollaborators(
	orders ports.OrderRepository,
	details ports.OrderDetailRepository,
	products catalogports.Repository,
	tx unitofwork.Transactor,
	opts []Option,
) collaborators {
	c := collaborators{
		orders:   orders,
		details:  details,
		products: products,
		tx:       tx,
		logger:   slog.Default(),
		now:      time.Now,

		replayBackoff: []time.Duration{50 * time.Millisecond, 200 * time.Millisecond},
	}
	if c.tx == nil {
		c.tx = unitofwork.NewLocalTransactor()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// hydrate resolves the product of every line item across orders in one lookup.
func (c *collaborators) hydrate(ctx context.Context, orders ...*domain.Order) error {
	var details []*domain.OrderDetail
	for _, order := range orders {
		details = append(details, order.Details...)
	}
	return c.hydrateDetails(ctx, details...)
}

// hydrateDetails resolves line item products. Products missing from the store stay nil.
func (c *collaborators) hydrateDetails(ctx context.Context, details ...*domain.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	seen := map[int64]struct{}{}
	ids := make([]int64, 0, len(details))
	for _, detail := range details {
		if _, ok := seen[detail.ProductID]; ok {
			continue
		}
		seen[detail.ProductID] = struct{}{}
		ids = append(ids, detail.ProductID)
	}
	products, err := c.products.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, detail := range details {
		detail.Product = products[detail.ProductID]
	}
	return nil
}

func (c *collaborators) publish(ctx context.Context, events ...domain.Event) {
	if c.events == nil || len(events) == 0 {
		return
	}
	if err := c.events.Publish(ctx, events...); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order events",
			slog.Int("events", len(events)), slog.String("error", err.Error()))
	}
}
