package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

const (
	// PlaceOrderActivityName reserves stock and stores an order with its line items.
	PlaceOrderActivityName = "orders.activities.PlaceOrder"
)

// Application error types surfaced to workflow callers. Errors of these types are not retried.
const (
	ErrTypeInvalidInput        = "InvalidInput"
	ErrTypeNotFound            = "NotFound"
	ErrTypeIdempotencyConflict = "IdempotencyConflict"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	orders ports.OrderService
}

// NewActivities wires the order service into the Temporal activities bundle.
// The service must be the core one, not a workflow-backed orchestrator.
func NewActivities(orders ports.OrderService) *Activities {
	return &Activities{orders: orders}
}

// PlaceOrder runs the transactional placement. Retries reuse the idempotency key
// so a placement that committed before a timeout replays instead of debiting twice.
func (a *Activities) PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.orders == nil {
		logger.Error("order placement activity not initialized")
		return nil, errors.New("order placement activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "orderNumber", input.OrderNumber, "lineItems", len(input.LineItems))
	order, err := a.orders.PlaceOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "orderNumber", input.OrderNumber, "error", err)
		return nil, classify(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID)
	return order, nil
}

// classify marks business failures as non-retryable; infrastructure errors keep the retry policy.
func classify(err error) error {
	switch {
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	case errors.Is(err, ports.ErrOrderNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
	default:
		return err
	}
}
