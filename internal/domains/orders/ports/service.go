package ports

import (
	"context"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

// OrderService exposes order use cases to adapters.
type OrderService interface {
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	// PlaceOrder creates an order and debits stock for every line item atomically.
	PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error)
	// CreateOrder stores an order without line items.
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error)
	UpdateOrder(ctx context.Context, input types.UpdateOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderDetailService exposes line item use cases to adapters.
type OrderDetailService interface {
	ListOrderDetails(ctx context.Context) ([]*domain.OrderDetail, error)
	GetOrderDetail(ctx context.Context, id int64) (*domain.OrderDetail, error)
	CreateOrderDetail(ctx context.Context, input types.OrderDetailInput) (*domain.OrderDetail, error)
	UpdateOrderDetail(ctx context.Context, id int64, input types.OrderDetailInput) (*domain.OrderDetail, error)
	DeleteOrderDetail(ctx context.Context, id int64) error
}
