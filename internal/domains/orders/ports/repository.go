package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderDetailNotFound = errors.New("order detail not found")
)

// OrderRepository persists order headers. Loaded orders carry their line items
// with ProductID set and Product left unresolved.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	// Delete removes the order together with its line items.
	Delete(ctx context.Context, id int64) error
}

// OrderDetailRepository persists line items.
type OrderDetailRepository interface {
	Save(ctx context.Context, detail *domain.OrderDetail) (*domain.OrderDetail, error)
	GetByID(ctx context.Context, id int64) (*domain.OrderDetail, error)
	List(ctx context.Context) ([]*domain.OrderDetail, error)
	Delete(ctx context.Context, id int64) error
}
