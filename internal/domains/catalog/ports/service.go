package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
)

// ProductInput carries the writable product attributes.
type ProductInput struct {
	Name      string
	UnitPrice decimal.Decimal
	Stock     int64
}

// Service exposes product use cases to adapters.
type Service interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}
