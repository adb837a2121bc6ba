package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("product not found")

// Repository persists products.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// GetForUpdate loads a product and holds it for the remainder of the surrounding transaction.
	GetForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	// FindByIDs returns the products that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Product, error)
}
