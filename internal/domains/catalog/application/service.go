package application

import (
	"context"

	"github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"
)

// Service orchestrates product catalog use cases.
// Product writes are accepted verbatim; stock rules are enforced by the order flows.
// Updates and deletes share the order flows' transactor so a product is never
// written back after a concurrent delete.
type Service struct {
	repo ports.Repository
	tx   unitofwork.Transactor
}

// NewService wires the catalog service. A nil transactor falls back to an in-process one.
func NewService(repo ports.Repository, tx unitofwork.Transactor) *Service {
	if tx == nil {
		tx = unitofwork.NewLocalTransactor()
	}
	return &Service{repo: repo, tx: tx}
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, input ports.ProductInput) (*domain.Product, error) {
	product := domain.NewProduct(0, input.Name, input.UnitPrice, input.Stock)
	return s.repo.Save(ctx, product)
}

// UpdateProduct replaces name, unit price and stock of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ports.ProductInput) (*domain.Product, error) {
	var updated *domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		product, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		product.Replace(input.Name, input.UnitPrice, input.Stock)
		updated, err = s.repo.Save(ctx, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

var _ ports.Service = (*Service)(nil)
