package application

import (
	"context"
	"errors"

	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"
)

// OrderDetailService manages line items and keeps product stock in step with them.
type OrderDetailService struct {
	collaborators
}

func NewOrderDetailService(
	orders ports.OrderRepository,
	details ports.OrderDetailRepository,
	products catalogports.Repository,
	tx unitofwork.Transactor,
	opts ...Option,
) *OrderDetailService {
	return &OrderDetailService{collaborators: newCollaborators(orders, details, products, tx, opts)}
}

func (s *OrderDetailService) ListOrderDetails(ctx context.Context) ([]*domain.OrderDetail, error) {
	details, err := s.details.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateDetails(ctx, details...); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *OrderDetailService) GetOrderDetail(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	detail, err := s.details.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateDetails(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// CreateOrderDetail debits quantity from the product and records the line item.
func (s *OrderDetailService) CreateOrderDetail(ctx context.Context, input types.OrderDetailInput) (*domain.OrderDetail, error) {
	var created *domain.OrderDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		product, err := s.products.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		order, err := s.orders.GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		detail, err := domain.NewOrderDetail(order.ID, product, input.Quantity)
		if err != nil {
			return err
		}
		if err := product.Debit(input.Quantity); err != nil {
			return err
		}
		if _, err := s.products.Save(ctx, product); err != nil {
			return err
		}
		saved, err := s.details.Save(ctx, detail)
		if err != nil {
			return err
		}
		saved.Product = product
		created = saved
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.LineItemAdded{
		BaseEvent:        domain.BaseEvent{Timestamp: s.now()},
		OrderID:          created.OrderID,
		LineItemSnapshot: snapshot(created),
	})
	return created, nil
}

// UpdateOrderDetail re-points the line item and rebalances stock. The previous
// quantity is credited to the product named in input, which is also the product debited.
func (s *OrderDetailService) UpdateOrderDetail(ctx context.Context, id int64, input types.OrderDetailInput) (*domain.OrderDetail, error) {
	var (
		updated  *domain.OrderDetail
		previous int64
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		detail, err := s.details.GetByID(ctx, id)
		if err != nil {
			return err
		}
		product, err := s.products.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		order, err := s.orders.GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if input.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		previous = detail.Quantity
		if err := product.Rebalance(previous, input.Quantity); err != nil {
			return err
		}
		if err := detail.Repoint(order.ID, product, input.Quantity); err != nil {
			return err
		}
		if _, err := s.products.Save(ctx, product); err != nil {
			return err
		}
		saved, err := s.details.Save(ctx, detail)
		if err != nil {
			return err
		}
		saved.Product = product
		updated = saved
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.LineItemAmended{
		BaseEvent:        domain.BaseEvent{Timestamp: s.now()},
		OrderID:          updated.OrderID,
		PreviousQuantity: previous,
		LineItemSnapshot: snapshot(updated),
	})
	return updated, nil
}

// DeleteOrderDetail credits the line item's quantity back to its product and removes it.
func (s *OrderDetailService) DeleteOrderDetail(ctx context.Context, id int64) error {
	var removed *domain.OrderDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		detail, err := s.details.GetByID(ctx, id)
		if err != nil {
			return err
		}
		product, err := s.products.GetForUpdate(ctx, detail.ProductID)
		switch {
		case errors.Is(err, catalogports.ErrNotFound):
			// nothing to credit
		case err != nil:
			return err
		default:
			if err := product.Credit(detail.Quantity); err != nil {
				return err
			}
			if _, err := s.products.Save(ctx, product); err != nil {
				return err
			}
		}
		if err := s.details.Delete(ctx, id); err != nil {
			return err
		}
		removed = detail
		return nil
	})
	if err != nil {
		return mapError(err)
	}
	s.publish(ctx, domain.LineItemRemoved{
		BaseEvent:        domain.BaseEvent{Timestamp: s.now()},
		OrderID:          removed.OrderID,
		LineItemSnapshot: snapshot(removed),
	})
	return nil
}

var _ ports.OrderDetailService = (*OrderDetailService)(nil)
