package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	catalogdomain "github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"
)

// OrderService orchestrates order use cases.
type OrderService struct {
	collaborators
}

// NewOrderService wires the order service. A nil transactor falls back to an in-process one.
func NewOrderService(
	orders ports.OrderRepository,
	details ports.OrderDetailRepository,
	products catalogports.Repository,
	tx unitofwork.Transactor,
	opts ...Option,
) *OrderService {
	return &OrderService{collaborators: newCollaborators(orders, details, products, tx, opts)}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, orders...); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// PlaceOrder validates every line item before the first write, then creates the
// order and debits stock inside a single transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	var requestHash string
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintPlaceOrder(input)
		if err != nil {
			return nil, err
		}
		requestHash = hash
	}

	var (
		placed   *domain.Order
		events   []domain.Event
		recorded int64
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if requestHash != "" {
			existing, err := s.idempotency.Get(ctx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.RequestHash != requestHash {
					return ports.ErrIdempotencyConflict
				}
				return replayedOrder{orderID: existing.OrderID}
			}
		}
		order, err := s.placeOrder(ctx, input)
		if err != nil {
			return err
		}
		if requestHash != "" {
			record, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: requestHash, OrderID: order.ID})
			if err != nil {
				return err
			}
			recorded = record.OrderID
			if record.OrderID != order.ID {
				return replayedOrder{orderID: record.OrderID}
			}
		}
		placed = order
		events = []domain.Event{placedEvent(order, s.now())}
		return nil
	})
	var replay replayedOrder
	if errors.As(err, &replay) {
		return s.replayOrder(ctx, key, replay.orderID)
	}
	if err != nil {
		s.releaseKey(ctx, key, recorded)
		return nil, mapError(err)
	}
	s.publish(ctx, events...)
	return placed, nil
}

// replayOrder loads the order a key points at. A key claimed by a placement that has
// not committed yet names an order that is not visible; after the backoff is spent the
// caller gets a conflict and may retry.
func (s *OrderService) replayOrder(ctx context.Context, key string, orderID int64) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	for _, wait := range s.replayBackoff {
		if !errors.Is(err, ports.ErrOrderNotFound) {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		order, err = s.GetOrder(ctx, orderID)
	}
	if errors.Is(err, ports.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: placement for key %q is still in progress", ports.ErrIdempotencyConflict, key)
	}
	return order, err
}

// releaseKey frees a key recorded outside the database transaction that rolled back.
func (s *OrderService) releaseKey(ctx context.Context, key string, orderID int64) {
	releaser, ok := s.idempotency.(ports.IdempotencyReleaser)
	if !ok || orderID == 0 {
		return
	}
	if err := releaser.Release(ctx, key, orderID); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to release idempotency key",
			slog.String("idempotency.key", key), slog.String("error", err.Error()))
	}
}

func (s *OrderService) placeOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error) {
	products, err := s.reserveProducts(ctx, input.LineItems)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Save(ctx, domain.NewOrder(input.OrderNumber, s.now()))
	if err != nil {
		return nil, err
	}
	for _, item := range input.LineItems {
		product := products[item.ProductID]
		if err := product.Debit(item.Quantity); err != nil {
			return nil, err
		}
		if _, err := s.products.Save(ctx, product); err != nil {
			return nil, err
		}
		detail, err := domain.NewOrderDetail(order.ID, product, item.Quantity)
		if err != nil {
			return nil, err
		}
		saved, err := s.details.Save(ctx, detail)
		if err != nil {
			return nil, err
		}
		saved.Product = product
		order.Attach(saved)
	}
	return order, nil
}

// reserveProducts locks every referenced product in id order and checks that the
// combined demand per product fits its stock.
func (s *OrderService) reserveProducts(ctx context.Context, items []types.LineItemInput) (map[int64]*catalogdomain.Product, error) {
	demand := map[int64]int64{}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, domain.ErrInvalidQuantity)
		}
		demand[item.ProductID] += item.Quantity
	}
	ids := make([]int64, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := make(map[int64]*catalogdomain.Product, len(ids))
	for _, id := range ids {
		product, err := s.products.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				return nil, fmt.Errorf("product %d: %w", id, domain.ErrUnknownProduct)
			}
			return nil, err
		}
		if !product.CanFulfil(demand[id]) {
			return nil, fmt.Errorf("product %d: %w", id, catalogdomain.ErrInsufficientStock)
		}
		products[id] = product
	}
	return products, nil
}

// CreateOrder stores a pending order dated today with no line items.
func (s *OrderService) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	order, err := s.orders.Save(ctx, domain.NewOrder(input.OrderNumber, s.now()))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, placedEvent(order, s.now()))
	return order, nil
}

// UpdateOrder overrides status and order number; date and line items are untouched.
func (s *OrderService) UpdateOrder(ctx context.Context, input types.UpdateOrderInput) (*domain.Order, error) {
	var updated *domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if err := order.Amend(input.Status, input.OrderNumber); err != nil {
			return err
		}
		saved, err := s.orders.Save(ctx, order)
		if err != nil {
			return err
		}
		updated = saved
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.hydrate(ctx, updated); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.OrderUpdated{
		BaseEvent:   domain.BaseEvent{Timestamp: s.now()},
		OrderID:     updated.ID,
		Status:      updated.Status,
		OrderNumber: updated.OrderNumber,
	})
	return updated, nil
}

// DeleteOrder removes the order and its line items. Stock held by the line items
// is not returned to the products.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.orders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, domain.OrderDeleted{BaseEvent: domain.BaseEvent{Timestamp: s.now()}, OrderID: id})
	return nil
}

func placedEvent(order *domain.Order, at time.Time) domain.OrderPlaced {
	items := make([]domain.LineItemSnapshot, 0, len(order.Details))
	for _, detail := range order.Details {
		items = append(items, snapshot(detail))
	}
	return domain.OrderPlaced{
		BaseEvent:   domain.BaseEvent{Timestamp: at},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		LineItems:   items,
	}
}

func snapshot(detail *domain.OrderDetail) domain.LineItemSnapshot {
	return domain.LineItemSnapshot{OrderDetailID: detail.ID, ProductID: detail.ProductID, Quantity: detail.Quantity}
}

var _ ports.OrderService = (*OrderService)(nil)
