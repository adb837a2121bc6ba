package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

var (
	_ ports.OrderRepository       = (*OrderRepository)(nil)
	_ ports.OrderDetailRepository = (*OrderDetailRepository)(nil)
)

// Store holds orders and their line items so order deletes can cascade.
type Store struct {
	mu           sync.RWMutex
	orders       map[int64]*domain.Order
	details      map[int64]*domain.OrderDetail
	nextOrderID  int64
	nextDetailID int64
}

func NewStore() *Store {
	return &Store{
		orders:  map[int64]*domain.Order{},
		details: map[int64]*domain.OrderDetail{},
	}
}

// Orders returns the order repository view of the store.
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{store: s}
}

// Details returns the line item repository view of the store.
func (s *Store) Details() *OrderDetailRepository {
	return &OrderDetailRepository{store: s}
}

// OrderRepository is an in-memory order persistence adapter.
type OrderRepository struct {
	store *Store
}

// Save stores the order header; line items are managed through OrderDetailRepository.
func (r *OrderRepository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	header := *order
	header.Details = nil
	if header.ID == 0 {
		s.nextOrderID++
		header.ID = s.nextOrderID
	} else if header.ID > s.nextOrderID {
		s.nextOrderID = header.ID
	}
	s.orders[header.ID] = &header
	return s.assembleLocked(&header), nil
}

func (r *OrderRepository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ports.ErrOrderNotFound
	}
	return s.assembleLocked(order), nil
}

func (r *OrderRepository) List(_ context.Context) ([]*domain.Order, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		list = append(list, s.assembleLocked(order))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Delete removes the order and every line item it owns.
func (r *OrderRepository) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return ports.ErrOrderNotFound
	}
	for detailID, detail := range s.details {
		if detail.OrderID == id {
			delete(s.details, detailID)
		}
	}
	delete(s.orders, id)
	return nil
}

func (s *Store) assembleLocked(header *domain.Order) *domain.Order {
	order := *header
	order.Details = nil
	for _, detail := range s.details {
		if detail.OrderID == order.ID {
			order.Details = append(order.Details, detail.Clone())
		}
	}
	sort.Slice(order.Details, func(i, j int) bool { return order.Details[i].ID < order.Details[j].ID })
	return &order
}

// OrderDetailRepository is an in-memory line item persistence adapter.
type OrderDetailRepository struct {
	store *Store
}

// Save stores the line item by product id; the resolved product is not retained.
func (r *OrderDetailRepository) Save(_ context.Context, detail *domain.OrderDetail) (*domain.OrderDetail, error) {
	if detail == nil {
		return nil, errors.New("order detail is nil")
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *detail
	clone.Product = nil
	if clone.ID == 0 {
		s.nextDetailID++
		clone.ID = s.nextDetailID
	} else if clone.ID > s.nextDetailID {
		s.nextDetailID = clone.ID
	}
	s.details[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *OrderDetailRepository) GetByID(_ context.Context, id int64) (*domain.OrderDetail, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	detail, ok := s.details[id]
	if !ok {
		return nil, ports.ErrOrderDetailNotFound
	}
	return detail.Clone(), nil
}

func (r *OrderDetailRepository) List(_ context.Context) ([]*domain.OrderDetail, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*domain.OrderDetail, 0, len(s.details))
	for _, detail := range s.details {
		list = append(list, detail.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *OrderDetailRepository) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.details[id]; !ok {
		return ports.ErrOrderDetailNotFound
	}
	delete(s.details, id)
	return nil
}
