package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-gin-order-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/messaging"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"
)

var fixedNow = time.Date(2024, 6, 12, 15, 4, 5, 0, time.UTC)

type fixture struct {
	products *catalogmemory.Repository
	store    *ordersmemory.Store
	events   *messaging.Recorder
	orders   *OrderService
	details  *OrderDetailService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := catalogmemory.NewRepository()
	store := ordersmemory.NewStore()
	events := messaging.NewRecorder()
	tx := unitofwork.NewLocalTransactor()
	opts := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithEventPublisher(events),
		WithIdempotencyStore(ordersmemory.NewIdempotencyStore()),
	}
	return &fixture{
		products: products,
		store:    store,
		events:   events,
		orders:   NewOrderService(store.Orders(), store.Details(), products, tx, opts...),
		details:  NewOrderDetailService(store.Orders(), store.Details(), products, tx, opts...),
	}
}

func (f *fixture) seedProduct(t *testing.T, name, price string, stock int64) *catalogdomain.Product {
	t.Helper()
	saved, err := f.products.Save(context.Background(), catalogdomain.NewProduct(0, name, decimal.RequireFromString(price), stock))
	require.NoError(t, err)
	return saved
}

func (f *fixture) stockOf(t *testing.T, id int64) int64 {
	t.Helper()
	product, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	list, err := f.store.Orders().List(context.Background())
	require.NoError(t, err)
	return len(list)
}

func TestPlaceOrder_DebitsStockAndDerivesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)

	order, err := f.orders.PlaceOrder(ctx, types.PlaceOrderInput{
		OrderNumber: "A-1",
		LineItems:   []types.LineItemInput{{ProductID: widget.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), order.Date)
	assert.Equal(t, 1, order.ItemCount())
	assert.True(t, decimal.RequireFromString("15.00").Equal(order.TotalPrice()))
	assert.Equal(t, int64(7), f.stockOf(t, widget.ID))

	loaded, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15.00").Equal(loaded.TotalPrice()))

	require.NoError(t, f.details.DeleteOrderDetail(ctx, order.Details[0].ID))
	assert.Equal(t, int64(10), f.stockOf(t, widget.ID))

	emptied, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, emptied.ItemCount())
	assert.True(t, emptied.TotalPrice().IsZero())
}

func TestPlaceOrder_RejectsWholeBatchWhenAnyItemExceedsStock(t *testing.T) {
	f := newFixture(t)
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	bolt := f.seedProduct(t, "Bolt", "0.10", 2)

	_, err := f.orders.PlaceOrder(context.Background(), types.PlaceOrderInput{
		LineItems: []types.LineItemInput{
			{ProductID: widget.ID, Quantity: 4},
			{ProductID: bolt.ID, Quantity: 3},
		},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.stockOf(t, widget.ID))
	assert.Equal(t, int64(2), f.stockOf(t, bolt.ID))
	assert.Zero(t, f.orderCount(t))
}

func TestPlaceOrder_StockBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "1.00", 4)

	_, err := f.orders.PlaceOrder(ctx, types.PlaceOrderInput{LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 5}}})
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)

	_, err = f.orders.PlaceOrder(ctx, types.PlaceOrderInput{LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 4}}})
	require.NoError(t, err)
	assert.Zero(t, f.stockOf(t, widget.ID))
}

func TestPlaceOrder_CombinesDemandForRepeatedProduct(t *testing.T) {
	f := newFixture(t)
	widget := f.seedProduct(t, "Widget", "1.00", 5)

	_, err := f.orders.PlaceOrder(context.Background(), types.PlaceOrderInput{
		LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 3}, {ProductID: widget.ID, Quantity: 3}},
	})
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
	assert.Equal(t, int64(5), f.stockOf(t, widget.ID))
}

func TestPlaceOrder_UnknownProductIsInvalidInput(t *testing.T) {
	f := newFixture(t)
	widget := f.seedProduct(t, "Widget", "1.00", 5)

	_, err := f.orders.PlaceOrder(context.Background(), types.PlaceOrderInput{
		LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 1}, {ProductID: 999, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrUnknownProduct)
	assert.Equal(t, int64(5), f.stockOf(t, widget.ID))
	assert.Zero(t, f.orderCount(t))
}

func TestPlaceOrder_RejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	widget := f.seedProduct(t, "Widget", "1.00", 5)

	_, err := f.orders.PlaceOrder(context.Background(), types.PlaceOrderInput{
		LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 0}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Zero(t, f.orderCount(t))
}

func TestPlaceOrder_EmptyLineItems(t *testing.T) {
	f := newFixture(t)

	order, err := f.orders.PlaceOrder(context.Background(), types.PlaceOrderInput{OrderNumber: "EMPTY"})
	require.NoError(t, err)
	assert.Equal(t, 0, order.ItemCount())
	assert.True(t, order.TotalPrice().IsZero())
}

func TestPlaceOrder_IdempotencyKeyReplaysAndConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "2.00", 10)
	input := types.PlaceOrderInput{
		OrderNumber:    "A-1",
		LineItems:      []types.LineItemInput{{ProductID: widget.ID, Quantity: 2}},
		IdempotencyKey: "retry-1",
	}

	first, err := f.orders.PlaceOrder(ctx, input)
	require.NoError(t, err)
	second, err := f.orders.PlaceOrder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.ItemCount())
	assert.Equal(t, int64(8), f.stockOf(t, widget.ID))
	assert.Equal(t, 1, f.orderCount(t))

	changed := input
	changed.LineItems = []types.LineItemInput{{ProductID: widget.ID, Quantity: 3}}
	_, err = f.orders.PlaceOrder(ctx, changed)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, int64(8), f.stockOf(t, widget.ID))
}

// lateOrderRepo hides orders until their placement is visible, like a row not yet committed.
type lateOrderRepo struct {
	ports.OrderRepository
	hiddenReads int
}

func (r *lateOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if r.hiddenReads > 0 {
		r.hiddenReads--
		return nil, ports.ErrOrderNotFound
	}
	return r.OrderRepository.GetByID(ctx, id)
}

func claimKey(t *testing.T, store *ordersmemory.IdempotencyStore, input types.PlaceOrderInput, orderID int64) {
	t.Helper()
	hash, err := FingerprintPlaceOrder(input)
	require.NoError(t, err)
	_, err = store.Save(context.Background(), ports.IdempotencyRecord{Key: input.IdempotencyKey, RequestHash: hash, OrderID: orderID})
	require.NoError(t, err)
}

func TestPlaceOrder_ReplayWaitsForConcurrentPlacementToCommit(t *testing.T) {
	ctx := context.Background()
	products := catalogmemory.NewRepository()
	store := ordersmemory.NewStore()
	keys := ordersmemory.NewIdempotencyStore()
	existing, err := store.Orders().Save(ctx, domain.NewOrder("A-1", fixedNow))
	require.NoError(t, err)
	input := types.PlaceOrderInput{OrderNumber: "A-1", IdempotencyKey: "in-flight"}
	claimKey(t, keys, input, existing.ID)

	orders := &lateOrderRepo{OrderRepository: store.Orders(), hiddenReads: 1}
	svc := NewOrderService(orders, store.Details(), products, nil,
		WithIdempotencyStore(keys), WithReplayBackoff(time.Millisecond, time.Millisecond))

	replayed, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, replayed.ID)
	assert.Zero(t, orders.hiddenReads)
}

func TestPlaceOrder_ReplayOfUncommittedOrderConflicts(t *testing.T) {
	ctx := context.Background()
	products := catalogmemory.NewRepository()
	widget, err := products.Save(ctx, catalogdomain.NewProduct(0, "Widget", decimal.RequireFromString("1.00"), 5))
	require.NoError(t, err)
	store := ordersmemory.NewStore()
	keys := ordersmemory.NewIdempotencyStore()
	input := types.PlaceOrderInput{
		OrderNumber:    "A-1",
		LineItems:      []types.LineItemInput{{ProductID: widget.ID, Quantity: 2}},
		IdempotencyKey: "in-flight",
	}
	claimKey(t, keys, input, 42)

	svc := NewOrderService(store.Orders(), store.Details(), products, nil,
		WithIdempotencyStore(keys), WithReplayBackoff(time.Millisecond))

	_, err = svc.PlaceOrder(ctx, input)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	reloaded, err := products.GetByID(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), reloaded.Stock)
}

func TestCreateOrder_StartsPendingToday(t *testing.T) {
	f := newFixture(t)

	order, err := f.orders.CreateOrder(context.Background(), types.CreateOrderInput{OrderNumber: "S-1"})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), order.Date)
	assert.Equal(t, "S-1", order.OrderNumber)
	assert.Equal(t, []string{"orders.order.placed"}, f.events.Names())
}

func TestUpdateOrder_OverridesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	placed, err := f.orders.PlaceOrder(ctx, types.PlaceOrderInput{
		OrderNumber: "A-1",
		LineItems:   []types.LineItemInput{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	status := "InProgress"
	updated, err := f.orders.UpdateOrder(ctx, types.UpdateOrderInput{ID: placed.ID, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "A-1", updated.OrderNumber)
	assert.Equal(t, placed.Date, updated.Date)
	assert.Equal(t, 1, updated.ItemCount())
	assert.True(t, decimal.RequireFromString("5.00").Equal(updated.TotalPrice()))
}

func TestUpdateOrder_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{})
	require.NoError(t, err)

	bogus := "Shipped"
	_, err = f.orders.UpdateOrder(ctx, types.UpdateOrderInput{ID: order.ID, Status: &bogus})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.orders.UpdateOrder(ctx, types.UpdateOrderInput{ID: 404})
	require.ErrorIs(t, err, ports.ErrOrderNotFound)
}

func TestDeleteOrder_RemovesDetailsWithoutCreditingStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	order, err := f.orders.PlaceOrder(ctx, types.PlaceOrderInput{
		LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	require.NoError(t, f.orders.DeleteOrder(ctx, order.ID))
	assert.Equal(t, int64(6), f.stockOf(t, widget.ID))

	_, err = f.details.GetOrderDetail(ctx, order.Details[0].ID)
	require.ErrorIs(t, err, ports.ErrOrderDetailNotFound)
	_, err = f.orders.GetOrder(ctx, order.ID)
	require.ErrorIs(t, err, ports.ErrOrderNotFound)
	require.ErrorIs(t, f.orders.DeleteOrder(ctx, order.ID), ports.ErrOrderNotFound)
}

func TestGetOrder_TotalFollowsCurrentProductPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	order, err := f.orders.PlaceOrder(ctx, types.PlaceOrderInput{
		LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	repriced, err := f.products.GetByID(ctx, widget.ID)
	require.NoError(t, err)
	repriced.UnitPrice = decimal.RequireFromString("7.50")
	_, err = f.products.Save(ctx, repriced)
	require.NoError(t, err)

	loaded, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15.00").Equal(loaded.TotalPrice()))
}

func TestOrderService_PublishesCommittedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 1)

	order, err := f.orders.PlaceOrder(ctx, types.PlaceOrderInput{LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 1}}})
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(ctx, types.PlaceOrderInput{LineItems: []types.LineItemInput{{ProductID: widget.ID, Quantity: 1}}})
	require.Error(t, err)
	require.NoError(t, f.orders.DeleteOrder(ctx, order.ID))

	assert.Equal(t, []string{"orders.order.placed", "orders.order.deleted"}, f.events.Names())
	placed, ok := f.events.Events()[0].(domain.OrderPlaced)
	require.True(t, ok)
	require.Len(t, placed.LineItems, 1)
	assert.Equal(t, widget.ID, placed.LineItems[0].ProductID)
}
