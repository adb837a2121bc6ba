package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

func TestCreateOrderDetail_DebitsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	order, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{})
	require.NoError(t, err)

	detail, err := f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: 10})
	require.NoError(t, err)
	assert.NotZero(t, detail.ID)
	assert.Equal(t, order.ID, detail.OrderID)
	require.NotNil(t, detail.Product)
	assert.Zero(t, detail.Product.Stock)
	assert.Zero(t, f.stockOf(t, widget.ID))

	_, err = f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
}

func TestCreateOrderDetail_ResolutionFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	order, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{})
	require.NoError(t, err)

	_, err = f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: 999, OrderID: order.ID, Quantity: 1})
	require.ErrorIs(t, err, catalogports.ErrNotFound)

	_, err = f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: widget.ID, OrderID: 999, Quantity: 1})
	require.ErrorIs(t, err, ports.ErrOrderNotFound)

	_, err = f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: -2})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, int64(10), f.stockOf(t, widget.ID))
}

func TestUpdateOrderDetail_ConservesStockForSameProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	order, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{})
	require.NoError(t, err)
	detail, err := f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: 3})
	require.NoError(t, err)

	for _, qty := range []int64{5, 1, 10} {
		updated, err := f.details.UpdateOrderDetail(ctx, detail.ID, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: qty})
		require.NoError(t, err)
		assert.Equal(t, qty, updated.Quantity)
		assert.Equal(t, int64(10), f.stockOf(t, widget.ID)+qty)
	}

	_, err = f.details.UpdateOrderDetail(ctx, detail.ID, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: 11})
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
	assert.Zero(t, f.stockOf(t, widget.ID))
}

func TestUpdateOrderDetail_RepointCreditsNewProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	gadget := f.seedProduct(t, "Gadget", "1.00", 10)
	first, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{OrderNumber: "first"})
	require.NoError(t, err)
	second, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{OrderNumber: "second"})
	require.NoError(t, err)
	detail, err := f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: widget.ID, OrderID: first.ID, Quantity: 3})
	require.NoError(t, err)

	updated, err := f.details.UpdateOrderDetail(ctx, detail.ID, types.OrderDetailInput{ProductID: gadget.ID, OrderID: second.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, gadget.ID, updated.ProductID)
	assert.Equal(t, second.ID, updated.OrderID)
	assert.Equal(t, int64(7), f.stockOf(t, widget.ID))
	assert.Equal(t, int64(11), f.stockOf(t, gadget.ID))

	moved, err := f.orders.GetOrder(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.ItemCount())
}

func TestUpdateOrderDetail_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	order, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{})
	require.NoError(t, err)

	_, err = f.details.UpdateOrderDetail(ctx, 77, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: 1})
	require.ErrorIs(t, err, ports.ErrOrderDetailNotFound)
}

func TestDeleteOrderDetail_CreditsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	order, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{})
	require.NoError(t, err)
	detail, err := f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: 4})
	require.NoError(t, err)

	require.NoError(t, f.details.DeleteOrderDetail(ctx, detail.ID))
	assert.Equal(t, int64(10), f.stockOf(t, widget.ID))
	require.ErrorIs(t, f.details.DeleteOrderDetail(ctx, detail.ID), ports.ErrOrderDetailNotFound)

	assert.Equal(t, []string{
		"orders.order.placed",
		"orders.line_item.added",
		"orders.line_item.removed",
	}, f.events.Names())
}

func TestListOrderDetails_ResolvesProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	widget := f.seedProduct(t, "Widget", "5.00", 10)
	order, err := f.orders.CreateOrder(ctx, types.CreateOrderInput{})
	require.NoError(t, err)
	_, err = f.details.CreateOrderDetail(ctx, types.OrderDetailInput{ProductID: widget.ID, OrderID: order.ID, Quantity: 1})
	require.NoError(t, err)

	list, err := f.details.ListOrderDetails(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Product)
	assert.Equal(t, "Widget", list[0].Product.Name)
}
