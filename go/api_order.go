package orderserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

// HeaderIdempotencyKey lets clients retry order placement safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderAPI wires HTTP transport with the order service and placement workflows.
type OrderAPI struct {
	service   ordersports.OrderService
	workflows ordersports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI. A nil orchestrator places orders through the service directly.
func NewOrderAPI(service ordersports.OrderService, workflows ordersports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Get /orders
// Lists all orders with their line items
func (api *OrderAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrders(orders))
}

// Get /orders/:id
// Find order by ID
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

// Post /orders
// Places an order with line items (200), or creates a bare order when orderDetails is absent (201)
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload OrderCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	if payload.OrderDetails == nil {
		order, err := api.service.CreateOrder(ctx, types.CreateOrderInput{OrderNumber: payload.OrderNumber})
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, fromOrder(order))
		return
	}
	input := types.PlaceOrderInput{
		OrderNumber:    payload.OrderNumber,
		LineItems:      toLineItems(*payload.OrderDetails),
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	}
	order, err := api.placeOrder(ctx, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

func (api *OrderAPI) placeOrder(ctx context.Context, input types.PlaceOrderInput) (*ordersdomain.Order, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input)
	}
	return api.service.PlaceOrder(ctx, input)
}

// Put /orders/:id
// Overrides status and order number
func (api *OrderAPI) UpdateOrder(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	var payload OrderUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.UpdateOrder(c.Request.Context(), types.UpdateOrderInput{
		ID:          id,
		Status:      payload.Status,
		OrderNumber: payload.OrderNumber,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrder(order))
}

// Delete /orders/:id
// Deletes an order and its line items
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
