package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

// OrderDetailAPI wires HTTP transport with the line item service.
type OrderDetailAPI struct {
	service ordersports.OrderDetailService
}

// NewOrderDetailAPI creates an OrderDetailAPI backed by the provided service.
func NewOrderDetailAPI(service ordersports.OrderDetailService) OrderDetailAPI {
	return OrderDetailAPI{service: service}
}

// Get /order-details
// Lists all line items
func (api *OrderDetailAPI) ListOrderDetails(c *gin.Context) {
	details, err := api.service.ListOrderDetails(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrderDetails(details))
}

// Get /order-details/:id
// Find line item by ID
func (api *OrderDetailAPI) GetOrderDetail(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	detail, err := api.service.GetOrderDetail(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrderDetail(detail))
}

// Post /order-details
// Adds a line item to an existing order, debiting the product's stock
func (api *OrderDetailAPI) CreateOrderDetail(c *gin.Context) {
	var payload OrderDetailWrite
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	detail, err := api.service.CreateOrderDetail(c.Request.Context(), toOrderDetailInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromOrderDetail(detail))
}

// Put /order-details/:id
// Re-points a line item and rebalances stock
func (api *OrderDetailAPI) UpdateOrderDetail(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	var payload OrderDetailWrite
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	detail, err := api.service.UpdateOrderDetail(c.Request.Context(), id, toOrderDetailInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromOrderDetail(detail))
}

// Delete /order-details/:id
// Removes a line item and credits its quantity back to the product
func (api *OrderDetailAPI) DeleteOrderDetail(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	if err := api.service.DeleteOrderDetail(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
