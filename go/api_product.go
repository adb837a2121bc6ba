package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
)

// ProductAPI wires HTTP transport with the catalog service.
type ProductAPI struct {
	service catalogports.Service
}

// NewProductAPI creates a ProductAPI backed by the provided service.
func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// Get /products
// Lists all products
func (api *ProductAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProducts(products))
}

// Get /products/:id
// Find product by ID
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProduct(product))
}

// Post /products
// Creates a product with the supplied name, price and stock
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload ProductWrite
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := api.service.CreateProduct(c.Request.Context(), toProductInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProduct(product))
}

// Put /products/:id
// Replaces name, price and stock of an existing product
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	var payload ProductWrite
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := api.service.UpdateProduct(c.Request.Context(), id, toProductInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromProduct(product))
}

// Delete /products/:id
// Deletes a product
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	id, ok := bindIDParam(c, idParam)
	if !ok {
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
