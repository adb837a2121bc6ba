package types

// LineItemInput requests quantity units of a product.
type LineItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// PlaceOrderInput creates an order together with its line items.
type PlaceOrderInput struct {
	OrderNumber string          `json:"orderNumber"`
	LineItems   []LineItemInput `json:"lineItems"`
	// IdempotencyKey is optional; retries with the same key replay the first result.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// CreateOrderInput creates an order without line items.
type CreateOrderInput struct {
	OrderNumber string `json:"orderNumber"`
}

// UpdateOrderInput overrides whichever fields are set.
type UpdateOrderInput struct {
	ID          int64
	Status      *string
	OrderNumber *string
}

// OrderDetailInput identifies a line item by product and order ids.
type OrderDetailInput struct {
	ProductID int64
	OrderID   int64
	Quantity  int64
}
