package orderserver

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money renders as a two-decimal string and accepts either a JSON number or string.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(decimal.Decimal(m).StringFixed(2))
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

// Product - a sellable item with its remaining stock
type Product struct {
	Id        int64  `json:"id"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Stock     int64  `json:"stock"`
}

// ProductWrite - full replacement payload for products
type ProductWrite struct {
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Stock     int64  `json:"stock"`
}

// OrderDetail - a line item
type OrderDetail struct {
	Id        int64    `json:"id"`
	OrderId   int64    `json:"orderId"`
	ProductId int64    `json:"productId"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int64    `json:"quantity"`
	Subtotal  Money    `json:"subtotal"`
}

// OrderDetailWrite - payload for creating or amending a line item
type OrderDetailWrite struct {
	ProductId int64 `json:"productId" binding:"required"`
	OrderId   int64 `json:"orderId" binding:"required"`
	Quantity  int64 `json:"quantity"`
}

// Order - an order with its derived aggregates
type Order struct {
	Id           int64         `json:"id"`
	Date         string        `json:"date"`
	Status       string        `json:"status"`
	OrderNumber  string        `json:"orderNumber"`
	OrderDetails []OrderDetail `json:"orderDetails"`
	ItemCount    int           `json:"itemCount"`
	TotalPrice   Money         `json:"totalPrice"`
}

// LineItem - requested quantity of a product within a new order
type LineItem struct {
	ProductId int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// OrderCreate - a nil OrderDetails creates a bare order
type OrderCreate struct {
	OrderNumber  string      `json:"orderNumber"`
	OrderDetails *[]LineItem `json:"orderDetails"`
}

// OrderUpdate - each field independently overrides the stored value when set
type OrderUpdate struct {
	Status      *string `json:"status"`
	OrderNumber *string `json:"orderNumber"`
}
