package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

var (
	ErrInvalidStatus   = errors.New("order status is invalid")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrUnknownProduct  = errors.New("line item references an unknown product")
)

// ParseStatus accepts only the known status names.
func ParseStatus(raw string) (Status, error) {
	status := Status(raw)
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Order models a customer order and the line items it owns.
type Order struct {
	ID          int64
	Date        time.Time
	Status      Status
	OrderNumber string
	Details     []*OrderDetail
}

// NewOrder starts a pending order dated on the calendar day of placedAt.
func NewOrder(orderNumber string, placedAt time.Time) *Order {
	return &Order{
		Date:        CalendarDate(placedAt),
		Status:      StatusPending,
		OrderNumber: orderNumber,
	}
}

// CalendarDate drops the time of day, keeping the date as seen in t's location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Amend overrides status and order number independently. Nil leaves a field unchanged.
func (o *Order) Amend(status *string, orderNumber *string) error {
	if status != nil {
		parsed, err := ParseStatus(*status)
		if err != nil {
			return err
		}
		o.Status = parsed
	}
	if orderNumber != nil {
		o.OrderNumber = *orderNumber
	}
	return nil
}

// Attach appends a line item owned by this order.
func (o *Order) Attach(detail *OrderDetail) {
	detail.OrderID = o.ID
	o.Details = append(o.Details, detail)
}

// ItemCount is the number of line items.
func (o *Order) ItemCount() int {
	return len(o.Details)
}

// TotalPrice sums every line item at current product prices.
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, detail := range o.Details {
		total = total.Add(detail.Subtotal())
	}
	return total
}

// ProductIDs lists the distinct products referenced by line items.
func (o *Order) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Details))
	ids := make([]int64, 0, len(o.Details))
	for _, detail := range o.Details {
		if _, ok := seen[detail.ProductID]; ok {
			continue
		}
		seen[detail.ProductID] = struct{}{}
		ids = append(ids, detail.ProductID)
	}
	return ids
}

// OrderDetail is a line item: a quantity of one product within one order.
type OrderDetail struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Product   *catalogdomain.Product
	Quantity  int64
}

// NewOrderDetail builds a line item for a resolved product.
func NewOrderDetail(orderID int64, product *catalogdomain.Product, quantity int64) (*OrderDetail, error) {
	if product == nil {
		return nil, ErrUnknownProduct
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &OrderDetail{
		OrderID:   orderID,
		ProductID: product.ID,
		Product:   product,
		Quantity:  quantity,
	}, nil
}

// Repoint moves the line item to another order and product with a new quantity.
func (d *OrderDetail) Repoint(orderID int64, product *catalogdomain.Product, quantity int64) error {
	if product == nil {
		return ErrUnknownProduct
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	d.OrderID = orderID
	d.ProductID = product.ID
	d.Product = product
	d.Quantity = quantity
	return nil
}

// Subtotal prices the line item; an unresolved product contributes nothing.
func (d *OrderDetail) Subtotal() decimal.Decimal {
	if d.Product == nil {
		return decimal.Zero
	}
	return d.Product.LineTotal(d.Quantity)
}

// Clone returns a deep copy of the line item.
func (d *OrderDetail) Clone() *OrderDetail {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Product = d.Product.Clone()
	return &clone
}

// Clone returns a deep copy of the order and its line items.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Details = make([]*OrderDetail, 0, len(o.Details))
	for _, detail := range o.Details {
		clone.Details = append(clone.Details, detail.Clone())
	}
	return &clone
}
