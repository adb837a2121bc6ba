package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	// AggregateID keys the event for partitioning.
	AggregateID() int64
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// LineItemSnapshot is the stock-relevant view of a line item.
type LineItemSnapshot struct {
	OrderDetailID int64 `json:"orderDetailId"`
	ProductID     int64 `json:"productId"`
	Quantity      int64 `json:"quantity"`
}

// OrderPlaced is raised when an order is created, with or without line items.
type OrderPlaced struct {
	BaseEvent
	OrderID     int64              `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	LineItems   []LineItemSnapshot `json:"lineItems"`
}

func (e OrderPlaced) EventName() string  { return "orders.order.placed" }
func (e OrderPlaced) AggregateID() int64 { return e.OrderID }

// OrderUpdated is raised when status or order number change.
type OrderUpdated struct {
	BaseEvent
	OrderID     int64  `json:"orderId"`
	Status      Status `json:"status"`
	OrderNumber string `json:"orderNumber"`
}

func (e OrderUpdated) EventName() string  { return "orders.order.updated" }
func (e OrderUpdated) AggregateID() int64 { return e.OrderID }

// OrderDeleted is raised when an order and its line items are removed.
// Stock is not returned for the removed line items.
type OrderDeleted struct {
	BaseEvent
	OrderID int64 `json:"orderId"`
}

func (e OrderDeleted) EventName() string  { return "orders.order.deleted" }
func (e OrderDeleted) AggregateID() int64 { return e.OrderID }

// LineItemAdded is raised when stock is debited for a new line item.
type LineItemAdded struct {
	BaseEvent
	OrderID int64 `json:"orderId"`
	LineItemSnapshot
}

func (e LineItemAdded) EventName() string  { return "orders.line_item.added" }
func (e LineItemAdded) AggregateID() int64 { return e.OrderID }

// LineItemAmended is raised when a line item is re-pointed or its quantity changes.
type LineItemAmended struct {
	BaseEvent
	OrderID          int64 `json:"orderId"`
	PreviousQuantity int64 `json:"previousQuantity"`
	LineItemSnapshot
}

func (e LineItemAmended) EventName() string  { return "orders.line_item.amended" }
func (e LineItemAmended) AggregateID() int64 { return e.OrderID }

// LineItemRemoved is raised when a line item is deleted and its stock credited back.
type LineItemRemoved struct {
	BaseEvent
	OrderID int64 `json:"orderId"`
	LineItemSnapshot
}

func (e LineItemRemoved) EventName() string  { return "orders.line_item.removed" }
func (e LineItemRemoved) AggregateID() int64 { return e.OrderID }
