package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNegativeQuantity  = errors.New("stock adjustment must not be negative")
)

// Product models a sellable item and its on-hand stock.
type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
	Stock     int64
}

// NewProduct constructs a Product. Values are stored verbatim.
func NewProduct(id int64, name string, unitPrice decimal.Decimal, stock int64) *Product {
	return &Product{ID: id, Name: name, UnitPrice: unitPrice, Stock: stock}
}

// Replace overwrites every mutable attribute.
func (p *Product) Replace(name string, unitPrice decimal.Decimal, stock int64) {
	p.Name = name
	p.UnitPrice = unitPrice
	p.Stock = stock
}

// CanFulfil reports whether quantity units are on hand.
func (p *Product) CanFulfil(quantity int64) bool {
	return quantity <= p.Stock
}

// Debit removes quantity units from stock.
func (p *Product) Debit(quantity int64) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	if !p.CanFulfil(quantity) {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

// Credit returns quantity units to stock.
func (p *Product) Credit(quantity int64) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	p.Stock += quantity
	return nil
}

// Rebalance releases a previous reservation and takes a new one in a single step.
// The new reservation may use the released units.
func (p *Product) Rebalance(released, taken int64) error {
	if released < 0 || taken < 0 {
		return ErrNegativeQuantity
	}
	if taken > p.Stock+released {
		return ErrInsufficientStock
	}
	p.Stock += released - taken
	return nil
}

// LineTotal prices quantity units at the current unit price.
func (p *Product) LineTotal(quantity int64) decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(quantity))
}

// Clone returns a detached copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
