package application

import (
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return err
	}
	if errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrUnknownProduct) ||
		errors.Is(err, catalogdomain.ErrInsufficientStock) ||
		errors.Is(err, catalogdomain.ErrNegativeQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// replayedOrder short-circuits a placement whose idempotency key already produced an order.
type replayedOrder struct {
	orderID int64
}

func (r replayedOrder) Error() string {
	return fmt.Sprintf("idempotency key already produced order %d", r.orderID)
}
