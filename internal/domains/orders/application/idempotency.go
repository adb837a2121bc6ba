package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
)

type normalizedPlaceOrderInput struct {
	OrderNumber string               `json:"orderNumber"`
	LineItems   []normalizedLineItem `json:"lineItems"`
}

type normalizedLineItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// FingerprintPlaceOrder builds a deterministic hash of the placement payload, excluding the idempotency key.
func FingerprintPlaceOrder(input types.PlaceOrderInput) (string, error) {
	normalized := normalizedPlaceOrderInput{
		OrderNumber: input.OrderNumber,
		LineItems:   make([]normalizedLineItem, 0, len(input.LineItems)),
	}
	for _, item := range input.LineItems {
		normalized.LineItems = append(normalized.LineItems, normalizedLineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
