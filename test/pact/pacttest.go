//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "order-portal"

	StateCatalogBaseline = "catalog baseline"
	StateProductExists   = "product with id 101 exists"
	StateOrderExists     = "order with id 301 exists"
	StateOrderMissing    = "no order with id 999"
)

const (
	ExistingProductID int64 = 101
	ExistingOrderID   int64 = 301
	MissingOrderID    int64 = 999

	ExistingProductStock  int64 = 10
	ExistingOrderQuantity int64 = 2
)

const (
	ExampleProductName = "Pact Espresso Beans"
	ExampleUnitPrice   = "12.50"
	ExampleOrderNumber = "PACT-0001"
	ExampleOrderDate   = "2024-06-12"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the order portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductPayload is the product write body used by the portal.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"name":      ExampleProductName,
		"unitPrice": ExampleUnitPrice,
		"stock":     ExistingProductStock,
	}
}

// ExamplePlaceOrderPayload places one line item against the seeded product.
func ExamplePlaceOrderPayload() map[string]any {
	return map[string]any{
		"orderNumber": ExampleOrderNumber,
		"orderDetails": []map[string]any{
			{"productId": ExistingProductID, "quantity": ExistingOrderQuantity},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
