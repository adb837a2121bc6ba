//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-order-api/test/pact"

	orderserver "github.com/Apurer/go-gin-order-api/go"
	catalogmemory "github.com/Apurer/go-gin-order-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/go-gin-order-api/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-gin-order-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/go-gin-order-api/internal/domains/catalog/domain"
	ordersmemory "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-api/internal/platform/unitofwork"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC)

func TestOrdersProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
		pacttest.StateProductExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedProduct(t)
			}
			return nil, nil
		},
		pacttest.StateOrderExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedOrder(t, app.seedProduct(t))
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves the real router over fresh in-memory adapters.
type contractProviderApp struct {
	mu       sync.RWMutex
	router   http.Handler
	products *catalogmemory.Repository
	store    *ordersmemory.Store
	server   *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset()
	app.server = httptest.NewServer(http.HandlerFunc(app.serveHTTP))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) serveHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	router := a.router
	a.mu.RUnlock()
	router.ServeHTTP(w, r)
}

func (a *contractProviderApp) reset() {
	products := catalogmemory.NewRepository()
	store := ordersmemory.NewStore()
	tx := unitofwork.NewLocalTransactor()
	opts := []ordersapp.Option{
		ordersapp.WithClock(func() time.Time { return placedAt }),
		ordersapp.WithIdempotencyStore(ordersmemory.NewIdempotencyStore()),
	}
	orderService := ordersobs.NewOrderService(ordersapp.NewOrderService(store.Orders(), store.Details(), products, tx, opts...))
	detailService := ordersobs.NewOrderDetailService(ordersapp.NewOrderDetailService(store.Orders(), store.Details(), products, tx, opts...))

	handlers := orderserver.ApiHandleFunctions{
		ProductAPI:     orderserver.NewProductAPI(catalogobs.New(catalogapp.NewService(products, tx))),
		OrderAPI:       orderserver.NewOrderAPI(orderService, ordersworkflows.NewInlineOrderWorkflows(orderService)),
		OrderDetailAPI: orderserver.NewOrderDetailAPI(detailService),
	}
	router := orderserver.NewRouter(handlers, orderserver.RouterOptions{})

	a.mu.Lock()
	defer a.mu.Unlock()
	a.products = products
	a.store = store
	a.router = router
}

func (a *contractProviderApp) seedProduct(t testing.TB) *catalogdomain.Product {
	t.Helper()
	a.mu.RLock()
	products := a.products
	a.mu.RUnlock()
	product := catalogdomain.NewProduct(
		pacttest.ExistingProductID,
		pacttest.ExampleProductName,
		decimal.RequireFromString(pacttest.ExampleUnitPrice),
		pacttest.ExistingProductStock,
	)
	saved, err := products.Save(context.Background(), product)
	require.NoError(t, err)
	return saved
}

func (a *contractProviderApp) seedOrder(t testing.TB, product *catalogdomain.Product) {
	t.Helper()
	a.mu.RLock()
	store := a.store
	a.mu.RUnlock()
	ctx := context.Background()

	order := ordersdomain.NewOrder(pacttest.ExampleOrderNumber, placedAt)
	order.ID = pacttest.ExistingOrderID
	_, err := store.Orders().Save(ctx, order)
	require.NoError(t, err)

	detail, err := ordersdomain.NewOrderDetail(pacttest.ExistingOrderID, product, pacttest.ExistingOrderQuantity)
	require.NoError(t, err)
	_, err = store.Details().Save(ctx, detail)
	require.NoError(t, err)
}
