package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"

	orderserver "github.com/Apurer/go-gin-order-api/go"

	catalogobs "github.com/Apurer/go-gin-order-api/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-gin-order-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	ordersobs "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/httpx"
	platformobservability "github.com/Apurer/go-gin-order-api/internal/platform/observability"
)

const serviceName = "orders-api"

// Run boots the order API with observability, repositories, and workflows wired, and
// serves until ctx is cancelled or the process receives SIGINT or SIGTERM.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, cleanup := NewBackends(ctx, cfg, logger)
	defer cleanup()
	services := NewServices(backends, instruments)

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(services.Orders)
	if temporalClient, err := ConnectTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := orderserver.ApiHandleFunctions{
		ProductAPI:     orderserver.NewProductAPI(services.Products),
		OrderAPI:       orderserver.NewOrderAPI(services.Orders, orderWorkflows),
		OrderDetailAPI: orderserver.NewOrderDetailAPI(services.OrderDetails),
	}
	router := orderserver.NewRouter(handlers, orderserver.RouterOptions{
		BasePath:    cfg.BasePath,
		ServiceName: serviceName,
		Logger:      logger,
		Metrics:     httpx.NewMetrics("orders_api"),
	})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("order API listening", slog.String("addr", server.Addr), slog.String("basePath", cfg.BasePath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("order API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("order API shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Services are the instrumented application services.
type Services struct {
	Products     catalogports.Service
	Orders       ordersports.OrderService
	OrderDetails ordersports.OrderDetailService
}

// NewServices builds the core services on top of backends and wraps them with observability.
func NewServices(b *Backends, instruments *platformobservability.Instruments) Services {
	logger := effectiveLogger(instruments)
	opts := []ordersapp.Option{
		ordersapp.WithIdempotencyStore(b.Idempotency),
		ordersapp.WithEventPublisher(b.Events),
		ordersapp.WithLogger(logger),
	}
	orders := ordersapp.NewOrderService(b.Orders, b.OrderDetails, b.Products, b.Transactor, opts...)
	details := ordersapp.NewOrderDetailService(b.Orders, b.OrderDetails, b.Products, b.Transactor, opts...)
	return Services{
		Products: catalogobs.New(
			catalogapp.NewService(b.Products, b.Transactor),
			catalogobs.WithLogger(logger),
			catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
			catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
		),
		Orders: ordersobs.NewOrderService(
			orders,
			ordersobs.WithLogger(logger),
			ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
			ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
		),
		OrderDetails: ordersobs.NewOrderDetailService(
			details,
			ordersobs.WithLogger(logger),
			ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
			ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
		),
	}
}

// ConnectTemporal dials Temporal with tracing and structured logging, unless disabled.
func ConnectTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
