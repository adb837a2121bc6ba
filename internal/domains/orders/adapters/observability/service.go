package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-api/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-order-api/internal/domains/orders/adapters/observability/service"

type Option func(*instrumentation)

func WithLogger(logger *slog.Logger) Option {
	return func(i *instrumentation) {
		i.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(i *instrumentation) {
		i.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(i *instrumentation) {
		i.metrics = newServiceMetrics(m)
	}
}

type instrumentation struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

func newInstrumentation(opts []Option) instrumentation {
	i := instrumentation{metrics: newServiceMetrics(nil)}
	for _, opt := range opts {
		if opt != nil {
			opt(&i)
		}
	}
	if i.tracer == nil {
		i.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return i
}

// OrderService decorates the order service with tracing, logging, and metrics.
type OrderService struct {
	instrumentation
	inner ordersports.OrderService
}

// NewOrderService wraps the core order service.
func NewOrderService(inner ordersports.OrderService, opts ...Option) ordersports.OrderService {
	return &OrderService{instrumentation: newInstrumentation(opts), inner: inner}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	result, err := s.inner.ListOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	span.SetAttributes(attribute.Int("order.item_count", result.ItemCount()))
	return result, nil
}

func (s *OrderService) PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.Int("order.line_items", len(input.LineItems)), attribute.Bool("order.idempotent", input.IdempotencyKey != "")))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("order.number", input.OrderNumber), slog.Int("order.line_items", len(input.LineItems)))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("order.number", input.OrderNumber))
	}
	s.metrics.recordPlaced(ctx, len(result.Details))
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", result.ID),
		slog.Int("order.item_count", result.ItemCount()),
		slog.String("order.total_price", result.TotalPrice().StringFixed(2)))
	return result, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("order.number", input.OrderNumber))
	}
	s.metrics.recordPlaced(ctx, 0)
	s.logInfo(ctx, "order created", slog.Int64("order.id", result.ID))
	return result, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, input types.UpdateOrderInput) (*ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrder", trace.WithAttributes(attribute.Int64("order.id", input.ID)))
	defer span.End()

	s.logInfo(ctx, "updating order", slog.Int64("order.id", input.ID))
	result, err := s.inner.UpdateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order", slog.Int64("order.id", input.ID))
	}
	s.logInfo(ctx, "order updated", slog.Int64("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.Int64("order.id", id))
	if err := s.inner.DeleteOrder(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", id))
	}
	s.metrics.recordDeleted(ctx)
	return nil
}

// OrderDetailService decorates the line item service with tracing, logging, and metrics.
type OrderDetailService struct {
	instrumentation
	inner ordersports.OrderDetailService
}

// NewOrderDetailService wraps the core line item service.
func NewOrderDetailService(inner ordersports.OrderDetailService, opts ...Option) ordersports.OrderDetailService {
	return &OrderDetailService{instrumentation: newInstrumentation(opts), inner: inner}
}

func (s *OrderDetailService) ListOrderDetails(ctx context.Context) ([]*ordersdomain.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "OrderDetailService.ListOrderDetails")
	defer span.End()

	result, err := s.inner.ListOrderDetails(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list order details")
	}
	return result, nil
}

func (s *OrderDetailService) GetOrderDetail(ctx context.Context, id int64) (*ordersdomain.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "OrderDetailService.GetOrderDetail", trace.WithAttributes(attribute.Int64("order_detail.id", id)))
	defer span.End()

	result, err := s.inner.GetOrderDetail(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order detail", slog.Int64("order_detail.id", id))
	}
	return result, nil
}

func (s *OrderDetailService) CreateOrderDetail(ctx context.Context, input types.OrderDetailInput) (*ordersdomain.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "OrderDetailService.CreateOrderDetail", trace.WithAttributes(
		attribute.Int64("order.id", input.OrderID),
		attribute.Int64("product.id", input.ProductID),
		attribute.Int64("quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "adding line item", slog.Int64("order.id", input.OrderID), slog.Int64("product.id", input.ProductID), slog.Int64("quantity", input.Quantity))
	result, err := s.inner.CreateOrderDetail(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add line item", slog.Int64("order.id", input.OrderID), slog.Int64("product.id", input.ProductID))
	}
	s.metrics.recordStockMoved(ctx, "debit", input.Quantity)
	return result, nil
}

func (s *OrderDetailService) UpdateOrderDetail(ctx context.Context, id int64, input types.OrderDetailInput) (*ordersdomain.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "OrderDetailService.UpdateOrderDetail", trace.WithAttributes(
		attribute.Int64("order_detail.id", id),
		attribute.Int64("product.id", input.ProductID),
		attribute.Int64("quantity", input.Quantity)))
	defer span.End()

	s.logInfo(ctx, "amending line item", slog.Int64("order_detail.id", id), slog.Int64("product.id", input.ProductID), slog.Int64("quantity", input.Quantity))
	result, err := s.inner.UpdateOrderDetail(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to amend line item", slog.Int64("order_detail.id", id))
	}
	return result, nil
}

func (s *OrderDetailService) DeleteOrderDetail(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderDetailService.DeleteOrderDetail", trace.WithAttributes(attribute.Int64("order_detail.id", id)))
	defer span.End()

	s.logInfo(ctx, "removing line item", slog.Int64("order_detail.id", id))
	if err := s.inner.DeleteOrderDetail(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to remove line item", slog.Int64("order_detail.id", id))
	}
	return nil
}

func (i *instrumentation) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if i.logger == nil {
		return
	}
	i.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError records the failure on the span. Client mistakes are logged at warn level.
func (i *instrumentation) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	i.metrics.recordFailure(ctx, err)
	if i.logger == nil {
		return err
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	level := slog.LevelError
	if isClientError(err) {
		level = slog.LevelWarn
	}
	i.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

func isClientError(err error) bool {
	return errors.Is(err, ordersapp.ErrInvalidInput) ||
		errors.Is(err, ordersports.ErrOrderNotFound) ||
		errors.Is(err, ordersports.ErrOrderDetailNotFound) ||
		errors.Is(err, ordersports.ErrIdempotencyConflict)
}

type serviceMetrics struct {
	ordersPlaced  metric.Int64Counter
	ordersDeleted metric.Int64Counter
	stockMoved    metric.Int64Counter
	failures      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	ordersDeleted, _ := m.Int64Counter("orders.service.orders_deleted", metric.WithDescription("Number of orders deleted"))
	stockMoved, _ := m.Int64Counter("orders.service.stock_units_moved", metric.WithDescription("Units of stock debited or credited by line items"))
	failures, _ := m.Int64Counter("orders.service.failures", metric.WithDescription("Number of failed order operations"))
	return serviceMetrics{ordersPlaced: ordersPlaced, ordersDeleted: ordersDeleted, stockMoved: stockMoved, failures: failures}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, lineItems int) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.Bool("order.has_line_items", lineItems > 0)))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.ordersDeleted != nil {
		m.ordersDeleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordStockMoved(ctx context.Context, direction string, units int64) {
	if m.stockMoved != nil {
		m.stockMoved.Add(ctx, units, metric.WithAttributes(attribute.String("direction", direction)))
	}
}

func (m serviceMetrics) recordFailure(ctx context.Context, err error) {
	if m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.Bool("client_error", isClientError(err))))
	}
}

var (
	_ ordersports.OrderService       = (*OrderService)(nil)
	_ ordersports.OrderDetailService = (*OrderDetailService)(nil)
)
