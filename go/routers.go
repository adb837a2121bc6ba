package orderserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Apurer/go-gin-order-api/internal/platform/httpx"
)

// DefaultBasePath prefixes every resource route.
const DefaultBasePath = "/api"

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the resource handlers mounted by NewRouter.
type ApiHandleFunctions struct {
	ProductAPI     ProductAPI
	OrderAPI       OrderAPI
	OrderDetailAPI OrderDetailAPI
}

// RouterOptions configures the middleware stack around the resource routes.
type RouterOptions struct {
	BasePath    string
	ServiceName string
	Logger      *slog.Logger
	Metrics     *httpx.Metrics
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	return NewRouterWithGinEngine(gin.New(), handleFunctions, opts)
}

// NewRouterWithGinEngine adds middleware, health, metrics and resource routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	router.Use(gin.Recovery(), httpx.RequestID())
	if opts.ServiceName != "" {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	router.Use(httpx.AccessLog(opts.Logger))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := router.Group(normalizeBasePath(opts.BasePath))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		group.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return DefaultBasePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimSuffix(basePath, "/")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"ListProducts", http.MethodGet, "/products", handleFunctions.ProductAPI.ListProducts},
		{"GetProduct", http.MethodGet, "/products/:id", handleFunctions.ProductAPI.GetProduct},
		{"CreateProduct", http.MethodPost, "/products", handleFunctions.ProductAPI.CreateProduct},
		{"UpdateProduct", http.MethodPut, "/products/:id", handleFunctions.ProductAPI.UpdateProduct},
		{"DeleteProduct", http.MethodDelete, "/products/:id", handleFunctions.ProductAPI.DeleteProduct},
		{"ListOrders", http.MethodGet, "/orders", handleFunctions.OrderAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/orders/:id", handleFunctions.OrderAPI.GetOrder},
		{"CreateOrder", http.MethodPost, "/orders", handleFunctions.OrderAPI.CreateOrder},
		{"UpdateOrder", http.MethodPut, "/orders/:id", handleFunctions.OrderAPI.UpdateOrder},
		{"DeleteOrder", http.MethodDelete, "/orders/:id", handleFunctions.OrderAPI.DeleteOrder},
		{"ListOrderDetails", http.MethodGet, "/order-details", handleFunctions.OrderDetailAPI.ListOrderDetails},
		{"GetOrderDetail", http.MethodGet, "/order-details/:id", handleFunctions.OrderDetailAPI.GetOrderDetail},
		{"CreateOrderDetail", http.MethodPost, "/order-details", handleFunctions.OrderDetailAPI.CreateOrderDetail},
		{"UpdateOrderDetail", http.MethodPut, "/order-details/:id", handleFunctions.OrderDetailAPI.UpdateOrderDetail},
		{"DeleteOrderDetail", http.MethodDelete, "/order-details/:id", handleFunctions.OrderDetailAPI.DeleteOrderDetail},
	}
}
