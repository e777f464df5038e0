// Package api exposes the catalog and cart over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gvbsvv/eshop-cart/internal/cart"
	"github.com/gvbsvv/eshop-cart/internal/catalog"
	"github.com/gvbsvv/eshop-cart/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServiceName labels metrics, logs and traces
const ServiceName = "eshop-service"

// Handler serves the catalog and cart endpoints
type Handler struct {
	catalog    catalog.Reader
	ledger     *cart.Ledger
	paging     catalog.Paging
	sourceName string
	staticDir  string
}

// NewHandler wires the handlers to a catalog source and a cart ledger
func NewHandler(reader catalog.Reader, ledger *cart.Ledger, paging catalog.Paging, sourceName string) *Handler {
	return &Handler{
		catalog:    reader,
		ledger:     ledger,
		paging:     paging,
		sourceName: sourceName,
	}
}

// ServeStatic serves files under dir for GET and HEAD requests that match no
// API route
func (h *Handler) ServeStatic(dir string) *Handler {
	h.staticDir = dir
	return h
}

// NewRouter builds the gin engine with every route and middleware
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()

	router.Use(RequestID())
	router.Use(AccessLog())
	router.Use(gin.CustomRecovery(recoverJSON))
	router.Use(SecurityHeaders())
	router.Use(metrics.PrometheusMiddleware(ServiceName))

	router.GET("/", h.Welcome)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/status", h.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	parts := router.Group("/api/parts")
	parts.GET("", h.ListParts)
	parts.GET("/:id", h.GetPart)
	parts.GET("/search/:query", h.SearchParts)
	parts.GET("/meta/categories", h.Categories)
	parts.GET("/meta/manufacturers", h.Manufacturers)

	carts := router.Group("/api/cart")
	carts.GET("/:cartId", h.GetCart)
	carts.POST("/:cartId/add", h.AddItem)
	carts.PUT("/:cartId/update/:partId", h.UpdateItem)
	carts.DELETE("/:cartId/remove/:partId", h.RemoveItem)
	carts.DELETE("/:cartId/clear", h.ClearCart)
	carts.POST("/:cartId/checkout", h.Checkout)

	router.NoRoute(func(c *gin.Context) {
		if h.serveStatic(c) {
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return router
}

// HTTPOptions controls the outer http.Handler wrapping the router
type HTTPOptions struct {
	AllowedOrigins []string
	Tracing        bool
}

// NewHTTPHandler wraps the router with CORS and, optionally, tracing
func NewHTTPHandler(router http.Handler, opts HTTPOptions) http.Handler {
	handler := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(router)

	if opts.Tracing {
		handler = otelhttp.NewHandler(handler, ServiceName)
	}
	return handler
}

// Welcome describes the API entry points
func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to EShop Cart API",
		"endpoints": gin.H{
			"parts": "/api/parts",
			"cart":  "/api/cart",
		},
	})
}

// Status reports service state for operators
func (h *Handler) Status(c *gin.Context) {
	body := gin.H{
		"service":        ServiceName,
		"status":         "healthy",
		"catalog_source": h.sourceName,
		"carts":          h.ledger.Carts(),
		"timestamp":      time.Now().Format(time.RFC3339),
	}
	if cb, ok := h.catalog.(circuitReporter); ok {
		body["catalog_circuit"] = cb.CircuitState()
	}
	c.JSON(http.StatusOK, body)
}

type circuitReporter interface {
	CircuitState() string
}

func recoverJSON(c *gin.Context, err any) {
	log.WithFields(log.Fields{
		"request_id": c.GetString(requestIDKey),
		"path":       c.Request.URL.Path,
		"panic":      err,
	}).Error("Unhandled panic")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
}
