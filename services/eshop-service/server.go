package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gvbsvv/eshop-cart/internal/api"
	"github.com/gvbsvv/eshop-cart/internal/cart"
	"github.com/gvbsvv/eshop-cart/internal/catalog"
	"github.com/gvbsvv/eshop-cart/internal/config"
	"github.com/gvbsvv/eshop-cart/internal/patterns"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// buildReader selects the catalog source. The returned closer releases any
// watcher and is never nil.
func buildReader(cfg config.Config) (catalog.Reader, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Catalog.Source {
	case config.SourceHTTP:
		var transport http.RoundTripper
		if cfg.Tracing.Enabled {
			transport = otelhttp.NewTransport(http.DefaultTransport)
		}
		return catalog.NewHTTPReader(catalog.HTTPReaderOptions{
			URL:           cfg.Catalog.URL,
			Timeout:       cfg.Catalog.Timeout,
			MaxConcurrent: cfg.Catalog.MaxConcurrent,
			Breaker:       patterns.DefaultBreakerSettings(),
			Transport:     transport,
		}), noop, nil

	case config.SourceFile:
		file := catalog.NewFileReader(cfg.Catalog.Path)
		if cfg.Catalog.Cache != config.CacheWatch {
			return file, noop, nil
		}
		watching, err := catalog.NewWatchingReader(file)
		if err != nil {
			return nil, noop, err
		}
		return watching, watching.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

// setupTracing installs a stdout exporter as the global tracer provider
func setupTracing(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			"",
			attribute.String("service.name", api.ServiceName),
			attribute.String("service.version", Version),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// newServer assembles the store, ledger, router and outer handler
func newServer(cfg config.Config, reader catalog.Reader) *http.Server {
	ledger := cart.NewLedger(cart.NewStore(), reader)
	handler := api.NewHandler(reader, ledger, catalog.Paging{
		DefaultLimit: cfg.Catalog.DefaultPageSize,
		MaxLimit:     cfg.Catalog.MaxPageSize,
	}, cfg.Catalog.Source).ServeStatic(cfg.Server.StaticDir)

	return &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewHTTPHandler(api.NewRouter(handler), api.HTTPOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Tracing:        cfg.Tracing.Enabled,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func run(ctx context.Context, cfg config.Config) error {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Tracing.Enabled {
		shutdown, err := setupTracing(os.Stdout)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.WithError(err).Warn("Failed to flush traces")
			}
		}()
	}

	reader, closeReader, err := buildReader(cfg)
	if err != nil {
		return err
	}
	defer closeReader()

	srv := newServer(cfg, reader)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"port":           cfg.Server.Port,
			"catalog_source": cfg.Catalog.Source,
			"catalog_cache":  cfg.Catalog.Cache,
		}).Info("EShop service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// checkCatalog reads the catalog once and prints its shape
func checkCatalog(ctx context.Context, cfg config.Config, out io.Writer) error {
	reader, closeReader, err := buildReader(cfg)
	if err != nil {
		return err
	}
	defer closeReader()

	parts, err := reader.Parts(ctx)
	if err != nil {
		return fmt.Errorf("catalog check: %w", err)
	}

	inStock := 0
	for _, p := range parts {
		if p.InStock {
			inStock++
		}
	}
	fmt.Fprintf(out, "parts: %d\nin stock: %d\ncategories: %d\nmanufacturers: %d\n",
		len(parts), inStock, len(catalog.Categories(parts)), len(catalog.Manufacturers(parts)))
	return nil
}
