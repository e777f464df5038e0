package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gvbsvv/eshop-cart/internal/models"
	"github.com/gvbsvv/eshop-cart/internal/patterns"
)

const serviceName = "eshop-service"

// HTTPReaderOptions configures a remote catalog source
type HTTPReaderOptions struct {
	URL           string
	Timeout       time.Duration
	MaxConcurrent int
	Breaker       patterns.BreakerSettings
	Transport     http.RoundTripper
}

// HTTPReader fetches the catalog from a remote URL on every call. Calls are
// bounded by a bulkhead and short-circuited while the upstream is failing.
type HTTPReader struct {
	url      string
	timeout  time.Duration
	client   *resty.Client
	circuit  *patterns.CircuitBreakerWrapper
	bulkhead *patterns.Bulkhead
}

// NewHTTPReader creates a remote catalog reader
func NewHTTPReader(opts HTTPReaderOptions) *HTTPReader {
	if opts.Timeout <= 0 {
		opts.Timeout = patterns.DefaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0). // the circuit breaker decides when to stop calling
		SetHeader("Accept", "application/json")
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}

	return &HTTPReader{
		url:      opts.URL,
		timeout:  opts.Timeout,
		client:   client,
		circuit:  patterns.NewCircuitBreaker("Catalog", serviceName, opts.Breaker),
		bulkhead: patterns.NewBulkhead(opts.MaxConcurrent, patterns.DefaultBulkheadWait, "catalog", serviceName),
	}
}

// CircuitState reports the breaker state for status endpoints
func (r *HTTPReader) CircuitState() string {
	return r.circuit.GetState()
}

// Parts implements Reader
func (r *HTTPReader) Parts(ctx context.Context) ([]models.Part, error) {
	ctx, cancel := patterns.WithTimeout(ctx, r.timeout)
	defer cancel()

	var parts []models.Part
	err := r.bulkhead.Execute(ctx, func() error {
		result, cbErr := r.circuit.Execute(func() (interface{}, error) {
			resp, httpErr := r.client.R().
				SetContext(ctx).
				Get(r.url)
			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}
			if resp.StatusCode() != http.StatusOK {
				return nil, fmt.Errorf("catalog source returned status %d", resp.StatusCode())
			}

			decoded, err := DecodeParts(resp.Body())
			if err != nil {
				return nil, fmt.Errorf("failed to parse catalog: %w", err)
			}
			return decoded, nil
		})
		if cbErr != nil {
			return cbErr
		}
		parts = result.([]models.Part)
		return nil
	})

	observeRead("http", parts, err)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog %s: %w", r.url, err)
	}
	return parts, nil
}
