package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gvbsvv/eshop-cart/internal/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoParts = `[
  {"id": 1, "name": "Brake Pad Set", "manufacturer": "Bosch", "category": "Brakes", "price": 49.99, "inStock": true, "stockQuantity": 25},
  {"id": 2, "name": "Brake Rotor", "manufacturer": "Brembo", "category": "Brakes", "price": "89.50", "inStock": true, "stockQuantity": 12}
]`

func writeCatalog(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestFileReaderReadsEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.json")
	writeCatalog(t, path, twoParts)
	r := NewFileReader(path)

	parts, err := r.Parts(context.Background())
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "89.5", parts[1].Price.String())

	writeCatalog(t, path, `[{"id": 7, "name": "Alternator", "price": 219}]`)
	parts, err = r.Parts(context.Background())
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 7, parts[0].ID)
}

func TestFileReaderErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileReader(filepath.Join(dir, "missing.json")).Parts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	writeCatalog(t, bad, `{"not": "an array"`)
	_, err = NewFileReader(bad).Parts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog")
}

func TestDecodePartsNull(t *testing.T) {
	parts, err := DecodeParts([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, parts)
	assert.Empty(t, parts)
}

func TestHTTPReader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoParts))
	}))
	defer srv.Close()

	r := NewHTTPReader(HTTPReaderOptions{
		URL:     srv.URL + "/catalog.json",
		Timeout: time.Second,
		Breaker: patterns.DefaultBreakerSettings(),
	})

	parts, err := r.Parts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(parts))
	assert.Equal(t, "closed", r.CircuitState())
}

func TestHTTPReaderOpensCircuit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	settings := patterns.DefaultBreakerSettings()
	settings.Timeout = time.Minute
	r := NewHTTPReader(HTTPReaderOptions{URL: srv.URL, Timeout: time.Second, Breaker: settings})

	for i := 0; i < 3; i++ {
		_, err := r.Parts(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	}

	_, err := r.Parts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is open")
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "open", r.CircuitState())
}

func TestWatchingReaderInvalidatesOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.json")
	writeCatalog(t, path, twoParts)

	r, err := NewWatchingReader(NewFileReader(path))
	require.NoError(t, err)
	defer r.Close()

	parts, err := r.Parts(context.Background())
	require.NoError(t, err)
	require.Len(t, parts, 2)

	writeCatalog(t, path, `[{"id": 9, "name": "Wiper Blade", "price": 19.99}]`)

	require.Eventually(t, func() bool {
		parts, err := r.Parts(context.Background())
		return err == nil && len(parts) == 1 && parts[0].ID == 9
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchingReaderServesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.json")
	writeCatalog(t, path, twoParts)

	r, err := NewWatchingReader(NewFileReader(path))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Parts(context.Background())
	require.NoError(t, err)

	r.mu.RLock()
	assert.True(t, r.valid)
	r.mu.RUnlock()

	r.Invalidate()
	r.mu.RLock()
	assert.False(t, r.valid)
	r.mu.RUnlock()
}
