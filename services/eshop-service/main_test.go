package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gvbsvv/eshop-cart/internal/catalog"
	"github.com/gvbsvv/eshop-cart/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataFile = "../../data/automobileParts.json"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eshop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "eshop-service version "+Version)
}

func TestCatalogCheckCommand(t *testing.T) {
	path := writeConfig(t, "catalog:\n  path: "+dataFile+"\n")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"catalog", "check", "--config", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "parts: 12\n")
	assert.Contains(t, out.String(), "in stock: 10\n")
	assert.Contains(t, out.String(), "categories: 7\n")
	assert.Contains(t, out.String(), "manufacturers: 9\n")
}

func TestCatalogCheckFailsOnMissingFile(t *testing.T) {
	path := writeConfig(t, "catalog:\n  path: /nonexistent/parts.json\n")

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"catalog", "check", "--config", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog check")
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"catalog", "check", "--log-level", "chatty"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestBuildReader(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Path = dataFile

	reader, closeReader, err := buildReader(cfg)
	require.NoError(t, err)
	assert.IsType(t, &catalog.FileReader{}, reader)
	require.NoError(t, closeReader())

	cfg.Catalog.Cache = config.CacheWatch
	reader, closeReader, err = buildReader(cfg)
	require.NoError(t, err)
	assert.IsType(t, &catalog.WatchingReader{}, reader)
	parts, err := reader.Parts(context.Background())
	require.NoError(t, err)
	assert.Len(t, parts, 12)
	require.NoError(t, closeReader())

	cfg.Catalog.Source = config.SourceHTTP
	cfg.Catalog.Cache = config.CacheNone
	cfg.Catalog.URL = "http://catalog.invalid/parts.json"
	cfg.Tracing.Enabled = true
	reader, _, err = buildReader(cfg)
	require.NoError(t, err)
	assert.IsType(t, &catalog.HTTPReader{}, reader)

	cfg.Catalog.Source = "ftp"
	_, _, err = buildReader(cfg)
	assert.Error(t, err)
}

func TestNewServerServesAPI(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Path = dataFile
	cfg.Server.Port = 8089

	reader, _, err := buildReader(cfg)
	require.NoError(t, err)
	srv := newServer(cfg, reader)
	assert.Equal(t, ":8089", srv.Addr)

	req := httptest.NewRequest(http.MethodGet, "/api/parts/meta/categories", nil)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Brakes")
}

func TestSetupTracing(t *testing.T) {
	var out bytes.Buffer
	shutdown, err := setupTracing(&out)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
