package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gvbsvv/eshop-cart/internal/metrics"
	"github.com/gvbsvv/eshop-cart/internal/models"
	log "github.com/sirupsen/logrus"
)

// Reader supplies the full list of catalog parts
type Reader interface {
	Parts(ctx context.Context) ([]models.Part, error)
}

// FileReader decodes the catalog data file on every call, so edits to the
// file are visible to the next request.
type FileReader struct {
	path string
}

// NewFileReader creates a reader for the JSON catalog at path
func NewFileReader(path string) *FileReader {
	return &FileReader{path: path}
}

// Path returns the data file location
func (r *FileReader) Path() string {
	return r.path
}

// Parts implements Reader
func (r *FileReader) Parts(_ context.Context) ([]models.Part, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		observeRead("file", nil, err)
		return nil, fmt.Errorf("read catalog %s: %w", r.path, err)
	}

	parts, err := DecodeParts(data)
	observeRead("file", parts, err)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", r.path, err)
	}
	return parts, nil
}

// DecodeParts parses a JSON array of parts
func DecodeParts(data []byte) ([]models.Part, error) {
	var parts []models.Part
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, err
	}
	if parts == nil {
		parts = []models.Part{}
	}
	return parts, nil
}

func observeRead(source string, parts []models.Part, err error) {
	if err != nil {
		metrics.CatalogReadsTotal.WithLabelValues(source, "error").Inc()
		log.WithFields(log.Fields{
			"source": source,
			"error":  err.Error(),
		}).Error("Error loading parts data")
		return
	}
	metrics.CatalogReadsTotal.WithLabelValues(source, "success").Inc()
	metrics.CatalogParts.Set(float64(len(parts)))
}
