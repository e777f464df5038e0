// Package config loads service settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Catalog source kinds
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Catalog cache policies
const (
	CacheNone  = "none"
	CacheWatch = "watch"
)

// Config is the full service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Catalog CatalogConfig `yaml:"catalog"`
	CORS    CORSConfig    `yaml:"cors"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// StaticDir is served for GET requests no API route matches. Empty disables it.
	StaticDir string `yaml:"static_dir"`
}

// LogConfig controls logrus
type LogConfig struct {
	Level string `yaml:"level"`
}

// CatalogConfig selects and tunes the catalog source
type CatalogConfig struct {
	Source          string        `yaml:"source"`
	Path            string        `yaml:"path"`
	URL             string        `yaml:"url"`
	Cache           string        `yaml:"cache"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxConcurrent   int           `yaml:"max_concurrent"`
	DefaultPageSize int           `yaml:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
}

// CORSConfig lists the origins allowed to call the API from a browser
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// TracingConfig toggles OpenTelemetry tracing to stdout
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
			StaticDir:       "public",
		},
		Log: LogConfig{Level: "info"},
		Catalog: CatalogConfig{
			Source:          SourceFile,
			Path:            "data/automobileParts.json",
			Cache:           CacheNone,
			Timeout:         3 * time.Second,
			MaxConcurrent:   10,
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.StaticDir = getEnv("STATIC_DIR", cfg.Server.StaticDir)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Catalog.Source = getEnv("CATALOG_SOURCE", cfg.Catalog.Source)
	cfg.Catalog.Path = getEnv("CATALOG_PATH", cfg.Catalog.Path)
	cfg.Catalog.URL = getEnv("CATALOG_URL", cfg.Catalog.URL)
	cfg.Catalog.Cache = getEnv("CATALOG_CACHE", cfg.Catalog.Cache)
	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
	if v, err := strconv.ParseBool(getEnv("TRACING_ENABLED", "")); err == nil {
		cfg.Tracing.Enabled = v
	}
}

// Validate reports the first setting that cannot work
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.Path == "" {
			return errors.New("catalog.path is required for the file source")
		}
	case SourceHTTP:
		if c.Catalog.URL == "" {
			return errors.New("catalog.url is required for the http source")
		}
		if c.Catalog.Cache == CacheWatch {
			return errors.New("catalog.cache watch only applies to the file source")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}
	if c.Catalog.Cache != CacheNone && c.Catalog.Cache != CacheWatch {
		return fmt.Errorf("unknown catalog.cache %q", c.Catalog.Cache)
	}
	if c.Catalog.DefaultPageSize < 1 {
		return errors.New("catalog.default_page_size must be positive")
	}
	if c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		return errors.New("catalog.max_page_size must not be below default_page_size")
	}
	return nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
