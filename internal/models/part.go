package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching the catalog data file.
	decimal.MarshalJSONWithoutQuotes = true
}

// Part represents a sellable automobile part from the catalog
type Part struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Manufacturer  string          `json:"manufacturer"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	InStock       bool            `json:"inStock"`
	StockQuantity int             `json:"stockQuantity"`
	ImageURL      string          `json:"imageUrl"`
}

// Pagination describes the page of results returned by a catalog query
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalItems      int  `json:"totalItems"`
	ItemsPerPage    int  `json:"itemsPerPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// PartsResponse is returned by the catalog listing endpoint
type PartsResponse struct {
	Parts      []Part     `json:"parts"`
	Pagination Pagination `json:"pagination"`
}

// SearchResponse is returned by the free-text search endpoint
type SearchResponse struct {
	Query      string     `json:"query"`
	Parts      []Part     `json:"parts"`
	Pagination Pagination `json:"pagination"`
}

// CategoriesResponse lists the distinct catalog categories
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ManufacturersResponse lists the distinct catalog manufacturers
type ManufacturersResponse struct {
	Manufacturers []string `json:"manufacturers"`
}
