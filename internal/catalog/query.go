// Package catalog loads the parts catalog and answers filter, search and
// pagination queries over it.
package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gvbsvv/eshop-cart/internal/models"
	"github.com/shopspring/decimal"
)

// Default paging values used when a request omits or mangles page/limit
const (
	DefaultPage     = 1
	DefaultLimit    = 10
	DefaultMaxLimit = 100
)

// QueryParams holds the filters recognised by the parts listing. Nil and
// empty fields mean the filter is not applied.
type QueryParams struct {
	Search       string
	Manufacturer string
	Category     string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStock      *bool
	Page         int
	Limit        int
}

// Paging bounds applied while parsing request parameters
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// ParseQueryParams reads filters from a query string. Malformed numeric or
// boolean values drop the filter; malformed page/limit fall back to defaults.
func ParseQueryParams(q url.Values, p Paging) QueryParams {
	params := QueryParams{
		Search:       q.Get("search"),
		Manufacturer: q.Get("manufacturer"),
		Category:     q.Get("category"),
		MinPrice:     parseDecimal(q.Get("minPrice")),
		MaxPrice:     parseDecimal(q.Get("maxPrice")),
		InStock:      parseBool(q.Get("inStock")),
	}
	params.Page, params.Limit = ParsePaging(q, p)
	return params
}

// ParsePaging reads page and limit from a query string
func ParsePaging(q url.Values, p Paging) (page, limit int) {
	if p.DefaultLimit < 1 {
		p.DefaultLimit = DefaultLimit
	}
	page = parsePositive(q.Get("page"), DefaultPage)
	limit = parsePositive(q.Get("limit"), p.DefaultLimit)
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit
}

func parsePositive(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseDecimal(s string) *decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &d
}

func parseBool(s string) *bool {
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// Query filters parts by every supplied parameter and returns the requested page
func Query(parts []models.Part, params QueryParams) ([]models.Part, models.Pagination) {
	filtered := make([]models.Part, 0, len(parts))
	for _, p := range parts {
		if params.matches(p) {
			filtered = append(filtered, p)
		}
	}
	return Paginate(filtered, params.Page, params.Limit)
}

// Search matches text against name, description and manufacturer, ignoring
// every other filter.
func Search(parts []models.Part, text string, page, limit int) ([]models.Part, models.Pagination) {
	return Query(parts, QueryParams{Search: text, Page: page, Limit: limit})
}

func (q QueryParams) matches(p models.Part) bool {
	if q.Search != "" && !matchesText(p, q.Search) {
		return false
	}
	if q.Manufacturer != "" && !containsFold(p.Manufacturer, q.Manufacturer) {
		return false
	}
	if q.Category != "" && !containsFold(p.Category, q.Category) {
		return false
	}
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	if q.InStock != nil && p.InStock != *q.InStock {
		return false
	}
	return true
}

func matchesText(p models.Part, text string) bool {
	return containsFold(p.Name, text) ||
		containsFold(p.Description, text) ||
		containsFold(p.Manufacturer, text)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Paginate slices items to the 1-based page and describes the result
func Paginate(items []models.Part, page, limit int) ([]models.Part, models.Pagination) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total-1)/limit + 1
	}

	// Pages past the end are empty. Checking the page index first keeps
	// (page-1)*limit from overflowing on huge page numbers.
	start, end := total, total
	if page-1 < totalPages {
		start = (page - 1) * limit
		end = total
		if limit < total-start {
			end = start + limit
		}
	}

	pageItems := []models.Part{}
	if start < end {
		pageItems = items[start:end:end]
	}

	return pageItems, models.Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    limit,
		HasNextPage:     end < total,
		HasPreviousPage: page > 1,
	}
}

// FindPart returns the part with the given id
func FindPart(parts []models.Part, id int) (models.Part, bool) {
	for _, p := range parts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Part{}, false
}

// Categories returns the distinct categories in first-seen order
func Categories(parts []models.Part) []string {
	return distinct(parts, func(p models.Part) string { return p.Category })
}

// Manufacturers returns the distinct manufacturers in first-seen order
func Manufacturers(parts []models.Part) []string {
	return distinct(parts, func(p models.Part) string { return p.Manufacturer })
}

func distinct(parts []models.Part, field func(models.Part) string) []string {
	seen := make(map[string]struct{}, len(parts))
	out := []string{}
	for _, p := range parts {
		v := field(p)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
