package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gvbsvv/eshop-cart/internal/catalog"
	"github.com/gvbsvv/eshop-cart/internal/models"
)

// ListParts returns one page of the filtered catalog
func (h *Handler) ListParts(c *gin.Context) {
	parts, err := h.catalog.Parts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve parts")
		return
	}

	params := catalog.ParseQueryParams(c.Request.URL.Query(), h.paging)
	page, pagination := catalog.Query(parts, params)

	c.JSON(http.StatusOK, models.PartsResponse{
		Parts:      page,
		Pagination: pagination,
	})
}

// GetPart returns a single part by id
func (h *Handler) GetPart(c *gin.Context) {
	parts, err := h.catalog.Parts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve part details")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
		return
	}
	part, ok := catalog.FindPart(parts, id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
		return
	}

	c.JSON(http.StatusOK, part)
}

// SearchParts matches the path text against name, description and
// manufacturer. Only page and limit are honoured from the query string.
func (h *Handler) SearchParts(c *gin.Context) {
	parts, err := h.catalog.Parts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Search failed")
		return
	}

	text := c.Param("query")
	page, limit := catalog.ParsePaging(c.Request.URL.Query(), h.paging)
	results, pagination := catalog.Search(parts, text, page, limit)

	c.JSON(http.StatusOK, models.SearchResponse{
		Query:      text,
		Parts:      results,
		Pagination: pagination,
	})
}

// Categories lists distinct categories in catalog order
func (h *Handler) Categories(c *gin.Context) {
	parts, err := h.catalog.Parts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve categories")
		return
	}
	c.JSON(http.StatusOK, models.CategoriesResponse{Categories: catalog.Categories(parts)})
}

// Manufacturers lists distinct manufacturers in catalog order
func (h *Handler) Manufacturers(c *gin.Context) {
	parts, err := h.catalog.Parts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve manufacturers")
		return
	}
	c.JSON(http.StatusOK, models.ManufacturersResponse{Manufacturers: catalog.Manufacturers(parts)})
}
