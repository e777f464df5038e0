package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gvbsvv/eshop-cart/internal/cart"
	"github.com/gvbsvv/eshop-cart/internal/models"
)

// GetCart returns the cart, creating it on first reference
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Get(c.Request.Context(), c.Param("cartId")))
}

// AddItem adds a part to the cart
func (h *Handler) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = int(*req.Quantity)
	}

	updated, err := h.ledger.Add(c.Request.Context(), c.Param("cartId"), int(req.PartID), quantity)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{
		Message: "Item added to cart successfully",
		Cart:    updated,
	})
}

// UpdateItem sets the quantity of a line in the cart
func (h *Handler) UpdateItem(c *gin.Context) {
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": cart.MsgValidQuantity})
		return
	}

	var quantity *int
	if req.Quantity != nil {
		q := int(*req.Quantity)
		quantity = &q
	}

	updated, err := h.ledger.Update(c.Request.Context(), c.Param("cartId"), partIDParam(c), quantity)
	if err != nil {
		respondError(c, err, "Failed to update cart")
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{
		Message: "Cart updated successfully",
		Cart:    updated,
	})
}

// RemoveItem deletes a line from the cart
func (h *Handler) RemoveItem(c *gin.Context) {
	updated, err := h.ledger.Remove(c.Request.Context(), c.Param("cartId"), partIDParam(c))
	if err != nil {
		respondError(c, err, "Failed to remove item from cart")
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{
		Message: "Item removed from cart successfully",
		Cart:    updated,
	})
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c *gin.Context) {
	c.JSON(http.StatusOK, models.CartResponse{
		Message: "Cart cleared successfully",
		Cart:    h.ledger.Clear(c.Request.Context(), c.Param("cartId")),
	})
}

// Checkout converts the cart into an order and empties it
func (h *Handler) Checkout(c *gin.Context) {
	order, emptied, err := h.ledger.Checkout(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		respondError(c, err, "Checkout failed")
		return
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{
		Message: "Order placed successfully",
		Order:   order,
		Cart:    emptied,
	})
}

// partIDParam parses the :partId segment. Non-numeric ids map to 0, which
// never matches a cart line.
func partIDParam(c *gin.Context) int {
	id, err := strconv.Atoi(c.Param("partId"))
	if err != nil {
		return 0
	}
	return id
}
