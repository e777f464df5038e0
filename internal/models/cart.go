package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CartItem represents a part held in a cart. Price is locked at the time the
// part was first added and is not refreshed from the catalog afterwards.
type CartItem struct {
	PartID       int             `json:"partId"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Manufacturer string          `json:"manufacturer"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ImageURL     string          `json:"imageUrl"`
}

// Cart represents a customer cart keyed by a caller-supplied id
type Cart struct {
	ID         string          `json:"id"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Clone returns a copy of the cart that shares no item storage with c
func (c *Cart) Clone() Cart {
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

// Order is the snapshot produced by checkout. It is not stored.
type Order struct {
	OrderID    string          `json:"orderId"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	OrderDate  time.Time       `json:"orderDate"`
	Status     string          `json:"status"`
}

// OrderStatus constants
const (
	OrderStatusConfirmed = "confirmed"
)

// FlexInt decodes from either a JSON number or a numeric string
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return fmt.Errorf("invalid integer value %q", s)
		}
		v = int(f)
	}
	*n = FlexInt(v)
	return nil
}

// AddItemRequest represents the body of an add-to-cart request
type AddItemRequest struct {
	PartID   FlexInt  `json:"partId"`
	Quantity *FlexInt `json:"quantity"`
}

// UpdateItemRequest represents the body of a quantity update request
type UpdateItemRequest struct {
	Quantity *FlexInt `json:"quantity"`
}

// CartResponse is returned by every cart mutation
type CartResponse struct {
	Message string `json:"message"`
	Cart    Cart   `json:"cart"`
}

// CheckoutResponse is returned by a successful checkout
type CheckoutResponse struct {
	Message string `json:"message"`
	Order   Order  `json:"order"`
	Cart    Cart   `json:"cart"`
}
