package cart

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gvbsvv/eshop-cart/internal/apperrors"
	"github.com/gvbsvv/eshop-cart/internal/catalog"
	"github.com/gvbsvv/eshop-cart/internal/metrics"
	"github.com/gvbsvv/eshop-cart/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Client-facing messages
const (
	MsgPartIDRequired  = "Part ID is required"
	MsgInvalidQuantity = "Quantity must be a positive integer"
	MsgValidQuantity   = "Valid quantity is required"
	MsgPartNotFound    = "Part not found"
	MsgPartOutOfStock  = "Part is out of stock"
	MsgItemNotFound    = "Item not found in cart"
	MsgCartEmpty       = "Cart is empty"
	msgCatalogAdd      = "Failed to add item to cart"
	msgCatalogUpdate   = "Failed to update cart"
)

// Ledger applies cart operations against a Store, checking stock with the
// catalog on every add and update.
type Ledger struct {
	store   *Store
	catalog catalog.Reader
	newID   func(time.Time) string
}

// NewLedger creates a ledger over store that resolves parts through reader
func NewLedger(store *Store, reader catalog.Reader) *Ledger {
	return &Ledger{
		store:   store,
		catalog: reader,
		newID:   newOrderID,
	}
}

// newOrderID builds a time-ordered token; the random suffix keeps ids unique
// when two checkouts land in the same millisecond.
func newOrderID(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD-" + strconv.FormatInt(t.UnixMilli(), 10) + "-" + suffix
}

// Carts returns how many carts are held in memory
func (l *Ledger) Carts() int {
	return l.store.Len()
}

// Get returns the cart, creating an empty one on first reference
func (l *Ledger) Get(_ context.Context, cartID string) models.Cart {
	c := l.store.Snapshot(cartID)
	record("get", nil)
	return c
}

// Add puts quantity units of a part into the cart, or increments the existing
// line. The resulting quantity may never exceed the part's stock.
func (l *Ledger) Add(ctx context.Context, cartID string, partID, quantity int) (models.Cart, error) {
	if partID == 0 {
		return l.fail("add", cartID, apperrors.New(apperrors.InvalidInput, MsgPartIDRequired))
	}
	if quantity < 1 {
		return l.fail("add", cartID, apperrors.New(apperrors.InvalidInput, MsgInvalidQuantity))
	}

	parts, err := l.catalog.Parts(ctx)
	if err != nil {
		return l.fail("add", cartID, apperrors.Wrap(err, msgCatalogAdd))
	}

	c, err := l.store.With(cartID, func(c *models.Cart) error {
		part, ok := catalog.FindPart(parts, partID)
		if !ok {
			return apperrors.New(apperrors.NotFound, MsgPartNotFound)
		}
		if !part.InStock {
			return apperrors.New(apperrors.InvalidState, MsgPartOutOfStock)
		}

		if i := indexOf(c.Items, partID); i >= 0 {
			held := c.Items[i].Quantity
			if quantity > part.StockQuantity-held {
				return apperrors.NewInsufficientStock(part.StockQuantity, saturatingAdd(held, quantity))
			}
			c.Items[i].Quantity = held + quantity
		} else {
			if quantity > part.StockQuantity {
				return apperrors.NewInsufficientStock(part.StockQuantity, quantity)
			}
			c.Items = append(c.Items, models.CartItem{
				PartID:       part.ID,
				Name:         part.Name,
				Description:  part.Description,
				Manufacturer: part.Manufacturer,
				Price:        part.Price,
				Quantity:     quantity,
				ImageURL:     part.ImageURL,
			})
		}

		l.recalculate(c)
		return nil
	})
	if err != nil {
		return c, l.logFailure("add", cartID, err)
	}

	record("add", nil)
	log.WithFields(log.Fields{
		"cart_id":  cartID,
		"part_id":  partID,
		"quantity": quantity,
	}).Info("Item added to cart")
	return c, nil
}

// Update overwrites the quantity of a line already in the cart. A quantity of
// zero removes the line.
func (l *Ledger) Update(ctx context.Context, cartID string, partID int, quantity *int) (models.Cart, error) {
	if quantity == nil || *quantity < 0 {
		return l.fail("update", cartID, apperrors.New(apperrors.InvalidInput, MsgValidQuantity))
	}
	q := *quantity

	parts, err := l.catalog.Parts(ctx)
	if err != nil {
		return l.fail("update", cartID, apperrors.Wrap(err, msgCatalogUpdate))
	}

	c, err := l.store.With(cartID, func(c *models.Cart) error {
		i := indexOf(c.Items, partID)
		if i < 0 {
			return apperrors.New(apperrors.NotFound, MsgItemNotFound)
		}
		// A part dropped from the catalog no longer caps the quantity
		if part, ok := catalog.FindPart(parts, partID); ok && q > part.StockQuantity {
			return apperrors.NewInsufficientStock(part.StockQuantity, q)
		}
		if q > math.MaxInt-(c.TotalItems-c.Items[i].Quantity) {
			return apperrors.New(apperrors.InvalidInput, MsgValidQuantity)
		}

		if q == 0 {
			c.Items = removeAt(c.Items, i)
		} else {
			c.Items[i].Quantity = q
		}

		l.recalculate(c)
		return nil
	})
	if err != nil {
		return c, l.logFailure("update", cartID, err)
	}

	record("update", nil)
	log.WithFields(log.Fields{
		"cart_id":  cartID,
		"part_id":  partID,
		"quantity": q,
	}).Info("Cart item updated")
	return c, nil
}

// Remove deletes a line from the cart
func (l *Ledger) Remove(_ context.Context, cartID string, partID int) (models.Cart, error) {
	c, err := l.store.With(cartID, func(c *models.Cart) error {
		i := indexOf(c.Items, partID)
		if i < 0 {
			return apperrors.New(apperrors.NotFound, MsgItemNotFound)
		}
		c.Items = removeAt(c.Items, i)
		l.recalculate(c)
		return nil
	})
	if err != nil {
		return c, l.logFailure("remove", cartID, err)
	}

	record("remove", nil)
	log.WithFields(log.Fields{
		"cart_id": cartID,
		"part_id": partID,
	}).Info("Item removed from cart")
	return c, nil
}

// Clear empties the cart
func (l *Ledger) Clear(_ context.Context, cartID string) models.Cart {
	c, _ := l.store.With(cartID, func(c *models.Cart) error {
		c.Items = []models.CartItem{}
		l.recalculate(c)
		return nil
	})
	record("clear", nil)
	log.WithField("cart_id", cartID).Info("Cart cleared")
	return c
}

// Checkout turns the cart into a confirmed order and empties it. The order is
// captured and the cart cleared under the same lock.
func (l *Ledger) Checkout(_ context.Context, cartID string) (models.Order, models.Cart, error) {
	var order models.Order
	c, err := l.store.With(cartID, func(c *models.Cart) error {
		if len(c.Items) == 0 {
			return apperrors.New(apperrors.InvalidState, MsgCartEmpty)
		}

		now := l.store.now()
		snapshot := c.Clone()
		order = models.Order{
			OrderID:    l.newID(now),
			Items:      snapshot.Items,
			TotalItems: snapshot.TotalItems,
			TotalPrice: snapshot.TotalPrice,
			OrderDate:  now,
			Status:     models.OrderStatusConfirmed,
		}

		c.Items = []models.CartItem{}
		l.recalculate(c)
		return nil
	})
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		return models.Order{}, c, l.logFailure("checkout", cartID, err)
	}

	record("checkout", nil)
	metrics.OrdersTotal.WithLabelValues(order.Status).Inc()
	metrics.OrderValue.Observe(order.TotalPrice.InexactFloat64())

	log.WithFields(log.Fields{
		"cart_id":     cartID,
		"order_id":    order.OrderID,
		"total_items": order.TotalItems,
		"total_price": order.TotalPrice.String(),
	}).Info("Order placed")
	return order, c, nil
}

// recalculate derives the totals from the items. Totals are never adjusted
// any other way.
func (l *Ledger) recalculate(c *models.Cart) {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, it := range c.Items {
		totalItems += it.Quantity
		totalPrice = totalPrice.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
	c.UpdatedAt = l.store.now()
}

func (l *Ledger) fail(op, cartID string, err error) (models.Cart, error) {
	return l.store.Snapshot(cartID), l.logFailure(op, cartID, err)
}

func (l *Ledger) logFailure(op, cartID string, err error) error {
	record(op, err)
	entry := log.WithFields(log.Fields{
		"cart_id":   cartID,
		"operation": op,
		"error":     err.Error(),
	})
	if apperrors.KindOf(err) == apperrors.Internal {
		entry.Error("Cart operation failed")
	} else {
		entry.Debug("Cart operation rejected")
	}
	return err
}

func record(op string, err error) {
	result := "success"
	if err != nil {
		result = strings.ToLower(apperrors.KindOf(err).String())
	}
	metrics.CartOperationsTotal.WithLabelValues(op, result).Inc()
}

// saturatingAdd reports a+b for error bodies, clamped at math.MaxInt
func saturatingAdd(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func indexOf(items []models.CartItem, partID int) int {
	for i, it := range items {
		if it.PartID == partID {
			return i
		}
	}
	return -1
}

func removeAt(items []models.CartItem, i int) []models.CartItem {
	out := make([]models.CartItem, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
