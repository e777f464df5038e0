package cart_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/gvbsvv/eshop-cart/internal/apperrors"
	"github.com/gvbsvv/eshop-cart/internal/cart"
	"github.com/gvbsvv/eshop-cart/internal/models"
	"github.com/shopspring/decimal"
)

type tableCatalog struct {
	parts []models.Part
}

func (c *tableCatalog) Parts(context.Context) ([]models.Part, error) {
	return c.parts, nil
}

type ledgerTestContext struct {
	catalog *tableCatalog
	ledger  *cart.Ledger
	order   models.Order
	err     error
}

func (c *ledgerTestContext) reset() {
	c.catalog = &tableCatalog{}
	c.ledger = cart.NewLedger(cart.NewStore(), c.catalog)
	c.order = models.Order{}
	c.err = nil
}

func (c *ledgerTestContext) theCatalogContains(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return errors.New("catalog table needs a header and at least one row")
	}
	header := map[string]int{}
	for i, cell := range table.Rows[0].Cells {
		header[cell.Value] = i
	}
	cell := func(row *godog.Table, r int, name string) string {
		return row.Rows[r].Cells[header[name]].Value
	}

	for r := 1; r < len(table.Rows); r++ {
		id, err := strconv.Atoi(cell(table, r, "id"))
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(cell(table, r, "price"))
		if err != nil {
			return err
		}
		inStock, err := strconv.ParseBool(cell(table, r, "inStock"))
		if err != nil {
			return err
		}
		stock, err := strconv.Atoi(cell(table, r, "stockQuantity"))
		if err != nil {
			return err
		}
		c.catalog.parts = append(c.catalog.parts, models.Part{
			ID:            id,
			Name:          cell(table, r, "name"),
			Price:         price,
			InStock:       inStock,
			StockQuantity: stock,
		})
	}
	return nil
}

func (c *ledgerTestContext) iAddOfPartToCart(quantity, partID int, cartID string) error {
	_, c.err = c.ledger.Add(context.Background(), cartID, partID, quantity)
	return nil
}

func (c *ledgerTestContext) iSetTheQuantityOfPartInCartTo(partID int, cartID string, quantity int) error {
	_, c.err = c.ledger.Update(context.Background(), cartID, partID, &quantity)
	return nil
}

func (c *ledgerTestContext) iRemovePartFromCart(partID int, cartID string) error {
	_, c.err = c.ledger.Remove(context.Background(), cartID, partID)
	return nil
}

func (c *ledgerTestContext) iClearCart(cartID string) error {
	c.ledger.Clear(context.Background(), cartID)
	c.err = nil
	return nil
}

func (c *ledgerTestContext) iCheckOutCart(cartID string) error {
	c.order, _, c.err = c.ledger.Checkout(context.Background(), cartID)
	return nil
}

func (c *ledgerTestContext) theOperationSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success but got error: %v", c.err)
	}
	return nil
}

func (c *ledgerTestContext) theOperationFailsWith(kind string) error {
	if c.err == nil {
		return errors.New("expected an error but the operation succeeded")
	}
	if got := apperrors.KindOf(c.err).String(); got != kind {
		return fmt.Errorf("expected %s, got %s (%v)", kind, got, c.err)
	}
	return nil
}

func (c *ledgerTestContext) theFailureReportsAvailableAndRequested(available, requested int) error {
	var appErr *apperrors.Error
	if !errors.As(c.err, &appErr) {
		return fmt.Errorf("expected *apperrors.Error, got %v", c.err)
	}
	if appErr.Available != available || appErr.Requested != requested {
		return fmt.Errorf("expected %d available / %d requested, got %d / %d",
			available, requested, appErr.Available, appErr.Requested)
	}
	return nil
}

func (c *ledgerTestContext) cartHoldsOfPart(cartID string, quantity, partID int) error {
	for _, it := range c.ledger.Get(context.Background(), cartID).Items {
		if it.PartID == partID {
			if it.Quantity != quantity {
				return fmt.Errorf("expected %d of part %d, found %d", quantity, partID, it.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("part %d not in cart %s", partID, cartID)
}

func (c *ledgerTestContext) cartIsEmpty(cartID string) error {
	if n := len(c.ledger.Get(context.Background(), cartID).Items); n != 0 {
		return fmt.Errorf("expected empty cart, found %d lines", n)
	}
	return nil
}

func (c *ledgerTestContext) cartTotalsItemsCosting(cartID string, items int, price string) error {
	got := c.ledger.Get(context.Background(), cartID)
	return checkTotals(got.TotalItems, got.TotalPrice, items, price)
}

func (c *ledgerTestContext) theOrderIsWithItemsCosting(status string, items int, price string) error {
	if c.order.Status != status {
		return fmt.Errorf("expected order status %q, got %q", status, c.order.Status)
	}
	return checkTotals(c.order.TotalItems, c.order.TotalPrice, items, price)
}

func checkTotals(gotItems int, gotPrice decimal.Decimal, items int, price string) error {
	want, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	if gotItems != items || !gotPrice.Equal(want) {
		return fmt.Errorf("expected %d items costing %s, got %d costing %s", items, want, gotItems, gotPrice)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &ledgerTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog contains:$`, tc.theCatalogContains)

	// When steps
	ctx.Step(`^I add (\d+) of part (\d+) to cart "([^"]*)"$`, tc.iAddOfPartToCart)
	ctx.Step(`^I set the quantity of part (\d+) in cart "([^"]*)" to (\d+)$`, tc.iSetTheQuantityOfPartInCartTo)
	ctx.Step(`^I remove part (\d+) from cart "([^"]*)"$`, tc.iRemovePartFromCart)
	ctx.Step(`^I clear cart "([^"]*)"$`, tc.iClearCart)
	ctx.Step(`^I check out cart "([^"]*)"$`, tc.iCheckOutCart)

	// Then steps
	ctx.Step(`^the operation succeeds$`, tc.theOperationSucceeds)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^the failure reports (\d+) available and (\d+) requested$`, tc.theFailureReportsAvailableAndRequested)
	ctx.Step(`^cart "([^"]*)" holds (\d+) of part (\d+)$`, tc.cartHoldsOfPart)
	ctx.Step(`^cart "([^"]*)" is empty$`, tc.cartIsEmpty)
	ctx.Step(`^cart "([^"]*)" totals (\d+) items costing ([\d.]+)$`, tc.cartTotalsItemsCosting)
	ctx.Step(`^the order is "([^"]*)" with (\d+) items costing ([\d.]+)$`, tc.theOrderIsWithItemsCosting)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
