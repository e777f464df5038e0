package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIntAcceptsNumbersAndStrings(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`3`, 3},
		{`"7"`, 7},
		{`2.0`, 2},
		{`""`, 0},
		{`-4`, -4},
		{`null`, 0},
	}
	for _, tt := range tests {
		var n FlexInt
		require.NoError(t, json.Unmarshal([]byte(tt.in), &n), tt.in)
		assert.Equal(t, FlexInt(tt.want), n, tt.in)
	}

	for _, bad := range []string{`"abc"`, `2.5`, `true`} {
		var n FlexInt
		assert.Error(t, json.Unmarshal([]byte(bad), &n), bad)
	}
}

func TestAddItemRequestQuantityOptional(t *testing.T) {
	var req AddItemRequest
	require.NoError(t, json.Unmarshal([]byte(`{"partId": "5"}`), &req))
	assert.Equal(t, FlexInt(5), req.PartID)
	assert.Nil(t, req.Quantity)

	require.NoError(t, json.Unmarshal([]byte(`{"partId": 5, "quantity": null}`), &req))
	assert.Nil(t, req.Quantity)
}

func TestPricesEncodeAsNumbers(t *testing.T) {
	item := CartItem{PartID: 1, Price: decimal.RequireFromString("49.99"), Quantity: 2}
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":49.99`)
}

func TestCartCloneIsDetached(t *testing.T) {
	c := Cart{
		ID:        "A",
		Items:     []CartItem{{PartID: 1, Quantity: 1}},
		CreatedAt: time.Now(),
	}
	clone := c.Clone()
	clone.Items[0].Quantity = 9

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, "A", clone.ID)
}
