package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to processing", OrderPending, OrderProcessing, true},
		{"processing to shipped", OrderProcessing, OrderShipped, true},
		{"shipped to delivered", OrderShipped, OrderDelivered, true},
		{"skip forward", OrderPending, OrderDelivered, true},
		{"cancel pending", OrderPending, OrderCancelled, true},
		{"cancel shipped", OrderShipped, OrderCancelled, true},
		{"backwards", OrderShipped, OrderProcessing, false},
		{"same state", OrderProcessing, OrderProcessing, false},
		{"delivered is terminal", OrderDelivered, OrderCancelled, false},
		{"cancelled is terminal", OrderCancelled, OrderPending, false},
		{"unknown target", OrderPending, "Lost", false},
		{"unknown source", "Lost", OrderShipped, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOrderItem_Requantify(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		oldQty   int
		newQty   int
		expected string
	}{
		{"whole unit price", "30.00", 3, 5, "50.00"},
		{"preserves historical price", "19.98", 2, 3, "29.97"},
		{"rounds the unit price before multiplying", "10.00", 3, 2, "6.66"},
		{"rounds the unit price up", "20.00", 3, 3, "20.01"},
		{"zero quantity guard", "10.00", 0, 2, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := OrderItem{TotalPrice: decimal.RequireFromString(tt.total), Quantity: tt.oldQty}
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(item.Requantify(tt.newQty)),
				"got %s", item.Requantify(tt.newQty))
		})
	}
}

func TestOrderItem_UnitPrice(t *testing.T) {
	item := OrderItem{TotalPrice: decimal.RequireFromString("10.00"), Quantity: 3}
	assert.Equal(t, "3.33", item.UnitPrice().String())

	empty := OrderItem{TotalPrice: decimal.RequireFromString("10.00")}
	assert.True(t, empty.UnitPrice().IsZero())
}

func TestOrder_ItemsTotal(t *testing.T) {
	order := Order{Items: []OrderItem{
		{TotalPrice: decimal.RequireFromString("20.00")},
		{TotalPrice: decimal.RequireFromString("5.50")},
	}}

	assert.Equal(t, "25.5", order.ItemsTotal().String())
}

func TestGenerateOrderNumber(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.True(t, ValidOrderNumber(GenerateOrderNumber()))
	}
	assert.False(t, ValidOrderNumber("INVALID-123"))
}

func TestMoneyHelpers(t *testing.T) {
	assert.Equal(t, "30", LineTotal(decimal.NewFromInt(10), 3).String())
	assert.Equal(t, "0.33", RoundMoney(decimal.RequireFromString("0.3333")).String())
	assert.True(t, ClampNonNegative(decimal.NewFromInt(-5)).IsZero())
	assert.Equal(t, "5", ClampNonNegative(decimal.NewFromInt(5)).String())
}
