package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Transitions(t *testing.T) {
	all := OrderStatuses()
	allowed := map[[2]OrderStatus]bool{
		{OrderStatusPending, OrderStatusApproved}:  true,
		{OrderStatusApproved, OrderStatusShipped}:  true,
		{OrderStatusShipped, OrderStatusCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]OrderStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.Empty(t, OrderStatusCompleted.NextStatuses())
	assert.Equal(t, []OrderStatus{OrderStatusShipped}, OrderStatusApproved.NextStatuses())
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range OrderStatuses() {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range []OrderStatus{"", "pending", "Cancelled"} {
		assert.False(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("Cancelled").CanTransitionTo(OrderStatusPending))
}

func TestOrder_UnitPrice(t *testing.T) {
	o := Order{Quantity: 3, TotalPrice: decimal.RequireFromString("30.00")}
	assert.Equal(t, "10.00", o.UnitPrice().StringFixed(2))
	assert.True(t, (&Order{}).UnitPrice().IsZero())
}

func TestRole_Parse(t *testing.T) {
	r, err := ParseRole(" Seller ")
	assert.NoError(t, err)
	assert.Equal(t, RoleSeller, r)
	_, err = ParseRole("farmer")
	assert.Error(t, err)
	assert.Equal(t, "unknown", RoleUnknown.String())
	assert.False(t, RoleUnknown.Valid())
}

func TestCartItem_LineTotal(t *testing.T) {
	item := CartItem{Quantity: 4, Product: &Product{Price: decimal.RequireFromString("2.50")}, PriceKnown: true}
	assert.Equal(t, "10.00", item.LineTotal().StringFixed(2))

	item.PriceKnown = false
	assert.True(t, item.LineTotal().IsZero(), "precio desconocido cuenta como 0")
}
