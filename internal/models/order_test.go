package models_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"order-manager/internal/models"
)

func TestOrderAddItemSetsBackReference(t *testing.T) {
	order := models.Order{ID: 7}

	err := order.AddItem(models.OrderItem{
		ProductName: "Laptop",
		Quantity:    1,
		UnitPrice:   decimal.NewFromFloat(999.99),
	})

	assert.NoError(t, err)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, uint(7), order.Items[0].OrderID)
}

func TestOrderAddItemPendingOrder(t *testing.T) {
	// Before the order is persisted its id is zero; items share that
	// sentinel until the store assigns real ids.
	var order models.Order

	err := order.AddItem(models.OrderItem{ProductName: "Mouse", Quantity: 2})

	assert.NoError(t, err)
	assert.Equal(t, uint(0), order.Items[0].OrderID)
}

func TestOrderAddItemDuplicateRejected(t *testing.T) {
	order := models.Order{
		ID:    1,
		Items: []models.OrderItem{{ID: 3, OrderID: 1, ProductName: "Laptop", Quantity: 1}},
	}

	err := order.AddItem(models.OrderItem{ID: 3, ProductName: "Laptop", Quantity: 1})

	assert.ErrorIs(t, err, models.ErrDuplicateItem)
	assert.Len(t, order.Items, 1)
}

func TestOrderRemoveItem(t *testing.T) {
	order := models.Order{
		ID: 1,
		Items: []models.OrderItem{
			{ID: 1, OrderID: 1, ProductName: "Laptop", Quantity: 1},
			{ID: 2, OrderID: 1, ProductName: "Mouse", Quantity: 2},
		},
	}

	removed, err := order.RemoveItem(1)

	assert.NoError(t, err)
	assert.Equal(t, uint(1), removed.ID)
	assert.Equal(t, "Laptop", removed.ProductName)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "Mouse", order.Items[0].ProductName)
}

func TestOrderRemoveItemMissing(t *testing.T) {
	order := models.Order{
		ID:    1,
		Items: []models.OrderItem{{ID: 1, OrderID: 1, ProductName: "Laptop", Quantity: 1}},
	}

	_, err := order.RemoveItem(42)

	assert.ErrorIs(t, err, models.ErrOrderItemNotFound)
	assert.Len(t, order.Items, 1)
}

func TestOrderRemoveItemEmptyCollection(t *testing.T) {
	// Removing from an empty collection is an error, not a no-op.
	order := models.Order{ID: 1, Items: []models.OrderItem{}}

	_, err := order.RemoveItem(1)

	assert.ErrorIs(t, err, models.ErrOrderItemNotFound)
}

func TestOrderFindItem(t *testing.T) {
	order := models.Order{
		ID:    1,
		Items: []models.OrderItem{{ID: 5, OrderID: 1, ProductName: "Keyboard", Quantity: 1}},
	}

	item, err := order.FindItem(5)
	assert.NoError(t, err)
	assert.Equal(t, "Keyboard", item.ProductName)

	_, err = order.FindItem(6)
	assert.ErrorIs(t, err, models.ErrOrderItemNotFound)
}

func TestOrderTouch(t *testing.T) {
	order := models.Order{UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	order.Touch(now)

	assert.Equal(t, now, order.UpdatedAt)
}

func TestOrderStatusValid(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusShipped,
		models.StatusDelivered,
		models.StatusCancelled,
	} {
		assert.True(t, status.Valid(), "expected %s to be valid", status)
	}

	assert.False(t, models.OrderStatus("SHIPPING").Valid())
	assert.False(t, models.OrderStatus("").Valid())
}
