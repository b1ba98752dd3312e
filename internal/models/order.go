package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is the aggregate root owning a collection of OrderItems.
// Items only exist as part of an order: they are created through it,
// deleted with it, and physically removed when unlinked from it.
type Order struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	CustomerName string      `json:"customerName" gorm:"type:varchar(100);not null" validate:"required"`
	OrderDate    time.Time   `json:"orderDate" gorm:"not null"`
	Status       OrderStatus `json:"status" gorm:"type:varchar(20);not null" validate:"omitempty,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	Items        []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// OrderItem is a line item owned by exactly one Order. It carries the
// owning order's id as a plain field, never a reference back to the
// Order struct, so serialization stays cycle-free.
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     uint            `json:"orderId" gorm:"not null;index"`
	ProductName string          `json:"productName" gorm:"type:varchar(100);not null" validate:"required"`
	Quantity    int             `json:"quantity" gorm:"not null" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// AddItem appends item to the order's collection and stamps its OrderID
// in the same step, so an item can never be attached without its
// back-reference. Adding an item whose id is already present in the
// collection is rejected with ErrDuplicateItem rather than replacing
// the existing one.
func (o *Order) AddItem(item OrderItem) error {
	if item.ID != 0 {
		if _, err := o.FindItem(item.ID); err == nil {
			return ErrDuplicateItem
		}
	}
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	return nil
}

// FindItem locates an item by id within the order's collection.
func (o *Order) FindItem(itemID uint) (*OrderItem, error) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], nil
		}
	}
	return nil, ErrOrderItemNotFound
}

// RemoveItem unlinks the item with the given id from the collection and
// returns it. The caller is expected to persist the order afterwards,
// which physically deletes the orphaned row. Removing a missing item,
// including from an empty collection, fails with ErrOrderItemNotFound.
func (o *Order) RemoveItem(itemID uint) (OrderItem, error) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			removed := o.Items[i]
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			return removed, nil
		}
	}
	return OrderItem{}, ErrOrderItemNotFound
}

// Touch records a mutation on the order.
func (o *Order) Touch(now time.Time) {
	o.UpdatedAt = now
}
