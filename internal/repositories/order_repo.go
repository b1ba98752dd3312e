package repositories

import (
	"order-manager/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// The WithItems loaders always return fully populated aggregates: an
// order's Items slice is materialized (empty, never nil) without one
// query per order. GetByIDWithItems returns (nil, nil) when no order
// has the given id, so the service layer can translate absence into
// its own not-found error uniformly.
type OrderRepository interface {
	GetAllWithItems() ([]models.Order, error)
	GetByIDWithItems(id uint) (*models.Order, error)
	GetByStatusWithItems(status models.OrderStatus) ([]models.Order, error)
	SearchItems(productName string) ([]models.OrderItem, error)

	// Create inserts the order and all its items atomically.
	Create(order *models.Order) error
	// Save upserts the order and reconciles its item rows with the
	// current collection: new items are inserted, changed ones
	// updated, and rows no longer present are physically deleted.
	Save(order *models.Order) error
	// Delete removes the order and all its item rows atomically.
	Delete(order *models.Order) error
}
