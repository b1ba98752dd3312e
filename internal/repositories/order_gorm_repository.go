package repositories

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"order-manager/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAllWithItems retrieves every order with its items eagerly loaded.
// Preload batches all items into a single additional query, so the load
// costs two round trips no matter how many orders exist.
func (r *GORMOrderRepository) GetAllWithItems() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	for i := range orders {
		ensureItems(&orders[i])
	}
	return orders, nil
}

// GetByIDWithItems retrieves a single order with its items. A missing
// id yields (nil, nil) rather than an error.
func (r *GORMOrderRepository) GetByIDWithItems(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	ensureItems(&order)
	return &order, nil
}

// GetByStatusWithItems retrieves all orders in the given status, items included.
func (r *GORMOrderRepository) GetByStatusWithItems(status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Where("status = ?", status).Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders by status %s: %w", status, err)
	}
	for i := range orders {
		ensureItems(&orders[i])
	}
	return orders, nil
}

// SearchItems finds items whose product name contains the given
// fragment, case-insensitive.
func (r *GORMOrderRepository) SearchItems(productName string) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0)
	pattern := "%" + productName + "%"
	if err := r.db.Where("LOWER(product_name) LIKE LOWER(?)", pattern).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to search order items: %w", err)
	}
	return items, nil
}

// Create inserts the order together with its items in one transaction.
// GORM assigns ids to the order first and to each item row as it is
// inserted with the order's id stamped on it.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Save upserts the order row and reconciles order_items with the
// in-memory collection: every item in the collection is upserted with
// the order's id, then rows whose ids are no longer present are
// deleted. All of it happens in a single transaction, so a failed item
// write leaves the previous state untouched.
func (r *GORMOrderRepository) Save(order *models.Order) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return err
		}

		keep := make([]uint, 0, len(order.Items))
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
			keep = append(keep, order.Items[i].ID)
		}

		// Orphan removal: rows unlinked from the collection are gone for good.
		orphans := tx.Where("order_id = ?", order.ID)
		if len(keep) > 0 {
			orphans = orphans.Where("id NOT IN ?", keep)
		}
		return orphans.Delete(&models.OrderItem{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save order %d: %w", order.ID, err)
	}
	return nil
}

// Delete removes the order and all its item rows in one transaction.
// The schema also declares ON DELETE CASCADE on the foreign key, but
// the explicit delete keeps the behavior identical across drivers that
// do not enforce foreign keys by default.
func (r *GORMOrderRepository) Delete(order *models.Order) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, "id = ?", order.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete order %d: %w", order.ID, err)
	}
	return nil
}

// ensureItems keeps the aggregate invariant that Items is always a
// valid slice: an order without items has an empty collection, not nil.
func ensureItems(order *models.Order) {
	if order.Items == nil {
		order.Items = make([]models.OrderItem, 0)
	}
}
