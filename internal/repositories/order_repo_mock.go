package repositories

import (
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"order-manager/internal/models"
)

// MemoryOrderRepository is an in-memory implementation of
// OrderRepository. It mirrors the transactional semantics of the GORM
// implementation (id assignment, item reconciliation, physical orphan
// deletion) so service tests can observe real aggregate behavior
// without a database.
type MemoryOrderRepository struct {
	orders    map[uint]models.Order
	nextOrder uint
	nextItem  uint
	mu        sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:    make(map[uint]models.Order),
		nextOrder: 1,
		nextItem:  1,
	}
}

// GetAllWithItems returns all orders with their items, ordered by id.
func (r *MemoryOrderRepository) GetAllWithItems() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orders = append(orders, cloneOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// GetByIDWithItems returns the order with the given id, or (nil, nil)
// when it does not exist.
func (r *MemoryOrderRepository) GetByIDWithItems(id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	clone := cloneOrder(order)
	return &clone, nil
}

// GetByStatusWithItems returns all orders in the given status.
func (r *MemoryOrderRepository) GetByStatusWithItems(status models.OrderStatus) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.Status == status {
			orders = append(orders, cloneOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// SearchItems returns all items whose product name contains the given
// fragment, case-insensitive.
func (r *MemoryOrderRepository) SearchItems(productName string) ([]models.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(productName)
	items := make([]models.OrderItem, 0)
	for _, order := range r.orders {
		for _, item := range order.Items {
			if strings.Contains(strings.ToLower(item.ProductName), needle) {
				items = append(items, item)
			}
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Create stores the order, assigning the order id and item ids.
func (r *MemoryOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextOrder
	r.nextOrder++
	for i := range order.Items {
		order.Items[i].ID = r.nextItem
		order.Items[i].OrderID = order.ID
		r.nextItem++
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// Save replaces the stored order with the given state. Items without an
// id are assigned one; stored items absent from the collection are
// dropped, which is the in-memory equivalent of deleting their rows.
func (r *MemoryOrderRepository) Save(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range order.Items {
		if order.Items[i].ID == 0 {
			order.Items[i].ID = r.nextItem
			r.nextItem++
		}
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// Delete removes the order and, with it, every item it owns.
func (r *MemoryOrderRepository) Delete(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.orders, order.ID)
	return nil
}

// ItemExists reports whether any stored order still owns an item with
// the given id. Tests use it to verify physical orphan deletion.
func (r *MemoryOrderRepository) ItemExists(itemID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		for _, item := range order.Items {
			if item.ID == itemID {
				return true
			}
		}
	}
	return false
}

func cloneOrder(order models.Order) models.Order {
	items := make([]models.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}
