package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"order-manager/internal/models"
	"order-manager/internal/repositories"
	"order-manager/pkg/rabbitmq"
)

// OrderService orchestrates aggregate and repository operations for
// orders. Every mutation of an order and its items goes through here:
// timestamps are stamped explicitly, the aggregate helpers keep the
// item back-references consistent, and the repository persists each
// use case atomically.
type OrderService struct {
	repo     repositories.OrderRepository
	mqClient *rabbitmq.Client // optional, events are skipped when nil
	validate *validator.Validate
}

// NewOrderService creates a new OrderService.
func NewOrderService(repo repositories.OrderRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		repo:     repo,
		mqClient: mqClient,
		validate: validator.New(),
	}
}

// GetAllOrders retrieves all orders with their items populated.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.repo.GetAllWithItems()
}

// GetOrdersByStatus retrieves all orders in the given status.
func (s *OrderService) GetOrdersByStatus(status models.OrderStatus) ([]models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	return s.repo.GetByStatusWithItems(status)
}

// GetOrderByID retrieves a single order with its items populated.
func (s *OrderService) GetOrderByID(id uint) (*models.Order, error) {
	order, err := s.repo.GetByIDWithItems(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: id %d", models.ErrOrderNotFound, id)
	}
	return order, nil
}

// SearchOrderItems finds items across all orders whose product name
// contains the given fragment, case-insensitive.
func (s *OrderService) SearchOrderItems(productName string) ([]models.OrderItem, error) {
	if strings.TrimSpace(productName) == "" {
		return nil, fmt.Errorf("%w: search term is required", models.ErrValidation)
	}
	return s.repo.SearchItems(productName)
}

// CreateOrder creates a new order, together with its initial items, as
// a single atomic unit. The draft may not carry ids: the store assigns
// them. Order date defaults to now and status to PENDING when unset.
func (s *OrderService) CreateOrder(draft models.Order) (*models.Order, error) {
	if err := s.validateOrderDraft(&draft); err != nil {
		return nil, err
	}

	now := time.Now()
	order := models.Order{
		CustomerName: draft.CustomerName,
		OrderDate:    draft.OrderDate,
		Status:       draft.Status,
		Items:        make([]models.OrderItem, 0, len(draft.Items)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = now
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}

	for _, item := range draft.Items {
		item.CreatedAt = now
		item.UpdatedAt = now
		if err := order.AddItem(item); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(&order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publishEvent("order.created", map[string]interface{}{
		"orderID":   order.ID,
		"status":    order.Status,
		"itemCount": len(order.Items),
	})

	return &order, nil
}

// UpdateOrder overwrites customer name, order date, and status of an
// existing order. Items are never touched through this path. A zero
// order date or an empty status in the patch leaves the stored value
// unchanged.
func (s *OrderService) UpdateOrder(id uint, patch models.Order) (*models.Order, error) {
	if strings.TrimSpace(patch.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customerName is required", models.ErrValidation)
	}
	if patch.Status != "" && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, patch.Status)
	}

	order, err := s.GetOrderByID(id)
	if err != nil {
		return nil, err
	}

	order.CustomerName = patch.CustomerName
	if !patch.OrderDate.IsZero() {
		order.OrderDate = patch.OrderDate
	}
	if patch.Status != "" {
		order.Status = patch.Status
	}
	order.Touch(time.Now())

	if err := s.repo.Save(order); err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}

	s.publishEvent("order.updated", map[string]interface{}{
		"orderID": order.ID,
		"status":  order.Status,
	})

	return order, nil
}

// DeleteOrder deletes the order and, with it, all its items. Deleting a
// missing id is an error, not a no-op.
func (s *OrderService) DeleteOrder(id uint) error {
	order, err := s.GetOrderByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(order); err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}

	s.publishEvent("order.deleted", map[string]interface{}{
		"orderID":   order.ID,
		"itemCount": len(order.Items),
	})

	return nil
}

// AddItemToOrder attaches a new item to an existing order and persists
// the aggregate. Returns the updated order with the item's assigned id.
func (s *OrderService) AddItemToOrder(orderID uint, item models.OrderItem) (*models.Order, error) {
	if err := s.validateItemDraft(&item); err != nil {
		return nil, err
	}

	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := order.AddItem(item); err != nil {
		return nil, err
	}
	order.Touch(now)

	if err := s.repo.Save(order); err != nil {
		return nil, fmt.Errorf("failed to add item to order %d: %w", orderID, err)
	}

	s.publishEvent("order.item_added", map[string]interface{}{
		"orderID": order.ID,
		"itemID":  order.Items[len(order.Items)-1].ID,
	})

	return order, nil
}

// UpdateOrderItem overwrites product name, quantity, and unit price of
// one item within an order. The item must belong to that order.
func (s *OrderService) UpdateOrderItem(orderID, itemID uint, patch models.OrderItem) (*models.Order, error) {
	if err := s.validateItemFields(&patch); err != nil {
		return nil, err
	}

	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	item, err := order.FindItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: id %d in order %d", err, itemID, orderID)
	}

	now := time.Now()
	item.ProductName = patch.ProductName
	item.Quantity = patch.Quantity
	item.UnitPrice = patch.UnitPrice
	item.UpdatedAt = now
	order.Touch(now)

	if err := s.repo.Save(order); err != nil {
		return nil, fmt.Errorf("failed to update item %d of order %d: %w", itemID, orderID, err)
	}

	s.publishEvent("order.item_updated", map[string]interface{}{
		"orderID": order.ID,
		"itemID":  itemID,
	})

	return order, nil
}

// RemoveItemFromOrder unlinks the item from the order and persists the
// aggregate, which physically deletes the orphaned item row.
func (s *OrderService) RemoveItemFromOrder(orderID, itemID uint) (*models.Order, error) {
	order, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	removed, err := order.RemoveItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: id %d in order %d", err, itemID, orderID)
	}
	order.Touch(time.Now())

	if err := s.repo.Save(order); err != nil {
		return nil, fmt.Errorf("failed to remove item %d from order %d: %w", itemID, orderID, err)
	}

	s.publishEvent("order.item_removed", map[string]interface{}{
		"orderID": order.ID,
		"itemID":  removed.ID,
	})

	return order, nil
}

// validateOrderDraft checks a create request. Store-assigned fields may
// not be supplied by the client: a draft carrying an order or item id
// is rejected instead of silently reinterpreted.
func (s *OrderService) validateOrderDraft(draft *models.Order) error {
	if draft.ID != 0 {
		return fmt.Errorf("%w: id must not be set on create", models.ErrValidation)
	}
	if strings.TrimSpace(draft.CustomerName) == "" {
		return fmt.Errorf("%w: customerName is required", models.ErrValidation)
	}
	if draft.Status != "" && !draft.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", models.ErrValidation, draft.Status)
	}
	if err := s.validate.Struct(draft); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	for i := range draft.Items {
		if err := s.validateItemDraft(&draft.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateItemDraft checks an item create request, rejecting
// client-supplied ids.
func (s *OrderService) validateItemDraft(item *models.OrderItem) error {
	if item.ID != 0 {
		return fmt.Errorf("%w: item id must not be set on create", models.ErrValidation)
	}
	return s.validateItemFields(item)
}

// validateItemFields checks the client-settable item fields.
func (s *OrderService) validateItemFields(item *models.OrderItem) error {
	if strings.TrimSpace(item.ProductName) == "" {
		return fmt.Errorf("%w: productName is required", models.ErrValidation)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", models.ErrValidation)
	}
	if item.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unitPrice must not be negative", models.ErrValidation)
	}
	return nil
}

// publishEvent sends an order lifecycle event to the broker. Events are
// best-effort: they are published outside the store transaction and a
// failure is logged, never surfaced to the caller.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}

	payload["eventID"] = uuid.New().String()
	payload["occurredAt"] = time.Now().Format(time.RFC3339Nano)

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.mqClient.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
