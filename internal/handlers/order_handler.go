package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"order-manager/internal/models"
	"order-manager/internal/services"
)

// OrderHandler handles HTTP requests for orders and their items. Its
// only job beyond parsing is mapping the service's typed errors to
// status codes: validation failures become 400, missing orders or
// items become 404, everything else is a 500.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/items/search", h.HandleSearchItems)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Put("/:id", h.HandleUpdateOrder)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
	orderRoutes.Post("/:id/items", h.HandleAddItem)
	orderRoutes.Put("/:id/items/:itemId", h.HandleUpdateItem)
	orderRoutes.Delete("/:id/items/:itemId", h.HandleRemoveItem)
}

// HandleGetOrders retrieves all orders with their items. An optional
// ?status= query filters by order status.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var (
		orders []models.Order
		err    error
	)
	if status := c.Query("status"); status != "" {
		orders, err = h.service.GetOrdersByStatus(models.OrderStatus(status))
	} else {
		orders, err = h.service.GetAllOrders()
	}
	if err != nil {
		return h.errorResponse(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return badRequest(c, "Order ID must be a number")
	}

	order, err := h.service.GetOrderByID(uint(id))
	if err != nil {
		return h.errorResponse(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order with its initial items.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var draft models.Order
	if err := c.BodyParser(&draft); err != nil {
		log.Printf("Error parsing create order request body: %v", err)
		return badRequest(c, "Invalid request body")
	}

	created, err := h.service.CreateOrder(draft)
	if err != nil {
		return h.errorResponse(c, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateOrder overwrites customer name, order date, and status of an order.
func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return badRequest(c, "Order ID must be a number")
	}

	var patch models.Order
	if err := c.BodyParser(&patch); err != nil {
		log.Printf("Error parsing update order request body: %v", err)
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.service.UpdateOrder(uint(id), patch)
	if err != nil {
		return h.errorResponse(c, "Could not update order", err)
	}
	return c.JSON(updated)
}

// HandleDeleteOrder deletes an order and all its items.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return badRequest(c, "Order ID must be a number")
	}

	if err := h.service.DeleteOrder(uint(id)); err != nil {
		return h.errorResponse(c, "Could not delete order", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAddItem attaches a new item to an existing order.
func (h *OrderHandler) HandleAddItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return badRequest(c, "Order ID must be a number")
	}

	var item models.OrderItem
	if err := c.BodyParser(&item); err != nil {
		log.Printf("Error parsing add item request body: %v", err)
		return badRequest(c, "Invalid request body")
	}

	order, err := h.service.AddItemToOrder(uint(id), item)
	if err != nil {
		return h.errorResponse(c, "Could not add item to order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleUpdateItem overwrites the fields of one item within an order.
func (h *OrderHandler) HandleUpdateItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return badRequest(c, "Order ID must be a number")
	}
	itemID, err := c.ParamsInt("itemId")
	if err != nil || itemID < 0 {
		return badRequest(c, "Item ID must be a number")
	}

	var patch models.OrderItem
	if err := c.BodyParser(&patch); err != nil {
		log.Printf("Error parsing update item request body: %v", err)
		return badRequest(c, "Invalid request body")
	}

	order, err := h.service.UpdateOrderItem(uint(id), uint(itemID), patch)
	if err != nil {
		return h.errorResponse(c, "Could not update order item", err)
	}
	return c.JSON(order)
}

// HandleRemoveItem unlinks an item from its order and deletes it.
func (h *OrderHandler) HandleRemoveItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 0 {
		return badRequest(c, "Order ID must be a number")
	}
	itemID, err := c.ParamsInt("itemId")
	if err != nil || itemID < 0 {
		return badRequest(c, "Item ID must be a number")
	}

	if _, err := h.service.RemoveItemFromOrder(uint(id), uint(itemID)); err != nil {
		return h.errorResponse(c, "Could not remove order item", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSearchItems finds items across all orders by product name fragment.
func (h *OrderHandler) HandleSearchItems(c *fiber.Ctx) error {
	items, err := h.service.SearchOrderItems(c.Query("q"))
	if err != nil {
		return h.errorResponse(c, "Could not search order items", err)
	}
	return c.JSON(items)
}

// errorResponse translates a service error into an HTTP response.
func (h *OrderHandler) errorResponse(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrDuplicateItem):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, models.ErrOrderNotFound), errors.Is(err, models.ErrOrderItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	default:
		log.Printf("%s: %v", message, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
	})
}
