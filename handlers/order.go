package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"little-lemon-go/logger"
	"little-lemon-go/models"
	"little-lemon-go/services"
)

// UpdateOrderRequest defines the request body for staff updating an order
type UpdateOrderRequest struct {
	Status       *models.OrderStatus `json:"status" form:"status"`
	DeliveryCrew optionalID          `json:"delivery_crew" form:"delivery_crew"`
}

// optionalID tells an absent field apart from an explicit null (JSON) or
// empty value (form), which both clear the assignment.
type optionalID struct {
	set bool
	id  *uint
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.id = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.id = &id
	return nil
}

func (o *optionalID) UnmarshalParam(param string) error {
	o.set = true
	if param == "" {
		o.id = nil
		return nil
	}
	id, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return err
	}
	value := uint(id)
	o.id = &value
	return nil
}

// OrderResponse renders the owner by username.
type OrderResponse struct {
	models.Order
	User string `json:"user"`
}

func newOrderResponse(order models.Order) OrderResponse {
	response := OrderResponse{Order: order}
	if order.User != nil {
		response.User = order.User.Username
	}
	if response.OrderItems == nil {
		response.OrderItems = []models.OrderItem{}
	}
	return response
}

// PlaceOrderHandler checks out the caller's cart. Staff callers get 204 and
// nothing is created.
func (h *Handler) PlaceOrderHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	order, err := h.Orders.Checkout(c.Request.Context(), actor)
	if errors.Is(err, services.ErrStaffCheckout) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		h.respondError(c, "checkout_failed", err)
		return
	}

	h.Log.Info("order_placed", logger.RequestID(c), "order placed",
		slog.Uint64("order_id", uint64(order.ID)),
		slog.String("total", order.Total.StringFixed(2)),
	)
	c.Status(http.StatusCreated)
}

func (h *Handler) ListOrdersHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	orders, err := h.Orders.List(c.Request.Context(), actor, c.Query("ordering"))
	if err != nil {
		h.respondError(c, "list_orders_failed", err)
		return
	}

	response := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, newOrderResponse(order))
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetOrderHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.Orders.Get(c.Request.Context(), actor, orderID)
	if err != nil {
		h.respondError(c, "get_order_failed", err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order))
}

// UpdateOrderHandler serves PUT (status required) and PATCH.
func (h *Handler) UpdateOrderHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var request UpdateOrderRequest
	if err := c.ShouldBind(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if c.Request.Method == http.MethodPut && request.Status == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := h.Orders.Update(c.Request.Context(), actor, orderID, services.OrderUpdate{
		Status:            request.Status,
		DeliveryCrewID:    request.DeliveryCrew.id,
		ClearDeliveryCrew: request.DeliveryCrew.set && request.DeliveryCrew.id == nil,
	})
	if err != nil {
		h.respondError(c, "update_order_failed", err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order))
}

func (h *Handler) DeleteOrderHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.Orders.Delete(c.Request.Context(), actor, orderID); err != nil {
		h.respondError(c, "delete_order_failed", err)
		return
	}

	h.Log.Info("order_deleted", logger.RequestID(c), "order deleted", slog.Uint64("order_id", uint64(orderID)))
	c.Status(http.StatusNoContent)
}
