package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddToCartRequest only carries what a client may choose. unit_price and
// price are always computed by the server.
type AddToCartRequest struct {
	MenuItemID uint `json:"menuitem" form:"menuitem" binding:"required"`
	Quantity   int  `json:"quantity" form:"quantity" binding:"required"`
}

func (h *Handler) ListCartHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	lines, err := h.Carts.List(c.Request.Context(), actor.UserID)
	if err != nil {
		h.respondError(c, "list_cart_failed", err)
		return
	}

	c.JSON(http.StatusOK, lines)
}

func (h *Handler) AddToCartHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var request AddToCartRequest
	if err := c.ShouldBind(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.Carts.Add(c.Request.Context(), actor.UserID, request.MenuItemID, request.Quantity)
	if err != nil {
		h.respondError(c, "add_to_cart_failed", err)
		return
	}

	c.JSON(http.StatusCreated, line)
}

func (h *Handler) ClearCartHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.Carts.Clear(c.Request.Context(), actor.UserID); err != nil {
		h.respondError(c, "clear_cart_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
