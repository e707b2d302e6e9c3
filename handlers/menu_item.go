package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"little-lemon-go/models"
	"little-lemon-go/services"
)

var menuItemOrderingFields = map[string]string{
	"title": "title",
	"price": "price",
}

// MenuItemRequest is used for create and PUT; PATCH uses the same shape with
// every field optional.
type MenuItemRequest struct {
	Title    *string          `json:"title" form:"title" binding:"omitempty,min=1,max=255"`
	Price    *decimal.Decimal `json:"price" form:"price"`
	Featured *bool            `json:"featured" form:"featured"`
	Category *uint            `json:"category" form:"category"`
}

func (r *MenuItemRequest) complete() bool {
	return r.Title != nil && r.Price != nil && r.Category != nil
}

func (r *MenuItemRequest) empty() bool {
	return r.Title == nil && r.Price == nil && r.Featured == nil && r.Category == nil
}

// validate checks the fields that were sent. It writes a 400 and returns
// false on the first problem.
func (h *Handler) validateMenuItemRequest(c *gin.Context, request *MenuItemRequest) bool {
	if request.Price != nil && !models.ValidPrice(*request.Price) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "price must be greater than 0, at most 9999.99 and have at most 2 decimal places"})
		return false
	}
	if request.Category != nil {
		var category models.Category
		if err := h.DB.WithContext(c.Request.Context()).First(&category, *request.Category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "category does not exist"})
				return false
			}
			h.respondError(c, "load_category_failed", err)
			return false
		}
	}
	return true
}

func (h *Handler) ListMenuItemsHandler(c *gin.Context) {
	query := services.ApplyOrdering(h.DB.WithContext(c.Request.Context()), c.Query("ordering"), menuItemOrderingFields)

	var menuItems []models.MenuItem
	if err := query.Find(&menuItems).Error; err != nil {
		h.respondError(c, "list_menu_items_failed", err)
		return
	}

	if menuItems == nil {
		menuItems = []models.MenuItem{}
	}

	c.JSON(http.StatusOK, menuItems)
}

func (h *Handler) CreateMenuItemHandler(c *gin.Context) {
	var request MenuItemRequest
	if err := c.ShouldBind(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !request.complete() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "title, price and category are required"})
		return
	}
	if !h.validateMenuItemRequest(c, &request) {
		return
	}

	menuItem := &models.MenuItem{
		Title:      *request.Title,
		Price:      models.NewMoney(*request.Price),
		CategoryID: *request.Category,
	}
	if request.Featured != nil {
		menuItem.Featured = *request.Featured
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(menuItem).Error; err != nil {
		h.respondError(c, "create_menu_item_failed", err)
		return
	}

	c.JSON(http.StatusCreated, menuItem)
}

func (h *Handler) GetMenuItemHandler(c *gin.Context) {
	menuItem, ok := h.findMenuItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, menuItem)
}

// UpdateMenuItemHandler serves PUT (all fields required) and PATCH.
func (h *Handler) UpdateMenuItemHandler(c *gin.Context) {
	menuItem, ok := h.findMenuItem(c)
	if !ok {
		return
	}

	var request MenuItemRequest
	if err := c.ShouldBind(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if c.Request.Method == http.MethodPut && !request.complete() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "title, price and category are required"})
		return
	}
	if request.empty() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No update fields provided"})
		return
	}
	if !h.validateMenuItemRequest(c, &request) {
		return
	}

	// Build map for updates to handle partial updates correctly with pointers
	updates := make(map[string]interface{})

	if request.Title != nil {
		updates["title"] = *request.Title
	}

	if request.Price != nil {
		updates["price"] = models.NewMoney(*request.Price)
	}

	if request.Featured != nil {
		updates["featured"] = *request.Featured
	}

	if request.Category != nil {
		updates["category_id"] = *request.Category
	}

	if err := h.DB.WithContext(c.Request.Context()).Model(menuItem).Updates(updates).Error; err != nil {
		h.respondError(c, "update_menu_item_failed", err)
		return
	}

	c.JSON(http.StatusOK, menuItem)
}

// DeleteMenuItemHandler removes a menu item that no order refers to. Cart
// lines still holding it go with it.
func (h *Handler) DeleteMenuItemHandler(c *gin.Context) {
	menuItem, ok := h.findMenuItem(c)
	if !ok {
		return
	}

	var ordered int64
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderItem{}).Where("menuitem_id = ?", menuItem.ID).Count(&ordered).Error; err != nil {
			return err
		}
		if ordered > 0 {
			return nil
		}
		if err := tx.Where("menuitem_id = ?", menuItem.ID).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(menuItem).Error
	})
	if err != nil {
		h.respondError(c, "delete_menu_item_failed", err)
		return
	}
	if ordered > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Menu item is referenced by existing orders"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) findMenuItem(c *gin.Context) (*models.MenuItem, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}

	var menuItem models.MenuItem
	if err := h.DB.WithContext(c.Request.Context()).First(&menuItem, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return nil, false
		}
		h.respondError(c, "load_menu_item_failed", err)
		return nil, false
	}
	return &menuItem, true
}
