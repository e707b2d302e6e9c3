package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"little-lemon-go/models"
)

// CreateCategoryRequest defines the request body for creating a category
type CreateCategoryRequest struct {
	Slug  string `json:"slug" form:"slug" binding:"required,max=255"`
	Title string `json:"title" form:"title" binding:"required,max=255"`
}

func (h *Handler) ListCategoriesHandler(c *gin.Context) {
	var categories []models.Category
	if err := h.DB.WithContext(c.Request.Context()).Order("id").Find(&categories).Error; err != nil {
		h.respondError(c, "list_categories_failed", err)
		return
	}

	if categories == nil {
		categories = []models.Category{}
	}

	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategoryHandler(c *gin.Context) {
	var request CreateCategoryRequest
	if err := c.ShouldBind(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{
		Slug:  request.Slug,
		Title: request.Title,
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
		h.respondError(c, "create_category_failed", err)
		return
	}

	c.JSON(http.StatusCreated, category)
}
