package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"little-lemon-go/models"
)

// CartService manages the pending lines of each user's cart.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := s.db.WithContext(ctx).
		Preload("MenuItem").
		Where("user_id = ?", userID).
		Order("id").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("list cart of user %d: %w", userID, err)
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

// Add puts quantity units of a menu item in the cart, priced at the item's
// current price.
func (s *CartService) Add(ctx context.Context, userID, menuItemID uint, quantity int) (*models.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	db := s.db.WithContext(ctx)

	var menuItem models.MenuItem
	if err := db.First(&menuItem, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("load menu item %d: %w", menuItemID, err)
	}

	price := models.LinePrice(menuItem.Price, quantity)
	if price.GreaterThan(models.MaxPrice) {
		return nil, ErrLinePriceTooLarge
	}

	line := models.CartLine{
		UserID:     userID,
		MenuItemID: menuItem.ID,
		Quantity:   quantity,
		UnitPrice:  menuItem.Price,
		Price:      price,
	}
	if err := db.Create(&line).Error; err != nil {
		return nil, fmt.Errorf("add menu item %d to cart: %w", menuItemID, err)
	}
	line.MenuItem = &menuItem

	return &line, nil
}

// Clear empties the user's cart. Clearing an empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{}).Error
	if err != nil {
		return fmt.Errorf("clear cart of user %d: %w", userID, err)
	}
	return nil
}
