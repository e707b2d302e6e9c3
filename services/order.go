package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"little-lemon-go/access"
	"little-lemon-go/models"
)

var orderOrderingFields = map[string]string{
	"user":   "user_id",
	"status": "status",
	"total":  "total",
}

// OrderUpdate carries the staff-editable fields of an order. Nil means
// unchanged; ClearDeliveryCrew unassigns the crew member.
type OrderUpdate struct {
	Status            *models.OrderStatus
	DeliveryCrewID    *uint
	ClearDeliveryCrew bool
}

func (u OrderUpdate) empty() bool {
	return u.Status == nil && u.DeliveryCrewID == nil && !u.ClearDeliveryCrew
}

func (u OrderUpdate) changesCrew() bool {
	return u.DeliveryCrewID != nil || u.ClearDeliveryCrew
}

// OrderService turns carts into orders and serves role-scoped order access.
type OrderService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, now: time.Now}
}

// Checkout converts the actor's cart into an unprocessed order. Loading the
// cart, writing the order and its lines and draining the cart happen in one
// transaction: on any error nothing is persisted.
func (s *OrderService) Checkout(ctx context.Context, actor access.Actor) (*models.Order, error) {
	if actor.IsStaff() {
		return nil, ErrStaffCheckout
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Load the cart
		var lines []models.CartLine
		if err := tx.Where("user_id = ?", actor.UserID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// 2. Total is the sum of the stored line prices
		total := decimal.Zero
		lineIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			total = total.Add(line.Price.Decimal)
			lineIDs = append(lineIDs, line.ID)
		}
		if total.GreaterThan(models.MaxOrderTotal) {
			return ErrOrderTotalTooLarge
		}

		// 3. Create the order
		order = models.Order{
			UserID: actor.UserID,
			Status: models.OrderStatusUnprocessed,
			Total:  models.NewMoney(total),
			Date:   s.now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		// 4. Freeze every cart line into an order line
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				Price:      line.Price,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		// 5. Drain exactly the lines that were ordered
		result := tx.Where("user_id = ? AND id IN ?", actor.UserID, lineIDs).Delete(&models.CartLine{})
		if result.Error != nil {
			return fmt.Errorf("drain cart: %w", result.Error)
		}
		if result.RowsAffected != int64(len(lines)) {
			return ErrCartChanged
		}

		order.OrderItems = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// List returns the orders the actor may see: all of them for managers, the
// assigned ones for delivery crew and their own for customers.
func (s *OrderService) List(ctx context.Context, actor access.Actor, ordering string) ([]models.Order, error) {
	q := withOrderDetails(scopeOrders(s.db.WithContext(ctx), actor))
	q = ApplyOrdering(q, ordering, orderOrderingFields)

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Get returns one order if it is visible to the actor.
func (s *OrderService) Get(ctx context.Context, actor access.Actor, orderID uint) (*models.Order, error) {
	return findOrder(withOrderDetails(scopeOrders(s.db.WithContext(ctx), actor)), orderID)
}

// Update changes status and/or delivery crew of a visible order. Delivery
// crew may only move the status of orders assigned to them.
func (s *OrderService) Update(ctx context.Context, actor access.Actor, orderID uint, update OrderUpdate) (*models.Order, error) {
	if update.empty() {
		return nil, ErrEmptyUpdate
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if update.changesCrew() && actor.Role != access.RoleManager {
		return nil, ErrCrewAssignmentForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(scopeOrders(tx, actor), orderID)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{}

		if update.Status != nil {
			if !order.Status.CanBecome(*update.Status) {
				return ErrStatusRegression
			}
			changes["status"] = *update.Status
		}

		if update.DeliveryCrewID != nil {
			if err := requireDeliveryCrew(tx, *update.DeliveryCrewID); err != nil {
				return err
			}
			changes["delivery_crew_id"] = *update.DeliveryCrewID
		} else if update.ClearDeliveryCrew {
			changes["delivery_crew_id"] = nil
		}

		if err := tx.Model(order).Updates(changes).Error; err != nil {
			return fmt.Errorf("update order %d: %w", orderID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, orderID)
}

// Delete removes a visible order together with its lines.
func (s *OrderService) Delete(ctx context.Context, actor access.Actor, orderID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(scopeOrders(tx, actor), orderID)
		if err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("delete items of order %d: %w", order.ID, err)
		}
		if err := tx.Delete(order).Error; err != nil {
			return fmt.Errorf("delete order %d: %w", order.ID, err)
		}
		return nil
	})
}

func scopeOrders(q *gorm.DB, actor access.Actor) *gorm.DB {
	switch actor.Role {
	case access.RoleManager:
		return q
	case access.RoleDeliveryCrew:
		return q.Where("delivery_crew_id = ?", actor.UserID)
	default:
		return q.Where("user_id = ?", actor.UserID)
	}
}

func withOrderDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("User").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("OrderItems.MenuItem")
}

func findOrder(q *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := q.Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}
	return &order, nil
}

func requireDeliveryCrew(tx *gorm.DB, userID uint) error {
	var count int64
	err := tx.Table("user_groups").
		Joins("JOIN role_groups ON role_groups.id = user_groups.group_id").
		Where("user_groups.user_id = ? AND role_groups.name = ?", userID, models.GroupDeliveryCrew).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check delivery crew %d: %w", userID, err)
	}
	if count == 0 {
		return ErrNotDeliveryCrew
	}
	return nil
}
