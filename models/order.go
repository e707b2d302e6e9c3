package models

import "time"

type OrderStatus string

const (
	OrderStatusUnprocessed OrderStatus = "unprocessed"
	OrderStatusProcessing  OrderStatus = "processing"
	OrderStatusDelivered   OrderStatus = "delivered"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusUnprocessed: 0,
	OrderStatusProcessing:  1,
	OrderStatusDelivered:   2,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// CanBecome reports whether an order in status s may move to next.
// Status only moves forward; delivered is terminal.
func (s OrderStatus) CanBecome(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

type Order struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	UserID         uint        `json:"-" gorm:"not null;index"`
	User           *User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	DeliveryCrewID *uint       `json:"delivery_crew" gorm:"index"`
	DeliveryCrew   *User       `json:"-" gorm:"foreignKey:DeliveryCrewID;constraint:OnDelete:SET NULL"`
	Status         OrderStatus `json:"status" gorm:"size:20;not null;index"`
	Total          Money       `json:"total" gorm:"type:decimal(8,2);not null"`
	Date           time.Time   `json:"date" gorm:"not null;index"`
	OrderItems     []OrderItem `json:"order_items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is a cart line frozen into an order at checkout.
type OrderItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	MenuItemID uint      `json:"-" gorm:"column:menuitem_id;not null;index"`
	MenuItem   *MenuItem `json:"menuitem,omitempty" gorm:"foreignKey:MenuItemID;constraint:OnDelete:RESTRICT"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	UnitPrice  Money     `json:"unit_price" gorm:"type:decimal(6,2);not null"`
	Price      Money     `json:"price" gorm:"type:decimal(6,2);not null"`
}
