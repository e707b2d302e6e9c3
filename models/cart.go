package models

import "github.com/shopspring/decimal"

// CartLine is a pending line in a user's cart. UnitPrice is the menu item
// price when the line was added; Price is always UnitPrice * Quantity.
type CartLine struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"-" gorm:"not null;index"`
	User       *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	MenuItemID uint      `json:"menuitem" gorm:"column:menuitem_id;not null;index"`
	MenuItem   *MenuItem `json:"-" gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	UnitPrice  Money     `json:"unit_price" gorm:"type:decimal(6,2);not null"`
	Price      Money     `json:"price" gorm:"type:decimal(6,2);not null"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}

// LinePrice is the stored price of a line of quantity units at unitPrice.
func LinePrice(unitPrice Money, quantity int) Money {
	return NewMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}
