package models

type Category struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Slug  string `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Title string `json:"title" gorm:"index;size:255;not null"`
}

type MenuItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title" gorm:"index;size:255;not null"`
	Price      Money     `json:"price" gorm:"type:decimal(6,2);index;not null"`
	Featured   bool      `json:"featured" gorm:"index;not null;default:false"`
	CategoryID uint      `json:"category" gorm:"not null;index"`
	Category   *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
}
