package models

import "golang.org/x/crypto/bcrypt"

type User struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Username string  `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email    string  `json:"email" gorm:"size:254"`
	Password string  `json:"-" gorm:"not null"`
	IsStaff  bool    `json:"-" gorm:"not null;default:false"`
	Groups   []Group `json:"-" gorm:"many2many:user_groups;"`
}

// HashPassword hashes the user's password
func (u *User) HashPassword(password string) error {
	passwordInBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(passwordInBytes)
	return nil
}

// CheckPassword checks if the provided password matches the user's password
func (u *User) CheckPassword(providedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(providedPassword))
}
