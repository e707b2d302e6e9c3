// Package access resolves who is acting on a request and decides whether a
// route may be served to them.
package access

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"little-lemon-go/models"
)

type Role int

const (
	RoleCustomer Role = iota
	RoleDeliveryCrew
	RoleManager
)

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "manager"
	case RoleDeliveryCrew:
		return "delivery_crew"
	default:
		return "customer"
	}
}

// Actor is the authenticated user behind a request, classified once.
type Actor struct {
	UserID   uint
	Username string
	Role     Role
	// Admin is the administrative flag on the account. It implies RoleManager.
	Admin bool
}

// IsStaff reports whether the actor works for the restaurant.
func (a Actor) IsStaff() bool {
	return a.Role == RoleManager || a.Role == RoleDeliveryCrew
}

var ErrUnknownUser = errors.New("user does not exist")

// Classify maps the administrative flag and group names to a single role.
// Manager wins over Delivery crew.
func Classify(admin bool, groups []string) Role {
	if admin {
		return RoleManager
	}
	role := RoleCustomer
	for _, name := range groups {
		switch name {
		case models.GroupManager:
			return RoleManager
		case models.GroupDeliveryCrew:
			role = RoleDeliveryCrew
		}
	}
	return role
}

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve loads the user and its group memberships and classifies it.
func (r *Resolver) Resolve(ctx context.Context, userID uint) (Actor, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Groups").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, ErrUnknownUser
		}
		return Actor{}, fmt.Errorf("load user %d: %w", userID, err)
	}

	names := make([]string, 0, len(user.Groups))
	for _, g := range user.Groups {
		names = append(names, g.Name)
	}

	return Actor{
		UserID:   user.ID,
		Username: user.Username,
		Role:     Classify(user.IsStaff, names),
		Admin:    user.IsStaff,
	}, nil
}
