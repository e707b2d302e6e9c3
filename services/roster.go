package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"little-lemon-go/models"
)

// RosterService manages membership of the staff role groups.
type RosterService struct {
	db *gorm.DB
}

func NewRosterService(db *gorm.DB) *RosterService {
	return &RosterService{db: db}
}

func (s *RosterService) Members(ctx context.Context, groupName string) ([]models.User, error) {
	db := s.db.WithContext(ctx)

	group, err := findGroup(db, groupName)
	if err != nil {
		return nil, err
	}

	var users []models.User
	err = db.Joins("JOIN user_groups ON user_groups.user_id = users.id").
		Where("user_groups.group_id = ?", group.ID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", groupName, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Add puts the user with the given username into the group. Adding an
// existing member is a no-op.
func (s *RosterService) Add(ctx context.Context, groupName, username string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	group, err := findGroup(db, groupName)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}

	if err := db.Model(&user).Association("Groups").Append(group); err != nil {
		return nil, fmt.Errorf("add %q to %s: %w", username, groupName, err)
	}
	return &user, nil
}

// Remove takes the user out of the group. Removing a non-member succeeds.
func (s *RosterService) Remove(ctx context.Context, groupName string, userID uint) error {
	db := s.db.WithContext(ctx)

	group, err := findGroup(db, groupName)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	if err := db.Model(&user).Association("Groups").Delete(group); err != nil {
		return fmt.Errorf("remove %q from %s: %w", user.Username, groupName, err)
	}
	return nil
}

func findGroup(db *gorm.DB, name string) (*models.Group, error) {
	var group models.Group
	if err := db.Where("name = ?", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("load group %q: %w", name, err)
	}
	return &group, nil
}
