// Package dbtest opens throwaway SQLite databases with the real schema for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"little-lemon-go/config"
	"little-lemon-go/database"
	"little-lemon-go/models"
)

// New returns a migrated, seeded database living in t.TempDir().
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "lemon.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := database.Open(config.DriverSQLite, dsn, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := database.SeedRoleGroups(context.Background(), db); err != nil {
		t.Fatalf("seed test database: %v", err)
	}
	return db
}

// CreateUser inserts a user and adds it to the named groups.
func CreateUser(t testing.TB, db *gorm.DB, username string, staff bool, groups ...string) models.User {
	t.Helper()

	user := models.User{Username: username, Email: username + "@littlelemon.test", Password: "x", IsStaff: staff}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	for _, name := range groups {
		var group models.Group
		if err := db.Where("name = ?", name).First(&group).Error; err != nil {
			t.Fatalf("load group %s: %v", name, err)
		}
		if err := db.Model(&user).Association("Groups").Append(&group); err != nil {
			t.Fatalf("add %s to %s: %v", username, name, err)
		}
	}
	return user
}

// CreateMenuItem inserts a menu item (and a category for it) priced at price.
func CreateMenuItem(t testing.TB, db *gorm.DB, title, price string) models.MenuItem {
	t.Helper()

	category := models.Category{Slug: "cat-" + title, Title: title}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	item := models.MenuItem{Title: title, Price: models.RequireMoney(price), CategoryID: category.ID}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	return item
}
