package models

const (
	GroupManager      = "Manager"
	GroupDeliveryCrew = "Delivery crew"
)

// RoleGroups are created at startup if missing.
var RoleGroups = []string{GroupManager, GroupDeliveryCrew}

// Group is a named role group. Membership lives in the user_groups join table.
type Group struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:150;not null"`
}

func (Group) TableName() string {
	return "role_groups"
}
