package models

import "time"

// Role IDs stored in users.role_id and stage_assignments.role_id.
const (
	RoleSiteAdmin     = 1
	RoleManager       = 2
	RoleSectionEditor = 3
	RoleAssistant     = 4
	RoleReviewer      = 5
	RoleAuthor        = 6
)

// User represents the users table
type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname string     `gorm:"column:user_lname" json:"user_lname"`
	Email     string     `gorm:"column:email" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	RoleID    int        `gorm:"column:role_id" json:"role_id"`
	CreateAt  time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt  time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// Role represents the roles table
type Role struct {
	RoleID   int    `gorm:"primaryKey;column:role_id" json:"role_id"`
	RoleName string `gorm:"column:role_name" json:"role_name"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

// FullName returns the display name used in notifications.
func (u *User) FullName() string {
	return u.UserFname + " " + u.UserLname
}

// HasEditorialBypass reports whether the user's global role grants full
// visibility over submissions in their context (no anonymization, no
// stage-assignment gating).
func HasEditorialBypass(roleIDs []int) bool {
	for _, id := range roleIDs {
		if id == RoleSiteAdmin || id == RoleManager {
			return true
		}
	}
	return false
}
