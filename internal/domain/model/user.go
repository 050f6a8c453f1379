package model

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User is a studio account. Password is write-only: it is hashed into
// PasswordHash before saving and never rendered.
type User struct {
	Base
	Name         string     `gorm:"size:120" json:"name" binding:"required"`
	Email        *string    `gorm:"size:190;uniqueIndex" json:"email" binding:"omitempty,email"`
	Phone        *string    `gorm:"size:40" json:"phone"`
	Role         string     `gorm:"size:20;index" json:"role" binding:"omitempty,oneof=admin manager teacher student"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	Password     string     `gorm:"-" json:"password,omitempty" binding:"omitempty,min=6"`
	PasswordHash string     `gorm:"column:password_hash;size:100" json:"-"`
}

func (User) TableName() string { return "users" }

// IsStaff reports whether the user may sign in to the admin panel.
func (u *User) IsStaff() bool {
	return u.IsActive && (u.Role == RoleAdmin || u.Role == RoleManager)
}

// WriteOnlyFields lists JSON keys accepted on input but never rendered.
func (u *User) WriteOnlyFields() []string { return []string{"password"} }
