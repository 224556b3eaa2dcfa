package models

import (
	"gorm.io/gorm"
)

// UserRole defines the role of a platform user
type UserRole string

const (
	RoleStudent    UserRole = "STUDENT"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleAdmin      UserRole = "ADMIN"
)

// User model
type User struct {
	gorm.Model          // Auto includes ID, CreatedAt, UpdatedAt, DeletedAt
	Name       string   `json:"name" gorm:"not null"`
	Email      string   `json:"email" gorm:"uniqueIndex;not null"`
	Role       UserRole `json:"role" gorm:"type:varchar(20);default:'STUDENT'"`
	IsDeleted  bool     `gorm:"default:false"`
}
