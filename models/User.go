package models

import "gorm.io/gorm"

// User represents an application account that can authenticate with the
// platform. Its ID is the tenant identifier scoping every raw material and
// product record.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
}
