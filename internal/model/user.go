package model

import "time"

// User stores system users. Email is the login identifier and is unique.
// Users are never deleted; only their role changes.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	FullName     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	RoleID       uint   `gorm:"not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Role Role `gorm:"foreignKey:RoleID"`
}

func (User) TableName() string { return "users" }
