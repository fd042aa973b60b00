package models

import "time"

// APIUser is a credential record for the REST API itself. Records are never
// deleted in normal operation; deactivation flips IsActive instead.
type APIUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	PasswordHash []byte    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
}

func (APIUser) TableName() string { return "api_users" }
