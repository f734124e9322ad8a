package models

import (
	"time"
)

// User is an account that owns recipes and favorites.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	ProfilePic   *string   `gorm:"size:255" json:"profile_pic,omitempty"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	JoinedAt     time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
