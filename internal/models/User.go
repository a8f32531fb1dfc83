package models

import "time"

// User is an account that can own flights. Moderators additionally decide
// the outcome of formed flights.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	IsModerator bool      `gorm:"not null;default:false" json:"is_moderator"`
}
