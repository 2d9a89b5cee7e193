package models

import "time"

// User represents a bot user. The Telegram ID serves as the primary key
// since the platform guarantees it is globally unique.
type User struct {
	// TelegramID is the platform-assigned numeric identifier.
	TelegramID int64 `gorm:"primaryKey" json:"telegram_id"`
	// Username is the optional @handle, may be empty.
	Username string `json:"username,omitempty"`
	// FirstName is the display name shown to the chat partner.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	// Language is the locale code used for all bot replies.
	Language string `gorm:"size:8;default:uz" json:"language"`

	CreatedAt time.Time `json:"created_at"`
	// LastActive is refreshed on every interaction and drives
	// retention cleanup of inactive users.
	LastActive time.Time `gorm:"index" json:"last_active"`
}

// DisplayName returns the name used when relaying messages to a partner.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "Anonymous"
}
