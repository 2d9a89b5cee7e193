package models

import "time"

// Chat represents an exclusive 1-on-1 relay session between two users.
// At most one chat with IsActive set may contain a given user at any time;
// the storage layer enforces this inside its transactions.
type Chat struct {
	ID int64 `gorm:"primaryKey" json:"id"`
	// User1ID is the invitation sender, User2ID the accepting receiver.
	User1ID int64 `gorm:"index" json:"user1_id"`
	User2ID int64 `gorm:"index" json:"user2_id"`
	// IsActive is cleared when either participant ends the chat.
	IsActive  bool       `gorm:"index" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// HasParticipant reports whether userID takes part in the chat.
func (c *Chat) HasParticipant(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// PartnerOf returns the other participant of the chat. The caller must
// ensure userID is a participant; for a foreign userID it returns User1ID.
func (c *Chat) PartnerOf(userID int64) int64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// ChatSummary is the admin listing row: a chat joined with the display
// names of both participants.
type ChatSummary struct {
	ID        int64      `json:"id"`
	User1ID   int64      `json:"user1_id"`
	User1Name string     `json:"user1_name"`
	User2ID   int64      `json:"user2_id"`
	User2Name string     `json:"user2_name"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
