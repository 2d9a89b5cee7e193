package models

import "time"

// RelayEvent is the JSON event published to Redis Pub/Sub after every relay
// attempt. Delivered=false events make swallowed delivery failures visible
// to the admin event feed instead of disappearing into the log.
type RelayEvent struct {
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Kind      string    `json:"kind"`
	Delivered bool      `json:"delivered"`
	At        time.Time `json:"at"`
}

// Stats is the aggregate usage snapshot shown by /stat and the admin API.
type Stats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveChats   int64 `json:"active_chats"`
	TodayActive   int64 `json:"today_active"`
	TotalMessages int64 `json:"total_messages"`
}

// CleanupReport counts the rows removed by a retention cleanup run.
type CleanupReport struct {
	Chats       int64 `json:"chats"`
	Invitations int64 `json:"invitations"`
	Messages    int64 `json:"messages"`
	Users       int64 `json:"users"`
}
