package models

import (
	"time"

	"github.com/lib/pq"
)

// BroadcastLog records the outcome of an admin broadcast fan-out.
// FailedIDs keeps the recipients that could not be reached so an admin
// can retry or prune them later.
type BroadcastLog struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	AdminID   int64         `json:"admin_id"`
	Text      string        `gorm:"type:text" json:"text"`
	Sent      int           `json:"sent"`
	Failed    int           `json:"failed"`
	FailedIDs pq.Int64Array `gorm:"type:bigint[]" json:"failed_ids,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
