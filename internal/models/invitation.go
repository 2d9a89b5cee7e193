package models

import "time"

// InvitationStatus is the lifecycle state of an invitation. An invitation
// transitions out of pending exactly once and is never mutated afterwards.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// Invitation is a pairing proposal from sender to receiver. At most one
// pending invitation may exist per ordered (sender, receiver) pair; the
// partial unique index enforces this even for writers that bypass the
// storage transactions.
type Invitation struct {
	ID         int64            `gorm:"primaryKey" json:"id"`
	SenderID   int64            `gorm:"index:idx_invitation_pair;uniqueIndex:udx_invitation_pending,where:status = 'pending'" json:"sender_id"`
	ReceiverID int64            `gorm:"index:idx_invitation_pair;uniqueIndex:udx_invitation_pending,where:status = 'pending'" json:"receiver_id"`
	Status     InvitationStatus `gorm:"size:20;default:pending" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	// RespondedAt is set once, when the invitation is accepted or rejected.
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}
