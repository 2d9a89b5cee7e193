package models

import "time"

// MessageKind tags the payload type of a relayed message.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindPhoto    MessageKind = "photo"
	KindVideo    MessageKind = "video"
	KindDocument MessageKind = "document"
	KindAudio    MessageKind = "audio"
	KindVoice    MessageKind = "voice"
	KindSticker  MessageKind = "sticker"
)

// MediaKinds lists every non-text kind the relay accepts.
var MediaKinds = []MessageKind{
	KindPhoto, KindVideo, KindDocument, KindAudio, KindVoice, KindSticker,
}

// Message is an append-only audit record of a successfully delivered relay.
// For text messages Content holds the (truncated) body; for media it holds
// only the kind tag, never the platform file reference.
type Message struct {
	ID       int64       `gorm:"primaryKey" json:"id"`
	ChatID   int64       `gorm:"index" json:"chat_id"`
	SenderID int64       `json:"sender_id"`
	Kind     MessageKind `gorm:"column:message_type;size:20" json:"kind"`
	Content  string      `gorm:"type:text" json:"content"`
	SentAt   time.Time   `gorm:"autoCreateTime;index" json:"sent_at"`
}
