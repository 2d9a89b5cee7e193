// Package relay forwards messages between the two participants of an
// active chat and keeps the delivered-message audit trail.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/localization"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
)

// ErrDeliveryFailed means the forward to the partner did not go through
// (partner unreachable or blocked the bot). No audit record is written for
// a failed relay.
var ErrDeliveryFailed = errors.New("relay: delivery failed")

// Sender is the outbound platform transport. Implementations must be
// time-bounded; a send failure is a normal outcome, not a crash.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMedia(ctx context.Context, chatID int64, kind models.MessageKind, fileID, caption string) error
}

// Payload is the tagged union of relayable content. Text carries Text;
// media kinds carry FileID and an optional Caption.
type Payload struct {
	Kind    models.MessageKind
	Text    string
	FileID  string
	Caption string
}

type Engine struct {
	Store storage.Storage
	Send  Sender
	Loc   *localization.Localizer
}

func NewEngine(store storage.Storage, send Sender, loc *localization.Localizer) *Engine {
	return &Engine{Store: store, Send: send, Loc: loc}
}

// Relay forwards the payload from sender to the chat partner. Content is
// forwarded as-is, prefixed with the sender's display name; a sticker is
// forwarded unmodified followed by a separate attribution message. The
// audit record is written only after a successful forward, so the trail
// means "delivered". Relay events are published best-effort either way.
func (e *Engine) Relay(ctx context.Context, chat *models.Chat, sender *models.User, payload Payload) error {
	partnerID := chat.PartnerOf(sender.TelegramID)
	lang := e.partnerLanguage(partnerID)
	name := sender.DisplayName()

	var err error
	switch payload.Kind {
	case models.KindText:
		err = e.Send.SendText(ctx, partnerID, fmt.Sprintf("%s:\n%s", name, payload.Text))
	case models.KindSticker:
		err = e.Send.SendMedia(ctx, partnerID, models.KindSticker, payload.FileID, "")
		if err == nil {
			attribution := fmt.Sprintf(e.Loc.GetString(lang, "sent_sticker"), name)
			err = e.Send.SendText(ctx, partnerID, attribution)
		}
	default:
		caption := fmt.Sprintf(e.Loc.GetString(lang, "sent_"+string(payload.Kind)), name)
		if payload.Caption != "" {
			caption = fmt.Sprintf("%s:\n%s", name, payload.Caption)
		}
		err = e.Send.SendMedia(ctx, partnerID, payload.Kind, payload.FileID, caption)
	}

	e.publishEvent(chat, sender.TelegramID, payload.Kind, err == nil)

	if err != nil {
		log.Printf("ERROR: Failed to relay %s from %d to %d: %v",
			payload.Kind, sender.TelegramID, partnerID, err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	audit := &models.Message{
		ChatID:   chat.ID,
		SenderID: sender.TelegramID,
		Kind:     payload.Kind,
		Content:  auditContent(payload),
	}
	if err := e.Store.SaveMessage(audit); err != nil {
		// The partner already has the message; losing the audit row must
		// not surface as a delivery failure to the sender.
		log.Printf("ERROR: Relay delivered but audit write failed for chat %d: %v", chat.ID, err)
	}
	return nil
}

// partnerLanguage resolves the partner's locale, falling back to the
// default when the user row is unavailable.
func (e *Engine) partnerLanguage(partnerID int64) string {
	partner, err := e.Store.GetUserByTelegramID(partnerID)
	if err != nil || partner == nil {
		return config.DefaultLanguage
	}
	return partner.Language
}

func (e *Engine) publishEvent(chat *models.Chat, senderID int64, kind models.MessageKind, delivered bool) {
	event := models.RelayEvent{
		ChatID:    chat.ID,
		SenderID:  senderID,
		Kind:      string(kind),
		Delivered: delivered,
		At:        time.Now(),
	}
	if err := e.Store.PublishRelayEvent(event); err != nil {
		log.Printf("WARN: Failed to publish relay event for chat %d: %v", chat.ID, err)
	}
}

// auditContent derives the stored content: truncated body for text, the
// kind tag for media (never the platform file reference).
func auditContent(payload Payload) string {
	if payload.Kind != models.KindText {
		return string(payload.Kind)
	}
	return truncate(payload.Text, config.AuditTextLimit)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
