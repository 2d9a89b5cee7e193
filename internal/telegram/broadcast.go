package telegram

import (
	"context"
	"fmt"
	"log"

	"pairlink/backend/internal/localization"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/relay"
	"pairlink/backend/internal/storage"

	"github.com/lib/pq"
)

// Broadcast fans a text out to every known user and records the outcome.
// Per-recipient failures are collected, not fatal; the returned log entry
// is already persisted (best-effort) when the function returns.
func Broadcast(ctx context.Context, send relay.Sender, store storage.Storage, loc *localization.Localizer, adminID int64, text string) (*models.BroadcastLog, error) {
	users, err := store.GetAllUsers()
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return &models.BroadcastLog{AdminID: adminID, Text: text}, nil
	}

	entry := &models.BroadcastLog{AdminID: adminID, Text: text}
	for _, user := range users {
		body := fmt.Sprintf(loc.GetString(user.Language, "broadcast_prefix"), text)
		if err := send.SendText(ctx, user.TelegramID, body); err != nil {
			entry.Failed++
			entry.FailedIDs = append(entry.FailedIDs, user.TelegramID)
			continue
		}
		entry.Sent++
	}
	if entry.FailedIDs == nil {
		entry.FailedIDs = pq.Int64Array{}
	}

	if err := store.SaveBroadcastLog(entry); err != nil {
		log.Printf("ERROR: Failed to save broadcast log for admin %d: %v", adminID, err)
	}
	return entry, nil
}
