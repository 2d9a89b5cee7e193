package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleAdminCommand routes the operator commands. Non-admins get the idle
// hint so the commands stay undiscoverable. Storage faults degrade to empty
// or zero results rather than failing the command.
func (s *BotService) handleAdminCommand(ctx context.Context, user *models.User, msg *tgbotapi.Message) {
	if !s.Cfg.IsAdmin(user.TelegramID) {
		s.replyKey(user, "idle_hint")
		return
	}

	switch msg.Command() {
	case "stat":
		s.adminStats(user)
	case "users":
		s.adminUsers(user)
	case "chats":
		s.adminChats(user)
	case "broadcast":
		s.adminBroadcast(ctx, user, msg.CommandArguments())
	case "cleanup":
		s.adminCleanup(user, msg.CommandArguments())
	}
}

func (s *BotService) adminStats(user *models.User) {
	stats, err := s.Storage.GetStats()
	if err != nil {
		log.Printf("ERROR: Failed to collect stats: %v", err)
		stats = &models.Stats{}
	}
	s.replyText(user, fmt.Sprintf(
		"📊 Statistics\n\n👥 Users: %d\n💬 Active chats: %d\n🟢 Active today: %d\n✉️ Messages: %d",
		stats.TotalUsers, stats.ActiveChats, stats.TodayActive, stats.TotalMessages))
}

func (s *BotService) adminUsers(user *models.User) {
	users, err := s.Storage.GetAllUsers()
	if err != nil {
		log.Printf("ERROR: Failed to list users: %v", err)
		users = nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 Users (%d total)\n", len(users))
	for i, u := range users {
		if i >= config.UserListLimit {
			fmt.Fprintf(&b, "... and %d more", len(users)-config.UserListLimit)
			break
		}
		fmt.Fprintf(&b, "\n%d. %s (ID: %d)", i+1, u.DisplayName(), u.TelegramID)
	}
	s.replyText(user, b.String())
}

func (s *BotService) adminChats(user *models.User) {
	chats, err := s.Storage.GetAllChats()
	if err != nil {
		log.Printf("ERROR: Failed to list chats: %v", err)
		chats = nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💬 Active chats (%d total)\n", len(chats))
	for i, c := range chats {
		if i >= config.ChatListLimit {
			fmt.Fprintf(&b, "... and %d more", len(chats)-config.ChatListLimit)
			break
		}
		fmt.Fprintf(&b, "\n%d. %s ↔ %s (chat %d)", i+1, c.User1Name, c.User2Name, c.ID)
	}
	s.replyText(user, b.String())
}

func (s *BotService) adminBroadcast(ctx context.Context, user *models.User, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.replyText(user, "Usage: /broadcast <message>")
		return
	}

	entry, err := Broadcast(ctx, s.Sender, s.Storage, s.Localizer, user.TelegramID, text)
	if err != nil {
		log.Printf("ERROR: Broadcast by admin %d failed: %v", user.TelegramID, err)
		s.replyKey(user, "error_generic")
		return
	}
	s.replyText(user, fmt.Sprintf("📢 Broadcast finished\n✅ Sent: %d\n❌ Failed: %d", entry.Sent, entry.Failed))
}

func (s *BotService) adminCleanup(user *models.User, args string) {
	retention := config.DefaultRetention
	if args = strings.TrimSpace(args); args != "" {
		days, err := strconv.Atoi(args)
		if err != nil || days <= 0 {
			s.replyText(user, "Usage: /cleanup [days]")
			return
		}
		retention = time.Duration(days) * 24 * time.Hour
	}

	report, err := s.Storage.CleanupOldData(retention)
	if err != nil {
		log.Printf("ERROR: Cleanup failed: %v", err)
		s.replyKey(user, "error_generic")
		return
	}
	s.replyText(user, fmt.Sprintf(
		"🧹 Cleanup finished (older than %d days)\n\n💬 Chats: %d\n💌 Invitations: %d\n✉️ Messages: %d\n👥 Users: %d",
		int(retention.Hours()/24), report.Chats, report.Invitations, report.Messages, report.Users))
}
