// Package telegram handles the integration with the Telegram Bot API. It
// receives updates, applies the lifecycle gate, and routes commands, button
// presses and free-form messages into the pairing and relay services.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/localization"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/pairing"
	"pairlink/backend/internal/relay"
	"pairlink/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// StateAwaitingPartnerID marks a user who pressed "add partner" and whose
// next message is interpreted as the candidate's ID.
const StateAwaitingPartnerID = "awaiting_partner_id"

// languageNames maps locale codes to the labels shown on the language
// keyboard.
var languageNames = map[string]string{
	"uz": "O'zbekcha",
	"en": "English",
}

// BotService receives Telegram updates and routes them to the core services.
type BotService struct {
	BotAPI    *tgbotapi.BotAPI
	Sender    *Sender
	Storage   storage.Storage
	Pairing   *pairing.Service
	Relay     *relay.Engine
	Localizer *localization.Localizer
	Cfg       *config.Config
}

func NewBotService(bot *tgbotapi.BotAPI, sender *Sender, store storage.Storage, pair *pairing.Service, engine *relay.Engine, loc *localization.Localizer, cfg *config.Config) *BotService {
	return &BotService{
		BotAPI:    bot,
		Sender:    sender,
		Storage:   store,
		Pairing:   pair,
		Relay:     engine,
		Localizer: loc,
		Cfg:       cfg,
	}
}

// Run is the main loop for receiving Telegram updates.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	log.Printf("✅ Authorized on account %s", s.BotAPI.Self.UserName)

	for update := range updates {
		switch {
		case update.Message != nil:
			s.handleMessage(update.Message)
		case update.CallbackQuery != nil:
			s.handleCallbackQuery(update.CallbackQuery)
		}
	}
}

// gate applies the lifecycle precondition: the acting user exists in the
// store and their last-active timestamp is fresh.
func (s *BotService) gate(from *tgbotapi.User) (*models.User, error) {
	return s.Storage.SaveUserIfNotExists(from.ID, from.UserName, from.FirstName, from.LastName)
}

func (s *BotService) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	ctx := context.Background()

	user, err := s.gate(msg.From)
	if err != nil {
		log.Printf("ERROR: Lifecycle gate failed for user %d: %v", msg.From.ID, err)
		return
	}

	if msg.IsCommand() {
		s.handleCommand(ctx, user, msg)
		return
	}

	state, err := s.Storage.GetUserState(user.TelegramID)
	if err != nil {
		log.Printf("ERROR: Failed to read session state for user %d: %v", user.TelegramID, err)
	}
	if state == StateAwaitingPartnerID {
		s.handlePartnerID(ctx, user, msg)
		return
	}

	chat, err := s.Pairing.ActiveChatOf(ctx, user.TelegramID)
	if err != nil {
		log.Printf("ERROR: Failed to resolve active chat for user %d: %v", user.TelegramID, err)
		s.replyKey(user, "error_generic")
		return
	}
	if chat != nil {
		s.relayMessage(ctx, user, chat, msg)
		return
	}

	s.replyKey(user, "idle_hint")
}

func (s *BotService) handleCommand(ctx context.Context, user *models.User, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		s.handleStart(user)
	case "help":
		s.replyKey(user, "help_text")
	case "end":
		s.replyKey(user, s.endChat(ctx, user))
	case "language":
		s.handleLanguageCommand(user)
	case "stat", "users", "chats", "broadcast", "cleanup":
		s.handleAdminCommand(ctx, user, msg)
	default:
		s.replyKey(user, "idle_hint")
	}
}

func (s *BotService) handleStart(user *models.User) {
	lang := user.Language
	text := fmt.Sprintf("%s\n\n%s\n\n%s",
		fmt.Sprintf(s.Localizer.GetString(lang, "welcome"), user.DisplayName()),
		fmt.Sprintf(s.Localizer.GetString(lang, "your_id"), user.TelegramID),
		s.Localizer.GetString(lang, "how_get_id"))

	reply := tgbotapi.NewMessage(user.TelegramID, text)
	reply.ReplyMarkup = s.mainKeyboard(lang)
	if _, err := s.BotAPI.Send(reply); err != nil {
		log.Printf("ERROR: Failed to send start reply to %d: %v", user.TelegramID, err)
	}
}

func (s *BotService) mainKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				s.Localizer.GetString(lang, "btn_add_partner"),
				Action{Kind: ActionAddPartner}.Encode()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				s.Localizer.GetString(lang, "btn_end_chat"),
				Action{Kind: ActionEndChat}.Encode()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				s.Localizer.GetString(lang, "btn_help"),
				Action{Kind: ActionHelp}.Encode()),
		),
	)
}

func (s *BotService) handleLanguageCommand(user *models.User) {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, code := range []string{"uz", "en"} {
		label := languageNames[code]
		if label == "" {
			label = code
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			label, Action{Kind: ActionSetLanguage, Language: code}.Encode()))
	}

	msg := tgbotapi.NewMessage(user.TelegramID, s.Localizer.GetString(user.Language, "choose_language"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	if _, err := s.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send language keyboard to %d: %v", user.TelegramID, err)
	}
}

// handlePartnerID consumes the candidate ID typed after "add partner".
// Recoverable input mistakes (bad digits, own ID) keep the prompt state so
// the user can retry; terminal outcomes clear it.
func (s *BotService) handlePartnerID(ctx context.Context, user *models.User, msg *tgbotapi.Message) {
	result, err := s.Pairing.RequestPairing(ctx, user.TelegramID, msg.Text)

	switch {
	case errors.Is(err, pairing.ErrInvalidIdentifier):
		s.replyKey(user, "invalid_id")
		return
	case errors.Is(err, pairing.ErrSelfTarget):
		s.replyKey(user, "self_id")
		return
	case errors.Is(err, pairing.ErrReceiverBusy):
		s.clearState(user)
		s.replyKey(user, "user_busy")
		return
	case errors.Is(err, pairing.ErrReceiverUnreachable):
		s.clearState(user)
		s.replyKey(user, "user_unreachable")
		return
	case err != nil:
		log.Printf("ERROR: Pairing request from %d failed: %v", user.TelegramID, err)
		s.clearState(user)
		s.replyKey(user, "error_generic")
		return
	}

	s.clearState(user)
	if result.AlreadyPending {
		s.replyKey(user, "already_pending")
		return
	}

	s.sendInvitation(user, result)
	s.replyText(user, fmt.Sprintf(s.Localizer.GetString(user.Language, "invite_sent"),
		result.CandidateName, result.CandidateID))
}

// sendInvitation delivers the accept/reject keyboard to the candidate.
func (s *BotService) sendInvitation(sender *models.User, result *pairing.RequestResult) {
	lang := s.languageOf(result.CandidateID)
	text := fmt.Sprintf(s.Localizer.GetString(lang, "invite_received"),
		sender.DisplayName(), sender.TelegramID)

	invite := tgbotapi.NewMessage(result.CandidateID, text)
	invite.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				s.Localizer.GetString(lang, "btn_accept"),
				Action{Kind: ActionAccept, SenderID: sender.TelegramID}.Encode()),
			tgbotapi.NewInlineKeyboardButtonData(
				s.Localizer.GetString(lang, "btn_reject"),
				Action{Kind: ActionReject, SenderID: sender.TelegramID}.Encode()),
		),
	)
	if _, err := s.BotAPI.Send(invite); err != nil {
		// The probe just passed, so this is rare; the invitation stays
		// pending and the candidate can still be re-notified.
		log.Printf("ERROR: Failed to deliver invitation %d -> %d: %v",
			sender.TelegramID, result.CandidateID, err)
	}
}

func (s *BotService) relayMessage(ctx context.Context, user *models.User, chat *models.Chat, msg *tgbotapi.Message) {
	payload, ok := payloadFromMessage(msg)
	if !ok {
		s.replyKey(user, "message_not_sent")
		return
	}

	if err := s.Relay.Relay(ctx, chat, user, payload); err != nil {
		s.replyKey(user, "message_not_sent")
	}
}

// payloadFromMessage maps an inbound Telegram message onto the relay
// payload union. Returns ok=false for kinds the relay does not carry.
func payloadFromMessage(msg *tgbotapi.Message) (relay.Payload, bool) {
	switch {
	case msg.Photo != nil:
		largest := msg.Photo[len(msg.Photo)-1]
		return relay.Payload{Kind: models.KindPhoto, FileID: largest.FileID, Caption: msg.Caption}, true
	case msg.Video != nil:
		return relay.Payload{Kind: models.KindVideo, FileID: msg.Video.FileID, Caption: msg.Caption}, true
	case msg.Document != nil:
		return relay.Payload{Kind: models.KindDocument, FileID: msg.Document.FileID, Caption: msg.Caption}, true
	case msg.Audio != nil:
		return relay.Payload{Kind: models.KindAudio, FileID: msg.Audio.FileID, Caption: msg.Caption}, true
	case msg.Voice != nil:
		return relay.Payload{Kind: models.KindVoice, FileID: msg.Voice.FileID, Caption: msg.Caption}, true
	case msg.Sticker != nil:
		return relay.Payload{Kind: models.KindSticker, FileID: msg.Sticker.FileID}, true
	case msg.Text != "":
		return relay.Payload{Kind: models.KindText, Text: msg.Text}, true
	}
	return relay.Payload{}, false
}

func (s *BotService) handleCallbackQuery(cq *tgbotapi.CallbackQuery) {
	// Respond to the callback query to remove the "loading" state.
	if _, err := s.BotAPI.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("failed to send callback response: %v", err)
	}

	if cq.From == nil || cq.Message == nil {
		return
	}
	ctx := context.Background()

	user, err := s.gate(cq.From)
	if err != nil {
		log.Printf("ERROR: Lifecycle gate failed for user %d: %v", cq.From.ID, err)
		return
	}

	action, err := ParseAction(cq.Data)
	if err != nil {
		log.Printf("WARN: Ignoring malformed callback from %d: %v", user.TelegramID, err)
		return
	}

	messageID := cq.Message.MessageID

	switch action.Kind {
	case ActionAddPartner:
		s.handleAddPartner(ctx, user, messageID)
	case ActionEndChat:
		s.edit(user, messageID, s.Localizer.GetString(user.Language, s.endChat(ctx, user)))
	case ActionHelp:
		s.edit(user, messageID, s.Localizer.GetString(user.Language, "help_text"))
	case ActionAccept:
		s.handleAccept(ctx, user, action.SenderID, messageID)
	case ActionReject:
		s.handleReject(ctx, user, action.SenderID, messageID)
	case ActionSetLanguage:
		s.handleSetLanguage(user, action.Language, messageID)
	}
}

func (s *BotService) handleAddPartner(ctx context.Context, user *models.User, messageID int) {
	chat, err := s.Pairing.ActiveChatOf(ctx, user.TelegramID)
	if err != nil {
		log.Printf("ERROR: Failed to resolve active chat for user %d: %v", user.TelegramID, err)
		s.edit(user, messageID, s.Localizer.GetString(user.Language, "error_generic"))
		return
	}
	if chat != nil {
		s.edit(user, messageID, s.Localizer.GetString(user.Language, "already_in_chat"))
		return
	}

	if err := s.Storage.SetUserState(user.TelegramID, StateAwaitingPartnerID); err != nil {
		log.Printf("ERROR: Failed to set session state for user %d: %v", user.TelegramID, err)
		s.edit(user, messageID, s.Localizer.GetString(user.Language, "error_generic"))
		return
	}
	s.edit(user, messageID, s.Localizer.GetString(user.Language, "partner_add_prompt"))
}

func (s *BotService) handleAccept(ctx context.Context, receiver *models.User, senderID int64, messageID int) {
	chat, err := s.Pairing.ResolveInvitation(ctx, senderID, receiver.TelegramID, pairing.DecisionAccept)
	switch {
	case errors.Is(err, pairing.ErrInvitationNotFound):
		s.edit(receiver, messageID, s.Localizer.GetString(receiver.Language, "invite_not_found"))
		return
	case errors.Is(err, pairing.ErrReceiverBusy):
		s.edit(receiver, messageID, s.Localizer.GetString(receiver.Language, "user_busy"))
		return
	case err != nil:
		log.Printf("ERROR: Accepting invitation %d -> %d failed: %v", senderID, receiver.TelegramID, err)
		s.edit(receiver, messageID, s.Localizer.GetString(receiver.Language, "error_generic"))
		return
	}

	s.edit(receiver, messageID, s.Localizer.GetString(receiver.Language, "chat_started"))
	s.notify(senderID, "chat_accepted_sender", receiver.DisplayName())
	log.Printf("INFO: Chat %d created between %d and %d", chat.ID, senderID, receiver.TelegramID)
}

func (s *BotService) handleReject(ctx context.Context, receiver *models.User, senderID int64, messageID int) {
	_, err := s.Pairing.ResolveInvitation(ctx, senderID, receiver.TelegramID, pairing.DecisionReject)
	switch {
	case errors.Is(err, pairing.ErrInvitationNotFound):
		s.edit(receiver, messageID, s.Localizer.GetString(receiver.Language, "invite_not_found"))
		return
	case err != nil:
		log.Printf("ERROR: Rejecting invitation %d -> %d failed: %v", senderID, receiver.TelegramID, err)
		s.edit(receiver, messageID, s.Localizer.GetString(receiver.Language, "error_generic"))
		return
	}

	s.edit(receiver, messageID, s.Localizer.GetString(receiver.Language, "invite_rejected"))
	s.notify(senderID, "invite_rejected_sender", receiver.DisplayName())
}

func (s *BotService) handleSetLanguage(user *models.User, code string, messageID int) {
	if err := s.Storage.UpdateUserLanguage(user.TelegramID, code); err != nil {
		log.Printf("ERROR: Failed to update language for user %d: %v", user.TelegramID, err)
		s.edit(user, messageID, s.Localizer.GetString(user.Language, "error_generic"))
		return
	}
	s.edit(user, messageID, s.Localizer.GetString(code, "language_changed"))
}

// endChat closes the acting user's chat and notifies the partner
// best-effort. Returns the locale key for the acting user's confirmation.
func (s *BotService) endChat(ctx context.Context, user *models.User) string {
	partnerID, err := s.Pairing.EndChat(ctx, user.TelegramID)
	if errors.Is(err, pairing.ErrNoActiveChat) {
		return "no_active_chat"
	}
	if err != nil {
		log.Printf("ERROR: Ending chat for user %d failed: %v", user.TelegramID, err)
		return "error_generic"
	}

	s.notify(partnerID, "partner_ended")
	return "chat_ended"
}

// notify sends a localized best-effort message. Delivery failure must not
// block the primary operation, so it is logged and swallowed.
func (s *BotService) notify(telegramID int64, key string, args ...interface{}) {
	text := s.Localizer.GetString(s.languageOf(telegramID), key)
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}
	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(telegramID, text)); err != nil {
		log.Printf("WARN: Best-effort notification %q to %d failed: %v", key, telegramID, err)
	}
}

// languageOf resolves a user's locale, defaulting for unknown users.
func (s *BotService) languageOf(telegramID int64) string {
	user, err := s.Storage.GetUserByTelegramID(telegramID)
	if err != nil || user == nil {
		return config.DefaultLanguage
	}
	return user.Language
}

func (s *BotService) clearState(user *models.User) {
	if err := s.Storage.ClearUserState(user.TelegramID); err != nil {
		log.Printf("ERROR: Failed to clear session state for user %d: %v", user.TelegramID, err)
	}
}

func (s *BotService) replyKey(user *models.User, key string) {
	s.replyText(user, s.Localizer.GetString(user.Language, key))
}

func (s *BotService) replyText(user *models.User, text string) {
	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(user.TelegramID, text)); err != nil {
		log.Printf("ERROR: Failed to send reply to %d: %v", user.TelegramID, err)
	}
}

func (s *BotService) edit(user *models.User, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(user.TelegramID, messageID, text)
	if _, err := s.BotAPI.Send(edit); err != nil {
		log.Printf("ERROR: Failed to edit message %d for %d: %v", messageID, user.TelegramID, err)
	}
}
