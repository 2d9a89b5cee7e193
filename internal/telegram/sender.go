package telegram

import (
	"context"
	"fmt"
	"log"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the outbound Telegram transport. It implements relay.Sender and
// pairing.Prober over a single BotAPI whose HTTP client is time-bounded.
type Sender struct {
	BotAPI *tgbotapi.BotAPI
}

func NewSender(bot *tgbotapi.BotAPI) *Sender {
	return &Sender{BotAPI: bot}
}

func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := s.BotAPI.Send(msg)
	return err
}

func (s *Sender) SendMedia(ctx context.Context, chatID int64, kind models.MessageKind, fileID, caption string) error {
	var msg tgbotapi.Chattable

	switch kind {
	case models.KindPhoto:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
		photo.Caption = caption
		msg = photo
	case models.KindVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
		video.Caption = caption
		msg = video
	case models.KindDocument:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
		doc.Caption = caption
		msg = doc
	case models.KindAudio:
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FileID(fileID))
		audio.Caption = caption
		msg = audio
	case models.KindVoice:
		voice := tgbotapi.NewVoice(chatID, tgbotapi.FileID(fileID))
		voice.Caption = caption
		msg = voice
	case models.KindSticker:
		msg = tgbotapi.NewSticker(chatID, tgbotapi.FileID(fileID))
	default:
		return fmt.Errorf("telegram: unsupported media kind %q", kind)
	}

	_, err := s.BotAPI.Send(msg)
	return err
}

// Probe checks that the bot can message the candidate by sending and
// immediately deleting a throwaway message, and returns the candidate's
// display name. A failure means the candidate never started the bot or has
// blocked it.
func (s *Sender) Probe(ctx context.Context, telegramID int64) (string, error) {
	chat, err := s.BotAPI.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: telegramID},
	})
	if err != nil {
		return "", err
	}

	probe, err := s.BotAPI.Send(tgbotapi.NewMessage(telegramID, config.ProbeText))
	if err != nil {
		return "", err
	}
	if _, err := s.BotAPI.Request(tgbotapi.NewDeleteMessage(telegramID, probe.MessageID)); err != nil {
		// The probe already proved reachability; a leftover probe message
		// is cosmetic.
		log.Printf("WARN: Failed to delete probe message %d in chat %d: %v", probe.MessageID, telegramID, err)
	}

	name := chat.FirstName
	if name == "" {
		name = chat.UserName
	}
	return name, nil
}
