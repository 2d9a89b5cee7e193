package handler_test

import (
	"context"
	"time"

	"pairlink/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUserIfNotExists(telegramID int64, username, firstName, lastName string) (*models.User, error) {
	args := m.Called(telegramID, username, firstName, lastName)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStorage) GetUserByTelegramID(telegramID int64) (*models.User, error) {
	args := m.Called(telegramID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStorage) UpdateUserLanguage(telegramID int64, languageCode string) error {
	args := m.Called(telegramID, languageCode)
	return args.Error(0)
}

func (m *MockStorage) GetAllUsers() ([]models.User, error) {
	args := m.Called()
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockStorage) GetActiveChatForUser(userID int64) (*models.Chat, error) {
	args := m.Called(userID)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

func (m *MockStorage) EndActiveChat(userID int64) (*models.Chat, error) {
	args := m.Called(userID)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

func (m *MockStorage) GetAllChats() ([]models.ChatSummary, error) {
	args := m.Called()
	chats, _ := args.Get(0).([]models.ChatSummary)
	return chats, args.Error(1)
}

func (m *MockStorage) CreateInvitation(senderID, receiverID int64) (bool, error) {
	args := m.Called(senderID, receiverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) AcceptInvitation(senderID, receiverID int64) (*models.Chat, error) {
	args := m.Called(senderID, receiverID)
	chat, _ := args.Get(0).(*models.Chat)
	return chat, args.Error(1)
}

func (m *MockStorage) RejectInvitation(senderID, receiverID int64) (*models.Invitation, error) {
	args := m.Called(senderID, receiverID)
	invitation, _ := args.Get(0).(*models.Invitation)
	return invitation, args.Error(1)
}

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetStats() (*models.Stats, error) {
	args := m.Called()
	stats, _ := args.Get(0).(*models.Stats)
	return stats, args.Error(1)
}

func (m *MockStorage) CleanupOldData(retention time.Duration) (*models.CleanupReport, error) {
	args := m.Called(retention)
	report, _ := args.Get(0).(*models.CleanupReport)
	return report, args.Error(1)
}

func (m *MockStorage) SaveBroadcastLog(entry *models.BroadcastLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) SetUserState(telegramID int64, state string) error {
	args := m.Called(telegramID, state)
	return args.Error(0)
}

func (m *MockStorage) GetUserState(telegramID int64) (string, error) {
	args := m.Called(telegramID)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ClearUserState(telegramID int64) error {
	args := m.Called(telegramID)
	return args.Error(0)
}

func (m *MockStorage) PublishRelayEvent(event models.RelayEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendText(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func (m *MockSender) SendMedia(ctx context.Context, chatID int64, kind models.MessageKind, fileID, caption string) error {
	args := m.Called(ctx, chatID, kind, fileID, caption)
	return args.Error(0)
}
