package telegram_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pairlink/backend/internal/localization"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testLocalizer(t *testing.T) *localization.Localizer {
	t.Helper()
	loc, err := localization.NewLocalizer("../localization", "uz")
	if err != nil {
		t.Fatalf("failed to load localization files: %v", err)
	}
	return loc
}

func TestBroadcast_DeliversToEveryUser(t *testing.T) {
	storageMock := new(MockStorage)
	senderMock := new(MockSender)
	storageMock.On("GetAllUsers").Return([]models.User{
		{TelegramID: 100, Language: "uz"},
		{TelegramID: 200, Language: "en"},
	}, nil).Once()
	senderMock.On("SendText", mock.Anything, int64(100), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "hello everyone")
	})).Return(nil).Once()
	senderMock.On("SendText", mock.Anything, int64(200), mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "hello everyone")
	})).Return(nil).Once()
	storageMock.On("SaveBroadcastLog", mock.MatchedBy(func(entry *models.BroadcastLog) bool {
		return entry.Sent == 2 && entry.Failed == 0 && entry.AdminID == 1
	})).Return(nil).Once()

	entry, err := telegram.Broadcast(context.Background(), senderMock, storageMock, testLocalizer(t), 1, "hello everyone")

	assert.NoError(t, err)
	assert.Equal(t, 2, entry.Sent)
	senderMock.AssertExpectations(t)
	storageMock.AssertExpectations(t)
}

func TestBroadcast_CollectsFailedRecipients(t *testing.T) {
	storageMock := new(MockStorage)
	senderMock := new(MockSender)
	storageMock.On("GetAllUsers").Return([]models.User{
		{TelegramID: 100, Language: "uz"},
		{TelegramID: 200, Language: "uz"},
	}, nil).Once()
	senderMock.On("SendText", mock.Anything, int64(100), mock.Anything).Return(nil).Once()
	senderMock.On("SendText", mock.Anything, int64(200), mock.Anything).
		Return(errors.New("Forbidden: bot was blocked by the user")).Once()
	storageMock.On("SaveBroadcastLog", mock.Anything).Return(nil).Once()

	entry, err := telegram.Broadcast(context.Background(), senderMock, storageMock, testLocalizer(t), 1, "hi")

	assert.NoError(t, err)
	assert.Equal(t, 1, entry.Sent)
	assert.Equal(t, 1, entry.Failed)
	assert.Equal(t, []int64{200}, []int64(entry.FailedIDs))
}

func TestBroadcast_FailsWhenUserListUnavailable(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetAllUsers").Return(nil, errors.New("connection refused")).Once()

	_, err := telegram.Broadcast(context.Background(), new(MockSender), storageMock, testLocalizer(t), 1, "hi")

	assert.Error(t, err)
}
