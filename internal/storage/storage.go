// Package storage is the persistence gateway. It owns all durable state
// (PostgreSQL via GORM) and the volatile session state (Redis). Every
// state-changing operation runs inside a transaction so the pairing
// invariants hold under concurrent resolution attempts.
package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound signals the addressed record does not exist (or is no
	// longer in the expected state, e.g. an already-resolved invitation).
	ErrNotFound = errors.New("storage: record not found")
	// ErrConflict signals a uniqueness rule would be violated, e.g. a
	// participant already has an active chat.
	ErrConflict = errors.New("storage: conflicting active record")
)

type Storage interface {
	SaveUserIfNotExists(telegramID int64, username, firstName, lastName string) (*models.User, error)
	GetUserByTelegramID(telegramID int64) (*models.User, error)
	UpdateUserLanguage(telegramID int64, languageCode string) error
	GetAllUsers() ([]models.User, error)

	GetActiveChatForUser(userID int64) (*models.Chat, error)
	EndActiveChat(userID int64) (*models.Chat, error)
	GetAllChats() ([]models.ChatSummary, error)

	CreateInvitation(senderID, receiverID int64) (bool, error)
	AcceptInvitation(senderID, receiverID int64) (*models.Chat, error)
	RejectInvitation(senderID, receiverID int64) (*models.Invitation, error)

	SaveMessage(msg *models.Message) error

	GetStats() (*models.Stats, error)
	CleanupOldData(retention time.Duration) (*models.CleanupReport, error)
	SaveBroadcastLog(entry *models.BroadcastLog) error

	SetUserState(telegramID int64, state string) error
	GetUserState(telegramID int64) (string, error)
	ClearUserState(telegramID int64) error

	PublishRelayEvent(event models.RelayEvent) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context

	// UserRetentionFactor multiplies the retention window for inactive
	// users so they outlive their chats and messages.
	UserRetentionFactor int
}

// NewService constructs the storage service.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:                  db,
		Redis:               rdb,
		Ctx:                 context.Background(),
		UserRetentionFactor: config.UserRetentionFactor,
	}
}

// SaveUserIfNotExists creates the user on first contact and refreshes the
// profile fields and last-active timestamp on every subsequent call. This
// is the lifecycle gate applied before any pairing or relay operation.
func (s *Service) SaveUserIfNotExists(telegramID int64, username, firstName, lastName string) (*models.User, error) {
	var user models.User
	now := time.Now()
	defaults := models.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		LastActive: now,
	}

	result := s.DB.Where("telegram_id = ?", telegramID).FirstOrCreate(&user, defaults)
	if result.Error != nil {
		log.Printf("ERROR: Failed to save user %d on first contact: %v", telegramID, result.Error)
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("INFO: New user %d saved to database.", telegramID)
		return &user, nil
	}

	updates := map[string]interface{}{"last_active": now}
	if firstName != "" && firstName != user.FirstName {
		updates["first_name"] = firstName
	}
	if username != user.Username {
		updates["username"] = username
	}
	if lastName != user.LastName {
		updates["last_name"] = lastName
	}
	if err := s.DB.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	user.LastActive = now
	return &user, nil
}

func (s *Service) GetUserByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	err := s.DB.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateUserLanguage(telegramID int64, languageCode string) error {
	return s.DB.Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("language", languageCode).Error
}

func (s *Service) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		log.Printf("ERROR: Failed to list users: %v", err)
		return nil, err
	}
	return users, nil
}

// GetActiveChatForUser returns the single active chat containing userID,
// or nil when the user is not in a chat.
func (s *Service) GetActiveChatForUser(userID int64) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Where("is_active = ?", true).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to find active chat for user %d: %v", userID, err)
		return nil, err
	}
	return &chat, nil
}

// EndActiveChat closes the active chat of userID and returns the closed
// record. Returns ErrNotFound when the user has no active chat, which makes
// a replayed end call fail instead of double-notifying the partner.
func (s *Service) EndActiveChat(userID int64) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("is_active = ?", true).
			Where("user1_id = ? OR user2_id = ?", userID, userID).
			First(&chat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		now := time.Now()
		chat.IsActive = false
		chat.EndedAt = &now
		return tx.Model(&models.Chat{}).
			Where("id = ?", chat.ID).
			Updates(map[string]interface{}{"is_active": false, "ended_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *Service) GetAllChats() ([]models.ChatSummary, error) {
	var chats []models.ChatSummary
	err := s.DB.Table("chats").
		Select("chats.id, chats.user1_id, u1.first_name AS user1_name, " +
			"chats.user2_id, u2.first_name AS user2_name, " +
			"chats.is_active, chats.created_at, chats.ended_at").
		Joins("LEFT JOIN users u1 ON u1.telegram_id = chats.user1_id").
		Joins("LEFT JOIN users u2 ON u2.telegram_id = chats.user2_id").
		Order("chats.created_at DESC").
		Scan(&chats).Error
	if err != nil {
		log.Printf("ERROR: Failed to list chats: %v", err)
		return nil, err
	}
	return chats, nil
}

// CreateInvitation inserts a pending invitation for the ordered pair and
// reports whether a new row was created. When a pending invitation for the
// same pair already exists the call is a no-op returning false, so a
// replayed request never produces a duplicate. Locking a missing pending
// row would lock nothing, so concurrent creates are serialized on the
// participants' user rows instead; the partial unique index on the pending
// pair backstops the invariant at the database level.
func (s *Service) CreateInvitation(senderID, receiverID int64) (bool, error) {
	created := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var participants []models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("telegram_id IN ?", []int64{senderID, receiverID}).
			Find(&participants).Error; err != nil {
			return err
		}

		var existing models.Invitation
		err := tx.Where("sender_id = ? AND receiver_id = ? AND status = ?",
			senderID, receiverID, models.InvitationPending).
			First(&existing).Error
		if err == nil {
			return nil // already pending
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		invitation := models.Invitation{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Status:     models.InvitationPending,
		}
		if err := tx.Create(&invitation).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return created, err
}

// AcceptInvitation resolves the pending invitation and creates the chat in
// a single transaction. The pending-only update makes a second acceptance
// fail with ErrNotFound, and the locked busy check on both participants
// keeps "at most one active chat per user" under concurrent accepts.
func (s *Service) AcceptInvitation(senderID, receiverID int64) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Lock both user rows to serialize concurrent accepts that would
		// pair the same participant twice.
		var participants []models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("telegram_id IN ?", []int64{senderID, receiverID}).
			Find(&participants).Error; err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&models.Invitation{}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?",
				senderID, receiverID, models.InvitationPending).
			Updates(map[string]interface{}{
				"status":       models.InvitationAccepted,
				"responded_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		for _, id := range []int64{senderID, receiverID} {
			var count int64
			if err := tx.Model(&models.Chat{}).
				Where("is_active = ?", true).
				Where("user1_id = ? OR user2_id = ?", id, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrConflict
			}
		}

		chat = models.Chat{User1ID: senderID, User2ID: receiverID, IsActive: true}
		return tx.Create(&chat).Error
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// RejectInvitation resolves the pending invitation as rejected. A replayed
// rejection finds no pending row and returns ErrNotFound.
func (s *Service) RejectInvitation(senderID, receiverID int64) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?",
				senderID, receiverID, models.InvitationPending).
			First(&invitation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		now := time.Now()
		invitation.Status = models.InvitationRejected
		invitation.RespondedAt = &now
		return tx.Model(&models.Invitation{}).
			Where("id = ?", invitation.ID).
			Updates(map[string]interface{}{
				"status":       models.InvitationRejected,
				"responded_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// SaveMessage appends an audit record for a delivered relay.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for chat %d: %v", msg.ChatID, err)
		return err
	}
	return nil
}

func (s *Service) GetStats() (*models.Stats, error) {
	stats := &models.Stats{}

	if err := s.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Chat{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveChats).Error; err != nil {
		return nil, err
	}
	startOfDay := time.Now().Truncate(24 * time.Hour)
	if err := s.DB.Model(&models.User{}).
		Where("last_active >= ?", startOfDay).
		Count(&stats.TodayActive).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Message{}).Count(&stats.TotalMessages).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// CleanupOldData removes records older than the retention window: ended
// chats, invitations (resolved or stale), messages, and users inactive for
// UserRetentionFactor times the window. The whole batch runs in one
// transaction so a failure leaves all tables intact.
func (s *Service) CleanupOldData(retention time.Duration) (*models.CleanupReport, error) {
	report := &models.CleanupReport{}
	cutoff := time.Now().Add(-retention)
	userCutoff := time.Now().Add(-retention * time.Duration(s.UserRetentionFactor))

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("ended_at IS NOT NULL AND ended_at < ?", cutoff).
			Delete(&models.Chat{})
		if result.Error != nil {
			return result.Error
		}
		report.Chats = result.RowsAffected

		result = tx.Where("created_at < ?", cutoff).Delete(&models.Invitation{})
		if result.Error != nil {
			return result.Error
		}
		report.Invitations = result.RowsAffected

		result = tx.Where("sent_at < ?", cutoff).Delete(&models.Message{})
		if result.Error != nil {
			return result.Error
		}
		report.Messages = result.RowsAffected

		result = tx.Where("last_active < ?", userCutoff).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		report.Users = result.RowsAffected
		return nil
	})
	if err != nil {
		log.Printf("ERROR: Retention cleanup failed: %v", err)
		return nil, err
	}
	return report, nil
}

func (s *Service) SaveBroadcastLog(entry *models.BroadcastLog) error {
	return s.DB.Create(entry).Error
}
