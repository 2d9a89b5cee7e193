package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"pairlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RelayEventChannel is the Redis Pub/Sub channel carrying relay events for
// the admin live feed.
const RelayEventChannel = "relay:events"

// stateTTL bounds how long a per-user conversation state (e.g. waiting for
// a partner ID) survives without being resolved.
const stateTTL = 10 * time.Minute

func stateKey(telegramID int64) string {
	return fmt.Sprintf("state:%d", telegramID)
}

// SetUserState stores the per-user conversation state in Redis with a TTL,
// so an abandoned prompt expires back to idle on its own.
func (s *Service) SetUserState(telegramID int64, state string) error {
	return s.Redis.Set(s.Ctx, stateKey(telegramID), state, stateTTL).Err()
}

// GetUserState returns the current conversation state, or "" when idle.
func (s *Service) GetUserState(telegramID int64) (string, error) {
	state, err := s.Redis.Get(s.Ctx, stateKey(telegramID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return state, nil
}

func (s *Service) ClearUserState(telegramID int64) error {
	return s.Redis.Del(s.Ctx, stateKey(telegramID)).Err()
}

// PublishRelayEvent publishes a relay outcome to the event channel. The
// publish is best-effort from the caller's perspective; a returned error
// must never fail the relay itself.
func (s *Service) PublishRelayEvent(event models.RelayEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(s.Ctx, RelayEventChannel, string(payload)).Err(); err != nil {
		log.Printf("ERROR: Failed to publish relay event for chat %d: %v", event.ChatID, err)
		return err
	}
	return nil
}

// SubscribeRelayEvents subscribes to the relay event channel. Used by the
// admin websocket feed; not part of the Storage interface.
func (s *Service) SubscribeRelayEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, RelayEventChannel)
}
