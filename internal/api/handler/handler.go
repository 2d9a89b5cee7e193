// Package handler exposes the admin HTTP API: JWT-authenticated read
// endpoints over the store, operator actions (broadcast, cleanup) and a
// websocket feed of live relay events.
package handler

import (
	"github.com/redis/go-redis/v9"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/localization"
	"pairlink/backend/internal/relay"
	"pairlink/backend/internal/storage"
)

// EventSource yields a subscription to the relay event channel.
type EventSource interface {
	SubscribeRelayEvents() *redis.PubSub
}

type Handler struct {
	Store  storage.Storage
	Sender relay.Sender
	Loc    *localization.Localizer
	Events EventSource
	Cfg    *config.Config
}

func NewHandler(store storage.Storage, sender relay.Sender, loc *localization.Localizer, events EventSource, cfg *config.Config) *Handler {
	return &Handler{Store: store, Sender: sender, Loc: loc, Events: events, Cfg: cfg}
}
