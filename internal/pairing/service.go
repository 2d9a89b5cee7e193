// Package pairing owns the invitation lifecycle and the chat state machine:
// who may be invited, when a chat comes into existence, who the partner of a
// user is, and how termination propagates. It keeps no state of its own;
// everything lives in the store.
package pairing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"
)

// Prober checks whether the bot can message a candidate before an
// invitation is created, and resolves the candidate's display name. The
// Telegram implementation sends and immediately deletes a throwaway
// message; any equivalent reachability check satisfies the contract.
type Prober interface {
	Probe(ctx context.Context, telegramID int64) (displayName string, err error)
}

// Decision is the receiver's answer to a pending invitation.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// RequestResult describes the outcome of a successful pairing request.
type RequestResult struct {
	CandidateID   int64
	CandidateName string
	// AlreadyPending is set when a pending invitation for the pair already
	// existed and no new row was created.
	AlreadyPending bool
}

type Service struct {
	Store storage.Storage
	Probe Prober
}

func NewService(store storage.Storage, probe Prober) *Service {
	return &Service{Store: store, Probe: probe}
}

// RequestPairing validates a partner-add request and creates a pending
// invitation. Validation order: identifier shape, self-target, receiver
// busy, receiver reachability. A request for a pair that already has a
// pending invitation is a no-op reported through AlreadyPending.
func (s *Service) RequestPairing(ctx context.Context, senderID int64, rawCandidate string) (*RequestResult, error) {
	candidateID, err := strconv.ParseInt(strings.TrimSpace(rawCandidate), 10, 64)
	if err != nil || candidateID <= 0 {
		return nil, ErrInvalidIdentifier
	}
	if candidateID == senderID {
		return nil, ErrSelfTarget
	}

	candidateChat, err := s.Store.GetActiveChatForUser(candidateID)
	if err != nil {
		return nil, storageFault(err)
	}
	if candidateChat != nil {
		return nil, ErrReceiverBusy
	}

	name, err := s.Probe.Probe(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReceiverUnreachable, err)
	}

	created, err := s.Store.CreateInvitation(senderID, candidateID)
	if err != nil {
		return nil, storageFault(err)
	}

	return &RequestResult{
		CandidateID:    candidateID,
		CandidateName:  name,
		AlreadyPending: !created,
	}, nil
}

// ResolveInvitation applies the receiver's decision to the pending
// invitation for (senderID, receiverID). Accepting creates the chat and
// returns it; rejecting returns a nil chat. Either way the invitation
// leaves the pending state exactly once: a replayed resolution fails with
// ErrInvitationNotFound.
func (s *Service) ResolveInvitation(ctx context.Context, senderID, receiverID int64, decision Decision) (*models.Chat, error) {
	switch decision {
	case DecisionAccept:
		chat, err := s.Store.AcceptInvitation(senderID, receiverID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrReceiverBusy
		}
		if err != nil {
			return nil, storageFault(err)
		}
		return chat, nil

	case DecisionReject:
		_, err := s.Store.RejectInvitation(senderID, receiverID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		if err != nil {
			return nil, storageFault(err)
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("pairing: unknown decision %q", decision)
	}
}

// ActiveChatOf returns the single active chat containing userID, or nil.
func (s *Service) ActiveChatOf(ctx context.Context, userID int64) (*models.Chat, error) {
	chat, err := s.Store.GetActiveChatForUser(userID)
	if err != nil {
		return nil, storageFault(err)
	}
	return chat, nil
}

// PartnerOf returns the other participant of the user's active chat.
func (s *Service) PartnerOf(ctx context.Context, userID int64) (int64, error) {
	chat, err := s.ActiveChatOf(ctx, userID)
	if err != nil {
		return 0, err
	}
	if chat == nil {
		return 0, ErrNoActiveChat
	}
	return chat.PartnerOf(userID), nil
}

// EndChat closes the user's active chat and returns the partner's ID so the
// caller can notify them. A second call right after fails with
// ErrNoActiveChat; ending is idempotent only from the acting user's
// perspective, which prevents re-entrant double-notification.
func (s *Service) EndChat(ctx context.Context, userID int64) (int64, error) {
	chat, err := s.Store.EndActiveChat(userID)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, ErrNoActiveChat
	}
	if err != nil {
		return 0, storageFault(err)
	}
	return chat.PartnerOf(userID), nil
}

func storageFault(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageFault, err)
}
