package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind enumerates the button actions the bot understands.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionAddPartner
	ActionEndChat
	ActionHelp
	ActionAccept
	ActionReject
	ActionSetLanguage
)

// Action is a callback-button press decoded once at the boundary. Accept
// and reject carry the invitation sender's ID; setLanguage carries the
// locale code. Malformed callback data never reaches the handlers.
type Action struct {
	Kind     ActionKind
	SenderID int64
	Language string
}

const (
	dataAddPartner = "add_partner"
	dataEndChat    = "end_chat"
	dataHelp       = "help"
	prefixAccept   = "accept:"
	prefixReject   = "reject:"
	prefixLang     = "lang:"
)

// Encode renders the action as callback data for an inline keyboard button.
func (a Action) Encode() string {
	switch a.Kind {
	case ActionAddPartner:
		return dataAddPartner
	case ActionEndChat:
		return dataEndChat
	case ActionHelp:
		return dataHelp
	case ActionAccept:
		return prefixAccept + strconv.FormatInt(a.SenderID, 10)
	case ActionReject:
		return prefixReject + strconv.FormatInt(a.SenderID, 10)
	case ActionSetLanguage:
		return prefixLang + a.Language
	}
	return ""
}

// ParseAction decodes callback data into an Action.
func ParseAction(data string) (Action, error) {
	switch data {
	case dataAddPartner:
		return Action{Kind: ActionAddPartner}, nil
	case dataEndChat:
		return Action{Kind: ActionEndChat}, nil
	case dataHelp:
		return Action{Kind: ActionHelp}, nil
	}

	switch {
	case strings.HasPrefix(data, prefixAccept):
		return parsePairAction(ActionAccept, strings.TrimPrefix(data, prefixAccept))
	case strings.HasPrefix(data, prefixReject):
		return parsePairAction(ActionReject, strings.TrimPrefix(data, prefixReject))
	case strings.HasPrefix(data, prefixLang):
		code := strings.TrimPrefix(data, prefixLang)
		if code == "" {
			return Action{}, fmt.Errorf("telegram: empty language code in callback data")
		}
		return Action{Kind: ActionSetLanguage, Language: code}, nil
	}

	return Action{}, fmt.Errorf("telegram: unknown callback data %q", data)
}

func parsePairAction(kind ActionKind, raw string) (Action, error) {
	senderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || senderID <= 0 {
		return Action{}, fmt.Errorf("telegram: malformed sender ID in callback data %q", raw)
	}
	return Action{Kind: kind, SenderID: senderID}, nil
}
