// Package events is the push-channel wire protocol: the envelope every
// server message travels in, its payloads, and their mapping to state
// actions.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameEvent is the envelope of every server push.
type GameEvent struct {
	ID        string          `json:"id"`        // Event UUID
	GameID    int             `json:"game_id"`   // Game the event belongs to
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// EventType represents the type of game event
type EventType string

const (
	EventTypePlayerJoined            EventType = "PlayerJoined"
	EventTypePlayerLeft              EventType = "PlayerLeft"
	EventTypeGameStarted             EventType = "GameStarted"
	EventTypeTurnAdvanced            EventType = "TurnAdvanced"
	EventTypeHandUpdated             EventType = "HandUpdated"
	EventTypeDecksUpdated            EventType = "DecksUpdated"
	EventTypeSecretsUpdated          EventType = "SecretsUpdated"
	EventTypeSecretRevealed          EventType = "SecretRevealed"
	EventTypeSecretHidden            EventType = "SecretHidden"
	EventTypeSetsUpdated             EventType = "SetsUpdated"
	EventTypeSocialDisgraceUpdated   EventType = "SocialDisgraceUpdated"
	EventTypeDrawRequired            EventType = "DrawRequired"
	EventTypeCardDrawn               EventType = "CardDrawn"
	EventTypeDiscardConfirmed        EventType = "DiscardConfirmed"
	EventTypeEventActionStarted      EventType = "EventActionStarted"
	EventTypeEventActionResolved     EventType = "EventActionResolved"
	EventTypeDetectiveActionStarted  EventType = "DetectiveActionStarted"
	EventTypeDetectiveTargetSelected EventType = "DetectiveTargetSelected"
	EventTypeDetectiveActionResolved EventType = "DetectiveActionResolved"
	EventTypeInteractionRequest      EventType = "InteractionRequest"
	EventTypeNSFWindowOpened         EventType = "NSFWindowOpened"
	EventTypeNSFCounterPlayed        EventType = "NSFCounterPlayed"
	EventTypeNSFWindowClosed         EventType = "NSFWindowClosed"
	EventTypeGameEnded               EventType = "GameEnded"
)

// Decode parses one push message.
func Decode(b []byte) (*GameEvent, error) {
	var ev GameEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("decode event envelope: missing type")
	}
	return &ev, nil
}

// DecodePayload unmarshals the event data into T.
func DecodePayload[T any](ev *GameEvent) (T, error) {
	var payload T
	if len(ev.Data) == 0 {
		return payload, fmt.Errorf("%s: empty payload", ev.Type)
	}
	if err := json.Unmarshal(ev.Data, &payload); err != nil {
		return payload, fmt.Errorf("%s: decode payload: %w", ev.Type, err)
	}
	return payload, nil
}

// Encode builds a wire message. Servers and tests use it; the client only
// decodes.
func Encode(gameID int, eventType EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return json.Marshal(GameEvent{
		ID:        uuid.NewString(),
		GameID:    gameID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}
