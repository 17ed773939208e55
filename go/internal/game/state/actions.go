package state

import (
	"strings"
	"time"

	"github.com/mcdev12/sleuth/go/internal/game/catalog"
)

// ActionType names an action understood by Reduce.
type ActionType string

// Action is the unit of change. Payload must be the struct documented for
// Type; anything else makes the action a no-op.
type Action struct {
	Type    ActionType
	Payload any
}

const (
	// Session lifecycle
	ActionSetSession         ActionType = "SET_SESSION"
	ActionInitializeGame     ActionType = "INITIALIZE_GAME"
	ActionSyncSnapshot       ActionType = "SYNC_SNAPSHOT"
	ActionClearGame          ActionType = "CLEAR_GAME"
	ActionReturnToLobby      ActionType = "RETURN_TO_LOBBY"
	ActionConnectionLost     ActionType = "CONNECTION_LOST"
	ActionConnectionRestored ActionType = "CONNECTION_RESTORED"

	// Server deltas
	ActionPlayerJoined            ActionType = "PLAYER_JOINED"
	ActionPlayerLeft              ActionType = "PLAYER_LEFT"
	ActionGameStarted             ActionType = "GAME_STARTED"
	ActionTurnAdvanced            ActionType = "TURN_ADVANCED"
	ActionSetHand                 ActionType = "SET_HAND"
	ActionSetDecks                ActionType = "SET_DECKS"
	ActionSetSecrets              ActionType = "SET_SECRETS"
	ActionSecretRevealed          ActionType = "SECRET_REVEALED"
	ActionSecretHidden            ActionType = "SECRET_HIDDEN"
	ActionSetSets                 ActionType = "SET_SETS"
	ActionSetSocialDisgrace       ActionType = "SET_SOCIAL_DISGRACE"
	ActionDrawRequired            ActionType = "DRAW_REQUIRED"
	ActionCardDrawn               ActionType = "CARD_DRAWN"
	ActionDiscardConfirmed        ActionType = "DISCARD_CONFIRMED"
	ActionEventStarted            ActionType = "EVENT_ACTION_STARTED"
	ActionEventResolved           ActionType = "EVENT_ACTION_RESOLVED"
	ActionDetectiveStarted        ActionType = "DETECTIVE_ACTION_STARTED"
	ActionDetectiveTargetSelected ActionType = "DETECTIVE_TARGET_SELECTED"
	ActionDetectiveResolved       ActionType = "DETECTIVE_ACTION_RESOLVED"
	ActionRequestReceived         ActionType = "INTERACTION_REQUEST_RECEIVED"
	ActionNSFOpened               ActionType = "NSF_WINDOW_OPENED"
	ActionNSFCounterPlayed        ActionType = "NSF_COUNTER_PLAYED"
	ActionNSFClosed               ActionType = "NSF_WINDOW_CLOSED"
	ActionGameEnded               ActionType = "GAME_ENDED"

	// Local
	ActionSetDrawAction         ActionType = "SET_DRAW_ACTION"
	ActionClearDrawAction       ActionType = "CLEAR_DRAW_ACTION"
	ActionSelectCard            ActionType = "SELECT_CARD"
	ActionClearSelection        ActionType = "CLEAR_SELECTION"
	ActionClearDisgraceWarning  ActionType = "CLEAR_DISGRACE_WARNING"
	ActionInteractionSelect     ActionType = "INTERACTION_SELECT"
	ActionInteractionSubmitted  ActionType = "INTERACTION_SUBMITTED"
	ActionInteractionAccepted   ActionType = "INTERACTION_ACCEPTED"
	ActionInteractionFailed     ActionType = "INTERACTION_FAILED"
	ActionRequestStarted        ActionType = "REQUEST_STARTED"
	ActionRequestFinished       ActionType = "REQUEST_FINISHED"
	ActionSetError              ActionType = "SET_ERROR"
	ActionClearError            ActionType = "CLEAR_ERROR"
)

// ignoredPrefix marks actions built from push types this client does not
// know. No action constant starts with it.
const ignoredPrefix = "ignored/"

// Ignored returns the action type for an unknown push type. Reduce treats it
// as a no-op whatever the wire name is.
func Ignored(wireType string) ActionType {
	return ActionType(ignoredPrefix + wireType)
}

// IsIgnored reports whether t came from Ignored.
func (t ActionType) IsIgnored() bool {
	return strings.HasPrefix(string(t), ignoredPrefix)
}

// SetSession patches session ids. RoomID and GameID are only taken while
// unset.
type SetSession struct {
	RoomID        *int
	GameID        *int
	LocalPlayerID *int
}

type InitializeGame struct {
	Room          Room
	Players       []RoomPlayer
	LocalPlayerID int
}

// Snapshot is the authoritative gameplay state fetched from the server.
type Snapshot struct {
	GameID                  int
	CurrentTurn             int
	GamePlayers             []PlayerSummary
	Hand                    []Card
	Secrets                 []Secret
	SecretsFromAllPlayers   []Secret
	Sets                    []DetectiveSet
	PlayersInSocialDisgrace []int
	Decks                   Decks
	DrawAction              DrawAction
	NSF                     NSFCounter
	Event                   *EventStarted
	Detective               *DetectiveStarted
	GameEnded               bool
	Winners                 []int
	FinishReason            string
}

type ReturnToLobby struct {
	Error *FlowError
}

type ConnectionLost struct {
	Attempt int
}

type PlayerJoined struct {
	Player RoomPlayer
}

type PlayerLeft struct {
	PlayerID int
}

type GameStarted struct {
	Players     []PlayerSummary
	CurrentTurn int
}

type TurnAdvanced struct {
	PlayerID int
}

type SetHand struct {
	Cards []Card
}

// DecksPatch patches the table. Nil fields are left unchanged.
type DecksPatch struct {
	DeckCount    *int
	Draft        *[]Card
	DiscardTop   *Card
	DiscardCount *int
}

type SetSecrets struct {
	PlayerID int
	Secrets  []Secret
}

type SecretRevealed struct {
	PlayerID int
	SecretID int
	Name     string
}

type SecretHidden struct {
	PlayerID int
	SecretID int
}

type SetSets struct {
	Sets []DetectiveSet
}

type SetSocialDisgrace struct {
	PlayerIDs []int
}

type DrawRequired struct {
	PlayerID    int
	Count       int
	SkipDiscard bool
}

type CardDrawn struct {
	PlayerID  int
	Remaining int
}

type DiscardConfirmed struct {
	PlayerID int
	CardIDs  []int
}

type EventStarted struct {
	Kind           catalog.ActionKind
	CardID         int
	PlayerID       int
	TargetPlayerID *int
	AvailableCards []Card
}

type EventResolved struct {
	Kind catalog.ActionKind
}

type DetectiveStarted struct {
	SetType           catalog.ActionKind
	SetID             int
	InitiatorPlayerID int
	TargetPlayerID    *int
}

type DetectiveTargetSelected struct {
	SetType        catalog.ActionKind
	TargetPlayerID int
}

type DetectiveResolved struct {
	SetType catalog.ActionKind
}

// RequestReceived asks the local player to act on a step of a running flow.
type RequestReceived struct {
	Kind         catalog.ActionKind
	RequestID    string
	FromPlayerID int
	Stage        int
	CardID       int
	SetID        int
}

type NSFOpened struct {
	ActionID   string
	ActionKind catalog.ActionKind
	PlayerID   int
	CardID     int
	OpenedAt   time.Time
}

type NSFCounterPlayed struct {
	ActionID string
	PlayerID int
	CardID   int
	PlayedAt time.Time
}

type NSFClosed struct {
	ActionID string
	Result   NSFResult
}

type GameEnded struct {
	Winners      []int
	FinishReason string
}

// DrawActionPatch patches the draw sub-state. Nil fields are left unchanged.
type DrawActionPatch struct {
	CardsToDrawRemaining *int
	OtherPlayerDrawing   **int
	HasDiscarded         *bool
	HasDrawn             *bool
	SkipDiscard          *bool
}

type SelectCard struct {
	CardID int
}

type ClearDisgraceWarning struct {
	Seq int
}

// InteractionSelect stages one selection on the active flow. ID is the
// player, secret, set or card id depending on Selection.
type InteractionSelect struct {
	Kind      catalog.ActionKind
	Selection catalog.SelectionKind
	ID        int
	Direction catalog.Direction
}

type InteractionSubmitted struct {
	Kind catalog.ActionKind
}

type InteractionAccepted struct {
	Kind catalog.ActionKind
}

// InteractionFailed moves the flow back to selecting. KeepSelection keeps the
// staged values; otherwise they are reverted.
type InteractionFailed struct {
	Kind          catalog.ActionKind
	KeepSelection bool
}

type RequestStarted struct {
	Flow string
}

// RequestFinished ends a request flow; Error is set when it failed.
type RequestFinished struct {
	Flow  string
	Error *FlowError
}

type SetError struct {
	Error FlowError
}
