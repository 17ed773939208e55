// Package state holds the client game state and the pure reducer that moves
// it forward one action at a time.
package state

import (
	"time"

	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

// Room is the lobby room the local player joined.
type Room struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	PlayersMin int    `json:"playersMin"`
	PlayersMax int    `json:"playersMax"`
	Status     string `json:"status"`
	HostID     int    `json:"hostId"`
}

// RoomPlayer is a player as listed by the lobby.
type RoomPlayer struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Birthdate string `json:"birthdate"`
	IsHost    bool   `json:"isHost"`
}

// PlayerSummary is a seated player during the game.
type PlayerSummary struct {
	PlayerID  int    `json:"playerId"`
	Name      string `json:"name"`
	AvatarSrc string `json:"avatarSrc"`
	HandSize  int    `json:"handSize"`
	IsHost    bool   `json:"isHost"`
}

type Card struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Secret is a secret card. Name is empty for other players' hidden secrets.
type Secret struct {
	ID       int    `json:"id"`
	PlayerID int    `json:"playerId"`
	Name     string `json:"name,omitempty"`
	Hidden   bool   `json:"hidden"`
}

// DetectiveSet is a set of detective cards laid down on the table.
type DetectiveSet struct {
	ID       int                `json:"id"`
	OwnerID  int                `json:"ownerId"`
	SetType  catalog.ActionKind `json:"setType"`
	Position int                `json:"position"`
	Cards    []Card             `json:"cards"`
}

type Deck struct {
	Count int    `json:"count"`
	Draft []Card `json:"draft"`
}

type DiscardPile struct {
	Top   *Card `json:"top"`
	Count int   `json:"count"`
}

// Decks is the shared table: draw deck, face-up draft and discard pile.
type Decks struct {
	Deck    Deck        `json:"deck"`
	Discard DiscardPile `json:"discard"`
}

// DrawAction tracks the draw/discard obligations of the current turn.
type DrawAction struct {
	CardsToDrawRemaining int  `json:"cardsToDrawRemaining"`
	OtherPlayerDrawing   *int `json:"otherPlayerDrawing"`
	HasDiscarded         bool `json:"hasDiscarded"`
	HasDrawn             bool `json:"hasDrawn"`
	SkipDiscard          bool `json:"skipDiscard"`
}

// Selection is the local hand selection, in selection order.
type Selection struct {
	CardIDs []int `json:"cardIds"`
}

// Warning is a transient notice. Seq identifies one occurrence so a delayed
// clear only removes the warning it was scheduled for.
type Warning struct {
	Code gameerrors.Code `json:"code,omitempty"`
	Seq  int             `json:"seq"`
}

// Active reports whether the warning is showing.
func (w Warning) Active() bool { return w.Code != "" }

type ConnectionStatus string

const (
	ConnectionIdle       ConnectionStatus = "idle"
	ConnectionConnected  ConnectionStatus = "connected"
	ConnectionStatusLost ConnectionStatus = "lost"
)

type Connection struct {
	Status   ConnectionStatus `json:"status"`
	Lost     bool             `json:"lost"`
	Attempts int              `json:"attempts"`
}

// FlowError is the last failure of a request flow.
type FlowError struct {
	Flow    string          `json:"flow"`
	Code    gameerrors.Code `json:"code"`
	Status  int             `json:"status,omitempty"`
	Message string          `json:"message"`
	Detail  string          `json:"detail,omitempty"`
}

type NSFResult string

const (
	NSFCountered NSFResult = "countered"
	NSFExpired   NSFResult = "expired"
)

// CounterPlay is one Not So Fast card played into an open window.
type CounterPlay struct {
	PlayerID int       `json:"playerId"`
	CardID   int       `json:"cardId"`
	PlayedAt time.Time `json:"playedAt"`
}

// NSFCounter is the Not So Fast counter window.
type NSFCounter struct {
	Active     bool               `json:"active"`
	ActionID   string             `json:"actionId,omitempty"`
	ActionKind catalog.ActionKind `json:"actionKind,omitempty"`
	PlayerID   int                `json:"playerId,omitempty"`
	CardID     int                `json:"cardId,omitempty"`
	OpenedAt   time.Time          `json:"openedAt"`
	Counters   []CounterPlay      `json:"counters"`
	Result     NSFResult          `json:"result,omitempty"`
}

// GameState is the whole client view of one game session. Values are never
// mutated in place; Reduce returns a new value sharing untouched parts.
type GameState struct {
	RoomID        int `json:"roomId"`
	GameID        int `json:"gameId"`
	LocalPlayerID int `json:"localPlayerId"`
	Epoch         int `json:"epoch"`

	Room    Room         `json:"room"`
	Players []RoomPlayer `json:"players"`

	CurrentTurn             int             `json:"currentTurn"`
	GamePlayers             []PlayerSummary `json:"gamePlayers"`
	Hand                    []Card          `json:"hand"`
	Secrets                 []Secret        `json:"secrets"`
	SecretsFromAllPlayers   []Secret        `json:"secretsFromAllPlayers"`
	Sets                    []DetectiveSet  `json:"sets"`
	PlayersInSocialDisgrace []int           `json:"playersInSocialDisgrace"`
	Decks                   Decks           `json:"decks"`
	DrawAction              DrawAction      `json:"drawAction"`
	Interaction             Interaction     `json:"interaction"`
	NSF                     NSFCounter      `json:"nsfCounter"`

	Selection       Selection  `json:"selection"`
	DisgraceWarning Warning    `json:"disgraceWarning"`
	Connection      Connection `json:"connection"`
	InFlight        []string   `json:"inFlight"`
	Loading         bool       `json:"loading"`
	Error           *FlowError `json:"error"`

	GameEnded    bool   `json:"gameEnded"`
	Winners      []int  `json:"winners"`
	FinishReason string `json:"finishReason,omitempty"`
}

// Initial returns the empty state.
func Initial() GameState {
	return GameState{
		Connection: Connection{Status: ConnectionIdle},
	}
}

// IsMyTurn reports whether the local player holds the turn.
func (s GameState) IsMyTurn() bool {
	return s.LocalPlayerID != 0 && s.CurrentTurn == s.LocalPlayerID
}

// IsDisgraced reports whether playerID is in social disgrace.
func (s GameState) IsDisgraced(playerID int) bool {
	return containsInt(s.PlayersInSocialDisgrace, playerID)
}

// LocalDisgraced reports whether the local player is in social disgrace.
func (s GameState) LocalDisgraced() bool {
	return s.LocalPlayerID != 0 && s.IsDisgraced(s.LocalPlayerID)
}

// EventActionInProgress returns the active event flow, if any.
func (s GameState) EventActionInProgress() (Flow, bool) {
	if it, ok := s.Interaction.(EventInteraction); ok {
		return it.Flow, true
	}
	return Flow{}, false
}

// DetectiveActionInProgress returns the active detective flow, if any.
func (s GameState) DetectiveActionInProgress() (Flow, bool) {
	if it, ok := s.Interaction.(DetectiveInteraction); ok {
		return it.Flow, true
	}
	return Flow{}, false
}

// Player returns the seated player with id.
func (s GameState) Player(id int) (PlayerSummary, bool) {
	for _, p := range s.GamePlayers {
		if p.PlayerID == id {
			return p, true
		}
	}
	return PlayerSummary{}, false
}

func containsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeInts(ids []int, drop []int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if !containsInt(drop, v) {
			out = append(out, v)
		}
	}
	return out
}
