package events

import "time"

// Shared DTOs

type CardDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type SecretDTO struct {
	ID       int    `json:"id"`
	PlayerID int    `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Hidden   bool   `json:"hidden"`
}

type SetDTO struct {
	ID       int       `json:"id"`
	OwnerID  int       `json:"owner_id"`
	SetType  string    `json:"set_type"`
	Position int       `json:"position"`
	Cards    []CardDTO `json:"cards"`
}

type PlayerSummaryDTO struct {
	PlayerID  int    `json:"player_id"`
	Name      string `json:"name"`
	AvatarSrc string `json:"avatar_src"`
	HandSize  int    `json:"hand_size"`
	IsHost    bool   `json:"is_host"`
}

type RoomDTO struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	PlayersMin int    `json:"players_min"`
	PlayersMax int    `json:"players_max"`
	Status     string `json:"status"`
	HostID     int    `json:"host_id"`
}

type RoomPlayerDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Birthdate string `json:"birthdate"`
	IsHost    bool   `json:"is_host"`
}

type DecksDTO struct {
	DeckCount    int       `json:"deck_count"`
	Draft        []CardDTO `json:"draft"`
	DiscardTop   *CardDTO  `json:"discard_top"`
	DiscardCount int       `json:"discard_count"`
}

type DrawActionDTO struct {
	CardsToDrawRemaining int  `json:"cards_to_draw_remaining"`
	OtherPlayerDrawing   *int `json:"other_player_drawing"`
	HasDiscarded         bool `json:"has_discarded"`
	HasDrawn             bool `json:"has_drawn"`
	SkipDiscard          bool `json:"skip_discard"`
}

type CounterDTO struct {
	PlayerID int       `json:"player_id"`
	CardID   int       `json:"card_id"`
	PlayedAt time.Time `json:"played_at"`
}

type NSFDTO struct {
	Active     bool         `json:"active"`
	ActionID   string       `json:"action_id"`
	ActionType string       `json:"action_type"`
	PlayerID   int          `json:"player_id"`
	CardID     int          `json:"card_id"`
	OpenedAt   time.Time    `json:"opened_at"`
	Counters   []CounterDTO `json:"counters"`
}

// Lobby and HTTP DTOs

type JoinRequest struct {
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Birthdate string `json:"birthdate"`
}

type JoinResponse struct {
	Room     RoomDTO         `json:"room"`
	Players  []RoomPlayerDTO `json:"players"`
	PlayerID *int            `json:"player_id,omitempty"`
}

type GameListItem struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	PlayersJoined int    `json:"players_joined"`
	PlayersMin    int    `json:"players_min"`
	PlayersMax    int    `json:"players_max"`
}

type GameListResponse struct {
	Items []GameListItem `json:"items"`
}

// SnapshotPayload is the authoritative state returned by the state endpoint.
type SnapshotPayload struct {
	GameID                  int                            `json:"game_id"`
	CurrentTurn             int                            `json:"current_turn"`
	Players                 []PlayerSummaryDTO             `json:"players"`
	Hand                    []CardDTO                      `json:"hand"`
	Secrets                 []SecretDTO                    `json:"secrets"`
	SecretsFromAllPlayers   []SecretDTO                    `json:"secrets_all_players"`
	Sets                    []SetDTO                       `json:"sets"`
	PlayersInSocialDisgrace []int                          `json:"players_in_social_disgrace"`
	Decks                   DecksDTO                       `json:"decks"`
	DrawAction              *DrawActionDTO                 `json:"draw_action"`
	NSF                     *NSFDTO                        `json:"nsf_counter"`
	EventAction             *EventActionStartedPayload     `json:"event_action"`
	DetectiveAction         *DetectiveActionStartedPayload `json:"detective_action"`
	GameEnded               bool                           `json:"game_ended"`
	Winners                 []int                          `json:"winners"`
	FinishReason            string                         `json:"finish_reason"`
}

// Push payloads

type PlayerJoinedPayload struct {
	Player RoomPlayerDTO `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID int `json:"player_id"`
}

type GameStartedPayload struct {
	Players     []PlayerSummaryDTO `json:"players"`
	CurrentTurn int                `json:"current_turn"`
}

type TurnAdvancedPayload struct {
	PlayerID int `json:"player_id"`
}

type HandUpdatedPayload struct {
	Cards []CardDTO `json:"cards"`
}

// DecksUpdatedPayload only carries the fields that changed.
type DecksUpdatedPayload struct {
	DeckCount    *int       `json:"deck_count,omitempty"`
	Draft        *[]CardDTO `json:"draft,omitempty"`
	DiscardTop   *CardDTO   `json:"discard_top,omitempty"`
	DiscardCount *int       `json:"discard_count,omitempty"`
}

type SecretsUpdatedPayload struct {
	PlayerID int         `json:"player_id"`
	Secrets  []SecretDTO `json:"secrets"`
}

type SecretRevealedPayload struct {
	PlayerID int    `json:"player_id"`
	SecretID int    `json:"secret_id"`
	Name     string `json:"name"`
}

type SecretHiddenPayload struct {
	PlayerID int `json:"player_id"`
	SecretID int `json:"secret_id"`
}

type SetsUpdatedPayload struct {
	Sets []SetDTO `json:"sets"`
}

type SocialDisgraceUpdatedPayload struct {
	PlayerIDs []int `json:"player_ids"`
}

type DrawRequiredPayload struct {
	PlayerID    int  `json:"player_id"`
	Count       int  `json:"count"`
	SkipDiscard bool `json:"skip_discard"`
}

type CardDrawnPayload struct {
	PlayerID  int `json:"player_id"`
	Remaining int `json:"remaining"`
}

type DiscardConfirmedPayload struct {
	PlayerID int   `json:"player_id"`
	CardIDs  []int `json:"card_ids"`
}

type EventActionStartedPayload struct {
	EventType      string    `json:"event_type"`
	CardID         int       `json:"card_id"`
	PlayerID       int       `json:"player_id"`
	TargetPlayerID *int      `json:"target_player_id,omitempty"`
	AvailableCards []CardDTO `json:"available_cards,omitempty"`
}

type EventActionResolvedPayload struct {
	EventType string `json:"event_type"`
}

type DetectiveActionStartedPayload struct {
	SetType           string `json:"set_type"`
	SetID             int    `json:"set_id"`
	InitiatorPlayerID int    `json:"initiator_player_id"`
	TargetPlayerID    *int   `json:"target_player_id,omitempty"`
}

type DetectiveTargetSelectedPayload struct {
	SetType        string `json:"set_type"`
	TargetPlayerID int    `json:"target_player_id"`
}

type DetectiveActionResolvedPayload struct {
	SetType string `json:"set_type"`
}

type InteractionRequestPayload struct {
	Action       string `json:"action"`
	RequestID    string `json:"request_id"`
	FromPlayerID int    `json:"from_player_id"`
	Stage        int    `json:"stage"`
	CardID       int    `json:"card_id,omitempty"`
	SetID        int    `json:"set_id,omitempty"`
}

type NSFWindowOpenedPayload struct {
	ActionID   string    `json:"action_id"`
	ActionType string    `json:"action_type"`
	PlayerID   int       `json:"player_id"`
	CardID     int       `json:"card_id"`
	OpenedAt   time.Time `json:"opened_at"`
}

type NSFCounterPlayedPayload struct {
	ActionID string    `json:"action_id"`
	PlayerID int       `json:"player_id"`
	CardID   int       `json:"card_id"`
	PlayedAt time.Time `json:"played_at"`
}

type NSFWindowClosedPayload struct {
	ActionID string `json:"action_id"`
	Result   string `json:"result"`
}

type GameEndedPayload struct {
	Winners      []int  `json:"winners"`
	FinishReason string `json:"finish_reason"`
}
