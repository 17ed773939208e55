package game_api_client

type DiscardRequest struct {
	CardIDs []int `json:"card_ids"`
}

type SkipRequest struct {
	Rule string `json:"rule"`
}

type DrawRequest struct {
	Source string `json:"source"`
	CardID *int   `json:"card_id,omitempty"`
}

type PlayEventRequest struct {
	CardID int `json:"card_id"`
}

type PlaySetRequest struct {
	CardIDs []int `json:"card_ids"`
}

type CounterRequest struct {
	CardID   int    `json:"card_id"`
	ActionID string `json:"action_id,omitempty"`
}

// EventActionRequest carries the initiator's choices for an event card.
type EventActionRequest struct {
	CardID          int    `json:"card_id"`
	TargetPlayerID  *int   `json:"target_player_id,omitempty"`
	SetID           *int   `json:"set_id,omitempty"`
	SecretID        *int   `json:"secret_id,omitempty"`
	SelectedCardIDs []int  `json:"selected_card_ids,omitempty"`
	Direction       string `json:"direction,omitempty"`
}

// EventRespondRequest answers a server request during an event flow.
type EventRespondRequest struct {
	RequestID string `json:"request_id,omitempty"`
	CardIDs   []int  `json:"card_ids,omitempty"`
	SecretID  *int   `json:"secret_id,omitempty"`
}

type DetectiveActionRequest struct {
	SetType        string `json:"set_type"`
	SetID          int    `json:"set_id"`
	TargetPlayerID *int   `json:"target_player_id,omitempty"`
	SecretID       *int   `json:"secret_id,omitempty"`
}

type DetectiveRespondRequest struct {
	SetType   string `json:"set_type"`
	RequestID string `json:"request_id,omitempty"`
	SecretID  *int   `json:"secret_id,omitempty"`
}
