package state

import (
	"fmt"

	"github.com/mcdev12/sleuth/go/internal/game/catalog"
)

// Interaction is the single multi-step flow the table is running: nil,
// EventInteraction or DetectiveInteraction.
type Interaction interface {
	isInteraction()
	Current() Flow
}

// EventInteraction is an event card flow.
type EventInteraction struct {
	Flow
}

// DetectiveInteraction is a detective set flow.
type DetectiveInteraction struct {
	Flow
}

func (EventInteraction) isInteraction()     {}
func (DetectiveInteraction) isInteraction() {}

func (i EventInteraction) Current() Flow     { return i.Flow }
func (i DetectiveInteraction) Current() Flow { return i.Flow }

// FlowPhase is where the local client stands on the current step run.
type FlowPhase string

const (
	PhaseSelecting  FlowPhase = "selecting"
	PhaseSubmitting FlowPhase = "submitting"
	PhaseAwaiting   FlowPhase = "awaiting"
)

// IncomingRequest is a server request for the local player to act.
type IncomingRequest struct {
	RequestID    string `json:"requestId"`
	FromPlayerID int    `json:"fromPlayerId"`
	Stage        int    `json:"stage"`
}

// Flow is the state of one event or detective flow.
type Flow struct {
	Kind              catalog.ActionKind `json:"kind"`
	CardID            int                `json:"cardId,omitempty"`
	SetID             int                `json:"setId,omitempty"`
	InitiatorPlayerID int                `json:"initiatorPlayerId"`
	TargetPlayerID    *int               `json:"targetPlayerId,omitempty"`
	Stage             int                `json:"stage"`
	Staged            catalog.Selections `json:"staged"`
	Phase             FlowPhase          `json:"phase"`
	AvailableCards    []Card             `json:"availableCards,omitempty"`
	Incoming          *IncomingRequest   `json:"incoming,omitempty"`
}

// Definition returns the catalog entry for the flow's kind.
func (f Flow) Definition() catalog.Definition {
	def, _ := catalog.Lookup(f.Kind)
	return def
}

// Step returns the step the flow is on.
func (f Flow) Step() (catalog.Step, bool) {
	def := f.Definition()
	if f.Stage < 0 || f.Stage >= len(def.Steps) {
		return catalog.Step{}, false
	}
	return def.Steps[f.Stage], true
}

// IsActor reports whether playerID acts on the current step.
func (f Flow) IsActor(playerID int) bool {
	step, ok := f.Step()
	if !ok || playerID == 0 {
		return false
	}
	switch step.Actor {
	case catalog.RoleInitiator:
		return f.InitiatorPlayerID == playerID
	case catalog.RoleTarget:
		return f.TargetPlayerID != nil && *f.TargetPlayerID == playerID
	case catalog.RoleEveryone:
		return true
	}
	return false
}

// Ready reports whether every selection of the current run is staged.
func (f Flow) Ready() bool {
	return f.Definition().ValidateRun(f.Stage, f.Staged) == nil
}

// Key identifies the flow step for in-flight request bookkeeping.
func (f Flow) Key() string {
	return FlowKey(f.Kind, f.Stage)
}

// FlowKey builds the in-flight key for kind at stage.
func FlowKey(kind catalog.ActionKind, stage int) string {
	return fmt.Sprintf("%s:%d", kind, stage)
}

// withFlow rewraps f in the same family as it.
func withFlow(it Interaction, f Flow) Interaction {
	switch it.(type) {
	case EventInteraction:
		return EventInteraction{Flow: f}
	case DetectiveInteraction:
		return DetectiveInteraction{Flow: f}
	}
	return it
}

// newInteraction wraps f according to the family of its kind.
func newInteraction(f Flow) Interaction {
	switch catalog.FamilyOf(f.Kind) {
	case catalog.FamilyEvent:
		return EventInteraction{Flow: f}
	case catalog.FamilyDetective:
		return DetectiveInteraction{Flow: f}
	}
	return nil
}

// activeFlow returns the running flow when its kind is kind.
func activeFlow(s GameState, kind catalog.ActionKind) (Flow, bool) {
	if s.Interaction == nil {
		return Flow{}, false
	}
	f := s.Interaction.Current()
	if f.Kind != kind {
		return Flow{}, false
	}
	return f, true
}

func cloneSelections(sel catalog.Selections) catalog.Selections {
	out := sel
	if sel.CardIDs != nil {
		out.CardIDs = append([]int(nil), sel.CardIDs...)
	}
	return out
}

func intPtr(v int) *int { return &v }
