// Package catalog describes every player-triggerable action and the ordered
// selections it needs before it can be sent to the server.
package catalog

import (
	"errors"
	"fmt"
)

// Family groups action kinds by the sub-flow that owns them.
type Family string

const (
	FamilyCore      Family = "core"
	FamilyEvent     Family = "event"
	FamilyDetective Family = "detective"
)

// ActionKind identifies a single action. Event and detective kinds double as
// the keys the server uses for event cards and detective set types.
type ActionKind string

const (
	// Core turn actions
	Discard   ActionKind = "discard"
	Skip      ActionKind = "skip"
	Draw      ActionKind = "draw"
	PlayEvent ActionKind = "playEvent"
	PlaySet   ActionKind = "playSet"
	Counter   ActionKind = "notSoFast"

	// Event cards
	LookAshes     ActionKind = "lookAshes"
	AnotherVictim ActionKind = "anotherVictim"
	DelayEscape   ActionKind = "delayEscape"
	OneMore       ActionKind = "oneMore"
	DeadCardFolly ActionKind = "deadCardFolly"

	// Detective sets
	Marple        ActionKind = "marple"
	Poirot        ActionKind = "poirot"
	Pyne          ActionKind = "pyne"
	Beresford     ActionKind = "beresford"
	Satterthwaite ActionKind = "satterthwaite"
	EileenBrent   ActionKind = "eileenBrent"
)

// SelectionKind is what a single step asks the acting player to pick.
type SelectionKind string

const (
	SelectPlayer    SelectionKind = "player"
	SelectSecret    SelectionKind = "secret"
	SelectSet       SelectionKind = "set"
	SelectCards     SelectionKind = "cards"
	SelectDirection SelectionKind = "direction"
	SelectSource    SelectionKind = "source"
)

// Role says which participant of a flow acts on a step.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleTarget    Role = "target"
	RoleEveryone  Role = "everyone"
)

// SecretFilter narrows which secrets a secret step may pick.
type SecretFilter string

const (
	SecretAny      SecretFilter = ""
	SecretHidden   SecretFilter = "hidden"
	SecretRevealed SecretFilter = "revealed"
)

// Direction is the passing direction chosen for Dead Card Folly.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// DrawSource is where a drawn card comes from.
type DrawSource string

const (
	SourceDeck  DrawSource = "deck"
	SourceDraft DrawSource = "draft"
)

// Step is one selection in an action's flow.
type Step struct {
	Selection     SelectionKind
	Actor         Role
	Min           int // card steps only
	Max           int // card steps only; 0 means unbounded
	FromAvailable bool
	Secrets       SecretFilter
}

// Definition is the static description of an action kind.
type Definition struct {
	Kind   ActionKind
	Family Family
	// Slug is the path segment the server uses for this action.
	Slug  string
	Steps []Step
	// ClearsSelection is set for actions that consume the local hand selection.
	ClearsSelection bool
}

// Selections holds the values picked so far for a flow.
type Selections struct {
	PlayerID  *int       `json:"playerId,omitempty"`
	SecretID  *int       `json:"secretId,omitempty"`
	SetID     *int       `json:"setId,omitempty"`
	CardIDs   []int      `json:"cardIds,omitempty"`
	Direction Direction  `json:"direction,omitempty"`
	Source    DrawSource `json:"source,omitempty"`
}

var (
	ErrUnknownKind       = errors.New("unknown action kind")
	ErrMissingSelection  = errors.New("missing selection")
	ErrTooManySelections = errors.New("too many selections")
	ErrInvalidStage      = errors.New("invalid stage")
)

var definitions = map[ActionKind]Definition{
	Discard: {
		Kind: Discard, Family: FamilyCore, Slug: "discard", ClearsSelection: true,
		Steps: []Step{{Selection: SelectCards, Actor: RoleInitiator, Min: 1}},
	},
	Skip: {
		Kind: Skip, Family: FamilyCore, Slug: "skip",
	},
	Draw: {
		Kind: Draw, Family: FamilyCore, Slug: "draw",
		Steps: []Step{{Selection: SelectSource, Actor: RoleInitiator}},
	},
	PlayEvent: {
		Kind: PlayEvent, Family: FamilyCore, Slug: "event", ClearsSelection: true,
		Steps: []Step{{Selection: SelectCards, Actor: RoleInitiator, Min: 1, Max: 1}},
	},
	PlaySet: {
		Kind: PlaySet, Family: FamilyCore, Slug: "set", ClearsSelection: true,
		Steps: []Step{{Selection: SelectCards, Actor: RoleInitiator, Min: 1}},
	},
	Counter: {
		Kind: Counter, Family: FamilyCore, Slug: "nsf", ClearsSelection: true,
		Steps: []Step{{Selection: SelectCards, Actor: RoleInitiator, Min: 1, Max: 1}},
	},

	LookAshes: {
		Kind: LookAshes, Family: FamilyEvent, Slug: "look-into-the-ashes",
		Steps: []Step{{Selection: SelectCards, Actor: RoleInitiator, Min: 1, Max: 1, FromAvailable: true}},
	},
	AnotherVictim: {
		Kind: AnotherVictim, Family: FamilyEvent, Slug: "another-victim",
		Steps: []Step{
			{Selection: SelectPlayer, Actor: RoleInitiator},
			{Selection: SelectSet, Actor: RoleInitiator},
		},
	},
	DelayEscape: {
		Kind: DelayEscape, Family: FamilyEvent, Slug: "delay-the-murderers-escape",
		Steps: []Step{{Selection: SelectCards, Actor: RoleInitiator, Min: 1, Max: 5, FromAvailable: true}},
	},
	OneMore: {
		Kind: OneMore, Family: FamilyEvent, Slug: "and-then-there-was-one-more",
		Steps: []Step{
			{Selection: SelectSecret, Actor: RoleInitiator, Secrets: SecretRevealed},
			{Selection: SelectPlayer, Actor: RoleInitiator},
		},
	},
	DeadCardFolly: {
		Kind: DeadCardFolly, Family: FamilyEvent, Slug: "dead-card-folly",
		Steps: []Step{
			{Selection: SelectDirection, Actor: RoleInitiator},
			{Selection: SelectCards, Actor: RoleEveryone, Min: 1, Max: 1},
		},
	},

	Marple:        initiatorReveals(Marple, "marple"),
	Poirot:        initiatorReveals(Poirot, "poirot"),
	Pyne:          {Kind: Pyne, Family: FamilyDetective, Slug: "pyne", Steps: []Step{{Selection: SelectPlayer, Actor: RoleInitiator}, {Selection: SelectSecret, Actor: RoleInitiator, Secrets: SecretRevealed}}},
	Beresford:     targetReveals(Beresford, "beresford"),
	Satterthwaite: targetReveals(Satterthwaite, "satterthwaite"),
	EileenBrent:   targetReveals(EileenBrent, "eileen-brent"),
}

func initiatorReveals(kind ActionKind, slug string) Definition {
	return Definition{
		Kind: kind, Family: FamilyDetective, Slug: slug,
		Steps: []Step{
			{Selection: SelectPlayer, Actor: RoleInitiator},
			{Selection: SelectSecret, Actor: RoleInitiator, Secrets: SecretHidden},
		},
	}
}

func targetReveals(kind ActionKind, slug string) Definition {
	return Definition{
		Kind: kind, Family: FamilyDetective, Slug: slug,
		Steps: []Step{
			{Selection: SelectPlayer, Actor: RoleInitiator},
			{Selection: SelectSecret, Actor: RoleTarget, Secrets: SecretHidden},
		},
	}
}

// Lookup returns the definition for kind.
func Lookup(kind ActionKind) (Definition, bool) {
	def, ok := definitions[kind]
	return def, ok
}

// Parse resolves a kind from either its name or its server slug.
func Parse(v string) (ActionKind, bool) {
	if _, ok := definitions[ActionKind(v)]; ok {
		return ActionKind(v), true
	}
	for kind, def := range definitions {
		if def.Slug == v {
			return kind, true
		}
	}
	return "", false
}

// FamilyOf returns the family of kind, or "" when the kind is unknown.
func FamilyOf(kind ActionKind) Family {
	return definitions[kind].Family
}

// IsEvent reports whether kind is an event card flow.
func IsEvent(kind ActionKind) bool { return FamilyOf(kind) == FamilyEvent }

// IsDetective reports whether kind is a detective set flow.
func IsDetective(kind ActionKind) bool { return FamilyOf(kind) == FamilyDetective }

// Kinds returns every kind belonging to family.
func Kinds(family Family) []ActionKind {
	var out []ActionKind
	for kind, def := range definitions {
		if def.Family == family {
			out = append(out, kind)
		}
	}
	return out
}

// RunEnd returns the index just past the contiguous run of steps starting at
// stage that share the same actor. A run is what one participant submits in
// a single request.
func (d Definition) RunEnd(stage int) int {
	if stage < 0 || stage >= len(d.Steps) {
		return stage
	}
	actor := d.Steps[stage].Actor
	end := stage + 1
	for end < len(d.Steps) && d.Steps[end].Actor == actor {
		end++
	}
	return end
}

// StepFor returns the index of the first step in the run starting at stage
// that asks for selection.
func (d Definition) StepFor(stage int, selection SelectionKind) (int, bool) {
	for i := stage; i < d.RunEnd(stage); i++ {
		if d.Steps[i].Selection == selection {
			return i, true
		}
	}
	return 0, false
}

// ValidateRun checks that sel carries every selection the run starting at
// stage requires. It checks shape only; legality is decided by the server.
func (d Definition) ValidateRun(stage int, sel Selections) error {
	if len(d.Steps) == 0 {
		if stage != 0 {
			return fmt.Errorf("%s: %w", d.Kind, ErrInvalidStage)
		}
		return nil
	}
	if stage < 0 || stage >= len(d.Steps) {
		return fmt.Errorf("%s stage %d: %w", d.Kind, stage, ErrInvalidStage)
	}
	for i := stage; i < d.RunEnd(stage); i++ {
		if err := d.Steps[i].validate(sel); err != nil {
			return fmt.Errorf("%s step %d (%s): %w", d.Kind, i, d.Steps[i].Selection, err)
		}
	}
	return nil
}

func (s Step) validate(sel Selections) error {
	switch s.Selection {
	case SelectPlayer:
		if sel.PlayerID == nil {
			return ErrMissingSelection
		}
	case SelectSecret:
		if sel.SecretID == nil {
			return ErrMissingSelection
		}
	case SelectSet:
		if sel.SetID == nil {
			return ErrMissingSelection
		}
	case SelectDirection:
		if sel.Direction != DirectionLeft && sel.Direction != DirectionRight {
			return ErrMissingSelection
		}
	case SelectSource:
		switch sel.Source {
		case SourceDeck:
		case SourceDraft:
			if len(sel.CardIDs) != 1 {
				return ErrMissingSelection
			}
		default:
			return ErrMissingSelection
		}
	case SelectCards:
		min := s.Min
		if min < 1 {
			min = 1
		}
		if len(sel.CardIDs) < min {
			return ErrMissingSelection
		}
		if s.Max > 0 && len(sel.CardIDs) > s.Max {
			return ErrTooManySelections
		}
	}
	return nil
}
