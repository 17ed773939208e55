package state

import (
	"time"

	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

// InteractionView is the local player's view of the running flow.
type InteractionView struct {
	Family catalog.Family     `json:"family"`
	Kind   catalog.ActionKind `json:"kind"`
	Stage  int                `json:"stage"`
	Phase  FlowPhase          `json:"phase"`
	// Mine is set when the local player acts on the current step.
	Mine bool `json:"mine"`
	// Prompt is the step the local player must complete. Nil unless Mine.
	Prompt *catalog.Step `json:"prompt,omitempty"`
	Ready  bool          `json:"ready"`
}

// CounterView describes the open Not So Fast window.
type CounterView struct {
	ActionID   string             `json:"actionId"`
	ActionKind catalog.ActionKind `json:"actionKind"`
	Elapsed    time.Duration      `json:"elapsed"`
	Counters   int                `json:"counters"`
}

// View is what a renderer needs beyond the raw state.
type View struct {
	IsMyTurn            bool             `json:"isMyTurn"`
	DrawPhase           DrawPhase        `json:"drawPhase"`
	DrawControlsEnabled bool             `json:"drawControlsEnabled"`
	CanSubmit           bool             `json:"canSubmit"`
	Disgraced           bool             `json:"disgraced"`
	SelectedCount       int              `json:"selectedCount"`
	Interaction         *InteractionView `json:"interaction,omitempty"`
	Counter             *CounterView     `json:"counter,omitempty"`
	Warning             gameerrors.Code  `json:"warning,omitempty"`
	Connection          ConnectionStatus `json:"connection"`
}

// Derive computes the view of s at now.
func Derive(s GameState, now time.Time) View {
	v := View{
		IsMyTurn:            s.IsMyTurn(),
		DrawPhase:           s.DrawAction.Phase(),
		DrawControlsEnabled: s.DrawControlsEnabled(),
		CanSubmit:           !s.GameEnded && !s.Connection.Lost && !s.NSF.Active,
		Disgraced:           s.LocalDisgraced(),
		SelectedCount:       len(s.Selection.CardIDs),
		Warning:             s.DisgraceWarning.Code,
		Connection:          s.Connection.Status,
	}

	if s.Interaction != nil {
		f := s.Interaction.Current()
		iv := &InteractionView{
			Family: catalog.FamilyOf(f.Kind),
			Kind:   f.Kind,
			Stage:  f.Stage,
			Phase:  f.Phase,
			Mine:   f.IsActor(s.LocalPlayerID),
		}
		if iv.Mine {
			if step, ok := f.Step(); ok {
				iv.Prompt = &step
			}
			iv.Ready = f.Ready()
		}
		v.Interaction = iv
	}

	if s.NSF.Active {
		v.Counter = &CounterView{
			ActionID:   s.NSF.ActionID,
			ActionKind: s.NSF.ActionKind,
			Elapsed:    s.NSF.Elapsed(now),
			Counters:   len(s.NSF.Counters),
		}
	}
	return v
}
