package state

// DrawPhase is derived from DrawAction; it is never stored.
type DrawPhase string

const (
	DrawIdle        DrawPhase = "idle"
	DrawDrawing     DrawPhase = "drawing"
	DrawMustDiscard DrawPhase = "mustDiscard"
	DrawDone        DrawPhase = "done"
)

// Phase derives the draw/discard phase of the local player.
func (d DrawAction) Phase() DrawPhase {
	switch {
	case d.CardsToDrawRemaining > 0:
		return DrawDrawing
	case d.HasDrawn && !d.HasDiscarded && !d.SkipDiscard:
		return DrawMustDiscard
	case d.HasDrawn:
		return DrawDone
	default:
		return DrawIdle
	}
}

// DrawControlsEnabled reports whether the local draw/discard controls are usable.
func (s GameState) DrawControlsEnabled() bool {
	if s.GameEnded || s.Connection.Lost {
		return false
	}
	other := s.DrawAction.OtherPlayerDrawing
	return other == nil || *other == s.LocalPlayerID
}

func drawRequired(s GameState, p DrawRequired) GameState {
	if p.PlayerID != s.LocalPlayerID {
		if p.Count > 0 {
			s.DrawAction.OtherPlayerDrawing = intPtr(p.PlayerID)
		} else {
			s.DrawAction.OtherPlayerDrawing = nil
		}
		return s
	}
	s.DrawAction.CardsToDrawRemaining = max(p.Count, 0)
	s.DrawAction.SkipDiscard = p.SkipDiscard
	s.DrawAction.OtherPlayerDrawing = nil
	return s
}

func cardDrawn(s GameState, p CardDrawn) GameState {
	if p.PlayerID != s.LocalPlayerID {
		if p.Remaining <= 0 {
			s.DrawAction.OtherPlayerDrawing = nil
		}
		return s
	}
	s.DrawAction.CardsToDrawRemaining = max(p.Remaining, 0)
	s.DrawAction.HasDrawn = true
	return s
}

func discardConfirmed(s GameState, p DiscardConfirmed) GameState {
	if p.PlayerID != s.LocalPlayerID {
		return s
	}
	s.DrawAction.HasDiscarded = true
	if len(s.Selection.CardIDs) > 0 {
		s.Selection = Selection{CardIDs: removeInts(s.Selection.CardIDs, p.CardIDs)}
	}
	return s
}

func setDrawAction(s GameState, p DrawActionPatch) GameState {
	if p.CardsToDrawRemaining != nil {
		s.DrawAction.CardsToDrawRemaining = *p.CardsToDrawRemaining
	}
	if p.OtherPlayerDrawing != nil {
		s.DrawAction.OtherPlayerDrawing = *p.OtherPlayerDrawing
	}
	if p.HasDiscarded != nil {
		s.DrawAction.HasDiscarded = *p.HasDiscarded
	}
	if p.HasDrawn != nil {
		s.DrawAction.HasDrawn = *p.HasDrawn
	}
	if p.SkipDiscard != nil {
		s.DrawAction.SkipDiscard = *p.SkipDiscard
	}
	return s
}
