package state

import "github.com/mcdev12/sleuth/go/internal/gameerrors"

// selectCard toggles id in the local hand selection. A disgraced player may
// hold at most one selected card; a second pick is refused with a warning.
func selectCard(s GameState, p SelectCard) GameState {
	if s.Connection.Lost {
		return s
	}
	ids := s.Selection.CardIDs
	if containsInt(ids, p.CardID) {
		s.Selection = Selection{CardIDs: removeInts(ids, []int{p.CardID})}
		return s
	}
	if s.LocalDisgraced() && len(ids) >= 1 {
		return warnDisgrace(s)
	}
	s.Selection = Selection{CardIDs: append(append([]int(nil), ids...), p.CardID)}
	return s
}

func warnDisgrace(s GameState) GameState {
	s.DisgraceWarning = Warning{
		Code: gameerrors.CodeSocialDisgrace,
		Seq:  s.DisgraceWarning.Seq + 1,
	}
	return s
}
