package state

import "time"

// nsfOpened opens the Not So Fast window for a pending action.
func nsfOpened(s GameState, p NSFOpened) GameState {
	s.NSF = NSFCounter{
		Active:     true,
		ActionID:   p.ActionID,
		ActionKind: p.ActionKind,
		PlayerID:   p.PlayerID,
		CardID:     p.CardID,
		OpenedAt:   p.OpenedAt,
	}
	return s
}

func nsfCounterPlayed(s GameState, p NSFCounterPlayed) GameState {
	if !s.NSF.Active || (p.ActionID != "" && p.ActionID != s.NSF.ActionID) {
		return s
	}
	s.NSF.Counters = append(append([]CounterPlay(nil), s.NSF.Counters...), CounterPlay{
		PlayerID: p.PlayerID,
		CardID:   p.CardID,
		PlayedAt: p.PlayedAt,
	})
	return s
}

// nsfClosed closes the window. Only the server closes it; local time never
// does.
func nsfClosed(s GameState, p NSFClosed) GameState {
	if !s.NSF.Active || (p.ActionID != "" && p.ActionID != s.NSF.ActionID) {
		return s
	}
	s.NSF.Active = false
	s.NSF.Result = p.Result
	return s
}

// Elapsed returns how long the window has been open at now.
func (n NSFCounter) Elapsed(now time.Time) time.Duration {
	if !n.Active || n.OpenedAt.IsZero() || now.Before(n.OpenedAt) {
		return 0
	}
	return now.Sub(n.OpenedAt)
}
