package state

import "github.com/mcdev12/sleuth/go/internal/game/catalog"

// eventStarted opens an event flow. A flow confirmed by the server replaces
// whatever interaction was running.
func eventStarted(s GameState, p EventStarted) GameState {
	if !catalog.IsEvent(p.Kind) {
		return s
	}
	f := Flow{
		Kind:              p.Kind,
		CardID:            p.CardID,
		InitiatorPlayerID: p.PlayerID,
		TargetPlayerID:    p.TargetPlayerID,
		Phase:             PhaseSelecting,
	}
	if p.PlayerID == s.LocalPlayerID {
		f.AvailableCards = p.AvailableCards
	}
	s.Interaction = EventInteraction{Flow: f}
	return s
}

func detectiveStarted(s GameState, p DetectiveStarted) GameState {
	if !catalog.IsDetective(p.SetType) {
		return s
	}
	f := Flow{
		Kind:              p.SetType,
		SetID:             p.SetID,
		InitiatorPlayerID: p.InitiatorPlayerID,
		Phase:             PhaseSelecting,
	}
	s.Interaction = DetectiveInteraction{Flow: f}
	if p.TargetPlayerID != nil {
		return detectiveTargetSelected(s, DetectiveTargetSelected{SetType: p.SetType, TargetPlayerID: *p.TargetPlayerID})
	}
	return s
}

// detectiveTargetSelected records the target. When the next step belongs to
// someone else the flow moves on to it.
func detectiveTargetSelected(s GameState, p DetectiveTargetSelected) GameState {
	d, ok := s.Interaction.(DetectiveInteraction)
	if !ok || d.Kind != p.SetType {
		return s
	}
	f := d.Flow
	f.TargetPlayerID = intPtr(p.TargetPlayerID)

	def := f.Definition()
	if next := def.RunEnd(0); f.Stage == 0 && next < len(def.Steps) {
		f.Stage = next
		f.Phase = PhaseSelecting
		f.Staged = catalog.Selections{}
		f.Incoming = nil
	} else {
		staged := cloneSelections(f.Staged)
		staged.PlayerID = intPtr(p.TargetPlayerID)
		f.Staged = staged
	}
	s.Interaction = DetectiveInteraction{Flow: f}
	return s
}

// requestReceived moves the flow to the requested stage for the local
// player. A request for a flow this client has not seen starts it.
func requestReceived(s GameState, p RequestReceived) GameState {
	def, ok := catalog.Lookup(p.Kind)
	if !ok || def.Family == catalog.FamilyCore || p.Stage < 0 || p.Stage >= len(def.Steps) {
		return s
	}

	f, running := activeFlow(s, p.Kind)
	if !running {
		f = Flow{
			Kind:              p.Kind,
			CardID:            p.CardID,
			SetID:             p.SetID,
			InitiatorPlayerID: p.FromPlayerID,
		}
	}
	if def.Steps[p.Stage].Actor == catalog.RoleTarget && f.TargetPlayerID == nil {
		f.TargetPlayerID = intPtr(s.LocalPlayerID)
	}
	f.Stage = p.Stage
	f.Phase = PhaseSelecting
	f.Staged = catalog.Selections{}
	f.Incoming = &IncomingRequest{
		RequestID:    p.RequestID,
		FromPlayerID: p.FromPlayerID,
		Stage:        p.Stage,
	}

	if running {
		s.Interaction = withFlow(s.Interaction, f)
	} else {
		s.Interaction = newInteraction(f)
	}
	return s
}

func resolveFlow(s GameState, kind catalog.ActionKind) GameState {
	if _, ok := activeFlow(s, kind); !ok {
		return s
	}
	s.Interaction = nil
	return s
}

// movePhase moves the flow of kind from one phase to another. Staged values
// are reverted unless keep is set.
func movePhase(s GameState, kind catalog.ActionKind, from, to FlowPhase, keep bool) GameState {
	f, ok := activeFlow(s, kind)
	if !ok || f.Phase != from {
		return s
	}
	f.Phase = to
	if to == PhaseAwaiting {
		f.Incoming = nil
	}
	if !keep {
		f.Staged = catalog.Selections{}
	}
	s.Interaction = withFlow(s.Interaction, f)
	return s
}

// interactionSelect stages one selection on the running flow. Only the
// actor of the current step may select, and only while selecting.
func interactionSelect(s GameState, p InteractionSelect) GameState {
	if s.Connection.Lost {
		return s
	}
	f, ok := activeFlow(s, p.Kind)
	if !ok || f.Phase != PhaseSelecting || !f.IsActor(s.LocalPlayerID) {
		return s
	}
	def := f.Definition()
	idx, ok := def.StepFor(f.Stage, p.Selection)
	if !ok {
		return s
	}
	step := def.Steps[idx]
	staged := cloneSelections(f.Staged)

	switch p.Selection {
	case catalog.SelectPlayer:
		if _, seated := s.Player(p.ID); !seated {
			return s
		}
		staged.PlayerID = toggle(staged.PlayerID, p.ID)
		// later picks in the run depend on the player
		for j := idx + 1; j < def.RunEnd(f.Stage); j++ {
			clearStaged(&staged, def.Steps[j].Selection)
		}

	case catalog.SelectSecret:
		sec, found := findSecret(s, p.ID)
		if !found || !secretMatches(step.Secrets, sec) {
			return s
		}
		switch {
		case step.Actor == catalog.RoleTarget && sec.PlayerID != s.LocalPlayerID:
			return s
		case staged.PlayerID != nil && sec.PlayerID != *staged.PlayerID && pickedBefore(def, f.Stage, idx, catalog.SelectPlayer):
			return s
		}
		staged.SecretID = toggle(staged.SecretID, p.ID)

	case catalog.SelectSet:
		set, found := findSet(s, p.ID)
		if !found || (staged.PlayerID != nil && set.OwnerID != *staged.PlayerID) {
			return s
		}
		staged.SetID = toggle(staged.SetID, p.ID)

	case catalog.SelectCards:
		pool := s.Hand
		if step.FromAvailable {
			pool = f.AvailableCards
		}
		if !handContains(pool, p.ID) {
			return s
		}
		switch {
		case containsInt(staged.CardIDs, p.ID):
			staged.CardIDs = removeInts(staged.CardIDs, []int{p.ID})
		case step.Max == 1:
			staged.CardIDs = []int{p.ID}
		case step.Max > 0 && len(staged.CardIDs) >= step.Max:
			return s
		case !step.FromAvailable && s.LocalDisgraced() && len(staged.CardIDs) >= 1:
			return warnDisgrace(s)
		default:
			staged.CardIDs = append(staged.CardIDs, p.ID)
		}

	case catalog.SelectDirection:
		if p.Direction != catalog.DirectionLeft && p.Direction != catalog.DirectionRight {
			return s
		}
		staged.Direction = p.Direction

	default:
		return s
	}

	f.Staged = staged
	s.Interaction = withFlow(s.Interaction, f)
	return s
}

func toggle(current *int, id int) *int {
	if current != nil && *current == id {
		return nil
	}
	return intPtr(id)
}

func clearStaged(sel *catalog.Selections, kind catalog.SelectionKind) {
	switch kind {
	case catalog.SelectPlayer:
		sel.PlayerID = nil
	case catalog.SelectSecret:
		sel.SecretID = nil
	case catalog.SelectSet:
		sel.SetID = nil
	case catalog.SelectCards:
		sel.CardIDs = nil
	case catalog.SelectDirection:
		sel.Direction = ""
	}
}

func secretMatches(filter catalog.SecretFilter, sec Secret) bool {
	switch filter {
	case catalog.SecretHidden:
		return sec.Hidden
	case catalog.SecretRevealed:
		return !sec.Hidden
	}
	return true
}

// pickedBefore reports whether the run starting at stage asks for kind
// before step idx.
func pickedBefore(def catalog.Definition, stage, idx int, kind catalog.SelectionKind) bool {
	for j := stage; j < idx; j++ {
		if def.Steps[j].Selection == kind {
			return true
		}
	}
	return false
}
