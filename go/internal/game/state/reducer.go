package state

// afterEnd lists the actions still honoured once the game has ended.
var afterEnd = map[ActionType]bool{
	ActionSetSession:           true,
	ActionInitializeGame:       true,
	ActionClearGame:            true,
	ActionReturnToLobby:        true,
	ActionConnectionLost:       true,
	ActionConnectionRestored:   true,
	ActionClearDisgraceWarning: true,
	ActionRequestStarted:       true,
	ActionRequestFinished:      true,
	ActionSetError:             true,
	ActionClearError:           true,
}

// Reduce applies a to s and returns the next state. It never mutates s.
// Unknown action types, payloads of the wrong type and actions that do not
// apply to the current state return s unchanged.
func Reduce(s GameState, a Action) GameState {
	if a.Type.IsIgnored() || (s.GameEnded && !afterEnd[a.Type]) {
		return s
	}

	switch a.Type {
	case ActionSetSession:
		if p, ok := a.Payload.(SetSession); ok {
			return setSession(s, p)
		}
	case ActionInitializeGame:
		if p, ok := a.Payload.(InitializeGame); ok {
			return initializeGame(p)
		}
	case ActionSyncSnapshot:
		if p, ok := a.Payload.(Snapshot); ok {
			return syncSnapshot(s, p)
		}
	case ActionClearGame:
		return Initial()
	case ActionReturnToLobby:
		next := Initial()
		if p, ok := a.Payload.(ReturnToLobby); ok {
			next.Error = p.Error
		}
		return next
	case ActionConnectionLost:
		attempt := 0
		if p, ok := a.Payload.(ConnectionLost); ok {
			attempt = p.Attempt
		}
		s.Connection = Connection{Status: ConnectionStatusLost, Lost: true, Attempts: attempt}
		return s
	case ActionConnectionRestored:
		s.Connection = Connection{Status: ConnectionConnected}
		return s

	case ActionPlayerJoined:
		if p, ok := a.Payload.(PlayerJoined); ok {
			return playerJoined(s, p)
		}
	case ActionPlayerLeft:
		if p, ok := a.Payload.(PlayerLeft); ok {
			return playerLeft(s, p)
		}
	case ActionGameStarted:
		if p, ok := a.Payload.(GameStarted); ok {
			s.GamePlayers = p.Players
			s.CurrentTurn = p.CurrentTurn
			return s
		}
	case ActionTurnAdvanced:
		if p, ok := a.Payload.(TurnAdvanced); ok {
			return turnAdvanced(s, p)
		}
	case ActionSetHand:
		if p, ok := a.Payload.(SetHand); ok {
			return setHand(s, p)
		}
	case ActionSetDecks:
		if p, ok := a.Payload.(DecksPatch); ok {
			return setDecks(s, p)
		}
	case ActionSetSecrets:
		if p, ok := a.Payload.(SetSecrets); ok {
			return setSecrets(s, p)
		}
	case ActionSecretRevealed:
		if p, ok := a.Payload.(SecretRevealed); ok {
			return secretRevealed(s, p)
		}
	case ActionSecretHidden:
		if p, ok := a.Payload.(SecretHidden); ok {
			return secretHidden(s, p)
		}
	case ActionSetSets:
		if p, ok := a.Payload.(SetSets); ok {
			s.Sets = p.Sets
			return s
		}
	case ActionSetSocialDisgrace:
		if p, ok := a.Payload.(SetSocialDisgrace); ok {
			return setSocialDisgrace(s, p)
		}
	case ActionDrawRequired:
		if p, ok := a.Payload.(DrawRequired); ok {
			return drawRequired(s, p)
		}
	case ActionCardDrawn:
		if p, ok := a.Payload.(CardDrawn); ok {
			return cardDrawn(s, p)
		}
	case ActionDiscardConfirmed:
		if p, ok := a.Payload.(DiscardConfirmed); ok {
			return discardConfirmed(s, p)
		}
	case ActionEventStarted:
		if p, ok := a.Payload.(EventStarted); ok {
			return eventStarted(s, p)
		}
	case ActionEventResolved:
		if p, ok := a.Payload.(EventResolved); ok {
			if _, running := s.EventActionInProgress(); running {
				return resolveFlow(s, p.Kind)
			}
		}
	case ActionDetectiveStarted:
		if p, ok := a.Payload.(DetectiveStarted); ok {
			return detectiveStarted(s, p)
		}
	case ActionDetectiveTargetSelected:
		if p, ok := a.Payload.(DetectiveTargetSelected); ok {
			return detectiveTargetSelected(s, p)
		}
	case ActionDetectiveResolved:
		if p, ok := a.Payload.(DetectiveResolved); ok {
			if _, running := s.DetectiveActionInProgress(); running {
				return resolveFlow(s, p.SetType)
			}
		}
	case ActionRequestReceived:
		if p, ok := a.Payload.(RequestReceived); ok {
			return requestReceived(s, p)
		}
	case ActionNSFOpened:
		if p, ok := a.Payload.(NSFOpened); ok {
			return nsfOpened(s, p)
		}
	case ActionNSFCounterPlayed:
		if p, ok := a.Payload.(NSFCounterPlayed); ok {
			return nsfCounterPlayed(s, p)
		}
	case ActionNSFClosed:
		if p, ok := a.Payload.(NSFClosed); ok {
			return nsfClosed(s, p)
		}
	case ActionGameEnded:
		if p, ok := a.Payload.(GameEnded); ok {
			return gameEnded(s, p)
		}

	case ActionSetDrawAction:
		if p, ok := a.Payload.(DrawActionPatch); ok {
			return setDrawAction(s, p)
		}
	case ActionClearDrawAction:
		s.DrawAction = DrawAction{}
		return s
	case ActionSelectCard:
		if p, ok := a.Payload.(SelectCard); ok {
			return selectCard(s, p)
		}
	case ActionClearSelection:
		s.Selection = Selection{}
		return s
	case ActionClearDisgraceWarning:
		if p, ok := a.Payload.(ClearDisgraceWarning); ok && p.Seq == s.DisgraceWarning.Seq {
			s.DisgraceWarning = Warning{Seq: s.DisgraceWarning.Seq}
			return s
		}
	case ActionInteractionSelect:
		if p, ok := a.Payload.(InteractionSelect); ok {
			return interactionSelect(s, p)
		}
	case ActionInteractionSubmitted:
		if p, ok := a.Payload.(InteractionSubmitted); ok {
			return movePhase(s, p.Kind, PhaseSelecting, PhaseSubmitting, true)
		}
	case ActionInteractionAccepted:
		if p, ok := a.Payload.(InteractionAccepted); ok {
			return movePhase(s, p.Kind, PhaseSubmitting, PhaseAwaiting, true)
		}
	case ActionInteractionFailed:
		if p, ok := a.Payload.(InteractionFailed); ok {
			return movePhase(s, p.Kind, PhaseSubmitting, PhaseSelecting, p.KeepSelection)
		}
	case ActionRequestStarted:
		if p, ok := a.Payload.(RequestStarted); ok {
			return requestStarted(s, p)
		}
	case ActionRequestFinished:
		if p, ok := a.Payload.(RequestFinished); ok {
			return requestFinished(s, p)
		}
	case ActionSetError:
		if p, ok := a.Payload.(SetError); ok {
			e := p.Error
			s.Error = &e
			return s
		}
	case ActionClearError:
		s.Error = nil
		return s
	}

	return s
}

func setSession(s GameState, p SetSession) GameState {
	if p.RoomID != nil && s.RoomID == 0 {
		s.RoomID = *p.RoomID
	}
	if p.GameID != nil && s.GameID == 0 {
		s.GameID = *p.GameID
	}
	if p.LocalPlayerID != nil {
		s.LocalPlayerID = *p.LocalPlayerID
	}
	return s
}

func initializeGame(p InitializeGame) GameState {
	s := Initial()
	s.RoomID = p.Room.ID
	s.Room = p.Room
	s.Players = p.Players
	s.LocalPlayerID = p.LocalPlayerID
	return s
}

// syncSnapshot replaces every gameplay field with the server's view. Session
// ids and the lobby sub-tree are kept; local optimistic state is dropped.
func syncSnapshot(s GameState, p Snapshot) GameState {
	if p.GameID != 0 && s.GameID != 0 && p.GameID != s.GameID {
		return s
	}
	if s.GameID == 0 {
		s.GameID = p.GameID
	}

	s.Epoch++
	s.CurrentTurn = p.CurrentTurn
	s.GamePlayers = p.GamePlayers
	s.Hand = p.Hand
	s.Secrets = p.Secrets
	s.SecretsFromAllPlayers = maskForeignSecrets(p.SecretsFromAllPlayers, s.LocalPlayerID)
	s.Sets = p.Sets
	s.PlayersInSocialDisgrace = dedupe(p.PlayersInSocialDisgrace)
	s.Decks = p.Decks
	s.DrawAction = p.DrawAction
	s.NSF = p.NSF
	s.GameEnded = p.GameEnded
	s.Winners = p.Winners
	s.FinishReason = p.FinishReason

	s.Interaction = nil
	switch {
	case p.Event != nil:
		s = eventStarted(s, *p.Event)
	case p.Detective != nil:
		s = detectiveStarted(s, *p.Detective)
	}

	s.Selection = Selection{}
	s.InFlight = nil
	s.Loading = false
	s.Connection = Connection{Status: ConnectionConnected}
	return s
}

func gameEnded(s GameState, p GameEnded) GameState {
	s.GameEnded = true
	s.Winners = p.Winners
	s.FinishReason = p.FinishReason
	s.Interaction = nil
	s.NSF.Active = false
	s.Selection = Selection{}
	s.DrawAction = DrawAction{}
	return s
}

func requestStarted(s GameState, p RequestStarted) GameState {
	if containsString(s.InFlight, p.Flow) {
		return s
	}
	s.InFlight = append(append([]string(nil), s.InFlight...), p.Flow)
	s.Loading = true
	s.Error = nil
	return s
}

func requestFinished(s GameState, p RequestFinished) GameState {
	inFlight := make([]string, 0, len(s.InFlight))
	for _, f := range s.InFlight {
		if f != p.Flow {
			inFlight = append(inFlight, f)
		}
	}
	if len(inFlight) == 0 {
		inFlight = nil
	}
	s.InFlight = inFlight
	s.Loading = len(inFlight) > 0
	if p.Error != nil {
		e := *p.Error
		s.Error = &e
	}
	return s
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
