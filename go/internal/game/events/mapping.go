package events

import (
	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/game/state"
)

// ToAction maps one push to exactly one action. Event types this client does
// not know map to state.Ignored, which the reducer never handles, even when
// the wire name matches a local action.
func ToAction(ev *GameEvent) (state.Action, error) {
	switch ev.Type {
	case EventTypePlayerJoined:
		p, err := DecodePayload[PlayerJoinedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionPlayerJoined, state.PlayerJoined{Player: p.Player.toState()}), nil

	case EventTypePlayerLeft:
		p, err := DecodePayload[PlayerLeftPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionPlayerLeft, state.PlayerLeft{PlayerID: p.PlayerID}), nil

	case EventTypeGameStarted:
		p, err := DecodePayload[GameStartedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionGameStarted, state.GameStarted{
			Players:     playerSummaries(p.Players),
			CurrentTurn: p.CurrentTurn,
		}), nil

	case EventTypeTurnAdvanced:
		p, err := DecodePayload[TurnAdvancedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionTurnAdvanced, state.TurnAdvanced{PlayerID: p.PlayerID}), nil

	case EventTypeHandUpdated:
		p, err := DecodePayload[HandUpdatedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionSetHand, state.SetHand{Cards: cards(p.Cards)}), nil

	case EventTypeDecksUpdated:
		p, err := DecodePayload[DecksUpdatedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		patch := state.DecksPatch{DeckCount: p.DeckCount, DiscardCount: p.DiscardCount}
		if p.Draft != nil {
			draft := cards(*p.Draft)
			patch.Draft = &draft
		}
		if p.DiscardTop != nil {
			top := p.DiscardTop.toState()
			patch.DiscardTop = &top
		}
		return action(state.ActionSetDecks, patch), nil

	case EventTypeSecretsUpdated:
		p, err := DecodePayload[SecretsUpdatedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionSetSecrets, state.SetSecrets{PlayerID: p.PlayerID, Secrets: secrets(p.Secrets)}), nil

	case EventTypeSecretRevealed:
		p, err := DecodePayload[SecretRevealedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionSecretRevealed, state.SecretRevealed{PlayerID: p.PlayerID, SecretID: p.SecretID, Name: p.Name}), nil

	case EventTypeSecretHidden:
		p, err := DecodePayload[SecretHiddenPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionSecretHidden, state.SecretHidden{PlayerID: p.PlayerID, SecretID: p.SecretID}), nil

	case EventTypeSetsUpdated:
		p, err := DecodePayload[SetsUpdatedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionSetSets, state.SetSets{Sets: sets(p.Sets)}), nil

	case EventTypeSocialDisgraceUpdated:
		p, err := DecodePayload[SocialDisgraceUpdatedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionSetSocialDisgrace, state.SetSocialDisgrace{PlayerIDs: p.PlayerIDs}), nil

	case EventTypeDrawRequired:
		p, err := DecodePayload[DrawRequiredPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionDrawRequired, state.DrawRequired{PlayerID: p.PlayerID, Count: p.Count, SkipDiscard: p.SkipDiscard}), nil

	case EventTypeCardDrawn:
		p, err := DecodePayload[CardDrawnPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionCardDrawn, state.CardDrawn{PlayerID: p.PlayerID, Remaining: p.Remaining}), nil

	case EventTypeDiscardConfirmed:
		p, err := DecodePayload[DiscardConfirmedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionDiscardConfirmed, state.DiscardConfirmed{PlayerID: p.PlayerID, CardIDs: p.CardIDs}), nil

	case EventTypeEventActionStarted:
		p, err := DecodePayload[EventActionStartedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionEventStarted, p.toState()), nil

	case EventTypeEventActionResolved:
		p, err := DecodePayload[EventActionResolvedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionEventResolved, state.EventResolved{Kind: kind(p.EventType)}), nil

	case EventTypeDetectiveActionStarted:
		p, err := DecodePayload[DetectiveActionStartedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionDetectiveStarted, p.toState()), nil

	case EventTypeDetectiveTargetSelected:
		p, err := DecodePayload[DetectiveTargetSelectedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionDetectiveTargetSelected, state.DetectiveTargetSelected{
			SetType:        kind(p.SetType),
			TargetPlayerID: p.TargetPlayerID,
		}), nil

	case EventTypeDetectiveActionResolved:
		p, err := DecodePayload[DetectiveActionResolvedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionDetectiveResolved, state.DetectiveResolved{SetType: kind(p.SetType)}), nil

	case EventTypeInteractionRequest:
		p, err := DecodePayload[InteractionRequestPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionRequestReceived, state.RequestReceived{
			Kind:         kind(p.Action),
			RequestID:    p.RequestID,
			FromPlayerID: p.FromPlayerID,
			Stage:        p.Stage,
			CardID:       p.CardID,
			SetID:        p.SetID,
		}), nil

	case EventTypeNSFWindowOpened:
		p, err := DecodePayload[NSFWindowOpenedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionNSFOpened, state.NSFOpened{
			ActionID:   p.ActionID,
			ActionKind: kind(p.ActionType),
			PlayerID:   p.PlayerID,
			CardID:     p.CardID,
			OpenedAt:   p.OpenedAt,
		}), nil

	case EventTypeNSFCounterPlayed:
		p, err := DecodePayload[NSFCounterPlayedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionNSFCounterPlayed, state.NSFCounterPlayed{
			ActionID: p.ActionID,
			PlayerID: p.PlayerID,
			CardID:   p.CardID,
			PlayedAt: p.PlayedAt,
		}), nil

	case EventTypeNSFWindowClosed:
		p, err := DecodePayload[NSFWindowClosedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionNSFClosed, state.NSFClosed{ActionID: p.ActionID, Result: state.NSFResult(p.Result)}), nil

	case EventTypeGameEnded:
		p, err := DecodePayload[GameEndedPayload](ev)
		if err != nil {
			return state.Action{}, err
		}
		return action(state.ActionGameEnded, state.GameEnded{Winners: p.Winners, FinishReason: p.FinishReason}), nil
	}

	return state.Action{Type: state.Ignored(string(ev.Type))}, nil
}

func action(t state.ActionType, payload any) state.Action {
	return state.Action{Type: t, Payload: payload}
}

// kind resolves a wire action name. Unknown names pass through so the
// reducer can ignore them.
func kind(v string) catalog.ActionKind {
	if k, ok := catalog.Parse(v); ok {
		return k
	}
	return catalog.ActionKind(v)
}
