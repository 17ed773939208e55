package events

import (
	"strings"

	"github.com/mcdev12/sleuth/go/internal/game/state"
)

func (c CardDTO) toState() state.Card {
	return state.Card{ID: c.ID, Name: c.Name, Type: c.Type}
}

func cards(in []CardDTO) []state.Card {
	if in == nil {
		return nil
	}
	out := make([]state.Card, len(in))
	for i, c := range in {
		out[i] = c.toState()
	}
	return out
}

func secrets(in []SecretDTO) []state.Secret {
	if in == nil {
		return nil
	}
	out := make([]state.Secret, len(in))
	for i, s := range in {
		out[i] = state.Secret{ID: s.ID, PlayerID: s.PlayerID, Name: s.Name, Hidden: s.Hidden}
	}
	return out
}

func sets(in []SetDTO) []state.DetectiveSet {
	if in == nil {
		return nil
	}
	out := make([]state.DetectiveSet, len(in))
	for i, s := range in {
		out[i] = state.DetectiveSet{
			ID:       s.ID,
			OwnerID:  s.OwnerID,
			SetType:  kind(s.SetType),
			Position: s.Position,
			Cards:    cards(s.Cards),
		}
	}
	return out
}

func playerSummaries(in []PlayerSummaryDTO) []state.PlayerSummary {
	if in == nil {
		return nil
	}
	out := make([]state.PlayerSummary, len(in))
	for i, p := range in {
		out[i] = state.PlayerSummary{
			PlayerID:  p.PlayerID,
			Name:      p.Name,
			AvatarSrc: p.AvatarSrc,
			HandSize:  p.HandSize,
			IsHost:    p.IsHost,
		}
	}
	return out
}

func (r RoomDTO) toState() state.Room {
	return state.Room{
		ID:         r.ID,
		Name:       r.Name,
		PlayersMin: r.PlayersMin,
		PlayersMax: r.PlayersMax,
		Status:     r.Status,
		HostID:     r.HostID,
	}
}

func (p RoomPlayerDTO) toState() state.RoomPlayer {
	return state.RoomPlayer{
		ID:        p.ID,
		Name:      p.Name,
		Avatar:    p.Avatar,
		Birthdate: p.Birthdate,
		IsHost:    p.IsHost,
	}
}

func (p EventActionStartedPayload) toState() state.EventStarted {
	return state.EventStarted{
		Kind:           kind(p.EventType),
		CardID:         p.CardID,
		PlayerID:       p.PlayerID,
		TargetPlayerID: p.TargetPlayerID,
		AvailableCards: cards(p.AvailableCards),
	}
}

func (p DetectiveActionStartedPayload) toState() state.DetectiveStarted {
	return state.DetectiveStarted{
		SetType:           kind(p.SetType),
		SetID:             p.SetID,
		InitiatorPlayerID: p.InitiatorPlayerID,
		TargetPlayerID:    p.TargetPlayerID,
	}
}

// ToSnapshot converts the state endpoint response.
func (p SnapshotPayload) ToSnapshot() state.Snapshot {
	snap := state.Snapshot{
		GameID:                  p.GameID,
		CurrentTurn:             p.CurrentTurn,
		GamePlayers:             playerSummaries(p.Players),
		Hand:                    cards(p.Hand),
		Secrets:                 secrets(p.Secrets),
		SecretsFromAllPlayers:   secrets(p.SecretsFromAllPlayers),
		Sets:                    sets(p.Sets),
		PlayersInSocialDisgrace: p.PlayersInSocialDisgrace,
		Decks: state.Decks{
			Deck:    state.Deck{Count: p.Decks.DeckCount, Draft: cards(p.Decks.Draft)},
			Discard: state.DiscardPile{Count: p.Decks.DiscardCount},
		},
		GameEnded:    p.GameEnded,
		Winners:      p.Winners,
		FinishReason: p.FinishReason,
	}
	if p.Decks.DiscardTop != nil {
		top := p.Decks.DiscardTop.toState()
		snap.Decks.Discard.Top = &top
	}
	if d := p.DrawAction; d != nil {
		snap.DrawAction = state.DrawAction{
			CardsToDrawRemaining: d.CardsToDrawRemaining,
			OtherPlayerDrawing:   d.OtherPlayerDrawing,
			HasDiscarded:         d.HasDiscarded,
			HasDrawn:             d.HasDrawn,
			SkipDiscard:          d.SkipDiscard,
		}
	}
	if n := p.NSF; n != nil {
		snap.NSF = state.NSFCounter{
			Active:     n.Active,
			ActionID:   n.ActionID,
			ActionKind: kind(n.ActionType),
			PlayerID:   n.PlayerID,
			CardID:     n.CardID,
			OpenedAt:   n.OpenedAt,
		}
		for _, c := range n.Counters {
			snap.NSF.Counters = append(snap.NSF.Counters, state.CounterPlay{PlayerID: c.PlayerID, CardID: c.CardID, PlayedAt: c.PlayedAt})
		}
	}
	if p.EventAction != nil {
		ev := p.EventAction.toState()
		snap.Event = &ev
	}
	if p.DetectiveAction != nil {
		d := p.DetectiveAction.toState()
		snap.Detective = &d
	}
	return snap
}

// InitializeGame converts a join response. When the server does not return
// the player id, the local player is found by name. A name shared by more
// than one player leaves LocalPlayerID at 0.
func (r JoinResponse) InitializeGame(name string) state.InitializeGame {
	init := state.InitializeGame{Room: r.Room.toState()}
	init.Players = make([]state.RoomPlayer, len(r.Players))
	for i, p := range r.Players {
		init.Players[i] = p.toState()
	}

	if r.PlayerID != nil {
		init.LocalPlayerID = *r.PlayerID
		return init
	}
	matches := 0
	for _, p := range r.Players {
		if strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name)) {
			init.LocalPlayerID = p.ID
			matches++
		}
	}
	if matches > 1 {
		init.LocalPlayerID = 0
	}
	return init
}
