package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/game/state"
)

func roundTrip(t *testing.T, eventType EventType, payload any) state.Action {
	t.Helper()
	b, err := Encode(20, eventType, payload)
	require.NoError(t, err)
	ev, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 20, ev.GameID)
	a, err := ToAction(ev)
	require.NoError(t, err)
	return a
}

func TestToActionMapsEachEvent(t *testing.T) {
	opened := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	target := 3

	cases := []struct {
		name     string
		typ      EventType
		payload  any
		wantType state.ActionType
		want     any
	}{
		{
			"turn", EventTypeTurnAdvanced, TurnAdvancedPayload{PlayerID: 2},
			state.ActionTurnAdvanced, state.TurnAdvanced{PlayerID: 2},
		},
		{
			"hand", EventTypeHandUpdated, HandUpdatedPayload{Cards: []CardDTO{{ID: 1, Name: "Poirot", Type: "detective"}}},
			state.ActionSetHand, state.SetHand{Cards: []state.Card{{ID: 1, Name: "Poirot", Type: "detective"}}},
		},
		{
			"player joined", EventTypePlayerJoined, PlayerJoinedPayload{Player: RoomPlayerDTO{ID: 4, Name: "Dave", IsHost: true}},
			state.ActionPlayerJoined, state.PlayerJoined{Player: state.RoomPlayer{ID: 4, Name: "Dave", IsHost: true}},
		},
		{
			"draw required", EventTypeDrawRequired, DrawRequiredPayload{PlayerID: 1, Count: 2, SkipDiscard: true},
			state.ActionDrawRequired, state.DrawRequired{PlayerID: 1, Count: 2, SkipDiscard: true},
		},
		{
			"event started by slug", EventTypeEventActionStarted,
			EventActionStartedPayload{EventType: "another-victim", CardID: 5, PlayerID: 1},
			state.ActionEventStarted, state.EventStarted{Kind: catalog.AnotherVictim, CardID: 5, PlayerID: 1},
		},
		{
			"detective started", EventTypeDetectiveActionStarted,
			DetectiveActionStartedPayload{SetType: "eileen-brent", SetID: 9, InitiatorPlayerID: 2, TargetPlayerID: &target},
			state.ActionDetectiveStarted, state.DetectiveStarted{SetType: catalog.EileenBrent, SetID: 9, InitiatorPlayerID: 2, TargetPlayerID: &target},
		},
		{
			"interaction request", EventTypeInteractionRequest,
			InteractionRequestPayload{Action: "dead-card-folly", RequestID: "r1", FromPlayerID: 2, Stage: 1},
			state.ActionRequestReceived, state.RequestReceived{Kind: catalog.DeadCardFolly, RequestID: "r1", FromPlayerID: 2, Stage: 1},
		},
		{
			"nsf opened", EventTypeNSFWindowOpened,
			NSFWindowOpenedPayload{ActionID: "a1", ActionType: "set", PlayerID: 2, CardID: 7, OpenedAt: opened},
			state.ActionNSFOpened, state.NSFOpened{ActionID: "a1", ActionKind: catalog.PlaySet, PlayerID: 2, CardID: 7, OpenedAt: opened},
		},
		{
			"nsf closed", EventTypeNSFWindowClosed, NSFWindowClosedPayload{ActionID: "a1", Result: "expired"},
			state.ActionNSFClosed, state.NSFClosed{ActionID: "a1", Result: state.NSFExpired},
		},
		{
			"game ended", EventTypeGameEnded, GameEndedPayload{Winners: []int{2}, FinishReason: "secret revealed"},
			state.ActionGameEnded, state.GameEnded{Winners: []int{2}, FinishReason: "secret revealed"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := roundTrip(t, tc.typ, tc.payload)
			assert.Equal(t, tc.wantType, a.Type)
			assert.Equal(t, tc.want, a.Payload)
		})
	}
}

func TestDecksPatchKeepsAbsentFields(t *testing.T) {
	a := roundTrip(t, EventTypeDecksUpdated, map[string]any{"deck_count": 12})
	patch, ok := a.Payload.(state.DecksPatch)
	require.True(t, ok)
	require.NotNil(t, patch.DeckCount)
	assert.Equal(t, 12, *patch.DeckCount)
	assert.Nil(t, patch.Draft)
	assert.Nil(t, patch.DiscardTop)
	assert.Nil(t, patch.DiscardCount)
}

func TestUnknownEventMapsToIgnoredAction(t *testing.T) {
	a := roundTrip(t, "CardTraded", map[string]int{"x": 1})
	assert.True(t, a.Type.IsIgnored())
	assert.Nil(t, a.Payload)
}

func TestPushNamedLikeLocalActionIsIgnored(t *testing.T) {
	gs := state.Initial()
	gs.RoomID = 10
	gs.GameID = 20
	gs.LocalPlayerID = 1
	gs.Hand = []state.Card{{ID: 1}}

	for _, name := range []state.ActionType{
		state.ActionClearGame,
		state.ActionReturnToLobby,
		state.ActionConnectionLost,
		state.ActionConnectionRestored,
		state.ActionClearSelection,
		state.ActionClearDrawAction,
		state.ActionClearError,
	} {
		t.Run(string(name), func(t *testing.T) {
			a := roundTrip(t, EventType(name), nil)
			assert.True(t, a.Type.IsIgnored())
			assert.NotEqual(t, name, a.Type)
			assert.Equal(t, gs, state.Reduce(gs, a))
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"id":"x"}`))
	assert.Error(t, err)

	ev, err := Decode([]byte(`{"type":"TurnAdvanced","data":"nope"}`))
	require.NoError(t, err)
	_, err = ToAction(ev)
	assert.Error(t, err)
}

func TestSnapshotConversion(t *testing.T) {
	other := 2
	p := SnapshotPayload{
		GameID:      20,
		CurrentTurn: 1,
		Players:     []PlayerSummaryDTO{{PlayerID: 1, Name: "Ana", AvatarSrc: "a.png", HandSize: 6}},
		Hand:        []CardDTO{{ID: 1}},
		Secrets:     []SecretDTO{{ID: 200, PlayerID: 1, Name: "Innocent", Hidden: true}},
		Sets:        []SetDTO{{ID: 70, OwnerID: 2, SetType: "poirot"}},
		Decks:       DecksDTO{DeckCount: 30, DiscardTop: &CardDTO{ID: 9}, DiscardCount: 4},
		DrawAction:  &DrawActionDTO{OtherPlayerDrawing: &other},
		NSF:         &NSFDTO{Active: true, ActionID: "a1", ActionType: "playSet", Counters: []CounterDTO{{PlayerID: 2, CardID: 8}}},
		EventAction: &EventActionStartedPayload{EventType: "lookAshes", PlayerID: 1},
	}

	snap := p.ToSnapshot()
	assert.Equal(t, 20, snap.GameID)
	assert.Equal(t, "a.png", snap.GamePlayers[0].AvatarSrc)
	assert.Equal(t, catalog.Poirot, snap.Sets[0].SetType)
	require.NotNil(t, snap.Decks.Discard.Top)
	assert.Equal(t, 9, snap.Decks.Discard.Top.ID)
	assert.Equal(t, &other, snap.DrawAction.OtherPlayerDrawing)
	assert.Equal(t, catalog.PlaySet, snap.NSF.ActionKind)
	assert.Len(t, snap.NSF.Counters, 1)
	require.NotNil(t, snap.Event)
	assert.Equal(t, catalog.LookAshes, snap.Event.Kind)
	assert.Nil(t, snap.Detective)
}

func TestJoinResponseFindsLocalPlayer(t *testing.T) {
	resp := JoinResponse{
		Room:    RoomDTO{ID: 1, PlayersMin: 2, PlayersMax: 6},
		Players: []RoomPlayerDTO{{ID: 7, Name: "Ana"}, {ID: 8, Name: "Bob"}},
	}

	init := resp.InitializeGame(" bob ")
	assert.Equal(t, 8, init.LocalPlayerID)
	assert.Equal(t, 2, init.Room.PlayersMin)

	id := 7
	resp.PlayerID = &id
	assert.Equal(t, 7, resp.InitializeGame("Bob").LocalPlayerID)
}

func TestJoinResponseWithSharedNameLeavesPlayerUnset(t *testing.T) {
	resp := JoinResponse{
		Room:    RoomDTO{ID: 1},
		Players: []RoomPlayerDTO{{ID: 7, Name: "Ana"}, {ID: 8, Name: "ana"}, {ID: 9, Name: "Bob"}},
	}

	init := resp.InitializeGame("Ana")
	assert.Zero(t, init.LocalPlayerID)
	assert.Len(t, init.Players, 3)

	id := 8
	resp.PlayerID = &id
	assert.Equal(t, 8, resp.InitializeGame("Ana").LocalPlayerID)
}
