package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

const (
	local = 1
	bob   = 2
	carol = 3
)

// seated returns a started game with three players and local's turn.
func seated() GameState {
	s := Reduce(Initial(), Action{Type: ActionInitializeGame, Payload: InitializeGame{
		Room:          Room{ID: 10, Name: "Mesa 1", PlayersMin: 2, PlayersMax: 6},
		Players:       []RoomPlayer{{ID: local, Name: "Ana"}, {ID: bob, Name: "Bob"}, {ID: carol, Name: "Carol"}},
		LocalPlayerID: local,
	}})
	s = Reduce(s, Action{Type: ActionSyncSnapshot, Payload: Snapshot{
		GameID:      20,
		CurrentTurn: local,
		GamePlayers: []PlayerSummary{
			{PlayerID: local, Name: "Ana", HandSize: 3},
			{PlayerID: bob, Name: "Bob", HandSize: 6},
			{PlayerID: carol, Name: "Carol", HandSize: 6},
		},
		Hand: []Card{{ID: 1, Name: "Poirot"}, {ID: 2, Name: "Not So Fast"}, {ID: 3, Name: "Marple"}},
	}})
	return s
}

func TestInitializeGameCopiesRoomAndPlayers(t *testing.T) {
	players := []RoomPlayer{{ID: 1, Name: "Ana", Avatar: "a.png", Birthdate: "1990-01-01", IsHost: true}, {ID: 2, Name: "Bob"}}
	s := Reduce(Initial(), Action{Type: ActionInitializeGame, Payload: InitializeGame{
		Room:    Room{ID: 1, PlayersMin: 2, PlayersMax: 6},
		Players: players,
	}})

	assert.Equal(t, 2, s.Room.PlayersMin)
	assert.Equal(t, 6, s.Room.PlayersMax)
	assert.Equal(t, players, s.Players)
	assert.Equal(t, 1, s.RoomID)
}

func TestInitializeGameDiscardsPriorSession(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionSelectCard, Payload: SelectCard{CardID: 1}})

	next := Reduce(s, Action{Type: ActionInitializeGame, Payload: InitializeGame{Room: Room{ID: 99}}})
	assert.Equal(t, 99, next.RoomID)
	assert.Zero(t, next.GameID)
	assert.Empty(t, next.Hand)
	assert.Empty(t, next.Selection.CardIDs)
	assert.Nil(t, next.Players)
}

func TestSetSessionMergesAndKeepsIDsImmutable(t *testing.T) {
	s := Reduce(Initial(), Action{Type: ActionSetSession, Payload: SetSession{GameID: intPtr(5)}})
	s = Reduce(s, Action{Type: ActionSetSession, Payload: SetSession{LocalPlayerID: intPtr(7)}})
	assert.Equal(t, 5, s.GameID)
	assert.Equal(t, 7, s.LocalPlayerID)

	s = Reduce(s, Action{Type: ActionSetSession, Payload: SetSession{GameID: intPtr(6)}})
	assert.Equal(t, 5, s.GameID, "game id is set once")
}

func TestSetDecksPreservesAbsentFields(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionSetDecks, Payload: DecksPatch{
		DeckCount:    intPtr(40),
		Draft:        &[]Card{{ID: 50}, {ID: 51}},
		DiscardTop:   &Card{ID: 60},
		DiscardCount: intPtr(3),
	}})

	s = Reduce(s, Action{Type: ActionSetDecks, Payload: DecksPatch{DeckCount: intPtr(39)}})
	assert.Equal(t, 39, s.Decks.Deck.Count)
	assert.Len(t, s.Decks.Deck.Draft, 2)
	require.NotNil(t, s.Decks.Discard.Top)
	assert.Equal(t, 60, s.Decks.Discard.Top.ID)
	assert.Equal(t, 3, s.Decks.Discard.Count)
}

func TestSetDrawActionPreservesAbsentFields(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionSetDrawAction, Payload: DrawActionPatch{CardsToDrawRemaining: intPtr(2), SkipDiscard: boolPtr(true)}})
	s = Reduce(s, Action{Type: ActionSetDrawAction, Payload: DrawActionPatch{HasDrawn: boolPtr(true)}})

	assert.Equal(t, 2, s.DrawAction.CardsToDrawRemaining)
	assert.True(t, s.DrawAction.SkipDiscard)
	assert.True(t, s.DrawAction.HasDrawn)
	assert.False(t, s.DrawAction.HasDiscarded)
}

func TestClearActionsRestoreInitialShape(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionSelectCard, Payload: SelectCard{CardID: 1}})
	s = Reduce(s, Action{Type: ActionDrawRequired, Payload: DrawRequired{PlayerID: local, Count: 2}})

	assert.Equal(t, Selection{}, Reduce(s, Action{Type: ActionClearSelection}).Selection)
	assert.Equal(t, DrawAction{}, Reduce(s, Action{Type: ActionClearDrawAction}).DrawAction)
	assert.Equal(t, Initial(), Reduce(s, Action{Type: ActionClearGame}))
}

func TestUnknownActionsAreNoOps(t *testing.T) {
	s := seated()

	cases := []Action{
		{Type: "NOT_A_THING"},
		{Type: "NOT_A_THING", Payload: SelectCard{CardID: 1}},
		{Type: ActionSelectCard, Payload: "wrong payload type"},
		{Type: ActionSelectCard, Payload: &SelectCard{CardID: 1}},
		{Type: ActionTurnAdvanced},
		{Type: Ignored(string(ActionClearGame))},
		{Type: Ignored(string(ActionConnectionLost))},
	}
	for _, a := range cases {
		assert.Equal(t, s, Reduce(s, a), "action %s", a.Type)
		assert.Equal(t, Reduce(s, a), Reduce(Reduce(s, a), a), "action %s must be idempotent", a.Type)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionSelectCard, Payload: SelectCard{CardID: 1}})
	before := append([]int(nil), s.Selection.CardIDs...)

	_ = Reduce(s, Action{Type: ActionSelectCard, Payload: SelectCard{CardID: 3}})
	_ = Reduce(s, Action{Type: ActionSelectCard, Payload: SelectCard{CardID: 1}})

	assert.Equal(t, before, s.Selection.CardIDs)
}

func TestTurnOnlyChangesThroughTurnAdvanced(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionSelectCard, Payload: SelectCard{CardID: 1}})
	s = Reduce(s, Action{Type: ActionDrawRequired, Payload: DrawRequired{PlayerID: local, Count: 1}})
	s = Reduce(s, Action{Type: ActionSetHand, Payload: SetHand{Cards: s.Hand}})
	assert.Equal(t, local, s.CurrentTurn)

	s = Reduce(s, Action{Type: ActionTurnAdvanced, Payload: TurnAdvanced{PlayerID: bob}})
	assert.Equal(t, bob, s.CurrentTurn)
	assert.False(t, s.IsMyTurn())
	assert.Equal(t, DrawAction{}, s.DrawAction)
	assert.Equal(t, Selection{}, s.Selection)
}

func TestPlayerMembership(t *testing.T) {
	s := seated()
	dave := RoomPlayer{ID: 4, Name: "Dave", Avatar: "d.png"}

	s = Reduce(s, Action{Type: ActionPlayerJoined, Payload: PlayerJoined{Player: dave}})
	s = Reduce(s, Action{Type: ActionPlayerJoined, Payload: PlayerJoined{Player: dave}})
	require.Len(t, s.GamePlayers, 4)
	p, ok := s.Player(4)
	require.True(t, ok)
	assert.Equal(t, "d.png", p.AvatarSrc)

	s = Reduce(s, Action{Type: ActionSetSocialDisgrace, Payload: SetSocialDisgrace{PlayerIDs: []int{4}}})
	s = Reduce(s, Action{Type: ActionPlayerLeft, Payload: PlayerLeft{PlayerID: 4}})
	assert.Len(t, s.GamePlayers, 3)
	assert.Len(t, s.Players, 3)
	assert.Empty(t, s.PlayersInSocialDisgrace)
}

func TestSecretsHideForeignNames(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionSetSecrets, Payload: SetSecrets{PlayerID: bob, Secrets: []Secret{
		{ID: 100, Name: "Murderer", Hidden: true},
		{ID: 101, Name: "Accomplice", Hidden: false},
	}}})
	s = Reduce(s, Action{Type: ActionSetSecrets, Payload: SetSecrets{PlayerID: local, Secrets: []Secret{
		{ID: 200, Name: "You are the murderer", Hidden: true},
	}}})

	sec, ok := findSecret(s, 100)
	require.True(t, ok)
	assert.Empty(t, sec.Name)
	assert.Equal(t, bob, sec.PlayerID)

	require.Len(t, s.Secrets, 1)
	assert.Equal(t, "You are the murderer", s.Secrets[0].Name)

	s = Reduce(s, Action{Type: ActionSecretRevealed, Payload: SecretRevealed{PlayerID: bob, SecretID: 100, Name: "Murderer"}})
	sec, _ = findSecret(s, 100)
	assert.False(t, sec.Hidden)
	assert.Equal(t, "Murderer", sec.Name)

	s = Reduce(s, Action{Type: ActionSecretHidden, Payload: SecretHidden{PlayerID: bob, SecretID: 100}})
	sec, _ = findSecret(s, 100)
	assert.True(t, sec.Hidden)
	assert.Empty(t, sec.Name)

	s = Reduce(s, Action{Type: ActionSecretRevealed, Payload: SecretRevealed{PlayerID: local, SecretID: 200}})
	assert.False(t, s.Secrets[0].Hidden)
}

func TestSyncSnapshotBumpsEpochAndDropsOptimisticState(t *testing.T) {
	s := seated()
	epoch := s.Epoch
	s = Reduce(s, Action{Type: ActionSelectCard, Payload: SelectCard{CardID: 1}})
	s = Reduce(s, Action{Type: ActionRequestStarted, Payload: RequestStarted{Flow: "discard:0"}})
	s = Reduce(s, Action{Type: ActionConnectionLost, Payload: ConnectionLost{Attempt: 2}})

	s = Reduce(s, Action{Type: ActionSyncSnapshot, Payload: Snapshot{
		GameID:      20,
		CurrentTurn: bob,
		Detective:   &DetectiveStarted{SetType: catalog.Poirot, SetID: 9, InitiatorPlayerID: bob},
	}})

	assert.Equal(t, epoch+1, s.Epoch)
	assert.Equal(t, bob, s.CurrentTurn)
	assert.Empty(t, s.Selection.CardIDs)
	assert.False(t, s.Loading)
	assert.False(t, s.Connection.Lost)
	assert.Equal(t, 10, s.RoomID, "lobby session is kept")
	f, ok := s.DetectiveActionInProgress()
	require.True(t, ok)
	assert.Equal(t, catalog.Poirot, f.Kind)
}

func TestSyncSnapshotForAnotherGameIsIgnored(t *testing.T) {
	s := seated()
	assert.Equal(t, s, Reduce(s, Action{Type: ActionSyncSnapshot, Payload: Snapshot{GameID: 21, CurrentTurn: bob}}))
}

func TestGameEndedIsTerminal(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionEventStarted, Payload: EventStarted{Kind: catalog.AnotherVictim, PlayerID: local}})
	s = Reduce(s, Action{Type: ActionGameEnded, Payload: GameEnded{Winners: []int{bob}, FinishReason: "murderer escaped"}})

	assert.True(t, s.GameEnded)
	assert.Nil(t, s.Interaction)
	assert.Equal(t, []int{bob}, s.Winners)

	frozen := s
	for _, a := range []Action{
		{Type: ActionTurnAdvanced, Payload: TurnAdvanced{PlayerID: carol}},
		{Type: ActionSelectCard, Payload: SelectCard{CardID: 1}},
		{Type: ActionSetHand, Payload: SetHand{}},
		{Type: ActionSyncSnapshot, Payload: Snapshot{GameID: 20}},
	} {
		assert.Equal(t, frozen, Reduce(s, a), "action %s", a.Type)
	}

	s = Reduce(s, Action{Type: ActionSetError, Payload: SetError{Error: FlowError{Code: gameerrors.CodeGameEnded}}})
	require.NotNil(t, s.Error)
	assert.Equal(t, Initial(), Reduce(s, Action{Type: ActionClearGame}))
}

func TestReturnToLobbyCarriesError(t *testing.T) {
	s := seated()
	e := &FlowError{Code: gameerrors.CodeGameNotFound, Status: 404}
	next := Reduce(s, Action{Type: ActionReturnToLobby, Payload: ReturnToLobby{Error: e}})

	assert.Zero(t, next.RoomID)
	assert.Zero(t, next.GameID)
	require.NotNil(t, next.Error)
	assert.Equal(t, gameerrors.CodeGameNotFound, next.Error.Code)
}

func TestRequestTracking(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionRequestStarted, Payload: RequestStarted{Flow: "discard:0"}})
	s = Reduce(s, Action{Type: ActionRequestStarted, Payload: RequestStarted{Flow: "skip:0"}})
	assert.True(t, s.Loading)

	s = Reduce(s, Action{Type: ActionRequestFinished, Payload: RequestFinished{Flow: "discard:0"}})
	assert.True(t, s.Loading)

	s = Reduce(s, Action{Type: ActionRequestFinished, Payload: RequestFinished{
		Flow:  "skip:0",
		Error: &FlowError{Flow: "skip:0", Code: gameerrors.CodeNotYourTurn},
	}})
	assert.False(t, s.Loading)
	assert.Nil(t, s.InFlight)
	require.NotNil(t, s.Error)
	assert.Equal(t, gameerrors.CodeNotYourTurn, s.Error.Code)

	assert.Nil(t, Reduce(s, Action{Type: ActionClearError}).Error)
}

func TestConnectionFlags(t *testing.T) {
	s := seated()
	s = Reduce(s, Action{Type: ActionConnectionLost, Payload: ConnectionLost{Attempt: 3}})
	assert.Equal(t, Connection{Status: ConnectionStatusLost, Lost: true, Attempts: 3}, s.Connection)

	s = Reduce(s, Action{Type: ActionConnectionRestored})
	assert.Equal(t, Connection{Status: ConnectionConnected}, s.Connection)
}

func boolPtr(v bool) *bool { return &v }
