package dispatcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/mcdev12/sleuth/go/clients/game_api_client"
	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/game/state"
	"github.com/mcdev12/sleuth/go/internal/game/store"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

const (
	local = 1
	bob   = 2
)

type recorded struct {
	Path      string
	PlayerID  string
	RequestID string
	Body      string
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
	hook     func()
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		Path:      r.URL.Path,
		PlayerID:  r.URL.Query().Get("player_id"),
		RequestID: r.Header.Get(api.RequestIDHeader),
		Body:      string(body),
	})
	status, respBody, hook := f.status, f.body, f.hook
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, respBody)
}

func (f *fakeServer) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeServer) calls() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

type fakeConnection struct {
	resyncs     atomic.Int32
	disconnects atomic.Int32
}

func (c *fakeConnection) Resync()     { c.resyncs.Add(1) }
func (c *fakeConnection) Disconnect() { c.disconnects.Add(1) }

type harness struct {
	server   *fakeServer
	store    *store.Store
	conn     *fakeConnection
	metrics  *MemoryMetrics
	d        *Dispatcher
}

func seeded() state.GameState {
	s := state.Reduce(state.Initial(), state.Action{Type: state.ActionInitializeGame, Payload: state.InitializeGame{
		Room:          state.Room{ID: 10, PlayersMin: 2, PlayersMax: 6},
		Players:       []state.RoomPlayer{{ID: local, Name: "Ana"}, {ID: bob, Name: "Bob"}},
		LocalPlayerID: local,
	}})
	return state.Reduce(s, state.Action{Type: state.ActionSyncSnapshot, Payload: state.Snapshot{
		GameID:      20,
		CurrentTurn: local,
		GamePlayers: []state.PlayerSummary{{PlayerID: local, Name: "Ana"}, {PlayerID: bob, Name: "Bob"}},
		Hand:        []state.Card{{ID: 1}, {ID: 2}, {ID: 3}},
		Secrets:     []state.Secret{{ID: 200, PlayerID: local, Name: "Innocent", Hidden: true}},
		SecretsFromAllPlayers: []state.Secret{
			{ID: 100, PlayerID: bob, Hidden: true},
			{ID: 200, PlayerID: local, Name: "Innocent", Hidden: true},
		},
		Sets: []state.DetectiveSet{{ID: 70, OwnerID: bob, SetType: catalog.Poirot}},
	}})
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		server:   &fakeServer{},
		store:    store.New(store.WithState(seeded()), store.WithLogger(zerolog.Nop())),
		conn:     &fakeConnection{},
		metrics:  NewMemoryMetrics(),
	}
	srv := httptest.NewServer(h.server)
	t.Cleanup(srv.Close)
	t.Cleanup(h.store.Close)

	transport := NewMetricTransport(api.NewGameApiClient(srv.URL), h.metrics)
	h.d = New(DefaultConfig(), h.store, transport,
		WithConnection(h.conn),
		WithMetrics(h.metrics),
		WithLogger(zerolog.Nop()))
	return h
}

func (h *harness) dispatch(typ state.ActionType, payload any) {
	h.store.Dispatch(state.Action{Type: typ, Payload: payload})
}

func (h *harness) selectCards(ids ...int) {
	for _, id := range ids {
		h.dispatch(state.ActionSelectCard, state.SelectCard{CardID: id})
	}
}

func (h *harness) pick(kind catalog.ActionKind, sel catalog.SelectionKind, id int) {
	h.dispatch(state.ActionInteractionSelect, state.InteractionSelect{Kind: kind, Selection: sel, ID: id})
}

func codeOf(t *testing.T, err error) gameerrors.Code {
	t.Helper()
	var gerr *gameerrors.Error
	require.ErrorAs(t, err, &gerr)
	return gerr.Code
}

func TestDiscardWithNothingSelectedNeverReachesServer(t *testing.T) {
	h := newHarness(t)

	_, err := h.d.SubmitDiscard(context.Background())

	assert.Equal(t, gameerrors.CodeEmptySelection, codeOf(t, err))
	assert.Empty(t, h.server.calls())
	gs := h.store.State()
	require.NotNil(t, gs.Error)
	assert.Equal(t, gameerrors.CodeEmptySelection, gs.Error.Code)
	assert.NotEmpty(t, gs.Error.Message)
	assert.False(t, gs.Loading)
}

func TestDiscardSendsSelectedCards(t *testing.T) {
	h := newHarness(t)
	h.selectCards(1, 3)

	res, err := h.d.SubmitDiscard(context.Background())
	require.NoError(t, err)

	calls := h.server.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/game/10/discard", calls[0].Path)
	assert.Equal(t, "1", calls[0].PlayerID)
	assert.JSONEq(t, `{"card_ids":[1,3]}`, calls[0].Body)
	assert.Equal(t, res.RequestID, calls[0].RequestID)

	gs := h.store.State()
	assert.Empty(t, gs.Selection.CardIDs)
	assert.False(t, gs.Loading)
	assert.Empty(t, gs.InFlight)
	assert.Nil(t, gs.Error)
	assert.Equal(t, uint64(1), h.metrics.Snapshot().Requests)
}

func TestForbiddenTurnActionsReportNotYourTurn(t *testing.T) {
	for _, tc := range []struct {
		name   string
		submit func(d *Dispatcher) (Result, error)
		path   string
	}{
		{"discard", func(d *Dispatcher) (Result, error) { return d.SubmitDiscard(context.Background()) }, "/game/10/discard"},
		{"skip", func(d *Dispatcher) (Result, error) { return d.SubmitSkip(context.Background()) }, "/game/10/skip"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.server.respond(http.StatusForbidden, `{"detail":"Not your turn"}`)
			h.selectCards(1)

			_, err := tc.submit(h.d)
			assert.Equal(t, gameerrors.CodeNotYourTurn, codeOf(t, err))

			calls := h.server.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tc.path, calls[0].Path)

			gs := h.store.State()
			require.NotNil(t, gs.Error)
			assert.Equal(t, "It is not this player's turn.", gs.Error.Message)
			assert.Equal(t, "Not your turn", gs.Error.Detail)
			assert.Equal(t, http.StatusForbidden, gs.Error.Status)
			assert.False(t, gs.Loading)
			assert.Equal(t, []int{1}, gs.Selection.CardIDs)
		})
	}
}

func TestSkipSendsAutoRule(t *testing.T) {
	h := newHarness(t)
	_, err := h.d.SubmitSkip(context.Background())
	require.NoError(t, err)

	calls := h.server.calls()
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"rule":"auto"}`, calls[0].Body)
}

func TestLocalRejections(t *testing.T) {
	cases := []struct {
		name  string
		setup func(h *harness)
		code  gameerrors.Code
	}{
		{"game ended", func(h *harness) {
			h.dispatch(state.ActionGameEnded, state.GameEnded{Winners: []int{bob}})
		}, gameerrors.CodeGameEnded},
		{"connection lost", func(h *harness) {
			h.dispatch(state.ActionConnectionLost, state.ConnectionLost{Attempt: 1})
		}, gameerrors.CodeConnectionLost},
		{"counter window open", func(h *harness) {
			h.dispatch(state.ActionNSFOpened, state.NSFOpened{ActionID: "a1", ActionKind: catalog.PlaySet, PlayerID: bob})
		}, gameerrors.CodeSuppressed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			tc.setup(h)

			_, err := h.d.SubmitSkip(context.Background())
			assert.Equal(t, tc.code, codeOf(t, err))
			assert.Empty(t, h.server.calls())
			require.NotNil(t, h.store.State().Error)
			assert.Equal(t, tc.code, h.store.State().Error.Code)
			assert.Equal(t, uint64(1), h.metrics.Snapshot().Rejections[tc.code])
		})
	}
}

func TestCounterPlayAllowedWhileWindowOpen(t *testing.T) {
	h := newHarness(t)
	h.dispatch(state.ActionNSFOpened, state.NSFOpened{ActionID: "a1", ActionKind: catalog.PlaySet, PlayerID: bob})
	h.selectCards(2)

	_, err := h.d.SubmitSelected(context.Background(), catalog.Counter)
	require.NoError(t, err)

	calls := h.server.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/game/10/nsf", calls[0].Path)
	assert.JSONEq(t, `{"card_id":2,"action_id":"a1"}`, calls[0].Body)
	assert.Empty(t, h.store.State().Selection.CardIDs)
}

func TestSecondRequestForSameFlowIsBusy(t *testing.T) {
	h := newHarness(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	h.server.hook = func() {
		close(entered)
		<-release
	}

	errc := make(chan error, 1)
	go func() {
		_, err := h.d.SubmitSkip(context.Background())
		errc <- err
	}()
	<-entered
	assert.True(t, h.store.State().Loading)

	_, err := h.d.SubmitSkip(context.Background())
	assert.Equal(t, gameerrors.CodeFlowBusy, codeOf(t, err))

	close(release)
	require.NoError(t, <-errc)
	assert.Len(t, h.server.calls(), 1)
	assert.False(t, h.store.State().Loading)
}

func startAnotherVictim(h *harness) {
	h.dispatch(state.ActionEventStarted, state.EventStarted{Kind: catalog.AnotherVictim, CardID: 5, PlayerID: local})
	h.pick(catalog.AnotherVictim, catalog.SelectPlayer, bob)
	h.pick(catalog.AnotherVictim, catalog.SelectSet, 70)
}

func TestSubmitStagedEventFlow(t *testing.T) {
	h := newHarness(t)
	startAnotherVictim(h)

	_, err := h.d.SubmitStaged(context.Background())
	require.NoError(t, err)

	calls := h.server.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/game/10/event/another-victim", calls[0].Path)
	assert.JSONEq(t, `{"card_id":5,"target_player_id":2,"set_id":70}`, calls[0].Body)

	f, ok := h.store.State().EventActionInProgress()
	require.True(t, ok)
	assert.Equal(t, state.PhaseAwaiting, f.Phase)
}

func TestSubmitStagedRejectsIncompleteRun(t *testing.T) {
	h := newHarness(t)
	h.dispatch(state.ActionEventStarted, state.EventStarted{Kind: catalog.AnotherVictim, CardID: 5, PlayerID: local})
	h.pick(catalog.AnotherVictim, catalog.SelectPlayer, bob)

	_, err := h.d.SubmitStaged(context.Background())
	assert.Equal(t, gameerrors.CodeEmptySelection, codeOf(t, err))
	assert.Empty(t, h.server.calls())
}

func TestSubmitStagedWithoutInteraction(t *testing.T) {
	h := newHarness(t)
	_, err := h.d.SubmitStaged(context.Background())
	assert.Equal(t, gameerrors.CodeNoInteraction, codeOf(t, err))
}

func TestFlowOwnedByAnotherPlayerIsRejected(t *testing.T) {
	h := newHarness(t)
	h.dispatch(state.ActionEventStarted, state.EventStarted{Kind: catalog.AnotherVictim, CardID: 5, PlayerID: bob})

	_, err := h.d.Submit(context.Background(), catalog.AnotherVictim, catalog.Selections{})
	assert.Equal(t, gameerrors.CodeNotYourStep, codeOf(t, err))
	assert.Empty(t, h.server.calls())
}

func TestDetectiveTargetResponds(t *testing.T) {
	h := newHarness(t)
	target := local
	h.dispatch(state.ActionDetectiveStarted, state.DetectiveStarted{
		SetType: catalog.EileenBrent, SetID: 9, InitiatorPlayerID: bob, TargetPlayerID: &target,
	})
	h.dispatch(state.ActionRequestReceived, state.RequestReceived{
		Kind: catalog.EileenBrent, RequestID: "r1", FromPlayerID: bob, Stage: 1,
	})
	h.pick(catalog.EileenBrent, catalog.SelectSecret, 200)

	_, err := h.d.SubmitStaged(context.Background())
	require.NoError(t, err)

	calls := h.server.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/game/10/detective-action/respond", calls[0].Path)
	assert.JSONEq(t, `{"set_type":"eileen-brent","request_id":"r1","secret_id":200}`, calls[0].Body)
}

func TestFailureRecovery(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		code     gameerrors.Code
		staged   bool
		resyncs  int32
		lobby    bool
		recovery gameerrors.Recovery
	}{
		{"bad request keeps selection", http.StatusBadRequest, gameerrors.CodeInvalidSelection, true, 0, false, gameerrors.RecoveryKeepSelection},
		{"forbidden reverts", http.StatusForbidden, gameerrors.CodeNotYourTurn, false, 0, false, gameerrors.RecoveryRevert},
		{"conflict resyncs", http.StatusConflict, gameerrors.CodeRuleConflict, true, 1, false, gameerrors.RecoveryResync},
		{"not found returns to lobby", http.StatusNotFound, gameerrors.CodeGameNotFound, false, 0, true, gameerrors.RecoveryReturnToLobby},
		{"server error can retry", http.StatusInternalServerError, gameerrors.CodeUnknown, true, 0, false, gameerrors.RecoveryRetry},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.server.respond(tc.status, `{"detail":"nope"}`)
			startAnotherVictim(h)

			_, err := h.d.SubmitStaged(context.Background())
			assert.Equal(t, tc.code, codeOf(t, err))
			assert.Equal(t, tc.resyncs, h.conn.resyncs.Load())
			if tc.lobby {
				assert.Equal(t, int32(1), h.conn.disconnects.Load())
			} else {
				assert.Zero(t, h.conn.disconnects.Load())
			}
			assert.Equal(t, uint64(1), h.metrics.Snapshot().Recoveries[tc.recovery])

			gs := h.store.State()
			require.NotNil(t, gs.Error)
			assert.Equal(t, tc.code, gs.Error.Code)
			assert.False(t, gs.Loading)

			if tc.lobby {
				assert.Zero(t, gs.RoomID)
				assert.Nil(t, gs.Interaction)
				return
			}
			f, ok := gs.EventActionInProgress()
			require.True(t, ok)
			assert.Equal(t, state.PhaseSelecting, f.Phase)
			if tc.staged {
				require.NotNil(t, f.Staged.SetID)
				assert.Equal(t, 70, *f.Staged.SetID)
			} else {
				assert.Nil(t, f.Staged.SetID)
			}
		})
	}
}

func TestTransportFailureIsRetryable(t *testing.T) {
	st := store.New(store.WithState(seeded()), store.WithLogger(zerolog.Nop()))
	defer st.Close()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	d := New(DefaultConfig(), st, api.NewGameApiClient(srv.URL), WithLogger(zerolog.Nop()))
	_, err := d.SubmitSkip(context.Background())

	assert.Equal(t, gameerrors.CodeTransport, codeOf(t, err))
	require.NotNil(t, st.State().Error)
	assert.Equal(t, gameerrors.RecoveryRetry, st.State().Error.Code.Recovery())
}

func TestResponseForPreviousSessionIsDropped(t *testing.T) {
	h := newHarness(t)
	h.server.hook = func() { h.dispatch(state.ActionClearGame, nil) }
	h.server.respond(http.StatusForbidden, `{"detail":"Not your turn"}`)

	_, err := h.d.SubmitSkip(context.Background())
	assert.ErrorIs(t, err, ErrStaleSession)
	assert.Equal(t, state.Initial(), h.store.State())
}
