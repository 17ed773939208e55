package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/sleuth/go/internal/game/state"
)

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	s := New(WithClock(fc), WithLogger(zerolog.Nop()))
	t.Cleanup(s.Close)
	return s, fc
}

func disgrace(s *Store) {
	s.Dispatch(state.Action{Type: state.ActionInitializeGame, Payload: state.InitializeGame{Room: state.Room{ID: 1}, LocalPlayerID: 1}})
	s.Dispatch(state.Action{Type: state.ActionSyncSnapshot, Payload: state.Snapshot{
		GameID:      2,
		GamePlayers: []state.PlayerSummary{{PlayerID: 1}, {PlayerID: 2}},
		Hand:        []state.Card{{ID: 1}, {ID: 2}, {ID: 3}},
	}})
	s.Dispatch(state.Action{Type: state.ActionSetSocialDisgrace, Payload: state.SetSocialDisgrace{PlayerIDs: []int{1}}})
}

func selectCard(s *Store, id int) state.GameState {
	return s.Dispatch(state.Action{Type: state.ActionSelectCard, Payload: state.SelectCard{CardID: id}})
}

func waitForTimer(t *testing.T, fc *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
}

func TestDisgraceWarningClearsAfterDelay(t *testing.T) {
	s, fc := newTestStore(t)
	disgrace(s)

	selectCard(s, 1)
	gs := selectCard(s, 2)
	require.True(t, gs.DisgraceWarning.Active())
	assert.Equal(t, []int{1}, gs.Selection.CardIDs)

	waitForTimer(t, fc)
	fc.Advance(DefaultWarningDelay - time.Millisecond)
	assert.True(t, s.State().DisgraceWarning.Active())

	fc.Advance(time.Millisecond)
	require.Eventually(t, func() bool {
		return !s.State().DisgraceWarning.Active()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{1}, s.State().Selection.CardIDs)
}

func TestNewWarningRestartsTheDelay(t *testing.T) {
	s, fc := newTestStore(t)
	disgrace(s)
	selectCard(s, 1)

	selectCard(s, 2)
	waitForTimer(t, fc)
	fc.Advance(2 * time.Second)

	selectCard(s, 3)
	waitForTimer(t, fc)
	fc.Advance(time.Second)
	assert.True(t, s.State().DisgraceWarning.Active(), "the first timer was replaced")

	fc.Advance(2 * time.Second)
	require.Eventually(t, func() bool {
		return !s.State().DisgraceWarning.Active()
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribeDeliversLatestState(t *testing.T) {
	s, _ := newTestStore(t)
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Dispatch(state.Action{Type: state.ActionSetSession, Payload: state.SetSession{GameID: intPtr(7)}})
	s.Dispatch(state.Action{Type: state.ActionSetSession, Payload: state.SetSession{LocalPlayerID: intPtr(3)}})

	select {
	case gs := <-ch:
		assert.Equal(t, 7, gs.GameID)
		assert.Equal(t, 3, gs.LocalPlayerID)
	case <-time.After(time.Second):
		t.Fatal("no state delivered")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s, _ := newTestStore(t)
	ch, unsubscribe := s.Subscribe()
	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
}

func TestConcurrentDispatchIsSerialized(t *testing.T) {
	s, _ := newTestStore(t)
	s.Dispatch(state.Action{Type: state.ActionInitializeGame, Payload: state.InitializeGame{Room: state.Room{ID: 1}, LocalPlayerID: 1}})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			selectCard(s, id)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.State().Selection.CardIDs, 50)
}

func TestCloseStopsDispatch(t *testing.T) {
	s, _ := newTestStore(t)
	ch, _ := s.Subscribe()
	s.Close()

	gs := s.Dispatch(state.Action{Type: state.ActionSetSession, Payload: state.SetSession{GameID: intPtr(7)}})
	assert.Zero(t, gs.GameID)
	_, open := <-ch
	assert.False(t, open)
}

func intPtr(v int) *int { return &v }
