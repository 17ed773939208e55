// Package store owns the game state for one client session and serializes
// every change through Dispatch.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sleuth/go/internal/game/state"
)

// DefaultWarningDelay is how long the social disgrace warning stays up.
const DefaultWarningDelay = 3 * time.Second

// Store is the state container. It is safe for concurrent use; actions are
// applied one at a time in the order Dispatch is called.
type Store struct {
	mu    sync.Mutex
	state state.GameState

	clock        clockwork.Clock
	warningDelay time.Duration
	logger       zerolog.Logger

	ctx           context.Context
	cancel        context.CancelFunc
	warningTimer  clockwork.Timer
	warningCancel context.CancelFunc

	subscribers map[int]chan state.GameState
	nextSubID   int
	dispatched  uint64
	closed      bool
}

type Option func(*Store)

// WithClock sets the clock used for delayed actions.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithWarningDelay sets how long transient warnings stay up.
func WithWarningDelay(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.warningDelay = d
		}
	}
}

// WithState seeds the store.
func WithState(gs state.GameState) Option {
	return func(s *Store) { s.state = gs }
}

// New creates a store holding the initial state.
func New(opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		state:        state.Initial(),
		clock:        clockwork.NewRealClock(),
		warningDelay: DefaultWarningDelay,
		logger:       log.Logger,
		ctx:          ctx,
		cancel:       cancel,
		subscribers:  make(map[int]chan state.GameState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Store) State() state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Clock returns the store's clock.
func (s *Store) Clock() clockwork.Clock {
	return s.clock
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a state.Action) state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.state
	}

	prev := s.state
	next := state.Reduce(prev, a)
	s.state = next
	s.dispatched++

	s.logger.Debug().
		Str("action", string(a.Type)).
		Int("epoch", next.Epoch).
		Uint64("seq", s.dispatched).
		Msg("action dispatched")

	switch {
	case next.DisgraceWarning.Active() && next.DisgraceWarning.Seq != prev.DisgraceWarning.Seq:
		s.scheduleWarningClear(next.DisgraceWarning.Seq)
	case !next.DisgraceWarning.Active() && prev.DisgraceWarning.Active():
		s.cancelWarningClear()
	}

	s.notify(next)
	return next
}

// Subscribe returns a channel that always holds the latest state after a
// change. Slow readers only miss intermediate states. Call the returned
// function to unsubscribe.
func (s *Store) Subscribe() (<-chan state.GameState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan state.GameState, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close stops pending timers and closes every subscription. Dispatch is a
// no-op afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelWarningClear()
	s.cancel()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// notify must be called with mu held so subscribers see states in order.
func (s *Store) notify(gs state.GameState) {
	for _, ch := range s.subscribers {
		select {
		case ch <- gs:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- gs:
			default:
			}
		}
	}
}

// scheduleWarningClear replaces any pending clear with one for seq. Must be
// called with mu held.
func (s *Store) scheduleWarningClear(seq int) {
	s.cancelWarningClear()

	ctx, cancel := context.WithCancel(s.ctx)
	timer := s.clock.NewTimer(s.warningDelay)
	s.warningTimer = timer
	s.warningCancel = cancel

	go func() {
		select {
		case <-timer.Chan():
			s.Dispatch(state.Action{
				Type:    state.ActionClearDisgraceWarning,
				Payload: state.ClearDisgraceWarning{Seq: seq},
			})
		case <-ctx.Done():
			stopAndDrainTimer(timer)
		}
	}()

	s.logger.Debug().Int("seq", seq).Dur("delay", s.warningDelay).Msg("scheduled warning clear")
}

// cancelWarningClear must be called with mu held.
func (s *Store) cancelWarningClear() {
	if s.warningCancel != nil {
		s.warningCancel()
		s.warningCancel = nil
	}
	if s.warningTimer != nil {
		stopAndDrainTimer(s.warningTimer)
		s.warningTimer = nil
	}
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
