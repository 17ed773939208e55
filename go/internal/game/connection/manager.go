// Package connection keeps one client session in sync with the server: it
// opens the push channel, seeds the store from an authoritative snapshot and
// applies pushes in arrival order, reconnecting when the channel drops.
package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sleuth/go/internal/game/events"
	"github.com/mcdev12/sleuth/go/internal/game/state"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

var (
	ErrSessionMismatch = errors.New("snapshot belongs to another game")
	ErrGaveUp          = errors.New("reconnect attempts exhausted")
	ErrClosed          = errors.New("connection manager closed")

	// ErrSessionEnded is returned when the store left the session, for
	// example after a return to the lobby.
	ErrSessionEnded = errors.New("store no longer holds the session")
)

// Config holds the manager's queue and reconnect settings.
type Config struct {
	QueueSize       int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	Multiplier      float64
	Jitter          float64
	MaxAttempts     int // 0 retries forever
	SnapshotTimeout time.Duration
	Locale          string
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{
		QueueSize:       256,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      30 * time.Second,
		Multiplier:      2,
		Jitter:          0.5,
		MaxAttempts:     0,
		SnapshotTimeout: 10 * time.Second,
		Locale:          "en-US",
	}
}

// Stats is a point-in-time view of the manager's counters.
type Stats struct {
	SessionID  string `json:"session_id,omitempty"`
	GameID     int    `json:"game_id,omitempty"`
	PlayerID   int    `json:"player_id,omitempty"`
	Connected  bool   `json:"connected"`
	Received   uint64 `json:"received"`
	Applied    uint64 `json:"applied"`
	Dropped    uint64 `json:"dropped"`
	Reconnects uint64 `json:"reconnects"`
	Resyncs    uint64 `json:"resyncs"`
}

type Option func(*Manager)

// WithClock sets the clock used for reconnect waits.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager owns the push channel of the current session. At most one session
// is live at a time.
type Manager struct {
	config  Config
	store   Store
	dialer  Dialer
	fetcher SnapshotFetcher
	clock   clockwork.Clock
	logger  zerolog.Logger

	mu      sync.Mutex
	closed  bool
	current atomic.Pointer[session]

	received   atomic.Uint64
	applied    atomic.Uint64
	dropped    atomic.Uint64
	reconnects atomic.Uint64
	resyncs    atomic.Uint64
}

type session struct {
	id       string
	gameID   int
	roomID   int
	playerID int

	ctx    context.Context
	cancel context.CancelFunc
	resync chan struct{}
	done   chan struct{}

	connected atomic.Bool
}

// link is one dialed channel. Messages are stamped with the generation they
// were read in; a re-sync starts a new generation so anything read before
// the snapshot is dropped.
type link struct {
	ch     Channel
	ctx    context.Context
	cancel context.CancelFunc
	queue  chan inbound
	errc   chan error
	gen    atomic.Int64
	synced atomic.Bool
	once   sync.Once
}

type inbound struct {
	gen  int64
	data []byte
}

// NewManager creates a connection manager feeding st.
func NewManager(config Config, st Store, dialer Dialer, fetcher SnapshotFetcher, opts ...Option) *Manager {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if config.SnapshotTimeout <= 0 {
		config.SnapshotTimeout = DefaultConfig().SnapshotTimeout
	}
	m := &Manager{
		config:  config,
		store:   st,
		dialer:  dialer,
		fetcher: fetcher,
		clock:   clockwork.NewRealClock(),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ConnectToGame closes any prior channel, opens the push channel for
// (gameID, playerID) and seeds the store from a snapshot. It returns once
// the first snapshot has been applied; pushes are applied in the background.
func (m *Manager) ConnectToGame(ctx context.Context, gameID, playerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.stopSession()

	current := m.store.State()
	roomID := current.RoomID
	if roomID == 0 {
		roomID = gameID
	}
	m.store.Dispatch(state.Action{
		Type:    state.ActionSetSession,
		Payload: state.SetSession{RoomID: &roomID, GameID: &gameID, LocalPlayerID: &playerID},
	})
	if got := m.store.State().GameID; got != gameID {
		return fmt.Errorf("connect to game %d while in game %d: %w", gameID, got, ErrSessionMismatch)
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:       uuid.NewString(),
		gameID:   gameID,
		roomID:   roomID,
		playerID: playerID,
		ctx:      sessCtx,
		cancel:   cancel,
		resync:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	l, err := m.open(ctx, sess)
	if err != nil {
		cancel()
		if code, fatal := fatalCode(err); fatal {
			m.returnToLobby(code)
		}
		return fmt.Errorf("connect to game %d: %w", gameID, err)
	}

	m.current.Store(sess)
	go m.run(sess, l)

	m.logger.Info().
		Str("session_id", sess.id).
		Int("game_id", gameID).
		Int("player_id", playerID).
		Msg("connected to game")
	return nil
}

// Resync asks the live session to refetch the authoritative snapshot.
func (m *Manager) Resync() {
	sess := m.current.Load()
	if sess == nil {
		return
	}
	select {
	case sess.resync <- struct{}{}:
	default:
	}
}

// Done is closed when the current session ends.
func (m *Manager) Done() <-chan struct{} {
	if sess := m.current.Load(); sess != nil {
		return sess.done
	}
	done := make(chan struct{})
	close(done)
	return done
}

// Disconnect closes the current session's channel. The manager can connect
// again afterwards.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopSession()
}

// Close disconnects and refuses further connections.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.stopSession()
	return nil
}

// Stats returns the manager's counters.
func (m *Manager) Stats() Stats {
	s := Stats{
		Received:   m.received.Load(),
		Applied:    m.applied.Load(),
		Dropped:    m.dropped.Load(),
		Reconnects: m.reconnects.Load(),
		Resyncs:    m.resyncs.Load(),
	}
	if sess := m.current.Load(); sess != nil {
		s.SessionID = sess.id
		s.GameID = sess.gameID
		s.PlayerID = sess.playerID
		s.Connected = sess.connected.Load()
	}
	return s
}

// stopSession must be called with mu held.
func (m *Manager) stopSession() {
	sess := m.current.Swap(nil)
	if sess == nil {
		return
	}
	sess.cancel()
	<-sess.done
	m.logger.Info().Str("session_id", sess.id).Int("game_id", sess.gameID).Msg("session closed")
}

// open dials, starts reading and applies a snapshot. Reads that complete
// before the snapshot is applied are dropped.
func (m *Manager) open(ctx context.Context, sess *session) (*link, error) {
	ch, err := m.dialer.Dial(ctx, sess.gameID, sess.playerID)
	if err != nil {
		return nil, fmt.Errorf("dial push channel: %w", err)
	}

	linkCtx, cancel := context.WithCancel(sess.ctx)
	l := &link{
		ch:     ch,
		ctx:    linkCtx,
		cancel: cancel,
		queue:  make(chan inbound, m.config.QueueSize),
		errc:   make(chan error, 1),
	}
	go m.read(l)

	if err := m.sync(ctx, sess, l); err != nil {
		l.close()
		return nil, err
	}
	sess.connected.Store(true)
	return l, nil
}

func (l *link) close() {
	l.once.Do(func() {
		l.cancel()
		_ = l.ch.Close()
	})
}

func (m *Manager) read(l *link) {
	for {
		data, err := l.ch.ReadMessage(l.ctx)
		if err != nil {
			l.errc <- err
			return
		}
		m.received.Add(1)

		gen := l.gen.Load()
		if !l.synced.Load() {
			m.dropped.Add(1)
			m.logger.Debug().Int("bytes", len(data)).Msg("dropped push read before sync")
			continue
		}
		select {
		case l.queue <- inbound{gen: gen, data: data}:
		case <-l.ctx.Done():
			return
		}
	}
}

func (m *Manager) sync(ctx context.Context, sess *session, l *link) error {
	l.synced.Store(false)
	l.gen.Add(1)

	fetchCtx, cancel := context.WithTimeout(ctx, m.config.SnapshotTimeout)
	defer cancel()

	snap, err := m.fetcher.FetchState(fetchCtx, sess.roomID, sess.playerID)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	if snap.GameID != 0 && snap.GameID != sess.gameID {
		return fmt.Errorf("snapshot for game %d: %w", snap.GameID, ErrSessionMismatch)
	}
	if !m.owns(sess) {
		return ErrSessionEnded
	}

	next := m.store.Dispatch(state.Action{Type: state.ActionSyncSnapshot, Payload: snap.ToSnapshot()})
	l.synced.Store(true)
	m.resyncs.Add(1)

	m.logger.Debug().
		Str("session_id", sess.id).
		Int("game_id", sess.gameID).
		Int("epoch", next.Epoch).
		Msg("state synced")
	return nil
}

func (m *Manager) run(sess *session, l *link) {
	defer close(sess.done)

	for {
		err := m.consume(sess, l)
		l.close()
		sess.connected.Store(false)
		if sess.ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrSessionEnded) {
			m.logger.Info().Str("session_id", sess.id).Msg("session left by the store")
			return
		}
		if code, fatal := fatalCode(err); fatal {
			m.returnToLobby(code)
			return
		}
		m.logger.Warn().Err(err).Str("session_id", sess.id).Msg("push channel lost")

		l, err = m.reconnect(sess)
		if err != nil {
			switch code, fatal := fatalCode(err); {
			case errors.Is(err, ErrSessionEnded):
				m.logger.Info().Str("session_id", sess.id).Msg("session left by the store")
			case fatal:
				m.returnToLobby(code)
			case sess.ctx.Err() == nil:
				m.logger.Error().Err(err).Str("session_id", sess.id).Msg("giving up on push channel")
			}
			return
		}
	}
}

func (m *Manager) consume(sess *session, l *link) error {
	for {
		select {
		case <-sess.ctx.Done():
			return sess.ctx.Err()
		case msg := <-l.queue:
			if err := m.apply(sess, l, msg); err != nil {
				return err
			}
		case <-sess.resync:
			if err := m.sync(sess.ctx, sess, l); err != nil {
				return err
			}
		case err := <-l.errc:
			for {
				select {
				case msg := <-l.queue:
					if err := m.apply(sess, l, msg); err != nil {
						return err
					}
				default:
					return fmt.Errorf("read push channel: %w", err)
				}
			}
		}
	}
}

// apply dispatches one queued push. It fails only once the store has left
// the session.
func (m *Manager) apply(sess *session, l *link, msg inbound) error {
	if msg.gen != l.gen.Load() {
		m.dropped.Add(1)
		return nil
	}
	ev, err := events.Decode(msg.data)
	if err != nil {
		m.dropped.Add(1)
		m.logger.Warn().Err(err).Str("session_id", sess.id).Msg("failed to decode push")
		return nil
	}
	if ev.GameID != 0 && ev.GameID != sess.gameID {
		m.dropped.Add(1)
		m.logger.Warn().Int("event_game_id", ev.GameID).Int("game_id", sess.gameID).Msg("dropped push for another game")
		return nil
	}
	if !m.owns(sess) {
		m.dropped.Add(1)
		m.logger.Debug().Str("session_id", sess.id).Str("event_type", string(ev.Type)).Msg("dropped push after the store left the session")
		return ErrSessionEnded
	}
	a, err := events.ToAction(ev)
	if err != nil {
		m.dropped.Add(1)
		m.logger.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("failed to map push")
		return nil
	}
	m.store.Dispatch(a)
	m.applied.Add(1)
	return nil
}

func (m *Manager) reconnect(sess *session) (*link, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.config.InitialBackoff
	b.MaxInterval = m.config.MaxBackoff
	b.Multiplier = m.config.Multiplier
	b.RandomizationFactor = m.config.Jitter
	b.Reset()

	for attempt := 1; ; attempt++ {
		if m.config.MaxAttempts > 0 && attempt > m.config.MaxAttempts {
			return nil, ErrGaveUp
		}
		m.store.Dispatch(state.Action{Type: state.ActionConnectionLost, Payload: state.ConnectionLost{Attempt: attempt}})

		wait := b.NextBackOff()
		m.logger.Info().Int("attempt", attempt).Dur("wait", wait).Str("session_id", sess.id).Msg("reconnecting")
		select {
		case <-sess.ctx.Done():
			return nil, sess.ctx.Err()
		case <-m.clock.After(wait):
		}

		m.reconnects.Add(1)
		l, err := m.open(sess.ctx, sess)
		if err == nil {
			m.logger.Info().Int("attempt", attempt).Str("session_id", sess.id).Msg("reconnected")
			return l, nil
		}
		if _, fatal := fatalCode(err); fatal || errors.Is(err, ErrSessionEnded) {
			return nil, err
		}
		m.logger.Warn().Err(err).Int("attempt", attempt).Msg("reconnect failed")
	}
}

// owns reports whether the store still holds sess. Lobby returns and
// CLEAR_GAME reset the ids.
func (m *Manager) owns(sess *session) bool {
	gs := m.store.State()
	return gs.RoomID == sess.roomID && gs.GameID == sess.gameID
}

// fatalCode reports whether err ends the session and sends the player back
// to the lobby.
func fatalCode(err error) (gameerrors.Code, bool) {
	if errors.Is(err, ErrSessionMismatch) {
		return gameerrors.CodeSessionMismatch, true
	}
	var gerr *gameerrors.Error
	if errors.As(err, &gerr) && gerr.Recovery() == gameerrors.RecoveryReturnToLobby {
		return gerr.Code, true
	}
	return "", false
}

func (m *Manager) returnToLobby(code gameerrors.Code) {
	m.logger.Warn().Str("code", string(code)).Msg("returning to lobby")
	m.store.Dispatch(state.Action{
		Type: state.ActionReturnToLobby,
		Payload: state.ReturnToLobby{Error: &state.FlowError{
			Flow:    "session",
			Code:    code,
			Message: gameerrors.Localize(m.config.Locale, code),
		}},
	})
}
