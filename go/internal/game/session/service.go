// Package session wires one client session together: the state store, the
// push connection, the request dispatcher and the HTTP API they share.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sleuth/go/internal/game/connection"
	"github.com/mcdev12/sleuth/go/internal/game/dispatcher"
	"github.com/mcdev12/sleuth/go/internal/game/events"
	"github.com/mcdev12/sleuth/go/internal/game/state"
	"github.com/mcdev12/sleuth/go/internal/game/store"
)

var (
	ErrNotJoined      = errors.New("not joined to a room")
	ErrPlayerNotFound = errors.New("local player missing from join response")
)

// API is the slice of the game server's HTTP API a session needs.
type API interface {
	connection.SnapshotFetcher
	dispatcher.Transport
	ListGames(ctx context.Context) ([]events.GameListItem, error)
	JoinGame(ctx context.Context, roomID int, req events.JoinRequest) (*events.JoinResponse, error)
}

// Profile is how the local player presents itself when joining.
type Profile struct {
	Name      string
	Avatar    string
	Birthdate string
}

// Config holds configuration for a session
type Config struct {
	Connection   connection.Config
	Dispatcher   dispatcher.Config
	WarningDelay time.Duration
}

// DefaultConfig returns default configuration for a session
func DefaultConfig() Config {
	return Config{
		Connection:   connection.DefaultConfig(),
		Dispatcher:   dispatcher.DefaultConfig(),
		WarningDelay: store.DefaultWarningDelay,
	}
}

type Option func(*options)

type options struct {
	clock  clockwork.Clock
	logger zerolog.Logger
}

// WithClock sets the clock shared by the store and the connection manager.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger handed to every component.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Service owns one session's components. Nothing here is global; a process
// may run several services side by side.
type Service struct {
	api        API
	store      *store.Store
	connection *connection.Manager
	dispatcher *dispatcher.Dispatcher
	metrics    *dispatcher.MemoryMetrics
	logger     zerolog.Logger
}

// NewService creates a session service. Pushes arrive through dialer.
func NewService(config Config, api API, dialer connection.Dialer, opts ...Option) *Service {
	o := options{clock: clockwork.NewRealClock(), logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}

	st := store.New(
		store.WithClock(o.clock),
		store.WithLogger(o.logger),
		store.WithWarningDelay(config.WarningDelay),
	)
	conn := connection.NewManager(config.Connection, st, dialer, api,
		connection.WithClock(o.clock),
		connection.WithLogger(o.logger),
	)
	metrics := dispatcher.NewMemoryMetrics()
	disp := dispatcher.New(config.Dispatcher, st, dispatcher.NewMetricTransport(api, metrics),
		dispatcher.WithMetrics(metrics),
		dispatcher.WithConnection(conn),
		dispatcher.WithLogger(o.logger),
	)

	return &Service{
		api:        api,
		store:      st,
		connection: conn,
		dispatcher: disp,
		metrics:    metrics,
		logger:     o.logger,
	}
}

func (s *Service) Store() *store.Store                { return s.store }
func (s *Service) Connection() *connection.Manager    { return s.connection }
func (s *Service) Dispatcher() *dispatcher.Dispatcher { return s.dispatcher }
func (s *Service) Metrics() *dispatcher.MemoryMetrics { return s.metrics }
func (s *Service) State() state.GameState             { return s.store.State() }
func (s *Service) Clock() clockwork.Clock             { return s.store.Clock() }

// Subscribe follows the store's state changes.
func (s *Service) Subscribe() (<-chan state.GameState, func()) {
	return s.store.Subscribe()
}

// ListGames returns the lobby's open rooms.
func (s *Service) ListGames(ctx context.Context) ([]events.GameListItem, error) {
	games, err := s.api.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// Join joins roomID and initializes the store from the response. Any
// previous session is disconnected first.
func (s *Service) Join(ctx context.Context, roomID int, profile Profile) (state.GameState, error) {
	resp, err := s.api.JoinGame(ctx, roomID, events.JoinRequest{
		Name:      profile.Name,
		Avatar:    profile.Avatar,
		Birthdate: profile.Birthdate,
	})
	if err != nil {
		return state.GameState{}, fmt.Errorf("failed to join room %d: %w", roomID, err)
	}

	init := resp.InitializeGame(profile.Name)
	if init.LocalPlayerID == 0 {
		return state.GameState{}, fmt.Errorf("join room %d as %q: %w", roomID, profile.Name, ErrPlayerNotFound)
	}

	s.connection.Disconnect()
	gs := s.store.Dispatch(state.Action{Type: state.ActionInitializeGame, Payload: init})

	s.logger.Info().
		Int("room_id", gs.RoomID).
		Int("player_id", gs.LocalPlayerID).
		Int("players", len(gs.Players)).
		Msg("joined room")
	return gs, nil
}

// Connect opens the push channel for the joined room's game. The game id is
// the room id.
func (s *Service) Connect(ctx context.Context) error {
	gs := s.store.State()
	if gs.RoomID == 0 || gs.LocalPlayerID == 0 {
		return ErrNotJoined
	}
	gameID := gs.GameID
	if gameID == 0 {
		gameID = gs.RoomID
	}
	return s.connection.ConnectToGame(ctx, gameID, gs.LocalPlayerID)
}

// Play joins roomID and connects.
func (s *Service) Play(ctx context.Context, roomID int, profile Profile) error {
	if _, err := s.Join(ctx, roomID, profile); err != nil {
		return err
	}
	return s.Connect(ctx)
}

// Wait blocks until ctx is done or the push session ends on its own.
func (s *Service) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-s.connection.Done():
		if gs := s.store.State(); gs.Error != nil {
			return fmt.Errorf("session ended: %s", gs.Error.Message)
		}
		return nil
	}
}

// Leave drops the session and resets the store.
func (s *Service) Leave() {
	s.connection.Disconnect()
	s.store.Dispatch(state.Action{Type: state.ActionClearGame})
	s.logger.Info().Msg("left game")
}

// Close stops every component. The service cannot be used afterwards.
func (s *Service) Close() error {
	err := s.connection.Close()
	s.store.Close()
	return err
}

// Stats is a snapshot of the session's counters.
type Stats struct {
	RoomID     int                        `json:"room_id"`
	GameID     int                        `json:"game_id"`
	PlayerID   int                        `json:"player_id"`
	Epoch      int                        `json:"epoch"`
	Connection connection.Stats           `json:"connection"`
	Requests   dispatcher.MetricsSnapshot `json:"requests"`
}

func (s *Service) Stats() Stats {
	gs := s.store.State()
	return Stats{
		RoomID:     gs.RoomID,
		GameID:     gs.GameID,
		PlayerID:   gs.LocalPlayerID,
		Epoch:      gs.Epoch,
		Connection: s.connection.Stats(),
		Requests:   s.metrics.Snapshot(),
	}
}
