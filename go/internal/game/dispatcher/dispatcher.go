// Package dispatcher turns local player intents into exactly one server
// request each, rejecting locally what the client state already rules out
// and mapping failures back onto the store.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/game/state"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

// ErrStaleSession is returned when the session changed while a request was
// outstanding. The response is dropped.
var ErrStaleSession = errors.New("response for a previous session")

// Store is the state container the dispatcher reads and updates.
type Store interface {
	State() state.GameState
	Dispatch(a state.Action) state.GameState
}

// Transport sends one gameplay request. Failures should be *gameerrors.Error.
type Transport interface {
	Send(ctx context.Context, endpoint string, body any, requestID string) error
}

// Connection is the live push session that recovery acts on.
type Connection interface {
	// Resync refetches the authoritative snapshot.
	Resync()
	// Disconnect ends the push session.
	Disconnect()
}

// Config holds dispatcher settings.
type Config struct {
	Locale         string
	RequestTimeout time.Duration
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Locale:         "en-US",
		RequestTimeout: 15 * time.Second,
	}
}

type Option func(*Dispatcher)

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithConnection sets the push session that conflict and lobby recovery
// act on.
func WithConnection(c Connection) Option {
	return func(d *Dispatcher) { d.conn = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// Result describes a request that reached the server.
type Result struct {
	Kind      catalog.ActionKind
	Flow      string
	RequestID string
}

type Dispatcher struct {
	config    Config
	store     Store
	transport Transport
	conn      Connection
	metrics   MetricsCollector
	logger    zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func New(config Config, st Store, transport Transport, opts ...Option) *Dispatcher {
	if config.Locale == "" {
		config.Locale = DefaultConfig().Locale
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultConfig().RequestTimeout
	}
	d := &Dispatcher{
		config:    config,
		store:     st,
		transport: transport,
		metrics:   &NoOpMetricsCollector{},
		logger:    log.Logger,
		inFlight:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SubmitSelected submits kind with the local hand selection.
func (d *Dispatcher) SubmitSelected(ctx context.Context, kind catalog.ActionKind) (Result, error) {
	sel := d.store.State().Selection
	return d.Submit(ctx, kind, catalog.Selections{CardIDs: sel.CardIDs})
}

// SubmitDiscard discards the selected cards.
func (d *Dispatcher) SubmitDiscard(ctx context.Context) (Result, error) {
	return d.SubmitSelected(ctx, catalog.Discard)
}

// SubmitSkip ends the turn without playing.
func (d *Dispatcher) SubmitSkip(ctx context.Context) (Result, error) {
	return d.Submit(ctx, catalog.Skip, catalog.Selections{})
}

// SubmitStaged submits the staged selections of the running interaction.
func (d *Dispatcher) SubmitStaged(ctx context.Context) (Result, error) {
	gs := d.store.State()
	if gs.Interaction == nil {
		return Result{}, d.reject(gs, "", "", gameerrors.CodeNoInteraction, "no interaction running")
	}
	f := gs.Interaction.Current()
	return d.Submit(ctx, f.Kind, f.Staged)
}

// Submit sends sel for kind. Local rejections never reach the server and are
// returned as *gameerrors.Error; so are server failures, after the matching
// recovery has been applied to the store.
func (d *Dispatcher) Submit(ctx context.Context, kind catalog.ActionKind, sel catalog.Selections) (Result, error) {
	gs := d.store.State()
	def, ok := catalog.Lookup(kind)
	if !ok {
		return Result{}, fmt.Errorf("submit %q: %w", kind, catalog.ErrUnknownKind)
	}

	var (
		flow  state.Flow
		stage int
	)
	interactive := def.Family != catalog.FamilyCore
	if interactive {
		running := false
		if gs.Interaction != nil {
			flow = gs.Interaction.Current()
			running = flow.Kind == kind
		}
		if !running {
			return Result{}, d.reject(gs, kind, "", gameerrors.CodeNoInteraction, "no such interaction running")
		}
		stage = flow.Stage
	}
	key := state.FlowKey(kind, stage)

	switch {
	case gs.GameEnded:
		return Result{}, d.reject(gs, kind, key, gameerrors.CodeGameEnded, "game has ended")
	case gs.Connection.Lost:
		return Result{}, d.reject(gs, kind, key, gameerrors.CodeConnectionLost, "connection lost")
	case gs.NSF.Active && kind != catalog.Counter:
		return Result{}, d.reject(gs, kind, key, gameerrors.CodeSuppressed, "counter window open")
	case interactive && flow.Phase != state.PhaseSelecting:
		return Result{}, d.busy(kind, key)
	case interactive && !flow.IsActor(gs.LocalPlayerID):
		return Result{}, d.reject(gs, kind, key, gameerrors.CodeNotYourStep, "not the actor of this step")
	}
	if err := def.ValidateRun(stage, sel); err != nil {
		code := gameerrors.CodeEmptySelection
		if errors.Is(err, catalog.ErrTooManySelections) {
			code = gameerrors.CodeInvalidSelection
		}
		return Result{}, d.reject(gs, kind, key, code, err.Error())
	}

	endpoint, body, err := buildRequest(gs, def, flow, sel)
	if err != nil {
		return Result{}, err
	}

	if !d.acquire(key) {
		return Result{}, d.busy(kind, key)
	}
	defer d.release(key)

	if interactive {
		d.store.Dispatch(state.Action{Type: state.ActionInteractionSubmitted, Payload: state.InteractionSubmitted{Kind: kind}})
	}
	d.store.Dispatch(state.Action{Type: state.ActionRequestStarted, Payload: state.RequestStarted{Flow: key}})

	res := Result{Kind: kind, Flow: key, RequestID: uuid.NewString()}
	logger := d.logger.With().
		Str("kind", string(kind)).
		Str("flow", key).
		Str("request_id", res.RequestID).
		Int("game_id", gs.GameID).
		Logger()
	logger.Debug().Str("endpoint", endpoint).Msg("sending request")

	reqCtx, cancel := context.WithTimeout(ctx, d.config.RequestTimeout)
	sendErr := d.transport.Send(reqCtx, endpoint, body, res.RequestID)
	cancel()

	if cur := d.store.State(); cur.RoomID != gs.RoomID || cur.GameID != gs.GameID {
		logger.Warn().Err(sendErr).Msg("dropping response for a previous session")
		return res, ErrStaleSession
	}

	if sendErr == nil {
		if interactive {
			d.store.Dispatch(state.Action{Type: state.ActionInteractionAccepted, Payload: state.InteractionAccepted{Kind: kind}})
		} else if def.ClearsSelection {
			d.store.Dispatch(state.Action{Type: state.ActionClearSelection})
		}
		d.store.Dispatch(state.Action{Type: state.ActionRequestFinished, Payload: state.RequestFinished{Flow: key}})
		logger.Debug().Msg("request accepted")
		return res, nil
	}

	gerr := gameerrors.As(sendErr)
	fe := d.flowError(key, gerr)
	d.store.Dispatch(state.Action{Type: state.ActionRequestFinished, Payload: state.RequestFinished{Flow: key, Error: &fe}})
	d.recover(kind, interactive, gerr, fe)

	logger.Error().Err(gerr).Int("status", gerr.Status).Str("recovery", string(gerr.Recovery())).Msg("request failed")
	return res, gerr
}

func (d *Dispatcher) recover(kind catalog.ActionKind, interactive bool, gerr *gameerrors.Error, fe state.FlowError) {
	recovery := gerr.Recovery()
	d.metrics.RecordRecovery(kind, recovery)

	switch recovery {
	case gameerrors.RecoveryReturnToLobby:
		// The push session goes first so no push lands on the lobby state.
		if d.conn != nil {
			d.conn.Disconnect()
		}
		d.store.Dispatch(state.Action{Type: state.ActionReturnToLobby, Payload: state.ReturnToLobby{Error: &fe}})
		return
	case gameerrors.RecoveryResync:
		if d.conn != nil {
			d.conn.Resync()
		}
	}

	if interactive {
		d.store.Dispatch(state.Action{
			Type:    state.ActionInteractionFailed,
			Payload: state.InteractionFailed{Kind: kind, KeepSelection: recovery != gameerrors.RecoveryRevert},
		})
	}
}

func (d *Dispatcher) flowError(key string, gerr *gameerrors.Error) state.FlowError {
	return state.FlowError{
		Flow:    key,
		Code:    gerr.Code,
		Status:  gerr.Status,
		Message: gerr.UserMessage(d.config.Locale),
		Detail:  gerr.Message,
	}
}

// reject records a local validation failure on the store.
func (d *Dispatcher) reject(gs state.GameState, kind catalog.ActionKind, key string, code gameerrors.Code, detail string) error {
	gerr := gameerrors.New(code, detail)
	d.metrics.RecordRejection(kind, code)
	d.logger.Warn().
		Str("kind", string(kind)).
		Str("code", string(code)).
		Int("game_id", gs.GameID).
		Msg("submission rejected locally")

	d.store.Dispatch(state.Action{Type: state.ActionSetError, Payload: state.SetError{Error: d.flowError(key, gerr)}})
	return gerr
}

// busy is a duplicate submit; the running request keeps the flow's error slot.
func (d *Dispatcher) busy(kind catalog.ActionKind, key string) error {
	d.metrics.RecordRejection(kind, gameerrors.CodeFlowBusy)
	d.logger.Debug().Str("flow", key).Msg("request already in flight")
	return gameerrors.New(gameerrors.CodeFlowBusy, fmt.Sprintf("request for %s already in flight", key))
}

func (d *Dispatcher) acquire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight[key] {
		return false
	}
	d.inFlight[key] = true
	return true
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, key)
}
