// Package inspector serves a read-only HTTP view of a running session so an
// external renderer or a developer can follow the game state.
package inspector

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sleuth/go/internal/game/session"
	"github.com/mcdev12/sleuth/go/internal/game/state"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

// Source is what the inspector reads. *session.Service implements it.
type Source interface {
	State() state.GameState
	Subscribe() (<-chan state.GameState, func())
	Stats() session.Stats
}

// Config holds configuration for the inspector
type Config struct {
	Addr           string
	AllowedOrigins []string
	Locale         string
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

// DefaultConfig returns default configuration for the inspector
func DefaultConfig() Config {
	return Config{
		Addr:           ":8090",
		AllowedOrigins: []string{"*"},
		Locale:         "en-US",
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 1024,
	}
}

type Option func(*Handler)

// WithClock sets the clock used for derived timings.
func WithClock(c clockwork.Clock) Option {
	return func(h *Handler) { h.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// ViewResponse is the derived view plus what a renderer shows as text.
type ViewResponse struct {
	state.View
	WarningMessage string           `json:"warningMessage,omitempty"`
	Error          *state.FlowError `json:"error,omitempty"`
	Loading        bool             `json:"loading"`
	Epoch          int              `json:"epoch"`
}

// Handler serves the inspector routes.
type Handler struct {
	config   Config
	source   Source
	clock    clockwork.Clock
	logger   zerolog.Logger
	upgrader websocket.Upgrader
	routes   []string
}

// NewHandler creates a new inspector handler
func NewHandler(config Config, source Source, opts ...Option) *Handler {
	defaults := DefaultConfig()
	if config.Locale == "" {
		config.Locale = defaults.Locale
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	h := &Handler{
		config: config,
		source: source,
		clock:  clockwork.NewRealClock(),
		logger: log.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(config.AllowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the inspector routes with mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	h.handle(mux, "GET /api/state", h.HandleGetState)
	h.handle(mux, "GET /api/state/view", h.HandleGetView)
	h.handle(mux, "GET /api/stats", h.HandleGetStats)
	h.handle(mux, "GET /health", h.HandleHealth)
	h.handle(mux, "GET /metrics", h.HandleMetrics)
	h.handle(mux, "GET /ws/state", h.HandleStateStream)
	h.handle(mux, "GET /debug/routes", h.HandleRoutes)
	h.logger.Info().Int("routes", len(h.routes)).Msg("inspector routes registered")
}

func (h *Handler) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.HandleFunc(pattern, fn)
	h.routes = append(h.routes, pattern)
}

// HandleGetState handles GET /api/state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.source.State())
}

// HandleGetView handles GET /api/state/view
func (h *Handler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = h.config.Locale
	}
	h.writeJSON(w, http.StatusOK, h.view(h.source.State(), locale))
}

// HandleGetStats handles GET /api/stats
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.source.Stats())
}

// HandleRoutes handles GET /debug/routes
func (h *Handler) HandleRoutes(w http.ResponseWriter, r *http.Request) {
	routes := append([]string(nil), h.routes...)
	sort.Strings(routes)
	h.writeJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

func (h *Handler) view(gs state.GameState, locale string) ViewResponse {
	resp := ViewResponse{
		View:    state.Derive(gs, h.clock.Now()),
		Error:   gs.Error,
		Loading: gs.Loading,
		Epoch:   gs.Epoch,
	}
	if resp.Warning != "" {
		resp.WarningMessage = gameerrors.Localize(locale, resp.Warning)
	}
	return resp
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode inspector response")
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
