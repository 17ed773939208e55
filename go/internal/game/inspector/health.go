package inspector

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mcdev12/sleuth/go/internal/game/state"
)

type HealthStatus struct {
	Healthy    bool                   `json:"healthy"`
	Joined     bool                   `json:"joined"`
	Connection state.ConnectionStatus `json:"connection"`
	Attempts   int                    `json:"reconnect_attempts"`
	Epoch      int                    `json:"epoch"`
	GameEnded  bool                   `json:"game_ended"`
	Errors     []string               `json:"errors"`
}

// Check reports the session's health. A session that has not joined a room
// is healthy; a joined one is unhealthy while its push channel is down.
func (h *Handler) Check() HealthStatus {
	gs := h.source.State()
	status := HealthStatus{
		Healthy:    true,
		Joined:     gs.RoomID != 0,
		Connection: gs.Connection.Status,
		Attempts:   gs.Connection.Attempts,
		Epoch:      gs.Epoch,
		GameEnded:  gs.GameEnded,
		Errors:     []string{},
	}

	if status.Joined && gs.Connection.Lost {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("push channel lost after %d attempts", gs.Connection.Attempts))
	}
	if gs.Error != nil && gs.Error.Flow == "session" {
		status.Healthy = false
		status.Errors = append(status.Errors, gs.Error.Message)
	}
	return status
}

// HandleHealth handles GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.Check()
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, status)
}

// HandleMetrics handles GET /metrics in the Prometheus text format.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	if _, err := w.Write([]byte(h.Export())); err != nil {
		h.logger.Error().Err(err).Msg("failed to write metrics")
	}
}

// Export renders the session counters.
func (h *Handler) Export() string {
	stats := h.source.Stats()
	health := h.Check()

	var b strings.Builder
	gauge := func(name, help string, v any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %v\n\n", name, help, name, name, v)
	}
	counter := func(name, help string, v any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %v\n\n", name, help, name, name, v)
	}

	gauge("sleuth_healthy", "Whether the session is healthy", boolToInt(health.Healthy))
	gauge("sleuth_connected", "Whether the push channel is connected", boolToInt(stats.Connection.Connected))
	gauge("sleuth_epoch", "Number of authoritative re-syncs applied", stats.Epoch)
	counter("sleuth_pushes_received_total", "Push messages read from the channel", stats.Connection.Received)
	counter("sleuth_pushes_applied_total", "Push messages applied to the store", stats.Connection.Applied)
	counter("sleuth_pushes_dropped_total", "Push messages dropped", stats.Connection.Dropped)
	counter("sleuth_reconnects_total", "Push channel reconnects", stats.Connection.Reconnects)
	counter("sleuth_requests_total", "Gameplay requests sent", stats.Requests.Requests)
	counter("sleuth_request_failures_total", "Gameplay requests that failed", stats.Requests.Failures)

	var rejected uint64
	for _, n := range stats.Requests.Rejections {
		rejected += n
	}
	counter("sleuth_local_rejections_total", "Intents rejected without contacting the server", rejected)

	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
