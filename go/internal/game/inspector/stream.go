package inspector

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcdev12/sleuth/go/internal/game/state"
)

// HandleStateStream handles GET /ws/state. The current state is sent on
// connect, then every change.
func (h *Handler) HandleStateStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade state stream")
		return
	}

	id := uuid.NewString()
	updates, unsubscribe := h.source.Subscribe()
	done := make(chan struct{})

	h.logger.Info().Str("connection_id", id).Msg("state stream opened")

	go h.readPump(conn, done)
	h.writePump(conn, id, updates, done)

	unsubscribe()
	_ = conn.Close()
	h.logger.Info().Str("connection_id", id).Msg("state stream closed")
}

// writePump sends states until the store closes the subscription or the
// peer goes away.
func (h *Handler) writePump(conn *websocket.Conn, id string, updates <-chan state.GameState, done <-chan struct{}) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	if err := h.writeState(conn, h.source.State()); err != nil {
		h.logger.Debug().Err(err).Str("connection_id", id).Msg("failed to write initial state")
		return
	}

	for {
		select {
		case gs, ok := <-updates:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := h.writeState(conn, gs); err != nil {
				h.logger.Debug().Err(err).Str("connection_id", id).Msg("failed to write state")
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Debug().Err(err).Str("connection_id", id).Msg("failed to send ping")
				return
			}

		case <-done:
			return
		}
	}
}

func (h *Handler) writeState(conn *websocket.Conn, gs state.GameState) error {
	b, err := json.Marshal(gs)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}

// readPump discards peer messages and closes done when the peer leaves.
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(h.config.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("unexpected state stream close")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	}
}
