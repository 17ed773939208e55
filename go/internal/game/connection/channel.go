package connection

import (
	"context"

	"github.com/mcdev12/sleuth/go/internal/game/events"
	"github.com/mcdev12/sleuth/go/internal/game/state"
)

// Channel is one open push stream from the server.
type Channel interface {
	// ReadMessage blocks until the next message arrives or the channel fails.
	ReadMessage(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens the push channel for one player of one game.
type Dialer interface {
	Dial(ctx context.Context, gameID, playerID int) (Channel, error)
}

// SnapshotFetcher fetches the authoritative state of a game.
type SnapshotFetcher interface {
	FetchState(ctx context.Context, roomID, playerID int) (*events.SnapshotPayload, error)
}

// Store is the state container the manager feeds.
type Store interface {
	State() state.GameState
	Dispatch(a state.Action) state.GameState
}
