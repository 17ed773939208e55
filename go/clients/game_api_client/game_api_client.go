package game_api_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/sleuth/go/clients"
	"github.com/mcdev12/sleuth/go/internal/game/events"
	"github.com/mcdev12/sleuth/go/internal/gameerrors"
)

type GameApiClient struct {
	*clients.BaseClient
}

func NewGameApiClient(baseURL string) *GameApiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GameApiClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}

// ListGames returns the rooms open in the lobby.
func (c *GameApiClient) ListGames(ctx context.Context) ([]events.GameListItem, error) {
	body, err := c.Get(ctx, GameListEndpoint)
	if err != nil {
		return nil, classify(err)
	}
	var resp events.GameListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode game list: %w", err)
	}
	return resp.Items, nil
}

// JoinGame joins roomID with the given profile.
func (c *GameApiClient) JoinGame(ctx context.Context, roomID int, req events.JoinRequest) (*events.JoinResponse, error) {
	body, err := c.PostJSON(ctx, fmt.Sprintf(JoinEndpointFmt, roomID), req, nil)
	if err != nil {
		return nil, classify(err)
	}
	var resp events.JoinResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode join response: %w", err)
	}
	return &resp, nil
}

// FetchState returns the authoritative snapshot of roomID as seen by playerID.
func (c *GameApiClient) FetchState(ctx context.Context, roomID, playerID int) (*events.SnapshotPayload, error) {
	endpoint := fmt.Sprintf(GameStateEndpointFmt, roomID) + fmt.Sprintf("?player_id=%d", playerID)
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, classify(err)
	}
	var snap events.SnapshotPayload
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}
	return &snap, nil
}

// Send posts one gameplay request. Failures are *gameerrors.Error.
func (c *GameApiClient) Send(ctx context.Context, endpoint string, body any, requestID string) error {
	headers := map[string]string{}
	if requestID != "" {
		headers[RequestIDHeader] = requestID
	}
	if _, err := c.PostJSON(ctx, endpoint, body, headers); err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var statusErr *clients.StatusError
	if errors.As(err, &statusErr) {
		e := gameerrors.FromStatus(statusErr.StatusCode, statusErr.Body)
		e.Cause = err
		return e
	}
	return gameerrors.Wrap(gameerrors.CodeTransport, "request failed", err)
}

// Endpoint builds a per-player gameplay path.
func Endpoint(format string, roomID, playerID int, args ...any) string {
	path := fmt.Sprintf(format, append([]any{roomID}, args...)...)
	return fmt.Sprintf("%s?player_id=%d", path, playerID)
}
