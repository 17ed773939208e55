package dispatcher

import (
	"fmt"

	api "github.com/mcdev12/sleuth/go/clients/game_api_client"
	"github.com/mcdev12/sleuth/go/internal/game/catalog"
	"github.com/mcdev12/sleuth/go/internal/game/state"
)

// buildRequest returns the endpoint and body for submitting sel for kind.
// flow is the running interaction for event and detective kinds.
func buildRequest(gs state.GameState, def catalog.Definition, flow state.Flow, sel catalog.Selections) (string, any, error) {
	room, player := gs.RoomID, gs.LocalPlayerID

	switch def.Kind {
	case catalog.Discard:
		return api.Endpoint(api.DiscardEndpointFmt, room, player), api.DiscardRequest{CardIDs: sel.CardIDs}, nil
	case catalog.Skip:
		return api.Endpoint(api.SkipEndpointFmt, room, player), api.SkipRequest{Rule: api.SkipRuleAuto}, nil
	case catalog.Draw:
		req := api.DrawRequest{Source: string(sel.Source)}
		if sel.Source == catalog.SourceDraft {
			req.CardID = &sel.CardIDs[0]
		}
		return api.Endpoint(api.DrawEndpointFmt, room, player), req, nil
	case catalog.PlayEvent:
		return api.Endpoint(api.PlayEventEndpointFmt, room, player), api.PlayEventRequest{CardID: sel.CardIDs[0]}, nil
	case catalog.PlaySet:
		return api.Endpoint(api.PlaySetEndpointFmt, room, player), api.PlaySetRequest{CardIDs: sel.CardIDs}, nil
	case catalog.Counter:
		return api.Endpoint(api.CounterEndpointFmt, room, player), api.CounterRequest{CardID: sel.CardIDs[0], ActionID: gs.NSF.ActionID}, nil
	}

	switch def.Family {
	case catalog.FamilyEvent:
		if step, _ := flow.Step(); flow.Incoming != nil || step.Actor != catalog.RoleInitiator {
			req := api.EventRespondRequest{CardIDs: sel.CardIDs, SecretID: sel.SecretID}
			if flow.Incoming != nil {
				req.RequestID = flow.Incoming.RequestID
			}
			return api.Endpoint(api.EventRespondEndpointFmt, room, player, def.Slug), req, nil
		}
		return api.Endpoint(api.EventActionEndpointFmt, room, player, def.Slug), api.EventActionRequest{
			CardID:          flow.CardID,
			TargetPlayerID:  sel.PlayerID,
			SetID:           sel.SetID,
			SecretID:        sel.SecretID,
			SelectedCardIDs: sel.CardIDs,
			Direction:       string(sel.Direction),
		}, nil

	case catalog.FamilyDetective:
		if step, ok := flow.Step(); ok && step.Actor == catalog.RoleTarget {
			req := api.DetectiveRespondRequest{SetType: def.Slug, SecretID: sel.SecretID}
			if flow.Incoming != nil {
				req.RequestID = flow.Incoming.RequestID
			}
			return api.Endpoint(api.DetectiveRespondEndpointFmt, room, player), req, nil
		}
		return api.Endpoint(api.DetectiveActionEndpointFmt, room, player), api.DetectiveActionRequest{
			SetType:        def.Slug,
			SetID:          flow.SetID,
			TargetPlayerID: sel.PlayerID,
			SecretID:       sel.SecretID,
		}, nil
	}

	return "", nil, fmt.Errorf("%s: %w", def.Kind, catalog.ErrUnknownKind)
}
