package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/sleuth/go/internal/config"
	"github.com/mcdev12/sleuth/go/internal/game/session"
	"github.com/mcdev12/sleuth/go/internal/game/state"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg)

	services := setupServices(cfg)
	defer func() {
		if err := services.Session.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveInspector(ctx, services.Inspector)
	})
	g.Go(func() error {
		logStateChanges(ctx, services.Session)
		return nil
	})
	g.Go(func() error {
		return play(ctx, services.Session, cfg)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("sleuth client stopped")
		return
	}
	log.Info().Msg("sleuth client stopped")
}

// play joins the configured room and follows the game. Without a room it
// lists the lobby and keeps serving the inspector.
func play(ctx context.Context, svc *session.Service, cfg config.Config) error {
	if cfg.Player.RoomID == 0 {
		games, err := svc.ListGames(ctx)
		if err != nil {
			return err
		}
		for _, game := range games {
			log.Info().
				Int("room_id", game.ID).
				Str("name", game.Name).
				Int("players", game.PlayersJoined).
				Int("players_max", game.PlayersMax).
				Msg("open room")
		}
		log.Info().Int("rooms", len(games)).Msg("set SLEUTH_PLAYER_ROOM_ID to join a room")
		return nil
	}

	profile := session.Profile{
		Name:      cfg.Player.Name,
		Avatar:    cfg.Player.Avatar,
		Birthdate: cfg.Player.Birthdate,
	}
	if err := svc.Play(ctx, cfg.Player.RoomID, profile); err != nil {
		return err
	}
	defer svc.Leave()
	return svc.Wait(ctx)
}

// logStateChanges logs turn, connection and flow transitions.
func logStateChanges(ctx context.Context, svc *session.Service) {
	updates, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	prev := svc.State()
	for {
		select {
		case <-ctx.Done():
			return
		case gs, ok := <-updates:
			if !ok {
				return
			}
			logTransition(prev, gs)
			prev = gs
		}
	}
}

func logTransition(prev, next state.GameState) {
	if next.Epoch != prev.Epoch {
		log.Info().Int("game_id", next.GameID).Int("epoch", next.Epoch).Msg("state re-synced")
	}
	if next.CurrentTurn != prev.CurrentTurn {
		log.Info().Int("player_id", next.CurrentTurn).Bool("mine", next.IsMyTurn()).Msg("turn advanced")
	}
	if next.Connection.Status != prev.Connection.Status {
		log.Info().Str("status", string(next.Connection.Status)).Int("attempts", next.Connection.Attempts).Msg("connection changed")
	}
	if next.Error != nil && next.Error != prev.Error {
		log.Warn().Str("flow", next.Error.Flow).Str("code", string(next.Error.Code)).Msg(next.Error.Message)
	}
	if next.Interaction != nil {
		f := next.Interaction.Current()
		if prev.Interaction == nil || !sameStep(prev.Interaction.Current(), f) {
			log.Info().Str("kind", string(f.Kind)).Int("stage", f.Stage).Str("phase", string(f.Phase)).Msg("interaction")
		}
	}
	if next.GameEnded && !prev.GameEnded {
		log.Info().Ints("winners", next.Winners).Str("reason", next.FinishReason).Msg("game ended")
	}
}

func sameStep(a, b state.Flow) bool {
	return a.Kind == b.Kind && a.Stage == b.Stage && a.Phase == b.Phase
}
