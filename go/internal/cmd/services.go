package main

import (
	"github.com/mcdev12/sleuth/go/clients/game_api_client"
	"github.com/mcdev12/sleuth/go/internal/config"
	"github.com/mcdev12/sleuth/go/internal/game/inspector"
	"github.com/mcdev12/sleuth/go/internal/game/session"
)

type Services struct {
	Session   *session.Service
	Inspector *inspector.Handler
}

func setupServices(cfg config.Config) *Services {
	// API client → session (store, connection manager, dispatcher) → inspector
	api := game_api_client.NewGameApiClient(cfg.API.BaseURL)
	api.SetTimeout(cfg.API.Timeout)

	svc := session.NewService(sessionConfig(cfg), api, setupDialer(cfg))

	return &Services{
		Session:   svc,
		Inspector: inspector.NewHandler(inspectorConfig(cfg), svc, inspector.WithClock(svc.Clock())),
	}
}
