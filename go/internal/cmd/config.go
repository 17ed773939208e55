package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sleuth/go/internal/config"
	"github.com/mcdev12/sleuth/go/internal/game/connection"
	"github.com/mcdev12/sleuth/go/internal/game/dispatcher"
	"github.com/mcdev12/sleuth/go/internal/game/inspector"
	"github.com/mcdev12/sleuth/go/internal/game/session"
)

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func sessionConfig(cfg config.Config) session.Config {
	return session.Config{
		Connection: connection.Config{
			QueueSize:       cfg.Push.QueueSize,
			InitialBackoff:  cfg.Reconnect.InitialBackoff,
			MaxBackoff:      cfg.Reconnect.MaxBackoff,
			Multiplier:      cfg.Reconnect.Multiplier,
			Jitter:          cfg.Reconnect.Jitter,
			MaxAttempts:     cfg.Reconnect.MaxAttempts,
			SnapshotTimeout: cfg.Push.SnapshotTimeout,
			Locale:          cfg.Locale,
		},
		Dispatcher: dispatcher.Config{
			Locale:         cfg.Locale,
			RequestTimeout: cfg.API.RequestTimeout,
		},
		WarningDelay: cfg.WarningDelay,
	}
}

func inspectorConfig(cfg config.Config) inspector.Config {
	ic := inspector.DefaultConfig()
	ic.Addr = cfg.Inspector.Addr
	ic.AllowedOrigins = cfg.Inspector.AllowedOrigins
	ic.Locale = cfg.Locale
	return ic
}

func setupDialer(cfg config.Config) connection.Dialer {
	if cfg.Push.Transport == config.TransportNATS {
		nc := connection.DefaultNATSConfig()
		nc.URL = cfg.Push.NATSURL
		nc.SubjectFmt = cfg.Push.NATSSubject
		return connection.NewNATSDialer(nc)
	}
	wc := connection.DefaultWebSocketConfig()
	wc.URL = cfg.Push.WebSocketURL
	return connection.NewWebSocketDialer(wc)
}
