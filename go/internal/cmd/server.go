package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sleuth/go/internal/game/inspector"
)

// serveInspector runs the inspector until ctx is done.
func serveInspector(ctx context.Context, h *inspector.Handler) error {
	server := inspector.NewServer(h)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("inspector listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
