package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds configuration for the NATS push channel.
type NATSConfig struct {
	URL        string
	SubjectFmt string // formatted with game id and player id
	Name       string
	Timeout    time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:        nats.DefaultURL,
		SubjectFmt: "game.%d.player.%d",
		Name:       "sleuth-client",
		Timeout:    5 * time.Second,
	}
}

// NATSDialer opens push channels as NATS subscriptions. Reconnection is left
// to the Manager so a dropped connection surfaces as a read error.
type NATSDialer struct {
	config NATSConfig
	logger zerolog.Logger
}

func NewNATSDialer(config NATSConfig) *NATSDialer {
	return &NATSDialer{config: config, logger: log.Logger}
}

// Subject returns the subject carrying pushes for one player of one game.
func (d *NATSDialer) Subject(gameID, playerID int) string {
	return fmt.Sprintf(d.config.SubjectFmt, gameID, playerID)
}

func (d *NATSDialer) Dial(ctx context.Context, gameID, playerID int) (Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := []nats.Option{
		nats.Name(d.config.Name),
		nats.Timeout(d.config.Timeout),
		nats.NoReconnect(),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			d.logger.Warn().Err(err).Int("game_id", gameID).Msg("NATS disconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			d.logger.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(d.config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	subject := d.Subject(gameID, playerID)
	sub, err := nc.SubscribeSync(subject)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	d.logger.Info().Str("subject", subject).Str("url", nc.ConnectedUrl()).Msg("subscribed to push subject")
	return &natsChannel{nc: nc, sub: sub}, nil
}

type natsChannel struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

func (c *natsChannel) ReadMessage(ctx context.Context) ([]byte, error) {
	msg, err := c.sub.NextMsgWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}

func (c *natsChannel) Close() error {
	if c.nc.IsClosed() {
		return nil
	}
	err := c.sub.Unsubscribe()
	c.nc.Close()
	return err
}
