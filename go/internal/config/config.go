// Package config loads the client's settings. Values come from Default, then
// an optional YAML file named by SLEUTH_CONFIG, then SLEUTH_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/sleuth/go/internal/gameerrors/i18n"
)

const (
	EnvPrefix  = "SLEUTH_"
	FileEnvVar = "SLEUTH_CONFIG"

	TransportWebSocket = "websocket"
	TransportNATS      = "nats"
)

type Config struct {
	API       APIConfig       `yaml:"api" envPrefix:"API_"`
	Push      PushConfig      `yaml:"push" envPrefix:"PUSH_"`
	Reconnect ReconnectConfig `yaml:"reconnect" envPrefix:"RECONNECT_"`
	Player    PlayerConfig    `yaml:"player" envPrefix:"PLAYER_"`
	Inspector InspectorConfig `yaml:"inspector" envPrefix:"INSPECTOR_"`

	Locale       string        `yaml:"locale" env:"LOCALE"`
	WarningDelay time.Duration `yaml:"warning_delay" env:"WARNING_DELAY"`
	LogLevel     string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat    string        `yaml:"log_format" env:"LOG_FORMAT"`
}

type APIConfig struct {
	BaseURL        string        `yaml:"base_url" env:"URL"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
}

type PushConfig struct {
	Transport       string        `yaml:"transport" env:"TRANSPORT"`
	WebSocketURL    string        `yaml:"websocket_url" env:"WEBSOCKET_URL"`
	NATSURL         string        `yaml:"nats_url" env:"NATS_URL"`
	NATSSubject     string        `yaml:"nats_subject" env:"NATS_SUBJECT"`
	QueueSize       int           `yaml:"queue_size" env:"QUEUE_SIZE"`
	SnapshotTimeout time.Duration `yaml:"snapshot_timeout" env:"SNAPSHOT_TIMEOUT"`
}

type ReconnectConfig struct {
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"INITIAL_BACKOFF"`
	MaxBackoff     time.Duration `yaml:"max_backoff" env:"MAX_BACKOFF"`
	Multiplier     float64       `yaml:"multiplier" env:"MULTIPLIER"`
	Jitter         float64       `yaml:"jitter" env:"JITTER"`
	MaxAttempts    int           `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
}

// PlayerConfig is the profile used to join a room. RoomID 0 only lists the
// lobby.
type PlayerConfig struct {
	Name      string `yaml:"name" env:"NAME"`
	Avatar    string `yaml:"avatar" env:"AVATAR"`
	Birthdate string `yaml:"birthdate" env:"BIRTHDATE"`
	RoomID    int    `yaml:"room_id" env:"ROOM_ID"`
}

type InspectorConfig struct {
	Addr           string   `yaml:"addr" env:"ADDR"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			Timeout:        30 * time.Second,
			RequestTimeout: 15 * time.Second,
		},
		Push: PushConfig{
			Transport:       TransportWebSocket,
			WebSocketURL:    "ws://localhost:8000",
			NATSURL:         "nats://localhost:4222",
			NATSSubject:     "game.%d.player.%d",
			QueueSize:       256,
			SnapshotTimeout: 10 * time.Second,
		},
		Reconnect: ReconnectConfig{
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2,
			Jitter:         0.5,
		},
		Inspector: InspectorConfig{
			Addr:           ":8090",
			AllowedOrigins: []string{"*"},
		},
		Locale:       i18n.BaseLocale,
		WarningDelay: 3 * time.Second,
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// Load builds the configuration from defaults, the file named by
// SLEUTH_CONFIG and the environment.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(FileEnvVar); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path. Keys missing from the file keep
// their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ParseEnv overlays SLEUTH_* variables onto target. Unset variables leave
// fields untouched.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	switch c.Push.Transport {
	case TransportWebSocket:
		if c.Push.WebSocketURL == "" {
			errs = append(errs, errors.New("websocket url is required"))
		}
	case TransportNATS:
		if c.Push.NATSURL == "" {
			errs = append(errs, errors.New("nats url is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown push transport %q", c.Push.Transport))
	}
	if c.Push.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue size must be positive, got %d", c.Push.QueueSize))
	}
	if c.Reconnect.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("reconnect multiplier must be at least 1, got %v", c.Reconnect.Multiplier))
	}
	if c.Reconnect.Jitter < 0 || c.Reconnect.Jitter > 1 {
		errs = append(errs, fmt.Errorf("reconnect jitter must be within [0,1], got %v", c.Reconnect.Jitter))
	}
	if c.Reconnect.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("max attempts must not be negative, got %d", c.Reconnect.MaxAttempts))
	}
	if !slices.Contains(i18n.Default().Locales(), c.Locale) {
		errs = append(errs, fmt.Errorf("unsupported locale %q", c.Locale))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
