package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"chatledger"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Timezone string `envconfig:"TIMEZONE" default:"America/Sao_Paulo"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
		// File receives the TUI logs, which would otherwise corrupt the screen.
		File string `envconfig:"LOG_FILE"`
	}

	Tracker struct {
		File          string        `envconfig:"TRACKERS_FILE" default:"trackers.yaml"`
		WatchInterval time.Duration `envconfig:"WATCH_INTERVAL" default:"15s"`
		MessageWindow int           `envconfig:"MESSAGE_WINDOW" default:"200"`
	}

	Source struct {
		Kind       string `envconfig:"SOURCE" default:"telegram"`
		ReplayFile string `envconfig:"REPLAY_FILE"`
	}

	Telegram struct {
		Token   string        `envconfig:"TELEGRAM_TOKEN"`
		APIURL  string        `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
		Timeout time.Duration `envconfig:"TELEGRAM_TIMEOUT" default:"30s"`
	}

	Store struct {
		Kind          string `envconfig:"STORE" default:"sheets"`
		RetryAttempts int    `envconfig:"STORE_RETRY_ATTEMPTS" default:"3"`
	}

	Sheets struct {
		ServiceAccountPath string `envconfig:"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"`
		ClientID           string `envconfig:"GOOGLE_SHEETS_CLIENT_ID"`
		ClientSecret       string `envconfig:"GOOGLE_SHEETS_CLIENT_SECRET"`
		RefreshToken       string `envconfig:"GOOGLE_SHEETS_REFRESH_TOKEN"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"chatledger"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	API struct {
		JWTSecret      string   `envconfig:"API_JWT_SECRET"`
		AllowedOrigins []string `envconfig:"API_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}
}

const (
	SourceTelegram = "telegram"
	SourceReplay   = "replay"

	StoreSheets   = "sheets"
	StorePostgres = "postgres"
)

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves the configured timezone used to date messages.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

// Validate checks the settings that select collaborators.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceTelegram:
		if c.Telegram.Token == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is required when SOURCE=%s", SourceTelegram)
		}
	case SourceReplay:
		if c.Source.ReplayFile == "" {
			return fmt.Errorf("REPLAY_FILE is required when SOURCE=%s", SourceReplay)
		}
	default:
		return fmt.Errorf("unknown SOURCE %q", c.Source.Kind)
	}

	switch c.Store.Kind {
	case StoreSheets, StorePostgres:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store.Kind)
	}

	if c.Tracker.MessageWindow <= 0 {
		return fmt.Errorf("MESSAGE_WINDOW must be > 0")
	}

	if c.Tracker.WatchInterval <= 0 {
		return fmt.Errorf("WATCH_INTERVAL must be > 0")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
