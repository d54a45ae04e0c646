package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Completion service (Clarifai)
	ClarifaiPAT            string        `env:"CLARIFAI_PAT,required,notEmpty"`
	ClarifaiUserID         string        `env:"CLARIFAI_USER_ID" envDefault:"meta"`
	ClarifaiAppID          string        `env:"CLARIFAI_APP_ID" envDefault:"Llama-2"`
	ClarifaiModelID        string        `env:"CLARIFAI_MODEL_ID" envDefault:"llama2-13b-chat"`
	ClarifaiModelVersionID string        `env:"CLARIFAI_MODEL_VERSION_ID"`
	ClarifaiBaseURL        string        `env:"CLARIFAI_BASE_URL" envDefault:"https://api.clarifai.com"`
	CompletionTimeout      time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"0s"` // 0 = no client timeout

	// Prompt
	PromptStyle string `env:"PROMPT_STYLE" envDefault:"canonical"` // "canonical" or "legacy"

	// HTTP
	HTTPListenAddr     string   `env:"HTTP_LISTEN_ADDR" envDefault:":8080"`
	HTTPAllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
	MaxUploadBytes     int64    `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Generation log (optional)
	HistoryDBPath string `env:"HISTORY_DB_PATH"`

	// Telegram front-end (optional)
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`

	// IMAP drafts (optional)
	IMAPServer        string        `env:"IMAP_SERVER"` // host:port, resolved from IMAP_USERNAME when empty
	IMAPUsername      string        `env:"IMAP_USERNAME"`
	IMAPPassword      string        `env:"IMAP_PASSWORD"`
	IMAPDraftsMailbox string        `env:"IMAP_DRAFTS_MAILBOX" envDefault:"Drafts"`
	IMAPDialTimeout   time.Duration `env:"IMAP_DIAL_TIMEOUT" envDefault:"30s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// HistoryEnabled returns true if the generation log is configured
func (c *Config) HistoryEnabled() bool {
	return c.HistoryDBPath != ""
}

// TelegramEnabled returns true if the Telegram front-end is configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// IMAPEnabled returns true if drafts can be uploaded over IMAP
func (c *Config) IMAPEnabled() bool {
	return c.IMAPUsername != "" && c.IMAPPassword != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return parse()
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.PromptStyle {
	case "canonical", "legacy":
	default:
		return nil, fmt.Errorf("PROMPT_STYLE must be canonical or legacy, got %q", cfg.PromptStyle)
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	if (cfg.IMAPUsername == "") != (cfg.IMAPPassword == "") {
		return nil, fmt.Errorf("IMAP_USERNAME and IMAP_PASSWORD must be set together")
	}

	return cfg, nil
}
