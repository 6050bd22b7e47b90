package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/wordle/apps/grid-server/internal/validity"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Store   StoreConfig
	Game    GameConfig
	Words   WordsConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host           string
	Port           string
	ClientOrigin   string // single CORS origin allowed with credentials
	RequestTimeout time.Duration
}

// AuthConfig holds per-game token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// StoreConfig selects the session store
type StoreConfig struct {
	Driver    string // "memory" or "sqlite"
	DBPath    string
	IdleTTL   time.Duration // sessions untouched this long are pruned
	PruneEach time.Duration
}

// GameConfig holds round rules
type GameConfig struct {
	WordLength       int
	MaxTries         int
	Rule             validity.Rule
	AutoSubmit       bool
	DailySalt        string
	AllowFixedAnswer bool // honor "answer" in POST /game/new (testing only)
}

// WordsConfig points at optional word list files
type WordsConfig struct {
	AnswersFile string
	AllowedFile string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string // "json" or "console"
}

const devSecret = "dev_secret_change_me"

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	rule, err := validity.ParseRule(getEnv("SCORING_RULE", "whole-guess"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("HOST", ""),
			Port:           getEnv("PORT", "5175"),
			ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
			RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", devSecret),
			TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		},
		Store: StoreConfig{
			Driver:    strings.ToLower(getEnv("STORE", "memory")),
			DBPath:    getEnv("DB_PATH", "./data/sessions.db"),
			IdleTTL:   time.Duration(getEnvInt("SESSION_IDLE_HOURS", 48)) * time.Hour,
			PruneEach: time.Duration(getEnvInt("PRUNE_INTERVAL_MINUTES", 30)) * time.Minute,
		},
		Game: GameConfig{
			WordLength:       getEnvInt("WORD_LENGTH", 5),
			MaxTries:         getEnvInt("MAX_TRIES", 6),
			Rule:             rule,
			AutoSubmit:       getEnvBool("AUTO_SUBMIT", true),
			DailySalt:        getEnv("DAILY_SALT", "local_dev_salt"),
			AllowFixedAnswer: getEnvBool("ALLOW_FIXED_ANSWER", false),
		},
		Words: WordsConfig{
			AnswersFile: getEnv("WORDS_ANSWERS_FILE", ""),
			AllowedFile: getEnv("WORDS_ALLOWED_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	switch cfg.Store.Driver {
	case "memory", "sqlite":
	default:
		return nil, fmt.Errorf("config: unknown STORE %q", cfg.Store.Driver)
	}
	if cfg.Game.WordLength <= 0 || cfg.Game.MaxTries <= 0 {
		return nil, fmt.Errorf("config: WORD_LENGTH and MAX_TRIES must be positive")
	}
	if cfg.Store.IdleTTL <= 0 || cfg.Store.PruneEach <= 0 || cfg.Auth.TokenTTL <= 0 || cfg.Server.RequestTimeout <= 0 {
		return nil, fmt.Errorf("config: durations must be positive")
	}
	return cfg, nil
}

// Addr returns the listen address in host:port format
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// InsecureSecret reports whether the built-in development JWT secret is in use
func (c *Config) InsecureSecret() bool {
	return c.Auth.JWTSecret == devSecret
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
