package config

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config holds all configurable server parameters.
type Config struct {
	WSPort int `json:"ws_port" env:"WS_PORT"`

	// DatabaseURL is the Postgres DSN for the deck store; empty uses the built-in catalog in memory.
	DatabaseURL string `json:"database_url" env:"DATABASE_URL"`

	// AuthJWKSURL enables token validation against a JWKS endpoint.
	AuthJWKSURL string `json:"auth_jwks_url" env:"AUTH_JWKS_URL"`
	// AuthIssuer is the expected "iss" claim; empty skips the check.
	AuthIssuer string `json:"auth_issuer" env:"AUTH_ISSUER"`
	// AuthHMACSecret enables HS256 tokens signed with a shared secret. Never read from config.json.
	AuthHMACSecret string `json:"-" env:"AUTH_HMAC_SECRET"`

	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// MaxLobbies caps the number of lobbies waiting for a guest.
	MaxLobbies int `json:"max_lobbies" env:"MAX_LOBBIES"`
	// ActionBuffer is the size of each room's action channel.
	ActionBuffer int `json:"action_buffer" env:"ACTION_BUFFER"`
	// MaxMessageBytes limits inbound websocket frames.
	MaxMessageBytes int64 `json:"max_message_bytes" env:"MAX_MESSAGE_BYTES"`

	// AllowedOrigins restricts websocket upgrades; empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		WSPort:          8080,
		LogLevel:        "info",
		MaxLobbies:      1000,
		ActionBuffer:    16,
		MaxMessageBytes: 4096,
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	return LoadFrom("config.json")
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) *Config {
	cfg := Defaults()

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config file", "tag", "config", "path", path, "err", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		slog.Warn("invalid environment override", "tag", "config", "err", err)
	}
	return cfg
}

// AuthConfigured reports whether any token validation method is set.
func (c *Config) AuthConfigured() bool {
	return c.AuthJWKSURL != "" || c.AuthHMACSecret != ""
}
