package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.WSPort != 8080 {
		t.Errorf("expected WSPort=8080, got %d", cfg.WSPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %q", cfg.LogLevel)
	}
	if cfg.MaxLobbies != 1000 {
		t.Errorf("expected MaxLobbies=1000, got %d", cfg.MaxLobbies)
	}
	if cfg.ActionBuffer != 16 {
		t.Errorf("expected ActionBuffer=16, got %d", cfg.ActionBuffer)
	}
	if cfg.AuthConfigured() {
		t.Error("auth should not be configured by default")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("WS_PORT", "9090")
	t.Setenv("AUTH_HMAC_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))

	if cfg.WSPort != 9090 {
		t.Errorf("expected WSPort=9090, got %d", cfg.WSPort)
	}
	if cfg.AuthHMACSecret != "s3cret" || !cfg.AuthConfigured() {
		t.Errorf("expected HMAC secret from env, got %q", cfg.AuthHMACSecret)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.MaxLobbies != 1000 {
		t.Errorf("unset env should keep default, got %d", cfg.MaxLobbies)
	}
}

func TestLoadFromFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"ws_port": 7000, "max_lobbies": 5, "log_level": "debug", "auth_hmac_secret": "ignored"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAX_LOBBIES", "7")

	cfg := LoadFrom(path)

	if cfg.WSPort != 7000 {
		t.Errorf("expected WSPort=7000 from file, got %d", cfg.WSPort)
	}
	if cfg.MaxLobbies != 7 {
		t.Errorf("expected env to win over file, got %d", cfg.MaxLobbies)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %q", cfg.LogLevel)
	}
	if cfg.AuthHMACSecret != "" {
		t.Error("secret must not be read from the config file")
	}
}

func TestLoadInvalidFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0o600)

	cfg := LoadFrom(path)
	if cfg.WSPort != 8080 {
		t.Errorf("expected default port, got %d", cfg.WSPort)
	}
}
