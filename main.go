package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"card-battle-server/api"
	"card-battle-server/auth"
	"card-battle-server/config"
	"card-battle-server/loghandler"
	"card-battle-server/matchmaking"
	"card-battle-server/registry"
	"card-battle-server/storage"
	"card-battle-server/ws"
)

func main() {
	// Bootstrap logger so config loading can warn before LOG_LEVEL is known.
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, slog.LevelInfo)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, loghandler.ParseLevel(cfg.LogLevel))))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := storage.Catalog()
	if err != nil {
		slog.Error("loading card catalog", "tag", "main", "err", err)
		os.Exit(1)
	}

	var store storage.DeckStore
	pg, err := storage.NewStore(ctx, cfg.DatabaseURL, catalog)
	switch {
	case err != nil:
		slog.Error("connecting to Postgres", "tag", "main", "err", err)
		os.Exit(1)
	case pg != nil:
		store = pg
	default:
		slog.Info("DATABASE_URL not set, using in-memory deck store", "tag", "main")
		store = storage.NewMemoryStore(catalog)
	}
	defer store.Close()

	validator, err := auth.NewValidator(cfg.AuthJWKSURL, cfg.AuthHMACSecret, cfg.AuthIssuer)
	if err != nil {
		slog.Error("setting up token validation", "tag", "main", "err", err)
		os.Exit(1)
	}
	if !cfg.AuthConfigured() {
		slog.Warn("AUTH_JWKS_URL and AUTH_HMAC_SECRET are not set; websocket auth will reject clients", "tag", "main")
	}

	slog.Info("configuration", "tag", "main",
		"port", cfg.WSPort, "maxLobbies", cfg.MaxLobbies, "actionBuffer", cfg.ActionBuffer, "logLevel", cfg.LogLevel)

	handler := newRouter(ctx, cfg, store, validator)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WSPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("card battle server listening", "tag", "main", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "tag", "main", "err", err)
		os.Exit(1)
	}
}

// newRouter wires matchmaking, rooms and the websocket hub, and mounts the
// HTTP API. Background loops stop when ctx is cancelled.
func newRouter(ctx context.Context, cfg *config.Config, store storage.DeckStore, validator *auth.Validator) http.Handler {
	mm := matchmaking.NewMatchmaker(cfg.MaxLobbies)
	rooms := registry.New(ctx, cfg.ActionBuffer)
	rooms.OnRoomClosed = func(r *registry.Room, reason string) {
		host, guest := r.Players()
		slog.Info("game over", "tag", "main", "game", r.ID, "host", host, "guest", guest, "reason", reason)
	}

	hub := ws.NewHub(cfg, mm, rooms, store, validator)
	go hub.Run(ctx)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.HandleFunc("/ws", hub.ServeWS)
	r.Mount("/api", api.NewHandler(store, validator).Routes())
	return r
}
