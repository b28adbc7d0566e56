package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/playnvp/nvpduel/internal/api/handler"
	"github.com/playnvp/nvpduel/internal/api/middleware"
	"github.com/playnvp/nvpduel/internal/events"
	logmw "github.com/playnvp/nvpduel/internal/middleware"
	"github.com/playnvp/nvpduel/internal/services/auth"
	matchsvc "github.com/playnvp/nvpduel/internal/services/match"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	MatchController matchsvc.ControllerInterface
	HubManager      *events.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	matchHandler := handler.NewMatchHandler(cfg.MatchController, cfg.HubManager, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := logmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Match routes (all require auth)
	matches := api.PathPrefix("/matches").Subrouter()
	matches.Use(authMiddleware)
	matches.HandleFunc("", matchHandler.Create).Methods(http.MethodPost)
	matches.HandleFunc("/{key}", matchHandler.Get).Methods(http.MethodGet)
	matches.HandleFunc("/{key}", matchHandler.Cancel).Methods(http.MethodDelete)
	matches.HandleFunc("/{key}/join", matchHandler.Join).Methods(http.MethodPost)
	matches.HandleFunc("/{key}/secret", matchHandler.CommitSecret).Methods(http.MethodPost)
	matches.HandleFunc("/{key}/guess", matchHandler.Guess).Methods(http.MethodPost)
	matches.HandleFunc("/{key}/events", matchHandler.Events).Methods(http.MethodGet)

	// Keyless secret routing: finds the match waiting on this player
	secret := api.PathPrefix("/secret").Subrouter()
	secret.Use(authMiddleware)
	secret.HandleFunc("", matchHandler.CommitSecretAnywhere).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
