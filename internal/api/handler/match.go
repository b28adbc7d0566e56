package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/playnvp/nvpduel/internal/api/middleware"
	"github.com/playnvp/nvpduel/internal/api/request"
	"github.com/playnvp/nvpduel/internal/api/response"
	"github.com/playnvp/nvpduel/internal/events"
	"github.com/playnvp/nvpduel/internal/model"
	matchsvc "github.com/playnvp/nvpduel/internal/services/match"
)

// MatchHandler handles match-related endpoints
type MatchHandler struct {
	controller  matchsvc.ControllerInterface
	hubManager  *events.HubManager
	broadcaster *events.Broadcaster
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(controller matchsvc.ControllerInterface, hubManager *events.HubManager, logger *slog.Logger) *MatchHandler {
	var broadcaster *events.Broadcaster
	if hubManager != nil {
		broadcaster = events.NewBroadcaster(hubManager, logger)
	}
	return &MatchHandler{
		controller:  controller,
		hubManager:  hubManager,
		broadcaster: broadcaster,
	}
}

// Create handles POST /api/v1/matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	middleware.MustGetPlayer(r.Context())

	var req request.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body for a generated room code
		req = request.CreateMatchRequest{}
	}

	match, err := h.controller.CreateMatch(r.Context(), model.MatchKey(req.Key))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MatchFromModel(match))
}

// Get handles GET /api/v1/matches/{key}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := model.MatchKey(mux.Vars(r)["key"])

	match, err := h.controller.GetActiveMatch(r.Context(), key)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(match))
}

// Cancel handles DELETE /api/v1/matches/{key}
func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	middleware.MustGetPlayer(r.Context())
	key := model.MatchKey(mux.Vars(r)["key"])

	if _, err := h.controller.CancelMatch(r.Context(), key); err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastMatchCancelled(key)
	}

	response.NoContent(w)
}

// Join handles POST /api/v1/matches/{key}/join
func (h *MatchHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	key := model.MatchKey(mux.Vars(r)["key"])

	match, err := h.controller.Join(r.Context(), key, *player)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastPlayerJoined(match, *player)
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(match))
}

// CommitSecret handles POST /api/v1/matches/{key}/secret
func (h *MatchHandler) CommitSecret(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	key := model.MatchKey(mux.Vars(r)["key"])

	code, ok := h.decodeCode(w, r)
	if !ok {
		return
	}

	match, err := h.controller.CommitSecretIn(r.Context(), key, player.ID, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil && match.Phase == model.PhaseInProgress {
		h.broadcaster.BroadcastMatchStarted(match)
	}

	response.JSON(w, http.StatusOK, response.SecretResponseFromModel(match))
}

// CommitSecretAnywhere handles POST /api/v1/secret.
// Routes the secret to whichever match is waiting on one from this player.
func (h *MatchHandler) CommitSecretAnywhere(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	code, ok := h.decodeCode(w, r)
	if !ok {
		return
	}

	match, err := h.controller.CommitSecret(r.Context(), player.ID, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil && match.Phase == model.PhaseInProgress {
		h.broadcaster.BroadcastMatchStarted(match)
	}

	response.JSON(w, http.StatusOK, response.SecretResponseFromModel(match))
}

// Guess handles POST /api/v1/matches/{key}/guess
func (h *MatchHandler) Guess(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	key := model.MatchKey(mux.Vars(r)["key"])

	code, ok := h.decodeCode(w, r)
	if !ok {
		return
	}

	result, err := h.controller.Guess(r.Context(), key, player.ID, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastGuessResult(result)
	}

	response.JSON(w, http.StatusOK, response.GuessResponseFromModel(result))
}

// Events handles GET /api/v1/matches/{key}/events.
// Streams match updates to the client over SSE.
func (h *MatchHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	key := model.MatchKey(mux.Vars(r)["key"])

	// The match must exist before anyone can watch it
	if _, err := h.controller.GetActiveMatch(r.Context(), key); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(key)
	events.ServeSSE(w, r, hub, player.ID)
}

// decodeCode reads a CodeRequest body, writing an error response on failure
func (h *MatchHandler) decodeCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req request.CodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return "", false
	}
	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return "", false
	}
	return req.Code, true
}
