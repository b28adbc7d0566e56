package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playnvp/nvpduel/internal/model"
	"github.com/playnvp/nvpduel/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidCode        = "INVALID_CODE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeMatchNotFound      = "MATCH_NOT_FOUND"
	CodeMatchAlreadyActive = "MATCH_ALREADY_ACTIVE"
	CodeMatchFull          = "MATCH_FULL"
	CodeAlreadyJoined      = "ALREADY_JOINED"
	CodeMatchFinished      = "MATCH_FINISHED"
	CodeNotInMatch         = "NOT_IN_MATCH"
	CodeSecretAlreadySet   = "SECRET_ALREADY_SET"
	CodeMatchNotReady      = "MATCH_NOT_READY"
	CodeNotInProgress      = "NOT_IN_PROGRESS"
	CodeNoPendingSecret    = "NO_PENDING_SECRET"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMatchNotFound, "Match not found"}}
	case errors.Is(err, model.ErrMatchAlreadyActive):
		return &httpError{http.StatusConflict, APIError{CodeMatchAlreadyActive, "A match with this key is already active"}}
	case errors.Is(err, model.ErrMatchFull):
		return &httpError{http.StatusConflict, APIError{CodeMatchFull, "Match already has two players"}}
	case errors.Is(err, model.ErrAlreadyJoined):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyJoined, "Already joined this match"}}
	case errors.Is(err, model.ErrMatchFinished):
		return &httpError{http.StatusConflict, APIError{CodeMatchFinished, "Match is already finished"}}
	case errors.Is(err, model.ErrUnknownPlayer):
		return &httpError{http.StatusForbidden, APIError{CodeNotInMatch, "Not a player in this match"}}
	case errors.Is(err, model.ErrInvalidCode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCode, "Code must be 4 distinct digits 1-9"}}
	case errors.Is(err, model.ErrSecretAlreadySet):
		return &httpError{http.StatusConflict, APIError{CodeSecretAlreadySet, "Secret has already been set"}}
	case errors.Is(err, model.ErrMatchNotReady):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotReady, "Waiting for a second player to join"}}
	case errors.Is(err, model.ErrNotInProgress):
		return &httpError{http.StatusConflict, APIError{CodeNotInProgress, "Match is not in progress"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrNoPendingSecret):
		return &httpError{http.StatusNotFound, APIError{CodeNoPendingSecret, "No match is waiting for a secret from you"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
