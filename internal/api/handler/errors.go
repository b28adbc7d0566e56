package handler

import (
	"net/http"

	"github.com/playnvp/nvpduel/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeInvalidCode        = apierr.CodeInvalidCode
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeNotYourTurn        = apierr.CodeNotYourTurn
	CodePlayerNotFound     = apierr.CodePlayerNotFound
	CodeMatchNotFound      = apierr.CodeMatchNotFound
	CodeMatchAlreadyActive = apierr.CodeMatchAlreadyActive
	CodeMatchFull          = apierr.CodeMatchFull
	CodeAlreadyJoined      = apierr.CodeAlreadyJoined
	CodeMatchFinished      = apierr.CodeMatchFinished
	CodeNotInMatch         = apierr.CodeNotInMatch
	CodeSecretAlreadySet   = apierr.CodeSecretAlreadySet
	CodeMatchNotReady      = apierr.CodeMatchNotReady
	CodeNotInProgress      = apierr.CodeNotInProgress
	CodeNoPendingSecret    = apierr.CodeNoPendingSecret
	CodeUsernameExists     = apierr.CodeUsernameExists
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
