package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateMatchRequest is the request body for creating a match.
// An empty key asks the server to generate a room code.
type CreateMatchRequest struct {
	Key string `json:"key,omitempty"`
}

// CodeRequest is the request body for submitting a secret or a guess
type CodeRequest struct {
	Code string `json:"code"`
}
