package response

import (
	"time"

	"github.com/playnvp/nvpduel/internal/model"
	"github.com/playnvp/nvpduel/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// MatchPlayer represents a seat in a match.
// Secrets are never exposed, only whether one has been committed.
type MatchPlayer struct {
	PlayerID        string    `json:"player_id"`
	DisplayName     string    `json:"display_name"`
	SecretCommitted bool      `json:"secret_committed"`
	JoinedAt        time.Time `json:"joined_at"`
}

// Match represents a match in API responses
type Match struct {
	Key         string        `json:"key"`
	Phase       string        `json:"phase"`
	Players     []MatchPlayer `json:"players"`
	CurrentTurn *string       `json:"current_turn"`
	Winner      *string       `json:"winner"`
	Cancelled   bool          `json:"cancelled,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// MatchFromModel converts a model.Match to a response Match
func MatchFromModel(m *model.Match) Match {
	players := make([]MatchPlayer, len(m.Players))
	for i, p := range m.Players {
		players[i] = MatchPlayer{
			PlayerID:        string(p.Player.ID),
			DisplayName:     p.Player.DisplayName,
			SecretCommitted: p.Secret != "",
			JoinedAt:        p.JoinedAt,
		}
	}

	var currentTurn *string
	if m.Phase == model.PhaseInProgress {
		if cp := m.CurrentPlayer(); cp != nil {
			id := string(cp.Player.ID)
			currentTurn = &id
		}
	}

	var winner *string
	if m.Winner != nil {
		w := string(*m.Winner)
		winner = &w
	}

	return Match{
		Key:         string(m.Key),
		Phase:       string(m.Phase),
		Players:     players,
		CurrentTurn: currentTurn,
		Winner:      winner,
		Cancelled:   m.Cancelled,
		CreatedAt:   m.CreatedAt,
	}
}

// SecretResponse is the response after committing a secret
type SecretResponse struct {
	Match     string `json:"match"`
	Phase     string `json:"phase"`
	Committed int    `json:"committed"`
}

// SecretResponseFromModel builds a SecretResponse from the updated match
func SecretResponseFromModel(m *model.Match) SecretResponse {
	return SecretResponse{
		Match:     string(m.Key),
		Phase:     string(m.Phase),
		Committed: m.SecretsCommitted(),
	}
}

// GuessResponse is the response after making a guess
type GuessResponse struct {
	Match     string   `json:"match"`
	Code      string   `json:"code"`
	Values    int      `json:"values"`
	Positions int      `json:"positions"`
	Placed    []string `json:"placed,omitempty"`
	Win       bool     `json:"win"`
	NextTurn  *string  `json:"next_turn"`
}

// GuessResponseFromModel converts a model.GuessResult
func GuessResponseFromModel(r *model.GuessResult) GuessResponse {
	var nextTurn *string
	if r.NextPlayer != nil {
		id := string(r.NextPlayer.ID)
		nextTurn = &id
	}
	return GuessResponse{
		Match:     string(r.MatchKey),
		Code:      r.Code,
		Values:    r.Values,
		Positions: r.Positions,
		Placed:    r.Placed,
		Win:       r.Win,
		NextTurn:  nextTurn,
	}
}

// HealthResponse is the response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
