package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Match:
		o.printMatch(v)
	case SecretResult:
		o.printSecretResult(v)
	case GuessResult:
		o.printGuessResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// MatchPlayer response type
type MatchPlayer struct {
	PlayerID        string    `json:"player_id"`
	DisplayName     string    `json:"display_name"`
	SecretCommitted bool      `json:"secret_committed"`
	JoinedAt        time.Time `json:"joined_at"`
}

// Match response type
type Match struct {
	Key         string        `json:"key"`
	Phase       string        `json:"phase"`
	Players     []MatchPlayer `json:"players"`
	CurrentTurn *string       `json:"current_turn"`
	Winner      *string       `json:"winner"`
}

// SecretResult response type
type SecretResult struct {
	Match     string `json:"match"`
	Phase     string `json:"phase"`
	Committed int    `json:"committed"`
}

// GuessResult response type
type GuessResult struct {
	Match     string   `json:"match"`
	Code      string   `json:"code"`
	Values    int      `json:"values"`
	Positions int      `json:"positions"`
	Placed    []string `json:"placed,omitempty"`
	Win       bool     `json:"win"`
	NextTurn  *string  `json:"next_turn"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printMatch(m Match) {
	fmt.Printf("Match: %s\n", m.Key)
	fmt.Printf("Phase: %s\n", m.Phase)
	fmt.Printf("Players (%d):\n", len(m.Players))
	for _, p := range m.Players {
		secretStr := "waiting for secret"
		if p.SecretCommitted {
			secretStr = "secret committed"
		}
		turnStr := ""
		if m.CurrentTurn != nil && *m.CurrentTurn == p.PlayerID {
			turnStr = " [to move]"
		}
		fmt.Printf("  - %s (%s) - %s%s\n", p.DisplayName, p.PlayerID, secretStr, turnStr)
	}
	if m.Winner != nil {
		fmt.Printf("Winner: %s\n", *m.Winner)
	}
}

func (o *Output) printSecretResult(s SecretResult) {
	fmt.Printf("Secret committed for match %s\n", s.Match)
	fmt.Printf("Phase: %s (%d/2 secrets in)\n", s.Phase, s.Committed)
	if s.Phase == "in_progress" {
		fmt.Println("Both secrets are in. The duel is on!")
	}
}

func (o *Output) printGuessResult(g GuessResult) {
	fmt.Printf("Guess %s: %d values, %d in position\n", g.Code, g.Values, g.Positions)
	if len(g.Placed) > 0 {
		fmt.Printf("Placed digits: %s\n", strings.Join(g.Placed, ", "))
	}
	if g.Win {
		fmt.Println("You cracked the code. You win!")
	} else if g.NextTurn != nil {
		fmt.Printf("Next turn: %s\n", *g.NextTurn)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
