package model

import "time"

// MatchKey identifies where a match is played, e.g. a chat or room identifier
type MatchKey string

// MatchPhase represents the current phase of a match
type MatchPhase string

const (
	PhaseForming         MatchPhase = "forming"          // Waiting for a second player
	PhaseAwaitingSecrets MatchPhase = "awaiting_secrets" // Both seats filled, secrets pending
	PhaseInProgress      MatchPhase = "in_progress"      // Players guessing in turns
	PhaseFinished        MatchPhase = "finished"         // Won or cancelled
)

// CodeLength is the number of digits in a secret code
const CodeLength = 4

// Participant is a player's seat in a match. Seat order is join order and
// never changes; the first seat moves first.
type Participant struct {
	Player   Player
	Secret   string // empty until committed, immutable afterwards
	JoinedAt time.Time
}

// Match represents a single two-player digit duel
type Match struct {
	Key   MatchKey
	Phase MatchPhase

	// Participants in join order, at most two
	Players []Participant

	// TurnIdx is the seat index whose move it is.
	// Only meaningful while Phase is in_progress.
	TurnIdx int

	// Winner is set on a winning guess, nil on cancellation
	Winner    *PlayerID
	Cancelled bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true once the match accepts no further moves
func (m *Match) IsTerminal() bool {
	return m.Phase == PhaseFinished
}

// Seat returns the seat index for a player, or -1 if not a participant
func (m *Match) Seat(id PlayerID) int {
	for i := range m.Players {
		if m.Players[i].Player.ID == id {
			return i
		}
	}
	return -1
}

// Participant returns the participant with the given player ID, or nil
func (m *Match) Participant(id PlayerID) *Participant {
	if i := m.Seat(id); i >= 0 {
		return &m.Players[i]
	}
	return nil
}

// Opponent returns the other participant, or nil if the player is not in
// the match or has no opponent yet
func (m *Match) Opponent(id PlayerID) *Participant {
	seat := m.Seat(id)
	if seat < 0 || len(m.Players) < 2 {
		return nil
	}
	return &m.Players[1-seat]
}

// CurrentPlayer returns the participant whose turn it is, or nil outside
// the in_progress phase
func (m *Match) CurrentPlayer() *Participant {
	if m.Phase != PhaseInProgress || m.TurnIdx >= len(m.Players) {
		return nil
	}
	return &m.Players[m.TurnIdx]
}

// Clone returns a deep copy sharing no memory with the receiver
func (m *Match) Clone() *Match {
	c := *m
	c.Players = make([]Participant, len(m.Players))
	copy(c.Players, m.Players)
	if m.Winner != nil {
		w := *m.Winner
		c.Winner = &w
	}
	return &c
}

// SecretsCommitted returns how many participants have committed a secret
func (m *Match) SecretsCommitted() int {
	n := 0
	for i := range m.Players {
		if m.Players[i].Secret != "" {
			n++
		}
	}
	return n
}

// AwaitingSecretFrom reports whether the match is waiting on this player's
// secret
func (m *Match) AwaitingSecretFrom(id PlayerID) bool {
	if m.Phase != PhaseAwaitingSecrets {
		return false
	}
	p := m.Participant(id)
	return p != nil && p.Secret == ""
}

// GuessResult is the outcome of a single guess against the opponent's secret
type GuessResult struct {
	MatchKey MatchKey
	Player   Player
	Code     string

	// Values counts digits present anywhere in the opponent's secret;
	// Positions counts digits in the right place. Four positions wins.
	Values    int
	Positions int

	// Placed lists the correctly placed digits in index order
	Placed []string

	Win bool

	// NextPlayer is the player to move next; nil when the match is over
	NextPlayer *Player
}
