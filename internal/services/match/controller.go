package match

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/playnvp/nvpduel/internal/dependencies/clock"
	"github.com/playnvp/nvpduel/internal/dependencies/random"
	"github.com/playnvp/nvpduel/internal/model"
	"github.com/playnvp/nvpduel/internal/services/scoring"
	"github.com/playnvp/nvpduel/internal/storage"
)

const (
	// RoomCodeLength is the length of generated match keys
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller manages the match state machine: enrollment, secret
// commitment, turn-by-turn guessing and termination.
//
// Operations on one match are serialized through a per-key mutex so that
// turn and phase updates are atomic. The storage map has its own lock;
// neither lock is held while waiting on the other across a full operation,
// so independent matches never contend.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.MatchKey]*sync.Mutex
}

// NewController creates a new match Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
		locks:   make(map[model.MatchKey]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing operations for a match key
func (c *Controller) lockFor(key model.MatchKey) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// CreateMatch starts a new match under the given key. An empty key asks
// the controller to generate a room code. Fails if a non-terminal match
// already exists under the key; a finished match is replaced.
func (c *Controller) CreateMatch(ctx context.Context, key model.MatchKey) (*model.Match, error) {
	if key == "" {
		generated, err := c.generateKey(ctx)
		if err != nil {
			return nil, err
		}
		key = generated
	}

	l := c.lockFor(key)
	l.Lock()
	defer l.Unlock()

	existing, err := c.storage.GetMatch(ctx, key)
	if err == nil && !existing.IsTerminal() {
		return nil, model.ErrMatchAlreadyActive
	}
	if err != nil && !errors.Is(err, model.ErrMatchNotFound) {
		return nil, err
	}

	now := c.clock.Now()
	m := &model.Match{
		Key:       key,
		Phase:     model.PhaseForming,
		Players:   []model.Participant{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveMatch(ctx, m); err != nil {
		c.logger.Error("failed to save match",
			slog.String("match_key", string(key)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("match created", slog.String("match_key", string(key)))
	return m, nil
}

// generateKey picks an unused room code
func (c *Controller) generateKey(ctx context.Context) (model.MatchKey, error) {
	for {
		key := model.MatchKey(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		_, err := c.storage.GetMatch(ctx, key)
		if errors.Is(err, model.ErrMatchNotFound) {
			return key, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// GetActiveMatch returns the non-terminal match for a key.
// A finished match reads as not found: absence is a normal outcome.
func (c *Controller) GetActiveMatch(ctx context.Context, key model.MatchKey) (*model.Match, error) {
	m, err := c.storage.GetMatch(ctx, key)
	if err != nil {
		return nil, err
	}
	if m.IsTerminal() {
		return nil, model.ErrMatchNotFound
	}
	return m, nil
}

// CancelMatch removes the match under a key regardless of its phase and
// returns it marked finished with no winner. Fails with ErrMatchNotFound
// on absent keys so callers can tell the difference.
func (c *Controller) CancelMatch(ctx context.Context, key model.MatchKey) (*model.Match, error) {
	l := c.lockFor(key)
	l.Lock()
	defer l.Unlock()

	m, err := c.storage.GetMatch(ctx, key)
	if err != nil {
		return nil, err
	}

	m.Phase = model.PhaseFinished
	m.Cancelled = true
	m.Winner = nil
	m.UpdatedAt = c.clock.Now()

	if err := c.storage.DeleteMatch(ctx, key); err != nil {
		return nil, err
	}

	c.logger.Info("match cancelled", slog.String("match_key", string(key)))
	return m, nil
}

// Join adds a player to a forming match. The second join fixes the seat
// order and moves the match to awaiting_secrets.
func (c *Controller) Join(ctx context.Context, key model.MatchKey, player model.Player) (*model.Match, error) {
	l := c.lockFor(key)
	l.Lock()
	defer l.Unlock()

	m, err := c.storage.GetMatch(ctx, key)
	if err != nil {
		return nil, err
	}
	if m.IsTerminal() {
		return nil, model.ErrMatchFinished
	}
	if m.Seat(player.ID) >= 0 {
		return nil, model.ErrAlreadyJoined
	}
	if len(m.Players) >= 2 {
		return nil, model.ErrMatchFull
	}

	now := c.clock.Now()
	m.Players = append(m.Players, model.Participant{
		Player:   player,
		JoinedAt: now,
	})
	if len(m.Players) == 2 {
		m.Phase = model.PhaseAwaitingSecrets
	}
	m.UpdatedAt = now

	if err := c.storage.SaveMatch(ctx, m); err != nil {
		return nil, err
	}

	c.logger.Info("player joined match",
		slog.String("match_key", string(key)),
		slog.String("player_id", string(player.ID)),
		slog.Int("player_count", len(m.Players)),
	)
	return m, nil
}

// CommitSecretIn records a player's secret in an explicitly named match.
// When both secrets are in, the match moves to in_progress with the first
// seat to move.
func (c *Controller) CommitSecretIn(ctx context.Context, key model.MatchKey, playerID model.PlayerID, code string) (*model.Match, error) {
	l := c.lockFor(key)
	l.Lock()
	defer l.Unlock()

	m, err := c.storage.GetMatch(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.commitLocked(ctx, m, playerID, code)
}

// CommitSecret records a player's secret without an explicit match key,
// routing it to the oldest match that is awaiting a secret from them.
// Routing without a key is inherently ambiguous when a player has several
// matches pending; the creation-time order at least makes it stable.
// Callers that know the key should use CommitSecretIn.
func (c *Controller) CommitSecret(ctx context.Context, playerID model.PlayerID, code string) (*model.Match, error) {
	if err := scoring.ValidateCode(code); err != nil {
		return nil, err
	}

	candidates, err := c.awaitingSecret(ctx, playerID)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		l := c.lockFor(candidate.Key)
		l.Lock()
		// Re-fetch under the lock; the scan ran without it
		m, err := c.storage.GetMatch(ctx, candidate.Key)
		if err != nil || !m.AwaitingSecretFrom(playerID) {
			l.Unlock()
			continue
		}
		committed, err := c.commitLocked(ctx, m, playerID, code)
		l.Unlock()
		return committed, err
	}

	return nil, model.ErrNoPendingSecret
}

// FindAwaitingSecret returns the match the scan-routing path would pick
// for a player, or ErrNoPendingSecret
func (c *Controller) FindAwaitingSecret(ctx context.Context, playerID model.PlayerID) (*model.Match, error) {
	candidates, err := c.awaitingSecret(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, model.ErrNoPendingSecret
	}
	return candidates[0], nil
}

// awaitingSecret lists matches awaiting a secret from the player, oldest
// first. Ties on creation time break on the key so the order is total.
func (c *Controller) awaitingSecret(ctx context.Context, playerID model.PlayerID) ([]*model.Match, error) {
	all, err := c.storage.ListMatches(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []*model.Match
	for _, m := range all {
		if m.AwaitingSecretFrom(playerID) {
			candidates = append(candidates, m)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].Key < candidates[j].Key
	})
	return candidates, nil
}

// commitLocked applies a secret commitment. The caller holds the match lock.
func (c *Controller) commitLocked(ctx context.Context, m *model.Match, playerID model.PlayerID, code string) (*model.Match, error) {
	if m.IsTerminal() {
		return nil, model.ErrMatchFinished
	}
	if err := scoring.ValidateCode(code); err != nil {
		return nil, err
	}
	p := m.Participant(playerID)
	if p == nil {
		return nil, model.ErrUnknownPlayer
	}
	if p.Secret != "" {
		return nil, model.ErrSecretAlreadySet
	}
	if m.Phase == model.PhaseForming {
		return nil, model.ErrMatchNotReady
	}

	p.Secret = code
	if m.SecretsCommitted() == len(m.Players) {
		m.Phase = model.PhaseInProgress
		m.TurnIdx = 0
	}
	m.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveMatch(ctx, m); err != nil {
		return nil, err
	}

	c.logger.Info("secret committed",
		slog.String("match_key", string(m.Key)),
		slog.String("player_id", string(playerID)),
		slog.String("phase", string(m.Phase)),
	)
	return m, nil
}

// Guess evaluates a player's code against the opponent's secret. An exact
// match finishes the game; anything else passes the turn.
func (c *Controller) Guess(ctx context.Context, key model.MatchKey, playerID model.PlayerID, code string) (*model.GuessResult, error) {
	l := c.lockFor(key)
	l.Lock()
	defer l.Unlock()

	m, err := c.storage.GetMatch(ctx, key)
	if err != nil {
		return nil, err
	}
	if m.IsTerminal() {
		return nil, model.ErrMatchFinished
	}
	if m.Phase != model.PhaseInProgress {
		return nil, model.ErrNotInProgress
	}
	seat := m.Seat(playerID)
	if seat < 0 {
		return nil, model.ErrUnknownPlayer
	}
	if err := scoring.ValidateCode(code); err != nil {
		return nil, err
	}
	if seat != m.TurnIdx {
		return nil, model.ErrNotYourTurn
	}

	opponent := m.Opponent(playerID)
	score := scoring.Evaluate(opponent.Secret, code)

	result := &model.GuessResult{
		MatchKey:  m.Key,
		Player:    m.Players[seat].Player,
		Code:      code,
		Values:    score.Values,
		Positions: score.Positions,
		Placed:    score.Placed,
		Win:       score.Win(),
	}

	if score.Win() {
		winner := playerID
		m.Phase = model.PhaseFinished
		m.Winner = &winner
	} else {
		m.TurnIdx = 1 - m.TurnIdx
		next := m.Players[m.TurnIdx].Player
		result.NextPlayer = &next
	}
	m.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveMatch(ctx, m); err != nil {
		return nil, err
	}

	c.logger.Info("guess evaluated",
		slog.String("match_key", string(key)),
		slog.String("player_id", string(playerID)),
		slog.Int("values", score.Values),
		slog.Int("positions", score.Positions),
		slog.Bool("win", score.Win()),
	)
	return result, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateMatch(ctx context.Context, key model.MatchKey) (*model.Match, error)
	GetActiveMatch(ctx context.Context, key model.MatchKey) (*model.Match, error)
	CancelMatch(ctx context.Context, key model.MatchKey) (*model.Match, error)
	Join(ctx context.Context, key model.MatchKey, player model.Player) (*model.Match, error)
	CommitSecretIn(ctx context.Context, key model.MatchKey, playerID model.PlayerID, code string) (*model.Match, error)
	CommitSecret(ctx context.Context, playerID model.PlayerID, code string) (*model.Match, error)
	FindAwaitingSecret(ctx context.Context, playerID model.PlayerID) (*model.Match, error)
	Guess(ctx context.Context, key model.MatchKey, playerID model.PlayerID, code string) (*model.GuessResult, error)
}

var _ ControllerInterface = (*Controller)(nil)
