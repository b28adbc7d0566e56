package match

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/playnvp/nvpduel/internal/dependencies/mocks"
	"github.com/playnvp/nvpduel/internal/model"
	"github.com/playnvp/nvpduel/internal/storage/memory"
	"github.com/playnvp/nvpduel/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context

	alice model.Player
	bob   model.Player
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()

	s.alice = model.Player{ID: "player-alice", DisplayName: "Alice"}
	s.bob = model.Player{ID: "player-bob", DisplayName: "Bob"}
}

// startedMatch creates a match with both players joined and both secrets
// committed: Alice "1234", Bob "5678", Alice to move.
func (s *ControllerSuite) startedMatch(key model.MatchKey) *model.Match {
	_, err := s.controller.CreateMatch(s.ctx, key)
	s.Require().NoError(err)
	_, err = s.controller.Join(s.ctx, key, s.alice)
	s.Require().NoError(err)
	_, err = s.controller.Join(s.ctx, key, s.bob)
	s.Require().NoError(err)
	_, err = s.controller.CommitSecretIn(s.ctx, key, s.alice.ID, "1234")
	s.Require().NoError(err)
	m, err := s.controller.CommitSecretIn(s.ctx, key, s.bob.ID, "5678")
	s.Require().NoError(err)
	return m
}

// CreateMatch tests

func (s *ControllerSuite) TestCreateMatchSucceeds() {
	m, err := s.controller.CreateMatch(s.ctx, "G1")
	s.Require().NoError(err)

	s.Equal(model.MatchKey("G1"), m.Key)
	s.Equal(model.PhaseForming, m.Phase)
	s.Empty(m.Players)
	s.Nil(m.Winner)
}

func (s *ControllerSuite) TestCreateMatchGeneratesRoomCode() {
	s.random.QueueString("ROOM42")

	m, err := s.controller.CreateMatch(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(model.MatchKey("ROOM42"), m.Key)
}

func (s *ControllerSuite) TestCreateMatchFailsWhileActive() {
	_, err := s.controller.CreateMatch(s.ctx, "G1")
	s.Require().NoError(err)

	_, err = s.controller.CreateMatch(s.ctx, "G1")
	s.ErrorIs(err, model.ErrMatchAlreadyActive)
}

func (s *ControllerSuite) TestCreateMatchReplacesFinishedMatch() {
	s.startedMatch("G1")

	// Alice guesses Bob's secret exactly
	result, err := s.controller.Guess(s.ctx, "G1", s.alice.ID, "5678")
	s.Require().NoError(err)
	s.Require().True(result.Win)

	m, err := s.controller.CreateMatch(s.ctx, "G1")
	s.Require().NoError(err)
	s.Equal(model.PhaseForming, m.Phase)
}

func (s *ControllerSuite) TestCreateMatchSucceedsAfterCancel() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")

	_, err := s.controller.CancelMatch(s.ctx, "G1")
	s.Require().NoError(err)

	_, err = s.controller.CreateMatch(s.ctx, "G1")
	s.NoError(err)
}

// Join tests

func (s *ControllerSuite) TestJoinFirstPlayerStaysForming() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")

	m, err := s.controller.Join(s.ctx, "G1", s.alice)
	s.Require().NoError(err)
	s.Equal(model.PhaseForming, m.Phase)
	s.Len(m.Players, 1)
}

func (s *ControllerSuite) TestJoinSecondPlayerMovesToAwaitingSecrets() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)

	m, err := s.controller.Join(s.ctx, "G1", s.bob)
	s.Require().NoError(err)
	s.Equal(model.PhaseAwaitingSecrets, m.Phase)

	// Seat order is join order
	s.Equal(s.alice.ID, m.Players[0].Player.ID)
	s.Equal(s.bob.ID, m.Players[1].Player.ID)
}

func (s *ControllerSuite) TestJoinTwiceFails() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)

	_, err := s.controller.Join(s.ctx, "G1", s.alice)
	s.ErrorIs(err, model.ErrAlreadyJoined)
}

func (s *ControllerSuite) TestJoinFullMatchFails() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	carol := model.Player{ID: "player-carol", DisplayName: "Carol"}
	_, err := s.controller.Join(s.ctx, "G1", carol)
	s.ErrorIs(err, model.ErrMatchFull)
}

func (s *ControllerSuite) TestJoinMissingMatchFails() {
	_, err := s.controller.Join(s.ctx, "nowhere", s.alice)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

// CommitSecret tests

func (s *ControllerSuite) TestCommitSecretBeforeSecondJoinFails() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)

	_, err := s.controller.CommitSecretIn(s.ctx, "G1", s.alice.ID, "1234")
	s.ErrorIs(err, model.ErrMatchNotReady)
}

func (s *ControllerSuite) TestCommitSecretInvalidCodeFails() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	for _, code := range []string{"4560", "4467", "456", "abcd"} {
		_, err := s.controller.CommitSecretIn(s.ctx, "G1", s.alice.ID, code)
		s.ErrorIs(err, model.ErrInvalidCode)
	}
}

func (s *ControllerSuite) TestCommitSecretTwiceFails() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	_, err := s.controller.CommitSecretIn(s.ctx, "G1", s.alice.ID, "1234")
	s.Require().NoError(err)

	_, err = s.controller.CommitSecretIn(s.ctx, "G1", s.alice.ID, "9876")
	s.ErrorIs(err, model.ErrSecretAlreadySet)
}

func (s *ControllerSuite) TestCommitSecretUnknownPlayerFails() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	_, err := s.controller.CommitSecretIn(s.ctx, "G1", "player-carol", "1234")
	s.ErrorIs(err, model.ErrUnknownPlayer)
}

func (s *ControllerSuite) TestBothSecretsStartTheMatch() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	m, err := s.controller.CommitSecretIn(s.ctx, "G1", s.alice.ID, "1234")
	s.Require().NoError(err)
	s.Equal(model.PhaseAwaitingSecrets, m.Phase)

	m, err = s.controller.CommitSecretIn(s.ctx, "G1", s.bob.ID, "5678")
	s.Require().NoError(err)
	s.Equal(model.PhaseInProgress, m.Phase)
	s.Equal(0, m.TurnIdx) // first to join moves first
}

func (s *ControllerSuite) TestSecretIsImmutableAfterWin() {
	s.startedMatch("G1")
	_, err := s.controller.Guess(s.ctx, "G1", s.alice.ID, "5678")
	s.Require().NoError(err)

	_, err = s.controller.CommitSecretIn(s.ctx, "G1", s.alice.ID, "9876")
	s.ErrorIs(err, model.ErrMatchFinished)
}

// Scan routing tests

func (s *ControllerSuite) TestCommitSecretRoutesToAwaitingMatch() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	m, err := s.controller.CommitSecret(s.ctx, s.alice.ID, "1234")
	s.Require().NoError(err)
	s.Equal(model.MatchKey("G1"), m.Key)
	s.Equal("1234", m.Participant(s.alice.ID).Secret)
}

func (s *ControllerSuite) TestCommitSecretPicksOldestAwaitingMatch() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	s.clock.Advance(time.Minute)

	carol := model.Player{ID: "player-carol", DisplayName: "Carol"}
	_, _ = s.controller.CreateMatch(s.ctx, "G2")
	_, _ = s.controller.Join(s.ctx, "G2", s.alice)
	_, _ = s.controller.Join(s.ctx, "G2", carol)

	m, err := s.controller.CommitSecret(s.ctx, s.alice.ID, "1234")
	s.Require().NoError(err)
	s.Equal(model.MatchKey("G1"), m.Key)

	// Second submission lands in the remaining match
	m, err = s.controller.CommitSecret(s.ctx, s.alice.ID, "1234")
	s.Require().NoError(err)
	s.Equal(model.MatchKey("G2"), m.Key)
}

func (s *ControllerSuite) TestCommitSecretNoPendingMatchFails() {
	_, err := s.controller.CommitSecret(s.ctx, s.alice.ID, "1234")
	s.ErrorIs(err, model.ErrNoPendingSecret)
}

func (s *ControllerSuite) TestCommitSecretValidatesBeforeRouting() {
	_, err := s.controller.CommitSecret(s.ctx, s.alice.ID, "12x4")
	s.ErrorIs(err, model.ErrInvalidCode)
}

func (s *ControllerSuite) TestFindAwaitingSecret() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	m, err := s.controller.FindAwaitingSecret(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchKey("G1"), m.Key)

	_, err = s.controller.FindAwaitingSecret(s.ctx, "player-carol")
	s.ErrorIs(err, model.ErrNoPendingSecret)
}

// Guess tests

func (s *ControllerSuite) TestGuessBeforeSecretsFails() {
	_, _ = s.controller.CreateMatch(s.ctx, "G1")
	_, _ = s.controller.Join(s.ctx, "G1", s.alice)
	_, _ = s.controller.Join(s.ctx, "G1", s.bob)

	_, err := s.controller.Guess(s.ctx, "G1", s.alice.ID, "1234")
	s.ErrorIs(err, model.ErrNotInProgress)
}

func (s *ControllerSuite) TestGuessOutOfTurnFailsWithoutMutation() {
	s.startedMatch("G1")

	_, err := s.controller.Guess(s.ctx, "G1", s.bob.ID, "1234")
	s.ErrorIs(err, model.ErrNotYourTurn)

	m, err := s.controller.GetActiveMatch(s.ctx, "G1")
	s.Require().NoError(err)
	s.Equal(0, m.TurnIdx)
	s.Equal(model.PhaseInProgress, m.Phase)
}

func (s *ControllerSuite) TestGuessUnknownPlayerFails() {
	s.startedMatch("G1")

	_, err := s.controller.Guess(s.ctx, "G1", "player-carol", "1234")
	s.ErrorIs(err, model.ErrUnknownPlayer)
}

func (s *ControllerSuite) TestGuessInvalidCodeFails() {
	s.startedMatch("G1")

	_, err := s.controller.Guess(s.ctx, "G1", s.alice.ID, "5670")
	s.ErrorIs(err, model.ErrInvalidCode)
}

func (s *ControllerSuite) TestWinningGuessFinishesMatch() {
	s.startedMatch("G1")

	result, err := s.controller.Guess(s.ctx, "G1", s.alice.ID, "5678")
	s.Require().NoError(err)

	s.Equal(4, result.Values)
	s.Equal(4, result.Positions)
	s.True(result.Win)
	s.Nil(result.NextPlayer)

	stored, err := s.storage.GetMatch(s.ctx, "G1")
	s.Require().NoError(err)
	s.Equal(model.PhaseFinished, stored.Phase)
	s.Require().NotNil(stored.Winner)
	s.Equal(s.alice.ID, *stored.Winner)
}

func (s *ControllerSuite) TestNonWinningGuessPassesTurn() {
	s.startedMatch("G1")

	// Against "5678": three right digits, three right places
	result, err := s.controller.Guess(s.ctx, "G1", s.alice.ID, "5679")
	s.Require().NoError(err)

	s.Equal(3, result.Values)
	s.Equal(3, result.Positions)
	s.Equal([]string{"5", "6", "7"}, result.Placed)
	s.False(result.Win)
	s.Require().NotNil(result.NextPlayer)
	s.Equal(s.bob.ID, result.NextPlayer.ID)

	// Bob may now move; Alice may not
	_, err = s.controller.Guess(s.ctx, "G1", s.alice.ID, "5678")
	s.ErrorIs(err, model.ErrNotYourTurn)

	result, err = s.controller.Guess(s.ctx, "G1", s.bob.ID, "1234")
	s.Require().NoError(err)
	s.True(result.Win)
}

func (s *ControllerSuite) TestGuessAfterFinishFails() {
	s.startedMatch("G1")
	_, _ = s.controller.Guess(s.ctx, "G1", s.alice.ID, "5678")

	_, err := s.controller.Guess(s.ctx, "G1", s.bob.ID, "1234")
	s.ErrorIs(err, model.ErrMatchFinished)
}

// CancelMatch / GetActiveMatch tests

func (s *ControllerSuite) TestCancelMarksNoWinner() {
	s.startedMatch("G1")

	m, err := s.controller.CancelMatch(s.ctx, "G1")
	s.Require().NoError(err)
	s.Equal(model.PhaseFinished, m.Phase)
	s.True(m.Cancelled)
	s.Nil(m.Winner)

	_, err = s.controller.GetActiveMatch(s.ctx, "G1")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ControllerSuite) TestCancelAbsentKeyFails() {
	_, err := s.controller.CancelMatch(s.ctx, "nowhere")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ControllerSuite) TestGetActiveMatchHidesFinished() {
	s.startedMatch("G1")
	_, _ = s.controller.Guess(s.ctx, "G1", s.alice.ID, "5678")

	_, err := s.controller.GetActiveMatch(s.ctx, "G1")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

// End-to-end scenario from the rules: create, join both, commit both,
// first guess wins outright.
func (s *ControllerSuite) TestFullDuelScenario() {
	_, err := s.controller.CreateMatch(s.ctx, "G1")
	s.Require().NoError(err)

	_, err = s.controller.Join(s.ctx, "G1", s.alice)
	s.Require().NoError(err)
	m, err := s.controller.Join(s.ctx, "G1", s.bob)
	s.Require().NoError(err)
	s.Equal(model.PhaseAwaitingSecrets, m.Phase)

	_, err = s.controller.CommitSecret(s.ctx, s.alice.ID, "1234")
	s.Require().NoError(err)
	m, err = s.controller.CommitSecret(s.ctx, s.bob.ID, "5678")
	s.Require().NoError(err)
	s.Equal(model.PhaseInProgress, m.Phase)

	result, err := s.controller.Guess(s.ctx, "G1", s.alice.ID, "5678")
	s.Require().NoError(err)
	s.Equal(4, result.Values)
	s.Equal(4, result.Positions)
	s.True(result.Win)
}
