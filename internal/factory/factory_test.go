package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/playnvp/nvpduel/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) createPlayer(id, name string) model.Player {
	return model.Player{
		ID:          model.PlayerID(id),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.app.MockClock.Now(),
	}
}

// Complete duel flow from match creation through a winning guess
func (s *IntegrationSuite) TestCompleteDuelFlow() {
	alice := s.createPlayer("alice", "Alice")
	bob := s.createPlayer("bob", "Bob")

	// Step 1: Create a match with a generated room code
	s.app.MockRandom.QueueString("ROOM42")
	match, err := s.app.MatchController.CreateMatch(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(model.MatchKey("ROOM42"), match.Key)
	s.Equal(model.PhaseForming, match.Phase)

	// Step 2: Both players join
	match, err = s.app.MatchController.Join(s.ctx, match.Key, alice)
	s.Require().NoError(err)
	s.Equal(model.PhaseForming, match.Phase)

	match, err = s.app.MatchController.Join(s.ctx, match.Key, bob)
	s.Require().NoError(err)
	s.Equal(model.PhaseAwaitingSecrets, match.Phase)

	// Step 3: Both players commit secrets, second commit starts play
	match, err = s.app.MatchController.CommitSecretIn(s.ctx, match.Key, alice.ID, "1234")
	s.Require().NoError(err)
	s.Equal(model.PhaseAwaitingSecrets, match.Phase)

	match, err = s.app.MatchController.CommitSecretIn(s.ctx, match.Key, bob.ID, "5678")
	s.Require().NoError(err)
	s.Equal(model.PhaseInProgress, match.Phase)
	s.Equal(alice.ID, match.CurrentPlayer().Player.ID)

	// Step 4: Alice misses, turn passes to Bob
	result, err := s.app.MatchController.Guess(s.ctx, match.Key, alice.ID, "5679")
	s.Require().NoError(err)
	s.False(result.Win)
	s.Equal(3, result.Values)
	s.Equal(3, result.Positions)
	s.Require().NotNil(result.NextPlayer)
	s.Equal(bob.ID, result.NextPlayer.ID)

	// Step 5: Bob cracks Alice's code and wins
	result, err = s.app.MatchController.Guess(s.ctx, match.Key, bob.ID, "1234")
	s.Require().NoError(err)
	s.True(result.Win)
	s.Nil(result.NextPlayer)

	stored, err := s.app.Storage.GetMatch(s.ctx, match.Key)
	s.Require().NoError(err)
	s.Equal(model.PhaseFinished, stored.Phase)
	s.Require().NotNil(stored.Winner)
	s.Equal(bob.ID, *stored.Winner)
}

// Keyless secret routing through the app wiring
func (s *IntegrationSuite) TestKeylessSecretRouting() {
	alice := s.createPlayer("alice", "Alice")
	bob := s.createPlayer("bob", "Bob")

	match, err := s.app.MatchController.CreateMatch(s.ctx, "duel-1")
	s.Require().NoError(err)
	_, err = s.app.MatchController.Join(s.ctx, match.Key, alice)
	s.Require().NoError(err)
	_, err = s.app.MatchController.Join(s.ctx, match.Key, bob)
	s.Require().NoError(err)

	routed, err := s.app.MatchController.CommitSecret(s.ctx, alice.ID, "1234")
	s.Require().NoError(err)
	s.Equal(model.MatchKey("duel-1"), routed.Key)

	routed, err = s.app.MatchController.CommitSecret(s.ctx, bob.ID, "5678")
	s.Require().NoError(err)
	s.Equal(model.PhaseInProgress, routed.Phase)
}

// Auth and match services share the same storage
func (s *IntegrationSuite) TestAuthAndMatchSharedStorage() {
	session, err := s.app.AuthService.CreateGuestPlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	match, err := s.app.MatchController.CreateMatch(s.ctx, "duel-1")
	s.Require().NoError(err)

	match, err = s.app.MatchController.Join(s.ctx, match.Key, session.Player)
	s.Require().NoError(err)
	s.Len(match.Players, 1)
	s.Equal(session.Player.ID, match.Players[0].Player.ID)

	stored, err := s.app.Storage.GetPlayer(s.ctx, session.Player.ID)
	s.Require().NoError(err)
	s.Equal("Alice", stored.DisplayName)
}

// Cancelling an active match frees the key for a new one
func (s *IntegrationSuite) TestCancelFreesKey() {
	alice := s.createPlayer("alice", "Alice")

	match, err := s.app.MatchController.CreateMatch(s.ctx, "duel-1")
	s.Require().NoError(err)
	_, err = s.app.MatchController.Join(s.ctx, match.Key, alice)
	s.Require().NoError(err)

	cancelled, err := s.app.MatchController.CancelMatch(s.ctx, "duel-1")
	s.Require().NoError(err)
	s.True(cancelled.Cancelled)

	_, err = s.app.MatchController.CreateMatch(s.ctx, "duel-1")
	s.Require().NoError(err)
}
