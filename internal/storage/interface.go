package storage

import (
	"context"

	"github.com/playnvp/nvpduel/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Match operations
	SaveMatch(ctx context.Context, match *model.Match) error
	GetMatch(ctx context.Context, key model.MatchKey) (*model.Match, error)
	DeleteMatch(ctx context.Context, key model.MatchKey) error
	// ListMatches returns every stored match. Callers must not rely on
	// the order; the match controller sorts by creation time.
	ListMatches(ctx context.Context) ([]*model.Match, error)
}
