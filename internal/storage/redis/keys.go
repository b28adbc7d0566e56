package redis

import (
	"fmt"

	"github.com/playnvp/nvpduel/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "nvpduel"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// matchKey returns the Redis key for a Match
func matchKey(key model.MatchKey) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, key)
}

// matchIndexKey returns the Redis key for the SET of stored match keys
func matchIndexKey() string {
	return fmt.Sprintf("%s:idx:matches", keyPrefix)
}
