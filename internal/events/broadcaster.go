package events

import (
	"encoding/json"
	"log/slog"

	"github.com/playnvp/nvpduel/internal/model"
)

// Event names sent over the match stream
const (
	EventPlayerJoined   = "player-joined"
	EventMatchStarted   = "match-started"
	EventGuessResult    = "guess-result"
	EventMatchWon       = "match-won"
	EventMatchCancelled = "match-cancelled"
)

// Broadcaster pushes match updates to SSE clients
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// broadcastJSON marshals payload and sends it as an event to all match clients.
// A match without a hub means nobody is watching, which is fine.
func (b *Broadcaster) broadcastJSON(matchKey model.MatchKey, eventName string, payload any) {
	hub := b.hubManager.GetHub(matchKey)
	if hub == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("sse failed to encode event payload",
			slog.String("match", string(matchKey)),
			slog.String("event", eventName),
			slog.Any("error", err))
		return
	}

	hub.BroadcastEvent(eventName, string(data))
}

// BroadcastPlayerJoined announces that a player has taken a seat
func (b *Broadcaster) BroadcastPlayerJoined(match *model.Match, player model.Player) {
	b.broadcastJSON(match.Key, EventPlayerJoined, map[string]any{
		"player_id":    player.ID,
		"display_name": player.DisplayName,
		"player_count": len(match.Players),
	})
}

// BroadcastMatchStarted announces that both secrets are in and play has begun
func (b *Broadcaster) BroadcastMatchStarted(match *model.Match) {
	first := match.CurrentPlayer()
	payload := map[string]any{
		"phase": string(match.Phase),
	}
	if first != nil {
		payload["first_turn"] = first.Player.ID
		payload["first_turn_name"] = first.Player.DisplayName
	}
	b.broadcastJSON(match.Key, EventMatchStarted, payload)
}

// BroadcastGuessResult announces the outcome of a guess
func (b *Broadcaster) BroadcastGuessResult(result *model.GuessResult) {
	payload := map[string]any{
		"player_id":    result.Player.ID,
		"display_name": result.Player.DisplayName,
		"code":         result.Code,
		"values":       result.Values,
		"positions":    result.Positions,
		"placed":       result.Placed,
		"win":          result.Win,
	}
	if result.NextPlayer != nil {
		payload["next_turn"] = result.NextPlayer.ID
	}
	b.broadcastJSON(result.MatchKey, EventGuessResult, payload)

	if result.Win {
		b.broadcastJSON(result.MatchKey, EventMatchWon, map[string]any{
			"winner_id":   result.Player.ID,
			"winner_name": result.Player.DisplayName,
			"code":        result.Code,
		})
	}
}

// BroadcastMatchCancelled announces that the match was torn down, then closes the hub
func (b *Broadcaster) BroadcastMatchCancelled(matchKey model.MatchKey) {
	b.broadcastJSON(matchKey, EventMatchCancelled, map[string]any{
		"match": string(matchKey),
	})
	b.hubManager.RemoveHub(matchKey)
}
