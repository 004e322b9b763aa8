package protocol

import "frontier/internal/game"

// ==================== Client Payloads ====================

// SeatInfo describes who controls a player slot.
type SeatInfo struct {
	Name        string `json:"name"`
	AI          bool   `json:"ai"`
	Personality string `json:"personality,omitempty"`
}

// NewGamePayload is sent to start a new game. An empty map id generates
// a map from the seed.
type NewGamePayload struct {
	Name    string     `json:"name,omitempty"`
	MapID   string     `json:"mapId,omitempty"`
	Seed    uint64     `json:"seed,omitempty"`
	Width   int        `json:"width,omitempty"`
	Height  int        `json:"height,omitempty"`
	Players int        `json:"players,omitempty"`
	Seats   []SeatInfo `json:"seats,omitempty"`
	Viewer  int        `json:"viewer"` // player seen by this client, -1 for everything
}

// LoadGamePayload attaches the client to an existing game.
type LoadGamePayload struct {
	GameID string `json:"gameId"`
	Viewer int    `json:"viewer"`
}

// CommandPayload carries one player action.
type CommandPayload struct {
	Command game.Command `json:"command"`
}

// GetHistoryPayload asks for history entries from index Since on.
type GetHistoryPayload struct {
	Since int `json:"since"`
}

// ==================== Server Payloads ====================

// MapInfo describes a built-in map.
type MapInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Players int    `json:"players"`
}

// WelcomePayload is sent when a client connects.
type WelcomePayload struct {
	ClientID string    `json:"clientId"`
	Version  string    `json:"version"`
	Maps     []MapInfo `json:"maps"`
}

// GameCreatedPayload is the response when a game is created or loaded.
type GameCreatedPayload struct {
	GameID string     `json:"gameId"`
	Name   string     `json:"name"`
	MapID  string     `json:"mapId"`
	Seed   uint64     `json:"seed"`
	Viewer int        `json:"viewer"`
	Seats  []SeatInfo `json:"seats"`
}

// GameListItem is one entry of the game list.
type GameListItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	MapID   string `json:"mapId"`
	Status  string `json:"status"`
	Winner  int    `json:"winner"`
	Players int    `json:"players"`
}

// GameListPayload lists known games.
type GameListPayload struct {
	Games []GameListItem `json:"games"`
}

// StatePayload is the world as the client's viewer may see it.
type StatePayload struct {
	GameID string         `json:"gameId"`
	Viewer int            `json:"viewer"`
	Seq    int            `json:"seq"`
	Winner int            `json:"winner"`
	State  *game.Snapshot `json:"state"`
}

// CommandResultPayload reports the outcome of a command.
type CommandResultPayload struct {
	Success bool          `json:"success"`
	Command game.Command  `json:"command"`
	Outcome *game.Outcome `json:"outcome,omitempty"`
	Code    ErrorCode     `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// HistoryEntry is one line of the history feed.
type HistoryEntry struct {
	Turn    int    `json:"turn"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HistoryPayload carries history entries; Next is the index to ask for next.
type HistoryPayload struct {
	GameID string         `json:"gameId"`
	Events []HistoryEntry `json:"events"`
	Next   int            `json:"next"`
}

// GameOverPayload announces the winner.
type GameOverPayload struct {
	GameID     string `json:"gameId"`
	Winner     int    `json:"winner"`
	WinnerName string `json:"winnerName"`
	Turn       int    `json:"turn"`
}

// RuleErrorCode maps an engine error to a wire code.
func RuleErrorCode(err error) (ErrorCode, bool) {
	if re, ok := game.AsRuleError(err); ok {
		return ErrorCode(re.Code), true
	}
	return "", false
}
