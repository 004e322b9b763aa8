package session

import "frontier/internal/database"

// Store persists sessions. *database.DB implements it; a nil Store keeps
// sessions in memory only.
type Store interface {
	CreateGame(id, name, mapID string, seed uint64, setupJSON string) (string, error)
	GetGame(id string) (*database.Game, error)
	ListGames(status string) ([]*database.GameInfo, error)
	UpdateGameStatus(gameID, status string, winner int) error
	DeleteGame(gameID string) error

	AddGamePlayer(gameID string, slot int, name, controller string) error
	GetGamePlayers(gameID string) ([]*database.GamePlayer, error)

	SaveGameState(gameID, stateJSON string, seq, turn, current int) error
	GetGameState(gameID string) (*database.GameState, error)

	AppendAction(gameID string, seq, player int, actionType, actionJSON string) error
	ListActions(gameID string) ([]*database.Action, error)

	AddHistoryEvent(gameID string, turn, player int, eventType, message string) error
	GetGameHistorySince(gameID string, afterID int64) ([]*database.HistoryEvent, error)
}

var _ Store = (*database.DB)(nil)
