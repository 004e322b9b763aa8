package database

import "time"

// HistoryEvent represents a single game event in the history log.
type HistoryEvent struct {
	ID        int64     `db:"id" json:"id"`
	GameID    string    `db:"game_id" json:"gameId"`
	Turn      int       `db:"turn" json:"turn"`
	Player    int       `db:"player" json:"player"`
	EventType string    `db:"event_type" json:"eventType"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Event types for game history
const (
	EventGameStart          = "game_start"
	EventTurnStart          = "turn_start"
	EventSettlementFounded  = "settlement_founded"
	EventSettlementGrew     = "settlement_grew"
	EventSettlementCaptured = "settlement_captured"
	EventUnitBought         = "unit_bought"
	EventUnitsDestroyed     = "units_destroyed"
	EventImprovementBuilt   = "improvement_built"
	EventResearchStarted    = "research_started"
	EventTechUnlocked       = "tech_unlocked"
	EventPlayerEliminated   = "player_eliminated"
	EventGameEnd            = "game_end"
)

// AddHistoryEvent adds a new event to the game history.
func (db *DB) AddHistoryEvent(gameID string, turn, player int, eventType, message string) error {
	_, err := db.conn.Exec(`
		INSERT INTO game_history (game_id, turn, player, event_type, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, gameID, turn, player, eventType, message, time.Now())
	return err
}

// GetGameHistory retrieves all history events for a game, ordered chronologically.
func (db *DB) GetGameHistory(gameID string) ([]*HistoryEvent, error) {
	return db.GetGameHistorySince(gameID, 0)
}

// GetGameHistorySince retrieves history events after a given ID (for incremental updates).
func (db *DB) GetGameHistorySince(gameID string, afterID int64) ([]*HistoryEvent, error) {
	events := []*HistoryEvent{}
	err := db.conn.Select(&events, `
		SELECT id, game_id, turn, player, event_type, message, created_at
		FROM game_history
		WHERE game_id = ? AND id > ?
		ORDER BY id ASC
	`, gameID, afterID)
	return events, err
}
