package database

import (
	"database/sql"
	"errors"
	"time"
)

// GameState is the latest stored snapshot of a game.
type GameState struct {
	GameID        string    `db:"game_id"`
	StateJSON     string    `db:"state_json"`
	Seq           int       `db:"seq"`
	Turn          int       `db:"turn"`
	CurrentPlayer int       `db:"current_player"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Action is one logged command.
type Action struct {
	ID         int64     `db:"id"`
	GameID     string    `db:"game_id"`
	Seq        int       `db:"seq"`
	Player     int       `db:"player"`
	ActionType string    `db:"action_type"`
	ActionJSON string    `db:"action_json"`
	CreatedAt  time.Time `db:"created_at"`
}

// ErrStateNotFound is returned when a game has no stored snapshot yet.
var ErrStateNotFound = errors.New("game state not found")

// SaveGameState upserts the latest snapshot of a game.
func (db *DB) SaveGameState(gameID, stateJSON string, seq, turn, current int) error {
	_, err := db.conn.Exec(`
		INSERT INTO game_state (game_id, state_json, seq, turn, current_player, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			state_json = excluded.state_json,
			seq = excluded.seq,
			turn = excluded.turn,
			current_player = excluded.current_player,
			updated_at = excluded.updated_at
	`, gameID, stateJSON, seq, turn, current, time.Now())
	return err
}

// GetGameState retrieves the latest snapshot of a game.
func (db *DB) GetGameState(gameID string) (*GameState, error) {
	var st GameState
	err := db.conn.Get(&st, `
		SELECT game_id, state_json, seq, turn, current_player, updated_at
		FROM game_state WHERE game_id = ?
	`, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// AppendAction logs the command applied as number seq. Sequence numbers are
// unique per game.
func (db *DB) AppendAction(gameID string, seq, player int, actionType, actionJSON string) error {
	_, err := db.conn.Exec(`
		INSERT INTO game_actions (game_id, seq, player, action_type, action_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, gameID, seq, player, actionType, actionJSON, time.Now())
	return err
}

// ListActions returns a game's command log in sequence order.
func (db *DB) ListActions(gameID string) ([]*Action, error) {
	actions := []*Action{}
	err := db.conn.Select(&actions, `
		SELECT id, game_id, seq, player, action_type, action_json, created_at
		FROM game_actions
		WHERE game_id = ?
		ORDER BY seq ASC
	`, gameID)
	return actions, err
}
