package database

import (
	"errors"
	"time"
)

// Controllers recorded for a seat. AI seats append the personality,
// e.g. "ai:aggressive".
const (
	ControllerHuman = "human"
	ControllerAI    = "ai"
)

// GamePlayer represents a seat in a game.
type GamePlayer struct {
	GameID     string    `db:"game_id"`
	Slot       int       `db:"slot"`
	Name       string    `db:"name"`
	Controller string    `db:"controller"`
	JoinedAt   time.Time `db:"joined_at"`
}

// ErrSlotTaken is returned when a seat is added twice.
var ErrSlotTaken = errors.New("slot already taken")

// AddGamePlayer records who controls the given player slot.
func (db *DB) AddGamePlayer(gameID string, slot int, name, controller string) error {
	var exists int
	if err := db.conn.Get(&exists, `SELECT COUNT(*) FROM game_players WHERE game_id = ? AND slot = ?`, gameID, slot); err != nil {
		return err
	}
	if exists > 0 {
		return ErrSlotTaken
	}

	_, err := db.conn.Exec(`
		INSERT INTO game_players (game_id, slot, name, controller, joined_at)
		VALUES (?, ?, ?, ?, ?)
	`, gameID, slot, name, controller, time.Now())
	return err
}

// GetGamePlayers returns all seats of a game ordered by slot.
func (db *DB) GetGamePlayers(gameID string) ([]*GamePlayer, error) {
	players := []*GamePlayer{}
	err := db.conn.Select(&players, `
		SELECT game_id, slot, name, controller, joined_at
		FROM game_players
		WHERE game_id = ?
		ORDER BY slot
	`, gameID)
	return players, err
}
