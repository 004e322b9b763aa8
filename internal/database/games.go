package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Game status values.
const (
	StatusActive    = "active"    // being played
	StatusFinished  = "finished"  // a winner was declared
	StatusAbandoned = "abandoned" // stopped without a winner
)

// NoWinner is stored in the winner column while a game is undecided.
const NoWinner = -1

// GameInfo contains basic game information for listings.
type GameInfo struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	MapID       string    `db:"map_id"`
	Seed        int64     `db:"seed"` // uint64 seed stored bit for bit
	Status      string    `db:"status"`
	Winner      int       `db:"winner"`
	PlayerCount int       `db:"player_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Game contains full game data.
type Game struct {
	GameInfo
	SetupJSON string       `db:"setup_json"`
	EndedAt   sql.NullTime `db:"ended_at"`
}

// SeedValue returns the game's seed as the engine uses it.
func (g *GameInfo) SeedValue() uint64 {
	return uint64(g.Seed)
}

// ErrGameNotFound is returned when a game is not found.
var ErrGameNotFound = errors.New("game not found")

// CreateGame inserts a new active game. An empty id gets a fresh UUID.
func (db *DB) CreateGame(id, name, mapID string, seed uint64, setupJSON string) (string, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	_, err := db.conn.Exec(`
		INSERT INTO games (id, name, map_id, seed, setup_json, status, winner, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, name, mapID, int64(seed), setupJSON, StatusActive, NoWinner, now, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetGame retrieves a game by ID.
func (db *DB) GetGame(id string) (*Game, error) {
	var g Game
	err := db.conn.Get(&g, `
		SELECT g.id, g.name, g.map_id, g.seed, g.setup_json, g.status, g.winner,
		       g.created_at, g.updated_at, g.ended_at,
		       (SELECT COUNT(*) FROM game_players WHERE game_id = g.id) AS player_count
		FROM games g WHERE g.id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGames returns games newest first. An empty status lists every game.
func (db *DB) ListGames(status string) ([]*GameInfo, error) {
	query := `
		SELECT g.id, g.name, g.map_id, g.seed, g.status, g.winner, g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM game_players WHERE game_id = g.id) AS player_count
		FROM games g`
	var args []interface{}
	if status != "" {
		query += ` WHERE g.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY g.created_at DESC, g.id`

	games := []*GameInfo{}
	if err := db.conn.Select(&games, query, args...); err != nil {
		return nil, err
	}
	return games, nil
}

// UpdateGameStatus sets a game's status and winner. Finishing a game also
// stamps ended_at.
func (db *DB) UpdateGameStatus(gameID, status string, winner int) error {
	now := time.Now()
	var ended interface{}
	if status != StatusActive {
		ended = now
	}
	res, err := db.conn.Exec(`
		UPDATE games SET status = ?, winner = ?, updated_at = ?, ended_at = ? WHERE id = ?
	`, status, winner, now, ended, gameID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGameNotFound
	}
	return nil
}

// DeleteGame permanently deletes a game and all associated data.
func (db *DB) DeleteGame(gameID string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Children first so the delete also works with foreign keys off.
	for _, table := range []string{"game_history", "game_actions", "game_state", "game_players"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE game_id = ?`, gameID); err != nil {
			return err
		}
	}

	res, err := tx.Exec(`DELETE FROM games WHERE id = ?`, gameID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGameNotFound
	}

	return tx.Commit()
}
