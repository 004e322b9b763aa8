package database

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Games: one row per match; setup_json holds the starting terrain and spawns
			CREATE TABLE games (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				map_id TEXT NOT NULL,
				seed INTEGER NOT NULL,
				setup_json TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'active',
				winner INTEGER NOT NULL DEFAULT -1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				ended_at DATETIME
			);
			CREATE INDEX idx_games_status ON games(status);

			-- Seats: who controls each player slot
			CREATE TABLE game_players (
				game_id TEXT NOT NULL,
				slot INTEGER NOT NULL,
				name TEXT NOT NULL,
				controller TEXT NOT NULL,
				joined_at DATETIME NOT NULL,
				PRIMARY KEY (game_id, slot),
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);

			-- Latest snapshot of each game
			CREATE TABLE game_state (
				game_id TEXT PRIMARY KEY,
				state_json TEXT NOT NULL,
				seq INTEGER NOT NULL,
				turn INTEGER NOT NULL,
				current_player INTEGER NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);

			-- Ordered command log for replay
			CREATE TABLE game_actions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id TEXT NOT NULL,
				seq INTEGER NOT NULL,
				player INTEGER NOT NULL,
				action_type TEXT NOT NULL,
				action_json TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);
			CREATE UNIQUE INDEX idx_game_actions_seq ON game_actions(game_id, seq);
		`,
	},
	{
		id:   2,
		name: "add_game_history",
		sql: `
			-- Human readable event feed shown next to the board
			CREATE TABLE game_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id TEXT NOT NULL,
				turn INTEGER NOT NULL,
				player INTEGER NOT NULL,
				event_type TEXT NOT NULL,
				message TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_game_history_game ON game_history(game_id, id);
		`,
	},
}
