package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"frontier/internal/ai"
	"frontier/internal/database"
	"frontier/internal/game"
	"frontier/pkg/maps"
)

// Options configures a new session.
type Options struct {
	Name  string
	MapID string // registered map id; empty or "generated" builds one from Seed
	Seed  uint64 // zero picks a time based seed
	Seats []Seat // defaults to one human against AI opponents

	// Generator settings used when the map is generated. Players is taken
	// from the number of seats when seats are given.
	Generator maps.GeneratorOptions
}

// GeneratedMapID asks for a procedurally generated map.
const GeneratedMapID = "generated"

// Summary is the listing form of a session.
type Summary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	MapID   string `json:"mapId"`
	Seed    uint64 `json:"seed"`
	Status  string `json:"status"`
	Winner  int    `json:"winner"`
	Players int    `json:"players"`
	Loaded  bool   `json:"loaded"`
}

// Manager holds the sessions of one process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    Store
}

// NewManager creates a manager. store may be nil.
func NewManager(store Store) *Manager {
	if len(maps.Registry) == 0 {
		if err := maps.LoadAll(); err != nil {
			log.Error().Err(err).Msg("failed to load embedded maps")
		}
	}
	return &Manager{sessions: make(map[string]*Session), store: store}
}

// resolveMap returns the map named by opts, generating one when asked.
func resolveMap(opts *Options) (*maps.Map, error) {
	if opts.MapID == "" || opts.MapID == GeneratedMapID || strings.HasPrefix(opts.MapID, "gen-") {
		gen := opts.Generator
		if gen.Width == 0 {
			gen = maps.DefaultOptions()
		}
		gen.Seed = opts.Seed
		if len(opts.Seats) > 0 {
			gen.Players = len(opts.Seats)
		}
		return maps.NewGenerator(gen).Generate()
	}
	m := maps.Get(opts.MapID)
	if m == nil {
		return nil, fmt.Errorf("unknown map %q", opts.MapID)
	}
	return m, nil
}

// DefaultSeats seats one human in slot 0 and balanced AI in the rest.
func DefaultSeats(players int) []Seat {
	seats := make([]Seat, players)
	for i := range seats {
		if i == 0 {
			seats[i] = Seat{Name: "Player 1"}
			continue
		}
		seats[i] = Seat{Name: fmt.Sprintf("AI %d", i), AI: true, Personality: ai.Balanced}
	}
	return seats
}

// Create starts a new session and persists its setup.
func (m *Manager) Create(opts Options) (*Session, error) {
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	mp, err := resolveMap(&opts)
	if err != nil {
		return nil, err
	}
	seats := opts.Seats
	if len(seats) == 0 {
		seats = DefaultSeats(mp.Players())
	}
	if opts.Name == "" {
		opts.Name = mp.Name
	}

	s, err := newSession(uuid.New().String(), opts.Name, mp.ID, opts.Seed, seats, mp.Setup(), m.store)
	if err != nil {
		return nil, err
	}
	s.history = append(s.history, Event{Turn: 1, Player: 0, Type: database.EventGameStart,
		Message: fmt.Sprintf("%s begins on %s with %d players", s.Name, mp.Name, len(seats))})

	if m.store != nil {
		if err := m.persistNew(s); err != nil {
			return nil, fmt.Errorf("persist new game: %w", err)
		}
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Info().Str("game", s.ID).Str("map", s.MapID).Uint64("seed", s.Seed).Int("players", len(seats)).Msg("game created")
	return s, nil
}

func (m *Manager) persistNew(s *Session) error {
	setupJSON, err := json.Marshal(s.Setup)
	if err != nil {
		return err
	}
	if _, err := m.store.CreateGame(s.ID, s.Name, s.MapID, s.Seed, string(setupJSON)); err != nil {
		return err
	}
	for i, seat := range s.Seats {
		if err := m.store.AddGamePlayer(s.ID, i, seat.Name, seat.Controller()); err != nil {
			return err
		}
	}
	for _, e := range s.history {
		if err := m.store.AddHistoryEvent(s.ID, e.Turn, e.Player, e.Type, e.Message); err != nil {
			return err
		}
	}
	return s.saveState()
}

// Get returns a loaded session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Load returns the session with id, rebuilding it from the store by
// replaying its command log when it is not in memory.
func (m *Manager) Load(id string) (*Session, error) {
	if s, ok := m.Get(id); ok {
		return s, nil
	}
	if m.store == nil {
		return nil, ErrNotFound
	}

	g, err := m.store.GetGame(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var setup game.Setup
	if err := json.Unmarshal([]byte(g.SetupJSON), &setup); err != nil {
		return nil, fmt.Errorf("decode setup: %w", err)
	}
	players, err := m.store.GetGamePlayers(id)
	if err != nil {
		return nil, err
	}
	seats := make([]Seat, len(players))
	for i, p := range players {
		seats[i] = ParseSeat(p.Name, p.Controller)
	}
	commands, err := m.commandLog(id)
	if err != nil {
		return nil, err
	}

	s, err := newSession(g.ID, g.Name, g.MapID, g.SeedValue(), seats, setup, m.store)
	if err != nil {
		return nil, err
	}
	w, err := Replay(setup, s.Seed, commands)
	if err != nil {
		return nil, err
	}
	s.World = w
	s.Seq = len(commands)
	s.commands = commands
	s.Winner = g.Winner
	if winner, ok := w.CheckWin(); ok {
		s.Winner = winner
	}
	events, err := m.store.GetGameHistorySince(id, 0)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		s.history = append(s.history, Event{Turn: e.Turn, Player: e.Player, Type: e.EventType, Message: e.Message})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	m.sessions[id] = s
	log.Info().Str("game", id).Int("commands", len(commands)).Msg("game loaded from log")
	return s, nil
}

func (m *Manager) commandLog(id string) ([]game.Command, error) {
	actions, err := m.store.ListActions(id)
	if err != nil {
		return nil, err
	}
	commands := make([]game.Command, 0, len(actions))
	for i, a := range actions {
		if a.Seq != i {
			return nil, fmt.Errorf("command log has a gap at seq %d", i)
		}
		var cmd game.Command
		if err := json.Unmarshal([]byte(a.ActionJSON), &cmd); err != nil {
			return nil, fmt.Errorf("decode command %d: %w", a.Seq, err)
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// Verify replays the stored command log of a game and compares the result
// with its stored snapshot byte for byte.
func (m *Manager) Verify(id string) error {
	if m.store == nil {
		s, ok := m.Get(id)
		if !ok {
			return ErrNotFound
		}
		return s.Verify()
	}
	g, err := m.store.GetGame(id)
	if err != nil {
		return err
	}
	var setup game.Setup
	if err := json.Unmarshal([]byte(g.SetupJSON), &setup); err != nil {
		return fmt.Errorf("decode setup: %w", err)
	}
	commands, err := m.commandLog(id)
	if err != nil {
		return err
	}
	st, err := m.store.GetGameState(id)
	if err != nil {
		return err
	}
	if st.Seq != len(commands) {
		return fmt.Errorf("%w: snapshot is at seq %d, log has %d commands", ErrMismatch, st.Seq, len(commands))
	}
	return VerifySnapshot(setup, g.SeedValue(), commands, []byte(st.StateJSON))
}

// List returns the sessions known to the store and the ones loaded in
// memory, newest stored games first.
func (m *Manager) List() ([]Summary, error) {
	var out []Summary
	seen := make(map[string]bool)
	if m.store != nil {
		games, err := m.store.ListGames("")
		if err != nil {
			return nil, err
		}
		for _, g := range games {
			_, loaded := m.Get(g.ID)
			out = append(out, Summary{ID: g.ID, Name: g.Name, MapID: g.MapID, Seed: g.SeedValue(),
				Status: g.Status, Winner: g.Winner, Players: g.PlayerCount, Loaded: loaded})
			seen[g.ID] = true
		}
	}

	m.mu.RLock()
	var memory []Summary
	for id, s := range m.sessions {
		if seen[id] {
			continue
		}
		s.mu.Lock()
		memory = append(memory, Summary{ID: s.ID, Name: s.Name, MapID: s.MapID, Seed: s.Seed,
			Status: statusOf(s.Winner), Winner: s.Winner, Players: len(s.Seats), Loaded: true})
		s.mu.Unlock()
	}
	m.mu.RUnlock()
	sort.Slice(memory, func(i, j int) bool { return memory[i].ID < memory[j].ID })

	if out == nil {
		out = []Summary{}
	}
	return append(out, memory...), nil
}

func statusOf(winner int) string {
	if winner != NoWinner {
		return database.StatusFinished
	}
	return database.StatusActive
}

// Delete drops a session from memory and the store.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, loaded := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.store == nil {
		if !loaded {
			return ErrNotFound
		}
		return nil
	}
	if err := m.store.DeleteGame(id); err != nil {
		return err
	}
	log.Info().Str("game", id).Msg("game deleted")
	return nil
}
