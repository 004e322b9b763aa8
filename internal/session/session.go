// Package session runs games on top of the rules engine: it seeds every
// command's random source from the game seed and the command's sequence
// number, drives AI seats, records history, and persists the command log
// and snapshots so any game can be replayed exactly.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"frontier/internal/ai"
	"frontier/internal/database"
	"frontier/internal/game"
)

// NoWinner marks an undecided game.
const NoWinner = database.NoWinner

// aiSalt separates the AI's decision randomness from command randomness.
const aiSalt = 0x5DEECE66D

// DefaultAITurns bounds how many consecutive AI turns RunAI plays.
const DefaultAITurns = 32

var (
	// ErrGameOver is returned for commands sent after a winner was declared.
	ErrGameOver = errors.New("game is over")
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
)

// Seat describes who controls a player slot.
type Seat struct {
	Name        string         `json:"name"`
	AI          bool           `json:"ai"`
	Personality ai.Personality `json:"personality,omitempty"`
}

// Controller returns the stored form of the seat's controller.
func (s Seat) Controller() string {
	if s.AI {
		return database.ControllerAI + ":" + string(s.Personality)
	}
	return database.ControllerHuman
}

// ParseSeat rebuilds a seat from its stored name and controller.
func ParseSeat(name, controller string) Seat {
	kind, personality, _ := strings.Cut(controller, ":")
	if kind != database.ControllerAI {
		return Seat{Name: name}
	}
	p := ai.Personality(personality)
	if !p.Valid() {
		p = ai.Balanced
	}
	return Seat{Name: name, AI: true, Personality: p}
}

// Event is one entry of a session's history feed.
type Event struct {
	Turn    int    `json:"turn"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Session is one running game.
type Session struct {
	ID    string
	Name  string
	Seed  uint64
	MapID string
	Seats []Seat
	Setup game.Setup
	World *game.World

	// Seq counts successfully applied commands.
	Seq    int
	Winner int

	mu       sync.Mutex
	commands []game.Command
	history  []Event
	ais      map[int]*ai.Player
	store    Store
	log      zerolog.Logger
}

func newSession(id, name, mapID string, seed uint64, seats []Seat, setup game.Setup, store Store) (*Session, error) {
	w, err := game.NewGame(setup)
	if err != nil {
		return nil, err
	}
	if len(seats) != len(w.Players) {
		return nil, fmt.Errorf("map has %d spawns but %d seats were given", len(w.Players), len(seats))
	}
	s := &Session{
		ID:       id,
		Name:     name,
		Seed:     seed,
		MapID:    mapID,
		Seats:    seats,
		Setup:    setup,
		World:    w,
		Winner:   NoWinner,
		commands: []game.Command{},
		ais:      make(map[int]*ai.Player),
		store:    store,
		log:      log.With().Str("game", id).Logger(),
	}
	for i, seat := range seats {
		if seat.AI {
			s.ais[i] = ai.New(i, seat.Personality)
		}
	}
	return s, nil
}

// Finished reports whether a winner has been declared.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Winner != NoWinner
}

// CurrentIsAI reports whether the player to move is AI-controlled.
func (s *Session) CurrentIsAI() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ais[s.World.Current] != nil
}

// Apply executes one command. Rule violations leave the game untouched and
// are returned as *game.RuleError. Successful commands are logged, recorded
// in the history and persisted; a persistence failure is returned after the
// in-memory game has already advanced.
func (s *Session) Apply(cmd game.Command) (game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(cmd)
}

func (s *Session) apply(cmd game.Command) (game.Outcome, error) {
	if s.Winner != NoWinner {
		return game.Outcome{}, ErrGameOver
	}

	aliveBefore := s.alivePlayers()
	out, err := game.Apply(s.World, cmd, game.CommandRand(s.Seed, s.Seq))
	if err != nil {
		s.log.Debug().Err(err).Str("command", cmd.String()).Msg("command rejected")
		return out, err
	}
	seq := s.Seq
	s.Seq++
	s.commands = append(s.commands, cmd)
	s.log.Debug().Int("seq", seq).Str("command", cmd.String()).Msg("command applied")

	events := describe(s.World, cmd, out)
	for _, p := range aliveBefore {
		if s.World.Eliminated(p) {
			events = append(events, Event{Turn: s.World.Turn, Player: p, Type: database.EventPlayerEliminated,
				Message: fmt.Sprintf("%s has been eliminated", s.seatName(p))})
		}
	}
	if winner, ok := s.World.CheckWin(); ok {
		s.Winner = winner
		events = append(events, Event{Turn: s.World.Turn, Player: winner, Type: database.EventGameEnd,
			Message: fmt.Sprintf("%s wins on turn %d", s.seatName(winner), s.World.Turn)})
		s.log.Info().Int("winner", winner).Int("turn", s.World.Turn).Msg("game over")
	}
	s.history = append(s.history, events...)

	if err := s.persist(seq, cmd, events); err != nil {
		s.log.Error().Err(err).Int("seq", seq).Msg("failed to persist command")
		return out, fmt.Errorf("persist command %d: %w", seq, err)
	}
	return out, nil
}

func (s *Session) alivePlayers() []int {
	var alive []int
	for _, p := range s.World.Players {
		if !s.World.Eliminated(p.ID) {
			alive = append(alive, p.ID)
		}
	}
	return alive
}

func (s *Session) seatName(player int) string {
	if player >= 0 && player < len(s.Seats) && s.Seats[player].Name != "" {
		return s.Seats[player].Name
	}
	return fmt.Sprintf("Player %d", player+1)
}

func (s *Session) persist(seq int, cmd game.Command, events []Event) error {
	if s.store == nil {
		return nil
	}
	cmdJSON, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	if err := s.store.AppendAction(s.ID, seq, cmd.Player, string(cmd.Type), string(cmdJSON)); err != nil {
		return err
	}
	for _, e := range events {
		if err := s.store.AddHistoryEvent(s.ID, e.Turn, e.Player, e.Type, e.Message); err != nil {
			return err
		}
	}
	if err := s.saveState(); err != nil {
		return err
	}
	if s.Winner != NoWinner {
		return s.store.UpdateGameStatus(s.ID, database.StatusFinished, s.Winner)
	}
	return nil
}

func (s *Session) saveState() error {
	data, err := s.World.MarshalSnapshot()
	if err != nil {
		return err
	}
	return s.store.SaveGameState(s.ID, string(data), s.Seq, s.World.Turn, s.World.Current)
}

// RunAI plays consecutive AI turns while the current seat is AI-controlled
// and the game is undecided, at most maxTurns of them (DefaultAITurns when
// maxTurns <= 0). It returns the number of turns played.
func (s *Session) RunAI(maxTurns int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxTurns <= 0 {
		maxTurns = DefaultAITurns
	}
	played := 0
	for played < maxTurns && s.Winner == NoWinner {
		p := s.ais[s.World.Current]
		if p == nil {
			break
		}
		rng := game.CommandRand(s.Seed^aiSalt, s.Seq)
		err := p.TakeTurn(s.World, rng, func(cmd game.Command) error {
			_, err := s.apply(cmd)
			return err
		})
		if errors.Is(err, ErrGameOver) {
			break
		}
		if err != nil {
			return played, fmt.Errorf("AI player %d: %w", p.ID, err)
		}
		played++
	}
	return played, nil
}

// Snapshot returns the full world state.
func (s *Session) Snapshot() *game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.World.Snapshot()
}

// View returns the world as player sees it; game.Spectator sees everything.
func (s *Session) View(player int) *game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.World.ViewFor(player)
}

// Read runs fn with the session locked. fn must not retain w.
func (s *Session) Read(fn func(w *game.World)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.World)
}

// Commands returns the applied command log.
func (s *Session) Commands() []game.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game.Command(nil), s.commands...)
}

// History returns history events from index since on.
func (s *Session) History(since int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if since < 0 {
		since = 0
	}
	if since >= len(s.history) {
		return []Event{}
	}
	return append([]Event(nil), s.history[since:]...)
}

// Status returns the stored status string for the session.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statusOf(s.Winner)
}
