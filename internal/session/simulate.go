package session

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"frontier/internal/ai"
	"frontier/pkg/maps"
)

// SimResult summarises a headless AI game.
type SimResult struct {
	ID          string        `json:"id"`
	Seed        uint64        `json:"seed"`
	MapID       string        `json:"mapId"`
	Winner      int           `json:"winner"`
	Turn        int           `json:"turn"`
	PlayerTurns int           `json:"playerTurns"`
	Commands    int           `json:"commands"`
	Settlements map[int]int   `json:"settlements"`
	Revealed    map[int]int   `json:"revealed"`
	Elapsed     time.Duration `json:"elapsed"`
}

var simPersonalities = []ai.Personality{ai.Balanced, ai.Aggressive, ai.Expansionist}

// AISeats returns n AI seats cycling through the personalities.
func AISeats(n int) []Seat {
	seats := make([]Seat, n)
	for i := range seats {
		p := simPersonalities[i%len(simPersonalities)]
		seats[i] = Seat{Name: fmt.Sprintf("AI %d (%s)", i+1, p), AI: true, Personality: p}
	}
	return seats
}

// Simulate plays an all-AI game for at most playerTurns player turns.
// Seats given in opts are all switched to AI control.
func (m *Manager) Simulate(opts Options, playerTurns int) (*SimResult, error) {
	if len(opts.Seats) == 0 {
		players := opts.Generator.Players
		if opts.MapID != "" && opts.MapID != GeneratedMapID {
			if mp := maps.Get(opts.MapID); mp != nil {
				players = mp.Players()
			}
		}
		if players < 2 {
			players = 2
		}
		opts.Seats = AISeats(players)
	} else {
		seats := make([]Seat, len(opts.Seats))
		for i, seat := range opts.Seats {
			seat.AI = true
			if !seat.Personality.Valid() {
				seat.Personality = ai.Balanced
			}
			seats[i] = seat
		}
		opts.Seats = seats
	}

	start := time.Now()
	s, err := m.Create(opts)
	if err != nil {
		return nil, err
	}
	played, err := s.RunAI(playerTurns)
	if err != nil {
		return nil, err
	}

	res := &SimResult{
		ID:          s.ID,
		Seed:        s.Seed,
		MapID:       s.MapID,
		PlayerTurns: played,
		Settlements: map[int]int{},
		Revealed:    map[int]int{},
		Elapsed:     time.Since(start),
	}
	s.mu.Lock()
	res.Winner = s.Winner
	res.Turn = s.World.Turn
	res.Commands = s.Seq
	for _, p := range s.World.Players {
		res.Settlements[p.ID] = len(s.World.SettlementsOf(p.ID))
		res.Revealed[p.ID] = s.World.RevealedCount(p.ID)
	}
	s.mu.Unlock()

	log.Info().Str("game", s.ID).Int("winner", res.Winner).Int("turn", res.Turn).
		Int("commands", res.Commands).Dur("elapsed", res.Elapsed).Msg("simulation finished")
	return res, nil
}
