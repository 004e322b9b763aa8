package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontier/internal/game"
	"frontier/pkg/maps"
)

// match plays AI against AI, applying commands the way a session would.
type match struct {
	w       *game.World
	seed    uint64
	seq     int
	players []*Player
}

func newMatch(t *testing.T, seed uint64, personalities ...Personality) *match {
	t.Helper()
	opts := maps.DefaultOptions()
	opts.Seed = seed
	opts.Players = len(personalities)
	m, err := maps.NewGenerator(opts).Generate()
	require.NoError(t, err)
	w, err := game.NewGame(m.Setup())
	require.NoError(t, err)

	mt := &match{w: w, seed: seed}
	for i, p := range personalities {
		mt.players = append(mt.players, New(i, p))
	}
	return mt
}

func (m *match) apply(cmd game.Command) error {
	_, err := game.Apply(m.w, cmd, game.CommandRand(m.seed, m.seq))
	if err == nil {
		m.seq++
	}
	return err
}

// play runs up to turns player-turns and reports whether someone won.
func (m *match) play(t *testing.T, turns int) bool {
	t.Helper()
	for i := 0; i < turns; i++ {
		current := m.w.Current
		rng := game.CommandRand(m.seed^0xA1, m.seq)
		require.NoError(t, m.players[current].TakeTurn(m.w, rng, m.apply))
		require.NotEqual(t, current, m.w.Current, "turn did not pass")
		if _, won := m.w.CheckWin(); won {
			return true
		}
	}
	return false
}

func TestFirstTurnFoundsSettlement(t *testing.T) {
	m := newMatch(t, 5, Balanced, Balanced)
	m.play(t, 1)

	assert.Len(t, m.w.SettlementsOf(0), 1)
	assert.Equal(t, 1, m.w.Current)
	assert.NotEmpty(t, m.w.Player(0).ActiveTech)
}

func TestLongGameKeepsInvariants(t *testing.T) {
	for _, tc := range []struct {
		name  string
		seed  uint64
		roles []Personality
	}{
		{"balanced pair", 11, []Personality{Balanced, Balanced}},
		{"aggressive vs expansionist", 12, []Personality{Aggressive, Expansionist}},
		{"four seats", 13, []Personality{Balanced, Aggressive, Expansionist, Balanced}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := newMatch(t, tc.seed, tc.roles...)
			m.play(t, 80)

			seen := make(map[game.Coord]int)
			for _, s := range m.w.Settlements {
				for _, c := range s.Claimed {
					prev, dup := seen[c]
					assert.False(t, dup, "tile %v claimed by %d and %d", c, prev, s.ID)
					seen[c] = s.ID
					assert.True(t, m.w.IsRevealed(s.Owner, c), "claimed tile %v hidden from owner", c)
				}
				assert.True(t, s.Claims(s.Pos))
			}
			for _, p := range m.w.Players {
				assert.GreaterOrEqual(t, p.Food, 0)
				assert.GreaterOrEqual(t, p.Output, 0)
			}
			assert.NotEmpty(t, m.w.Settlements)
		})
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	run := func() []byte {
		m := newMatch(t, 21, Aggressive, Balanced)
		m.play(t, 40)
		data, err := m.w.MarshalSnapshot()
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, string(run()), string(run()))
}

func TestTakeTurnRefusesOutOfTurn(t *testing.T) {
	m := newMatch(t, 3, Balanced, Balanced)
	err := New(1, Balanced).TakeTurn(m.w, game.NewRand(1), m.apply)
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	assert.Zero(t, m.seq)
}

func TestActionBudget(t *testing.T) {
	m := newMatch(t, 4, Balanced, Balanced)
	p := New(0, Balanced)
	p.MaxActions = 1

	var issued []game.CommandType
	err := p.TakeTurn(m.w, game.NewRand(1), func(cmd game.Command) error {
		issued = append(issued, cmd.Type)
		return m.apply(cmd)
	})
	require.NoError(t, err)
	assert.Equal(t, []game.CommandType{game.CmdResearch, game.CmdEndTurn}, issued)
}

func TestUnknownPersonalityPlaysBalanced(t *testing.T) {
	assert.Equal(t, Balanced, New(0, "reckless").Personality)
	assert.True(t, Expansionist.Valid())
}

func TestNearestPrefersLowerCoordinateOnTies(t *testing.T) {
	c, ok := nearest(game.Coord{X: 2, Y: 2}, []game.Coord{{X: 3, Y: 2}, {X: 2, Y: 1}, {X: 1, Y: 2}})
	require.True(t, ok)
	assert.Equal(t, game.Coord{X: 1, Y: 2}, c)

	_, ok = nearest(game.Coord{}, nil)
	assert.False(t, ok)
}
