package maps

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontier/internal/game"
)

// TestGeneratorIsSeeded generates the same options twice and expects
// identical terrain and spawns.
func TestGeneratorIsSeeded(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 77

	a, err := NewGenerator(opts).Generate()
	require.NoError(t, err)
	b, err := NewGenerator(opts).Generate()
	require.NoError(t, err)

	assert.Equal(t, a.Terrain, b.Terrain)
	assert.Equal(t, a.Spawns, b.Spawns)

	opts.Seed = 78
	c, err := NewGenerator(opts).Generate()
	require.NoError(t, err)
	assert.NotEqual(t, a.Terrain, c.Terrain)
}

// TestGeneratedSpawnsArePlayable checks every spawn across a spread of
// settings: plains, a passable neighbour for the scout, and a valid game.
func TestGeneratedSpawnsArePlayable(t *testing.T) {
	configs := []GeneratorOptions{
		{Width: 16, Height: 12, Seed: 1, Players: 2, WaterLevel: 0.3, Roughness: 0.5},
		{Width: 24, Height: 16, Seed: 2, Players: 4, WaterLevel: 0.45, Roughness: 1},
		{Width: 40, Height: 30, Seed: 3, Players: 8, WaterLevel: 0.2, Roughness: 0.2},
		{Width: 8, Height: 8, Seed: 4, Players: 2, WaterLevel: 0.6, Roughness: 0},
	}

	for ci, cfg := range configs {
		t.Run(fmt.Sprintf("config_%d_players%d", ci, cfg.Players), func(t *testing.T) {
			m, err := NewGenerator(cfg).Generate()
			require.NoError(t, err)
			require.Len(t, m.Spawns, cfg.Players)

			seen := make(map[game.Coord]bool)
			for _, s := range m.Spawns {
				assert.False(t, seen[s], "duplicate spawn %v", s)
				seen[s] = true
				assert.Equal(t, game.Plains, m.TerrainAt(s.X, s.Y))

				passable := 0
				for _, n := range game.Neighbors4(s) {
					if m.TerrainAt(n.X, n.Y).Passable() {
						passable++
					}
				}
				assert.Positive(t, passable, "spawn %v is boxed in", s)
			}

			w, err := game.NewGame(m.Setup())
			require.NoError(t, err)
			assert.Len(t, w.Players, cfg.Players)
			t.Logf("\n%s", m.Debug())
		})
	}
}

func TestGeneratorClampsOptions(t *testing.T) {
	m, err := NewGenerator(GeneratorOptions{Width: 2, Height: 500, Players: 1}).Generate()
	require.NoError(t, err)
	assert.Equal(t, 8, m.Width)
	assert.Equal(t, 64, m.Height)
	assert.Len(t, m.Spawns, 2)
}

func TestLandmassesAreLargestFirst(t *testing.T) {
	m, err := LoadFromJSON([]byte(`{
		"id": "lm", "name": "Landmasses", "width": 7, "height": 3,
		"rows": ["..~.~^.", "..~~~..", "~~~f~.."],
		"spawns": [[0,0],[6,2]]
	}`))
	require.NoError(t, err)

	require.Len(t, m.Landmasses, 4)
	assert.Len(t, m.Landmasses[0].Cells, 6)
	assert.Len(t, m.Landmasses[1].Cells, 4)
	assert.True(t, m.Connected(game.Coord{X: 5, Y: 0}, game.Coord{X: 6, Y: 2}))
	assert.False(t, m.Connected(game.Coord{X: 0, Y: 0}, game.Coord{X: 6, Y: 2}))
	assert.False(t, m.Connected(game.Coord{X: 2, Y: 0}, game.Coord{X: 2, Y: 0}), "water is on no landmass")
	assert.Zero(t, m.LandmassAt(-1, 0))
}
