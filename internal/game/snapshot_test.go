package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playedWorld returns a world with settlements, improvements, research and
// a few turns behind it.
func playedWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewGame(Setup{
		Terrain: [][]Terrain{
			{Plains, Plains, Forest, Plains, Plains, Plains},
			{Plains, Hill, Plains, Plains, Water, Plains},
			{Plains, Plains, Plains, Forest, Plains, Plains},
			{Water, Plains, Plains, Plains, Hill, Plains},
		},
		Spawns: []Coord{{1, 0}, {4, 3}},
	})
	require.NoError(t, err)
	rng := NewRand(99)

	_, err = w.FoundSettlement(1, rng)
	require.NoError(t, err)
	require.NoError(t, w.SetResearch(TechAgriculture))
	w.Players[0].Output = 5
	s := w.SettlementsOf(0)[0]
	require.NoError(t, w.BuildImprovement(s.Pos, Road))
	w.EndTurn(rng)

	_, err = w.FoundSettlement(3, rng)
	require.NoError(t, err)
	w.EndTurn(rng)
	return w
}

func TestSnapshotRoundTripIsByteIdentical(t *testing.T) {
	w := playedWorld(t)

	first, err := w.MarshalSnapshot()
	require.NoError(t, err)
	decoded, err := UnmarshalSnapshot(first)
	require.NoError(t, err)
	second, err := decoded.MarshalSnapshot()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, w, decoded)
}

func TestCloneIsIndependent(t *testing.T) {
	w := playedWorld(t)
	c := w.Clone()

	c.Players[0].Food += 10
	c.Tiles[0].reveal(1)
	for _, s := range c.Settlements {
		s.Size = 9
	}

	assert.NotEqual(t, w.Players[0].Food, c.Players[0].Food)
	for _, s := range w.Settlements {
		assert.NotEqual(t, 9, s.Size)
	}
}

func TestFromSnapshotRejectsOverlappingClaims(t *testing.T) {
	w := newTestWorld(3, 3)
	addSettlement(w, 0, Coord{0, 0}, Coord{1, 0})
	addSettlement(w, 1, Coord{2, 0})
	snap := w.Snapshot()
	snap.Settlements[1].Claimed = []Coord{{1, 0}, {2, 0}}

	_, err := FromSnapshot(snap)
	require.Error(t, err)
}

func TestFromSnapshotRejectsBadShape(t *testing.T) {
	w := newTestWorld(3, 3)
	snap := w.Snapshot()
	snap.Tiles = snap.Tiles[:4]
	_, err := FromSnapshot(snap)
	require.Error(t, err)

	_, err = UnmarshalSnapshot([]byte(`{"width":`))
	require.Error(t, err)
}

func TestViewForAppliesFog(t *testing.T) {
	w := newTestWorld(10, 1)
	placeUnit(w, 0, Scout, Coord{0, 0})
	hidden := placeUnit(w, 1, Scout, Coord{9, 0})
	w.Tiles[9].Improvements = []Improvement{Road}
	w.Players[1].ActiveTech = TechMining
	w.Players[1].Research = 7

	view := w.ViewFor(0)

	assert.Equal(t, Plains, view.Tiles[0].Terrain)
	assert.Equal(t, Unknown, view.Tiles[9].Terrain)
	assert.Empty(t, view.Tiles[9].Improvements)
	for _, u := range view.Units {
		assert.NotEqual(t, hidden.ID, u.ID)
	}
	assert.Len(t, view.Units, 1)
	assert.Empty(t, view.Players[1].ActiveTech)
	assert.Zero(t, view.Players[1].Research)

	full := w.ViewFor(Spectator)
	assert.Len(t, full.Units, 2)
	assert.Equal(t, Plains, w.Tiles[9].Terrain, "views never touch the world")
}
