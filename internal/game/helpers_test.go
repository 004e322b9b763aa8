package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test helpers for building worlds by hand.

func newTestWorld(width, height int) *World {
	return NewWorld(width, height, 2)
}

func setTerrain(w *World, c Coord, t Terrain) {
	w.tile(c).Terrain = t
}

func placeUnit(w *World, owner int, kind UnitKind, pos Coord) *Unit {
	return w.spawnUnit(owner, kind, pos)
}

func addSettlement(w *World, owner int, pos Coord, claimed ...Coord) *Settlement {
	s := &Settlement{
		ID:           w.NextSettlementID,
		Owner:        owner,
		Pos:          pos,
		Size:         1,
		Claimed:      []Coord{pos},
		Focus:        FocusFood,
		LastGrowTurn: -1,
	}
	for _, c := range claimed {
		s.Claimed = insertCoord(s.Claimed, c)
	}
	w.NextSettlementID++
	w.Settlements[s.ID] = s
	w.RevealAround(owner, pos)
	for _, c := range s.Claimed {
		w.tile(c).reveal(owner)
	}
	return s
}

func mustSnapshot(t *testing.T, w *World) []byte {
	t.Helper()
	data, err := w.MarshalSnapshot()
	require.NoError(t, err)
	return data
}

// assertDisjointClaims fails if any tile is claimed by two settlements.
func assertDisjointClaims(t *testing.T, w *World) {
	t.Helper()
	seen := make(map[Coord]int)
	for _, s := range w.Settlements {
		for _, c := range s.Claimed {
			other, dup := seen[c]
			require.Falsef(t, dup, "tile %v claimed by settlements %d and %d", c, other, s.ID)
			seen[c] = s.ID
		}
	}
}

// assertClaimsRevealed fails if a settlement claims a tile its owner has not seen.
func assertClaimsRevealed(t *testing.T, w *World) {
	t.Helper()
	for _, s := range w.Settlements {
		for _, c := range s.Claimed {
			require.Truef(t, w.IsRevealed(s.Owner, c), "settlement %d claims unrevealed %v", s.ID, c)
		}
	}
}
