package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndTurnCreditsFocusRankedYield(t *testing.T) {
	w := newTestWorld(3, 3)
	setTerrain(w, Coord{1, 1}, Hill)
	setTerrain(w, Coord{1, 0}, Water)
	addSettlement(w, 0, Coord{1, 1}, Coord{1, 0})

	report := w.EndTurn(NewRand(1))

	assert.Equal(t, 1, w.Players[0].Food)
	assert.Equal(t, 3, w.Players[0].Output)
	assert.Equal(t, Yield{Food: 1, Output: 3}, report.Income[0])
	assert.Empty(t, report.Grown)
}

func TestWorkedTilesCappedBySize(t *testing.T) {
	w := newTestWorld(4, 1)
	setTerrain(w, Coord{0, 0}, Plains)
	setTerrain(w, Coord{1, 0}, Forest)
	setTerrain(w, Coord{2, 0}, Hill)
	setTerrain(w, Coord{3, 0}, Water)
	s := addSettlement(w, 0, Coord{1, 0}, Coord{0, 0}, Coord{2, 0}, Coord{3, 0})

	tiles, total, err := w.WorkedTiles(s.ID)
	require.NoError(t, err)
	assert.Equal(t, []Coord{{0, 0}, {1, 0}}, tiles)
	assert.Equal(t, Yield{Food: 3, Output: 3}, total)

	s.Focus = FocusOutput
	tiles, total, err = w.WorkedTiles(s.ID)
	require.NoError(t, err)
	assert.Equal(t, []Coord{{2, 0}, {1, 0}}, tiles)
	assert.Equal(t, Yield{Food: 1, Output: 5}, total)

	s.Size = 5
	_, total, err = w.WorkedTiles(s.ID)
	require.NoError(t, err)
	assert.Equal(t, Yield{Food: 4, Output: 6}, total, "small claims are worked in full")
}

func TestTileYieldConnectorBonus(t *testing.T) {
	w := newTestWorld(2, 1)
	tile := w.tile(Coord{0, 0})

	assert.Equal(t, Yield{Food: 2, Output: 1}, w.TileYield(tile, 0))
	tile.addImprovement(Road)
	assert.Equal(t, Yield{Food: 2, Output: 1}, w.TileYield(tile, 0), "a lone road adds nothing")
	tile.addImprovement(Farm)
	assert.Equal(t, Yield{Food: 3, Output: 2}, w.TileYield(tile, 0))

	w.Players[0].unlock(TechAgriculture)
	assert.Equal(t, Yield{Food: 4, Output: 2}, w.TileYield(tile, 0))
	assert.Equal(t, Yield{Food: 3, Output: 2}, w.TileYield(tile, 1), "tech bonuses are per player")
}

func TestEndTurnRotatesAndRefreshesMoves(t *testing.T) {
	w := newTestWorld(5, 5)
	mine := placeUnit(w, 0, Scout, Coord{0, 0})
	theirs := placeUnit(w, 1, Scout, Coord{4, 4})
	mine.MovesLeft, theirs.MovesLeft = 0, 0

	report := w.EndTurn(NewRand(1))
	assert.Equal(t, 1, w.Current)
	assert.Equal(t, 2, w.Turn)
	assert.Equal(t, 1, report.Next)
	assert.Equal(t, 3, theirs.MovesLeft)
	assert.Zero(t, mine.MovesLeft, "only the new current player's units refresh")

	w.EndTurn(NewRand(1))
	assert.Equal(t, 0, w.Current)
	assert.Equal(t, 3, w.Turn)
	assert.Equal(t, 3, mine.MovesLeft)
}

func TestEndTurnAutoClaimsAndGrows(t *testing.T) {
	w := newTestWorld(5, 5)
	s := addSettlement(w, 0, Coord{2, 2})
	s.Claimed = []Coord{}
	w.Players[0].Food = 2

	report := w.EndTurn(NewRand(4))

	assert.True(t, s.Claims(Coord{2, 2}))
	assert.Equal(t, []int{s.ID}, report.Grown)
	assert.Equal(t, 2, s.Size)
	assert.Len(t, s.Claimed, 2)
	assert.Equal(t, 1, s.LastGrowTurn)
	assertDisjointClaims(t, w)
	assertClaimsRevealed(t, w)
}

func TestEndTurnGrowsEverySettlement(t *testing.T) {
	w := newTestWorld(9, 3)
	a := addSettlement(w, 0, Coord{1, 1})
	b := addSettlement(w, 1, Coord{7, 1})
	w.Players[0].Food = 2
	w.Players[1].Food = 2

	report := w.EndTurn(NewRand(2))
	assert.Equal(t, []int{a.ID, b.ID}, report.Grown)
}

func TestResearchAccrual(t *testing.T) {
	tests := []struct {
		name         string
		active       TechID
		banked       int
		progress     int
		size         int
		wantUnlocked bool
		wantBank     int
		wantProgress int
	}{
		{"no active tech banks income", "", 3, 0, 2, false, 5, 0},
		{"progress accumulates", TechMining, 0, 10, 2, false, 0, 12},
		{"exact unlock", TechMining, 0, 19, 1, true, 0, 0},
		{"surplus carries over", TechMining, 5, 18, 1, true, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(5, 5)
			s := addSettlement(w, 0, Coord{2, 2})
			s.Size = tt.size
			p := w.Players[0]
			p.ActiveTech = tt.active
			p.Research = tt.banked
			if tt.active != "" {
				p.TechProgress[tt.active] = tt.progress
			}

			report := w.EndTurn(NewRand(1))

			assert.Equal(t, tt.wantUnlocked, p.HasTech(TechMining))
			assert.Equal(t, tt.wantBank, p.Research)
			if tt.active != "" {
				assert.Equal(t, tt.wantProgress, p.TechProgress[tt.active])
			}
			if tt.wantUnlocked {
				assert.Equal(t, []TechID{TechMining}, report.Unlocked[0])
				assert.Empty(t, p.ActiveTech)
			}
		})
	}
}
