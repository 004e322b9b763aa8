package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetResearch(t *testing.T) {
	w := newTestWorld(3, 3)
	p := w.Players[0]

	require.ErrorIs(t, w.SetResearch("alchemy"), ErrUnknownTech)
	require.ErrorIs(t, w.SetResearch(TechEngineering), ErrTechLocked)
	require.ErrorIs(t, w.SetResearch(TechBronzeWorking), ErrTechLocked)

	require.NoError(t, w.SetResearch(TechAgriculture))
	assert.Equal(t, TechAgriculture, p.ActiveTech)

	p.unlock(TechAgriculture)
	require.ErrorIs(t, w.SetResearch(TechAgriculture), ErrTechResearched)
	require.NoError(t, w.SetResearch(TechEngineering), "any tier 1 tech opens tier 2")
	require.ErrorIs(t, w.SetResearch(TechBronzeWorking), ErrTechLocked, "bronze working needs mining")
	require.NoError(t, w.SetResearch(TechCivilService))
}

func TestSwitchingResearchKeepsProgress(t *testing.T) {
	w := newTestWorld(5, 5)
	addSettlement(w, 0, Coord{2, 2})
	p := w.Players[0]

	require.NoError(t, w.SetResearch(TechMining))
	w.EndTurn(NewRand(1))
	require.Equal(t, 1, p.TechProgress[TechMining])

	w.Current = 0
	require.NoError(t, w.SetResearch(TechCartography))
	w.EndTurn(NewRand(1))
	assert.Equal(t, 1, p.TechProgress[TechMining])
	assert.Equal(t, 1, p.TechProgress[TechCartography])
}

func TestAvailableTechs(t *testing.T) {
	p := newPlayer(0)
	var ids []TechID
	for _, tech := range p.Available() {
		ids = append(ids, tech.ID)
	}
	assert.Equal(t, []TechID{TechAgriculture, TechCartography, TechMining}, ids)

	p.unlock(TechMining)
	ids = ids[:0]
	for _, tech := range p.Available() {
		ids = append(ids, tech.ID)
	}
	assert.Equal(t, []TechID{TechAgriculture, TechCartography, TechBronzeWorking, TechEngineering}, ids)
}

func TestTechEffects(t *testing.T) {
	w := newTestWorld(3, 3)
	assert.Equal(t, 3, w.MoveAllowance(0, Scout))
	assert.Equal(t, Yield{Food: 3, Output: 2}, w.UnitCost(0, Settler))

	w.Players[0].unlock(TechCartography)
	w.Players[0].unlock(TechBronzeWorking)
	w.Players[0].unlock(TechCivilService)
	assert.Equal(t, 4, w.MoveAllowance(0, Scout))
	assert.Equal(t, 3, w.MoveAllowance(0, Soldier))
	assert.Equal(t, Yield{Food: 2, Output: 2}, w.UnitCost(0, Settler))
	assert.Equal(t, 3, w.MoveAllowance(1, Scout))

	hill := w.tile(Coord{0, 0})
	hill.Terrain = Hill
	w.Players[1].unlock(TechMining)
	assert.Equal(t, Yield{Output: 4}, w.TileYield(hill, 1))
}
