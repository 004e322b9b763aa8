package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuySettler(t *testing.T) {
	w := newTestWorld(5, 5)
	s := addSettlement(w, 0, Coord{2, 2})
	w.Players[0].Food, w.Players[0].Output = 10, 10

	_, err := w.BuyUnit(s.ID, Settler)
	require.ErrorIs(t, err, ErrSettlementTooSmall)
	assert.Equal(t, 10, w.Players[0].Food)

	s.Size = 2
	u, err := w.BuyUnit(s.ID, Settler)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Size)
	assert.Equal(t, 7, w.Players[0].Food)
	assert.Equal(t, 8, w.Players[0].Output)
	assert.Equal(t, Coord{2, 2}, u.Pos)
	assert.Equal(t, Settler.Info().Moves, u.MovesLeft)
	assert.Equal(t, 0, u.Owner)
}

func TestBuyUnitRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *World, s *Settlement)
		owner int
		kind  UnitKind
		want  error
	}{
		{"other player's settlement", nil, 1, Scout, ErrNotOwner},
		{"unknown kind", nil, 0, UnitKind("dragon"), ErrUnknownKind},
		{"not enough output", func(w *World, s *Settlement) {
			w.Players[0].Output = 3
		}, 0, Soldier, ErrInsufficientResources},
		{"scout onto any unit", func(w *World, s *Settlement) {
			placeUnit(w, 0, Soldier, s.Pos)
		}, 0, Scout, ErrTileOccupied},
		{"soldier onto own scout", func(w *World, s *Settlement) {
			placeUnit(w, 0, Scout, s.Pos)
		}, 0, Soldier, ErrTileOccupied},
		{"soldier onto enemy soldier", func(w *World, s *Settlement) {
			placeUnit(w, 1, Soldier, s.Pos)
		}, 0, Soldier, ErrTileOccupied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(5, 5)
			s := addSettlement(w, tt.owner, Coord{2, 2})
			w.Players[tt.owner].Output = 10
			if tt.setup != nil {
				tt.setup(w, s)
			}
			before := mustSnapshot(t, w)

			_, err := w.BuyUnit(s.ID, tt.kind)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, mustSnapshot(t, w))
		})
	}
}

func TestBuySoldiersStack(t *testing.T) {
	w := newTestWorld(5, 5)
	s := addSettlement(w, 0, Coord{2, 2})
	w.Players[0].Output = 8

	_, err := w.BuyUnit(s.ID, Soldier)
	require.NoError(t, err)
	_, err = w.BuyUnit(s.ID, Soldier)
	require.NoError(t, err)
	assert.Len(t, w.UnitsAt(Coord{2, 2}), 2)
	assert.Zero(t, w.Players[0].Output)
}

func TestBuildImprovement(t *testing.T) {
	w := newTestWorld(5, 5)
	addSettlement(w, 0, Coord{2, 2}, Coord{3, 2})
	w.Players[0].Output = 10

	require.NoError(t, w.BuildImprovement(Coord{3, 2}, Farm))
	assert.Equal(t, 7, w.Players[0].Output)
	require.NoError(t, w.BuildImprovement(Coord{3, 2}, Road))
	assert.Equal(t, 6, w.Players[0].Output)

	tile, ok := w.Tile(Coord{3, 2})
	require.True(t, ok)
	assert.Equal(t, []Improvement{Farm, Road}, tile.Improvements)
}

func TestBuildImprovementRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *World)
		at    Coord
		kind  Improvement
		want  error
	}{
		{"outside world", nil, Coord{9, 9}, Road, ErrOutOfBounds},
		{"unclaimed tile", nil, Coord{0, 0}, Road, ErrTileNotClaimed},
		{"enemy tile", func(w *World) {
			addSettlement(w, 1, Coord{4, 4})
		}, Coord{4, 4}, Road, ErrTileNotClaimed},
		{"unknown kind", nil, Coord{3, 2}, Improvement("castle"), ErrUnknownKind},
		{"mine on plains", nil, Coord{3, 2}, Mine, ErrInvalidTerrain},
		{"road on water", func(w *World) {
			setTerrain(w, Coord{3, 2}, Water)
		}, Coord{3, 2}, Road, ErrInvalidTerrain},
		{"farm twice", func(w *World) {
			w.tile(Coord{3, 2}).addImprovement(Farm)
		}, Coord{3, 2}, Farm, ErrInfrastructureExists},
		{"road twice", func(w *World) {
			w.tile(Coord{3, 2}).addImprovement(Road)
		}, Coord{3, 2}, Road, ErrInfrastructureExists},
		{"second non-connector", func(w *World) {
			setTerrain(w, Coord{3, 2}, Forest)
			w.tile(Coord{3, 2}).addImprovement(Farm)
		}, Coord{3, 2}, LumberMill, ErrInfrastructureExists},
		{"too poor", func(w *World) {
			w.Players[0].Output = 2
		}, Coord{3, 2}, Farm, ErrInsufficientResources},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(5, 5)
			addSettlement(w, 0, Coord{2, 2}, Coord{3, 2})
			w.Players[0].Output = 10
			if tt.setup != nil {
				tt.setup(w)
			}
			before := mustSnapshot(t, w)

			err := w.BuildImprovement(tt.at, tt.kind)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, mustSnapshot(t, w))
		})
	}
}

func TestEngineeringDiscountsImprovements(t *testing.T) {
	w := newTestWorld(5, 5)
	addSettlement(w, 0, Coord{2, 2}, Coord{3, 2})
	w.Players[0].Output = 10
	w.Players[0].unlock(TechEngineering)

	require.NoError(t, w.BuildImprovement(Coord{3, 2}, Farm))
	assert.Equal(t, 8, w.Players[0].Output)
	require.NoError(t, w.BuildImprovement(Coord{3, 2}, Road))
	assert.Equal(t, 7, w.Players[0].Output, "discount never takes a price below 1")
}
