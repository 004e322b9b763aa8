package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckWin(t *testing.T) {
	t.Run("opponent has nothing left", func(t *testing.T) {
		w := newTestWorld(5, 5)
		addSettlement(w, 0, Coord{1, 1})
		placeUnit(w, 1, Scout, Coord{3, 3})

		winner, ok := w.CheckWin()
		assert.True(t, ok)
		assert.Equal(t, 0, winner)
	})

	t.Run("a settler keeps a player alive", func(t *testing.T) {
		w := newTestWorld(5, 5)
		addSettlement(w, 0, Coord{1, 1})
		placeUnit(w, 1, Settler, Coord{3, 3})

		_, ok := w.CheckWin()
		assert.False(t, ok)
	})

	t.Run("both eliminated", func(t *testing.T) {
		w := newTestWorld(5, 5)
		_, ok := w.CheckWin()
		assert.False(t, ok)
	})

	t.Run("more than two players", func(t *testing.T) {
		w := NewWorld(5, 5, 3)
		addSettlement(w, 0, Coord{1, 1})

		_, ok := w.CheckWin()
		assert.False(t, ok)
		assert.True(t, w.Eliminated(1))
		assert.True(t, w.Eliminated(2))
	})

	t.Run("captured settlement counts for the captor", func(t *testing.T) {
		w := newTestWorld(5, 5)
		addSettlement(w, 1, Coord{2, 2})
		soldier := placeUnit(w, 0, Soldier, Coord{1, 2})
		placeUnit(w, 0, Settler, Coord{0, 0})

		_, ok := w.CheckWin()
		assert.False(t, ok)

		_, err := w.MoveUnit(soldier.ID, Coord{2, 2})
		assert.NoError(t, err)
		winner, ok := w.CheckWin()
		assert.True(t, ok)
		assert.Equal(t, 0, winner)
	})
}
