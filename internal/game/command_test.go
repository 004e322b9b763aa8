package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRejectsOtherPlayer(t *testing.T) {
	w := newTestWorld(5, 5)
	u := placeUnit(w, 1, Scout, Coord{2, 2})

	_, err := Apply(w, Move(1, u.ID, Coord{2, 3}), NewRand(1))
	require.ErrorIs(t, err, ErrNotYourTurn)

	_, err = Apply(w, EndTurnCmd(1), NewRand(1))
	require.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, 0, w.Current)

	_, err = Apply(w, EndTurnCmd(7), NewRand(1))
	require.ErrorIs(t, err, ErrUnknownID)
}

func TestApplyDispatch(t *testing.T) {
	w := newTestWorld(6, 6)
	settler := placeUnit(w, 0, Settler, Coord{2, 2})
	scout := placeUnit(w, 0, Scout, Coord{4, 4})
	rng := NewRand(5)

	out, err := Apply(w, Move(0, scout.ID, Coord{5, 5}), rng)
	require.NoError(t, err)
	require.NotNil(t, out.Move)
	assert.Equal(t, 1, out.Move.Cost)

	out, err = Apply(w, Found(0, settler.ID), rng)
	require.NoError(t, err)
	require.NotNil(t, out.Settlement)
	sid := out.Settlement.ID

	_, err = Apply(w, SetFocusCmd(0, sid, FocusOutput), rng)
	require.NoError(t, err)
	_, err = Apply(w, Research(0, TechCartography), rng)
	require.NoError(t, err)

	w.Players[0].Output = 10
	out, err = Apply(w, Buy(0, sid, Soldier), rng)
	require.NoError(t, err)
	require.NotNil(t, out.Unit)
	assert.Equal(t, Soldier, out.Unit.Kind)

	_, err = Apply(w, Build(0, Coord{2, 2}, Farm), rng)
	require.NoError(t, err)

	out, err = Apply(w, EndTurnCmd(0), rng)
	require.NoError(t, err)
	require.NotNil(t, out.Turn)
	assert.Equal(t, 1, w.Current)

	_, err = Apply(w, Command{Type: "dance", Player: 1}, rng)
	require.ErrorIs(t, err, ErrUnknownKind)
	_, err = Apply(w, Command{Type: CmdMove, Player: 1, Unit: scout.ID}, rng)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCommandJSON(t *testing.T) {
	cmd := Move(0, 3, Coord{1, 2})
	data, err := json.Marshal(cmd)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"move","player":0,"unit":3,"to":{"x":1,"y":2}}`, string(data))
	assert.Equal(t, "p0 move unit 3 to (1,2)", cmd.String())
}

func TestReplayWithCommandRandIsDeterministic(t *testing.T) {
	const seed = 1234
	script := []Command{
		Found(0, 1),
		EndTurnCmd(0),
		Found(1, 3),
		EndTurnCmd(1),
	}
	run := func() []byte {
		w, err := NewGame(Setup{
			Terrain: [][]Terrain{
				{Plains, Plains, Plains, Plains, Plains},
				{Plains, Plains, Plains, Plains, Plains},
				{Plains, Plains, Plains, Plains, Plains},
				{Plains, Plains, Plains, Plains, Plains},
				{Plains, Plains, Plains, Plains, Plains},
			},
			Spawns: []Coord{{0, 0}, {4, 4}},
		})
		require.NoError(t, err)
		for seq, cmd := range script {
			_, err := Apply(w, cmd, CommandRand(seed, seq))
			require.NoError(t, err)
		}
		return mustSnapshot(t, w)
	}
	assert.Equal(t, run(), run())
}
