package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontier/internal/ai"
	"frontier/internal/database"
	"frontier/internal/game"
)

func newTestStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "frontier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func humanSeats() []Seat {
	return []Seat{{Name: "Ada"}, {Name: "Grace"}}
}

// settlerOf returns the id of the player's first founder unit.
func settlerOf(t *testing.T, s *Session, player int) int {
	t.Helper()
	for _, u := range s.World.UnitsOf(player) {
		if u.Kind == game.Settler {
			return u.ID
		}
	}
	t.Fatalf("player %d has no settler", player)
	return 0
}

func TestCreateOnRegisteredMap(t *testing.T) {
	m := NewManager(nil)
	s, err := m.Create(Options{MapID: "duel", Seed: 9, Seats: humanSeats()})
	require.NoError(t, err)

	assert.Equal(t, "duel", s.MapID)
	assert.Equal(t, "Duel", s.Name)
	assert.Len(t, s.World.Players, 2)
	assert.Equal(t, NoWinner, s.Winner)
	assert.False(t, s.CurrentIsAI())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, err = m.Create(Options{MapID: "duel", Seats: []Seat{{Name: "solo"}, {Name: "b"}, {Name: "c"}}})
	assert.Error(t, err, "seat count must match spawns")
	_, err = m.Create(Options{MapID: "atlantis"})
	assert.Error(t, err)
}

func TestApplyAdvancesSeqOnlyOnSuccess(t *testing.T) {
	m := NewManager(nil)
	s, err := m.Create(Options{MapID: "duel", Seed: 3, Seats: humanSeats()})
	require.NoError(t, err)

	_, err = s.Apply(game.EndTurnCmd(1))
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	assert.Zero(t, s.Seq)

	out, err := s.Apply(game.Found(0, settlerOf(t, s, 0)))
	require.NoError(t, err)
	require.NotNil(t, out.Settlement)
	assert.Equal(t, 1, s.Seq)

	history := s.History(0)
	require.Len(t, history, 2)
	assert.Equal(t, database.EventGameStart, history[0].Type)
	assert.Equal(t, database.EventSettlementFounded, history[1].Type)
	assert.Len(t, s.History(1), 1)
	assert.Empty(t, s.History(10))
}

func TestWinEndsTheGame(t *testing.T) {
	m := NewManager(nil)
	s, err := m.Create(Options{MapID: "duel", Seed: 3, Seats: humanSeats()})
	require.NoError(t, err)

	// Player 1 loses its only founder; player 0 still has one.
	s.Read(func(w *game.World) {
		for id, u := range w.Units {
			if u.Owner == 1 {
				delete(w.Units, id)
			}
		}
	})
	_, err = s.Apply(game.Found(0, settlerOf(t, s, 0)))
	require.NoError(t, err)

	assert.True(t, s.Finished())
	assert.Equal(t, 0, s.Winner)
	assert.Equal(t, database.StatusFinished, s.Status())

	_, err = s.Apply(game.EndTurnCmd(0))
	assert.ErrorIs(t, err, ErrGameOver)

	history := s.History(0)
	last := history[len(history)-1]
	assert.Equal(t, database.EventGameEnd, last.Type)
	assert.Contains(t, last.Message, "Ada wins")
}

func TestRunAIStopsAtHumanSeat(t *testing.T) {
	m := NewManager(nil)
	s, err := m.Create(Options{MapID: "duel", Seed: 5})
	require.NoError(t, err)
	require.False(t, s.Seats[0].AI)
	require.True(t, s.Seats[1].AI)

	played, err := s.RunAI(0)
	require.NoError(t, err)
	assert.Zero(t, played, "human to move")

	_, err = s.Apply(game.EndTurnCmd(0))
	require.NoError(t, err)
	require.True(t, s.CurrentIsAI())

	played, err = s.RunAI(0)
	require.NoError(t, err)
	assert.Equal(t, 1, played)
	assert.Equal(t, 0, s.World.Current)
	assert.NotEmpty(t, s.World.SettlementsOf(1))
	require.NoError(t, s.Verify())
}

func TestPersistedGameReloadsAndVerifies(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store)

	s, err := m.Create(Options{MapID: "duel", Seed: 42, Seats: []Seat{
		{Name: "North", AI: true, Personality: ai.Aggressive},
		{Name: "South", AI: true, Personality: ai.Expansionist},
	}})
	require.NoError(t, err)
	_, err = s.RunAI(30)
	require.NoError(t, err)
	require.Greater(t, s.Seq, 0)

	require.NoError(t, m.Verify(s.ID))

	fresh := NewManager(store)
	loaded, err := fresh.Load(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Seq, loaded.Seq)
	assert.Equal(t, s.Seats, loaded.Seats)
	assert.Equal(t, s.Winner, loaded.Winner)

	want, err := s.World.MarshalSnapshot()
	require.NoError(t, err)
	got, err := loaded.World.MarshalSnapshot()
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
	assert.Equal(t, len(s.History(0)), len(loaded.History(0)))

	again, err := fresh.Load(s.ID)
	require.NoError(t, err)
	assert.Same(t, loaded, again)

	list, err := fresh.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.ID, list[0].ID)
	assert.True(t, list[0].Loaded)
	assert.Equal(t, 2, list[0].Players)
}

func TestVerifyDetectsTampering(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store)
	s, err := m.Create(Options{MapID: "duel", Seed: 8, Seats: humanSeats()})
	require.NoError(t, err)
	_, err = s.Apply(game.Found(0, settlerOf(t, s, 0)))
	require.NoError(t, err)

	require.NoError(t, m.Verify(s.ID))

	require.NoError(t, store.SaveGameState(s.ID, `{"width":1}`, s.Seq, 1, 0))
	assert.ErrorIs(t, m.Verify(s.ID), ErrMismatch)
}

func TestDeleteAndUnknownLoad(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store)
	s, err := m.Create(Options{MapID: "duel", Seed: 1, Seats: humanSeats()})
	require.NoError(t, err)

	require.NoError(t, m.Delete(s.ID))
	_, ok := m.Get(s.ID)
	assert.False(t, ok)
	_, err = m.Load(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, NewManager(nil).Delete("nope"), ErrNotFound)
}

func TestSimulateIsReproducible(t *testing.T) {
	run := func() *SimResult {
		res, err := NewManager(nil).Simulate(Options{Seed: 99, MapID: GeneratedMapID}, 40)
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.Equal(t, a.MapID, b.MapID)
	assert.Equal(t, a.Commands, b.Commands)
	assert.Equal(t, a.Settlements, b.Settlements)
	assert.Equal(t, a.Revealed, b.Revealed)
	assert.Equal(t, a.Winner, b.Winner)
	assert.Positive(t, a.PlayerTurns)
}

func TestParseSeat(t *testing.T) {
	assert.Equal(t, Seat{Name: "Ada"}, ParseSeat("Ada", "human"))
	assert.Equal(t, Seat{Name: "Bot", AI: true, Personality: ai.Aggressive}, ParseSeat("Bot", "ai:aggressive"))
	assert.Equal(t, ai.Balanced, ParseSeat("Bot", "ai:").Personality)

	seat := Seat{Name: "x", AI: true, Personality: ai.Expansionist}
	assert.Equal(t, seat, ParseSeat(seat.Name, seat.Controller()))
}

func TestReplayReportsFailingCommand(t *testing.T) {
	m := NewManager(nil)
	s, err := m.Create(Options{MapID: "duel", Seed: 2, Seats: humanSeats()})
	require.NoError(t, err)

	_, err = Replay(s.Setup, s.Seed, []game.Command{game.EndTurnCmd(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	assert.Contains(t, err.Error(), "replay command 0")
}
