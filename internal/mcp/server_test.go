package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontier/internal/game"
	"frontier/internal/session"
)

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, h handler, args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
	result, err := h(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, result.IsError
}

// newGame starts a duel and returns the server and the game id.
func newGame(t *testing.T, allHuman bool) (*Server, string) {
	t.Helper()
	s := NewServer(session.NewManager(nil), 4)
	text, isErr := call(t, s.handleNewGame, map[string]interface{}{
		"map_id": "duel", "seed": float64(4), "all_human": allHuman,
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Created game: ")

	games, err := s.sessions.List()
	require.NoError(t, err)
	require.Len(t, games, 1)
	return s, games[0].ID
}

func settlerOf(t *testing.T, s *Server, id string, player int) int {
	t.Helper()
	sess, ok := s.sessions.Get(id)
	require.True(t, ok)
	unit := -1
	sess.Read(func(w *game.World) {
		for _, u := range w.UnitsOf(player) {
			if u.Kind == game.Settler {
				unit = u.ID
				return
			}
		}
	})
	require.NotEqual(t, -1, unit)
	return unit
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(session.NewManager(nil), 0)
	require.NotNil(t, s.MCPServer())
}

// rpc sends one JSON-RPC request to the MCP server and returns the raw reply.
func rpc(t *testing.T, s *Server, request string) string {
	t.Helper()
	reply := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(request))
	data, err := json.Marshal(reply)
	require.NoError(t, err)
	return string(data)
}

func TestInstructionsDescribeTheRules(t *testing.T) {
	s := NewServer(session.NewManager(nil), 0)

	reply := rpc(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`)
	assert.Contains(t, reply, "no settlers left is eliminated")
	assert.Contains(t, reply, "In a two-player game the")
	assert.NotContains(t, reply, "units or settlements is eliminated")

	reply = rpc(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	assert.Contains(t, reply, "Any unit arriving on enemy units destroys them")
	assert.Contains(t, reply, "a soldier arriving on an enemy settlement captures it")
}

func TestGameStateRespectsViewer(t *testing.T) {
	s, id := newGame(t, true)

	text, isErr := call(t, s.handleGameState, map[string]interface{}{"game_id": id, "player": float64(0)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Viewing as Player 1 (player 0)")
	assert.Contains(t, text, "Turn 1, Player 1 to move")
	assert.Contains(t, text, "settler of player 0")

	text, isErr = call(t, s.handleGameState, map[string]interface{}{"game_id": id, "player": float64(-1)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Full board")
	assert.Contains(t, text, "settler of player 1")

	text, isErr = call(t, s.handleGameState, map[string]interface{}{"game_id": id, "player": float64(7)})
	assert.True(t, isErr)
	assert.Contains(t, text, "not a seat")
}

func TestCommandToolsApplyAndReject(t *testing.T) {
	s, id := newGame(t, true)

	text, isErr := call(t, s.handleFound, map[string]interface{}{
		"game_id": id, "player": float64(0), "unit": float64(settlerOf(t, s, id, 0)),
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Settlement #")

	text, isErr = call(t, s.handleEndTurn, map[string]interface{}{"game_id": id, "player": float64(1)})
	assert.True(t, isErr)
	assert.Contains(t, text, "Rejected (not_your_turn)")

	text, isErr = call(t, s.handleMove, map[string]interface{}{"game_id": id, "player": float64(0), "unit": float64(1)})
	assert.True(t, isErr)
	assert.Contains(t, text, `missing argument "x"`)

	text, isErr = call(t, s.handleEndTurn, map[string]interface{}{"game_id": id, "player": float64(0)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Turn 1 ended")
	assert.Contains(t, text, "Player 2 to move")

	text, _ = call(t, s.handleHistory, map[string]interface{}{"game_id": id})
	assert.Contains(t, text, "founded settlement")
}

func TestAISeatsPlayAfterEndTurn(t *testing.T) {
	s, id := newGame(t, false)

	text, isErr := call(t, s.handleEndTurn, map[string]interface{}{"game_id": id, "player": float64(1)})
	assert.True(t, isErr)
	assert.Contains(t, text, "AI controlled")

	text, isErr = call(t, s.handleEndTurn, map[string]interface{}{"game_id": id, "player": float64(0)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "AI played 1 turn(s)")
	assert.Contains(t, text, "Player 1 to move")
}

func TestDescribeTile(t *testing.T) {
	s, id := newGame(t, true)

	settler := settlerOf(t, s, id, 0)
	var spawn game.Coord
	sess, _ := s.sessions.Get(id)
	sess.Read(func(w *game.World) {
		u, _ := w.Unit(settler)
		spawn = u.Pos
	})

	text, isErr := call(t, s.handleDescribeTile, map[string]interface{}{
		"game_id": id, "player": float64(0), "x": float64(spawn.X), "y": float64(spawn.Y),
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "settler of Player 1")
	assert.Contains(t, text, "Unclaimed")

	text, isErr = call(t, s.handleDescribeTile, map[string]interface{}{
		"game_id": id, "player": float64(0), "x": float64(40), "y": float64(0),
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "off the map")
}

func TestToolsReportBadGames(t *testing.T) {
	s := NewServer(session.NewManager(nil), 4)

	text, isErr := call(t, s.handleCheckWin, map[string]interface{}{})
	assert.True(t, isErr)
	assert.Contains(t, text, `missing argument "game_id"`)

	_, isErr = call(t, s.handleCheckWin, map[string]interface{}{"game_id": "nope"})
	assert.True(t, isErr)

	text, isErr = call(t, s.handleListGames, nil)
	require.False(t, isErr)
	assert.Contains(t, text, "Games (0)")
	assert.Contains(t, text, "duel")
}

func TestCheckWin(t *testing.T) {
	s, id := newGame(t, true)
	text, isErr := call(t, s.handleCheckWin, map[string]interface{}{"game_id": id})
	require.False(t, isErr)
	assert.Contains(t, text, "Player 1: alive")
	assert.Contains(t, text, "No winner yet")
}
