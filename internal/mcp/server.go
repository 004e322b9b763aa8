// Package mcp exposes the game over the Model Context Protocol so an agent
// can create games and play seats through tool calls.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"frontier/internal/ai"
	"frontier/internal/game"
	"frontier/internal/session"
	"frontier/pkg/maps"
)

// Server wraps an MCP server whose tools act on a session manager.
type Server struct {
	sessions  *session.Manager
	aiTurns   int
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server with all tools registered. aiTurns bounds
// the AI turns played after end_turn.
func NewServer(sessions *session.Manager, aiTurns int) *Server {
	s := &Server{sessions: sessions, aiTurns: aiTurns}
	s.mcpServer = server.NewMCPServer(
		"Frontier",
		"0.3.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Frontier - turn-based grid strategy

Players found settlements with settlers, grow them by working claimed tiles,
buy units, build improvements and research technologies. A player with no
settlements and no settlers left is eliminated. In a two-player game the
other player then wins.

Coordinates are x (column) then y (row), starting at 0. Every action names
the acting player; only the player whose turn it is may act, and end_turn
passes play on. AI seats move automatically after end_turn.

AVAILABLE TOOLS:
- new_game, list_games, game_state, history
- move, found, buy, build, set_focus, set_research, end_turn
- describe_tile, check_win`),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over stdin and stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func enumProp(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description, "enum": values}
}

func (s *Server) registerTools() {
	gameID := prop("string", "Game ID")
	player := prop("integer", "Acting player slot")

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game. Seat 0 is yours; the other seats are AI unless all_human is set",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map_id":      prop("string", "Built-in map id, or 'generated' for a procedural map (default)"),
				"seed":        prop("integer", "Seed for map generation and all randomness (0 picks one)"),
				"players":     prop("integer", "Player count for generated maps"),
				"personality": enumProp("AI personality", string(ai.Balanced), string(ai.Aggressive), string(ai.Expansionist)),
				"all_human":   prop("boolean", "Make every seat human controlled"),
			},
		},
	}, s.handleNewGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List known games and built-in maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListGames)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the board, units, settlements and resources as a player sees them",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"player":  prop("integer", "Viewing player, -1 for the full board"),
			},
			Required: []string{"game_id", "player"},
		},
	}, s.handleGameState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "history",
		Description: "Show the game's event feed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"since":   prop("integer", "First event index to show (default 0)"),
			},
			Required: []string{"game_id"},
		},
	}, s.handleHistory)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move a unit one tile, diagonals included. Any unit arriving on enemy units destroys them; a soldier arriving on an enemy settlement captures it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"player":  player,
				"unit":    prop("integer", "Unit ID"),
				"x":       prop("integer", "Target column"),
				"y":       prop("integer", "Target row"),
			},
			Required: []string{"game_id", "player", "unit", "x", "y"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "found",
		Description: "Found a settlement with a settler on its current tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"player":  player,
				"unit":    prop("integer", "Settler unit ID"),
			},
			Required: []string{"game_id", "player", "unit"},
		},
	}, s.handleFound)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "buy",
		Description: "Buy a unit at one of your settlements",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id":    gameID,
				"player":     player,
				"settlement": prop("integer", "Settlement ID"),
				"kind":       enumProp("Unit kind", string(game.Scout), string(game.Soldier), string(game.Settler)),
			},
			Required: []string{"game_id", "player", "settlement", "kind"},
		},
	}, s.handleBuy)

	improvements := make([]string, 0, len(game.Improvements()))
	for _, k := range game.Improvements() {
		improvements = append(improvements, string(k))
	}
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "build",
		Description: "Build an improvement on a tile one of your settlements claims",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"player":  player,
				"x":       prop("integer", "Column"),
				"y":       prop("integer", "Row"),
				"kind":    enumProp("Improvement kind", improvements...),
			},
			Required: []string{"game_id", "player", "x", "y", "kind"},
		},
	}, s.handleBuild)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "set_focus",
		Description: "Choose whether a settlement works food or output tiles first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id":    gameID,
				"player":     player,
				"settlement": prop("integer", "Settlement ID"),
				"focus":      enumProp("Focus", string(game.FocusFood), string(game.FocusOutput)),
			},
			Required: []string{"game_id", "player", "settlement", "focus"},
		},
	}, s.handleSetFocus)

	techs := make([]string, 0)
	for _, t := range game.Techs() {
		techs = append(techs, string(t.ID))
	}
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "set_research",
		Description: "Pick the technology research points go to",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"player":  player,
				"tech":    enumProp("Technology", techs...),
			},
			Required: []string{"game_id", "player", "tech"},
		},
	}, s.handleSetResearch)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "end_turn",
		Description: "End your turn. Settlements grow, income is collected and AI seats play until a human is to move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"player":  player,
			},
			Required: []string{"game_id", "player"},
		},
	}, s.handleEndTurn)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Describe one tile: terrain, improvements, yield, owner and units, as a player sees it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"player":  prop("integer", "Viewing player, -1 for the full board"),
				"x":       prop("integer", "Column"),
				"y":       prop("integer", "Row"),
			},
			Required: []string{"game_id", "player", "x", "y"},
		},
	}, s.handleDescribeTile)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "check_win",
		Description: "Report eliminated players and the winner, if any",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
			},
			Required: []string{"game_id"},
		},
	}, s.handleCheckWin)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a numeric argument; JSON numbers arrive as float64.
func intArg(args map[string]interface{}, name string) (int, error) {
	switch v := args[name].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("missing argument %q", name)
	}
	return 0, fmt.Errorf("argument %q must be a number", name)
}

func stringArg(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing argument %q", name)
	}
	return v, nil
}

func (s *Server) session(args map[string]interface{}) (*session.Session, error) {
	id, err := stringArg(args, "game_id")
	if err != nil {
		return nil, err
	}
	return s.sessions.Load(id)
}

// Tool handlers

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mapID, _ := args["map_id"].(string)
	personality, _ := args["personality"].(string)
	allHuman, _ := args["all_human"].(bool)
	seed, _ := intArg(args, "seed")
	players, _ := intArg(args, "players")

	opts := session.Options{MapID: mapID, Seed: uint64(seed), Generator: maps.DefaultOptions()}
	if players > 0 {
		opts.Generator.Players = players
	}
	if m := maps.Get(mapID); m != nil {
		players = m.Players()
	} else if players <= 0 {
		players = opts.Generator.Players
	}
	opts.Seats = make([]session.Seat, players)
	for i := range opts.Seats {
		opts.Seats[i] = session.Seat{Name: fmt.Sprintf("Player %d", i+1)}
		if i > 0 && !allHuman {
			opts.Seats[i] = session.Seat{Name: fmt.Sprintf("AI %d", i), AI: true, Personality: ai.Personality(personality)}
		}
	}

	sess, err := s.sessions.Create(opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := sess.RunAI(s.aiTurns); err != nil {
		log.Error().Err(err).Str("game", sess.ID).Msg("AI turn failed")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created game: %s\nMap: %s (%s)\nSeed: %d\n\n", sess.ID, sess.Name, sess.MapID, sess.Seed)
	sess.Read(func(w *game.World) {
		b.WriteString(formatView(w.ViewFor(0), 0, sess.Seats))
	})
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	games, err := s.sessions.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Games (%d):\n", len(games))
	for _, g := range games {
		fmt.Fprintf(&b, "- %s %q on %s, %d players, %s", g.ID, g.Name, g.MapID, g.Players, g.Status)
		if g.Winner != session.NoWinner {
			fmt.Fprintf(&b, ", won by player %d", g.Winner)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nMaps:\n")
	for _, m := range maps.List() {
		fmt.Fprintf(&b, "- %s: %s, %dx%d, %d players\n", m.ID, m.Name, m.Width, m.Height, m.Players)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sess, err := s.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	viewer, err := intArg(args, "player")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if viewer != game.Spectator && (viewer < 0 || viewer >= len(sess.Seats)) {
		return mcp.NewToolResultError(fmt.Sprintf("player %d is not a seat of this game", viewer)), nil
	}

	var text string
	sess.Read(func(w *game.World) {
		text = formatView(w.ViewFor(viewer), viewer, sess.Seats)
	})
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sess, err := s.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	since, _ := intArg(args, "since")

	events := sess.History(since)
	if len(events) == 0 {
		return mcp.NewToolResultText("No events"), nil
	}
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "turn %d: %s\n", e.Turn, e.Message)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// apply runs a command built from the tool arguments and reports the result.
func (s *Server) apply(request mcp.CallToolRequest, build func(args map[string]interface{}, player int) (game.Command, error)) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sess, err := s.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	player, err := intArg(args, "player")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if player >= 0 && player < len(sess.Seats) && sess.Seats[player].AI {
		return mcp.NewToolResultError(fmt.Sprintf("player %d is AI controlled", player)), nil
	}
	cmd, err := build(args, player)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := sess.Apply(cmd)
	if err != nil && !isPersistError(err) {
		return mcp.NewToolResultError(formatRejection(err)), nil
	}
	if err != nil {
		log.Error().Err(err).Str("game", sess.ID).Msg("Failed to persist command")
	}

	var b strings.Builder
	b.WriteString(formatOutcome(cmd, out, sess.Seats))

	if cmd.Type == game.CmdEndTurn {
		played, err := sess.RunAI(s.aiTurns)
		if err != nil {
			log.Error().Err(err).Str("game", sess.ID).Msg("AI turn failed")
		}
		if played > 0 {
			fmt.Fprintf(&b, "AI played %d turn(s)\n", played)
		}
	}
	sess.Read(func(w *game.World) {
		if sess.Winner != session.NoWinner {
			fmt.Fprintf(&b, "\nGAME OVER: %s wins on turn %d\n", seatName(sess.Seats, sess.Winner), w.Turn)
			return
		}
		fmt.Fprintf(&b, "\nTurn %d, %s to move\n", w.Turn, seatName(sess.Seats, w.Current))
	})
	return mcp.NewToolResultText(b.String()), nil
}

// isPersistError reports whether err came from storage after the command
// had already been applied.
func isPersistError(err error) bool {
	if _, ok := game.AsRuleError(err); ok {
		return false
	}
	return !errors.Is(err, game.ErrUnknownID) && !errors.Is(err, session.ErrGameOver)
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.apply(request, func(args map[string]interface{}, player int) (game.Command, error) {
		unit, err := intArg(args, "unit")
		if err != nil {
			return game.Command{}, err
		}
		x, err := intArg(args, "x")
		if err != nil {
			return game.Command{}, err
		}
		y, err := intArg(args, "y")
		if err != nil {
			return game.Command{}, err
		}
		return game.Move(player, unit, game.Coord{X: x, Y: y}), nil
	})
}

func (s *Server) handleFound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.apply(request, func(args map[string]interface{}, player int) (game.Command, error) {
		unit, err := intArg(args, "unit")
		if err != nil {
			return game.Command{}, err
		}
		return game.Found(player, unit), nil
	})
}

func (s *Server) handleBuy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.apply(request, func(args map[string]interface{}, player int) (game.Command, error) {
		settlement, err := intArg(args, "settlement")
		if err != nil {
			return game.Command{}, err
		}
		kind, err := stringArg(args, "kind")
		if err != nil {
			return game.Command{}, err
		}
		return game.Buy(player, settlement, game.UnitKind(kind)), nil
	})
}

func (s *Server) handleBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.apply(request, func(args map[string]interface{}, player int) (game.Command, error) {
		x, err := intArg(args, "x")
		if err != nil {
			return game.Command{}, err
		}
		y, err := intArg(args, "y")
		if err != nil {
			return game.Command{}, err
		}
		kind, err := stringArg(args, "kind")
		if err != nil {
			return game.Command{}, err
		}
		return game.Build(player, game.Coord{X: x, Y: y}, game.Improvement(kind)), nil
	})
}

func (s *Server) handleSetFocus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.apply(request, func(args map[string]interface{}, player int) (game.Command, error) {
		settlement, err := intArg(args, "settlement")
		if err != nil {
			return game.Command{}, err
		}
		focus, err := stringArg(args, "focus")
		if err != nil {
			return game.Command{}, err
		}
		return game.SetFocusCmd(player, settlement, game.Focus(focus)), nil
	})
}

func (s *Server) handleSetResearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.apply(request, func(args map[string]interface{}, player int) (game.Command, error) {
		tech, err := stringArg(args, "tech")
		if err != nil {
			return game.Command{}, err
		}
		return game.Research(player, game.TechID(tech)), nil
	})
}

func (s *Server) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.apply(request, func(args map[string]interface{}, player int) (game.Command, error) {
		return game.EndTurnCmd(player), nil
	})
}

func (s *Server) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sess, err := s.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	viewer, err := intArg(args, "player")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := intArg(args, "x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := intArg(args, "y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var text string
	var outOfBounds bool
	sess.Read(func(w *game.World) {
		c := game.Coord{X: x, Y: y}
		if !w.InBounds(c) {
			outOfBounds = true
			return
		}
		text = describeTile(w, viewer, c, sess.Seats)
	})
	if outOfBounds {
		return mcp.NewToolResultError(fmt.Sprintf("(%d,%d) is off the map", x, y)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleCheckWin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	sess.Read(func(w *game.World) {
		for _, p := range w.Players {
			status := "alive"
			if w.Eliminated(p.ID) {
				status = "eliminated"
			}
			fmt.Fprintf(&b, "%s: %s, %d settlements, %d units\n",
				seatName(sess.Seats, p.ID), status, len(w.SettlementsOf(p.ID)), len(w.UnitsOf(p.ID)))
		}
		if winner, ok := w.CheckWin(); ok {
			fmt.Fprintf(&b, "Winner: %s\n", seatName(sess.Seats, winner))
		} else {
			b.WriteString("No winner yet\n")
		}
	})
	return mcp.NewToolResultText(b.String()), nil
}
