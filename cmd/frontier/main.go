// Command frontier runs the Frontier strategy engine: a websocket bridge for
// board renderers, an MCP tool server for agents, headless AI simulations
// and replay verification of stored games.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"frontier/internal/database"
	"frontier/internal/mcp"
	"frontier/internal/server"
	"frontier/internal/session"
	"frontier/pkg/maps"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("frontier failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "frontier",
		Usage:   "deterministic turn-based grid strategy engine",
		Version: server.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("FRONTIER_DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "pretty",
				Usage:   "human readable console logs",
				Sources: cli.EnvVars("FRONTIER_PRETTY"),
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "SQLite database path",
				Value:   "data/frontier.db",
				Sources: cli.EnvVars("FRONTIER_DB"),
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			serveCommand(),
			simulateCommand(),
			replayCommand(),
			mcpCommand(),
			mapsCommand(),
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cmd.Bool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cmd.Bool("pretty") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return ctx, nil
}

func openManager(cmd *cli.Command) (*session.Manager, *database.DB, error) {
	db, err := database.New(cmd.String("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return session.NewManager(db), db, nil
}

func serveCommand() *cli.Command {
	def := server.DefaultConfig()
	return &cli.Command{
		Name:  "serve",
		Usage: "run the websocket presentation bridge",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "listen address",
				Value:   def.Addr,
				Sources: cli.EnvVars("FRONTIER_ADDR"),
			},
			&cli.IntFlag{
				Name:  "ai-turns",
				Usage: "AI turns played after each human command",
				Value: def.AITurns,
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "messages per second allowed per connection",
				Value: def.RateLimit,
			},
			&cli.IntFlag{
				Name:  "burst",
				Usage: "message burst allowed per connection",
				Value: def.RateBurst,
			},
			&cli.StringSliceFlag{
				Name:    "origin",
				Usage:   "additional allowed websocket origin pattern",
				Sources: cli.EnvVars("FRONTIER_ORIGINS"),
			},
			&cli.DurationFlag{
				Name:  "shutdown-wait",
				Usage: "grace period for open connections on shutdown",
				Value: def.ShutdownWait,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sessions, db, err := openManager(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Config{
				Addr:           cmd.String("addr"),
				AITurns:        cmd.Int("ai-turns"),
				RateLimit:      cmd.Float64("rate"),
				RateBurst:      cmd.Int("burst"),
				OriginPatterns: cmd.StringSlice("origin"),
				ShutdownWait:   cmd.Duration("shutdown-wait"),
			}, sessions)

			log.Info().Str("db", cmd.String("db")).Msg("Database opened")
			if err := srv.Run(ctx); err != nil {
				return err
			}
			log.Info().Msg("Server stopped")
			return nil
		},
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "play headless AI-only games and print their results as JSON",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "seed of the first game, 0 picks one",
			},
			&cli.StringFlag{
				Name:  "map",
				Usage: "built-in map id, or generated",
				Value: session.GeneratedMapID,
			},
			&cli.IntFlag{
				Name:  "players",
				Usage: "player count on generated maps",
				Value: 2,
			},
			&cli.IntFlag{
				Name:  "turns",
				Usage: "maximum player turns per game",
				Value: 200,
			},
			&cli.IntFlag{
				Name:  "games",
				Usage: "number of games, seeds counting up from --seed",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "store the games in the database",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sessions := session.NewManager(nil)
			if cmd.Bool("save") {
				m, db, err := openManager(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
				sessions = m
			}

			gen := maps.DefaultOptions()
			gen.Players = cmd.Int("players")

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			seed := cmd.Uint64("seed")
			for i := 0; i < cmd.Int("games"); i++ {
				opts := session.Options{MapID: cmd.String("map"), Generator: gen}
				if seed != 0 {
					opts.Seed = seed + uint64(i)
				}
				res, err := sessions.Simulate(opts, cmd.Int("turns"))
				if err != nil {
					return fmt.Errorf("simulation %d: %w", i+1, err)
				}
				if err := enc.Encode(res); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "replay stored games from their command logs and compare with the saved state",
		ArgsUsage: "[game-id ...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sessions, db, err := openManager(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			ids := cmd.Args().Slice()
			if len(ids) == 0 {
				games, err := sessions.List()
				if err != nil {
					return err
				}
				for _, g := range games {
					ids = append(ids, g.ID)
				}
			}

			failed := 0
			for _, id := range ids {
				if err := sessions.Verify(id); err != nil {
					failed++
					fmt.Printf("%s  FAIL  %v\n", id, err)
					continue
				}
				fmt.Printf("%s  ok\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d games failed verification", failed, len(ids))
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "serve the game as MCP tools over stdio",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "ai-turns",
				Usage: "AI turns played after end_turn",
				Value: session.DefaultAITurns,
			},
			&cli.BoolFlag{
				Name:  "memory",
				Usage: "keep games in memory only",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sessions := session.NewManager(nil)
			if !cmd.Bool("memory") {
				m, db, err := openManager(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
				sessions = m
			}
			log.Info().Msg("Serving MCP over stdio")
			return mcp.NewServer(sessions, cmd.Int("ai-turns")).ServeStdio()
		},
	}
}

func mapsCommand() *cli.Command {
	def := maps.DefaultOptions()
	return &cli.Command{
		Name:  "maps",
		Usage: "list built-in maps or preview generated ones",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list built-in maps",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := maps.LoadAll(); err != nil {
						return err
					}
					for _, m := range maps.List() {
						fmt.Printf("%-12s %-16s %2dx%-2d %d players\n", m.ID, m.Name, m.Width, m.Height, m.Players)
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "print a built-in map",
				ArgsUsage: "<map-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := maps.LoadAll(); err != nil {
						return err
					}
					m := maps.Get(cmd.Args().First())
					if m == nil {
						return fmt.Errorf("unknown map %q", cmd.Args().First())
					}
					fmt.Print(m.Debug())
					return nil
				},
			},
			{
				Name:  "generate",
				Usage: "generate a map and print it",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "seed", Value: def.Seed},
					&cli.IntFlag{Name: "width", Value: def.Width},
					&cli.IntFlag{Name: "height", Value: def.Height},
					&cli.IntFlag{Name: "players", Value: def.Players},
					&cli.Float64Flag{Name: "water", Usage: "water level", Value: def.WaterLevel},
					&cli.Float64Flag{Name: "roughness", Value: def.Roughness},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					m, err := maps.NewGenerator(maps.GeneratorOptions{
						Width:      cmd.Int("width"),
						Height:     cmd.Int("height"),
						Seed:       cmd.Uint64("seed"),
						Players:    cmd.Int("players"),
						WaterLevel: cmd.Float64("water"),
						Roughness:  cmd.Float64("roughness"),
					}).Generate()
					if err != nil {
						return err
					}
					fmt.Print(m.Debug())
					return nil
				},
			},
		},
	}
}
