// Package server is the local presentation bridge: a websocket endpoint a
// board renderer attaches to in order to start games, send commands and
// receive the world as its viewing player sees it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"frontier/internal/session"
)

// Version is reported to clients in the welcome message.
const Version = "0.3.0"

// Config holds server configuration.
type Config struct {
	Addr           string
	AITurns        int      // AI turns played after each human command
	RateLimit      float64  // messages per second per connection
	RateBurst      int
	OriginPatterns []string // extra websocket origins besides same-host
	ShutdownWait   time.Duration
}

// DefaultConfig returns the configuration used when flags are not set.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8340",
		AITurns:      session.DefaultAITurns,
		RateLimit:    20,
		RateBurst:    40,
		ShutdownWait: 5 * time.Second,
	}
}

// Server is the presentation bridge server.
type Server struct {
	cfg      Config
	sessions *session.Manager
	hub      *Hub
	server   *http.Server
}

// New creates a new server on top of a session manager.
func New(cfg Config, sessions *session.Manager) *Server {
	def := DefaultConfig()
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = def.RateBurst
	}
	if cfg.ShutdownWait <= 0 {
		cfg.ShutdownWait = def.ShutdownWait
	}
	s := &Server{cfg: cfg, sessions: sessions}
	s.hub = NewHub(s)
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/games", s.handleListGames)

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msgf("Presentation bridge listening on ws://%s/ws", s.cfg.Addr)
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownWait)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// handleWebSocket accepts a websocket connection and starts its pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.OriginPatterns,
	})
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}

	client := NewClient(s.hub, conn, s.cfg.RateLimit, s.cfg.RateBurst)
	if !s.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go client.WritePump(r.Context())
	client.ReadPump(r.Context())
}

// handleListGames returns the known games as JSON.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	games, err := s.sessions.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list games")
		http.Error(w, "Failed to list games", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(games)
}
