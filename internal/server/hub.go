package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"frontier/internal/game"
	"frontier/internal/protocol"
	"frontier/pkg/maps"
)

// Hub maintains the set of active clients and which game each one watches.
type Hub struct {
	server *Server

	// Registered clients
	clients map[*Client]bool

	// Clients attached to each game
	gameClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(server *Server) *Hub {
	return &Hub{
		server:      server,
		clients:     make(map[*Client]bool),
		gameClients: make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.sendWelcome(client)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.closeSend()
			}
			h.gameClients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client to the hub. It reports false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub. It never blocks the caller.
func (h *Hub) Unregister(client *Client) {
	go func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()
}

func (h *Hub) sendWelcome(client *Client) {
	infos := maps.List()
	payload := protocol.WelcomePayload{
		ClientID: client.ID,
		Version:  Version,
		Maps:     make([]protocol.MapInfo, 0, len(infos)),
	}
	for _, m := range infos {
		payload.Maps = append(payload.Maps, protocol.MapInfo{
			ID: m.ID, Name: m.Name, Width: m.Width, Height: m.Height, Players: m.Players,
		})
	}
	client.SendPayload(protocol.TypeWelcome, payload)
}

func (h *Hub) handleDisconnect(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	if gameID := client.Game(); gameID != "" {
		if clients, ok := h.gameClients[gameID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.gameClients, gameID)
			}
		}
	}

	client.closeSend()
	log.Debug().Str("client", client.ID).Msg("Client disconnected")
}

// AttachClient points a client at a game with the given viewer.
func (h *Hub) AttachClient(client *Client, gameID string, viewer int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old := client.Game(); old != "" {
		if clients, ok := h.gameClients[old]; ok {
			delete(clients, client)
		}
	}
	if h.gameClients[gameID] == nil {
		h.gameClients[gameID] = make(map[*Client]bool)
	}
	h.gameClients[gameID][client] = true
	client.attach(gameID, viewer)
}

// gameMembers returns the clients attached to a game.
func (h *Hub) gameMembers(gameID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.gameClients[gameID]))
	for c := range h.gameClients[gameID] {
		out = append(out, c)
	}
	return out
}

// notifyGame sends the same payload to every client of a game.
func (h *Hub) notifyGame(gameID string, msgType protocol.MessageType, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build message")
		return
	}
	for _, c := range h.gameMembers(gameID) {
		c.Send(msg)
	}
}

// Client represents a connected WebSocket client.
type Client struct {
	ID string

	hub     *Hub
	conn    *websocket.Conn
	send    chan *protocol.Message
	limiter *rate.Limiter

	mu     sync.Mutex
	gameID string
	viewer int

	// guards send against a concurrent close
	sendMu sync.Mutex
	closed bool
}

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
)

// NewClient creates a new client.
func NewClient(hub *Hub, conn *websocket.Conn, limit float64, burst int) *Client {
	return &Client{
		ID:      uuid.New().String(),
		hub:     hub,
		conn:    conn,
		send:    make(chan *protocol.Message, 256),
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
		viewer:  game.Spectator,
	}
}

func (c *Client) attach(gameID string, viewer int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID, c.viewer = gameID, viewer
}

// Game returns the id of the attached game, or "".
func (c *Client) Game() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// Viewer returns the player whose view the client receives.
func (c *Client) Viewer() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewer
}

// Send queues a message to be sent to the client. Messages for a client
// that already left are dropped.
func (c *Client) Send(msg *protocol.Message) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("client", c.ID).Msg("Client too slow, disconnecting")
		c.hub.Unregister(c)
	}
}

// closeSend closes the send queue, which stops the write pump.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// SendPayload builds and queues a message.
func (c *Client) SendPayload(msgType protocol.MessageType, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", string(msgType)).Msg("Failed to build message")
		return
	}
	c.Send(msg)
}

// SendError queues an error message.
func (c *Client) SendError(code protocol.ErrorCode, message string) {
	c.SendPayload(protocol.TypeError, protocol.ErrorPayload{Code: code, Message: message})
}

// ReadPump reads messages until the connection fails, handling each one in
// order.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	handlers := NewHandlers(c.hub)

	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				log.Debug().Err(err).Str("client", c.ID).Msg("WebSocket read ended")
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		if !c.limiter.Allow() {
			c.SendError(protocol.ErrCodeRateLimited, "too many messages")
			continue
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.SendError(protocol.ErrCodeInvalidMessage, "invalid message: "+err.Error())
			continue
		}
		handlers.Handle(c, msg)
	}
}

// WritePump writes queued messages and keeps the connection alive.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				log.Error().Err(err).Msg("Failed to marshal message")
				continue
			}

			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err = c.conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
