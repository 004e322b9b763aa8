package server

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"frontier/internal/ai"
	"frontier/internal/game"
	"frontier/internal/protocol"
	"frontier/internal/session"
	"frontier/pkg/maps"
)

// Handlers processes incoming messages.
type Handlers struct {
	hub *Hub
}

// NewHandlers creates a new handler set.
func NewHandlers(hub *Hub) *Handlers {
	return &Handlers{hub: hub}
}

// requestError is a failure reported to the client with a specific code.
type requestError struct {
	code protocol.ErrorCode
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func fail(code protocol.ErrorCode, format string, args ...interface{}) error {
	return &requestError{code: code, msg: fmt.Sprintf(format, args...)}
}

// Handle routes a message to the appropriate handler.
func (h *Handlers) Handle(client *Client, msg *protocol.Message) {
	var err error

	switch msg.Type {
	case protocol.TypeNewGame:
		err = h.handleNewGame(client, msg)
	case protocol.TypeLoadGame:
		err = h.handleLoadGame(client, msg)
	case protocol.TypeListGames:
		err = h.handleListGames(client)
	case protocol.TypeCommand:
		err = h.handleCommand(client, msg)
	case protocol.TypeGetState:
		err = h.handleGetState(client)
	case protocol.TypeGetHistory:
		err = h.handleGetHistory(client, msg)
	default:
		err = fail(protocol.ErrCodeUnknownType, "unknown message type %q", msg.Type)
	}

	if err != nil {
		h.sendError(client, err)
	}
}

func (h *Handlers) sendError(client *Client, err error) {
	var re *requestError
	if errors.As(err, &re) {
		client.SendError(re.code, re.msg)
		return
	}
	log.Error().Err(err).Str("client", client.ID).Msg("Request failed")
	client.SendError(protocol.ErrCodeInternalError, err.Error())
}

func (h *Handlers) sessions() *session.Manager {
	return h.hub.server.sessions
}

// handleNewGame creates a game and attaches the client to it.
func (h *Handlers) handleNewGame(client *Client, msg *protocol.Message) error {
	var payload protocol.NewGamePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return fail(protocol.ErrCodeInvalidMessage, "invalid new_game payload: %v", err)
	}

	opts := session.Options{
		Name:      payload.Name,
		MapID:     payload.MapID,
		Seed:      payload.Seed,
		Generator: maps.DefaultOptions(),
	}
	if payload.Width > 0 {
		opts.Generator.Width = payload.Width
	}
	if payload.Height > 0 {
		opts.Generator.Height = payload.Height
	}
	if payload.Players > 0 {
		opts.Generator.Players = payload.Players
	}
	switch {
	case len(payload.Seats) > 0:
		for _, s := range payload.Seats {
			opts.Seats = append(opts.Seats, session.Seat{
				Name: s.Name, AI: s.AI, Personality: ai.Personality(s.Personality),
			})
		}
	case payload.Players > 0:
		opts.Seats = session.DefaultSeats(payload.Players)
	}

	sess, err := h.sessions().Create(opts)
	if err != nil {
		return fail(protocol.ErrCodeInvalidMessage, "cannot create game: %v", err)
	}
	if err := h.attach(client, sess, payload.Viewer); err != nil {
		return err
	}
	return h.afterChange(sess)
}

// handleLoadGame attaches the client to an existing game.
func (h *Handlers) handleLoadGame(client *Client, msg *protocol.Message) error {
	var payload protocol.LoadGamePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return fail(protocol.ErrCodeInvalidMessage, "invalid load_game payload: %v", err)
	}

	sess, err := h.sessions().Load(payload.GameID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return fail(protocol.ErrCodeGameNotFound, "game %s not found", payload.GameID)
		}
		return err
	}
	if err := h.attach(client, sess, payload.Viewer); err != nil {
		return err
	}

	// other watchers only hear about it when AI turns changed the game
	played, err := h.runAI(sess)
	if played > 0 {
		h.publish(sess)
		return err
	}
	client.SendPayload(protocol.TypeState, statePayload(sess, client.Viewer()))
	return err
}

func (h *Handlers) attach(client *Client, sess *session.Session, viewer int) error {
	if viewer != game.Spectator && (viewer < 0 || viewer >= len(sess.Seats)) {
		return fail(protocol.ErrCodeInvalidMessage, "viewer %d is not a seat of this game", viewer)
	}
	h.hub.AttachClient(client, sess.ID, viewer)

	seats := make([]protocol.SeatInfo, len(sess.Seats))
	for i, s := range sess.Seats {
		seats[i] = protocol.SeatInfo{Name: s.Name, AI: s.AI, Personality: string(s.Personality)}
	}
	client.SendPayload(protocol.TypeGameCreated, protocol.GameCreatedPayload{
		GameID: sess.ID,
		Name:   sess.Name,
		MapID:  sess.MapID,
		Seed:   sess.Seed,
		Viewer: viewer,
		Seats:  seats,
	})
	log.Info().Str("client", client.ID).Str("game", sess.ID).Int("viewer", viewer).Msg("Client attached to game")
	return nil
}

func (h *Handlers) handleListGames(client *Client) error {
	games, err := h.sessions().List()
	if err != nil {
		return err
	}
	items := make([]protocol.GameListItem, 0, len(games))
	for _, g := range games {
		items = append(items, protocol.GameListItem{
			ID: g.ID, Name: g.Name, MapID: g.MapID, Status: g.Status, Winner: g.Winner, Players: g.Players,
		})
	}
	client.SendPayload(protocol.TypeGameList, protocol.GameListPayload{Games: items})
	return nil
}

// current returns the session the client is attached to.
func (h *Handlers) current(client *Client) (*session.Session, error) {
	gameID := client.Game()
	if gameID == "" {
		return nil, fail(protocol.ErrCodeNoGame, "not attached to a game")
	}
	sess, ok := h.sessions().Get(gameID)
	if !ok {
		return nil, fail(protocol.ErrCodeGameNotFound, "game %s is no longer loaded", gameID)
	}
	return sess, nil
}

// handleCommand applies one player action, then lets AI seats respond.
func (h *Handlers) handleCommand(client *Client, msg *protocol.Message) error {
	var payload protocol.CommandPayload
	if err := msg.ParsePayload(&payload); err != nil {
		return fail(protocol.ErrCodeInvalidMessage, "invalid command payload: %v", err)
	}
	sess, err := h.current(client)
	if err != nil {
		return err
	}
	cmd := payload.Command

	viewer := client.Viewer()
	if viewer != game.Spectator && cmd.Player != viewer {
		return h.reject(client, cmd, protocol.ErrCodeNotYourSeat, fmt.Sprintf("this client plays seat %d", viewer))
	}
	if cmd.Player >= 0 && cmd.Player < len(sess.Seats) && sess.Seats[cmd.Player].AI {
		return h.reject(client, cmd, protocol.ErrCodeNotYourSeat, fmt.Sprintf("seat %d is AI controlled", cmd.Player))
	}

	out, err := sess.Apply(cmd)
	if err != nil {
		if code, ok := protocol.RuleErrorCode(err); ok {
			return h.reject(client, cmd, code, err.Error())
		}
		switch {
		case errors.Is(err, session.ErrGameOver):
			return h.reject(client, cmd, protocol.ErrCodeGameOver, err.Error())
		case errors.Is(err, game.ErrUnknownID):
			return h.reject(client, cmd, protocol.ErrCodeUnknownID, err.Error())
		}
		// persistence failed after the command was applied
		client.SendPayload(protocol.TypeCommandResult, protocol.CommandResultPayload{
			Success: true, Command: cmd, Outcome: &out,
		})
		h.afterChange(sess)
		return err
	}

	client.SendPayload(protocol.TypeCommandResult, protocol.CommandResultPayload{
		Success: true, Command: cmd, Outcome: &out,
	})
	return h.afterChange(sess)
}

func (h *Handlers) reject(client *Client, cmd game.Command, code protocol.ErrorCode, msg string) error {
	client.SendPayload(protocol.TypeCommandResult, protocol.CommandResultPayload{
		Success: false, Command: cmd, Code: code, Error: msg,
	})
	return nil
}

// afterChange plays pending AI turns and pushes the new state to every
// client watching the game.
func (h *Handlers) afterChange(sess *session.Session) error {
	_, err := h.runAI(sess)
	h.publish(sess)
	return err
}

func (h *Handlers) runAI(sess *session.Session) (int, error) {
	played, err := sess.RunAI(h.hub.server.cfg.AITurns)
	if played > 0 {
		log.Debug().Str("game", sess.ID).Int("turns", played).Msg("AI turns played")
	}
	return played, err
}

// publish pushes each watcher its view of the game, then the result once
// the game is over.
func (h *Handlers) publish(sess *session.Session) {
	h.broadcastState(sess)
	if sess.Finished() {
		h.announceWinner(sess)
	}
}

func (h *Handlers) broadcastState(sess *session.Session) {
	for _, c := range h.hub.gameMembers(sess.ID) {
		c.SendPayload(protocol.TypeState, statePayload(sess, c.Viewer()))
	}
}

func statePayload(sess *session.Session, viewer int) protocol.StatePayload {
	p := protocol.StatePayload{GameID: sess.ID, Viewer: viewer}
	sess.Read(func(w *game.World) {
		p.Seq = sess.Seq
		p.Winner = sess.Winner
		p.State = w.ViewFor(viewer)
	})
	return p
}

func (h *Handlers) announceWinner(sess *session.Session) {
	payload := protocol.GameOverPayload{GameID: sess.ID}
	sess.Read(func(w *game.World) {
		payload.Winner = sess.Winner
		payload.Turn = w.Turn
	})
	if payload.Winner >= 0 && payload.Winner < len(sess.Seats) {
		payload.WinnerName = sess.Seats[payload.Winner].Name
	}
	h.hub.notifyGame(sess.ID, protocol.TypeGameOver, payload)
}

func (h *Handlers) handleGetState(client *Client) error {
	sess, err := h.current(client)
	if err != nil {
		return err
	}
	client.SendPayload(protocol.TypeState, statePayload(sess, client.Viewer()))
	return nil
}

func (h *Handlers) handleGetHistory(client *Client, msg *protocol.Message) error {
	var payload protocol.GetHistoryPayload
	if err := msg.ParsePayload(&payload); err != nil {
		return fail(protocol.ErrCodeInvalidMessage, "invalid get_history payload: %v", err)
	}
	sess, err := h.current(client)
	if err != nil {
		return err
	}
	if payload.Since < 0 {
		payload.Since = 0
	}

	events := sess.History(payload.Since)
	entries := make([]protocol.HistoryEntry, len(events))
	for i, e := range events {
		entries[i] = protocol.HistoryEntry{Turn: e.Turn, Player: e.Player, Type: e.Type, Message: e.Message}
	}
	client.SendPayload(protocol.TypeHistory, protocol.HistoryPayload{
		GameID: sess.ID,
		Events: entries,
		Next:   payload.Since + len(entries),
	})
	return nil
}
