package session

import (
	"bytes"
	"errors"
	"fmt"

	"frontier/internal/game"
)

// ErrMismatch is returned when a replayed game differs from its snapshot.
var ErrMismatch = errors.New("replay does not match snapshot")

// Replay rebuilds a world from its setup, seed and command log. Every
// command must succeed, since only successful commands are ever logged.
func Replay(setup game.Setup, seed uint64, commands []game.Command) (*game.World, error) {
	w, err := game.NewGame(setup)
	if err != nil {
		return nil, err
	}
	for seq, cmd := range commands {
		if _, err := game.Apply(w, cmd, game.CommandRand(seed, seq)); err != nil {
			return nil, fmt.Errorf("replay command %d (%s): %w", seq, cmd, err)
		}
	}
	return w, nil
}

// VerifySnapshot replays commands and compares the encoded result with want.
func VerifySnapshot(setup game.Setup, seed uint64, commands []game.Command, want []byte) error {
	w, err := Replay(setup, seed, commands)
	if err != nil {
		return err
	}
	got, err := w.MarshalSnapshot()
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w after %d commands", ErrMismatch, len(commands))
	}
	return nil
}

// Verify replays the session's own command log against its live world.
func (s *Session) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	want, err := s.World.MarshalSnapshot()
	if err != nil {
		return err
	}
	return VerifySnapshot(s.Setup, s.Seed, s.commands, want)
}
