package game

// Eliminated reports whether the player has no settlements and no founders left.
func (w *World) Eliminated(player int) bool {
	for _, s := range w.Settlements {
		if s.Owner == player {
			return false
		}
	}
	for _, u := range w.Units {
		if u.Owner == player && u.Kind.Info().Founder {
			return false
		}
	}
	return true
}

// CheckWin returns the winner of a two-player game once the other player is
// eliminated. Games with any other player count never produce a winner.
func (w *World) CheckWin() (int, bool) {
	if len(w.Players) != 2 {
		return 0, false
	}
	var remaining []int
	for _, p := range w.Players {
		if !w.Eliminated(p.ID) {
			remaining = append(remaining, p.ID)
		}
	}
	if len(remaining) != 1 {
		return 0, false
	}
	return remaining[0], true
}
