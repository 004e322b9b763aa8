package game

// MoveResult describes the side effects of a successful move.
type MoveResult struct {
	Cost     int   `json:"cost"`
	Removed  []int `json:"removed,omitempty"`  // enemy units destroyed on arrival
	Captured int   `json:"captured,omitempty"` // settlement id taken, 0 if none
}

// CanMoveUnit checks whether the unit may step onto dest this turn.
func (w *World) CanMoveUnit(unitID int, dest Coord) error {
	u, err := w.unit(unitID)
	if err != nil {
		return err
	}
	if u.Owner != w.Current {
		return ErrNotOwner
	}
	if !w.InBounds(dest) {
		return ErrOutOfBounds
	}
	if Chebyshev(u.Pos, dest) != 1 {
		return ErrNotAdjacent
	}
	if u.MovesLeft < w.tile(dest).MoveCost() {
		return ErrInsufficientMoves
	}
	return nil
}

// MoveUnit relocates a unit one step. Units of other players on the
// destination are removed, and a capturing unit takes an enemy settlement
// there. Capture changes the owner only; the new owner also observes the
// settlement's claimed tiles.
func (w *World) MoveUnit(unitID int, dest Coord) (MoveResult, error) {
	if err := w.CanMoveUnit(unitID, dest); err != nil {
		return MoveResult{}, err
	}
	u := w.Units[unitID]
	cost := w.tile(dest).MoveCost()
	res := MoveResult{Cost: cost}

	u.Pos = dest
	u.MovesLeft -= cost
	w.Reveal(u)

	for _, other := range w.unitsAt(dest) {
		if other.Owner != u.Owner {
			delete(w.Units, other.ID)
			res.Removed = append(res.Removed, other.ID)
		}
	}

	if s := w.settlementAt(dest); s != nil && s.Owner != u.Owner && u.Kind.Info().Captures {
		s.Owner = u.Owner
		for _, c := range s.Claimed {
			w.tile(c).reveal(u.Owner)
		}
		res.Captured = s.ID
	}
	return res, nil
}
