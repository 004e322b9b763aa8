package game

// RevealRadius is the Manhattan distance a unit can see.
const RevealRadius = 2

// Reveal marks every tile within RevealRadius of the unit as observed by its owner.
func (w *World) Reveal(u *Unit) {
	w.RevealAround(u.Owner, u.Pos)
}

// RevealAround marks every tile within RevealRadius of pos as observed by player.
// Revealed sets only ever grow.
func (w *World) RevealAround(player int, pos Coord) {
	for y := pos.Y - RevealRadius; y <= pos.Y+RevealRadius; y++ {
		for x := pos.X - RevealRadius; x <= pos.X+RevealRadius; x++ {
			c := Coord{x, y}
			if !w.InBounds(c) || Manhattan(pos, c) > RevealRadius {
				continue
			}
			w.tile(c).reveal(player)
		}
	}
}

// IsRevealed reports whether player has observed c.
func (w *World) IsRevealed(player int, c Coord) bool {
	t := w.TileAt(c)
	return t != nil && t.RevealedBy(player)
}

// RevealedCount returns how many tiles player has observed.
func (w *World) RevealedCount(player int) int {
	n := 0
	for i := range w.Tiles {
		if w.Tiles[i].RevealedBy(player) {
			n++
		}
	}
	return n
}
