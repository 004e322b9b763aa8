package game

// Spectator is the viewer id that sees the whole world.
const Spectator = -1

// ViewFor returns the snapshot as player may see it. Tiles the player has
// never revealed lose their terrain and improvements, pieces standing on
// them are dropped, and other players' research is hidden.
func (w *World) ViewFor(player int) *Snapshot {
	snap := w.Snapshot()
	if player == Spectator {
		return snap
	}
	for i := range snap.Tiles {
		t := &snap.Tiles[i]
		if !t.RevealedBy(player) {
			t.Terrain = Unknown
			t.Improvements = []Improvement{}
		}
	}
	visible := func(c Coord) bool { return w.IsRevealed(player, c) }

	units := snap.Units[:0]
	for _, u := range snap.Units {
		if u.Owner == player || visible(u.Pos) {
			units = append(units, u)
		}
	}
	snap.Units = units

	settlements := snap.Settlements[:0]
	for _, s := range snap.Settlements {
		if s.Owner == player || visible(s.Pos) {
			settlements = append(settlements, s)
		}
	}
	snap.Settlements = settlements

	for i := range snap.Players {
		p := &snap.Players[i]
		if p.ID == player {
			continue
		}
		p.Research = 0
		p.ActiveTech = ""
		p.TechProgress = map[TechID]int{}
	}
	return snap
}
