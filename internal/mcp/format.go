package mcp

import (
	"fmt"
	"strings"

	"frontier/internal/game"
	"frontier/internal/session"
	"frontier/pkg/maps"
)

func seatName(seats []session.Seat, player int) string {
	if player >= 0 && player < len(seats) && seats[player].Name != "" {
		return seats[player].Name
	}
	return fmt.Sprintf("Player %d", player+1)
}

// formatView renders a player view as a text board followed by lists of
// players, settlements and units.
//
// Board legend: terrain glyphs as in map files, '?' for unexplored tiles,
// a digit for a settlement of that player and a letter (A = player 0) for
// units.
func formatView(snap *game.Snapshot, viewer int, seats []session.Seat) string {
	var b strings.Builder

	if viewer == game.Spectator {
		b.WriteString("Full board\n")
	} else {
		fmt.Fprintf(&b, "Viewing as %s (player %d)\n", seatName(seats, viewer), viewer)
	}
	fmt.Fprintf(&b, "Turn %d, %s to move\n\n", snap.Turn, seatName(seats, snap.Current))

	marks := make(map[game.Coord]byte)
	for _, u := range snap.Units {
		marks[u.Pos] = byte('A' + u.Owner)
	}
	for _, s := range snap.Settlements {
		marks[s.Pos] = byte('0' + s.Owner)
	}

	b.WriteString("   ")
	for x := 0; x < snap.Width; x++ {
		fmt.Fprintf(&b, "%d", x%10)
	}
	b.WriteString("\n")
	for y := 0; y < snap.Height; y++ {
		fmt.Fprintf(&b, "%2d ", y)
		for x := 0; x < snap.Width; x++ {
			c := game.Coord{X: x, Y: y}
			if m, ok := marks[c]; ok {
				b.WriteByte(m)
				continue
			}
			b.WriteByte(maps.Glyph(snap.Tiles[y*snap.Width+x].Terrain))
		}
		b.WriteString("\n")
	}
	b.WriteString("Legend: . plains, f forest, ^ hill, ~ water, ? unexplored, 0-9 settlement owner, A-J unit owner\n")

	b.WriteString("\nPlayers:\n")
	for _, p := range snap.Players {
		fmt.Fprintf(&b, "- %s: food %d, output %d, research %d", seatName(seats, p.ID), p.Food, p.Output, p.Research)
		if p.ActiveTech != "" {
			fmt.Fprintf(&b, ", researching %s", p.ActiveTech)
		}
		if len(p.Unlocked) > 0 {
			techs := make([]string, len(p.Unlocked))
			for i, t := range p.Unlocked {
				techs[i] = string(t)
			}
			fmt.Fprintf(&b, ", knows %s", strings.Join(techs, ", "))
		}
		b.WriteString("\n")
	}

	if len(snap.Settlements) > 0 {
		b.WriteString("\nSettlements:\n")
		for _, s := range snap.Settlements {
			fmt.Fprintf(&b, "- #%d of player %d at %v: size %d, %d tiles claimed, %s focus\n",
				s.ID, s.Owner, s.Pos, s.Size, len(s.Claimed), s.Focus)
		}
	}
	if len(snap.Units) > 0 {
		b.WriteString("\nUnits:\n")
		for _, u := range snap.Units {
			fmt.Fprintf(&b, "- #%d %s of player %d at %v, %d moves left\n", u.ID, u.Kind, u.Owner, u.Pos, u.MovesLeft)
		}
	}
	return b.String()
}

// describeTile reports what viewer knows about the tile at c.
func describeTile(w *game.World, viewer int, c game.Coord, seats []session.Seat) string {
	if viewer != game.Spectator && !w.IsRevealed(viewer, c) {
		return fmt.Sprintf("Tile %v: unexplored", c)
	}
	t := w.TileAt(c)

	var b strings.Builder
	fmt.Fprintf(&b, "Tile %v: %s\n", c, t.Terrain)
	if t.Terrain.Passable() {
		fmt.Fprintf(&b, "Move cost: %d\n", t.MoveCost())
	} else {
		b.WriteString("Impassable\n")
	}
	if len(t.Improvements) > 0 {
		names := make([]string, len(t.Improvements))
		for i, k := range t.Improvements {
			names[i] = string(k)
		}
		fmt.Fprintf(&b, "Improvements: %s\n", strings.Join(names, ", "))
	}

	if s, ok := w.SettlementAt(c); ok {
		fmt.Fprintf(&b, "Settlement #%d of %s, size %d\n", s.ID, seatName(seats, s.Owner), s.Size)
	}
	if s, ok := w.ClaimOwner(c); ok {
		y := w.TileYield(t, s.Owner)
		fmt.Fprintf(&b, "Claimed by settlement #%d of %s, yields %d food %d output\n",
			s.ID, seatName(seats, s.Owner), y.Food, y.Output)
	} else {
		y := t.Terrain.Info().Yield
		fmt.Fprintf(&b, "Unclaimed, base yield %d food %d output\n", y.Food, y.Output)
	}
	for _, u := range w.UnitsAt(c) {
		fmt.Fprintf(&b, "Unit #%d: %s of %s\n", u.ID, u.Kind, seatName(seats, u.Owner))
	}
	return b.String()
}

func formatOutcome(cmd game.Command, out game.Outcome, seats []session.Seat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s\n", cmd)

	if m := out.Move; m != nil {
		fmt.Fprintf(&b, "Spent %d move points\n", m.Cost)
		if len(m.Removed) > 0 {
			fmt.Fprintf(&b, "Destroyed %d enemy unit(s)\n", len(m.Removed))
		}
		if m.Captured != 0 {
			fmt.Fprintf(&b, "Captured settlement #%d\n", m.Captured)
		}
	}
	if s := out.Settlement; s != nil {
		fmt.Fprintf(&b, "Settlement #%d at %v claims %d tile(s)\n", s.ID, s.Pos, len(s.Claimed))
	}
	if u := out.Unit; u != nil {
		fmt.Fprintf(&b, "New %s #%d at %v\n", u.Kind, u.ID, u.Pos)
	}
	if r := out.Turn; r != nil {
		fmt.Fprintf(&b, "Turn %d ended\n", r.Turn)
		if len(r.Grown) > 0 {
			fmt.Fprintf(&b, "Settlements grown: %v\n", r.Grown)
		}
		for player, techs := range r.Unlocked {
			fmt.Fprintf(&b, "%s unlocked %v\n", seatName(seats, player), techs)
		}
		fmt.Fprintf(&b, "Next: %s\n", seatName(seats, r.Next))
	}
	return b.String()
}

func formatRejection(err error) string {
	if re, ok := game.AsRuleError(err); ok {
		return fmt.Sprintf("Rejected (%s): %s", re.Code, re.Error())
	}
	return err.Error()
}
