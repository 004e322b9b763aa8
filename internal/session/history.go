package session

import (
	"fmt"
	"sort"

	"frontier/internal/database"
	"frontier/internal/game"
)

// describe turns a successful command into history events. Plain moves and
// focus changes are too chatty for the feed and produce none.
func describe(w *game.World, cmd game.Command, out game.Outcome) []Event {
	var events []Event
	add := func(player int, eventType, format string, args ...interface{}) {
		events = append(events, Event{Turn: w.Turn, Player: player, Type: eventType, Message: fmt.Sprintf(format, args...)})
	}
	p := cmd.Player

	switch cmd.Type {
	case game.CmdFound:
		if s := out.Settlement; s != nil {
			add(p, database.EventSettlementFounded, "player %d founded settlement %d at %v", p, s.ID, s.Pos)
		}
	case game.CmdBuy:
		if u := out.Unit; u != nil {
			add(p, database.EventUnitBought, "player %d trained a %s at %v", p, u.Kind, u.Pos)
		}
	case game.CmdBuild:
		add(p, database.EventImprovementBuilt, "player %d built a %s at %v", p, cmd.Kind, cmd.To)
	case game.CmdResearch:
		add(p, database.EventResearchStarted, "player %d started researching %s", p, cmd.Tech)
	case game.CmdMove:
		if m := out.Move; m != nil {
			if len(m.Removed) > 0 {
				add(p, database.EventUnitsDestroyed, "player %d destroyed %d unit(s) at %v", p, len(m.Removed), cmd.To)
			}
			if m.Captured != 0 {
				add(p, database.EventSettlementCaptured, "player %d captured settlement %d at %v", p, m.Captured, cmd.To)
			}
		}
	case game.CmdEndTurn:
		if r := out.Turn; r != nil {
			for _, id := range r.Grown {
				owner := p
				if s, ok := w.Settlement(id); ok {
					owner = s.Owner
				}
				add(owner, database.EventSettlementGrew, "settlement %d grew", id)
			}
			players := make([]int, 0, len(r.Unlocked))
			for pl := range r.Unlocked {
				players = append(players, pl)
			}
			sort.Ints(players)
			for _, pl := range players {
				for _, tech := range r.Unlocked[pl] {
					add(pl, database.EventTechUnlocked, "player %d discovered %s", pl, tech)
				}
			}
			add(r.Next, database.EventTurnStart, "turn %d: player %d to move", w.Turn, r.Next)
		}
	}
	return events
}
