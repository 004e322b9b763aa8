package game

import "sort"

// TurnReport summarises what end of turn resolution did.
type TurnReport struct {
	Turn     int              `json:"turn"` // turn that just ended
	Grown    []int            `json:"grown,omitempty"`
	Income   map[int]Yield    `json:"income"`
	Unlocked map[int][]TechID `json:"unlocked,omitempty"`
	Next     int              `json:"next"` // player now current
}

// WorkedTiles returns the claimed tiles the settlement works this turn: the
// size+1 best by its focus dimension, ties broken by the other dimension and
// then by coordinate.
func (w *World) WorkedTiles(settlementID int) ([]Coord, Yield, error) {
	s, err := w.settlement(settlementID)
	if err != nil {
		return nil, Yield{}, err
	}
	tiles, total := w.worked(s)
	return tiles, total, nil
}

func (w *World) worked(s *Settlement) ([]Coord, Yield) {
	type scored struct {
		c Coord
		y Yield
	}
	ranked := make([]scored, 0, len(s.Claimed))
	for _, c := range s.Claimed {
		ranked = append(ranked, scored{c, w.TileYield(w.tile(c), s.Owner)})
	}
	primary := func(y Yield) (int, int) {
		if s.Focus == FocusOutput {
			return y.Output, y.Food
		}
		return y.Food, y.Output
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, si := primary(ranked[i].y)
		pj, sj := primary(ranked[j].y)
		if pi != pj {
			return pi > pj
		}
		if si != sj {
			return si > sj
		}
		return ranked[i].c.Less(ranked[j].c)
	})
	if len(ranked) > s.Size+1 {
		ranked = ranked[:s.Size+1]
	}
	var total Yield
	tiles := make([]Coord, 0, len(ranked))
	for _, r := range ranked {
		total = total.Add(r.y)
		tiles = append(tiles, r.c)
	}
	return tiles, total
}

// EndTurn resolves the current turn: settlements grow and collect yields,
// play passes to the next player, that player's units get their moves back,
// and research advances.
func (w *World) EndTurn(rng Rand) TurnReport {
	report := TurnReport{Turn: w.Turn, Income: map[int]Yield{}}

	for _, s := range w.sortedSettlements() {
		if len(s.Claimed) == 0 {
			s.Claimed = []Coord{s.Pos}
		}
		if w.grow(s, rng) {
			report.Grown = append(report.Grown, s.ID)
		}
		_, y := w.worked(s)
		if owner := w.Player(s.Owner); owner != nil {
			owner.credit(y)
			report.Income[s.Owner] = report.Income[s.Owner].Add(y)
		}
	}

	w.Current = (w.Current + 1) % len(w.Players)
	w.Turn++
	report.Next = w.Current

	for _, u := range w.Units {
		if u.Owner == w.Current {
			u.MovesLeft = w.MoveAllowance(u.Owner, u.Kind)
		}
	}

	for _, p := range w.Players {
		if id, ok := w.accrueResearch(p); ok {
			if report.Unlocked == nil {
				report.Unlocked = map[int][]TechID{}
			}
			report.Unlocked[p.ID] = append(report.Unlocked[p.ID], id)
		}
	}
	return report
}
