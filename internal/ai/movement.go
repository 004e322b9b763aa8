package ai

import "frontier/internal/game"

// minSiteGap is the Manhattan distance kept between settlements.
const minSiteGap = 3

// maxStepsPerUnit bounds how many single steps one unit takes in a turn.
const maxStepsPerUnit = 4

func neighbors8(c game.Coord) []game.Coord {
	out := make([]game.Coord, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx != 0 || dy != 0 {
				out = append(out, game.Coord{X: c.X + dx, Y: c.Y + dy})
			}
		}
	}
	return out
}

func (p *Player) foundSettlements() error {
	for _, u := range p.w.UnitsOf(p.ID) {
		if !u.Kind.Info().Founder || !p.goodSite(u.Pos) {
			continue
		}
		if p.w.CanFoundSettlement(u.ID) != nil {
			continue
		}
		if _, err := p.issue(game.Found(p.ID, u.ID)); err != nil {
			return err
		}
	}
	return nil
}

// goodSite reports whether c is far enough from every known settlement.
func (p *Player) goodSite(c game.Coord) bool {
	t := p.w.TileAt(c)
	if t == nil || !t.Terrain.Passable() {
		return false
	}
	if _, claimed := p.w.ClaimOwner(c); claimed {
		return false
	}
	for _, s := range p.w.Settlements {
		if game.Manhattan(s.Pos, c) < minSiteGap {
			return false
		}
	}
	return true
}

// siteScore values the food and output around c that nobody claims yet.
func (p *Player) siteScore(c game.Coord) int {
	score := 0
	for _, n := range append(neighbors8(c), c) {
		t := p.w.TileAt(n)
		if t == nil || !t.RevealedBy(p.ID) {
			continue
		}
		if _, claimed := p.w.ClaimOwner(n); claimed {
			continue
		}
		y := p.w.TileYield(t, p.ID)
		score += 2*y.Food + y.Output
	}
	return score
}

func (p *Player) moveUnits() error {
	for _, snapshot := range p.w.UnitsOf(p.ID) {
		for step := 0; step < maxStepsPerUnit; step++ {
			u, ok := p.w.Unit(snapshot.ID)
			if !ok || u.MovesLeft == 0 {
				break
			}
			target, ok := p.targetFor(u)
			if !ok || target == u.Pos {
				break
			}
			next, ok := p.stepToward(u, target)
			if !ok {
				break
			}
			moved, err := p.issue(game.Move(p.ID, u.ID, next))
			if err != nil {
				return err
			}
			if !moved {
				break
			}
		}

		u, ok := p.w.Unit(snapshot.ID)
		if !ok || !u.Kind.Info().Founder {
			continue
		}
		if p.goodSite(u.Pos) && p.w.CanFoundSettlement(u.ID) == nil {
			if _, err := p.issue(game.Found(p.ID, u.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}

// targetFor picks where a unit is heading this turn.
func (p *Player) targetFor(u game.Unit) (game.Coord, bool) {
	info := u.Kind.Info()
	switch {
	case info.Founder:
		return p.bestSite(u.Pos)
	case info.Captures:
		if c, ok := p.nearestEnemy(u.Pos); ok {
			return c, true
		}
		return p.nearestUnrevealed(u.Pos)
	default:
		return p.nearestUnrevealed(u.Pos)
	}
}

// bestSite returns the revealed tile with the highest site score, penalised
// by distance from the settler.
func (p *Player) bestSite(from game.Coord) (game.Coord, bool) {
	best, bestScore, found := game.Coord{}, 0, false
	for i := range p.w.Tiles {
		t := &p.w.Tiles[i]
		c := t.Pos()
		if !t.RevealedBy(p.ID) || !p.goodSite(c) {
			continue
		}
		score := p.siteScore(c) - 2*game.Manhattan(from, c)
		if !found || score > bestScore {
			best, bestScore, found = c, score, true
		}
	}
	return best, found
}

// nearestEnemy returns the closest revealed enemy settlement, or failing
// that the closest revealed enemy unit.
func (p *Player) nearestEnemy(from game.Coord) (game.Coord, bool) {
	var settlements, units []game.Coord
	for _, s := range p.w.Settlements {
		if s.Owner != p.ID && p.w.IsRevealed(p.ID, s.Pos) {
			settlements = append(settlements, s.Pos)
		}
	}
	if c, ok := nearest(from, settlements); ok {
		return c, true
	}
	for _, u := range p.w.Units {
		if u.Owner != p.ID && p.w.IsRevealed(p.ID, u.Pos) {
			units = append(units, u.Pos)
		}
	}
	return nearest(from, units)
}

func (p *Player) nearestUnrevealed(from game.Coord) (game.Coord, bool) {
	var hidden []game.Coord
	for i := range p.w.Tiles {
		if !p.w.Tiles[i].RevealedBy(p.ID) {
			hidden = append(hidden, p.w.Tiles[i].Pos())
		}
	}
	return nearest(from, hidden)
}

// nearest returns the candidate closest to from, ties broken by coordinate.
func nearest(from game.Coord, candidates []game.Coord) (game.Coord, bool) {
	best, bestDist := game.Coord{}, -1
	for _, c := range candidates {
		d := game.Manhattan(from, c)
		if bestDist == -1 || d < bestDist || d == bestDist && c.Less(best) {
			best, bestDist = c, d
		}
	}
	return best, bestDist != -1
}

// stepToward picks a legal adjacent step that brings the unit closer to
// target. Among equally good steps the rng decides.
func (p *Player) stepToward(u game.Unit, target game.Coord) (game.Coord, bool) {
	current := game.Chebyshev(u.Pos, target)*10 + game.Manhattan(u.Pos, target)
	var best []game.Coord
	bestScore := current
	for _, n := range neighbors8(u.Pos) {
		if p.w.CanMoveUnit(u.ID, n) != nil {
			continue
		}
		if !u.Kind.Info().Captures && p.enemyAt(n) {
			continue
		}
		score := game.Chebyshev(n, target)*10 + game.Manhattan(n, target)
		switch {
		case score < bestScore:
			best, bestScore = []game.Coord{n}, score
		case score == bestScore && score < current:
			best = append(best, n)
		}
	}
	if len(best) == 0 {
		return game.Coord{}, false
	}
	return best[p.rng.Intn(len(best))], true
}

// enemyAt reports whether an enemy settlement or combat unit holds c.
func (p *Player) enemyAt(c game.Coord) bool {
	if s, ok := p.w.SettlementAt(c); ok && s.Owner != p.ID {
		return true
	}
	for _, u := range p.w.UnitsAt(c) {
		if u.Owner != p.ID && u.Kind.Info().Combat {
			return true
		}
	}
	return false
}
