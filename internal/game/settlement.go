package game

// Focus selects which yield dimension a settlement works first.
type Focus string

const (
	FocusFood   Focus = "food"
	FocusOutput Focus = "output"
)

// Valid reports whether f is a known focus.
func (f Focus) Valid() bool {
	return f == FocusFood || f == FocusOutput
}

// Settlement is a stationary, player-owned tile claimant.
type Settlement struct {
	ID           int     `json:"id"`
	Owner        int     `json:"owner"`
	Pos          Coord   `json:"pos"`
	Size         int     `json:"size"`
	Claimed      []Coord `json:"claimed"`
	Focus        Focus   `json:"focus"`
	LastGrowTurn int     `json:"lastGrowTurn"`
}

// GrowthCost is the food needed to grow from the current size.
func (s *Settlement) GrowthCost() int {
	return 1 << s.Size
}

// Claims reports whether c is in the settlement's claimed set.
func (s *Settlement) Claims(c Coord) bool {
	return containsCoord(s.Claimed, c)
}

func (s *Settlement) clone() Settlement {
	c := *s
	c.Claimed = append([]Coord{}, s.Claimed...)
	return c
}

// CanFoundSettlement checks whether the unit may found a settlement where it stands.
func (w *World) CanFoundSettlement(unitID int) error {
	u, err := w.unit(unitID)
	if err != nil {
		return err
	}
	if u.Owner != w.Current {
		return ErrNotOwner
	}
	if !u.Kind.Info().Founder {
		return ErrNotFounder
	}
	if w.tile(u.Pos).Terrain == Water {
		return ErrInvalidTerrain
	}
	if w.settlementAt(u.Pos) != nil || w.claimedBy(u.Pos) != nil {
		return ErrAlreadyOccupied
	}
	return nil
}

// FoundSettlement consumes a founder unit and creates a size-1 settlement on
// its tile. The tile is claimed, and one more tile is claimed with the
// heuristic. Tiles already claimed by another settlement count as occupied.
func (w *World) FoundSettlement(unitID int, rng Rand) (Settlement, error) {
	if err := w.CanFoundSettlement(unitID); err != nil {
		return Settlement{}, err
	}
	u := w.Units[unitID]
	pos := u.Pos
	delete(w.Units, unitID)

	s := &Settlement{
		ID:           w.NextSettlementID,
		Owner:        u.Owner,
		Pos:          pos,
		Size:         1,
		Claimed:      []Coord{pos},
		Focus:        FocusFood,
		LastGrowTurn: -1,
	}
	w.NextSettlementID++
	w.Settlements[s.ID] = s
	w.RevealAround(u.Owner, pos)
	w.claimBest(s, rng)
	return s.clone(), nil
}

// ClaimCandidates returns the tiles the heuristic would choose between for
// the settlement, sorted by coordinate. Empty when nothing can be claimed.
func (w *World) ClaimCandidates(settlementID int) ([]Coord, error) {
	s, err := w.settlement(settlementID)
	if err != nil {
		return nil, err
	}
	return w.claimCandidates(s), nil
}

// claimCandidates filters revealed, unclaimed tiles down to those at minimum
// distance, then to those touching the most already-claimed tiles.
func (w *World) claimCandidates(s *Settlement) []Coord {
	claimed := make(map[Coord]bool)
	for _, other := range w.Settlements {
		for _, c := range other.Claimed {
			claimed[c] = true
		}
	}

	var best []Coord
	bestDist, bestAdj := -1, -1
	for i := range w.Tiles {
		t := &w.Tiles[i]
		c := t.Pos()
		if claimed[c] || !t.RevealedBy(s.Owner) {
			continue
		}
		dist := Manhattan(s.Pos, c)
		adj := 0
		for _, n := range Neighbors4(c) {
			if s.Claims(n) {
				adj++
			}
		}
		switch {
		case bestDist == -1 || dist < bestDist || (dist == bestDist && adj > bestAdj):
			best = []Coord{c}
			bestDist, bestAdj = dist, adj
		case dist == bestDist && adj == bestAdj:
			best = append(best, c)
		}
	}
	sortCoords(best)
	return best
}

// ClaimBestTile adds one tile to the settlement's claimed set using the
// claim heuristic. It reports false when no tile is available.
func (w *World) ClaimBestTile(settlementID int, rng Rand) (Coord, bool, error) {
	s, err := w.settlement(settlementID)
	if err != nil {
		return Coord{}, false, err
	}
	c, ok := w.claimBest(s, rng)
	return c, ok, nil
}

func (w *World) claimBest(s *Settlement, rng Rand) (Coord, bool) {
	candidates := w.claimCandidates(s)
	if len(candidates) == 0 {
		return Coord{}, false
	}
	c := candidates[0]
	if len(candidates) > 1 {
		c = candidates[rng.Intn(len(candidates))]
	}
	s.Claimed = insertCoord(s.Claimed, c)
	return c, true
}

// GrowSettlement spends 2^size food to grow the settlement by one and claim
// a tile. It returns false without changing anything when the owner lacks
// food, the settlement already grew this turn, or no tile can be claimed.
func (w *World) GrowSettlement(settlementID int, rng Rand) (bool, error) {
	s, err := w.settlement(settlementID)
	if err != nil {
		return false, err
	}
	return w.grow(s, rng), nil
}

func (w *World) grow(s *Settlement, rng Rand) bool {
	owner := w.Player(s.Owner)
	cost := s.GrowthCost()
	if owner == nil || owner.Food < cost || s.LastGrowTurn == w.Turn {
		return false
	}
	if len(w.claimCandidates(s)) == 0 {
		return false
	}
	owner.Food -= cost
	s.Size++
	s.LastGrowTurn = w.Turn
	w.claimBest(s, rng)
	return true
}

// SetFocus changes which yield dimension the settlement prioritises.
func (w *World) SetFocus(settlementID int, focus Focus) error {
	s, err := w.settlement(settlementID)
	if err != nil {
		return err
	}
	if s.Owner != w.Current {
		return ErrNotOwner
	}
	if !focus.Valid() {
		return ErrUnknownKind
	}
	s.Focus = focus
	return nil
}
