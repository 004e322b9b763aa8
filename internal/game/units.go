package game

// UnitKind is a unit type.
type UnitKind string

const (
	Scout   UnitKind = "scout"
	Soldier UnitKind = "soldier"
	Settler UnitKind = "settler"
)

// UnitInfo holds the fixed properties of a unit kind.
type UnitInfo struct {
	Moves    int
	Cost     Yield
	Combat   bool // may stack with friendly combat units
	Captures bool // takes enemy settlements on arrival
	Founder  bool
	MinSize  int // settlement size needed to buy
	SizeCost int // population consumed when bought
}

var unitInfo = map[UnitKind]UnitInfo{
	Scout:   {Moves: 3, Cost: Yield{Output: 2}, MinSize: 1},
	Soldier: {Moves: 2, Cost: Yield{Output: 4}, Combat: true, Captures: true, MinSize: 1},
	Settler: {Moves: 1, Cost: Yield{Food: 3, Output: 2}, Founder: true, MinSize: 2, SizeCost: 1},
}

// Info returns the unit kind's properties.
func (k UnitKind) Info() UnitInfo {
	return unitInfo[k]
}

// Valid reports whether k is a known unit kind.
func (k UnitKind) Valid() bool {
	_, ok := unitInfo[k]
	return ok
}

// Unit is a mobile piece on the grid.
type Unit struct {
	ID        int      `json:"id"`
	Owner     int      `json:"owner"`
	Kind      UnitKind `json:"kind"`
	Pos       Coord    `json:"pos"`
	MovesLeft int      `json:"movesLeft"`
}

// MoveAllowance is the full move points a unit of kind gets for player,
// including research bonuses.
func (w *World) MoveAllowance(player int, kind UnitKind) int {
	return kind.Info().Moves + w.effectsOf(player).MoveBonus[kind]
}

// UnitCost is the price of kind for player after research discounts.
func (w *World) UnitCost(player int, kind UnitKind) Yield {
	cost := kind.Info().Cost
	d := w.effectsOf(player).UnitDiscount[kind]
	return Yield{
		Food:   discounted(cost.Food, d.Food),
		Output: discounted(cost.Output, d.Output),
	}
}

// ImprovementCost is the output price of kind for player after discounts.
func (w *World) ImprovementCost(player int, kind Improvement) int {
	return discounted(kind.Info().Cost, w.effectsOf(player).ImprovementDiscount)
}

// discounted never lets a non-zero price fall below 1.
func discounted(price, discount int) int {
	if price == 0 {
		return 0
	}
	return max(price-discount, 1)
}

func (w *World) spawnUnit(owner int, kind UnitKind, pos Coord) *Unit {
	u := &Unit{
		ID:        w.NextUnitID,
		Owner:     owner,
		Kind:      kind,
		Pos:       pos,
		MovesLeft: w.MoveAllowance(owner, kind),
	}
	w.NextUnitID++
	w.Units[u.ID] = u
	w.Reveal(u)
	return u
}
