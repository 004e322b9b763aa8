package game

import (
	"fmt"
	"sort"
)

// Coord is a raw grid cell position.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Less orders coordinates by X, then Y.
func (c Coord) Less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// Manhattan returns the taxicab distance between two cells.
func Manhattan(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns the king-move distance between two cells.
func Chebyshev(a, b Coord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

var sideOffsets = [4]Coord{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Neighbors4 returns the side-adjacent cells of c, including out-of-bounds ones.
func Neighbors4(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range sideOffsets {
		out = append(out, Coord{c.X + d.X, c.Y + d.Y})
	}
	return out
}

func sortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
}

// insertCoord adds c to the sorted set cs.
func insertCoord(cs []Coord, c Coord) []Coord {
	i := sort.Search(len(cs), func(i int) bool { return !cs[i].Less(c) })
	if i < len(cs) && cs[i] == c {
		return cs
	}
	cs = append(cs, Coord{})
	copy(cs[i+1:], cs[i:])
	cs[i] = c
	return cs
}

func containsCoord(cs []Coord, c Coord) bool {
	i := sort.Search(len(cs), func(i int) bool { return !cs[i].Less(c) })
	return i < len(cs) && cs[i] == c
}

// Yield is a pair of resource amounts.
type Yield struct {
	Food   int `json:"food"`
	Output int `json:"output"`
}

// Add returns the component-wise sum.
func (y Yield) Add(o Yield) Yield {
	return Yield{Food: y.Food + o.Food, Output: y.Output + o.Output}
}

// Terrain is the kind of ground a tile has.
type Terrain string

const (
	Plains  Terrain = "plains"
	Forest  Terrain = "forest"
	Hill    Terrain = "hill"
	Water   Terrain = "water"
	Unknown Terrain = "unknown" // fogged tile in a player view
)

// ImpassableCost exceeds every unit's move allowance.
const ImpassableCost = 99

// TerrainInfo holds the fixed properties of a terrain kind.
type TerrainInfo struct {
	MoveCost int
	Yield    Yield
}

var terrainInfo = map[Terrain]TerrainInfo{
	Plains: {MoveCost: 1, Yield: Yield{Food: 2, Output: 1}},
	Forest: {MoveCost: 2, Yield: Yield{Food: 1, Output: 2}},
	Hill:   {MoveCost: 2, Yield: Yield{Food: 0, Output: 3}},
	Water:  {MoveCost: ImpassableCost, Yield: Yield{Food: 1, Output: 0}},
}

// Info returns the terrain's properties. Unknown terrain is impassable and barren.
func (t Terrain) Info() TerrainInfo {
	if info, ok := terrainInfo[t]; ok {
		return info
	}
	return TerrainInfo{MoveCost: ImpassableCost}
}

// Valid reports whether t is a real terrain kind.
func (t Terrain) Valid() bool {
	_, ok := terrainInfo[t]
	return ok
}

// Passable reports whether land units may ever enter t.
func (t Terrain) Passable() bool {
	return t.Info().MoveCost < ImpassableCost
}

// Tile is one grid cell.
type Tile struct {
	X            int           `json:"x"`
	Y            int           `json:"y"`
	Terrain      Terrain       `json:"terrain"`
	Revealed     []int         `json:"revealed"`
	Improvements []Improvement `json:"improvements"`
}

// Pos returns the tile's coordinate.
func (t *Tile) Pos() Coord {
	return Coord{t.X, t.Y}
}

// RevealedBy reports whether player has observed the tile.
func (t *Tile) RevealedBy(player int) bool {
	i := sort.SearchInts(t.Revealed, player)
	return i < len(t.Revealed) && t.Revealed[i] == player
}

func (t *Tile) reveal(player int) {
	i := sort.SearchInts(t.Revealed, player)
	if i < len(t.Revealed) && t.Revealed[i] == player {
		return
	}
	t.Revealed = append(t.Revealed, 0)
	copy(t.Revealed[i+1:], t.Revealed[i:])
	t.Revealed[i] = player
}

// Has reports whether the tile carries the improvement.
func (t *Tile) Has(kind Improvement) bool {
	for _, k := range t.Improvements {
		if k == kind {
			return true
		}
	}
	return false
}

// HasConnector reports whether a connector improvement is present.
func (t *Tile) HasConnector() bool {
	for _, k := range t.Improvements {
		if k.Info().Connector {
			return true
		}
	}
	return false
}

// MoveCost is the cost of entering the tile, halved (min 1) by a connector.
func (t *Tile) MoveCost() int {
	cost := t.Terrain.Info().MoveCost
	if t.HasConnector() && cost < ImpassableCost {
		cost = max(cost/2, 1)
	}
	return cost
}

func (t *Tile) clone() Tile {
	c := *t
	c.Revealed = append([]int{}, t.Revealed...)
	c.Improvements = append([]Improvement{}, t.Improvements...)
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
