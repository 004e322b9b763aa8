// Package game contains the authoritative rules engine: the grid world,
// visibility, movement and combat, settlements, production, turn resolution
// and win evaluation. Every mutating call validates first and changes the
// world only when all of its preconditions hold.
package game

import (
	"fmt"
	"sort"
)

// Player holds a participant's resources and research state.
type Player struct {
	ID           int            `json:"id"`
	Food         int            `json:"food"`
	Output       int            `json:"output"`
	Research     int            `json:"research"`
	ActiveTech   TechID         `json:"activeTech,omitempty"`
	TechProgress map[TechID]int `json:"techProgress"`
	Unlocked     []TechID       `json:"unlocked"`
}

// CanAfford reports whether the player holds at least cost.
func (p *Player) CanAfford(cost Yield) bool {
	return p.Food >= cost.Food && p.Output >= cost.Output
}

func (p *Player) spend(cost Yield) {
	p.Food -= cost.Food
	p.Output -= cost.Output
}

func (p *Player) credit(y Yield) {
	p.Food += y.Food
	p.Output += y.Output
}

func newPlayer(id int) *Player {
	return &Player{ID: id, TechProgress: map[TechID]int{}, Unlocked: []TechID{}}
}

// World is the complete mutable game state.
type World struct {
	Width            int
	Height           int
	Tiles            []Tile // row-major
	Units            map[int]*Unit
	Settlements      map[int]*Settlement
	Players          []*Player
	Current          int
	Turn             int
	NextUnitID       int
	NextSettlementID int
}

// NewWorld creates an all-plains world with the given number of players and
// no units. Turn starts at 1 with player 0 current.
func NewWorld(width, height, players int) *World {
	w := &World{
		Width:            width,
		Height:           height,
		Tiles:            make([]Tile, width*height),
		Units:            make(map[int]*Unit),
		Settlements:      make(map[int]*Settlement),
		Players:          make([]*Player, players),
		Turn:             1,
		NextUnitID:       1,
		NextSettlementID: 1,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			w.Tiles[y*width+x] = Tile{
				X:            x,
				Y:            y,
				Terrain:      Plains,
				Revealed:     []int{},
				Improvements: []Improvement{},
			}
		}
	}
	for i := range w.Players {
		w.Players[i] = newPlayer(i)
	}
	return w
}

// Setup describes a new game: terrain rows indexed [y][x] and one spawn per player.
type Setup struct {
	Terrain [][]Terrain `json:"terrain"`
	Spawns  []Coord     `json:"spawns"`
}

// NewGame builds a world from setup and gives every player a settler on its
// spawn and a scout next to it.
func NewGame(setup Setup) (*World, error) {
	if len(setup.Terrain) == 0 || len(setup.Terrain[0]) == 0 {
		return nil, fmt.Errorf("empty terrain")
	}
	if len(setup.Spawns) < 2 {
		return nil, fmt.Errorf("need at least 2 spawns, got %d", len(setup.Spawns))
	}
	height, width := len(setup.Terrain), len(setup.Terrain[0])
	w := NewWorld(width, height, len(setup.Spawns))
	for y, row := range setup.Terrain {
		if len(row) != width {
			return nil, fmt.Errorf("terrain row %d has width %d, expected %d", y, len(row), width)
		}
		for x, t := range row {
			if !t.Valid() {
				return nil, fmt.Errorf("invalid terrain %q at (%d,%d)", t, x, y)
			}
			w.tile(Coord{x, y}).Terrain = t
		}
	}
	for player, spawn := range setup.Spawns {
		t := w.TileAt(spawn)
		if t == nil || !t.Terrain.Passable() {
			return nil, fmt.Errorf("spawn %v for player %d is not on land", spawn, player)
		}
		w.spawnUnit(player, Settler, spawn)
		w.spawnUnit(player, Scout, w.scoutSpot(spawn))
	}
	return w, nil
}

// scoutSpot picks the first free passable side neighbour of spawn.
func (w *World) scoutSpot(spawn Coord) Coord {
	for _, n := range Neighbors4(spawn) {
		t := w.TileAt(n)
		if t != nil && t.Terrain.Passable() && len(w.unitsAt(n)) == 0 {
			return n
		}
	}
	return spawn
}

// InBounds reports whether c lies inside the world.
func (w *World) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < w.Width && c.Y >= 0 && c.Y < w.Height
}

func (w *World) tile(c Coord) *Tile {
	return &w.Tiles[c.Y*w.Width+c.X]
}

// TileAt returns the tile at c, or nil when c is out of bounds. The
// returned tile is owned by the world and must not be modified.
func (w *World) TileAt(c Coord) *Tile {
	if !w.InBounds(c) {
		return nil
	}
	return w.tile(c)
}

// Tile returns a copy of the tile at c.
func (w *World) Tile(c Coord) (Tile, bool) {
	t := w.TileAt(c)
	if t == nil {
		return Tile{}, false
	}
	return t.clone(), true
}

// Unit returns a copy of the unit with the given id.
func (w *World) Unit(id int) (Unit, bool) {
	u, ok := w.Units[id]
	if !ok {
		return Unit{}, false
	}
	return *u, true
}

// Settlement returns a copy of the settlement with the given id.
func (w *World) Settlement(id int) (Settlement, bool) {
	s, ok := w.Settlements[id]
	if !ok {
		return Settlement{}, false
	}
	return s.clone(), true
}

// Player returns the player with the given id, or nil.
func (w *World) Player(id int) *Player {
	if id < 0 || id >= len(w.Players) {
		return nil
	}
	return w.Players[id]
}

// UnitsAt returns copies of the units standing on c, ordered by id.
func (w *World) UnitsAt(c Coord) []Unit {
	var out []Unit
	for _, u := range w.unitsAt(c) {
		out = append(out, *u)
	}
	return out
}

func (w *World) unitsAt(c Coord) []*Unit {
	var out []*Unit
	for _, u := range w.Units {
		if u.Pos == c {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SettlementAt returns a copy of the settlement sitting on c.
func (w *World) SettlementAt(c Coord) (Settlement, bool) {
	s := w.settlementAt(c)
	if s == nil {
		return Settlement{}, false
	}
	return s.clone(), true
}

func (w *World) settlementAt(c Coord) *Settlement {
	for _, s := range w.Settlements {
		if s.Pos == c {
			return s
		}
	}
	return nil
}

// UnitsOf returns copies of player's units ordered by id.
func (w *World) UnitsOf(player int) []Unit {
	var out []Unit
	for _, u := range w.sortedUnits() {
		if u.Owner == player {
			out = append(out, *u)
		}
	}
	return out
}

// SettlementsOf returns copies of player's settlements ordered by id.
func (w *World) SettlementsOf(player int) []Settlement {
	var out []Settlement
	for _, s := range w.sortedSettlements() {
		if s.Owner == player {
			out = append(out, s.clone())
		}
	}
	return out
}

// ClaimOwner returns the settlement whose claimed set contains c.
func (w *World) ClaimOwner(c Coord) (Settlement, bool) {
	s := w.claimedBy(c)
	if s == nil {
		return Settlement{}, false
	}
	return s.clone(), true
}

func (w *World) claimedBy(c Coord) *Settlement {
	for _, s := range w.Settlements {
		if containsCoord(s.Claimed, c) {
			return s
		}
	}
	return nil
}

func (w *World) sortedUnits() []*Unit {
	out := make([]*Unit, 0, len(w.Units))
	for _, u := range w.Units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) sortedSettlements() []*Settlement {
	out := make([]*Settlement, 0, len(w.Settlements))
	for _, s := range w.Settlements {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) unit(id int) (*Unit, error) {
	u, ok := w.Units[id]
	if !ok {
		return nil, unknownUnit(id)
	}
	return u, nil
}

func (w *World) settlement(id int) (*Settlement, error) {
	s, ok := w.Settlements[id]
	if !ok {
		return nil, unknownSettlement(id)
	}
	return s, nil
}
