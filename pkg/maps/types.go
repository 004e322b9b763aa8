// Package maps handles map loading, processing, and generation.
package maps

import "frontier/internal/game"

// RawMap is the format stored in JSON files.
type RawMap struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`   // one glyph per cell, see ParseGlyph
	Spawns [][2]int `json:"spawns"` // [x,y] per player
}

// Map is the processed, runtime map data.
type Map struct {
	ID     string
	Name   string
	Width  int
	Height int
	Seed   uint64 // 0 for hand-made maps

	// Terrain indexed [y][x]
	Terrain [][]game.Terrain

	Spawns []game.Coord

	// Landmasses are 4-connected passable regions, largest first.
	Landmasses []*Landmass

	// landGrid holds the landmass ID of every cell (0 = water)
	landGrid [][]int
}

// Landmass is a connected region of passable terrain.
type Landmass struct {
	ID    int
	Cells []game.Coord
}

// TerrainAt returns the terrain at the given coordinates.
// Returns water if out of bounds.
func (m *Map) TerrainAt(x, y int) game.Terrain {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return game.Water
	}
	return m.Terrain[y][x]
}

// LandmassAt returns the landmass ID at the given coordinates.
// Returns 0 if water or out of bounds.
func (m *Map) LandmassAt(x, y int) int {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0
	}
	return m.landGrid[y][x]
}

// Connected reports whether two cells lie on the same landmass.
func (m *Map) Connected(a, b game.Coord) bool {
	id := m.LandmassAt(a.X, a.Y)
	return id != 0 && id == m.LandmassAt(b.X, b.Y)
}

// Players returns the number of spawns the map supports.
func (m *Map) Players() int {
	return len(m.Spawns)
}

// Setup converts the map into a new-game description.
func (m *Map) Setup() game.Setup {
	terrain := make([][]game.Terrain, m.Height)
	for y := range terrain {
		terrain[y] = append([]game.Terrain(nil), m.Terrain[y]...)
	}
	return game.Setup{
		Terrain: terrain,
		Spawns:  append([]game.Coord(nil), m.Spawns...),
	}
}

// Counts returns a summary of terrain distribution.
func (m *Map) Counts() map[game.Terrain]int {
	counts := make(map[game.Terrain]int)
	for _, row := range m.Terrain {
		for _, t := range row {
			counts[t]++
		}
	}
	return counts
}
