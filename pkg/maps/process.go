package maps

import (
	"sort"

	"frontier/internal/game"
)

// Process converts raw map data into a runtime Map.
// The raw map must already be validated.
func Process(raw *RawMap) *Map {
	m := &Map{
		ID:      raw.ID,
		Name:    raw.Name,
		Width:   raw.Width,
		Height:  raw.Height,
		Terrain: make([][]game.Terrain, raw.Height),
	}
	for y, row := range raw.Rows {
		m.Terrain[y] = make([]game.Terrain, raw.Width)
		for x := 0; x < raw.Width; x++ {
			m.Terrain[y][x], _ = ParseGlyph(row[x])
		}
	}
	for _, s := range raw.Spawns {
		m.Spawns = append(m.Spawns, game.Coord{X: s[0], Y: s[1]})
	}

	findLandmasses(m)
	return m
}

// findLandmasses labels every 4-connected region of passable terrain and
// orders them largest first.
func findLandmasses(m *Map) {
	m.landGrid = make([][]int, m.Height)
	visited := make([][]bool, m.Height)
	for y := range visited {
		visited[y] = make([]bool, m.Width)
		m.landGrid[y] = make([]int, m.Width)
	}

	var found [][]game.Coord
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if visited[y][x] || !m.Terrain[y][x].Passable() {
				continue
			}
			found = append(found, floodFill(m, x, y, visited))
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return len(found[i]) > len(found[j]) })

	m.Landmasses = make([]*Landmass, 0, len(found))
	for i, cells := range found {
		lm := &Landmass{ID: i + 1, Cells: cells}
		for _, c := range cells {
			m.landGrid[c.Y][c.X] = lm.ID
		}
		m.Landmasses = append(m.Landmasses, lm)
	}
}

// floodFill finds all connected passable cells starting from (startX, startY).
func floodFill(m *Map, startX, startY int, visited [][]bool) []game.Coord {
	var cells []game.Coord
	stack := []game.Coord{{X: startX, Y: startY}}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if c.X < 0 || c.X >= m.Width || c.Y < 0 || c.Y >= m.Height {
			continue
		}
		if visited[c.Y][c.X] || !m.Terrain[c.Y][c.X].Passable() {
			continue
		}

		visited[c.Y][c.X] = true
		cells = append(cells, c)
		stack = append(stack, game.Neighbors4(c)...)
	}

	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	return cells
}
