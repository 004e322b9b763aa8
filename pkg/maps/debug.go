package maps

import (
	"fmt"
	"sort"
	"strings"

	"frontier/internal/game"
)

// Debug returns a string visualization of the map.
func (m *Map) Debug() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Map: %s (%s)\n", m.Name, m.ID))
	sb.WriteString(fmt.Sprintf("Size: %dx%d\n", m.Width, m.Height))
	sb.WriteString(fmt.Sprintf("Landmasses: %d\n\n", len(m.Landmasses)))

	spawnAt := make(map[game.Coord]int)
	for i, s := range m.Spawns {
		spawnAt[s] = i
	}

	sb.WriteString("Terrain:\n")
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if p, ok := spawnAt[game.Coord{X: x, Y: y}]; ok {
				sb.WriteString(fmt.Sprintf("%d", p))
				continue
			}
			sb.WriteByte(Glyph(m.Terrain[y][x]))
		}
		sb.WriteString("\n")
	}

	counts := m.Counts()
	kinds := make([]string, 0, len(counts))
	for t := range counts {
		kinds = append(kinds, string(t))
	}
	sort.Strings(kinds)
	sb.WriteString("\nCounts:\n")
	for _, k := range kinds {
		sb.WriteString(fmt.Sprintf("  %-7s %d\n", k, counts[game.Terrain(k)]))
	}

	sb.WriteString("\nSpawns:\n")
	for i, s := range m.Spawns {
		sb.WriteString(fmt.Sprintf("  %d. %v on landmass %d\n", i, s, m.LandmassAt(s.X, s.Y)))
	}

	return sb.String()
}
