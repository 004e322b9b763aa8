package maps

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
)

//go:embed data/*.json
var mapFiles embed.FS

// Registry holds all loaded maps.
var Registry = make(map[string]*Map)

// LoadAll loads all embedded maps.
func LoadAll() error {
	entries, err := mapFiles.ReadDir("data")
	if err != nil {
		return fmt.Errorf("failed to read map directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		mapData, err := Load(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to load map %s: %w", entry.Name(), err)
		}

		Registry[mapData.ID] = mapData
	}

	return nil
}

// Load loads a single embedded map by filename.
func Load(filename string) (*Map, error) {
	data, err := mapFiles.ReadFile(path.Join("data", filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	return LoadFromJSON(data)
}

// Get retrieves a map from the registry by ID.
func Get(id string) *Map {
	return Registry[id]
}

// List returns all map IDs and names, sorted by ID.
func List() []MapInfo {
	infos := make([]MapInfo, 0, len(Registry))
	for _, m := range Registry {
		infos = append(infos, MapInfo{
			ID:      m.ID,
			Name:    m.Name,
			Width:   m.Width,
			Height:  m.Height,
			Players: m.Players(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// MapInfo contains basic map information for listing.
type MapInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Players int    `json:"players"`
}

// validate checks a raw map for errors.
func validate(raw *RawMap) error {
	if raw.ID == "" {
		return fmt.Errorf("map ID is required")
	}
	if raw.Name == "" {
		return fmt.Errorf("map name is required")
	}
	if raw.Width <= 0 || raw.Height <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", raw.Width, raw.Height)
	}
	if len(raw.Rows) != raw.Height {
		return fmt.Errorf("grid height mismatch: expected %d, got %d", raw.Height, len(raw.Rows))
	}
	for y, row := range raw.Rows {
		if len(row) != raw.Width {
			return fmt.Errorf("row %d width mismatch: expected %d, got %d", y, raw.Width, len(row))
		}
		for x := 0; x < len(row); x++ {
			if _, err := ParseGlyph(row[x]); err != nil {
				return fmt.Errorf("cell (%d,%d): %w", x, y, err)
			}
		}
	}
	if len(raw.Spawns) < 2 {
		return fmt.Errorf("at least 2 spawns are required, got %d", len(raw.Spawns))
	}
	seen := make(map[[2]int]bool)
	for i, s := range raw.Spawns {
		x, y := s[0], s[1]
		if x < 0 || x >= raw.Width || y < 0 || y >= raw.Height {
			return fmt.Errorf("spawn %d out of bounds: (%d,%d)", i, x, y)
		}
		if t, _ := ParseGlyph(raw.Rows[y][x]); !t.Passable() {
			return fmt.Errorf("spawn %d is on %s", i, t)
		}
		if seen[s] {
			return fmt.Errorf("spawn %d duplicates another spawn", i)
		}
		seen[s] = true
	}
	return nil
}

// LoadFromJSON loads a map from JSON bytes (for custom maps).
func LoadFromJSON(data []byte) (*Map, error) {
	var raw RawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse map JSON: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}

	return Process(&raw), nil
}

// Register adds a map to the registry.
func Register(m *Map) {
	if m != nil && m.ID != "" {
		Registry[m.ID] = m
	}
}
