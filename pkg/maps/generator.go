package maps

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
	"golang.org/x/exp/rand"

	"frontier/internal/game"
)

// GeneratorOptions contains settings for map generation.
type GeneratorOptions struct {
	Width      int     // 8-64
	Height     int     // 8-64
	Seed       uint64  // same seed, same map
	Players    int     // 2-8 spawns
	WaterLevel float64 // elevation below this is water: 0.1-0.6
	Roughness  float64 // share of high ground that becomes hills: 0-1
}

// DefaultOptions returns sensible defaults for map generation.
func DefaultOptions() GeneratorOptions {
	return GeneratorOptions{
		Width:      24,
		Height:     16,
		Seed:       1,
		Players:    2,
		WaterLevel: 0.32,
		Roughness:  0.5,
	}
}

// Generator handles procedural map generation.
type Generator struct {
	options GeneratorOptions
	rng     *rand.Rand
	width   int
	height  int
	terrain [][]game.Terrain
}

// NewGenerator creates a new map generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	g := &Generator{
		options: opts,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		width:   clamp(opts.Width, 8, 64),
		height:  clamp(opts.Height, 8, 64),
	}
	g.options.Players = clamp(opts.Players, 2, 8)
	g.options.WaterLevel = clampf(opts.WaterLevel, 0.1, 0.6)
	g.options.Roughness = clampf(opts.Roughness, 0, 1)
	return g
}

// clamp restricts a value to a range
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func clampf(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Generate creates the map: noise terrain first, then spawns on the
// largest landmass.
func (g *Generator) Generate() (*Map, error) {
	g.paintTerrain()

	m := &Map{
		ID:      fmt.Sprintf("gen-%d", g.options.Seed),
		Name:    fmt.Sprintf("Generated %dx%d #%d", g.width, g.height, g.options.Seed),
		Width:   g.width,
		Height:  g.height,
		Seed:    g.options.Seed,
		Terrain: g.terrain,
	}
	findLandmasses(m)

	spawns, err := g.placeSpawns(m)
	if err != nil {
		return nil, err
	}
	m.Spawns = spawns
	// Spawn fixes may have joined or created land.
	findLandmasses(m)
	return m, nil
}

// paintTerrain samples elevation and moisture noise for every cell.
func (g *Generator) paintTerrain() {
	seed := int64(g.rng.Uint64() >> 1)
	elevation := opensimplex.NewNormalized(seed)
	moisture := opensimplex.NewNormalized(seed + 1)

	hillLine := 1 - (1-g.options.WaterLevel)*0.7*g.options.Roughness
	g.terrain = make([][]game.Terrain, g.height)
	for y := 0; y < g.height; y++ {
		g.terrain[y] = make([]game.Terrain, g.width)
		for x := 0; x < g.width; x++ {
			fx, fy := float64(x), float64(y)
			e := octaveNoise(elevation, fx, fy, 4, 0.09, 0.5)
			wet := octaveNoise(moisture, fx, fy, 3, 0.12, 0.5)

			switch {
			case e < g.options.WaterLevel:
				g.terrain[y][x] = game.Water
			case e > hillLine:
				g.terrain[y][x] = game.Hill
			case wet > 0.58:
				g.terrain[y][x] = game.Forest
			default:
				g.terrain[y][x] = game.Plains
			}
		}
	}
}

// octaveNoise layers several frequencies of normalized noise.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// spawnTargets returns the ideal spawn point of each player: opposite
// corners first, then the remaining corners, then edge midpoints.
func (g *Generator) spawnTargets() []game.Coord {
	w, h := g.width, g.height
	all := []game.Coord{
		{X: 1, Y: 1}, {X: w - 2, Y: h - 2}, {X: w - 2, Y: 1}, {X: 1, Y: h - 2},
		{X: w / 2, Y: 1}, {X: w / 2, Y: h - 2}, {X: 1, Y: h / 2}, {X: w - 2, Y: h / 2},
	}
	return all[:g.options.Players]
}

// placeSpawns picks, for each target, the nearest cell of the largest
// landmass that keeps clear of earlier spawns. Small or missing landmasses
// fall back to the target cell itself, which is turned into land.
func (g *Generator) placeSpawns(m *Map) ([]game.Coord, error) {
	var pool []game.Coord
	if len(m.Landmasses) > 0 && len(m.Landmasses[0].Cells) >= g.options.Players*6 {
		pool = m.Landmasses[0].Cells
	}
	minGap := max(2, min(g.width, g.height)/3)

	var spawns []game.Coord
	for _, target := range g.spawnTargets() {
		spawn, ok := nearestFree(pool, target, spawns, minGap)
		if !ok {
			spawn = target
			for _, s := range spawns {
				if s == spawn {
					return nil, fmt.Errorf("cannot place %d spawns on a %dx%d map", g.options.Players, g.width, g.height)
				}
			}
		}
		g.makeHabitable(spawn)
		spawns = append(spawns, spawn)
	}
	return spawns, nil
}

// nearestFree returns the pool cell closest to target that is at least gap
// away from every taken cell. Ties go to the first cell in coordinate order.
func nearestFree(pool []game.Coord, target game.Coord, taken []game.Coord, gap int) (game.Coord, bool) {
	best, bestDist := game.Coord{}, -1
	for _, c := range pool {
		free := true
		for _, t := range taken {
			if game.Manhattan(c, t) < gap {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		if d := game.Manhattan(c, target); bestDist == -1 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist != -1
}

// makeHabitable turns the spawn into plains and guarantees a passable side
// neighbour for the starting scout.
func (g *Generator) makeHabitable(c game.Coord) {
	g.terrain[c.Y][c.X] = game.Plains
	var inside []game.Coord
	for _, n := range game.Neighbors4(c) {
		if n.X < 0 || n.X >= g.width || n.Y < 0 || n.Y >= g.height {
			continue
		}
		if g.terrain[n.Y][n.X].Passable() {
			return
		}
		inside = append(inside, n)
	}
	if len(inside) > 0 {
		n := inside[g.rng.Intn(len(inside))]
		g.terrain[n.Y][n.X] = game.Plains
	}
}
