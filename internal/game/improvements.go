package game

import "sort"

// Improvement is a tile improvement kind.
type Improvement string

const (
	Road       Improvement = "road"
	Farm       Improvement = "farm"
	Mine       Improvement = "mine"
	LumberMill Improvement = "lumber_mill"
)

// ConnectorBonus is added for every non-connector improvement sharing a tile
// with a connector.
var ConnectorBonus = Yield{Output: 1}

// ImprovementInfo holds the fixed properties of an improvement kind.
type ImprovementInfo struct {
	Connector bool
	Allowed   []Terrain
	Cost      int // output
	Bonus     Yield
}

var improvementInfo = map[Improvement]ImprovementInfo{
	Road:       {Connector: true, Allowed: []Terrain{Plains, Forest, Hill}, Cost: 1},
	Farm:       {Allowed: []Terrain{Plains}, Cost: 3, Bonus: Yield{Food: 1}},
	Mine:       {Allowed: []Terrain{Hill}, Cost: 4, Bonus: Yield{Output: 2}},
	LumberMill: {Allowed: []Terrain{Forest}, Cost: 3, Bonus: Yield{Output: 1}},
}

// Info returns the improvement's properties. Unknown kinds return a zero value.
func (k Improvement) Info() ImprovementInfo {
	return improvementInfo[k]
}

// Valid reports whether k is a known improvement kind.
func (k Improvement) Valid() bool {
	_, ok := improvementInfo[k]
	return ok
}

// AllowedOn reports whether k can be built on terrain t.
func (k Improvement) AllowedOn(t Terrain) bool {
	for _, a := range k.Info().Allowed {
		if a == t {
			return true
		}
	}
	return false
}

// Improvements lists every improvement kind in a stable order.
func Improvements() []Improvement {
	out := make([]Improvement, 0, len(improvementInfo))
	for k := range improvementInfo {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// checkImprovementSlot enforces the stacking rule: a connector may sit next
// to at most one other improvement, and non-connectors exclude each other.
func checkImprovementSlot(t *Tile, kind Improvement) error {
	if t.Has(kind) {
		return ErrInfrastructureExists
	}
	info := kind.Info()
	others := 0
	for _, k := range t.Improvements {
		if !k.Info().Connector {
			others++
		}
	}
	if info.Connector {
		if others > 1 {
			return ErrInfrastructureExists
		}
		return nil
	}
	if others > 0 {
		return ErrInfrastructureExists
	}
	return nil
}

func (t *Tile) addImprovement(kind Improvement) {
	t.Improvements = append(t.Improvements, kind)
	sort.Slice(t.Improvements, func(i, j int) bool { return t.Improvements[i] < t.Improvements[j] })
}

// TileYield is the tile's contribution before focus ranking: base terrain
// yield, improvement bonuses, connector bonuses and the owner's tech bonuses.
func (w *World) TileYield(t *Tile, owner int) Yield {
	y := t.Terrain.Info().Yield
	connector := t.HasConnector()
	fx := w.effectsOf(owner)
	y = y.Add(fx.TerrainYield[t.Terrain])
	for _, k := range t.Improvements {
		info := k.Info()
		if info.Connector {
			continue
		}
		y = y.Add(info.Bonus).Add(fx.ImprovementYield[k])
		if connector {
			y = y.Add(ConnectorBonus)
		}
	}
	return y
}
