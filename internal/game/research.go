package game

import "sort"

// TechID identifies a technology.
type TechID string

const (
	TechAgriculture   TechID = "agriculture"
	TechMining        TechID = "mining"
	TechCartography   TechID = "cartography"
	TechEngineering   TechID = "engineering"
	TechBronzeWorking TechID = "bronze_working"
	TechCivilService  TechID = "civil_service"
)

// AnyTier1 as a requirement is satisfied by any unlocked tier-1 tech.
const AnyTier1 TechID = "any:1"

// Tech is a researchable technology.
type Tech struct {
	ID       TechID
	Name     string
	Tier     int
	Cost     int
	Requires []TechID
	Effects  TechEffects
}

// TechEffects are the passive bonuses a tech grants once unlocked.
type TechEffects struct {
	TerrainYield        map[Terrain]Yield
	ImprovementYield    map[Improvement]Yield
	MoveBonus           map[UnitKind]int
	UnitDiscount        map[UnitKind]Yield
	ImprovementDiscount int
}

func (e *TechEffects) merge(o TechEffects) {
	for k, v := range o.TerrainYield {
		if e.TerrainYield == nil {
			e.TerrainYield = map[Terrain]Yield{}
		}
		e.TerrainYield[k] = e.TerrainYield[k].Add(v)
	}
	for k, v := range o.ImprovementYield {
		if e.ImprovementYield == nil {
			e.ImprovementYield = map[Improvement]Yield{}
		}
		e.ImprovementYield[k] = e.ImprovementYield[k].Add(v)
	}
	for k, v := range o.MoveBonus {
		if e.MoveBonus == nil {
			e.MoveBonus = map[UnitKind]int{}
		}
		e.MoveBonus[k] += v
	}
	for k, v := range o.UnitDiscount {
		if e.UnitDiscount == nil {
			e.UnitDiscount = map[UnitKind]Yield{}
		}
		e.UnitDiscount[k] = e.UnitDiscount[k].Add(v)
	}
	e.ImprovementDiscount += o.ImprovementDiscount
}

const (
	tier1Cost = 20
	tier2Cost = 35
)

var techTree = map[TechID]Tech{
	TechAgriculture: {
		ID: TechAgriculture, Name: "Agriculture", Tier: 1, Cost: tier1Cost,
		Effects: TechEffects{ImprovementYield: map[Improvement]Yield{Farm: {Food: 1}}},
	},
	TechMining: {
		ID: TechMining, Name: "Mining", Tier: 1, Cost: tier1Cost,
		Effects: TechEffects{TerrainYield: map[Terrain]Yield{Hill: {Output: 1}}},
	},
	TechCartography: {
		ID: TechCartography, Name: "Cartography", Tier: 1, Cost: tier1Cost,
		Effects: TechEffects{MoveBonus: map[UnitKind]int{Scout: 1}},
	},
	TechEngineering: {
		ID: TechEngineering, Name: "Engineering", Tier: 2, Cost: tier2Cost,
		Requires: []TechID{AnyTier1},
		Effects:  TechEffects{ImprovementDiscount: 1},
	},
	TechBronzeWorking: {
		ID: TechBronzeWorking, Name: "Bronze Working", Tier: 2, Cost: tier2Cost,
		Requires: []TechID{TechMining},
		Effects:  TechEffects{MoveBonus: map[UnitKind]int{Soldier: 1}},
	},
	TechCivilService: {
		ID: TechCivilService, Name: "Civil Service", Tier: 2, Cost: tier2Cost,
		Requires: []TechID{TechAgriculture},
		Effects:  TechEffects{UnitDiscount: map[UnitKind]Yield{Settler: {Food: 1}}},
	},
}

// LookupTech returns the tech with the given id.
func LookupTech(id TechID) (Tech, bool) {
	t, ok := techTree[id]
	return t, ok
}

// Techs lists the tech tree ordered by tier, then id.
func Techs() []Tech {
	out := make([]Tech, 0, len(techTree))
	for _, t := range techTree {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// HasTech reports whether the player has unlocked id.
func (p *Player) HasTech(id TechID) bool {
	i := sort.Search(len(p.Unlocked), func(i int) bool { return p.Unlocked[i] >= id })
	return i < len(p.Unlocked) && p.Unlocked[i] == id
}

func (p *Player) unlock(id TechID) {
	if p.HasTech(id) {
		return
	}
	p.Unlocked = append(p.Unlocked, id)
	sort.Slice(p.Unlocked, func(i, j int) bool { return p.Unlocked[i] < p.Unlocked[j] })
}

func (p *Player) meets(req TechID) bool {
	if req == AnyTier1 {
		for _, id := range p.Unlocked {
			if techTree[id].Tier == 1 {
				return true
			}
		}
		return false
	}
	return p.HasTech(req)
}

// Available lists the techs the player could start researching now.
func (p *Player) Available() []Tech {
	var out []Tech
	for _, t := range Techs() {
		if p.HasTech(t.ID) {
			continue
		}
		ok := true
		for _, req := range t.Requires {
			if !p.meets(req) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, t)
		}
	}
	return out
}

// SetResearch points the current player's research at tech. Progress on a
// previously active tech is kept.
func (w *World) SetResearch(tech TechID) error {
	t, ok := techTree[tech]
	if !ok {
		return ErrUnknownTech
	}
	p := w.Players[w.Current]
	if p.HasTech(tech) {
		return ErrTechResearched
	}
	for _, req := range t.Requires {
		if !p.meets(req) {
			return ErrTechLocked
		}
	}
	p.ActiveTech = tech
	return nil
}

// ResearchIncome is the points a player earns per turn: the summed size of
// its settlements.
func (w *World) ResearchIncome(player int) int {
	income := 0
	for _, s := range w.Settlements {
		if s.Owner == player {
			income += s.Size
		}
	}
	return income
}

// accrueResearch adds income to the player's pool and advances the active
// tech. It returns the tech unlocked this turn, if any.
func (w *World) accrueResearch(p *Player) (TechID, bool) {
	pool := p.Research + w.ResearchIncome(p.ID)
	if p.ActiveTech == "" {
		p.Research = pool
		return "", false
	}
	tech := techTree[p.ActiveTech]
	progress := p.TechProgress[tech.ID] + pool
	if progress < tech.Cost {
		p.TechProgress[tech.ID] = progress
		p.Research = 0
		return "", false
	}
	delete(p.TechProgress, tech.ID)
	p.unlock(tech.ID)
	p.Research = progress - tech.Cost
	p.ActiveTech = ""
	return tech.ID, true
}

func (w *World) effectsOf(player int) TechEffects {
	var fx TechEffects
	p := w.Player(player)
	if p == nil {
		return fx
	}
	for _, id := range p.Unlocked {
		fx.merge(techTree[id].Effects)
	}
	return fx
}
