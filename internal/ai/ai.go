// Package ai implements the built-in heuristic opponent. It reads the live
// world, checks legality with the engine's Can* queries and issues every
// action through a caller-supplied apply function so the caller can log and
// persist it like any human command.
package ai

import (
	"errors"

	"github.com/rs/zerolog/log"

	"frontier/internal/game"
)

// Personality biases the opponent's spending.
type Personality string

const (
	Balanced     Personality = "balanced"
	Aggressive   Personality = "aggressive"
	Expansionist Personality = "expansionist"
)

// Valid reports whether p is a known personality.
func (p Personality) Valid() bool {
	switch p {
	case Balanced, Aggressive, Expansionist:
		return true
	}
	return false
}

// DefaultMaxActions bounds the commands issued in one turn, end_turn excluded.
const DefaultMaxActions = 48

// ApplyFunc executes one command on behalf of the opponent.
type ApplyFunc func(game.Command) error

// Player is a heuristic opponent controlling one seat.
type Player struct {
	ID          int
	Personality Personality
	MaxActions  int

	w       *game.World
	rng     game.Rand
	apply   ApplyFunc
	actions int
}

// New creates an opponent for seat id. Unknown personalities play balanced.
func New(id int, personality Personality) *Player {
	if !personality.Valid() {
		personality = Balanced
	}
	return &Player{ID: id, Personality: personality, MaxActions: DefaultMaxActions}
}

// errBudget stops a turn once the action budget is spent.
var errBudget = errors.New("action budget spent")

// TakeTurn plays the opponent's whole turn and finishes with end_turn.
// Rule rejections of individual actions are skipped; any other error from
// apply aborts the turn and is returned.
func (p *Player) TakeTurn(w *game.World, rng game.Rand, apply ApplyFunc) error {
	if w.Current != p.ID {
		return game.ErrNotYourTurn
	}
	p.w, p.rng, p.apply, p.actions = w, rng, apply, 0
	defer func() { p.w, p.rng, p.apply = nil, nil, nil }()

	steps := []func() error{
		p.chooseResearch,
		p.foundSettlements,
		p.adjustFocus,
		p.buyUnits,
		p.buildImprovements,
		p.moveUnits,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			if errors.Is(err, errBudget) {
				break
			}
			return err
		}
	}

	log.Debug().Int("player", p.ID).Int("actions", p.actions).Int("turn", w.Turn).Msg("AI: ending turn")
	return apply(game.EndTurnCmd(p.ID))
}

// issue sends cmd through apply. It reports whether the command succeeded.
func (p *Player) issue(cmd game.Command) (bool, error) {
	if p.actions >= p.maxActions() {
		return false, errBudget
	}
	p.actions++
	if err := p.apply(cmd); err != nil {
		if _, ok := game.AsRuleError(err); ok {
			log.Debug().Err(err).Str("command", cmd.String()).Msg("AI: command rejected")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *Player) maxActions() int {
	if p.MaxActions <= 0 {
		return DefaultMaxActions
	}
	return p.MaxActions
}

func (p *Player) chooseResearch() error {
	pl := p.w.Player(p.ID)
	if pl == nil || pl.ActiveTech != "" {
		return nil
	}
	available := pl.Available()
	if len(available) == 0 {
		return nil
	}

	pick := available[0].ID
	for _, want := range p.researchOrder() {
		found := false
		for _, t := range available {
			if t.ID == want {
				pick, found = want, true
				break
			}
		}
		if found {
			break
		}
	}
	_, err := p.issue(game.Research(p.ID, pick))
	return err
}

func (p *Player) researchOrder() []game.TechID {
	switch p.Personality {
	case Aggressive:
		return []game.TechID{game.TechMining, game.TechBronzeWorking, game.TechCartography, game.TechEngineering}
	case Expansionist:
		return []game.TechID{game.TechAgriculture, game.TechCivilService, game.TechCartography, game.TechEngineering}
	}
	return []game.TechID{game.TechAgriculture, game.TechMining, game.TechEngineering, game.TechCivilService}
}

func (p *Player) adjustFocus() error {
	for _, s := range p.w.SettlementsOf(p.ID) {
		want := game.FocusFood
		if s.Size >= p.settlerSize()+1 || p.Personality == Aggressive && s.Size >= 2 {
			want = game.FocusOutput
		}
		if s.Focus == want {
			continue
		}
		if _, err := p.issue(game.SetFocusCmd(p.ID, s.ID, want)); err != nil {
			return err
		}
	}
	return nil
}

// settlerSize is the settlement size at which the opponent trains settlers.
func (p *Player) settlerSize() int {
	if p.Personality == Expansionist {
		return 2
	}
	return 3
}

func (p *Player) buyUnits() error {
	soldiers, settlers := 0, 0
	for _, u := range p.w.UnitsOf(p.ID) {
		switch u.Kind {
		case game.Soldier:
			soldiers++
		case game.Settler:
			settlers++
		}
	}
	wantSoldiers := 1
	if p.Personality == Aggressive {
		wantSoldiers = 2 + len(p.w.SettlementsOf(p.ID))
	}

	for _, s := range p.w.SettlementsOf(p.ID) {
		var kind game.UnitKind
		switch {
		case settlers == 0 && s.Size >= p.settlerSize():
			kind = game.Settler
		case soldiers < wantSoldiers:
			kind = game.Soldier
		case p.w.RevealedCount(p.ID) < len(p.w.Tiles)/2 && p.countKind(game.Scout) == 0:
			kind = game.Scout
		default:
			continue
		}
		if p.w.CanBuyUnit(s.ID, kind) != nil {
			continue
		}
		ok, err := p.issue(game.Buy(p.ID, s.ID, kind))
		if err != nil {
			return err
		}
		if ok {
			switch kind {
			case game.Soldier:
				soldiers++
			case game.Settler:
				settlers++
			}
		}
	}
	return nil
}

func (p *Player) countKind(kind game.UnitKind) int {
	n := 0
	for _, u := range p.w.UnitsOf(p.ID) {
		if u.Kind == kind {
			n++
		}
	}
	return n
}

// buildImprovements builds the terrain's producer improvement on worked
// tiles and a road on the settlement tile.
func (p *Player) buildImprovements() error {
	producers := map[game.Terrain]game.Improvement{
		game.Plains: game.Farm,
		game.Hill:   game.Mine,
		game.Forest: game.LumberMill,
	}
	for _, s := range p.w.SettlementsOf(p.ID) {
		worked, _, err := p.w.WorkedTiles(s.ID)
		if err != nil {
			continue
		}
		for _, c := range worked {
			t := p.w.TileAt(c)
			if t == nil {
				continue
			}
			kind, ok := producers[t.Terrain]
			if !ok || p.w.CanBuildImprovement(c, kind) != nil {
				continue
			}
			if _, err := p.issue(game.Build(p.ID, c, kind)); err != nil {
				return err
			}
		}
		if p.Personality != Aggressive && p.w.CanBuildImprovement(s.Pos, game.Road) == nil {
			if _, err := p.issue(game.Build(p.ID, s.Pos, game.Road)); err != nil {
				return err
			}
		}
	}
	return nil
}
