package game

import "fmt"

// CommandType names an action on the command surface.
type CommandType string

const (
	CmdMove     CommandType = "move"
	CmdFound    CommandType = "found"
	CmdBuy      CommandType = "buy"
	CmdBuild    CommandType = "build"
	CmdFocus    CommandType = "focus"
	CmdResearch CommandType = "research"
	CmdEndTurn  CommandType = "end_turn"
)

// Command is one player action. Only the fields its type needs are set.
type Command struct {
	Type       CommandType `json:"type"`
	Player     int         `json:"player"`
	Unit       int         `json:"unit,omitempty"`
	Settlement int         `json:"settlement,omitempty"`
	To         *Coord      `json:"to,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	Focus      Focus       `json:"focus,omitempty"`
	Tech       TechID      `json:"tech,omitempty"`
}

// String returns a short human readable form used in logs.
func (c Command) String() string {
	switch c.Type {
	case CmdMove:
		return fmt.Sprintf("p%d move unit %d to %v", c.Player, c.Unit, c.To)
	case CmdFound:
		return fmt.Sprintf("p%d found with unit %d", c.Player, c.Unit)
	case CmdBuy:
		return fmt.Sprintf("p%d buy %s at settlement %d", c.Player, c.Kind, c.Settlement)
	case CmdBuild:
		return fmt.Sprintf("p%d build %s at %v", c.Player, c.Kind, c.To)
	case CmdFocus:
		return fmt.Sprintf("p%d focus settlement %d on %s", c.Player, c.Settlement, c.Focus)
	case CmdResearch:
		return fmt.Sprintf("p%d research %s", c.Player, c.Tech)
	case CmdEndTurn:
		return fmt.Sprintf("p%d end turn", c.Player)
	}
	return fmt.Sprintf("p%d %s", c.Player, c.Type)
}

// Outcome carries whatever a successful command produced.
type Outcome struct {
	Move       *MoveResult `json:"move,omitempty"`
	Settlement *Settlement `json:"settlement,omitempty"`
	Unit       *Unit       `json:"unit,omitempty"`
	Turn       *TurnReport `json:"turn,omitempty"`
}

// Move builds a move command.
func Move(player, unit int, to Coord) Command {
	return Command{Type: CmdMove, Player: player, Unit: unit, To: &to}
}

// Found builds a found command.
func Found(player, unit int) Command {
	return Command{Type: CmdFound, Player: player, Unit: unit}
}

// Buy builds a buy command.
func Buy(player, settlement int, kind UnitKind) Command {
	return Command{Type: CmdBuy, Player: player, Settlement: settlement, Kind: string(kind)}
}

// Build builds a build command.
func Build(player int, at Coord, kind Improvement) Command {
	return Command{Type: CmdBuild, Player: player, To: &at, Kind: string(kind)}
}

// SetFocusCmd builds a focus command.
func SetFocusCmd(player, settlement int, focus Focus) Command {
	return Command{Type: CmdFocus, Player: player, Settlement: settlement, Focus: focus}
}

// Research builds a research command.
func Research(player int, tech TechID) Command {
	return Command{Type: CmdResearch, Player: player, Tech: tech}
}

// EndTurnCmd builds an end turn command.
func EndTurnCmd(player int) Command {
	return Command{Type: CmdEndTurn, Player: player}
}

// Apply validates and executes cmd against w. Commands attributed to a
// player other than the current one are rejected before anything else.
func Apply(w *World, cmd Command, rng Rand) (Outcome, error) {
	if w.Player(cmd.Player) == nil {
		return Outcome{}, unknownPlayer(cmd.Player)
	}
	if cmd.Player != w.Current {
		return Outcome{}, ErrNotYourTurn
	}

	switch cmd.Type {
	case CmdMove:
		if cmd.To == nil {
			return Outcome{}, ErrOutOfBounds
		}
		res, err := w.MoveUnit(cmd.Unit, *cmd.To)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Move: &res}, nil

	case CmdFound:
		s, err := w.FoundSettlement(cmd.Unit, rng)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Settlement: &s}, nil

	case CmdBuy:
		u, err := w.BuyUnit(cmd.Settlement, UnitKind(cmd.Kind))
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Unit: &u}, nil

	case CmdBuild:
		if cmd.To == nil {
			return Outcome{}, ErrOutOfBounds
		}
		if err := w.BuildImprovement(*cmd.To, Improvement(cmd.Kind)); err != nil {
			return Outcome{}, err
		}
		return Outcome{}, nil

	case CmdFocus:
		return Outcome{}, w.SetFocus(cmd.Settlement, cmd.Focus)

	case CmdResearch:
		return Outcome{}, w.SetResearch(cmd.Tech)

	case CmdEndTurn:
		report := w.EndTurn(rng)
		return Outcome{Turn: &report}, nil
	}
	return Outcome{}, ErrUnknownKind
}
