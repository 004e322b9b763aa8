package game

import (
	"errors"
	"fmt"
)

// ErrorKind groups rule violations so callers can present or ignore them.
type ErrorKind int

const (
	KindOwnership ErrorKind = iota
	KindGeometry
	KindResource
	KindOccupancy
	KindTerrain
	KindSize
	KindUnit
	KindInput
	KindResearch
	KindTurn
)

var kindNames = map[ErrorKind]string{
	KindOwnership: "ownership",
	KindGeometry:  "geometry",
	KindResource:  "resource",
	KindOccupancy: "occupancy",
	KindTerrain:   "terrain",
	KindSize:      "size",
	KindUnit:      "unit",
	KindInput:     "input",
	KindResearch:  "research",
	KindTurn:      "turn",
}

// String returns the category name.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// RuleError is a recoverable rule violation. The world is never modified
// when one is returned.
type RuleError struct {
	Kind ErrorKind
	Code string
	msg  string
}

func (e *RuleError) Error() string {
	return e.msg
}

func ruleError(kind ErrorKind, code, msg string) *RuleError {
	return &RuleError{Kind: kind, Code: code, msg: msg}
}

// Rule errors
var (
	ErrNotOwner              = ruleError(KindOwnership, "not_owner", "not owned by the current player")
	ErrNotYourTurn           = ruleError(KindTurn, "not_your_turn", "not your turn")
	ErrTileNotClaimed        = ruleError(KindOwnership, "tile_not_claimed", "tile is not claimed by one of your settlements")
	ErrOutOfBounds           = ruleError(KindGeometry, "out_of_bounds", "coordinate is outside the world")
	ErrNotAdjacent           = ruleError(KindGeometry, "not_adjacent", "destination is not adjacent")
	ErrInsufficientMoves     = ruleError(KindResource, "insufficient_moves", "not enough move points")
	ErrInsufficientResources = ruleError(KindResource, "insufficient_resources", "insufficient resources")
	ErrTileOccupied          = ruleError(KindOccupancy, "tile_occupied", "tile holds an incompatible unit")
	ErrAlreadyOccupied       = ruleError(KindOccupancy, "already_occupied", "a settlement already occupies this tile")
	ErrInfrastructureExists  = ruleError(KindOccupancy, "infrastructure_exists", "tile already has that improvement")
	ErrInvalidTerrain        = ruleError(KindTerrain, "invalid_terrain", "terrain does not allow this")
	ErrSettlementTooSmall    = ruleError(KindSize, "settlement_too_small", "settlement is too small")
	ErrNotFounder            = ruleError(KindUnit, "not_founder", "unit cannot found a settlement")
	ErrUnknownKind           = ruleError(KindInput, "unknown_kind", "unknown kind")
	ErrUnknownTech           = ruleError(KindInput, "unknown_tech", "unknown technology")
	ErrTechLocked            = ruleError(KindResearch, "tech_locked", "technology requirements not met")
	ErrTechResearched        = ruleError(KindResearch, "tech_researched", "technology already researched")
)

// ErrUnknownID signals a reference to a unit, settlement or player that does
// not exist. It is a caller bug, not a rule violation.
var ErrUnknownID = errors.New("unknown id")

// AsRuleError unwraps err into a *RuleError.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func unknownUnit(id int) error {
	return fmt.Errorf("%w: unit %d", ErrUnknownID, id)
}

func unknownSettlement(id int) error {
	return fmt.Errorf("%w: settlement %d", ErrUnknownID, id)
}

func unknownPlayer(id int) error {
	return fmt.Errorf("%w: player %d", ErrUnknownID, id)
}
