package game

// CanBuyUnit checks whether the settlement can produce a unit of kind now.
func (w *World) CanBuyUnit(settlementID int, kind UnitKind) error {
	s, err := w.settlement(settlementID)
	if err != nil {
		return err
	}
	if s.Owner != w.Current {
		return ErrNotOwner
	}
	if !kind.Valid() {
		return ErrUnknownKind
	}
	info := kind.Info()
	if s.Size < info.MinSize {
		return ErrSettlementTooSmall
	}
	owner := w.Player(s.Owner)
	if owner == nil {
		return unknownPlayer(s.Owner)
	}
	if !owner.CanAfford(w.UnitCost(s.Owner, kind)) {
		return ErrInsufficientResources
	}
	for _, other := range w.unitsAt(s.Pos) {
		if !info.Combat || !other.Kind.Info().Combat || other.Owner != s.Owner {
			return ErrTileOccupied
		}
	}
	return nil
}

// BuyUnit spends the owner's resources to create a unit on the settlement's
// tile. Settlers also cost one point of settlement size.
func (w *World) BuyUnit(settlementID int, kind UnitKind) (Unit, error) {
	if err := w.CanBuyUnit(settlementID, kind); err != nil {
		return Unit{}, err
	}
	s := w.Settlements[settlementID]
	w.Players[s.Owner].spend(w.UnitCost(s.Owner, kind))
	s.Size -= kind.Info().SizeCost
	u := w.spawnUnit(s.Owner, kind, s.Pos)
	return *u, nil
}

// CanBuildImprovement checks whether kind can be built at c now.
func (w *World) CanBuildImprovement(c Coord, kind Improvement) error {
	if !w.InBounds(c) {
		return ErrOutOfBounds
	}
	s := w.claimedBy(c)
	if s == nil || s.Owner != w.Current {
		return ErrTileNotClaimed
	}
	if !kind.Valid() {
		return ErrUnknownKind
	}
	t := w.tile(c)
	if !kind.AllowedOn(t.Terrain) {
		return ErrInvalidTerrain
	}
	if err := checkImprovementSlot(t, kind); err != nil {
		return err
	}
	if w.Players[s.Owner].Output < w.ImprovementCost(s.Owner, kind) {
		return ErrInsufficientResources
	}
	return nil
}

// BuildImprovement debits the owner's output and adds kind to the tile.
func (w *World) BuildImprovement(c Coord, kind Improvement) error {
	if err := w.CanBuildImprovement(c, kind); err != nil {
		return err
	}
	owner := w.claimedBy(c).Owner
	w.Players[owner].Output -= w.ImprovementCost(owner, kind)
	w.tile(c).addImprovement(kind)
	return nil
}
