package game

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the serialisable form of a World. Units and settlements are
// ordered by id and every set is sorted, so encoding is deterministic.
type Snapshot struct {
	Width            int          `json:"width"`
	Height           int          `json:"height"`
	Tiles            []Tile       `json:"tiles"`
	Units            []Unit       `json:"units"`
	Settlements      []Settlement `json:"settlements"`
	Players          []Player     `json:"players"`
	Current          int          `json:"current"`
	Turn             int          `json:"turn"`
	NextUnitID       int          `json:"nextUnitId"`
	NextSettlementID int          `json:"nextSettlementId"`
}

// Snapshot copies the world into its serialisable form.
func (w *World) Snapshot() *Snapshot {
	snap := &Snapshot{
		Width:            w.Width,
		Height:           w.Height,
		Tiles:            make([]Tile, len(w.Tiles)),
		Units:            make([]Unit, 0, len(w.Units)),
		Settlements:      make([]Settlement, 0, len(w.Settlements)),
		Players:          make([]Player, 0, len(w.Players)),
		Current:          w.Current,
		Turn:             w.Turn,
		NextUnitID:       w.NextUnitID,
		NextSettlementID: w.NextSettlementID,
	}
	for i := range w.Tiles {
		snap.Tiles[i] = w.Tiles[i].clone()
	}
	for _, u := range w.sortedUnits() {
		snap.Units = append(snap.Units, *u)
	}
	for _, s := range w.sortedSettlements() {
		snap.Settlements = append(snap.Settlements, s.clone())
	}
	for _, p := range w.Players {
		snap.Players = append(snap.Players, p.clone())
	}
	return snap
}

func (p *Player) clone() Player {
	c := *p
	c.TechProgress = make(map[TechID]int, len(p.TechProgress))
	for k, v := range p.TechProgress {
		c.TechProgress[k] = v
	}
	c.Unlocked = append([]TechID{}, p.Unlocked...)
	return c
}

// FromSnapshot rebuilds a world, checking the structural invariants a
// decoded snapshot must satisfy.
func FromSnapshot(snap *Snapshot) (*World, error) {
	if snap.Width <= 0 || snap.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", snap.Width, snap.Height)
	}
	if len(snap.Tiles) != snap.Width*snap.Height {
		return nil, fmt.Errorf("expected %d tiles, got %d", snap.Width*snap.Height, len(snap.Tiles))
	}
	if len(snap.Players) == 0 || snap.Current < 0 || snap.Current >= len(snap.Players) {
		return nil, fmt.Errorf("current player %d out of range", snap.Current)
	}
	w := &World{
		Width:            snap.Width,
		Height:           snap.Height,
		Tiles:            make([]Tile, len(snap.Tiles)),
		Units:            make(map[int]*Unit, len(snap.Units)),
		Settlements:      make(map[int]*Settlement, len(snap.Settlements)),
		Players:          make([]*Player, len(snap.Players)),
		Current:          snap.Current,
		Turn:             snap.Turn,
		NextUnitID:       snap.NextUnitID,
		NextSettlementID: snap.NextSettlementID,
	}
	for i := range snap.Tiles {
		t := snap.Tiles[i].clone()
		if t.X != i%snap.Width || t.Y != i/snap.Width {
			return nil, fmt.Errorf("tile %d has coordinate (%d,%d)", i, t.X, t.Y)
		}
		w.Tiles[i] = t
	}
	for i := range snap.Players {
		p := snap.Players[i].clone()
		if p.ID != i {
			return nil, fmt.Errorf("player %d stored at index %d", p.ID, i)
		}
		w.Players[i] = &p
	}
	for _, u := range snap.Units {
		if _, dup := w.Units[u.ID]; dup || u.ID >= w.NextUnitID {
			return nil, fmt.Errorf("bad unit id %d", u.ID)
		}
		u := u
		w.Units[u.ID] = &u
	}
	claimed := make(map[Coord]int)
	for _, s := range snap.Settlements {
		if _, dup := w.Settlements[s.ID]; dup || s.ID >= w.NextSettlementID {
			return nil, fmt.Errorf("bad settlement id %d", s.ID)
		}
		c := s.clone()
		for _, pos := range c.Claimed {
			if other, ok := claimed[pos]; ok {
				return nil, fmt.Errorf("tile %v claimed by settlements %d and %d", pos, other, c.ID)
			}
			claimed[pos] = c.ID
		}
		w.Settlements[c.ID] = &c
	}
	return w, nil
}

// Clone returns a deep copy of the world.
func (w *World) Clone() *World {
	c, err := FromSnapshot(w.Snapshot())
	if err != nil {
		panic(fmt.Sprintf("game: clone of invalid world: %v", err))
	}
	return c
}

// MarshalSnapshot encodes the world deterministically.
func (w *World) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(w.Snapshot())
}

// UnmarshalSnapshot decodes a world produced by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*World, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return FromSnapshot(&snap)
}
