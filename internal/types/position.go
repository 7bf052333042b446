package types

import (
	"time"
)

// PositionType represents the side of a position
type PositionType string

const (
	PositionTypeFlat  PositionType = "flat"
	PositionTypeLong  PositionType = "long"
	PositionTypeShort PositionType = "short"
)

// Position is the single open position of a simulation run.
// Size is signed: positive long, negative short, zero flat.
type Position struct {
	Size       float64   `json:"size"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_time"`
	EntryIndex int       `json:"entry_index"`
}

// Type returns the side implied by the signed size
func (p Position) Type() PositionType {
	switch {
	case p.Size > 0:
		return PositionTypeLong
	case p.Size < 0:
		return PositionTypeShort
	default:
		return PositionTypeFlat
	}
}
