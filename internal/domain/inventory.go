package domain

import (
	"errors"
	"fmt"
	"math"
)

// MaxQuantity bounds every inventory and demand figure so unit counts
// always fit an int on every platform.
const MaxQuantity = math.MaxInt32

var ErrInvalidQuantity = errors.New("invalid quantity")

// Status classifies a store/product position against its predicted demand.
type Status string

const (
	StatusSurplus  Status = "surplus"
	StatusShortage Status = "shortage"
	StatusBalanced Status = "balanced"
)

// InventoryPosition is one store/product row of the prediction feed.
type InventoryPosition struct {
	StoreID          string
	ProductID        string
	CurrentInventory int
	PredictedDemand  float64
}

// Validate rejects positions whose numbers cannot be turned into unit counts.
func (p InventoryPosition) Validate() error {
	if p.CurrentInventory < 0 || p.CurrentInventory > MaxQuantity {
		return fmt.Errorf("%w: %s/%s current_inventory %d outside [0, %d]",
			ErrInvalidQuantity, p.StoreID, p.ProductID, p.CurrentInventory, MaxQuantity)
	}
	d := p.PredictedDemand
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 || d > MaxQuantity {
		return fmt.Errorf("%w: %s/%s predicted demand %v outside [0, %d]",
			ErrInvalidQuantity, p.StoreID, p.ProductID, d, MaxQuantity)
	}
	return nil
}

// Status is always derived from the numbers, never read from the feed.
func (p InventoryPosition) Status() Status {
	current := float64(p.CurrentInventory)
	switch {
	case p.PredictedDemand < current:
		return StatusSurplus
	case p.PredictedDemand > current:
		return StatusShortage
	default:
		return StatusBalanced
	}
}

// SurplusQuantity is the number of whole units the store can give away.
// Zero unless the position is in surplus.
func (p InventoryPosition) SurplusQuantity() int {
	if p.Status() != StatusSurplus {
		return 0
	}
	return units(math.Ceil(float64(p.CurrentInventory) - p.PredictedDemand))
}

// ShortageNeed is the number of whole units the store is missing.
// Zero unless the position is in shortage.
func (p InventoryPosition) ShortageNeed() int {
	if p.Status() != StatusShortage {
		return 0
	}
	return units(math.Ceil(p.PredictedDemand - float64(p.CurrentInventory)))
}

// ShortageQty is the demand gap rounded half-to-even, as used for alerts.
// Zero unless the position is in shortage.
func (p InventoryPosition) ShortageQty() int {
	if p.Status() != StatusShortage {
		return 0
	}
	return units(math.RoundToEven(p.PredictedDemand - float64(p.CurrentInventory)))
}

// units converts a whole-valued float to a count in [0, MaxQuantity].
// NaN counts as zero.
func units(v float64) int {
	switch {
	case !(v > 0):
		return 0
	case v > MaxQuantity:
		return MaxQuantity
	default:
		return int(v)
	}
}
