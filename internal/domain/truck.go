package domain

import "fmt"

// DefaultTruckCapacity is the number of units one truck-load can carry.
const DefaultTruckCapacity = 100

// Delivery truck model used to size dispatches from one origin.
type Truck struct {
	Capacity int
}

func NewTruck(capacity int) (*Truck, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new truck: capacity must be positive (capacity=%d)", capacity)
	}
	return &Truck{Capacity: capacity}, nil
}

// Trips returns how many truck-loads are needed to move quantity units.
func (t *Truck) Trips(quantity int) int {
	if quantity <= 0 {
		return 0
	}
	// Ceiling division: a partial load still needs its own truck.
	return (quantity + t.Capacity - 1) / t.Capacity
}
