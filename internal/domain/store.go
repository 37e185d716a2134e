package domain

// StoreLocation is a retail store and where it sits on the map.
// Locations are loaded once per run and never mutated.
type StoreLocation struct {
	StoreID string
	Lat     float64
	Lon     float64
	City    string
}

func (s StoreLocation) Coordinates() Coordinates {
	return Coordinates{Lon: s.Lon, Lat: s.Lat}
}

// StorePair is the ordered (from, to) key used for distance lookups.
type StorePair struct {
	From string
	To   string
}

func (p StorePair) String() string { return p.From + "|" + p.To }
