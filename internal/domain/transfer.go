package domain

// Transfer moves Quantity units of one product between two stores.
// DistanceKm is the road distance known when the pair was matched.
type Transfer struct {
	ProductID  string
	FromStore  string
	ToStore    string
	Quantity   int
	DistanceKm float64
}

// ShortageAlert reports a store/product predicted to run short.
type ShortageAlert struct {
	Position    InventoryPosition
	ShortageQty int
}
