package dto

type LocationResponse struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	City string  `json:"city"`
}

type StoreResponse struct {
	StoreID string `json:"store_id"`
	LocationResponse
}

type ListStoresResponse struct {
	Stores []StoreResponse `json:"stores"`
}
