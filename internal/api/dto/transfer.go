package dto

type TransferResponse struct {
	ProductID string  `json:"product_id"`
	FromStore string  `json:"from_store"`
	ToStore   string  `json:"to_store"`
	Quantity  int     `json:"quantity"`
	RoadKm    float64 `json:"road_km"`
}

type RouteDataResponse struct {
	Transfers    []TransferResponse          `json:"transfers"`
	Locations    map[string]LocationResponse `json:"locations"`
	Destinations []string                    `json:"destinations"`
}

type RouteStatistics struct {
	TotalDistance float64 `json:"total_distance"`
	TotalQuantity int     `json:"total_quantity"`
	// Minutes, at two minutes per road km.
	EstimatedTime int `json:"estimated_time"`
	OriginCount   int `json:"origin_count"`
}

type DestinationRouteResponse struct {
	Destination string                      `json:"destination"`
	Origins     []string                    `json:"origins"`
	Transfers   []TransferResponse          `json:"transfers"`
	Locations   map[string]LocationResponse `json:"locations"`
	Statistics  RouteStatistics             `json:"statistics"`
}
