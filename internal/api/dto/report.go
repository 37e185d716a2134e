package dto

type DecisionResponse struct {
	ToStore           string  `json:"to_store"`
	OriginCount       int     `json:"num_origins"`
	VehiclesSingle    int     `json:"veh_A"`
	VehiclesParallel  int     `json:"veh_B"`
	TimeSingleHours   float64 `json:"time_A_hr"`
	TimeParallelHours float64 `json:"time_B_hr"`
	Decision          string  `json:"decision"`
	Strategy          string  `json:"strategy"`
}

type ListDecisionsResponse struct {
	Decisions []DecisionResponse `json:"decisions"`
}

type AlertResponse struct {
	StoreID          string  `json:"store_id"`
	ProductID        string  `json:"product_id"`
	CurrentInventory int     `json:"current_inventory"`
	PredictedDemand  float64 `json:"predicted_7_day_sales"`
	Status           string  `json:"status"`
	ShortageQty      int     `json:"shortage_qty"`
}

type ListAlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}
