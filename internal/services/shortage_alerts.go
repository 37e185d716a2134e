package services

import (
	"sort"
	"store-rebalance-service/internal/domain"
)

// BuildShortageAlerts lists every shortage position, most severe first.
// Severity is the demand gap rounded half-to-even; equal gaps keep feed order.
func BuildShortageAlerts(positions []domain.InventoryPosition) []domain.ShortageAlert {
	alerts := []domain.ShortageAlert{}
	for _, p := range positions {
		if p.Status() != domain.StatusShortage {
			continue
		}
		alerts = append(alerts, domain.ShortageAlert{
			Position:    p,
			ShortageQty: p.ShortageQty(),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ShortageQty > alerts[j].ShortageQty
	})

	return alerts
}
