package report

import (
	"encoding/json"
	"fmt"
	"io"
	"store-rebalance-service/internal/domain"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary is the machine-readable digest of one run.
type Summary struct {
	RunID           string         `json:"run_id" yaml:"run_id"`
	GeneratedAt     time.Time      `json:"generated_at" yaml:"generated_at"`
	Transfers       int            `json:"transfers" yaml:"transfers"`
	UnitsMoved      int            `json:"units_moved" yaml:"units_moved"`
	Destinations    int            `json:"destinations" yaml:"destinations"`
	SingleVehicle   int            `json:"single_vehicle" yaml:"single_vehicle"`
	ParallelBundled int            `json:"parallel_bundled" yaml:"parallel_bundled"`
	Alerts          int            `json:"alerts" yaml:"alerts"`
	DistanceLookups map[string]int `json:"distance_lookups,omitempty" yaml:"distance_lookups,omitempty"`
	Outputs         []string       `json:"outputs" yaml:"outputs"`
}

func NewSummary(
	runID string,
	generatedAt time.Time,
	transfers []domain.Transfer,
	decisions []domain.RouteDecision,
	alerts []domain.ShortageAlert,
	lookups map[string]int,
	outputs []string,
) Summary {
	s := Summary{
		RunID:           runID,
		GeneratedAt:     generatedAt,
		Transfers:       len(transfers),
		Destinations:    len(decisions),
		Alerts:          len(alerts),
		DistanceLookups: lookups,
		Outputs:         outputs,
	}
	for _, t := range transfers {
		s.UnitsMoved += t.Quantity
	}
	for _, d := range decisions {
		switch d.Chosen {
		case domain.StrategySingleVehicle:
			s.SingleVehicle++
		case domain.StrategyParallelBundled:
			s.ParallelBundled++
		}
	}
	if s.Outputs == nil {
		s.Outputs = []string{}
	}
	return s
}

// Encode writes s as "json" or "yaml".
func (s Summary) Encode(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("encode summary: unsupported format %q", format)
	}
}
