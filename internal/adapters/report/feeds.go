package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"store-rebalance-service/internal/domain"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Feed is one output file and the rows that go into it.
type Feed struct {
	Path   string
	Header []string
	Rows   [][]string
}

func km(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

func hours(v float64) string { return km(v) }

// TransferFeed renders transfers as product_id, from_store, to_store,
// quantity, road_km with road_km at two decimals.
func TransferFeed(path string, transfers []domain.Transfer) Feed {
	rows := make([][]string, 0, len(transfers))
	for _, t := range transfers {
		rows = append(rows, []string{
			t.ProductID,
			t.FromStore,
			t.ToStore,
			strconv.Itoa(t.Quantity),
			km(t.DistanceKm),
		})
	}
	return Feed{
		Path:   path,
		Header: []string{"product_id", "from_store", "to_store", "quantity", "road_km"},
		Rows:   rows,
	}
}

// StrategyFeed renders one row per destination. Column suffix A is the
// single-vehicle plan, B the parallel plan.
func StrategyFeed(path string, decisions []domain.RouteDecision) Feed {
	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, []string{
			d.ToStore,
			strconv.Itoa(d.OriginCount),
			strconv.Itoa(d.VehiclesSingle),
			strconv.Itoa(d.VehiclesParallel),
			hours(d.TimeSingleHours),
			hours(d.TimeParallelHours),
			d.Chosen.FeedLabel(),
		})
	}
	return Feed{
		Path:   path,
		Header: []string{"to_store", "num_origins", "veh_A", "veh_B", "time_A_hr", "time_B_hr", "decision"},
		Rows:   rows,
	}
}

func AlertFeed(path string, alerts []domain.ShortageAlert) Feed {
	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		p := a.Position
		rows = append(rows, []string{
			p.StoreID,
			p.ProductID,
			strconv.Itoa(p.CurrentInventory),
			strconv.FormatFloat(p.PredictedDemand, 'f', -1, 64),
			string(p.Status()),
			strconv.Itoa(a.ShortageQty),
		})
	}
	return Feed{
		Path:   path,
		Header: []string{"store_id", "product_id", "current_inventory", "predicted_7_day_sales", "status", "shortage_qty"},
		Rows:   rows,
	}
}

// rename is swapped in tests to simulate a failing filesystem.
var rename = os.Rename

// WriteFeeds writes every feed to a temp file next to its target, then
// swaps all of them into place. Existing outputs are moved aside first and
// restored if any later swap fails, so a failed call leaves the previous
// set of outputs as it was.
func WriteFeeds(feeds ...Feed) error {
	temps := make([]string, 0, len(feeds))
	cleanup := func() {
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}

	for _, f := range feeds {
		tmp, err := writeTemp(f)
		if err != nil {
			cleanup()
			return err
		}
		temps = append(temps, tmp)
	}

	// backups[i] is the previous output of feeds[i], or "" if there was none.
	backups := make([]string, 0, len(feeds))
	rollback := func() {
		for i := len(backups) - 1; i >= 0; i-- {
			if backups[i] == "" {
				_ = os.Remove(feeds[i].Path)
				continue
			}
			if err := rename(backups[i], feeds[i].Path); err != nil {
				log.Error().Err(err).Str("path", feeds[i].Path).Str("backup", backups[i]).
					Msg("restore previous output failed")
			}
		}
		cleanup()
	}

	for i, f := range feeds {
		backup := ""
		if _, err := os.Stat(f.Path); err == nil {
			backup = temps[i] + ".prev"
			if err := rename(f.Path, backup); err != nil {
				rollback()
				return fmt.Errorf("write feeds: move aside %q: %w", f.Path, err)
			}
		}
		backups = append(backups, backup)

		if err := rename(temps[i], f.Path); err != nil {
			rollback()
			return fmt.Errorf("write feeds: rename %q: %w", f.Path, err)
		}
	}

	for _, b := range backups {
		if b != "" {
			_ = os.Remove(b)
		}
	}
	return nil
}

func writeTemp(f Feed) (_ string, err error) {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("write feed %q: create dir: %w", f.Path, err)
	}

	out, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("write feed %q: create temp: %w", f.Path, err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(out.Name())
		}
	}()

	if err := out.Chmod(0o644); err != nil {
		return "", fmt.Errorf("write feed %q: chmod temp: %w", f.Path, err)
	}

	w := csv.NewWriter(out)
	if err := w.Write(f.Header); err != nil {
		return "", fmt.Errorf("write feed %q: header: %w", f.Path, err)
	}
	if err := w.WriteAll(f.Rows); err != nil {
		return "", fmt.Errorf("write feed %q: rows: %w", f.Path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("write feed %q: close: %w", f.Path, err)
	}

	return out.Name(), nil
}
