package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"store-rebalance-service/internal/adapters/repositories"
	"store-rebalance-service/internal/api/dto"
	"store-rebalance-service/internal/domain"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type memFeeds struct {
	stores    []domain.StoreLocation
	transfers []domain.Transfer
	decisions []domain.RouteDecision
	alerts    []domain.ShortageAlert
	err       error
}

func (m *memFeeds) ListStores(context.Context) ([]domain.StoreLocation, error) {
	return m.stores, m.err
}

func (m *memFeeds) ListTransfers(context.Context) ([]domain.Transfer, error) {
	return m.transfers, m.err
}

func (m *memFeeds) ListDecisions(context.Context) ([]domain.RouteDecision, error) {
	return m.decisions, m.err
}

func (m *memFeeds) ListAlerts(context.Context) ([]domain.ShortageAlert, error) {
	return m.alerts, m.err
}

func newTestRouter(m *memFeeds) *gin.Engine {
	return NewRouter(Feeds{Stores: m, Transfers: m, Decisions: m, Alerts: m}, nil)
}

func sampleFeeds() *memFeeds {
	return &memFeeds{
		stores: []domain.StoreLocation{
			{StoreID: "store_1", Lat: 23.25, Lon: 77.41, City: "Bhopal"},
			{StoreID: "store_2", Lat: 23.18, Lon: 77.30, City: "Bhopal"},
			{StoreID: "store_3", Lat: 23.21, Lon: 77.45, City: "Bhopal"},
		},
		transfers: []domain.Transfer{
			{ProductID: "p1", FromStore: "store_1", ToStore: "store_3", Quantity: 10, DistanceKm: 5.25},
			{ProductID: "p2", FromStore: "store_2", ToStore: "store_1", Quantity: 4, DistanceKm: 12},
			{ProductID: "p1", FromStore: "store_2", ToStore: "store_3", Quantity: 2, DistanceKm: 20.5},
			{ProductID: "p3", FromStore: "store_1", ToStore: "store_3", Quantity: 7, DistanceKm: 5.25},
		},
		decisions: []domain.RouteDecision{
			{ToStore: "store_3", OriginCount: 2, VehiclesSingle: 1, VehiclesParallel: 2, TimeSingleHours: 0.9, TimeParallelHours: 0.51, Chosen: domain.StrategySingleVehicle},
		},
		alerts: []domain.ShortageAlert{
			{Position: domain.InventoryPosition{StoreID: "store_3", ProductID: "p1", CurrentInventory: 0, PredictedDemand: 12}, ShortageQty: 12},
		},
	}
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(sampleFeeds()), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing %s header", requestIDHeader)
	}
}

func TestListTransfers(t *testing.T) {
	rec := get(t, newTestRouter(sampleFeeds()), "/api/v1/transfers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var res dto.RouteDataResponse
	decode(t, rec, &res)

	if len(res.Transfers) != 4 {
		t.Fatalf("transfers = %d, want 4", len(res.Transfers))
	}
	if !reflect.DeepEqual(res.Destinations, []string{"store_1", "store_3"}) {
		t.Fatalf("destinations = %v, want sorted [store_1 store_3]", res.Destinations)
	}
	if res.Locations["store_2"].Lon != 77.30 {
		t.Fatalf("locations = %+v", res.Locations)
	}
}

func TestTransfersForDestination(t *testing.T) {
	rec := get(t, newTestRouter(sampleFeeds()), "/api/v1/transfers/store_3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var res dto.DestinationRouteResponse
	decode(t, rec, &res)

	if !reflect.DeepEqual(res.Origins, []string{"store_1", "store_2"}) {
		t.Fatalf("origins = %v", res.Origins)
	}
	want := dto.RouteStatistics{TotalDistance: 31, TotalQuantity: 19, EstimatedTime: 62, OriginCount: 2}
	if res.Statistics != want {
		t.Fatalf("statistics = %+v, want %+v", res.Statistics, want)
	}
	if len(res.Transfers) != 3 {
		t.Fatalf("transfers = %d, want 3", len(res.Transfers))
	}
}

func TestTransfersForUnknownDestination(t *testing.T) {
	rec := get(t, newTestRouter(sampleFeeds()), "/api/v1/transfers/store_9")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if !strings.Contains(rec.Body.String(), "store_9") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestDecisionsAndAlerts(t *testing.T) {
	r := newTestRouter(sampleFeeds())

	var decisions dto.ListDecisionsResponse
	decode(t, get(t, r, "/api/v1/decisions"), &decisions)
	if len(decisions.Decisions) != 1 || decisions.Decisions[0].Decision != "A (multi-pickup)" {
		t.Fatalf("decisions = %+v", decisions)
	}

	var alerts dto.ListAlertsResponse
	decode(t, get(t, r, "/api/v1/alerts"), &alerts)
	if len(alerts.Alerts) != 1 || alerts.Alerts[0].Status != "shortage" || alerts.Alerts[0].ShortageQty != 12 {
		t.Fatalf("alerts = %+v", alerts)
	}

	var stores dto.ListStoresResponse
	decode(t, get(t, r, "/api/v1/stores"), &stores)
	if len(stores.Stores) != 3 || stores.Stores[0].StoreID != "store_1" {
		t.Fatalf("stores = %+v", stores)
	}
}

func TestFeedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("list transfers: %w: outputs/interstore_transfers.csv", repositories.ErrMissingFeed), http.StatusServiceUnavailable},
		{fmt.Errorf("list transfers: disk on fire"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		rec := get(t, newTestRouter(&memFeeds{err: c.err}), "/api/v1/transfers")
		if rec.Code != c.want {
			t.Errorf("err %v: status = %d, want %d", c.err, rec.Code, c.want)
		}
	}
}

func TestCORSAllowsDashboardOrigin(t *testing.T) {
	r := newTestRouter(sampleFeeds())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q, want dashboard origin", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(sampleFeeds())
	get(t, r, "/health")

	rec := get(t, r, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics body missing http_requests_total")
	}
}
