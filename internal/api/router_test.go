package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quick-route/internal/adapters/distance"
	"quick-route/internal/api/dto"
	"quick-route/internal/domain"
	"quick-route/internal/services"
)

func newTestRouter(t *testing.T) (http.Handler, *distance.MockProvider) {
	t.Helper()

	addrs := []string{"Depot", "A", "B", "Home"}
	places := make([]distance.MockPlace, len(addrs))
	for i, a := range addrs {
		places[i] = distance.MockPlace{Address: a, Coords: domain.Coordinates{Lat: 33.4 + float64(i)*0.01, Lon: -112.0}}
	}

	var pairs []distance.MockPair
	for _, a := range addrs {
		for _, b := range addrs {
			if a == b {
				continue
			}
			s := 100.0
			switch a + "|" + b {
			case "Depot|B", "B|A", "A|Home":
				s = 10
			}
			pairs = append(pairs, distance.MockPair{From: a, To: b, Meters: s * 5, Seconds: s})
		}
	}

	provider := distance.NewMockProvider(places, pairs)
	planner := services.NewPlanner(provider, provider, services.PlannerConfig{MatrixConcurrency: 2, LegConcurrency: 2})
	return NewRouter(planner, []string{"*"}), provider
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestPlanAndSnapshot(t *testing.T) {
	h, provider := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/plans", `{"origin":"Depot","stops":["A","B"],"destination":"Home"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var plan dto.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, []int{0, 2, 1, 3}, plan.Order)
	assert.Equal(t, "automobile", plan.TransportMode)
	require.Len(t, plan.Legs, 3)
	assert.Equal(t, "Depot", plan.Legs[0].From)
	assert.Equal(t, "B", plan.Legs[0].To)
	assert.Equal(t, 30.0, plan.TotalDurationSeconds)
	assert.Equal(t, 150.0, plan.TotalDistanceMeters)
	assert.Equal(t, 3, provider.RouteCalls())

	rec = do(t, h, http.MethodGet, "/plans/current", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap dto.SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "succeeded", snap.Stage)
	assert.False(t, snap.InProgress)
	require.NotNil(t, snap.Plan)
	assert.Equal(t, plan.RunID, snap.Plan.RunID)
}

func TestPlanErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "malformed", body: `{`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"origin":"Depot","hub":"x"}`, status: http.StatusBadRequest},
		{name: "two objects", body: `{"origin":"Depot"}{}`, status: http.StatusBadRequest},
		{name: "too few stops", body: `{"origin":"Depot","destination":"  "}`, status: http.StatusBadRequest},
		{name: "bad mode", body: `{"origin":"Depot","destination":"Home","transport_mode":"hovercraft"}`, status: http.StatusBadRequest},
		{name: "unknown address", body: `{"origin":"Depot","stops":["Atlantis"],"destination":"Home"}`, status: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t)

			rec := do(t, h, http.MethodPost, "/plans", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestFailedPlanClearsSnapshot(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/plans", `{"origin":"Depot","stops":["A"],"destination":"Home"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/plans", `{"origin":"Depot","stops":["Atlantis"],"destination":"Home"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodGet, "/plans/current", "")
	var snap dto.SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "failed", snap.Stage)
	assert.Equal(t, "geocoding", snap.FailedStage)
	assert.Nil(t, snap.Plan)
	assert.NotEmpty(t, snap.LastError)

	rec = do(t, h, http.MethodGet, "/plans/current/geojson", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurrentGeoJSON(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/plans/current/geojson", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/plans", `{"origin":"Depot","stops":["A","B"],"destination":"Home"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/plans/current/geojson", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	// 4 stops + 3 legs
	require.Len(t, fc.Features, 7)
	assert.Equal(t, "Depot", fc.Features[0].Properties.MustString("address"))
	assert.Equal(t, "LineString", fc.Features[4].Geometry.GeoJSONType())
	assert.Equal(t, "B", fc.Features[4].Properties.MustString("to"))
}

func TestSetTransportMode(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/transport-mode", `{"transport_mode":"walk"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"transport_mode":"walking"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/plans", `{"origin":"Depot","destination":"Home"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var plan dto.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "walking", plan.TransportMode)

	rec = do(t, h, http.MethodPut, "/transport-mode", `{"transport_mode":"teleport"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/plans", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
}
