package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/hailgo/hailgo/internal/adapters/http"
	"github.com/hailgo/hailgo/internal/core/domain"
	"github.com/hailgo/hailgo/internal/core/usecases"
)

// ---- Test fixtures ----

func fixtureCatalog() []domain.Place {
	return []domain.Place{
		{ID: "dtla", Name: "Downtown Los Angeles", Address: "Downtown, Los Angeles, CA", Location: domain.GeoPoint{Lat: 34.0522, Lon: -118.2437}},
		{ID: "lax", Name: "LAX Airport", Address: "1 World Way, Los Angeles, CA", Location: domain.GeoPoint{Lat: 33.9416, Lon: -118.4085}},
		{ID: "smp", Name: "Santa Monica Pier", Address: "200 Santa Monica Pier, Santa Monica, CA", Location: domain.GeoPoint{Lat: 34.0089, Lon: -118.4973}},
	}
}

func fixtureCorridors() []domain.Corridor {
	return []domain.Corridor{
		{OriginID: "dtla", DestinationID: "lax", DistanceMeters: 30600, DurationSeconds: 2400},
	}
}

func makeDeps(t *testing.T) *handler.Dependencies {
	t.Helper()
	places, err := usecases.NewPlaceService(fixtureCatalog(), nil)
	if err != nil {
		t.Fatalf("place service: %v", err)
	}
	return &handler.Dependencies{
		Places:    places,
		Estimates: usecases.NewEstimateService(places, fixtureCorridors(), usecases.RoutingConfig{}, nil),
		Fares:     usecases.NewFareService(usecases.DefaultPricing()),
		Tracking:  usecases.NewTrackingService(nil, usecases.SessionConfig{UpdateInterval: time.Hour}, nil),
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Place handler tests ----

func TestListPlaces(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Place `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 3 {
		t.Errorf("expected 3 places, got %d", len(result.Data))
	}
}

func TestListPlaces_Pagination(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places?offset=1&limit=1", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}

	var result struct {
		Data []domain.Place `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data) != 1 || result.Data[0].ID != "lax" {
		t.Errorf("expected second page [lax], got %+v", result.Data)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected Link header with next, got %q", link)
	}
}

func TestSearchPlaces(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places/search?q=santa+monica", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var places []domain.Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		t.Fatal(err)
	}
	if len(places) != 1 || places[0].ID != "smp" {
		t.Errorf("expected [smp], got %+v", places)
	}
}

func TestSearchPlaces_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places/search", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNearestPlace(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places/nearest?lat=33.95&lon=-118.40", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var place domain.Place
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		t.Fatal(err)
	}
	if place.ID != "lax" {
		t.Errorf("expected lax, got %s", place.ID)
	}
	if place.Distance == nil {
		t.Error("expected distance to be populated")
	}
}

func TestNearestPlace_MissingParams(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places/nearest?lat=33.95", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetPlace(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places/dtla", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/v1/places/nowhere", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- Estimate handler tests ----

func TestEstimate_Curated(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET",
		"/v1/estimates?origin_lat=34.0522&origin_lon=-118.2437&dest_lat=33.9416&dest_lon=-118.4085", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var est domain.RouteEstimate
	if err := json.NewDecoder(resp.Body).Decode(&est); err != nil {
		t.Fatal(err)
	}
	if !est.Curated {
		t.Error("expected curated estimate for dtla->lax")
	}
	if est.DistanceMeters != 30600 {
		t.Errorf("expected 30600 m, got %.0f", est.DistanceMeters)
	}
	if len(est.Path) < 2 {
		t.Errorf("expected a renderable path, got %d points", len(est.Path))
	}
}

func TestEstimate_BadParams(t *testing.T) {
	app := setupApp(makeDeps(t))

	for _, url := range []string{
		"/v1/estimates",
		"/v1/estimates?origin_lat=34&origin_lon=-118&dest_lat=91&dest_lon=-118",
		"/v1/estimates?origin_lat=abc&origin_lon=-118&dest_lat=34&dest_lon=-118",
	} {
		req := httptest.NewRequest("GET", url, nil)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("%s: expected 400, got %d", url, resp.StatusCode)
		}
	}
}

// ---- Quote handler tests ----

func TestQuote(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"distance_meters":10000,"tier":"economy","at":"2026-03-10T03:00:00Z"}`
	req := httptest.NewRequest("POST", "/v1/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var quote domain.FareQuote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		t.Fatal(err)
	}
	if quote.Amount != 14.50 {
		t.Errorf("expected 14.50, got %.2f", quote.Amount)
	}
	if quote.SurgeApplied {
		t.Error("expected no surge at 03:00")
	}
}

func TestQuote_UnknownTier(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"distance_meters":10000,"tier":"luxury"}`
	req := httptest.NewRequest("POST", "/v1/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Trip handler tests ----

type tripState struct {
	TripID       string `json:"trip_id"`
	Status       string `json:"status"`
	CurrentIndex int    `json:"current_index"`
	PathLength   int    `json:"path_length"`
}

func createTrip(t *testing.T, app *fiber.App) tripState {
	t.Helper()
	body := `{"origin":{"lat":34.0522,"lon":-118.2437},"destination":{"lat":33.9416,"lon":-118.4085}}`
	req := httptest.NewRequest("POST", "/v1/trips", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var created struct {
		Trip tripState `json:"trip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	return created.Trip
}

func TestTripLifecycle(t *testing.T) {
	app := setupApp(makeDeps(t))

	trip := createTrip(t, app)
	if trip.TripID == "" {
		t.Fatal("expected a trip ID")
	}
	if trip.Status != "idle" {
		t.Fatalf("expected new trip idle, got %s", trip.Status)
	}
	if trip.PathLength < 2 {
		t.Fatalf("expected a path, got length %d", trip.PathLength)
	}

	// Start
	req := httptest.NewRequest("POST", "/v1/trips/"+trip.TripID+"/start", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var state tripState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Status != "running" {
		t.Fatalf("expected running after start, got %s", state.Status)
	}

	// Pause
	req = httptest.NewRequest("POST", "/v1/trips/"+trip.TripID+"/pause", nil)
	resp, _ = app.Test(req, -1)
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Status != "paused" {
		t.Fatalf("expected paused, got %s", state.Status)
	}

	// Reset
	req = httptest.NewRequest("POST", "/v1/trips/"+trip.TripID+"/reset", nil)
	resp, _ = app.Test(req, -1)
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Status != "idle" || state.CurrentIndex != 0 {
		t.Fatalf("expected idle at index 0 after reset, got %s at %d", state.Status, state.CurrentIndex)
	}

	// Delete
	req = httptest.NewRequest("DELETE", "/v1/trips/"+trip.TripID, nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/v1/trips/"+trip.TripID, nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestGetTrip_IncludePath(t *testing.T) {
	app := setupApp(makeDeps(t))
	trip := createTrip(t, app)

	req := httptest.NewRequest("GET", "/v1/trips/"+trip.TripID+"?include_path=true", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}

	var state struct {
		Path []domain.GeoPoint `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if len(state.Path) < 2 {
		t.Errorf("expected path included, got %d points", len(state.Path))
	}
}

func TestTrip_NotFound(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trips/no-such-trip/start", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateTrip_BadCoordinates(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"origin":{"lat":95,"lon":-118},"destination":{"lat":34,"lon":-118}}`
	req := httptest.NewRequest("POST", "/v1/trips", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Health tests ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var health struct {
		Status string `json:"status"`
		Places int    `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %s", health.Status)
	}
	if health.Places != 3 {
		t.Errorf("expected 3 places, got %d", health.Places)
	}
}
