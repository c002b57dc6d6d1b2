package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const searchResponse = `{
	"features": [
		{
			"properties": {
				"lat": 33.5587,
				"lon": -112.1120,
				"formatted": "Phoenix, AZ 85051, United States of America",
				"city": "Phoenix",
				"state": "Arizona",
				"country": "United States",
				"postcode": "85051",
				"rank": {"confidence": 0.95}
			},
			"geometry": {"type": "Point", "coordinates": [-112.1120, 33.5587]}
		}
	]
}`

func TestGeocodeAddress(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	c := NewClientWithBaseURL("test-key", server.URL)
	addr, err := c.GeocodeAddress(context.Background(), "85051", GeocodeOptions{Limit: 1, CountryCode: "US"})
	if err != nil {
		t.Fatalf("GeocodeAddress: %v", err)
	}
	if addr == nil {
		t.Fatal("expected an address")
	}

	if gotPath != "/v1/geocode/search" {
		t.Fatalf("path = %q", gotPath)
	}
	if got := gotQuery["apiKey"]; len(got) != 1 || got[0] != "test-key" {
		t.Fatalf("apiKey = %v", got)
	}
	if got := gotQuery["filter"]; len(got) != 1 || got[0] != "countrycode:us" {
		t.Fatalf("filter = %v", got)
	}

	if addr.Latitude != 33.5587 || addr.Longitude != -112.1120 {
		t.Fatalf("coordinates = %v,%v", addr.Latitude, addr.Longitude)
	}
	if addr.City != "Phoenix" || addr.Postcode != "85051" {
		t.Fatalf("addr = %+v", addr)
	}
	if addr.Confidence != 0.95 {
		t.Fatalf("confidence = %v", addr.Confidence)
	}
}

func TestGeocodeAddressEmptyInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	}))
	defer server.Close()

	c := NewClientWithBaseURL("test-key", server.URL)
	addr, err := c.GeocodeAddress(context.Background(), "   ", GeocodeOptions{})
	if err != nil || addr != nil {
		t.Fatalf("got %v, %v; want nil, nil", addr, err)
	}
}

func TestGeocodeAddressNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features": []}`))
	}))
	defer server.Close()

	c := NewClientWithBaseURL("test-key", server.URL)
	addr, err := c.GeocodeAddress(context.Background(), "nowhere at all", GeocodeOptions{})
	if err != nil {
		t.Fatalf("GeocodeAddress: %v", err)
	}
	if addr != nil {
		t.Fatalf("addr = %+v, want nil for no results", addr)
	}
}

func TestGeocodeAddressServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClientWithBaseURL("bad-key", server.URL)
	if _, err := c.GeocodeAddress(context.Background(), "85051", GeocodeOptions{}); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestAutocompleteShortQuerySkipsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a one-character query")
	}))
	defer server.Close()

	c := NewClientWithBaseURL("test-key", server.URL)
	addrs, err := c.Autocomplete(context.Background(), "p", GeocodeOptions{})
	if err != nil {
		t.Fatalf("Autocomplete: %v", err)
	}
	if len(addrs) != 0 {
		t.Fatalf("addrs = %v, want empty", addrs)
	}
}

func TestRouteDistance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/routing" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"features":[{"properties":{"distance":42195,"time":1800}}]}`))
	}))
	defer server.Close()

	c := NewClientWithBaseURL("test-key", server.URL)
	route, err := c.RouteDistance(context.Background(), 33.55, -112.11, 33.45, -112.07, "")
	if err != nil {
		t.Fatalf("RouteDistance: %v", err)
	}
	if route == nil || route.DistanceMeters != 42195 || route.DurationSeconds != 1800 {
		t.Fatalf("route = %+v", route)
	}
}

func TestAddressPrefersGeometryCoordinates(t *testing.T) {
	// Properties and geometry disagree; GeoJSON geometry wins.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"features": [{
				"properties": {"lat": 1.0, "lon": 2.0, "formatted": "x"},
				"geometry": {"type": "Point", "coordinates": [-112.0, 33.0]}
			}]
		}`))
	}))
	defer server.Close()

	c := NewClientWithBaseURL("test-key", server.URL)
	addr, err := c.GeocodeAddress(context.Background(), "anything", GeocodeOptions{})
	if err != nil {
		t.Fatalf("GeocodeAddress: %v", err)
	}
	if addr.Latitude != 33.0 || addr.Longitude != -112.0 {
		t.Fatalf("coordinates = %v,%v, want geometry values", addr.Latitude, addr.Longitude)
	}
}
