package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.geoapify.com"

// Address is the structured result of a geocoding lookup.
type Address struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Country          string  `json:"country,omitempty"`
	Postcode         string  `json:"postcode,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
}

// RouteInfo is the distance/duration pair from the routing API.
type RouteInfo struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// GeocodeOptions tune a forward geocode or autocomplete request.
type GeocodeOptions struct {
	Limit       int
	CountryCode string
	// BiasLat/BiasLng bias results toward a point when both are non-zero.
	BiasLat float64
	BiasLng float64
}

// Client wraps the Geoapify HTTP API. All methods return an error on network
// or decode failure; callers are expected to degrade (skip the filter, show
// an empty list) rather than fail their operation.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL exists for tests pointing at an httptest server.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Geoapify responses are GeoJSON FeatureCollections.
type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties featureProperties `json:"properties"`
	Geometry   featureGeometry   `json:"geometry"`
}

type featureProperties struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Formatted string  `json:"formatted"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Country   string  `json:"country"`
	Postcode  string  `json:"postcode"`
	Distance  float64 `json:"distance"`
	Rank      struct {
		Confidence float64 `json:"confidence"`
	} `json:"rank"`
}

type featureGeometry struct {
	Coordinates []float64 `json:"coordinates"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("apiKey", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geoapify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geoapify returned HTTP %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding geoapify response: %w", err)
	}
	return nil
}

func addressFromFeature(f feature) Address {
	addr := Address{
		Latitude:         f.Properties.Lat,
		Longitude:        f.Properties.Lon,
		FormattedAddress: f.Properties.Formatted,
		City:             f.Properties.City,
		State:            f.Properties.State,
		Country:          f.Properties.Country,
		Postcode:         f.Properties.Postcode,
		Confidence:       f.Properties.Rank.Confidence,
	}
	// GeoJSON geometry is authoritative when present; coordinates are
	// [lon, lat].
	if len(f.Geometry.Coordinates) == 2 {
		addr.Longitude = f.Geometry.Coordinates[0]
		addr.Latitude = f.Geometry.Coordinates[1]
	}
	return addr
}

// GeocodeAddress resolves free-form text (an address or a bare ZIP) to a
// single best match, or nil when the provider has no result.
func (c *Client) GeocodeAddress(ctx context.Context, text string, opts GeocodeOptions) (*Address, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("text", text)
	params.Set("limit", "1")
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.CountryCode != "" {
		params.Set("filter", "countrycode:"+strings.ToLower(opts.CountryCode))
	}
	if opts.BiasLat != 0 || opts.BiasLng != 0 {
		params.Set("bias", fmt.Sprintf("proximity:%f,%f", opts.BiasLng, opts.BiasLat))
	}

	var fc featureCollection
	if err := c.get(ctx, "/v1/geocode/search", params, &fc); err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}
	addr := addressFromFeature(fc.Features[0])
	return &addr, nil
}

// ReverseGeocode resolves a coordinate pair to the nearest address, or nil.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lng))

	var fc featureCollection
	if err := c.get(ctx, "/v1/geocode/reverse", params, &fc); err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}
	addr := addressFromFeature(fc.Features[0])
	return &addr, nil
}

// Autocomplete suggests addresses for a partial query. Queries shorter than
// two characters return an empty list without a network call.
func (c *Client) Autocomplete(ctx context.Context, text string, opts GeocodeOptions) ([]Address, error) {
	if len(strings.TrimSpace(text)) < 2 {
		return []Address{}, nil
	}

	params := url.Values{}
	params.Set("text", text)
	limit := 5
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if opts.CountryCode != "" {
		params.Set("filter", "countrycode:"+strings.ToLower(opts.CountryCode))
	}

	var fc featureCollection
	if err := c.get(ctx, "/v1/geocode/autocomplete", params, &fc); err != nil {
		return nil, err
	}

	addresses := make([]Address, 0, len(fc.Features))
	for _, f := range fc.Features {
		addresses = append(addresses, addressFromFeature(f))
	}
	return addresses, nil
}

type routingResponse struct {
	Features []struct {
		Properties struct {
			Distance float64 `json:"distance"`
			Time     float64 `json:"time"`
		} `json:"properties"`
	} `json:"features"`
}

// RouteDistance returns driving (or the given mode's) distance and duration
// between two points via the routing API.
func (c *Client) RouteDistance(ctx context.Context, fromLat, fromLng, toLat, toLng float64, mode string) (*RouteInfo, error) {
	if mode == "" {
		mode = "drive"
	}

	params := url.Values{}
	params.Set("waypoints", fmt.Sprintf("%f,%f|%f,%f", fromLat, fromLng, toLat, toLng))
	params.Set("mode", mode)

	var rr routingResponse
	if err := c.get(ctx, "/v1/routing", params, &rr); err != nil {
		return nil, err
	}
	if len(rr.Features) == 0 {
		return nil, nil
	}
	return &RouteInfo{
		DistanceMeters:  rr.Features[0].Properties.Distance,
		DurationSeconds: rr.Features[0].Properties.Time,
	}, nil
}

// PlacesInRadius lists places of the given categories within radiusMeters of
// a point.
func (c *Client) PlacesInRadius(ctx context.Context, lat, lng, radiusMeters float64, categories string, limit int) ([]Address, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	if categories != "" {
		params.Set("categories", categories)
	}
	params.Set("filter", fmt.Sprintf("circle:%f,%f,%f", lng, lat, radiusMeters))
	params.Set("limit", fmt.Sprintf("%d", limit))

	var fc featureCollection
	if err := c.get(ctx, "/v2/places", params, &fc); err != nil {
		return nil, err
	}

	places := make([]Address, 0, len(fc.Features))
	for _, f := range fc.Features {
		places = append(places, addressFromFeature(f))
	}
	return places, nil
}
