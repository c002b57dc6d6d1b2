package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/compete-app/compete-backend/geocoding"
	"github.com/compete-app/compete-backend/services"
)

type LocationHandler struct {
	geocoder *geocoding.Client
	resolver *services.LocationResolver
}

func NewLocationHandler(geocoder *geocoding.Client, resolver *services.LocationResolver) *LocationHandler {
	return &LocationHandler{geocoder: geocoder, resolver: resolver}
}

func (h *LocationHandler) requireGeocoder(w http.ResponseWriter) bool {
	if h.geocoder == nil {
		errorJSON(w, http.StatusServiceUnavailable, "geocoding is not configured")
		return false
	}
	return true
}

// Autocomplete handles GET /api/locations/autocomplete?q=phoen.
func (h *LocationHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	if !h.requireGeocoder(w) {
		return
	}

	limit, err := queryInt(r, "limit", 5)
	if err != nil {
		badRequest(w, err)
		return
	}

	addresses, err := h.geocoder.Autocomplete(r.Context(), queryString(r, "q"), geocoding.GeocodeOptions{
		Limit:       limit,
		CountryCode: "us",
	})
	if err != nil {
		errorJSON(w, http.StatusBadGateway, "geocoding provider unavailable")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"addresses": addresses})
}

func (h *LocationHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	if !h.requireGeocoder(w) {
		return
	}

	lat, lng, err := parseLatLng(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	addr, err := h.geocoder.ReverseGeocode(r.Context(), lat, lng)
	if err != nil {
		errorJSON(w, http.StatusBadGateway, "geocoding provider unavailable")
		return
	}
	if addr == nil {
		errorJSON(w, http.StatusNotFound, "no address at this location")
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

// RouteDistance handles GET /api/locations/route?from_lat=..&from_lng=..&to_lat=..&to_lng=..&mode=drive.
func (h *LocationHandler) RouteDistance(w http.ResponseWriter, r *http.Request) {
	if !h.requireGeocoder(w) {
		return
	}

	coords := make(map[string]float64, 4)
	for _, key := range []string{"from_lat", "from_lng", "to_lat", "to_lng"} {
		v, err := strconv.ParseFloat(queryString(r, key), 64)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "query parameter "+key+" must be a number")
			return
		}
		coords[key] = v
	}

	route, err := h.geocoder.RouteDistance(r.Context(),
		coords["from_lat"], coords["from_lng"], coords["to_lat"], coords["to_lng"],
		queryString(r, "mode"))
	if err != nil {
		errorJSON(w, http.StatusBadGateway, "routing provider unavailable")
		return
	}
	if route == nil {
		errorJSON(w, http.StatusNotFound, "no route between these points")
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// Places handles GET /api/locations/places?lat=..&lng=..&radius=..&categories=..
// with radius in miles.
func (h *LocationHandler) Places(w http.ResponseWriter, r *http.Request) {
	if !h.requireGeocoder(w) {
		return
	}

	lat, lng, err := parseLatLng(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	radius := 25.0
	if v, qerr := queryFloatPtr(r, "radius"); qerr != nil {
		badRequest(w, qerr)
		return
	} else if v != nil {
		radius = *v
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		badRequest(w, err)
		return
	}

	places, err := h.geocoder.PlacesInRadius(r.Context(), lat, lng,
		services.DWithinMeters(radius), queryString(r, "categories"), limit)
	if err != nil {
		errorJSON(w, http.StatusBadGateway, "places provider unavailable")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"places": places})
}

// ResolveZip exposes the tiered ZIP origin resolution for clients that want
// coordinates before searching.
func (h *LocationHandler) ResolveZip(w http.ResponseWriter, r *http.Request) {
	zip := queryString(r, "zip_code")
	if zip == "" {
		errorJSON(w, http.StatusBadRequest, "query parameter zip_code is required")
		return
	}

	origin := h.resolver.ResolveZipOrigin(r.Context(), zip)
	if origin == nil {
		errorJSON(w, http.StatusNotFound, "zip code could not be resolved")
		return
	}
	writeJSON(w, http.StatusOK, origin)
}

func parseLatLng(r *http.Request) (float64, float64, error) {
	lat, err := strconv.ParseFloat(queryString(r, "lat"), 64)
	if err != nil {
		return 0, 0, errLatLng
	}
	lng, err := strconv.ParseFloat(queryString(r, "lng"), 64)
	if err != nil {
		return 0, 0, errLatLng
	}
	return lat, lng, nil
}

var errLatLng = errors.New("query parameters lat and lng must be numbers")
