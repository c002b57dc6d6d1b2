package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"github.com/compete-app/compete-backend/geocoding"
	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/repositories"
)

// earthRadiusMiles is the statute-mile Earth radius used for Haversine.
const earthRadiusMiles = 3959.0

const metersPerMile = 1609.34

// Geocoder is the slice of the geocoding client the resolver needs.
type Geocoder interface {
	GeocodeAddress(ctx context.Context, text string, opts geocoding.GeocodeOptions) (*geocoding.Address, error)
}

// LocationResolver resolves the origin point of a radius search. ZIP-derived
// origins are cached in memory for the process lifetime (the cache is owned
// by the resolver instance, not package state, so tests can construct and
// reset it freely) and persisted into the zip_codes table on geocode.
type LocationResolver struct {
	zipRepo   repositories.ZipCodeRepository
	venueRepo repositories.VenueRepository
	geocoder  Geocoder
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]models.LocationOrigin
}

func NewLocationResolver(
	zipRepo repositories.ZipCodeRepository,
	venueRepo repositories.VenueRepository,
	geocoder Geocoder,
	logger *slog.Logger,
) *LocationResolver {
	return &LocationResolver{
		zipRepo:   zipRepo,
		venueRepo: venueRepo,
		geocoder:  geocoder,
		logger:    logger,
		cache:     make(map[string]models.LocationOrigin),
	}
}

// ResolveOrigin resolves the search origin from the filter object, in fixed
// precedence: ZIP code, explicit lat/lng strings, user coordinates, device
// coordinates. A nil origin means radius filtering cannot proceed.
func (r *LocationResolver) ResolveOrigin(ctx context.Context, f TournamentFilters) *models.LocationOrigin {
	if f.ZipCode != "" {
		return r.ResolveZipOrigin(ctx, f.ZipCode)
	}

	if f.Lat != "" && f.Lng != "" {
		lat, latErr := strconv.ParseFloat(f.Lat, 64)
		lng, lngErr := strconv.ParseFloat(f.Lng, 64)
		if latErr == nil && lngErr == nil && isFinite(lat) && isFinite(lng) {
			return &models.LocationOrigin{
				Latitude:  lat,
				Longitude: lng,
				Source:    models.OriginSourceUserCoords,
			}
		}
	}

	if f.UserCoordinates != nil {
		return &models.LocationOrigin{
			Latitude:  f.UserCoordinates.Latitude,
			Longitude: f.UserCoordinates.Longitude,
			Source:    models.OriginSourceUserCoords,
		}
	}

	if f.DeviceCoordinates != nil {
		return &models.LocationOrigin{
			Latitude:  f.DeviceCoordinates.Latitude,
			Longitude: f.DeviceCoordinates.Longitude,
			Source:    models.OriginSourceDeviceCoords,
		}
	}

	return nil
}

// ResolveZipOrigin resolves a ZIP to coordinates through a tiered chain:
// in-memory cache, zip_codes table, any venue in that ZIP with coordinates,
// then the geocoding API (whose result is written back to zip_codes,
// best-effort). Every tier failure falls through; a nil result means the
// ZIP could not be resolved at all.
func (r *LocationResolver) ResolveZipOrigin(ctx context.Context, zip string) *models.LocationOrigin {
	r.mu.Lock()
	if origin, ok := r.cache[zip]; ok {
		r.mu.Unlock()
		origin.Cached = true
		return &origin
	}
	r.mu.Unlock()

	if z, err := r.zipRepo.GetByZip(ctx, zip); err == nil {
		origin := models.LocationOrigin{
			Latitude:  z.Latitude,
			Longitude: z.Longitude,
			Source:    models.OriginSourceZipTable,
		}
		r.storeCache(zip, origin)
		return &origin
	} else if !errors.Is(err, repositories.ErrZipCodeNotFound) {
		r.logger.Warn("zip table lookup failed", slog.String("zip", zip), slog.Any("error", err))
	}

	if v, err := r.venueRepo.FindByZipWithCoordinates(ctx, zip); err == nil && v.Latitude != nil && v.Longitude != nil {
		origin := models.LocationOrigin{
			Latitude:  *v.Latitude,
			Longitude: *v.Longitude,
			Source:    models.OriginSourceVenue,
		}
		r.storeCache(zip, origin)
		return &origin
	}

	if r.geocoder != nil {
		addr, err := r.geocoder.GeocodeAddress(ctx, zip, geocoding.GeocodeOptions{Limit: 1, CountryCode: "us"})
		if err != nil {
			r.logger.Warn("zip geocoding failed", slog.String("zip", zip), slog.Any("error", err))
			return nil
		}
		if addr != nil {
			origin := models.LocationOrigin{
				Latitude:  addr.Latitude,
				Longitude: addr.Longitude,
				Source:    models.OriginSourceGeocoded,
			}
			r.storeCache(zip, origin)

			z := &models.ZipCode{Zip: zip, Latitude: addr.Latitude, Longitude: addr.Longitude}
			if addr.City != "" {
				z.City = &addr.City
			}
			if addr.State != "" {
				z.State = &addr.State
			}
			if upsertErr := r.zipRepo.Upsert(ctx, z); upsertErr != nil {
				// Persisting the geocode is an optimization, not a requirement.
				r.logger.Warn("zip code upsert failed", slog.String("zip", zip), slog.Any("error", upsertErr))
			}
			return &origin
		}
	}

	return nil
}

func (r *LocationResolver) storeCache(zip string, origin models.LocationOrigin) {
	r.mu.Lock()
	r.cache[zip] = origin
	r.mu.Unlock()
}

// ClearCache drops every cached ZIP origin.
func (r *LocationResolver) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]models.LocationOrigin)
	r.mu.Unlock()
}

// CacheStats reports the cache size and the cached ZIPs.
func (r *LocationResolver) CacheStats() (int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	zips := make([]string, 0, len(r.cache))
	for zip := range r.cache {
		zips = append(zips, zip)
	}
	return len(r.cache), zips
}

// Haversine returns the great-circle distance between two points in statute
// miles.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DWithinMeters converts a radius in miles to the meters value used when
// building a dwithin geometry predicate, rounded to one decimal. A radius of
// exactly zero becomes a tiny epsilon instead of a degenerate zero-radius
// geometry.
func DWithinMeters(radiusMiles float64) float64 {
	if radiusMiles == 0 {
		return 0.001
	}
	return math.Round(radiusMiles*metersPerMile*10) / 10
}

// FilterByRadius keeps tournaments within radiusMiles of origin and stamps
// each survivor's distance. Tournaments without parseable coordinates are
// excluded: a row that cannot be distance-checked cannot be asserted to be
// in range.
func (r *LocationResolver) FilterByRadius(tournaments []models.Tournament, origin models.LocationOrigin, radiusMiles float64) []models.Tournament {
	out := make([]models.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		lat, lng, ok := tournamentCoordinates(&t)
		if !ok {
			continue
		}
		d := Haversine(origin.Latitude, origin.Longitude, lat, lng)
		if d <= radiusMiles {
			dist := math.Round(d*10) / 10
			t.DistanceMiles = &dist
			out = append(out, t)
		}
	}
	return out
}

// tournamentCoordinates extracts a usable coordinate pair with a tiered
// fallback: venue numeric columns, venue legacy string columns, then the
// tournament-level columns (numeric, then legacy strings).
func tournamentCoordinates(t *models.Tournament) (float64, float64, bool) {
	if v := t.Venue; v != nil {
		if v.Latitude != nil && v.Longitude != nil {
			return *v.Latitude, *v.Longitude, true
		}
		if lat, lng, ok := parseCoordinateStrings(v.VenueLat, v.VenueLng); ok {
			return lat, lng, true
		}
	}
	if t.Latitude != nil && t.Longitude != nil {
		return *t.Latitude, *t.Longitude, true
	}
	return parseCoordinateStrings(t.VenueLat, t.VenueLng)
}

func parseCoordinateStrings(latStr, lngStr *string) (float64, float64, bool) {
	if latStr == nil || lngStr == nil {
		return 0, 0, false
	}
	lat, latErr := strconv.ParseFloat(*latStr, 64)
	lng, lngErr := strconv.ParseFloat(*lngStr, 64)
	if latErr != nil || lngErr != nil || !isFinite(lat) || !isFinite(lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
