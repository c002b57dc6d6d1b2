package services

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/compete-app/compete-backend/geocoding"
	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeZipRepo struct {
	zips    map[string]models.ZipCode
	getErr  error
	upserts []models.ZipCode
}

func (f *fakeZipRepo) GetByZip(_ context.Context, zip string) (*models.ZipCode, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if z, ok := f.zips[zip]; ok {
		return &z, nil
	}
	return nil, repositories.ErrZipCodeNotFound
}

func (f *fakeZipRepo) Upsert(_ context.Context, z *models.ZipCode) error {
	f.upserts = append(f.upserts, *z)
	return nil
}

type fakeVenueRepo struct {
	byZip map[string]models.Venue
}

func (f *fakeVenueRepo) Create(context.Context, *models.Venue) error { return nil }
func (f *fakeVenueRepo) GetByID(context.Context, string) (*models.Venue, error) {
	return nil, repositories.ErrVenueNotFound
}
func (f *fakeVenueRepo) List(context.Context, int, int) ([]models.Venue, error) {
	return nil, nil
}
func (f *fakeVenueRepo) Update(context.Context, *models.Venue) error { return nil }
func (f *fakeVenueRepo) Delete(context.Context, string) error        { return nil }
func (f *fakeVenueRepo) FindByZipWithCoordinates(_ context.Context, zip string) (*models.Venue, error) {
	if v, ok := f.byZip[zip]; ok {
		return &v, nil
	}
	return nil, repositories.ErrVenueNotFound
}
func (f *fakeVenueRepo) WithinRadius(context.Context, float64, float64, float64) ([]models.Venue, error) {
	return nil, nil
}

type fakeGeocoder struct {
	addr  *geocoding.Address
	err   error
	calls int
}

func (f *fakeGeocoder) GeocodeAddress(context.Context, string, geocoding.GeocodeOptions) (*geocoding.Address, error) {
	f.calls++
	return f.addr, f.err
}

func newTestResolver(zipRepo repositories.ZipCodeRepository, venueRepo repositories.VenueRepository, geocoder Geocoder) *LocationResolver {
	return NewLocationResolver(zipRepo, venueRepo, geocoder, testLogger())
}

func TestResolveZipOriginPrefersZipTable(t *testing.T) {
	zipRepo := &fakeZipRepo{zips: map[string]models.ZipCode{
		"85051": {Zip: "85051", Latitude: 33.5587, Longitude: -112.1120},
	}}
	geocoder := &fakeGeocoder{}
	r := newTestResolver(zipRepo, &fakeVenueRepo{}, geocoder)

	origin := r.ResolveZipOrigin(context.Background(), "85051")
	if origin == nil {
		t.Fatal("expected an origin")
	}
	if origin.Source != models.OriginSourceZipTable {
		t.Fatalf("source = %q, want %q", origin.Source, models.OriginSourceZipTable)
	}
	if origin.Cached {
		t.Fatal("first resolution must not be marked cached")
	}
	if geocoder.calls != 0 {
		t.Fatalf("geocoder called %d times, want 0", geocoder.calls)
	}

	// Second resolution comes from the in-memory cache.
	again := r.ResolveZipOrigin(context.Background(), "85051")
	if again == nil || !again.Cached {
		t.Fatal("second resolution should hit the cache")
	}
	if again.Latitude != origin.Latitude || again.Longitude != origin.Longitude {
		t.Fatal("cached origin coordinates changed")
	}
}

func TestResolveZipOriginVenueTier(t *testing.T) {
	lat, lng := 33.45, -112.07
	venueRepo := &fakeVenueRepo{byZip: map[string]models.Venue{
		"85004": {ID: "v1", Name: "Rack Room", Latitude: &lat, Longitude: &lng},
	}}
	r := newTestResolver(&fakeZipRepo{}, venueRepo, &fakeGeocoder{})

	origin := r.ResolveZipOrigin(context.Background(), "85004")
	if origin == nil {
		t.Fatal("expected an origin from the venue tier")
	}
	if origin.Source != models.OriginSourceVenue {
		t.Fatalf("source = %q, want %q", origin.Source, models.OriginSourceVenue)
	}
	if origin.Latitude != lat || origin.Longitude != lng {
		t.Fatalf("origin = %v,%v, want %v,%v", origin.Latitude, origin.Longitude, lat, lng)
	}
}

func TestResolveZipOriginGeocodesAndPersists(t *testing.T) {
	zipRepo := &fakeZipRepo{}
	geocoder := &fakeGeocoder{addr: &geocoding.Address{
		Latitude: 40.7128, Longitude: -74.0060, City: "New York", State: "NY",
	}}
	r := newTestResolver(zipRepo, &fakeVenueRepo{}, geocoder)

	origin := r.ResolveZipOrigin(context.Background(), "10001")
	if origin == nil {
		t.Fatal("expected a geocoded origin")
	}
	if origin.Source != models.OriginSourceGeocoded {
		t.Fatalf("source = %q, want %q", origin.Source, models.OriginSourceGeocoded)
	}
	if len(zipRepo.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(zipRepo.upserts))
	}
	if zipRepo.upserts[0].Zip != "10001" {
		t.Fatalf("persisted zip = %q", zipRepo.upserts[0].Zip)
	}
}

func TestResolveZipOriginUnresolvable(t *testing.T) {
	r := newTestResolver(&fakeZipRepo{}, &fakeVenueRepo{}, &fakeGeocoder{})
	if origin := r.ResolveZipOrigin(context.Background(), "00000"); origin != nil {
		t.Fatalf("expected nil origin, got %+v", origin)
	}
}

func TestResolveOriginPrecedence(t *testing.T) {
	zipRepo := &fakeZipRepo{zips: map[string]models.ZipCode{
		"85051": {Zip: "85051", Latitude: 33.5587, Longitude: -112.1120},
	}}
	r := newTestResolver(zipRepo, &fakeVenueRepo{}, &fakeGeocoder{})

	// ZIP beats explicit coordinates and device coordinates.
	f := TournamentFilters{
		ZipCode:           "85051",
		Lat:               "10.0",
		Lng:               "20.0",
		DeviceCoordinates: &models.Coordinates{Latitude: 1, Longitude: 2},
	}
	origin := r.ResolveOrigin(context.Background(), f)
	if origin == nil || origin.Source != models.OriginSourceZipTable {
		t.Fatalf("origin = %+v, want zip table source", origin)
	}

	// Without a ZIP, the lat/lng strings win.
	f.ZipCode = ""
	origin = r.ResolveOrigin(context.Background(), f)
	if origin == nil || origin.Source != models.OriginSourceUserCoords {
		t.Fatalf("origin = %+v, want user coords source", origin)
	}
	if origin.Latitude != 10 || origin.Longitude != 20 {
		t.Fatalf("origin = %v,%v, want 10,20", origin.Latitude, origin.Longitude)
	}

	// Unparseable strings fall through to device coordinates.
	f.Lat = "not-a-number"
	origin = r.ResolveOrigin(context.Background(), f)
	if origin == nil || origin.Source != models.OriginSourceDeviceCoords {
		t.Fatalf("origin = %+v, want device coords source", origin)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Phoenix to Tucson is roughly 108 miles.
	d := Haversine(33.4484, -112.0740, 32.2226, -110.9747)
	if d < 100 || d > 120 {
		t.Fatalf("Haversine = %.1f miles, want roughly 108", d)
	}

	if d := Haversine(33.45, -112.07, 33.45, -112.07); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestDWithinMeters(t *testing.T) {
	if got := DWithinMeters(0); got != 0.001 {
		t.Fatalf("DWithinMeters(0) = %v, want 0.001", got)
	}
	if got := DWithinMeters(25); got != 40233.5 {
		t.Fatalf("DWithinMeters(25) = %v, want 40233.5", got)
	}
	if got := DWithinMeters(1); got != 1609.3 {
		t.Fatalf("DWithinMeters(1) = %v, want 1609.3", got)
	}
}

func TestFilterByRadiusExcludesUnparseable(t *testing.T) {
	origin := models.LocationOrigin{Latitude: 33.5587, Longitude: -112.1120}
	near := coordTournament("near", 33.5587, -112.1120)
	far := coordTournament("far", 34.5, -112.1)
	badLat := "garbage"
	badLng := "n/a"
	unparseable := models.Tournament{ID: "bad", VenueLat: &badLat, VenueLng: &badLng}
	noCoords := models.Tournament{ID: "none"}

	r := newTestResolver(&fakeZipRepo{}, &fakeVenueRepo{}, &fakeGeocoder{})
	out := r.FilterByRadius([]models.Tournament{near, far, unparseable, noCoords}, origin, 25)

	if len(out) != 1 || out[0].ID != "near" {
		t.Fatalf("got %d results, want only the near tournament", len(out))
	}
	if out[0].DistanceMiles == nil {
		t.Fatal("distance not stamped on result")
	}
	if math.Round(*out[0].DistanceMiles*10)/10 != *out[0].DistanceMiles {
		t.Fatalf("distance %v not rounded to one decimal", *out[0].DistanceMiles)
	}
}

func TestFilterByRadiusLegacyStringFallback(t *testing.T) {
	origin := models.LocationOrigin{Latitude: 33.5587, Longitude: -112.1120}
	lat, lng := "33.5600", "-112.1100"
	legacy := models.Tournament{ID: "legacy", VenueLat: &lat, VenueLng: &lng}

	r := newTestResolver(&fakeZipRepo{}, &fakeVenueRepo{}, &fakeGeocoder{})
	out := r.FilterByRadius([]models.Tournament{legacy}, origin, 5)
	if len(out) != 1 {
		t.Fatal("legacy string coordinates should be usable")
	}
}

func coordTournament(id string, lat, lng float64) models.Tournament {
	return models.Tournament{ID: id, Latitude: &lat, Longitude: &lng}
}
