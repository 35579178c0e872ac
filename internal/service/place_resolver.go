package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

const (
	defaultGeocoderTimeout = 5 * time.Second
	defaultCitySearchLimit = 10
)

type PlaceResolverConfig struct {
	Timeout     time.Duration
	SearchLimit int
}

// PlaceResolver turns external location ids into place rows and serves the
// city search used to pick them.
type PlaceResolver struct {
	geocoder ports.Geocoder
	cache    ports.CityCache
	places   ports.PlaceRepository
	logger   *zap.Logger

	timeout     time.Duration
	searchLimit int
}

func NewPlaceResolver(geocoder ports.Geocoder, cache ports.CityCache, places ports.PlaceRepository, logger *zap.Logger, cfg PlaceResolverConfig) *PlaceResolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGeocoderTimeout
	}
	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = defaultCitySearchLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaceResolver{
		geocoder:    geocoder,
		cache:       cache,
		places:      places,
		logger:      logger,
		timeout:     timeout,
		searchLimit: limit,
	}
}

// Resolve asks the geocoder for the canonical names behind locationID.
func (r *PlaceResolver) Resolve(ctx context.Context, locationID string) (*domain.GeoLocation, error) {
	id := strings.TrimSpace(locationID)
	if id == "" {
		return nil, fmt.Errorf("%w: locationId is required", ErrLocationAmbiguous)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	location, err := r.geocoder.LookupCity(lookupCtx, id)
	if err != nil {
		r.logger.Warn("city lookup failed", zap.String("location_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrLocationAmbiguous, id)
	}
	if location == nil || strings.TrimSpace(location.City) == "" || strings.TrimSpace(location.Country) == "" {
		return nil, fmt.Errorf("%w: %s", ErrLocationAmbiguous, id)
	}

	resolved := domain.GeoLocation{
		GeonameID:     strings.TrimSpace(location.GeonameID),
		City:          strings.TrimSpace(location.City),
		Country:       strings.TrimSpace(location.Country),
		AdminDivision: strings.TrimSpace(location.AdminDivision),
	}
	if resolved.GeonameID == "" {
		resolved.GeonameID = id
	}
	return &resolved, nil
}

// ResolveOrCreate resolves locationID and returns its place row, creating it
// on first use. Known rows are returned unchanged.
func (r *PlaceResolver) ResolveOrCreate(ctx context.Context, locationID string) (*domain.Place, error) {
	location, err := r.Resolve(ctx, locationID)
	if err != nil {
		return nil, err
	}

	place, err := r.places.UpsertByGeonameID(ctx, *location)
	if err != nil && isUniqueViolation(err) {
		// a concurrent request recorded the same location first
		place, err = r.places.UpsertByGeonameID(ctx, *location)
	}
	if err != nil {
		return nil, storageError("upsert place", err)
	}
	return place, nil
}

// SearchCities memoizes suggestions by the lower-cased, trimmed term.
func (r *PlaceResolver) SearchCities(ctx context.Context, term string) ([]domain.CitySuggestion, error) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return []domain.CitySuggestion{}, nil
	}

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("city cache read failed", zap.String("term", key), zap.Error(err))
		} else if ok {
			if cached == nil {
				cached = []domain.CitySuggestion{}
			}
			return cached, nil
		}
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cities, err := r.geocoder.SearchCities(searchCtx, key, r.searchLimit)
	if err != nil {
		r.logger.Warn("city search failed", zap.String("term", key), zap.Error(err))
		return nil, fmt.Errorf("%w: city search failed", ErrLocationAmbiguous)
	}
	if cities == nil {
		cities = []domain.CitySuggestion{}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, cities); err != nil {
			r.logger.Warn("city cache write failed", zap.String("term", key), zap.Error(err))
		}
	}
	return cities, nil
}
