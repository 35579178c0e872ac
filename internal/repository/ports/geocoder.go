package ports

import (
	"context"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
)

// Geocoder is the external city lookup collaborator.
type Geocoder interface {
	LookupCity(ctx context.Context, locationID string) (*domain.GeoLocation, error)
	SearchCities(ctx context.Context, term string, limit int) ([]domain.CitySuggestion, error)
}

// CityCache memoizes city search results keyed by the normalized search term.
type CityCache interface {
	Get(ctx context.Context, term string) ([]domain.CitySuggestion, bool, error)
	Set(ctx context.Context, term string, cities []domain.CitySuggestion) error
}
