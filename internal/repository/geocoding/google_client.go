package geocoding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

// GoogleClient resolves Google place ids through Place Details and serves
// suggestions from Place Autocomplete restricted to cities.
type GoogleClient struct {
	client *maps.Client
}

func NewGoogleClient(apiKey string, timeout time.Duration) (*GoogleClient, error) {
	return newGoogleClient(timeout, maps.WithAPIKey(apiKey))
}

func newGoogleClient(timeout time.Duration, opts ...maps.ClientOption) (*GoogleClient, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts = append(opts, maps.WithHTTPClient(&http.Client{Timeout: timeout}))
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}
	return &GoogleClient{client: client}, nil
}

func (g *GoogleClient) LookupCity(ctx context.Context, locationID string) (*domain.GeoLocation, error) {
	id := strings.TrimSpace(locationID)
	if id == "" {
		return nil, fmt.Errorf("%w: empty place id", ErrIncompleteLocation)
	}

	resp, err := g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: id,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskAddressComponent,
			maps.PlaceDetailsFieldMaskName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("place details failed: %w", err)
	}

	location := locationFromComponents(id, resp.Name, resp.AddressComponents)
	if location.City == "" || location.Country == "" {
		return nil, fmt.Errorf("%w: place id %s", ErrIncompleteLocation, id)
	}
	return &location, nil
}

func (g *GoogleClient) SearchCities(ctx context.Context, term string, limit int) ([]domain.CitySuggestion, error) {
	resp, err := g.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input: term,
		Types: maps.AutocompletePlaceTypeCities,
	})
	if err != nil {
		return nil, fmt.Errorf("place autocomplete failed: %w", err)
	}

	cities := make([]domain.CitySuggestion, 0, len(resp.Predictions))
	for _, prediction := range resp.Predictions {
		if limit > 0 && len(cities) >= limit {
			break
		}
		cities = append(cities, domain.CitySuggestion{
			ID:       prediction.PlaceID,
			FullName: prediction.Description,
		})
	}
	return cities, nil
}

func locationFromComponents(placeID, name string, components []maps.AddressComponent) domain.GeoLocation {
	location := domain.GeoLocation{GeonameID: placeID}
	for _, component := range components {
		for _, kind := range component.Types {
			switch kind {
			case "locality":
				location.City = component.LongName
			case "administrative_area_level_1":
				location.AdminDivision = component.LongName
			case "country":
				location.Country = component.LongName
			}
		}
	}
	if location.City == "" {
		location.City = strings.TrimSpace(name)
	}
	return location
}

var _ ports.Geocoder = (*GoogleClient)(nil)
