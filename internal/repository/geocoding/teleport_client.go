package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

const DefaultTeleportBaseURL = "https://api.teleport.org/api/cities"

var ErrIncompleteLocation = errors.New("geocoding: incomplete location")

// TeleportClient talks to a geoname-keyed city API (Teleport's public
// /cities resource and compatible mirrors).
type TeleportClient struct {
	baseURL string
	client  *http.Client
}

func NewTeleportClient(baseURL string, timeout time.Duration) *TeleportClient {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultTeleportBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TeleportClient{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

type teleportNamedLink struct {
	Name string `json:"name"`
}

type teleportCity struct {
	GeonameID int64  `json:"geoname_id"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	Links     struct {
		Admin1  *teleportNamedLink `json:"city:admin1_division"`
		Country *teleportNamedLink `json:"city:country"`
	} `json:"_links"`
}

type teleportSearch struct {
	Embedded struct {
		Results []struct {
			Embedded struct {
				City teleportCity `json:"city:item"`
			} `json:"_embedded"`
		} `json:"city:search-results"`
	} `json:"_embedded"`
}

func (c *TeleportClient) LookupCity(ctx context.Context, locationID string) (*domain.GeoLocation, error) {
	id := strings.TrimSpace(locationID)
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: geoname id %q is not numeric", ErrIncompleteLocation, locationID)
	}

	var city teleportCity
	if err := c.getJSON(ctx, c.baseURL+"/geonameid:"+url.PathEscape(id)+"/", &city); err != nil {
		return nil, err
	}

	if strings.TrimSpace(city.Name) == "" || city.Links.Country == nil || strings.TrimSpace(city.Links.Country.Name) == "" {
		return nil, fmt.Errorf("%w: geoname id %s", ErrIncompleteLocation, id)
	}

	location := &domain.GeoLocation{
		GeonameID: id,
		City:      strings.TrimSpace(city.Name),
		Country:   strings.TrimSpace(city.Links.Country.Name),
	}
	if city.Links.Admin1 != nil {
		location.AdminDivision = strings.TrimSpace(city.Links.Admin1.Name)
	}
	return location, nil
}

func (c *TeleportClient) SearchCities(ctx context.Context, term string, limit int) ([]domain.CitySuggestion, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("embed", "city:search-results/city:item")
	params.Set("limit", strconv.Itoa(limit))

	var result teleportSearch
	if err := c.getJSON(ctx, c.baseURL+"/?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	cities := make([]domain.CitySuggestion, 0, len(result.Embedded.Results))
	for _, item := range result.Embedded.Results {
		city := item.Embedded.City
		if city.GeonameID == 0 {
			continue
		}
		cities = append(cities, domain.CitySuggestion{
			ID:       strconv.FormatInt(city.GeonameID, 10),
			FullName: city.FullName,
		})
	}
	return cities, nil
}

func (c *TeleportClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("geocoding: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geocoding: decode response: %w", err)
	}
	return nil
}

var _ ports.Geocoder = (*TeleportClient)(nil)
