package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

const cityKeyPrefix = "cityscore:city-search:"

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// CityCache shares city search results between API instances. A zero ttl
// keeps entries until Redis evicts them.
type CityCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewCityCache(client *goredis.Client, ttl time.Duration) *CityCache {
	if ttl < 0 {
		ttl = 0
	}
	return &CityCache{client: client, ttl: ttl}
}

func (c *CityCache) Get(ctx context.Context, term string) ([]domain.CitySuggestion, bool, error) {
	data, err := c.client.Get(ctx, cityKeyPrefix+term).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cities []domain.CitySuggestion
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, false, err
	}
	return cities, true, nil
}

func (c *CityCache) Set(ctx context.Context, term string, cities []domain.CitySuggestion) error {
	data, err := json.Marshal(cities)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cityKeyPrefix+term, data, c.ttl).Err()
}

var _ ports.CityCache = (*CityCache)(nil)
