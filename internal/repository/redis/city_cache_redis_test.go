package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*CityCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := NewClient(context.Background(), Config{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewCityCache(client, ttl), srv
}

func TestCityCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	cities, ok, err := cache.Get(context.Background(), "par")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || cities != nil {
		t.Fatalf("expected miss, got ok=%v cities=%v", ok, cities)
	}
}

func TestCityCacheRoundTrip(t *testing.T) {
	cache, srv := newTestCache(t, time.Minute)
	ctx := context.Background()
	want := []domain.CitySuggestion{
		{ID: "2988507", FullName: "Paris, Île-de-France, France"},
		{ID: "3171457", FullName: "Parma, Emilia-Romagna, Italy"},
	}

	if err := cache.Set(ctx, "par", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !srv.Exists(cityKeyPrefix + "par") {
		t.Fatalf("expected key %q in redis", cityKeyPrefix+"par")
	}

	got, ok, err := cache.Get(ctx, "par")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d cities, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("city %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestCityCacheKeepsEmptyResults(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := cache.Set(ctx, "zzqx", []domain.CitySuggestion{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := cache.Get(ctx, "zzqx")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCityCacheExpires(t *testing.T) {
	cache, srv := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	if err := cache.Set(ctx, "par", []domain.CitySuggestion{{ID: "2988507", FullName: "Paris"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := srv.TTL(cityKeyPrefix + "par"); ttl != 30*time.Second {
		t.Fatalf("expected ttl 30s, got %s", ttl)
	}

	srv.FastForward(31 * time.Second)

	if _, ok, err := cache.Get(ctx, "par"); err != nil || ok {
		t.Fatalf("expected expired entry, got ok=%v err=%v", ok, err)
	}
}

func TestCityCacheZeroTTLKeepsEntries(t *testing.T) {
	cache, srv := newTestCache(t, -time.Second)
	ctx := context.Background()

	if err := cache.Set(ctx, "par", []domain.CitySuggestion{{ID: "2988507", FullName: "Paris"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := srv.TTL(cityKeyPrefix + "par"); ttl != 0 {
		t.Fatalf("expected no ttl, got %s", ttl)
	}
	srv.FastForward(24 * time.Hour)
	if _, ok, err := cache.Get(ctx, "par"); err != nil || !ok {
		t.Fatalf("expected entry to survive, got ok=%v err=%v", ok, err)
	}
}

func TestCityCacheRejectsMalformedEntry(t *testing.T) {
	cache, srv := newTestCache(t, time.Minute)
	if err := srv.Set(cityKeyPrefix+"par", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, ok, err := cache.Get(context.Background(), "par"); err == nil || ok {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}

func TestNewClientUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	client, err := NewClient(context.Background(), Config{Addr: addr})
	if err == nil {
		_ = client.Close()
		t.Fatal("expected ping error for closed server")
	}
}
