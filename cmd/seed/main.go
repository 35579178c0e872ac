package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/njprem/CityScore_APP_BackEnd/internal/config"
	"github.com/njprem/CityScore_APP_BackEnd/internal/logging"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/postgres"
	"github.com/njprem/CityScore_APP_BackEnd/internal/util"
)

var seedCities = []struct {
	City, Country, Admin string
}{
	{"Paris", "France", "Ile-de-France"}, {"Lyon", "France", "Auvergne-Rhone-Alpes"},
	{"London", "United Kingdom", "England"}, {"Edinburgh", "United Kingdom", "Scotland"},
	{"Berlin", "Germany", "Berlin"}, {"Munich", "Germany", "Bavaria"},
	{"Madrid", "Spain", "Madrid"}, {"Barcelona", "Spain", "Catalonia"},
	{"Lisbon", "Portugal", "Lisbon"}, {"Porto", "Portugal", "Porto"},
	{"Rome", "Italy", "Lazio"}, {"Milan", "Italy", "Lombardy"},
	{"Amsterdam", "Netherlands", "North Holland"}, {"Brussels", "Belgium", "Brussels-Capital"},
	{"Vienna", "Austria", "Vienna"}, {"Prague", "Czechia", "Prague"},
	{"Warsaw", "Poland", "Masovia"}, {"Krakow", "Poland", "Lesser Poland"},
	{"Budapest", "Hungary", "Budapest"}, {"Athens", "Greece", "Attica"},
	{"Istanbul", "Turkey", "Istanbul"}, {"Copenhagen", "Denmark", "Capital Region"},
	{"Stockholm", "Sweden", "Stockholm"}, {"Oslo", "Norway", "Oslo"},
	{"Helsinki", "Finland", "Uusimaa"}, {"Dublin", "Ireland", "Leinster"},
	{"Zurich", "Switzerland", "Zurich"}, {"New York", "United States", "New York"},
	{"San Francisco", "United States", "California"}, {"Chicago", "United States", "Illinois"},
	{"Toronto", "Canada", "Ontario"}, {"Vancouver", "Canada", "British Columbia"},
	{"Mexico City", "Mexico", "Mexico City"}, {"Buenos Aires", "Argentina", "Buenos Aires"},
	{"Sao Paulo", "Brazil", "Sao Paulo"}, {"Lima", "Peru", "Lima"},
	{"Bogota", "Colombia", "Bogota"}, {"Cape Town", "South Africa", "Western Cape"},
	{"Nairobi", "Kenya", "Nairobi"}, {"Cairo", "Egypt", "Cairo"},
	{"Marrakesh", "Morocco", "Marrakesh-Safi"}, {"Dubai", "United Arab Emirates", "Dubai"},
	{"Mumbai", "India", "Maharashtra"}, {"Bangkok", "Thailand", "Bangkok"},
	{"Chiang Mai", "Thailand", "Chiang Mai"}, {"Singapore", "Singapore", ""},
	{"Tokyo", "Japan", "Tokyo"}, {"Seoul", "South Korea", "Seoul"},
	{"Sydney", "Australia", "New South Wales"}, {"Auckland", "New Zealand", "Auckland"},
}

var seedNames = []string{
	"Ada Lovelace", "Alan Turing", "Grace Hopper", "Linus Torvalds", "Margaret Hamilton",
	"Ken Thompson", "Barbara Liskov", "Dennis Ritchie", "Radia Perlman", "Rob Pike",
}

func main() {
	var (
		numUsers        = flag.Int("users", 10, "number of users to create")
		numPlaces       = flag.Int("places", 50, "number of places to create")
		reviewsPerPlace = flag.Int("reviews-per-place", 5, "reviews written for each place")
		seed            = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	cfg := config.Load()
	logger, cleanup, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: "console", Service: "cityscore-seed"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(cfg.DatabaseURL, 4)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("apply schema", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(*seed))
	s := seeder{db: db, rng: rng}

	emails, userIDs, err := s.users(ctx, *numUsers)
	if err != nil {
		logger.Fatal("seed users", zap.Error(err))
	}
	placeIDs, err := s.places(ctx, *numPlaces)
	if err != nil {
		logger.Fatal("seed places", zap.Error(err))
	}
	reviews, err := s.reviews(ctx, userIDs, placeIDs, *reviewsPerPlace)
	if err != nil {
		logger.Fatal("seed reviews", zap.Error(err))
	}
	logger.Info("seed complete",
		zap.Int("users", len(userIDs)),
		zap.Int("places", len(placeIDs)),
		zap.Int64("reviews", reviews),
	)

	if len(emails) > 0 {
		token, exp, err := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL).Generate(emails[0], nil, nil)
		if err != nil {
			logger.Fatal("issue development token", zap.Error(err))
		}
		fmt.Fprintf(os.Stdout, "development token for %s (expires %s):\n%s\n", emails[0], exp.Format(time.RFC3339), token)
	}
}

type seeder struct {
	db  *sqlx.DB
	rng *rand.Rand
}

func (s seeder) users(ctx context.Context, n int) ([]string, []string, error) {
	if n <= 0 {
		return nil, nil, nil
	}
	emails := make([]string, n)
	names := make([]string, n)
	for i := range emails {
		names[i] = seedNames[i%len(seedNames)]
		emails[i] = fmt.Sprintf("seed-user-%02d@cityscore.dev", i+1)
	}

	const q = `
		INSERT INTO user_account (email, full_name)
		SELECT * FROM unnest($1::text[], $2::text[])
		ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name, updated_at = NOW()
		RETURNING id::text, email`
	rows, err := s.db.QueryxContext(ctx, q, pq.Array(emails), pq.Array(names))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var ids, returned []string
	for rows.Next() {
		var id, email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		returned = append(returned, email)
	}
	return returned, ids, rows.Err()
}

func (s seeder) places(ctx context.Context, n int) ([]int64, error) {
	if n > len(seedCities) {
		n = len(seedCities)
	}
	if n <= 0 {
		return nil, nil
	}
	picked := s.rng.Perm(len(seedCities))[:n]
	cities := make([]string, n)
	countries := make([]string, n)
	admins := make([]string, n)
	for i, idx := range picked {
		cities[i] = seedCities[idx].City
		countries[i] = seedCities[idx].Country
		admins[i] = seedCities[idx].Admin
	}

	const q = `
		INSERT INTO place (city, country, admin_division)
		SELECT city, country, NULLIF(admin, '') FROM unnest($1::text[], $2::text[], $3::text[]) AS t(city, country, admin)
		ON CONFLICT (city, country) DO UPDATE SET updated_at = place.updated_at
		RETURNING id`
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, q, pq.Array(cities), pq.Array(countries), pq.Array(admins)); err != nil {
		return nil, err
	}
	return ids, nil
}

// reviews writes perPlace reviews for every place, all by one randomly
// chosen author per place.
func (s seeder) reviews(ctx context.Context, userIDs []string, placeIDs []int64, perPlace int) (int64, error) {
	if len(userIDs) == 0 || len(placeIDs) == 0 || perPlace <= 0 {
		return 0, nil
	}
	total := len(placeIDs) * perPlace
	places := make([]int64, 0, total)
	authors := make([]string, 0, total)
	cost := make([]int64, 0, total)
	safety := make([]int64, 0, total)
	fun := make([]int64, 0, total)
	comments := make([]string, 0, total)

	for _, placeID := range placeIDs {
		author := userIDs[s.rng.Intn(len(userIDs))]
		for i := 0; i < perPlace; i++ {
			places = append(places, placeID)
			authors = append(authors, author)
			cost = append(cost, s.rating())
			safety = append(safety, s.rating())
			fun = append(fun, s.rating())
			comments = append(comments, fmt.Sprintf("Seeded visit #%d", i+1))
		}
	}

	const q = `
		INSERT INTO review (place_id, author_id, cost, safety, fun, comment)
		SELECT * FROM unnest($1::bigint[], $2::uuid[], $3::smallint[], $4::smallint[], $5::smallint[], $6::text[])`
	res, err := s.db.ExecContext(ctx, q,
		pq.Array(places), pq.Array(authors), pq.Array(cost), pq.Array(safety), pq.Array(fun), pq.Array(comments))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s seeder) rating() int64 {
	return int64(s.rng.Intn(10) + 1)
}
