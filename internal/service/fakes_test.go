package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

// memoryStore backs the place, review and user fakes so joins behave like
// the database.
type memoryStore struct {
	mu           sync.Mutex
	users        map[string]*domain.User
	places       []*domain.Place
	reviews      []*domain.Review
	nextPlaceID  int64
	nextReviewID int64
	clock        time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users: make(map[string]*domain.User),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) placeByID(id int64) *domain.Place {
	for _, p := range s.places {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *memoryStore) placeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.places)
}

func (s *memoryStore) reviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

func (s *memoryStore) insertPlace(city, country string, geonameID, adminDivision *string) *domain.Place {
	s.nextPlaceID++
	now := s.tick()
	p := &domain.Place{
		ID:            s.nextPlaceID,
		GeonameID:     geonameID,
		City:          city,
		Country:       country,
		AdminDivision: adminDivision,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.places = append(s.places, p)
	return p
}

func (s *memoryStore) withAuthor(r *domain.Review) domain.Review {
	out := *r
	for _, u := range s.users {
		if u.ID == r.AuthorID {
			out.AuthorEmail = u.Email
			out.AuthorName = u.FullName
			out.AuthorImage = u.ImageURL
		}
	}
	return out
}

type memoryPlaceRepository struct {
	store    *memoryStore
	lastPage domain.Page
	err      error
}

func newMemoryPlaceRepository(store *memoryStore) *memoryPlaceRepository {
	return &memoryPlaceRepository{store: store}
}

func (r *memoryPlaceRepository) rollups() map[int64]*domain.PlaceRollup {
	rollups := make(map[int64]*domain.PlaceRollup)
	for _, rv := range r.store.reviews {
		agg, ok := rollups[rv.PlaceID]
		if !ok {
			agg = &domain.PlaceRollup{}
			rollups[rv.PlaceID] = agg
		}
		agg.ReviewCount++
		agg.SumCost += int64(rv.Cost)
		agg.SumSafety += int64(rv.Safety)
		agg.SumFun += int64(rv.Fun)
	}
	return rollups
}

func (r *memoryPlaceRepository) ListRanked(_ context.Context, page domain.Page) ([]domain.RankedPlace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.lastPage = page
	if r.err != nil {
		return nil, r.err
	}

	rollups := r.rollups()
	ranked := make([]domain.RankedPlace, 0, len(rollups))
	for _, p := range r.store.places {
		agg, ok := rollups[p.ID]
		if !ok {
			continue
		}
		ranked = append(ranked, domain.RankedPlace{Place: *p, PlaceStatistics: agg.Statistics()})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	if page.Offset >= len(ranked) {
		return []domain.RankedPlace{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return append([]domain.RankedPlace(nil), ranked[page.Offset:end]...), nil
}

func (r *memoryPlaceRepository) FindRankedByID(_ context.Context, id int64) (*domain.RankedPlace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p := r.store.placeByID(id)
	if p == nil {
		return nil, sql.ErrNoRows
	}
	ranked := domain.RankedPlace{Place: *p}
	if agg, ok := r.rollups()[id]; ok {
		ranked.PlaceStatistics = agg.Statistics()
	}
	return &ranked, nil
}

func (r *memoryPlaceRepository) UpsertByGeonameID(_ context.Context, location domain.GeoLocation) (*domain.Place, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.store.places {
		if p.GeonameID != nil && *p.GeonameID == location.GeonameID {
			out := *p
			return &out, nil
		}
	}
	for _, p := range r.store.places {
		if p.City == location.City && p.Country == location.Country {
			if p.GeonameID == nil {
				id := location.GeonameID
				p.GeonameID = &id
			}
			out := *p
			return &out, nil
		}
	}
	id := location.GeonameID
	var admin *string
	if location.AdminDivision != "" {
		a := location.AdminDivision
		admin = &a
	}
	out := *r.store.insertPlace(location.City, location.Country, &id, admin)
	return &out, nil
}

func (r *memoryPlaceRepository) UpsertByCityCountry(_ context.Context, input domain.PlaceInput) (*domain.Place, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.places {
		if p.City == input.City && p.Country == input.Country {
			if p.AdminDivision == nil {
				p.AdminDivision = input.AdminDivision
			}
			if p.PhotoURL == nil {
				p.PhotoURL = input.PhotoURL
			}
			out := *p
			return &out, nil
		}
	}
	p := r.store.insertPlace(input.City, input.Country, nil, input.AdminDivision)
	p.PhotoURL = input.PhotoURL
	out := *p
	return &out, nil
}

func (r *memoryPlaceRepository) UpdatePhotoURL(_ context.Context, id int64, photoURL string) (*domain.Place, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p := r.store.placeByID(id)
	if p == nil {
		return nil, sql.ErrNoRows
	}
	p.PhotoURL = &photoURL
	p.UpdatedAt = r.store.tick()
	out := *p
	return &out, nil
}

func (r *memoryPlaceRepository) ListVisitedByAuthor(_ context.Context, email string) ([]domain.VisitedPlace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[email]
	if !ok {
		return []domain.VisitedPlace{}, nil
	}
	seen := map[int64]bool{}
	visited := []domain.VisitedPlace{}
	for _, rv := range r.store.reviews {
		if rv.AuthorID != user.ID || seen[rv.PlaceID] {
			continue
		}
		seen[rv.PlaceID] = true
		p := r.store.placeByID(rv.PlaceID)
		visited = append(visited, domain.VisitedPlace{ID: p.ID, City: p.City, Country: p.Country, AdminDivision: p.AdminDivision})
	}
	return visited, nil
}

type memoryReviewRepository struct {
	store *memoryStore
}

func newMemoryReviewRepository(store *memoryStore) *memoryReviewRepository {
	return &memoryReviewRepository{store: store}
}

func (r *memoryReviewRepository) Create(_ context.Context, authorEmail string, placeID int64, input domain.ReviewInput) (*domain.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[authorEmail]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if r.store.placeByID(placeID) == nil {
		return nil, errors.New("foreign key violation")
	}
	cost, safety, fun := input.Ratings()
	r.store.nextReviewID++
	now := r.store.tick()
	review := &domain.Review{
		ID:        r.store.nextReviewID,
		PlaceID:   placeID,
		AuthorID:  user.ID,
		Cost:      cost,
		Safety:    safety,
		Fun:       fun,
		Comment:   input.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.store.reviews = append(r.store.reviews, review)
	out := r.store.withAuthor(review)
	return &out, nil
}

func (r *memoryReviewRepository) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rv := range r.store.reviews {
		if rv.ID == id {
			out := r.store.withAuthor(rv)
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryReviewRepository) ListByPlace(_ context.Context, placeID *int64, page domain.Page) ([]domain.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	matched := []domain.Review{}
	for _, rv := range r.store.reviews {
		if placeID != nil && rv.PlaceID != *placeID {
			continue
		}
		matched = append(matched, r.store.withAuthor(rv))
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, page), nil
}

func (r *memoryReviewRepository) ListByAuthor(_ context.Context, email string, page domain.Page) ([]domain.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	matched := []domain.Review{}
	for _, rv := range r.store.reviews {
		out := r.store.withAuthor(rv)
		if out.AuthorEmail != email {
			continue
		}
		p := r.store.placeByID(rv.PlaceID)
		out.Place = &domain.PlaceSummary{ID: p.ID, City: p.City, Country: p.Country, AdminDivision: p.AdminDivision}
		matched = append(matched, out)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, page), nil
}

func (r *memoryReviewRepository) Update(_ context.Context, id int64, input domain.ReviewInput) (*domain.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rv := range r.store.reviews {
		if rv.ID == id {
			rv.Cost, rv.Safety, rv.Fun = input.Ratings()
			rv.Comment = input.Comment
			rv.UpdatedAt = r.store.tick()
			out := r.store.withAuthor(rv)
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryReviewRepository) Delete(_ context.Context, id int64) (*domain.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, rv := range r.store.reviews {
		if rv.ID == id {
			out := r.store.withAuthor(rv)
			r.store.reviews = append(r.store.reviews[:i], r.store.reviews[i+1:]...)
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func paginate(items []domain.Review, page domain.Page) []domain.Review {
	if page.Offset >= len(items) {
		return []domain.Review{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

type memoryUserRepository struct {
	store *memoryStore
}

func newMemoryUserRepository(store *memoryStore) *memoryUserRepository {
	return &memoryUserRepository{store: store}
}

func (r *memoryUserRepository) UpsertByEmail(_ context.Context, email string, fullName *string, imageURL *string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := r.store.tick()
	user, ok := r.store.users[email]
	if !ok {
		user = &domain.User{ID: uuid.New(), Email: email, CreatedAt: now}
		r.store.users[email] = user
	}
	if fullName != nil {
		user.FullName = fullName
	}
	if imageURL != nil {
		user.ImageURL = imageURL
	}
	user.UpdatedAt = now
	out := *user
	return &out, nil
}

type stubGeocoder struct {
	locations map[string]domain.GeoLocation
	cities    []domain.CitySuggestion
	err       error
	block     bool

	lookups  atomic.Int32
	searches atomic.Int32
}

func (g *stubGeocoder) LookupCity(ctx context.Context, locationID string) (*domain.GeoLocation, error) {
	g.lookups.Add(1)
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	loc, ok := g.locations[locationID]
	if !ok {
		return nil, errors.New("unknown location")
	}
	return &loc, nil
}

func (g *stubGeocoder) SearchCities(ctx context.Context, term string, limit int) ([]domain.CitySuggestion, error) {
	g.searches.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	if limit < len(g.cities) {
		return append([]domain.CitySuggestion(nil), g.cities[:limit]...), nil
	}
	return append([]domain.CitySuggestion(nil), g.cities...), nil
}

type recordingStorage struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (s *recordingStorage) Upload(_ context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
		s.types = make(map[string]string)
	}
	s.objects[objectName] = data
	s.types[objectName] = contentType
	return "https://cdn.example.com/places/" + objectName, nil
}

func ptrInt(v int) *int { return &v }

func ptrString(v string) *string { return &v }

func ratings(cost, safety, fun int) domain.ReviewInput {
	return domain.ReviewInput{Cost: ptrInt(cost), Safety: ptrInt(safety), Fun: ptrInt(fun)}
}

var (
	_ ports.PlaceRepository  = (*memoryPlaceRepository)(nil)
	_ ports.ReviewRepository = (*memoryReviewRepository)(nil)
	_ ports.UserRepository   = (*memoryUserRepository)(nil)
	_ ports.Geocoder         = (*stubGeocoder)(nil)
	_ ports.ObjectStorage    = (*recordingStorage)(nil)
)
