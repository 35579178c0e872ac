package service

import (
	"context"
	"fmt"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

type placeResolver interface {
	ResolveOrCreate(ctx context.Context, locationID string) (*domain.Place, error)
}

type ReviewService struct {
	reviews  ports.ReviewRepository
	users    ports.UserRepository
	resolver placeResolver
}

func NewReviewService(reviews ports.ReviewRepository, users ports.UserRepository, resolver placeResolver) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		users:    users,
		resolver: resolver,
	}
}

// CreateReview validates the ratings, materializes the place and only then
// inserts the review, so a failed lookup never leaves a review behind.
func (s *ReviewService) CreateReview(ctx context.Context, session *domain.Session, input domain.ReviewCreateInput) (*domain.Review, error) {
	current, err := RequireSession(session)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input.ReviewInput); err != nil {
		return nil, err
	}

	place, err := s.resolver.ResolveOrCreate(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.UpsertByEmail(ctx, current.Email, current.Name, current.Image); err != nil {
		return nil, storageError("upsert author", err)
	}

	review, err := s.reviews.Create(ctx, current.Email, place.ID, input.ReviewInput)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, storageError("create review", err)
	}
	return review, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	return s.load(ctx, id)
}

// ListPlaceReviews lists the most recently updated reviews. A nil placeID
// lists reviews of every place.
func (s *ReviewService) ListPlaceReviews(ctx context.Context, placeID *int64, page domain.Page) ([]domain.Review, error) {
	normalized, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByPlace(ctx, placeID, normalized)
	if err != nil {
		return nil, storageError("list reviews", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

func (s *ReviewService) ListMyReviews(ctx context.Context, session *domain.Session, page domain.Page) ([]domain.Review, error) {
	current, err := RequireSession(session)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByAuthor(ctx, current.Email, normalized)
	if err != nil {
		return nil, storageError("list author reviews", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

// UpdateReview rewrites all three ratings and the comment of a review owned
// by the caller.
func (s *ReviewService) UpdateReview(ctx context.Context, session *domain.Session, id int64, input domain.ReviewInput) (*domain.Review, error) {
	if _, err := RequireSession(session); err != nil {
		return nil, err
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := RequireOwnership(session, existing.AuthorEmail); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	updated, err := s.reviews.Update(ctx, id, input)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, storageError("update review", err)
	}
	return updated, nil
}

// DeleteReview removes a review owned by the caller and returns the deleted
// row.
func (s *ReviewService) DeleteReview(ctx context.Context, session *domain.Session, id int64) (*domain.Review, error) {
	if _, err := RequireSession(session); err != nil {
		return nil, err
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := RequireOwnership(session, existing.AuthorEmail); err != nil {
		return nil, err
	}

	deleted, err := s.reviews.Delete(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, storageError("delete review", err)
	}
	return deleted, nil
}

func (s *ReviewService) load(ctx context.Context, id int64) (*domain.Review, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrReviewNotFound, id)
	}
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, storageError("get review", err)
	}
	return review, nil
}
