package ports

import (
	"context"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, authorEmail string, placeID int64, input domain.ReviewInput) (*domain.Review, error)
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	// ListByPlace returns the most recently updated reviews; a nil placeID
	// lists across all places.
	ListByPlace(ctx context.Context, placeID *int64, page domain.Page) ([]domain.Review, error)
	ListByAuthor(ctx context.Context, email string, page domain.Page) ([]domain.Review, error)
	Update(ctx context.Context, id int64, input domain.ReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, id int64) (*domain.Review, error)
}
