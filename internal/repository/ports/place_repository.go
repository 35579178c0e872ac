package ports

import (
	"context"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
)

type PlaceRepository interface {
	ListRanked(ctx context.Context, page domain.Page) ([]domain.RankedPlace, error)
	FindRankedByID(ctx context.Context, id int64) (*domain.RankedPlace, error)
	UpsertByGeonameID(ctx context.Context, location domain.GeoLocation) (*domain.Place, error)
	UpsertByCityCountry(ctx context.Context, input domain.PlaceInput) (*domain.Place, error)
	UpdatePhotoURL(ctx context.Context, id int64, photoURL string) (*domain.Place, error)
	ListVisitedByAuthor(ctx context.Context, email string) ([]domain.VisitedPlace, error)
}
