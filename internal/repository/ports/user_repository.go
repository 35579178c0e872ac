package ports

import (
	"context"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
)

type UserRepository interface {
	UpsertByEmail(ctx context.Context, email string, fullName *string, imageURL *string) (*domain.User, error)
}
