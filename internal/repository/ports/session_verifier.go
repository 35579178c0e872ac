package ports

import (
	"context"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
)

type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Session, error)
}
