package service

import (
	"context"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

type ProfileService struct {
	users  ports.UserRepository
	places ports.PlaceRepository
}

func NewProfileService(users ports.UserRepository, places ports.PlaceRepository) *ProfileService {
	return &ProfileService{users: users, places: places}
}

// GetProfile returns the caller's profile. The account row is created or
// refreshed from the session first, as on sign-in.
func (s *ProfileService) GetProfile(ctx context.Context, session *domain.Session) (*domain.Profile, error) {
	current, err := RequireSession(session)
	if err != nil {
		return nil, err
	}
	user, err := s.users.UpsertByEmail(ctx, current.Email, current.Name, current.Image)
	if err != nil {
		return nil, storageError("upsert user", err)
	}
	visited, err := s.places.ListVisitedByAuthor(ctx, current.Email)
	if err != nil {
		return nil, storageError("list visited places", err)
	}
	if visited == nil {
		visited = []domain.VisitedPlace{}
	}
	return &domain.Profile{
		Name:          user.FullName,
		Image:         user.ImageURL,
		Bio:           user.Bio,
		VisitedPlaces: visited,
	}, nil
}
