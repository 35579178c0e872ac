package service

import (
	"fmt"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
)

func normalizePage(page domain.Page) (domain.Page, error) {
	if page.Offset < 0 {
		return domain.Page{}, fmt.Errorf("%w: offset must be a non-negative integer", ErrValidation)
	}
	result := page
	if result.Limit <= 0 {
		result.Limit = domain.DefaultPageLimit
	}
	if result.Limit > domain.MaxPageLimit {
		result.Limit = domain.MaxPageLimit
	}
	return result, nil
}
