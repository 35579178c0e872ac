package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/util"
)

type citySearcher interface {
	SearchCities(ctx context.Context, term string) ([]domain.CitySuggestion, error)
}

// RegisterCities mounts GET /cities?search=term.
func RegisterCities(e *echo.Echo, cities citySearcher) {
	e.GET("/cities", func(c echo.Context) error {
		result, err := cities.SearchCities(c.Request().Context(), c.QueryParam("search"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, util.Data("cities", result))
	})
}
