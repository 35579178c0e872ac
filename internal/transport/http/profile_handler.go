package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/util"
)

type profileService interface {
	GetProfile(ctx context.Context, session *domain.Session) (*domain.Profile, error)
}

func RegisterProfile(e *echo.Echo, profiles profileService) {
	e.GET("/profile", func(c echo.Context) error {
		profile, err := profiles.GetProfile(c.Request().Context(), CurrentSession(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, util.Data("profile", profile))
	}, RequireSession())
}
