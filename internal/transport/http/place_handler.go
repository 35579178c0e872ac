package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/service"
	"github.com/njprem/CityScore_APP_BackEnd/internal/util"
)

type placeService interface {
	ListRanked(ctx context.Context, page domain.Page) ([]domain.RankedPlace, error)
	GetPlace(ctx context.Context, id int64) (*domain.RankedPlace, error)
	CreatePlace(ctx context.Context, session *domain.Session, input domain.PlaceInput) (*domain.Place, error)
	UploadPhoto(ctx context.Context, session *domain.Session, placeID int64, upload service.PhotoUpload) (*domain.Place, error)
}

type PlaceHandler struct {
	places placeService
}

type placeRequest struct {
	City          string  `json:"city"`
	Country       string  `json:"country"`
	AdminDivision *string `json:"adminDivision"`
	PhotoURL      *string `json:"photoUrl"`
}

// RegisterPlaces mounts the place routes. The photo route exists only when
// object storage is configured.
func RegisterPlaces(e *echo.Echo, places placeService, photosEnabled bool) {
	h := &PlaceHandler{places: places}

	e.GET("/places", h.listPlaces)
	e.POST("/places", h.createPlace, RequireSession())
	e.GET("/places/:id", h.getPlace)
	if photosEnabled {
		e.POST("/places/:id/photo", h.uploadPhoto, RequireSession())
	}
}

// listPlaces handles GET /places
func (h *PlaceHandler) listPlaces(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	places, err := h.places.ListRanked(c.Request().Context(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("places", places))
}

// getPlace handles GET /places/{id}
func (h *PlaceHandler) getPlace(c echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return writeError(c, err)
	}
	place, err := h.places.GetPlace(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("place", place))
}

// createPlace handles POST /places
func (h *PlaceHandler) createPlace(c echo.Context) error {
	var req placeRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: invalid request body", service.ErrValidation))
	}
	place, err := h.places.CreatePlace(c.Request().Context(), CurrentSession(c), domain.PlaceInput{
		City:          req.City,
		Country:       req.Country,
		AdminDivision: req.AdminDivision,
		PhotoURL:      req.PhotoURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("place", place))
}

// uploadPhoto handles POST /places/{id}/photo
func (h *PlaceHandler) uploadPhoto(c echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return writeError(c, err)
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return writeError(c, fmt.Errorf("%w: photo file is required", service.ErrValidation))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return writeError(c, fmt.Errorf("%w: unable to read photo", service.ErrValidation))
	}
	defer file.Close()

	place, err := h.places.UploadPhoto(c.Request().Context(), CurrentSession(c), id, service.PhotoUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: strings.TrimSpace(fileHeader.Header.Get(echo.HeaderContentType)),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("place", place))
}
