package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/service"
	"github.com/njprem/CityScore_APP_BackEnd/internal/util"
)

type reviewService interface {
	CreateReview(ctx context.Context, session *domain.Session, input domain.ReviewCreateInput) (*domain.Review, error)
	GetReview(ctx context.Context, id int64) (*domain.Review, error)
	ListPlaceReviews(ctx context.Context, placeID *int64, page domain.Page) ([]domain.Review, error)
	ListMyReviews(ctx context.Context, session *domain.Session, page domain.Page) ([]domain.Review, error)
	UpdateReview(ctx context.Context, session *domain.Session, id int64, input domain.ReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, session *domain.Session, id int64) (*domain.Review, error)
}

type ReviewHandler struct {
	reviews reviewService
}

type ReviewAuthorResponse struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

type ReviewResponse struct {
	domain.Review
	Author ReviewAuthorResponse `json:"author"`
}

// locationID accepts both "2988507" and 2988507.
type locationID string

func (l *locationID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*l = locationID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("locationId must be a string or a number")
	}
	*l = locationID(n.String())
	return nil
}

type reviewRequest struct {
	LocationID locationID   `json:"locationId"`
	Comment    *string      `json:"comment"`
	Cost       *json.Number `json:"cost"`
	Safety     *json.Number `json:"safety"`
	Fun        *json.Number `json:"fun"`
}

func (r reviewRequest) toInput() (domain.ReviewInput, error) {
	var input domain.ReviewInput
	var err error
	if input.Cost, err = parseRating("cost", r.Cost); err != nil {
		return input, err
	}
	if input.Safety, err = parseRating("safety", r.Safety); err != nil {
		return input, err
	}
	if input.Fun, err = parseRating("fun", r.Fun); err != nil {
		return input, err
	}
	if r.Comment != nil {
		input.Comment = *r.Comment
	}
	return input, nil
}

// parseRating rejects non-integers; range and presence are checked by the
// service.
func parseRating(name string, raw *json.Number) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(raw.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer between %d and %d", service.ErrValidation, name, domain.MinRating, domain.MaxRating)
	}
	return &v, nil
}

func RegisterReviews(e *echo.Echo, reviews reviewService) {
	h := &ReviewHandler{reviews: reviews}

	e.GET("/reviews", h.listReviews)
	e.POST("/reviews", h.createReview, RequireSession())
	e.GET("/reviews/user", h.listMyReviews, RequireSession())
	// Without this the router falls back to /reviews/:id with id "user".
	e.Match([]string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		"/reviews/user", methodNotAllowed(http.MethodGet))
	e.GET("/reviews/:id", h.getReview)
	e.PUT("/reviews/:id", h.updateReview, RequireSession())
	e.DELETE("/reviews/:id", h.deleteReview, RequireSession())
}

// listReviews handles GET /reviews?placeId=&offset=&limit=
func (h *ReviewHandler) listReviews(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	var placeID *int64
	if raw := strings.TrimSpace(c.QueryParam("placeId")); raw != "" {
		id, err := parseID(raw, "placeId")
		if err != nil {
			return writeError(c, err)
		}
		placeID = &id
	}
	reviews, err := h.reviews.ListPlaceReviews(c.Request().Context(), placeID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("reviews", toReviewResponses(reviews)))
}

// createReview handles POST /reviews
func (h *ReviewHandler) createReview(c echo.Context) error {
	req, err := bindReviewRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	input, err := req.toInput()
	if err != nil {
		return writeError(c, err)
	}
	review, err := h.reviews.CreateReview(c.Request().Context(), CurrentSession(c), domain.ReviewCreateInput{
		LocationID:  string(req.LocationID),
		ReviewInput: input,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("review", toReviewResponse(*review)))
}

// listMyReviews handles GET /reviews/user
func (h *ReviewHandler) listMyReviews(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return writeError(c, err)
	}
	reviews, err := h.reviews.ListMyReviews(c.Request().Context(), CurrentSession(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("reviews", toReviewResponses(reviews)))
}

// getReview handles GET /reviews/{id}
func (h *ReviewHandler) getReview(c echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return writeError(c, err)
	}
	review, err := h.reviews.GetReview(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("review", toReviewResponse(*review)))
}

// updateReview handles PUT /reviews/{id}
func (h *ReviewHandler) updateReview(c echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return writeError(c, err)
	}
	req, err := bindReviewRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	input, err := req.toInput()
	if err != nil {
		return writeError(c, err)
	}
	review, err := h.reviews.UpdateReview(c.Request().Context(), CurrentSession(c), id, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("review", toReviewResponse(*review)))
}

// deleteReview handles DELETE /reviews/{id}
func (h *ReviewHandler) deleteReview(c echo.Context) error {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		return writeError(c, err)
	}
	review, err := h.reviews.DeleteReview(c.Request().Context(), CurrentSession(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("review", toReviewResponse(*review)))
}

func bindReviewRequest(c echo.Context) (reviewRequest, error) {
	var req reviewRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: invalid request body", service.ErrValidation)
	}
	return req, nil
}

func toReviewResponse(review domain.Review) ReviewResponse {
	return ReviewResponse{
		Review: review,
		Author: ReviewAuthorResponse{
			Name:  review.AuthorName,
			Image: review.AuthorImage,
		},
	}
}

func toReviewResponses(reviews []domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, toReviewResponse(review))
	}
	return out
}
