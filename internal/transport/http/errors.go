package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/service"
	"github.com/njprem/CityScore_APP_BackEnd/internal/util"
)

const internalErrorMessage = "internal server error"

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrLocationAmbiguous):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrReviewNotFound), errors.Is(err, service.ErrPlaceNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single place where service errors become HTTP responses.
// It never writes twice.
func writeError(c echo.Context, err error) error {
	if c.Response().Committed {
		requestLogger(c).Warn("error after response was committed", zap.Error(err))
		return nil
	}

	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusUnauthorized:
		message = service.ErrNotAuthenticated.Error()
	case http.StatusForbidden:
		message = service.ErrForbidden.Error()
	case http.StatusInternalServerError:
		requestLogger(c).Error("request failed", zap.Error(err))
		message = internalErrorMessage
	}
	return c.JSON(status, util.Error(message))
}

// newHTTPErrorHandler renders framework errors (unknown route, 405, body
// limit) with the same { message } envelope as handler errors.
func newHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			_ = writeError(c, err)
			return
		}
		if he.Internal != nil {
			requestLogger(c).Debug("http error", zap.Int("status", he.Code), zap.Error(he.Internal))
		}
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
		if he.Code >= http.StatusInternalServerError {
			requestLogger(c).Error("request failed", zap.Error(err))
			message = internalErrorMessage
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.JSON(he.Code, util.Error(message))
	}
}

// methodNotAllowed answers 405 for a static path that only serves the given
// methods.
func methodNotAllowed(methods ...string) echo.HandlerFunc {
	allow := strings.Join(append([]string{http.MethodOptions}, methods...), ", ")
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderAllow, allow)
		return echo.ErrMethodNotAllowed
	}
}

// parsePage reads offset and limit. Absent values take the defaults; limit
// is clamped to the maximum page size.
func parsePage(c echo.Context) (domain.Page, error) {
	page := domain.Page{Limit: domain.DefaultPageLimit}

	if raw := strings.TrimSpace(c.QueryParam("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return domain.Page{}, fmt.Errorf("%w: offset must be a non-negative integer", service.ErrValidation)
		}
		page.Offset = offset
	}
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return domain.Page{}, fmt.Errorf("%w: limit must be a positive integer", service.ErrValidation)
		}
		if limit > domain.MaxPageLimit {
			limit = domain.MaxPageLimit
		}
		page.Limit = limit
	}
	return page, nil
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", service.ErrValidation, name)
	}
	return id, nil
}
