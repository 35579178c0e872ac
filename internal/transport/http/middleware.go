package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/service"
)

const (
	contextSessionKey  = "auth.session"
	sessionCookieName  = "session_token"
	bearerSchemePrefix = "bearer "
)

// LoadSession attaches the verified session to the context when the request
// carries a valid token. Anonymous and invalid tokens pass through; routes
// that need a caller are guarded by RequireSession.
func LoadSession(sessions *service.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c.Request())
			if token == "" {
				return next(c)
			}
			session, err := sessions.Authenticate(c.Request().Context(), token)
			if err != nil {
				requestLogger(c).Debug("session rejected", zap.Error(err))
				return next(c)
			}
			c.Set(contextSessionKey, session)
			return next(c)
		}
	}
}

func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := service.RequireSession(CurrentSession(c)); err != nil {
				return writeError(c, err)
			}
			return next(c)
		}
	}
}

func CurrentSession(c echo.Context) *domain.Session {
	session, _ := c.Get(contextSessionKey).(*domain.Session)
	return session
}

func sessionToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(header) > len(bearerSchemePrefix) && strings.EqualFold(header[:len(bearerSchemePrefix)], bearerSchemePrefix) {
		return strings.TrimSpace(header[len(bearerSchemePrefix):])
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
