package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/CityScore_APP_BackEnd/internal/util"
)

// RequireSession fails closed: a missing session or one without an email is
// treated as anonymous.
func RequireSession(session *domain.Session) (*domain.Session, error) {
	if session == nil || strings.TrimSpace(session.Email) == "" {
		return nil, ErrNotAuthenticated
	}
	return session, nil
}

// RequireOwnership compares emails exactly, without case folding.
func RequireOwnership(session *domain.Session, authorEmail string) error {
	current, err := RequireSession(session)
	if err != nil {
		return err
	}
	if authorEmail == "" || current.Email != authorEmail {
		return ErrForbidden
	}
	return nil
}

type SessionService struct {
	verifiers []ports.SessionVerifier
}

func NewSessionService(verifiers ...ports.SessionVerifier) *SessionService {
	active := make([]ports.SessionVerifier, 0, len(verifiers))
	for _, v := range verifiers {
		if v != nil {
			active = append(active, v)
		}
	}
	return &SessionService{verifiers: active}
}

// Authenticate returns the session of the first verifier that accepts the
// token.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var errs []error
	for _, verifier := range s.verifiers {
		session, err := verifier.Verify(ctx, token)
		if err == nil && session != nil && strings.TrimSpace(session.Email) != "" {
			return session, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, errors.Join(errs...))
	}
	return nil, ErrNotAuthenticated
}

type JWTSessionVerifier struct {
	manager *util.JWTManager
}

func NewJWTSessionVerifier(manager *util.JWTManager) *JWTSessionVerifier {
	return &JWTSessionVerifier{manager: manager}
}

func (v *JWTSessionVerifier) Verify(_ context.Context, token string) (*domain.Session, error) {
	claims, err := v.manager.Parse(token)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Email: claims.Email,
		Name:  normalizeString(claims.Name),
		Image: normalizeString(claims.Picture),
	}, nil
}

type GoogleSessionVerifier struct {
	audience string
}

func NewGoogleSessionVerifier(audience string) *GoogleSessionVerifier {
	return &GoogleSessionVerifier{audience: strings.TrimSpace(audience)}
}

func (v *GoogleSessionVerifier) Verify(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", err)
	}
	email, _ := payload.Claims["email"].(string)
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("google account email is not verified")
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	return &domain.Session{
		Email: email,
		Name:  normalizeString(&name),
		Image: normalizeString(&picture),
	}, nil
}

func normalizeString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

var (
	_ ports.SessionVerifier = (*JWTSessionVerifier)(nil)
	_ ports.SessionVerifier = (*GoogleSessionVerifier)(nil)
)
