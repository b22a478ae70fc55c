package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/pkg/auth"
	"github.com/amoura-app/amoura-backend/pkg/auth/session"
	"github.com/amoura-app/amoura-backend/pkg/config"
	"github.com/amoura-app/amoura-backend/pkg/db/models"
	"github.com/amoura-app/amoura-backend/pkg/enums"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
	"github.com/amoura-app/amoura-backend/pkg/logger"
	"github.com/amoura-app/amoura-backend/pkg/security"
)

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service authenticates operator accounts and manages their sessions.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, input RefreshInput) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
	Profile(ctx context.Context, adminID uuid.UUID) (*Profile, error)
}

type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput pairs the expired (or expiring) access token with the refresh
// token minted alongside it. The jti inside the access token locates the
// stored session.
type RefreshInput struct {
	AccessToken  string
	RefreshToken string
}

// TokenPair is the credential set handed back on login and refresh.
type TokenPair struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	Admin        Profile `json:"admin"`
}

// Profile is the public shape of an operator account. The password hash never
// leaves this package.
type Profile struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        enums.AdminRole `json:"role"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
}

type service struct {
	repo     Repository
	sessions sessionManager
	jwt      config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, sessions sessionManager, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admins repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		sessions: sessions,
		jwt:      jwtCfg,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin account")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	match, err := security.VerifyPassword(input.Password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, invalidCredentials()
	}

	pair, err := s.issue(ctx, admin, session.NewAccessID())
	if err != nil {
		return nil, err
	}

	// Best effort; a stale last_login_at never blocks a valid login.
	if err := s.repo.TouchLastLogin(ctx, admin.ID, s.now()); err != nil {
		s.logg.Warn(s.logg.WithAdminID(ctx, admin.ID.String()), "failed to update last login timestamp")
	}

	return pair, nil
}

func (s *service) Refresh(ctx context.Context, input RefreshInput) (*TokenPair, error) {
	if strings.TrimSpace(input.AccessToken) == "" || strings.TrimSpace(input.RefreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access token and refresh token are required")
	}

	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, input.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "parse access token")
	}

	admin, err := s.repo.FindByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin account")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token rejected")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	accessToken, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		AdminID: admin.ID,
		Role:    admin.Role,
		JTI:     newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		Admin:        toProfile(admin),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Profile(ctx context.Context, adminID uuid.UUID) (*Profile, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin account")
	}
	profile := toProfile(admin)
	return &profile, nil
}

func (s *service) issue(ctx context.Context, admin *models.AdminUser, accessID string) (*TokenPair, error) {
	accessToken, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		AdminID: admin.ID,
		Role:    admin.Role,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Admin:        toProfile(admin),
	}, nil
}

func toProfile(admin *models.AdminUser) Profile {
	return Profile{
		ID:          admin.ID,
		Email:       admin.Email,
		Name:        admin.Name,
		Role:        admin.Role,
		LastLoginAt: admin.LastLoginAt,
	}
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}
