package admins

import (
	"context"
	"io"
	"testing"
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

type stubAdminsRepo struct {
	byEmail     map[string]*models.AdminUser
	byID        map[uuid.UUID]*models.AdminUser
	lastLoginAt *time.Time
	touchErr    error
	createErr   error
}

func (r *stubAdminsRepo) WithTx(_ *gorm.DB) Repository { return r }

func (r *stubAdminsRepo) Create(_ context.Context, admin *models.AdminUser) (*models.AdminUser, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.byEmail[admin.Email] = admin
	r.byID[admin.ID] = admin
	return admin, nil
}

func (r *stubAdminsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	admin, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (r *stubAdminsRepo) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	admin, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (r *stubAdminsRepo) TouchLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	r.lastLoginAt = &at
	return nil
}

type stubSessions struct {
	generated map[string]string
	rotateErr error
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	stored, ok := s.generated[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.generated[newID] = token
	return newID, token, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	delete(s.generated, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-secret",
		Issuer:                 "amoura-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 43200,
	}
}

func newAuthFixture(t *testing.T) (Service, *stubAdminsRepo, *stubSessions, *models.AdminUser) {
	t.Helper()

	hash, err := security.HashPassword("correct horse battery", config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
	})
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        "ops@amoura.app",
		PasswordHash: hash,
		Name:         "Ops",
		Role:         enums.AdminRoleAdmin,
		IsActive:     true,
	}

	repo := &stubAdminsRepo{
		byEmail: map[string]*models.AdminUser{admin.Email: admin},
		byID:    map[uuid.UUID]*models.AdminUser{admin.ID: admin},
	}
	sessions := &stubSessions{generated: map[string]string{}}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, sessions, testJWTConfig(), logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, sessions, admin
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, repo, sessions, admin := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), LoginInput{Email: "Ops@Amoura.app ", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := auth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Role != enums.AdminRoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if stored, ok := sessions.generated[claims.ID]; !ok || stored != pair.RefreshToken {
		t.Fatalf("refresh token not stored under jti %s", claims.ID)
	}
	if pair.Admin.Email != admin.Email {
		t.Fatalf("profile email = %s", pair.Admin.Email)
	}
	if repo.lastLoginAt == nil {
		t.Fatalf("last login not touched")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ops@amoura.app", Password: "wrong"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@amoura.app", Password: "whatever"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, _, _, admin := newAuthFixture(t)
	admin.IsActive = false

	_, err := svc.Login(context.Background(), LoginInput{Email: "ops@amoura.app", Password: "correct horse battery"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	svc, repo, _, _ := newAuthFixture(t)
	repo.touchErr = gorm.ErrInvalidDB

	_, err := svc.Login(context.Background(), LoginInput{Email: "ops@amoura.app", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login must not fail on last_login_at update: %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), LoginInput{Email: "ops@amoura.app", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	oldClaims, err := auth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}

	next, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, ok := sessions.generated[oldClaims.ID]; ok {
		t.Fatalf("old session must be revoked on rotation")
	}
	newClaims, err := auth.ParseAccessToken(testJWTConfig(), next.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if newClaims.ID == oldClaims.ID {
		t.Fatalf("expected a new jti on refresh")
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("expected a new refresh token on rotation")
	}
}

func TestRefreshRejectsMismatchedToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), LoginInput{Email: "ops@amoura.app", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: "stolen-token",
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture(t)

	pair, err := svc.Login(context.Background(), LoginInput{Email: "ops@amoura.app", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := auth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := sessions.generated[claims.ID]; ok {
		t.Fatalf("session must be gone after logout")
	}
}

func TestProfileNotFound(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, err := svc.Profile(context.Background(), uuid.New())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
