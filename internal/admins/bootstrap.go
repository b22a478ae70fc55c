package admins

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/amoura-app/amoura-backend/pkg/config"
	"github.com/amoura-app/amoura-backend/pkg/db"
	"github.com/amoura-app/amoura-backend/pkg/db/models"
	"github.com/amoura-app/amoura-backend/pkg/enums"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
	"github.com/amoura-app/amoura-backend/pkg/logger"
	"github.com/amoura-app/amoura-backend/pkg/security"
)

// EnsureBootstrapAdmin creates the first superadmin account on a fresh
// database. A no-op when bootstrap credentials are not configured or the
// account already exists.
func EnsureBootstrapAdmin(ctx context.Context, repo Repository, cfg *config.Config, logg *logger.Logger) error {
	if repo == nil || cfg == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "bootstrap requires a repository and config")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Bootstrap.AdminEmail))
	if email == "" || cfg.Bootstrap.AdminPassword == "" {
		return nil
	}

	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up bootstrap admin")
	}

	hash, err := security.HashPassword(cfg.Bootstrap.AdminPassword, cfg.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash bootstrap password")
	}

	admin := &models.AdminUser{
		Email:        email,
		PasswordHash: hash,
		Name:         cfg.Bootstrap.AdminName,
		Role:         enums.AdminRoleSuperadmin,
		IsActive:     true,
	}
	if _, err := repo.Create(ctx, admin); err != nil {
		// Another instance may seed the same account between the lookup
		// and the insert. The unique index on email makes the loser a no-op.
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bootstrap admin")
	}

	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{"email": email})
		logg.Info(logCtx, "bootstrap superadmin created")
	}
	return nil
}
