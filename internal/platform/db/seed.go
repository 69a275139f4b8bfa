package db

import (
	"context"
	"log/slog"
	"strings"

	"staffhub/internal/domain/access"
	"staffhub/internal/platform/config"
)

// UserSeeder creates a user unless the email is already taken.
type UserSeeder interface {
	EnsureUser(ctx context.Context, email, password string, role access.Role) (bool, error)
}

// Seed creates the bootstrap super admin when SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD are both set.
func Seed(ctx context.Context, seeder UserSeeder, cfg config.Config) error {
	email := strings.TrimSpace(cfg.SeedAdminEmail)
	if email == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	created, err := seeder.EnsureUser(ctx, email, cfg.SeedAdminPassword, access.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if created {
		slog.Info("seeded super admin", "email", email)
	}
	return nil
}
