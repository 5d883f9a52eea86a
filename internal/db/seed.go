package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namay10/userhub/internal/config"
	"github.com/namay10/userhub/internal/domain/user"
	"github.com/namay10/userhub/internal/security"
)

// SeedRoles inserts the fixed role set when the registry is empty.
// Safe to run on every startup: the count check skips the common case and
// the UNIQUE constraint on name absorbs racing startups.
func SeedRoles(ctx context.Context, pool *pgxpool.Pool) error {
	var count int

	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles`).Scan(&count)

	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	for _, name := range user.SeededRoles() {
		_, err := pool.Exec(ctx,
			`INSERT INTO roles (id, name, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), name, time.Now().UTC(),
		)

		if err != nil {
			return err
		}
	}

	return nil
}

// EnsureAdminUser creates the bootstrap admin account when configured and
// absent, so a fresh deployment has someone who can reach the directory.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, password_hash, role_id, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, r.id, $6, $6
		FROM roles r
		WHERE r.name = $7`,
		uuid.NewString(), cfg.AdminFirstName, cfg.AdminLastName, email, hash, now, user.RoleAdmin,
	)

	return err
}
