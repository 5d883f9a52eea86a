package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namay10/userhub/internal/domain/user"
	"github.com/namay10/userhub/internal/observability"
)

type RolesRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewRolesRepo(pool *pgxpool.Pool, metrics *observability.Prom) *RolesRepo {
	return &RolesRepo{pool: pool, metrics: metrics}
}

func (r *RolesRepo) GetByName(ctx context.Context, name string) (user.Role, error) {
	var role user.Role

	err := r.metrics.ObserveDB("roles.get_by_name", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, created_at FROM roles WHERE name = $1`,
			name,
		).Scan(&role.ID, &role.Name, &role.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Role{}, user.ErrRoleNotFound
		}

		return user.Role{}, err
	}

	return role, nil
}

func (r *RolesRepo) List(ctx context.Context) ([]user.Role, error) {
	var roles []user.Role

	err := r.metrics.ObserveDB("roles.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM roles ORDER BY name`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var role user.Role

			if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
				return err
			}

			roles = append(roles, role)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return roles, nil
}
