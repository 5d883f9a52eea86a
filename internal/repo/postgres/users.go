package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namay10/userhub/internal/domain/user"
	"github.com/namay10/userhub/internal/observability"
)

const uniqueViolation = "23505"

// selectUser joins the role name onto every read so callers never see a
// raw role id; roles are resolved per read, not embedded at write time.
const selectUser = `
	SELECT u.id, u.first_name, u.last_name, u.email, u.password_hash, r.name, u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id
`

type UsersRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, metrics: metrics}
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateUserParams) (user.User, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	email := user.NormalizeEmail(p.Email)

	var tag pgconn.CommandTag

	err := r.metrics.ObserveDB("users.create", func() error {
		var err error

		// INSERT..SELECT so a missing role shows up as zero rows instead
		// of needing a prior lookup
		tag, err = r.pool.Exec(ctx,
			`INSERT INTO users (id, first_name, last_name, email, password_hash, role_id, created_at, updated_at)
			SELECT $1, $2, $3, $4, $5, r.id, $6, $6
			FROM roles r
			WHERE r.name = $7`,
			id, p.FirstName, p.LastName, email, p.PasswordHash, now, p.Role,
		)

		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	if tag.RowsAffected() == 0 {
		return user.User{}, user.ErrRoleNotFound
	}

	return user.User{
		ID:           id,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        email,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", selectUser+`WHERE u.email = $1`, user.NormalizeEmail(email))
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", selectUser+`WHERE u.id = $1`, id)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var u user.User

	err := r.metrics.ObserveDB(op, func() error {
		return r.pool.QueryRow(ctx, query, arg).Scan(
			&u.ID,
			&u.FirstName,
			&u.LastName,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// List returns every user with the role name resolved. The caller
// filters out its own row when needed; the query stays one shape.
func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	query := selectUser + `ORDER BY u.created_at ASC, u.id ASC`

	// empty slice, not nil: an empty directory serializes as []
	output := make([]user.User, 0)

	err := r.metrics.ObserveDB("users.list", func() error {
		rows, err := r.pool.Query(ctx, query)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)

			if err != nil {
				return err
			}

			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Update applies the non-nil fields of req in a single statement. The caller
// is expected to have verified the role name against the registry.
func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	argsPosition := 2

	if req.FirstName != nil {
		sets = append(sets, fmt.Sprintf("first_name = $%d", argsPosition))
		args = append(args, *req.FirstName)
		argsPosition++
	}

	if req.LastName != nil {
		sets = append(sets, fmt.Sprintf("last_name = $%d", argsPosition))
		args = append(args, *req.LastName)
		argsPosition++
	}

	if req.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", argsPosition))
		args = append(args, user.NormalizeEmail(*req.Email))
		argsPosition++
	}

	if req.Role != nil {
		sets = append(sets, fmt.Sprintf("role_id = (SELECT id FROM roles WHERE name = $%d)", argsPosition))
		args = append(args, *req.Role)
		argsPosition++
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING id`, strings.Join(sets, ", "))

	var updatedID string

	err := r.metrics.ObserveDB("users.update", func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(&updatedID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	// re-read with the role name joined
	return r.GetByID(ctx, updatedID)
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.metrics.ObserveDB("users.delete", func() error {
		var err error

		tag, err = r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		return err
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
