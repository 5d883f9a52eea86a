package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/namay10/userhub/internal/domain/user"
)

// RolesRepo is an in-memory role registry, pre-seeded like startup does.
type RolesRepo struct {
	mu    sync.RWMutex
	roles map[string]user.Role
}

func NewRolesRepo() *RolesRepo {
	r := &RolesRepo{roles: make(map[string]user.Role)}

	// mirror startup seeding
	for _, name := range user.SeededRoles() {
		r.roles[name] = user.Role{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
	}

	return r
}

func (r *RolesRepo) GetByName(_ context.Context, name string) (user.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[name]

	if !ok {
		return user.Role{}, user.ErrRoleNotFound
	}

	return role, nil
}

func (r *RolesRepo) List(_ context.Context) ([]user.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.Role, 0, len(r.roles))

	for _, role := range r.roles {
		out = append(out, role)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// UsersRepo is an in-memory stand-in for the postgres repo, mainly for
// tests and local hacking without a database.
type UsersRepo struct {
	mu    sync.RWMutex
	roles *RolesRepo
	users map[string]user.User
}

func NewUsersRepo(roles *RolesRepo) *UsersRepo {
	return &UsersRepo{
		roles: roles,
		users: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateUserParams) (user.User, error) {
	if _, err := r.roles.GetByName(ctx, p.Role); err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	email := user.NormalizeEmail(p.Email)

	for _, existing := range r.users {
		if existing.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        email,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = user.NormalizeEmail(email)

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	output := make([]user.User, 0, len(r.users))

	for _, u := range r.users {
		output = append(output, u)
	}

	sort.Slice(output, func(i, j int) bool {
		if output[i].CreatedAt.Equal(output[j].CreatedAt) {
			return output[i].ID < output[j].ID
		}

		return output[i].CreatedAt.Before(output[j].CreatedAt)
	})

	return output, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	if req.Role != nil {
		if _, err := r.roles.GetByName(ctx, *req.Role); err != nil {
			return user.User{}, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if req.Role != nil {
		u.Role = *req.Role
	}

	if req.Email != nil {
		email := user.NormalizeEmail(*req.Email)

		for otherID, other := range r.users {
			if otherID != id && other.Email == email {
				return user.User{}, user.ErrEmailTaken
			}
		}

		u.Email = email
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}

	if req.LastName != nil {
		u.LastName = *req.LastName
	}

	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.users, id)

	return nil
}
