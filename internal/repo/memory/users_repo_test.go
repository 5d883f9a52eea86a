package memory_test

import (
	"errors"
	"testing"

	"github.com/namay10/userhub/internal/domain/user"
	"github.com/namay10/userhub/internal/repo/memory"
)

func newRepo() *memory.UsersRepo {
	return memory.NewUsersRepo(memory.NewRolesRepo())
}

func seed(t *testing.T, r *memory.UsersRepo, email, role string) user.User {
	t.Helper()

	u, err := r.Create(t.Context(), user.CreateUserParams{
		FirstName:    "Ann",
		LastName:     "Lee",
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})

	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}

	return u
}

func TestRolesSeeded(t *testing.T) {
	roles := memory.NewRolesRepo()

	for _, name := range user.SeededRoles() {
		if _, err := roles.GetByName(t.Context(), name); err != nil {
			t.Errorf("role %q missing: %v", name, err)
		}
	}

	if _, err := roles.GetByName(t.Context(), "superadmin"); !errors.Is(err, user.ErrRoleNotFound) {
		t.Errorf("err = %v, want ErrRoleNotFound", err)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	r := newRepo()

	_, err := r.Create(t.Context(), user.CreateUserParams{
		FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", PasswordHash: "hash", Role: "superadmin",
	})

	if !errors.Is(err, user.ErrRoleNotFound) {
		t.Fatalf("err = %v, want ErrRoleNotFound", err)
	}
}

func TestEmailUniquenessIsCaseInsensitive(t *testing.T) {
	r := newRepo()

	seed(t, r, "Ann@X.com", user.RoleUser)

	_, err := r.Create(t.Context(), user.CreateUserParams{
		FirstName: "Ann", LastName: "Lee", Email: "ANN@x.com", PasswordHash: "hash", Role: user.RoleUser,
	})

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}

	// stored normalized, findable under any casing
	u, err := r.GetByEmail(t.Context(), "aNn@X.CoM")

	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}

	if u.Email != "ann@x.com" {
		t.Errorf("email = %q, want %q", u.Email, "ann@x.com")
	}
}

func TestUpdatePartial(t *testing.T) {
	r := newRepo()

	u := seed(t, r, "ann@x.com", user.RoleUser)

	newFirst := "Anne"
	newRole := user.RoleAdmin

	updated, err := r.Update(t.Context(), u.ID, user.UpdateUserRequest{
		FirstName: &newFirst,
		Role:      &newRole,
	})

	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.FirstName != "Anne" || updated.Role != user.RoleAdmin {
		t.Errorf("updated = %+v", updated)
	}

	if updated.LastName != "Lee" || updated.Email != "ann@x.com" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	if updated.PasswordHash != "hash" {
		t.Errorf("password hash changed on edit")
	}
}

func TestUpdateMissingUser(t *testing.T) {
	r := newRepo()

	name := "Ghost"

	_, err := r.Update(t.Context(), "no-such-id", user.UpdateUserRequest{FirstName: &name})

	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEmailConflict(t *testing.T) {
	r := newRepo()

	seed(t, r, "ann@x.com", user.RoleUser)
	bob := seed(t, r, "bob@x.com", user.RoleUser)

	conflicting := "ANN@x.com"

	_, err := r.Update(t.Context(), bob.ID, user.UpdateUserRequest{Email: &conflicting})

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestDelete(t *testing.T) {
	r := newRepo()

	u := seed(t, r, "ann@x.com", user.RoleUser)

	if err := r.Delete(t.Context(), u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := r.Delete(t.Context(), u.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	users, err := r.List(t.Context())

	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(users) != 0 {
		t.Errorf("len = %d, want 0", len(users))
	}
}

func TestList(t *testing.T) {
	r := newRepo()

	ann := seed(t, r, "ann@x.com", user.RoleAdmin)
	bob := seed(t, r, "bob@x.com", user.RoleUser)
	cat := seed(t, r, "cat@x.com", user.RoleModerator)

	users, err := r.List(t.Context())

	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}

	// insertion order, with the role name carried on every row
	for i, want := range []user.User{ann, bob, cat} {
		if users[i].ID != want.ID {
			t.Errorf("users[%d].ID = %s, want %s", i, users[i].ID, want.ID)
		}

		if users[i].Role != want.Role {
			t.Errorf("users[%d].Role = %q, want %q", i, users[i].Role, want.Role)
		}
	}
}
