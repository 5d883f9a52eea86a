package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/namay10/userhub/internal/cache"
	"github.com/namay10/userhub/internal/config"
	"github.com/namay10/userhub/internal/domain/user"
	"github.com/namay10/userhub/internal/http/middlewares"
)

// one key for the whole directory; excludeSelf filtering happens after the
// cache so every admin shares the same snapshot
const directoryCacheKey = "directory:users"

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// RoleRegistry is the seeded role registry as the directory sees it:
// lookups for validation, the full list for role pickers.
type RoleRegistry interface {
	GetByName(ctx context.Context, name string) (user.Role, error)
	List(ctx context.Context) ([]user.Role, error)
}

type UsersHandler struct {
	store UserStore
	roles RoleRegistry
	cache cache.Store
}

func NewUsersHandler(store UserStore, roles RoleRegistry, directoryCache cache.Store) *UsersHandler {
	return &UsersHandler{
		store: store,
		roles: roles,
		cache: directoryCache,
	}
}

// ListUsers returns every user with the role name resolved. An empty
// directory is a 200 with [], never an error.
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.loadDirectory(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	if ctx.Query("excludeSelf") == "true" {
		callerID, _ := middlewares.UserIDFromContext(ctx)

		filtered := make([]user.User, 0, len(users))

		for _, u := range users {
			if u.ID != callerID {
				filtered = append(filtered, u)
			}
		}

		users = filtered
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *UsersHandler) loadDirectory(ctx context.Context) ([]user.User, error) {
	if h.cache != nil {
		if raw, ok := h.cache.Get(ctx, directoryCacheKey); ok {
			var cached []user.User

			if err := json.Unmarshal(raw, &cached); err == nil {
				if cached == nil {
					// keep the empty directory serializing as []
					cached = make([]user.User, 0)
				}

				return cached, nil
			}
			// undecodable entry: fall through and overwrite below
		}
	}

	users, err := h.store.List(ctx)

	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if raw, err := json.Marshal(users); err == nil {
			h.cache.Set(ctx, directoryCacheKey, raw)
		}
	}

	return users, nil
}

func (h *UsersHandler) invalidateDirectory(ctx context.Context) {
	if h.cache != nil {
		h.cache.Delete(ctx, directoryCacheKey)
	}
}

// ListRoles returns the seeded registry so clients can build role
// pickers instead of hard-coding the names.
func (h *UsersHandler) ListRoles(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	roles, err := h.roles.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list roles")
		return
	}

	if roles == nil {
		roles = make([]user.Role, 0)
	}

	ctx.JSON(http.StatusOK, roles)
}

// EditUser applies a partial update. The password field is rejected
// outright: this path must never look like a password reset.
func (h *UsersHandler) EditUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "invalid_id", "user id must be a valid UUID", nil)
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Password != nil {
		RespondBadRequest(ctx, "invalid_request", "Password cannot be changed through this endpoint.", gin.H{
			"fields": []FieldError{{Field: "password", Rule: "forbidden", Message: "is not editable here"}},
		})
		return
	}

	if req.IsEmpty() {
		RespondBadRequest(ctx, "invalid_request", "No editable fields supplied.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if req.Role != nil {
		if _, err := h.roles.GetByName(cctx, *req.Role); err != nil {
			if errors.Is(err, user.ErrRoleNotFound) {
				RespondBadRequest(ctx, "unknown_role", "Role does not exist.", gin.H{"role": *req.Role})
				return
			}

			RespondInternal(ctx, "Could not update user")
			return
		}
	}

	updated, err := h.store.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found.")
		case errors.Is(err, user.ErrEmailTaken):
			RespondBadRequest(ctx, "email_taken", "Email is already in use.", nil)
		case errors.Is(err, user.ErrRoleNotFound):
			RespondBadRequest(ctx, "unknown_role", "Role does not exist.", nil)
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	h.invalidateDirectory(cctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully.",
		"user":    updated,
	})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "invalid_id", "user id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	h.invalidateDirectory(cctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}

// Me returns the caller's own record, any authenticated role.
func (h *UsersHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// token outlived the account
			RespondNotFound(ctx, "User not found.")
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}
