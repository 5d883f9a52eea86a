package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/namay10/userhub/internal/auth"
	"github.com/namay10/userhub/internal/cache"
	"github.com/namay10/userhub/internal/config"
	"github.com/namay10/userhub/internal/domain/user"
	"github.com/namay10/userhub/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, p user.CreateUserParams) (user.User, error)
}

type RoleReader interface {
	GetByName(ctx context.Context, name string) (user.Role, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	roles      RoleReader
	jwt        *auth.Manager
	cache      cache.Store
}

func NewAuthHandler(users UserReader, userWriter UserWriter, roles RoleReader, jwtManager *auth.Manager, directoryCache cache.Store) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		roles:      roles,
		jwt:        jwtManager,
		cache:      directoryCache,
	}
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// default role for new users

	roleName := req.Role

	if roleName == "" {
		roleName = user.RoleUser
	}

	// verify the role against the seeded registry before doing any work

	if _, err := h.roles.GetByName(cctx, roleName); err != nil {
		if errors.Is(err, user.ErrRoleNotFound) {
			RespondBadRequest(ctx, "unknown_role", "Role does not exist.", gin.H{"role": roleName})
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, user.CreateUserParams{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         roleName,
	})

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondBadRequest(ctx, "email_taken", "Email is already in use.", nil)
		case errors.Is(err, user.ErrRoleNotFound):
			RespondBadRequest(ctx, "unknown_role", "Role does not exist.", gin.H{"role": roleName})
		default:
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	// a cached directory snapshot would not have the new user yet
	if h.cache != nil {
		h.cache.Delete(cctx, directoryCacheKey)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully.",
		"user":    u,
	})
}

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req user.SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// only an absent account is a credentials problem; a storage
		// failure must not masquerade as one
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not sign in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.jwt.Generate(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate session token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  foundUser,
	})
}
