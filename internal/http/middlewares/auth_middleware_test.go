package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/namay10/userhub/internal/auth"
	"github.com/namay10/userhub/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) Verify(string) (*auth.Claims, error) {
	return f.claims, f.err
}

func guardedRouter(v middlewares.TokenVerifier, roles ...string) *gin.Engine {
	m := middlewares.NewAuthMiddleware(v)

	r := gin.New()

	chain := []gin.HandlerFunc{m.RequireAuth()}

	if len(roles) > 0 {
		chain = append(chain, m.RequireAnyRole(roles...))
	}

	chain = append(chain, func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)

		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})

	r.GET("/guarded", chain...)

	return r
}

func doGuarded(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)

	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestRequireAuth(t *testing.T) {
	okClaims := &auth.Claims{UserID: "u1", Email: "ann@x.com", Role: "user"}

	tests := []struct {
		name       string
		verifier   *fakeVerifier
		authHeader string
		wantStatus int
	}{
		{
			name:       "missing header",
			verifier:   &fakeVerifier{claims: okClaims},
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			verifier:   &fakeVerifier{claims: okClaims},
			authHeader: "Basic abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer token",
			verifier:   &fakeVerifier{claims: okClaims},
			authHeader: "Bearer ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verification fails",
			verifier:   &fakeVerifier{err: errors.New("expired")},
			authHeader: "Bearer some-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			verifier:   &fakeVerifier{claims: okClaims},
			authHeader: "Bearer some-token",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := guardedRouter(tt.verifier)

			rec := doGuarded(r, tt.authHeader)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRequireAnyRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		required   []string
		wantStatus int
	}{
		{
			name:       "admin allowed on admin route",
			role:       "admin",
			required:   []string{"admin"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "user forbidden on admin route",
			role:       "user",
			required:   []string{"admin"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "moderator forbidden on admin route",
			role:       "moderator",
			required:   []string{"admin"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "moderator allowed in a role set",
			role:       "moderator",
			required:   []string{"admin", "moderator"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeVerifier{claims: &auth.Claims{UserID: "u1", Email: "ann@x.com", Role: tt.role}}

			r := guardedRouter(v, tt.required...)

			rec := doGuarded(r, "Bearer some-token")

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRequireAnyRoleWithoutIdentity(t *testing.T) {
	m := middlewares.NewAuthMiddleware(&fakeVerifier{})

	r := gin.New()

	// role check mounted without RequireAuth: no identity on the context
	r.GET("/guarded", m.RequireAnyRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := doGuarded(r, "Bearer some-token")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
