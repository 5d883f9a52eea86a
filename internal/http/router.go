package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/namay10/userhub/internal/auth"
	"github.com/namay10/userhub/internal/cache"
	"github.com/namay10/userhub/internal/config"
	"github.com/namay10/userhub/internal/http/handlers"
	"github.com/namay10/userhub/internal/http/middlewares"
	"github.com/namay10/userhub/internal/observability"
	"github.com/namay10/userhub/internal/repo/postgres"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, directoryCache cache.Store, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("userhub"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	rolesRepo := postgres.NewRolesRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authGuard := middlewares.NewAuthMiddleware(jwtManager)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, rolesRepo, jwtManager, directoryCache)
	usersHandler := handlers.NewUsersHandler(usersRepo, rolesRepo, directoryCache)

	api := r.Group("/api/user/auth")
	api.Use(middlewares.RequireJSON())

	api.POST("/sign-up", authHandler.SignUp)
	api.POST("/sign-in", authHandler.SignIn)

	api.GET("/me", authGuard.RequireAuth(), usersHandler.Me)
	api.GET("/roles", authGuard.RequireAuth(), usersHandler.ListRoles)

	admin := api.Group("/users", authGuard.RequireAuth(), authGuard.RequireRole("admin"))
	admin.GET("", usersHandler.ListUsers)
	admin.PUT("/:id", usersHandler.EditUser)
	admin.DELETE("/:id", usersHandler.DeleteUser)

	return r
}
