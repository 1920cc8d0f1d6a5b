package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/imagetagger/accounts/docs"
	"github.com/imagetagger/accounts/internal/api/handler"
	"github.com/imagetagger/accounts/internal/api/middleware"
	"github.com/imagetagger/accounts/internal/core/service"
	mongorepo "github.com/imagetagger/accounts/internal/infrastructure/db/mongo"
	redisstore "github.com/imagetagger/accounts/internal/infrastructure/db/redis"
	"github.com/imagetagger/accounts/internal/pkg/config"
)

var getPost = []string{http.MethodGet, http.MethodPost}

func component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Each layer logs under its own component name derived from log.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	httpLog := component(log, "http")

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(httpLog)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(httpLog))
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(db)
	teamRepo := mongorepo.NewTeamRepository(db)
	imageSetRepo := mongorepo.NewImageSetRepository(db)
	activityRepo := mongorepo.NewActivityRepository(db)
	sessions := redisstore.NewSessionStore(rdb)

	authService := service.NewAuthService(userRepo, sessions, cfg.JWTSecret, cfg.SessionTTL, component(log, "auth"))
	authorizer := service.NewAuthorizer(teamRepo, teamRepo)
	teamService := service.NewTeamService(teamRepo, userRepo, imageSetRepo, activityRepo, authorizer, component(log, "teams"))
	directoryService := service.NewDirectoryService(teamRepo, userRepo)

	authHandler := handler.NewAuthHandler(authService, cfg.SessionTTL, cfg.IsProduction())
	teamHandler := handler.NewTeamHandler(teamService)
	directoryHandler := handler.NewDirectoryHandler(directoryService, teamService)

	requireAuth := middleware.Auth(cfg.JWTSecret, sessions)
	identify := middleware.Identify(cfg.JWTSecret, sessions)

	// --- Auth routes ---
	e.Match(getPost, "/login", authHandler.Login, identify)
	e.Match(getPost, "/logout", authHandler.Logout, identify)

	// --- Team routes ---
	teams := e.Group("/teams", requireAuth)
	teams.POST("", teamHandler.Create)
	teams.Match(getPost, "/explore", directoryHandler.ExploreTeams)
	teams.Match(getPost, "/:team_id", teamHandler.View)
	teams.POST("/:team_id/admins/:user_id/grant", teamHandler.GrantAdmin)
	teams.POST("/:team_id/admins/:user_id/revoke", teamHandler.RevokeAdmin)
	teams.Match(getPost, "/:team_id/leave", teamHandler.Leave)
	teams.Match(getPost, "/:team_id/leave/:user_id", teamHandler.Leave)

	// --- User routes ---
	users := e.Group("/users", requireAuth)
	users.Match(getPost, "/explore", directoryHandler.ExploreUsers)
	users.GET("/:user_id", directoryHandler.Profile)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(map[string]handler.Check{
		"mongodb": handler.MongoCheck(db),
		"redis":   handler.RedisCheck(rdb),
	})
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Metrics & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
