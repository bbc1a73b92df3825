package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maqayees/internal/blob"
	"maqayees/internal/config"
	"maqayees/internal/infra"
	"maqayees/internal/relay"
	"maqayees/internal/security"
	"maqayees/internal/server/handlers"
	"maqayees/internal/server/mw"
	"maqayees/internal/shifts"
	"maqayees/internal/store"
	"maqayees/internal/uploads"
)

func NewRouter(cfg *config.Config, deps *infra.Infra, logger *zap.Logger) http.Handler {
	if cfg.AppEnv == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw.RequestLogger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"*"},
	}))

	r.GET("/health", handlers.Health)

	shiftsRepo := shifts.NewRepo(deps.PG)
	activeCache := store.NewActiveShiftStore(deps.Redis, 24*time.Hour)
	jwtm := security.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.JWTAccessTTL)

	// Relay stays nil when the archive env is incomplete; the resolver then
	// keeps blob URLs for every upload.
	var archiveRelay uploads.ArchiveStore
	if cfg.Archive.Enabled() {
		archiveRelay = relay.New(cfg.Archive)
	} else {
		logger.Warn("archive not configured, uploads stay in blob storage")
	}
	resolver := uploads.NewResolver(
		logger,
		blob.NewClient(cfg.Blob.DownloadTimeout),
		archiveRelay,
		cfg.Archive.BasePath,
		cfg.Blob.TempRoot,
	)

	shiftH := handlers.NewShiftHandler(logger, shiftsRepo, resolver, activeCache)

	v1 := r.Group("/v1")
	v1.Use(mw.RequireClientToken(cfg.Security.MobileClientToken))
	v1.Use(mw.RateLimit(deps.Redis, cfg.Security.RateLimitRPS))

	// The mobile app posts shift events with the client token; identity
	// fields ride in the payload.
	v1.POST("/shifts", shiftH.Submit)

	// Dashboard reads require a user token on top.
	authed := v1.Group("")
	authed.Use(mw.RequireUser(jwtm))
	authed.GET("/shifts", shiftH.List)
	authed.GET("/shifts/open", shiftH.GetOpen)
	authed.GET("/shifts/:id", shiftH.Get)

	return r
}
