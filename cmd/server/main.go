package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accessapp "github.com/doclink/backend/internal/application/access"
	docapp "github.com/doclink/backend/internal/application/document"
	"github.com/doclink/backend/internal/infrastructure/auth"
	"github.com/doclink/backend/internal/infrastructure/config"
	"github.com/doclink/backend/internal/infrastructure/logger"
	"github.com/doclink/backend/internal/infrastructure/persistence"
	"github.com/doclink/backend/internal/infrastructure/storage"
	"github.com/doclink/backend/internal/infrastructure/telemetry"
	"github.com/doclink/backend/internal/interfaces/http/handler"
	"github.com/doclink/backend/internal/interfaces/http/middleware"
	"github.com/doclink/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting document access service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// SQL migrations cover the postgres strategy; sqlite builds its
	// schema directly.
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	var blobs docapp.BlobStore
	switch cfg.Storage.Backend {
	case "s3":
		s3Store, err := storage.NewS3BlobStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize blob storage", zap.Error(err))
		}
		blobs = s3Store
	default:
		blobs = storage.NewMemoryBlobStore()
		log.Warn("Using in-memory blob storage; published PDFs will not survive a restart")
	}

	docRepo := persistence.NewGormDocumentRepository(db.DB)
	tokenRepo := persistence.NewGormAccessTokenRepository(db.DB)

	publishService := docapp.NewPublishService(docRepo, blobs, log)
	portalService := docapp.NewPortalService(docRepo, blobs)
	decisionService := docapp.NewDecisionService(docRepo, log)
	linkService := accessapp.NewLinkService(tokenRepo, cfg.AccessLink.DefaultTTLDays, log)

	authenticator := auth.NewPublishAuthenticator(cfg.PublishAuth)
	if cfg.PublishAuth.APIKey == "" {
		if cfg.PublishAuth.Strict {
			log.Warn("Publish API key not configured; publish endpoints will answer 503")
		} else {
			log.Warn("Publish endpoints are OPEN; configure an API key before exposing this deployment")
		}
	}

	limiter := middleware.NewRateLimiter(cfg.HTTP.RateBucketCap)
	readLimit := middleware.RateLimit(limiter, middleware.RateRule{
		Name:   "read",
		Limit:  cfg.HTTP.ReadRateLimit,
		Window: cfg.HTTP.ReadRateWindow,
	}, cfg.HTTP.RealIPHeader)
	writeLimit := middleware.RateLimit(limiter, middleware.RateRule{
		Name:   "decision",
		Limit:  cfg.HTTP.WriteRateLimit,
		Window: cfg.HTTP.WriteRateWindow,
	}, cfg.HTTP.RealIPHeader)

	publishHandler := handler.NewPublishHandler(
		publishService, linkService, middleware.PublishAuth(authenticator), cfg.HTTP.PublicOrigin)
	portalHandler := handler.NewPortalHandler(
		portalService, linkService, readLimit, cfg.Cookie, cfg.SecureCookies(), log)
	decisionHandler := handler.NewDecisionHandler(
		decisionService, writeLimit, cfg.HTTP.PublicOrigin, cfg.Cookie.Name, log)
	systemHandler := handler.NewSystemHandler(db, version)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SecurityHeaders())
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(publishHandler).
		Register(portalHandler).
		Register(decisionHandler).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
