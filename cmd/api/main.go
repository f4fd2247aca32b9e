package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wakaf-cms-api/internal/config"
	"github.com/noah-isme/wakaf-cms-api/internal/database"
	"github.com/noah-isme/wakaf-cms-api/internal/handler"
	"github.com/noah-isme/wakaf-cms-api/internal/middleware"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/observability"
	"github.com/noah-isme/wakaf-cms-api/internal/repository"
	"github.com/noah-isme/wakaf-cms-api/internal/router"
	"github.com/noah-isme/wakaf-cms-api/internal/service"
	cloud "github.com/noah-isme/wakaf-cms-api/pkg/cloudinary"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.AppEnv}); err != nil {
			logger.Warn().Err(err).Msg("sentry disabled")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}
	diagnostics := observability.NewDiagnostics(logger, sentry.CurrentHub())

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	activityOpts := service.ActivityServiceOptions{
		ListLimit: cfg.ActivityListLimit,
		ListMax:   cfg.ActivityListMax,
		Subject:   cfg.NATSSubject,
	}
	if cfg.NATSURL != "" {
		natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("activity events will not be published")
		} else {
			defer natsConn.Drain()
			activityOpts.Publisher = natsConn
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	identityProvider := identity.NewContextProvider(userRepo)
	activityRepo := repository.NewActivityLogRepository(db)
	contentRepos := service.NewContentRepositories(db)

	activityService := service.NewActivityService(activityRepo, identityProvider, diagnostics, activityOpts, logger)
	statsService := service.NewActivityStatsService(activityService, redisClient, cfg.StatsCacheTTL, time.Local, logger)
	publicService := service.NewPublicContentService(contentRepos, redisClient, service.PublicContentOptions{
		CacheTTL:        cfg.ContentCacheTTL,
		GalleryPageSize: cfg.GalleryPageSize,
		RootMargin:      int(cfg.LazyMediaRootMargin),
	}, logger)
	adminContentService := service.NewAdminContentService(contentRepos, activityService, publicService, validate, logger)

	issuer := identity.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	revoker := identity.NewRedisRevoker(redisClient)
	authService := service.NewAuthService(userRepo, issuer, revoker, identityProvider, activityService, logger)

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	err = authService.EnsureAdmin(bootstrapCtx, cfg.AdminEmail, cfg.AdminPasswordHash)
	cancelBootstrap()
	if err != nil {
		log.Fatalf("failed to ensure admin account: %v", err)
	}

	var mediaHandler *handler.AdminMediaHandler
	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("media routes disabled")
	} else {
		mediaService := service.NewMediaService(uploader, activityService, cfg.MediaMaxUploadMB, logger)
		mediaHandler = handler.NewAdminMediaHandler(mediaService, logger)
	}

	authenticate := middleware.Authenticate(issuer, revoker)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: "wakaf-cms",
		BodyLimit:    (cfg.MediaMaxUploadMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: !cfg.IsProduction()})

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:              handler.NewAuthHandler(authService, validate, authenticate, logger),
		PublicContentHandler:     handler.NewPublicContentHandler(publicService, logger),
		DocumentationPageHandler: handler.NewDocumentationPageHandler(publicService, logger),
		AdminContentHandler:      handler.NewAdminContentHandler(adminContentService, logger),
		AdminMediaHandler:        mediaHandler,
		AdminActivityHandler:     handler.NewAdminActivityHandler(activityService, statsService, validate, logger),
		HealthProbes: map[string]handler.HealthProbe{
			"database": func(c *fiber.Ctx) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(c.UserContext())
			},
			"redis": func(c *fiber.Ctx) error {
				return redisClient.Ping(c.UserContext()).Err()
			},
		},
		AdminMiddleware: []fiber.Handler{
			authenticate,
			middleware.RequireRole(identityProvider, models.RoleAdmin),
			middleware.RateLimit("admin", 120, time.Minute),
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Error().Err(err).Msg("server stopped")
		}
	}()

	waitForShutdown(app)
	activityService.Wait()
}

func waitForShutdown(app *fiber.App) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
