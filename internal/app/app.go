package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stockman/internal/config"
	"stockman/internal/database"
	"stockman/internal/handlers"
	"stockman/internal/middleware"
	"stockman/internal/repositories"
	"stockman/internal/services"
	"stockman/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps are the resources the HTTP application is built from.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Avatars storage.AvatarStore
	Events  services.EventPublisher // nil disables user events
	Log     *slog.Logger
}

// New builds the Fiber application with every route registered.
func New(d Deps) *fiber.App {
	bodyLimit := d.Config.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 4
	}

	app := fiber.New(fiber.Config{
		AppName:      "stockman",
		ErrorHandler: middleware.ErrorHandler(d.Log),
		BodyLimit:    bodyLimit * 1024 * 1024,
		UnescapePath: true,
	})

	// Repositories
	userRepo := repositories.NewGORMUserRepository(d.DB)

	// Services
	userService := services.NewUserService(userRepo, d.Events, d.Log)
	authService := services.NewAuthService(userRepo, d.Config.JWTSecret, d.Config.TokenTTL, d.Log)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(authService)
	uploadHandler := handlers.NewUploadHandler(d.Avatars, d.Log)

	// Middleware
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(recover.New())
	app.Use(middleware.Identify(authService))

	// Literal user routes go before the /:username catch-all.
	users := app.Group("/api/user")
	authHandler.RegisterRoutes(users)
	uploadHandler.RegisterRoutes(users)
	userHandler.RegisterRoutes(users)

	if local, ok := d.Avatars.(*storage.LocalStore); ok {
		app.Static(handlers.ImagesPrefix, local.Dir())
	}
	app.Get(handlers.ImagesPrefix+"/*", uploadHandler.HandleServeAvatar)

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(d.DB); err != nil {
			d.Log.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": d.Events != nil,
		})
	})

	return app
}

// NewAvatarStore builds the avatar backend selected by the configuration.
func NewAvatarStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.AvatarStore, error) {
	switch cfg.AvatarBackend {
	case config.AvatarBackendS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UseSSL:          cfg.S3.UseSSL,
		}, log)
	case config.AvatarBackendLocal, "":
		return storage.NewLocalStore(cfg.AvatarDir)
	default:
		return nil, fmt.Errorf("unknown avatar backend %q", cfg.AvatarBackend)
	}
}
