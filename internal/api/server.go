// @title Channel Service API
// @version 1.0
// @description Accounts, sessions, channel profiles, subscriptions and watch history.
// @host localhost:8000
// @BasePath /
// @schemes http
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <JWT>

package api

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SundayYogurt/channel_service/config"
	"github.com/SundayYogurt/channel_service/infra/queue"
	"github.com/SundayYogurt/channel_service/internal/api/rest/handlers"
	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/SundayYogurt/channel_service/internal/helper"
	"github.com/SundayYogurt/channel_service/internal/helper/utils"
	"github.com/SundayYogurt/channel_service/internal/interfaces"
	"github.com/SundayYogurt/channel_service/internal/repository"
	"github.com/SundayYogurt/channel_service/internal/services"
	"github.com/SundayYogurt/channel_service/pkg/cloudinary"
	imageutil "github.com/SundayYogurt/channel_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// shared by every replica so only one of them migrates at a time
const migrateLockID int64 = 20260222

func StartServer(cfg config.Config) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app := NewApp(cfg)
	log.Printf("KafkaBroker=%q KafkaTopic=%q KafkaWatchTopic=%q", cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaWatchTopic)

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	if err := migrate(db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	cld, err := cloudinary.New(cfg.CloudinaryUrl)
	if err != nil {
		log.Fatalf("cloudinary init error: %v", err)
	}
	up := cloudinary.NewCloudinaryUploader(cld, cfg.CloudinaryFolder)

	var producer interfaces.ProducerHandler
	kafkaProducer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword)
	if kafkaProducer != nil {
		producer = kafkaProducer
		defer kafkaProducer.Close()
	}

	authHelper := helper.SetupAuth(cfg.AccessSecret, cfg.AccessTokenExpiry, cfg.RefreshSecret, cfg.RefreshTokenExpiry)
	hasher := helper.NewBcryptHasher(0)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	historyRepo := repository.NewWatchHistoryRepository(db)

	// ---------- Services ----------
	sessionSvc := services.NewSessionService(userRepo, authHelper, hasher, producer, logger, services.SessionOptions{
		RevokeOnPasswordChange: cfg.RevokeSessionsOnPasswordChange,
	})
	profileSvc := services.NewProfileService(userRepo, channelRepo, historyRepo, hasher, up, producer, logger, services.ProfileOptions{
		Image: imageutil.ImageOptions{
			MaxWidth:  cfg.ImageMaxWidth,
			MaxPixels: cfg.ImageMaxPixels,
			Quality:   cfg.ImageJPEGQuality,
		},
	})
	subscriptionSvc := services.NewSubscriptionService(subscriptionRepo, userRepo, logger)
	historySvc := services.NewHistoryService(historyRepo, userRepo, logger)

	// ---------- Handlers ----------
	userHandler := handlers.NewUserHandler(sessionSvc, profileSvc, subscriptionSvc, handlers.CookieConfig{
		Secure:     cfg.CookieSecure,
		AccessTTL:  cfg.AccessTokenExpiry,
		RefreshTTL: cfg.RefreshTokenExpiry,
	}, cfg.UploadMaxBytes)
	userHandler.SetupRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------- Consumer ----------
	if cfg.KafkaBroker != "" && cfg.KafkaWatchTopic != "" {
		consumer := queue.NewKafkaConsumer(
			cfg.KafkaBroker,
			cfg.KafkaWatchTopic,
			cfg.KafkaGroupID,
			cfg.KafkaUsername,
			cfg.KafkaPassword,
			handlers.NewWatchEventHandler(historySvc, logger),
			logger,
		)
		go func() {
			if err := consumer.Listen(ctx); err != nil {
				logger.Error("watch consumer stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(shutdownCtx)
	}()

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

// NewApp builds the Fiber app with the middleware every route shares.
func NewApp(cfg config.Config) *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if cfg.UploadMaxBytes > 0 {
		// two images plus form fields
		bodyLimit = int(2*cfg.UploadMaxBytes) + 1024*1024
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	RegisterSwagger(app, cfg.SwaggerHost, cfg.SwaggerSchemes)

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigin,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: cfg.CorsOrigin != "*",
	}))

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}

func errorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.ResponseError(ctx, fe.Code, fe.Message)
	}
	return utils.ResponseFromError(ctx, err)
}

func migrate(db *gorm.DB) error {
	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		return err
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	return db.AutoMigrate(domain.Models()...)
}
