package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/config"
	"github.com/skuldata/skuldata-api/internal/database"
	"github.com/skuldata/skuldata-api/internal/handler"
	"github.com/skuldata/skuldata-api/internal/middleware"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
	"github.com/skuldata/skuldata-api/internal/router"
	"github.com/skuldata/skuldata-api/internal/service"
	cloud "github.com/skuldata/skuldata-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.ActionLog{},
		&models.Student{},
		&models.Document{},
		&models.TimetableLesson{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, feed replay cache disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, cross-node feed mirroring disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudSvc, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudSvc
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	actionLogRepo := repository.NewActionLogRepository(db)
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	recorder := audit.NewRecorder(actionLogRepo, audit.RecorderConfig{
		Workers:   cfg.AuditWorkers,
		QueueSize: cfg.AuditQueueSize,
	}, logger)
	defer recorder.Close()

	bus := audit.NewBus()
	audit.NewObserver(recorder, logger).Attach(bus)
	if err := db.Use(audit.NewPlugin(bus, logger)); err != nil {
		log.Fatalf("failed to install audit plugin: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feedService := service.NewFeedService(redisClient, cfg.FeedChannel, cfg.FeedCacheTTL, natsConn, logger)
	feedService.Start(ctx)
	recorder.OnEntry(feedService.Publish)

	authService := service.NewAuthService(userRepo, recorder, cfg.JWTSecret, logger)
	auditQueryService := service.NewAuditQueryService(actionLogRepo, logger)
	studentService := service.NewStudentService(studentRepo, db, validate, logger)
	documentService := service.NewDocumentService(documentRepo, db, uploader, recorder, validate, logger)
	timetableService := service.NewTimetableService(timetableRepo, db, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	actionLogHandler := handler.NewActionLogHandler(auditQueryService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	documentHandler := handler.NewDocumentHandler(documentService, logger)
	timetableHandler := handler.NewTimetableHandler(timetableService, logger)
	feedHandler := handler.NewFeedHandler(feedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:   &logger,
		Recorder: recorder,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		StudentHandler:   studentHandler,
		DocumentHandler:  documentHandler,
		TimetableHandler: timetableHandler,
		ActionLogHandler: actionLogHandler,
		FeedHandler:      feedHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
