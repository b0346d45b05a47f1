package main

import (
	"net/http"
	"os"

	_ "fieldtrack/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"fieldtrack/internal/auth"
	"fieldtrack/internal/cache"
	"fieldtrack/internal/config"
	"fieldtrack/internal/db"
	"fieldtrack/internal/handler"
	"fieldtrack/internal/jobs"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/mailer"
	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
	"fieldtrack/internal/router"
	"fieldtrack/internal/service"
	"fieldtrack/internal/storage"
)

// @title FieldTrack API
// @version 1.0
// @description Gestion des feuilles de travail terrain : monteurs, chantiers, feuilles, frais et pièces jointes.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
		tables := []interface{}{
			&model.Expense{},
			&model.Attachment{},
			&model.WorkSheet{},
			&model.User{},
			&model.Worker{},
			&model.Site{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Warn().Err(err).Msg("drop table (may not exist)")
			}
		}
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.Worker{},
		&model.Site{},
		&model.User{},
		&model.WorkSheet{},
		&model.Expense{},
		&model.Attachment{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	workerRepo := repository.NewWorkerRepository(gormDB)
	siteRepo := repository.NewSiteRepository(gormDB)
	sheetRepo := repository.NewWorkSheetRepository(gormDB)
	expenseRepo := repository.NewExpenseRepository(gormDB)
	attachmentRepo := repository.NewAttachmentRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize infrastructure
	store, err := storage.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init")
	}
	mail := mailer.New(cfg, log)

	// Initialize services
	authService := service.NewAuthService(userRepo, workerRepo, jwtService, tokenStore, log)
	workerService := service.NewWorkerService(workerRepo)
	siteService := service.NewSiteService(siteRepo)
	sheetService := service.NewWorkSheetService(sheetRepo, workerRepo, siteRepo, expenseRepo, userRepo, mail, log)
	attachmentService := service.NewAttachmentService(attachmentRepo, sheetRepo, store, log)

	// Scheduled jobs
	registry := jobs.NewRegistry(log)
	for _, job := range []jobs.Job{
		jobs.NewStaleDraftReminder(sheetRepo, mail, cfg.StaleDraftDays, log),
		jobs.NewOrphanAttachmentPurge(attachmentRepo, store, cfg.OrphanRetentionDays, log),
		jobs.NewRefreshTokenMaintenance(tokenStore, log),
		jobs.NewWeeklyRollup(sheetRepo, log),
	} {
		if err := registry.Register(job); err != nil {
			log.Fatal().Err(err).Str("job", job.Name).Msg("job registration")
		}
	}
	registry.Start()
	defer registry.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, jwtService)
	workerHandler := handler.NewWorkerHandler(workerService, sheetService)
	siteHandler := handler.NewSiteHandler(siteService, sheetService)
	sheetHandler := handler.NewWorkSheetHandler(sheetService)
	fileHandler := handler.NewFileHandler(attachmentService)
	jobHandler := handler.NewJobHandler(registry)

	// Register routes
	router.Register(
		e,
		cfg,
		tokenStore,
		authHandler,
		workerHandler,
		siteHandler,
		sheetHandler,
		fileHandler,
		jobHandler,
	)

	if cfg.SwaggerHost != "" {
		log.Info().Str("url", cfg.SwaggerHost+"/swagger/index.html").Msg("swagger documentation")
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server start")
	}
}
