package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frosttechequities/migratio-assessment-service/internal/cache"
	"github.com/frosttechequities/migratio-assessment-service/internal/config"
	"github.com/frosttechequities/migratio-assessment-service/internal/handlers"
	"github.com/frosttechequities/migratio-assessment-service/internal/middleware"
	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories/postgres"
	"github.com/frosttechequities/migratio-assessment-service/internal/services"
	"github.com/frosttechequities/migratio-assessment-service/internal/utils"
	"github.com/frosttechequities/migratio-assessment-service/internal/validator"
	"github.com/frosttechequities/migratio-assessment-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Database initialization failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.Question{},
		&models.QuizSession{},
		&models.Response{},
		&models.Profile{},
	); err != nil {
		logger.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, question caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogLogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Event publisher initialization failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	v := validator.New()

	catalog := services.NewQuestionCatalog(repo, cacheService, slogLogger)
	profileService := services.NewProfileService(repo, publisher, slogLogger)
	scoringService := services.NewScoringService(profileService, publisher, slogLogger)
	quizService := services.NewQuizService(repo, catalog, profileService, publisher, slogLogger, v)
	questionService := services.NewQuestionService(repo, catalog, slogLogger, v)
	importExport := services.NewImportExportService(repo, catalog, slogLogger, v)

	auth := middleware.NewAuth(cfg, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		quizService,
		profileService,
		scoringService,
		questionService,
		importExport,
		auth,
		logger,
	)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
}
