package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/taskr/taskr-api/internal/config"
	"github.com/taskr/taskr-api/internal/constants"
	"github.com/taskr/taskr-api/internal/database"
	"github.com/taskr/taskr-api/internal/handlers"
	"github.com/taskr/taskr-api/internal/middleware"
	"github.com/taskr/taskr-api/internal/repository"
	"github.com/taskr/taskr-api/internal/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file")
	flag.Parse()

	// Load configuration
	cfg := config.MustLoad(*configPath)

	logger := mustMakeLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	taskRepo := repository.NewTaskRepository(db)
	eventRepo := repository.NewEventLogRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services
	authService := services.NewAuthService(userRepo, tokenRepo, taskRepo, services.AuthOptions{
		TokenTTL:       cfg.TokenTTL,
		StaffUsernames: cfg.StaffUsernames,
	}, logger)
	taskService := services.NewTaskService(taskRepo, categoryRepo, userRepo, logger)
	eventService := services.NewEventLogService(taskRepo, eventRepo)
	categoryService := services.NewCategoryService(categoryRepo, taskRepo, logger)
	reportService, err := services.NewReportService(db, userRepo)
	if err != nil {
		log.Fatalf("Failed to create report service: %v", err)
	}

	scheduler := services.NewScheduler(logger)
	if _, err := scheduler.ScheduleTokenPurge(authService, cfg.TokenPurgeInterval); err != nil {
		log.Fatalf("Failed to schedule token purge: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.Routes{
		Auth:       handlers.NewAuthHandler(authService),
		Tasks:      handlers.NewTaskHandler(taskService, eventService, aiService),
		Categories: handlers.NewCategoryHandler(categoryService),
		Reports:    handlers.NewReportHandler(reportService),
		Authn:      authService,
	}.Register(r)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "address", cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
}

// newSessionStore uses Redis when it is configured and signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.RedisHost == "" {
		store := cookie.NewStore([]byte(cfg.SessionSecret))
		store.Options(options)
		return store, nil
	}

	store, err := redisStore.NewStore(
		10,    // Redis pool size
		"tcp", // network type
		cfg.RedisHost+":"+cfg.RedisPort,
		"", // username (empty for default user)
		"", // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return nil, err
	}
	store.Options(options)
	return store, nil
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		panic("unknown log level: " + logLevel)
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
