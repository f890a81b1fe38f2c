package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/prepwise/server/adapters/blob"
	"github.com/prepwise/server/adapters/llm"
	"github.com/prepwise/server/adapters/sqlite"
	"github.com/prepwise/server/adapters/stt"
	"github.com/prepwise/server/adapters/tts"
	"github.com/prepwise/server/domain/repositories"
	"github.com/prepwise/server/internal/api"
	"github.com/prepwise/server/internal/auth"
	"github.com/prepwise/server/internal/config"
	"github.com/prepwise/server/internal/websocket"
	"github.com/prepwise/server/usecase"
)

func main() {
	// Load environment variables from .env file if present
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	configPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	for _, warning := range warnings {
		logger.Warn(warning)
	}

	ctx := context.Background()

	// Initialize adapters
	store, err := sqlite.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	interviewer, err := llm.NewInterviewer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM provider", zap.Error(err))
	}
	speechToText, err := stt.NewSpeechToText(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize speech-to-text provider", zap.Error(err))
	}
	textToSpeech, err := tts.NewTextToSpeech(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize text-to-speech provider", zap.Error(err))
	}

	var resumeStorage *blob.SupabaseStorage
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		resumeStorage, err = blob.NewSupabaseStorage(blob.SupabaseConfig{
			BaseURL:    cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			Bucket:     cfg.SupabaseBucket,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize resume storage", zap.Error(err))
		}
	}

	// Initialize usecase services
	var blobStorage repositories.BlobStorage
	if resumeStorage != nil {
		blobStorage = resumeStorage
	}
	interviewService := usecase.NewInterviewService(store, store.Answers(), blobStorage, interviewer, logger)

	authManager := auth.NewManager(cfg.JWTSecret)

	// Initialize WebSocket hub for voice interview rooms
	hub := websocket.NewHub(websocket.HubConfig{
		AI:          interviewer,
		STT:         speechToText,
		TTS:         textToSpeech,
		Voice:       cfg.Voice,
		StartWindow: cfg.StartWindow(),
		Logger:      logger,
	})
	go hub.Run()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, hub, interviewService, authManager, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.HTTPAddress); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("address", cfg.HTTPAddress))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
