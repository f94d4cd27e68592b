package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rpattn/scenariogen/internal/api"
	"github.com/rpattn/scenariogen/internal/config"
	"github.com/rpattn/scenariogen/internal/db"
	"github.com/rpattn/scenariogen/internal/export"
	"github.com/rpattn/scenariogen/internal/interpret"
	"github.com/rpattn/scenariogen/internal/repository"
)

func main() {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Without a database the server still runs; scenarios then live in
	// memory for the process lifetime only.
	scenarioRepo := repository.NewMemoryScenarioRepository()
	if cfg.Database.Enabled {
		conn, err := db.NewConnection(ctx, cfg.Database.Config)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer conn.Close()

		if err := db.RunMigrations(cfg.Database.Config); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		scenarioRepo = repository.NewScenarioRepository(conn.Pool)
		logger.Info("scenario storage ready", zap.String("database", cfg.Database.DBName))
	} else {
		logger.Info("no database configured, storing scenarios in memory")
	}

	interpreter, err := buildInterpreter(cfg.Interpreter, logger)
	if err != nil {
		logger.Fatal("failed to configure interpreter", zap.Error(err))
	}

	server := api.NewServer(logger, export.NewService(), scenarioRepo, interpreter)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(server.Handler()),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func buildInterpreter(cfg config.InterpreterConfig, logger *zap.Logger) (interpret.Interpreter, error) {
	switch cfg.Backend {
	case "gemini":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		return interpret.NewGemini(apiKey, logger,
			interpret.WithModel(cfg.Model),
			interpret.WithFallback(&interpret.Heuristic{}),
		)
	default:
		return &interpret.Heuristic{}, nil
	}
}
