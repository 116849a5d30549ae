package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"rhombick-backend/config"
	"rhombick-backend/database"
	"rhombick-backend/logger"
	"rhombick-backend/metrics"
	"rhombick-backend/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// ---- Database
	db, err := database.Open(cfg.DB, log)
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("could not migrate database", zap.Error(err))
	}

	// ---- Fiber app with global error handler, middleware and routes
	app := routes.NewApp(cfg, db, log, metrics.New())

	// ---- Start
	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting", zap.String("addr", cfg.Server.Port), zap.String("env", cfg.Server.Environment))
		errCh <- app.Listen(cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server stopped", zap.Error(err))
	}

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Error("closing database failed", zap.Error(err))
	}
	log.Info("server exited")
}
