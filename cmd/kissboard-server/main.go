package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/config"
	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("kissboard-server: %v", err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxAge:     7,
		MaxBackups: 5,
		Console:    true,
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warn("Error closing database", logger.F("error", err))
		}
	}()

	srv := server.New(board.New(database))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(cfg.ServerAddr)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return watchConfig(ctx, config.Path())
	})

	return g.Wait()
}

// watchConfig applies log level changes from the config file until ctx is done
func watchConfig(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("Config watcher unavailable", logger.F("error", err))
		return nil
	}
	defer watcher.Close()

	// editors replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("Not watching config", logger.F("path", path), logger.F("error", err))
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				logger.Warn("Ignoring invalid config change", logger.F("error", err))
				continue
			}
			level := logger.ParseLevel(cfg.LogLevel)
			logger.SetLevel(level)
			logger.Info("Log level changed", logger.F("level", cfg.LogLevel))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error", logger.F("error", err))
		}
	}
}
