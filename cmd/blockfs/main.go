package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/cubbit/blockfs/internal/logger"
	"github.com/cubbit/blockfs/internal/server"
	"github.com/cubbit/blockfs/pkg/config"
	"github.com/cubbit/blockfs/pkg/fs"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (YAML)")
	port := flag.String("port", "", "Port to listen on (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (DEBUG, INFO, WARN, ERROR; overrides config)")
	storePath := flag.String("store", "", "Path to the backing store file (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// CLI flags win over file and environment.
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *storePath != "" {
		cfg.Storage.Path = *storePath
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.SetLevel(cfg.Logging.Level)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	fmt.Println("blockfs - block file server")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Backing store: %s", cfg.Storage.Path)

	manager, err := fs.New(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open filesystem: %v", err)
	}
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server, manager)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down...")
		srv.Stop()
		select {
		case <-errCh:
		case <-time.After(cfg.Server.ShutdownTimeout):
			logger.Warn("Shutdown timed out after %v", cfg.Server.ShutdownTimeout)
		}
	}
}
