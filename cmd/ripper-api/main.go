package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ripper/internal/config"
	"ripper/internal/credentials"
	"ripper/internal/engine"
	server "ripper/internal/http"
	"ripper/internal/jobs"
	"ripper/internal/registry"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.Load(*configPath)

	// Set up logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	if err := os.MkdirAll(cfg.Storage.TempDir, 0o755); err != nil {
		log.Fatalf("create temp dir failed: %v", err)
	}

	// Fetch the yt-dlp binary if it is not already on the host.
	if err := engine.Install(context.Background()); err != nil {
		log.Fatalf("engine install failed: %v", err)
	}

	reg := registry.New()
	creds := credentials.NewStore(filepath.Join(cfg.Storage.TempDir, "cookies.txt"))
	eng := engine.NewYTDLPEngine(cfg.Engine, creds)

	sweeper := jobs.NewSweeper(reg, time.Duration(cfg.Retention.DelaySeconds)*time.Second, logger)
	runner := jobs.NewRunner(reg, eng, sweeper, cfg.Storage.TempDir, cfg.Storage.PublicBaseURL, logger)

	s := server.NewServer(cfg, server.Deps{
		Registry:    reg,
		Runner:      runner,
		Engine:      eng,
		Credentials: creds,
	}, logger)
	if err := s.Listen(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
