package main

import (
	"fmt"
	"os"

	"github.com/wheelx-dev/wheelx/internal/config"
	"github.com/wheelx-dev/wheelx/internal/logger"
	"github.com/wheelx-dev/wheelx/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv := server.New(cfg, log, version)
	log.Info().Str("version", version).Str("api_url", cfg.API.URL).Msg("Starting WheelX gateway...")

	// blocks until SIGINT or SIGTERM
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
