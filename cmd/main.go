package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/farellandr/eventbuddy/config"
	"github.com/farellandr/eventbuddy/internal/logger"
	"github.com/farellandr/eventbuddy/internal/server"
)

func main() {
	envErr := godotenv.Load(".env")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Info("no .env file loaded, using process environment")
	}

	if err := server.Start(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
