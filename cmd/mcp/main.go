package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"fuel-tracker/internal/config"
	applog "fuel-tracker/internal/log"
	"fuel-tracker/internal/mcptools"
	"fuel-tracker/internal/service"
	"fuel-tracker/internal/store"
)

const version = "1.0.0"

func main() {
	if err := config.LoadDotEnv(envFile()); err != nil {
		fmt.Fprintf(os.Stderr, "fuel tracker mcp: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fuel tracker mcp: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol, so logs go to stderr.
	logCfg := applog.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.Component = applog.ComponentMCP
	logCfg.Writer = os.Stderr
	logger := applog.New(logCfg)

	backend, err := store.Open(cfg)
	if err != nil {
		logger.Error("failed to initialize datastore", applog.FieldError, err)
		os.Exit(1)
	}
	defer backend.Close()

	tracker := service.NewTracker(backend, service.Options{
		Location:    cfg.Location,
		RecentLimit: cfg.RecentLimit,
		Logger:      logger,
	})

	s := server.NewMCPServer(
		"fuel-tracker",
		version,
		server.WithToolCapabilities(false),
	)
	mcptools.RegisterTools(s, tracker)

	logger.Info("serving mcp over stdio", "backend", cfg.Backend)
	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp server error", applog.FieldError, err)
		backend.Close()
		os.Exit(1)
	}
}

func envFile() string {
	if path := os.Getenv("FUEL_ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}
