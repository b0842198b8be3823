package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fuel-tracker/internal/config"
	httpserver "fuel-tracker/internal/http"
	applog "fuel-tracker/internal/log"
	"fuel-tracker/internal/service"
	"fuel-tracker/internal/store"
	"fuel-tracker/internal/tsnet"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.LoadDotEnv(envFile()); err != nil {
		fmt.Fprintf(os.Stderr, "fuel tracker: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fuel tracker: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := applog.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.Component = applog.ComponentApp
	logger := applog.New(logCfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fuel tracker stopped", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("server stopped cleanly")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	backend, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("initialize datastore: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("close datastore", applog.FieldError, err)
		}
	}()

	tracker := service.NewTracker(backend, service.Options{
		Location:    cfg.Location,
		RecentLimit: cfg.RecentLimit,
		Logger:      logger,
	})
	apiServer := httpserver.NewServer(tracker, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	listeners := []net.Listener{ln}

	if cfg.TsnetEnabled {
		node, err := tsnet.New(tsnet.Config{
			Hostname: cfg.TsnetHostname,
			Dir:      cfg.TsnetDir,
			AuthKey:  cfg.TsnetAuthKey,
			Listen:   cfg.TsnetListenAddr,
		}, logger)
		if err != nil {
			ln.Close()
			return fmt.Errorf("configure tsnet: %w", err)
		}
		defer node.Close()

		tsln, err := node.Listen(ctx)
		if err != nil {
			ln.Close()
			return err
		}
		listeners = append(listeners, tsln)
	}

	logger.Info("fuel tracker listening",
		"addr", ln.Addr().String(),
		"backend", cfg.Backend,
		"tsnet", cfg.TsnetEnabled)

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range listeners {
		l := l
		g.Go(func() error {
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", l.Addr(), err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func envFile() string {
	if path := os.Getenv("FUEL_ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}
