// Package tsnet exposes the tracker on a tailnet through an embedded
// Tailscale node.
package tsnet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"tailscale.com/tsnet"

	applog "fuel-tracker/internal/log"
)

const (
	defaultHostname = "fuel"
	defaultListen   = ":443"
)

// Config describes the embedded tailnet node.
type Config struct {
	Hostname string
	Dir      string
	AuthKey  string
	Listen   string
}

// Server wraps a tsnet node that serves the tracker on the tailnet.
type Server struct {
	cfg    Config
	logger *slog.Logger
	server *tsnet.Server
}

// New prepares a tailnet node. Nothing connects until Listen is called.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.Dir == "" {
		return nil, errors.New("tsnet state dir is required")
	}
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.Hostname == "" {
		cfg.Hostname = defaultHostname
	}
	logger = applog.WithComponent(logger, applog.ComponentTsnet)

	ts := &tsnet.Server{
		Dir:      cfg.Dir,
		Hostname: cfg.Hostname,
		AuthKey:  cfg.AuthKey,
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
		UserLogf: func(format string, args ...any) {
			logger.Info(fmt.Sprintf(format, args...))
		},
	}
	return &Server{cfg: cfg, logger: logger, server: ts}, nil
}

// Hostname returns the MagicDNS name the node registers.
func (s *Server) Hostname() string {
	return s.cfg.Hostname
}

// Listen starts the node and returns a TCP listener on the tailnet.
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	if s.server == nil {
		return nil, errors.New("tsnet server not initialised")
	}
	if _, err := s.server.Up(ctx); err != nil {
		return nil, fmt.Errorf("bring tailnet node up: %w", err)
	}
	ln, err := s.server.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("listen on tailnet %s: %w", s.cfg.Listen, err)
	}
	s.logger.InfoContext(ctx, "listening on tailnet", "hostname", s.Hostname(), "addr", s.cfg.Listen)
	return ln, nil
}

// Close shuts the node down.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}
