// Package service exposes the optional healthz and metrics HTTP servers
// used when CI scrapes long-running test executions.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/qaops/backstop/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"

	MetricsHost = "0.0.0.0"
	MetricsPort = "7300"
)

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer

	log *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Service {
	return &Service{
		Healthz: &HealthzServer{log: log},
		Metrics: &MetricsServer{log: log},
		log:     log,
	}
}

func (s *Service) Start(ctx context.Context) {
	s.log.Infow("service starting")

	go func() {
		addr := net.JoinHostPort(HealthzHost, HealthzPort)
		s.log.Infow("starting healthz server", "addr", addr)
		if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorw("error starting healthz server", "err", err)
			metrics.RecordErrorDetails("error starting healthz server", err)
		}
	}()

	go func() {
		addr := net.JoinHostPort(MetricsHost, MetricsPort)
		s.log.Infow("starting metrics server", "addr", addr)
		if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorw("error starting metrics server", "err", err)
			metrics.RecordErrorDetails("error starting metrics server", err)
		}
	}()

	s.log.Infow("service started")
}

func (s *Service) Shutdown() {
	s.log.Infow("service shutting down")
	if err := s.Healthz.Shutdown(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Errorw("error shutting down healthz server", "err", err)
	}
	if err := s.Metrics.Shutdown(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Errorw("error shutting down metrics server", "err", err)
	}
	s.log.Infow("service stopped")
}
