package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentCatalog   = "catalog"
	ComponentCache     = "cache"
	ComponentEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	catalog   Pinger
	cache     Pinger
	embedding ProviderChecker
	logger    *zap.Logger
}

// Option configures optional checks.
type Option func(*Service)

// WithCache adds a cache ping. Pass only when the cache is enabled.
func WithCache(p Pinger) Option {
	return func(s *Service) { s.cache = p }
}

// WithEmbedding adds an embedding provider check.
func WithEmbedding(c ProviderChecker) Option {
	return func(s *Service) { s.embedding = c }
}

// WithLogger logs failing checks.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service. The catalog check is always run.
func New(catalog Pinger, opts ...Option) *Service {
	s := &Service{catalog: catalog, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)

	checks[ComponentCatalog] = s.result(ComponentCatalog, s.catalog.Ping(ctx))
	if s.cache != nil {
		checks[ComponentCache] = s.result(ComponentCache, s.cache.Ping(ctx))
	}
	if s.embedding != nil {
		checks[ComponentEmbedding] = s.result(ComponentEmbedding, s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) result(component string, err error) CheckResult {
	if err != nil {
		s.logger.Warn("Health check failed", zap.String("component", component), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
