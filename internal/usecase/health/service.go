// Package health aggregates component checks for the /health endpoint.
package health

import (
	"context"
	"errors"

	"github.com/kailas-cloud/modeldemo/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	cache      CachePinger
	completion ProviderChecker
	embedding  ProviderChecker
}

// New creates a Service. Any argument can be nil; nil components are not reported,
// nor are providers whose check returns domain.ErrUnsupported.
func New(cache CachePinger, completion, embedding ProviderChecker) *Service {
	return &Service{cache: cache, completion: completion, embedding: embedding}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}
	checkProvider(ctx, checks, "completion", s.completion)
	checkProvider(ctx, checks, "embedding", s.embedding)

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func checkProvider(ctx context.Context, checks map[string]CheckResult, name string, p ProviderChecker) {
	if p == nil {
		return
	}
	err := p.HealthCheck(ctx)
	if errors.Is(err, domain.ErrUnsupported) {
		return
	}
	checks[name] = result(err)
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
