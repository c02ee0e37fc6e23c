package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component failed; queries are still answered.
	Degraded Status = "degraded"
	// Unhealthy indicates the catalog is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled indicates a component running in fallback mode.
	CheckDisabled CheckResult = "disabled"
)

// Component names.
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
	catalog    Checker
	cache      Pinger
	embedding  Checker
	capability Capability
}

// New creates a Service. cache, embedding and capability can be nil.
func New(catalog Checker, cache Pinger, embedding Checker, capability Capability) *Service {
	return &Service{catalog: catalog, cache: cache, embedding: embedding, capability: capability}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentCatalog] = result(s.catalog.HealthCheck(ctx))

	if s.cache != nil {
		checks[ComponentCache] = result(s.cache.Ping(ctx))
	}

	switch {
	case s.capability != nil && !s.capability.Available():
		checks[ComponentEmbedding] = CheckDisabled
	case s.embedding != nil:
		checks[ComponentEmbedding] = result(s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentCatalog] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
