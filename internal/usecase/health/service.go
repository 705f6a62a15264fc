package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means search still answers, possibly through text fallback.
	Degraded Status = "degraded"
	// Unhealthy means the catalog is unreachable and searches fail.
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
	catalog   Pinger
	embedding EmbeddingChecker
	cache     Pinger
}

// New creates a Service. embedding and cache can be nil.
func New(catalog Pinger, embedding EmbeddingChecker, cache Pinger) *Service {
	return &Service{catalog: catalog, embedding: embedding, cache: cache}
}

// Check runs health checks against all components. Only the catalog is
// critical: without embeddings search degrades to text matching, and the
// embedding cache is an optimization.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["catalog"] = result(s.catalog.Ping(ctx))
	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}
	if s.cache != nil {
		checks["embedding_cache"] = result(s.cache.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["catalog"] == CheckError {
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
