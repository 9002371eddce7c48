// Package health aggregates store, index and embedding provider checks.
package health

import "context"

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
	// CheckEmpty indicates a reachable index with no products.
	CheckEmpty CheckResult = "empty"
)

// Check names.
const (
	CheckDatabase  = "database"
	CheckIndex     = "index"
	CheckEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status   Status
	Checks   map[string]CheckResult
	Products int
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexCounter
	embedding EmbeddingChecker
}

// New creates a Service. index and embedding can be nil.
func New(db DBPinger, index IndexCounter, embedding EmbeddingChecker) *Service {
	return &Service{db: db, index: index, embedding: embedding}
}

// Check runs every configured check. An empty index degrades the report,
// since every recommendation would come back NotFound.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	if err := s.db.Ping(ctx); err != nil {
		r.Checks[CheckDatabase] = CheckError
	} else {
		r.Checks[CheckDatabase] = CheckOK
	}

	if s.index != nil {
		n, err := s.index.Count(ctx)
		switch {
		case err != nil:
			r.Checks[CheckIndex] = CheckError
		case n == 0:
			r.Checks[CheckIndex] = CheckEmpty
		default:
			r.Checks[CheckIndex] = CheckOK
		}
		r.Products = n
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			r.Checks[CheckEmbedding] = CheckError
		} else {
			r.Checks[CheckEmbedding] = CheckOK
		}
	}

	for _, v := range r.Checks {
		if v != CheckOK {
			r.Status = Degraded
			break
		}
	}
	return r
}
