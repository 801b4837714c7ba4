// Package healthcheck provides the component probes behind /ready and /health/details.
package healthcheck

import (
	"context"
	"sync"
	"time"

	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

const defaultCheckTimeout = 2 * time.Second

// Status is the outcome of a single probe.
type Status struct {
	Healthy   bool
	Message   string
	Details   map[string]any
	CheckedAt time.Time
}

// Checker probes one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) Status
}

type registered struct {
	checker  Checker
	critical bool
}

// Aggregator runs all registered checkers concurrently and implements httpserver.HealthChecker.
// A failing critical checker makes the service unready; a failing optional one only degrades it.
type Aggregator struct {
	timeout  time.Duration
	checkers []registered
}

// AggregatorOption configures Aggregator.
type AggregatorOption func(*Aggregator)

// WithTimeout bounds every probe.
func WithTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAggregator creates an empty aggregator.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{timeout: defaultCheckTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Critical registers a checker whose failure makes the service unready.
func (a *Aggregator) Critical(c Checker) *Aggregator {
	a.checkers = append(a.checkers, registered{checker: c, critical: true})
	return a
}

// Optional registers a checker whose failure only degrades the service.
func (a *Aggregator) Optional(c Checker) *Aggregator {
	a.checkers = append(a.checkers, registered{checker: c})
	return a
}

// IsReady reports whether every critical checker passes.
func (a *Aggregator) IsReady(ctx context.Context) bool {
	for i, st := range a.run(ctx) {
		if a.checkers[i].critical && !st.Healthy {
			return false
		}
	}
	return true
}

// GetHealthStatus returns one component status per registered checker.
func (a *Aggregator) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	statuses := a.run(ctx)
	out := make([]httpserver.ComponentStatus, 0, len(statuses))
	for i, st := range statuses {
		status := httpserver.StatusHealthy
		if !st.Healthy {
			status = httpserver.StatusDegraded
			if a.checkers[i].critical {
				status = httpserver.StatusUnhealthy
			}
		}
		out = append(out, httpserver.ComponentStatus{
			Name:    a.checkers[i].checker.Name(),
			Status:  status,
			Message: st.Message,
		})
	}
	return out
}

func (a *Aggregator) run(ctx context.Context) []Status {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	statuses := make([]Status, len(a.checkers))
	var wg sync.WaitGroup
	for i, r := range a.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = r.checker.Check(ctx)
		}()
	}
	wg.Wait()
	return statuses
}

var _ httpserver.HealthChecker = (*Aggregator)(nil)
