// internal/services/allocator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/metrics"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

// Allocator issues application numbers of the form MMYY-N. N starts at 101 each month and is
// strictly increasing in commit order; uniqueness comes from the counter repository's
// serializable increment.
type Allocator struct {
	counters repository.CounterRepository
	cfg      config.WorkflowConfig
	now      func() time.Time
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

func NewAllocator(counters repository.CounterRepository, cfg config.WorkflowConfig, m *metrics.Metrics, log logrus.FieldLogger) *Allocator {
	if cfg.AllocatorAttempts <= 0 {
		cfg.AllocatorAttempts = 1
	}
	if cfg.AllocatorCounterID == "" {
		cfg.AllocatorCounterID = "applications"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Allocator{
		counters: counters,
		cfg:      cfg,
		now:      func() time.Time { return time.Now() },
		metrics:  m,
		log:      log.WithField("component", "allocator"),
	}
}

// WithClock replaces the time source used to pick the month.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// MonthKey formats t as MMYY.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%02d%02d", int(t.Month()), t.Year()%100)
}

// Allocate returns the next number for the current month. Conflicting transactions are retried
// with linear backoff; once attempts are exhausted the result is ErrAllocationFailed and no
// number has been consumed by this call.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	prefix := MonthKey(a.now())
	counterID := fmt.Sprintf("%s_%s", a.cfg.AllocatorCounterID, prefix)

	var lastErr error
	for attempt := 1; attempt <= a.cfg.AllocatorAttempts; attempt++ {
		seq, err := a.counters.Increment(ctx, counterID, prefix, models.CounterBase)
		if err == nil {
			a.metrics.AllocatorAttempt("committed")
			number := fmt.Sprintf("%s-%d", prefix, seq)
			a.log.WithFields(logrus.Fields{"counter": counterID, "number": number, "attempt": attempt}).Debug("allocated application number")
			return number, nil
		}

		lastErr = err
		if !errors.Is(err, repository.ErrConflict) {
			a.metrics.AllocatorAttempt("error")
			break
		}
		a.metrics.AllocatorAttempt("conflict")
		a.log.WithFields(logrus.Fields{"counter": counterID, "attempt": attempt}).Warn("counter transaction conflict, retrying")

		if attempt < a.cfg.AllocatorAttempts {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrAllocationFailed, ctx.Err())
			case <-time.After(time.Duration(attempt) * a.cfg.AllocatorBackoff):
			}
		}
	}

	return "", fmt.Errorf("%w: %v", ErrAllocationFailed, lastErr)
}
