package memory

import (
	"context"
	"sync"
	"time"

	"github.com/javajoker/ipr-backend/internal/models"
)

// CounterRepository serializes increments behind a mutex, which gives the same guarantee the
// postgres adapter gets from SERIALIZABLE isolation.
type CounterRepository struct {
	mu       sync.Mutex
	now      func() time.Time
	counters map[string]*models.Counter
}

func (r *CounterRepository) Increment(_ context.Context, id, prefix string, base int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.counters[id]
	if !ok {
		c = &models.Counter{ID: id, Prefix: prefix, Current: base}
		r.counters[id] = c
	}
	c.Current++
	c.UpdatedAt = r.now()
	return c.Current, nil
}

// Current reports the stored value of a counter, for inspection in tests.
func (r *CounterRepository) Current(id string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.counters[id]
	if !ok {
		return 0, false
	}
	return c.Current, true
}
