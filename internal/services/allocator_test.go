package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ipr-backend/internal/metrics"
	"github.com/javajoker/ipr-backend/internal/repository"
	"github.com/javajoker/ipr-backend/internal/repository/memory"
)

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "0425", MonthKey(april2025))
	assert.Equal(t, "1299", MonthKey(time.Date(1999, time.December, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "0100", MonthKey(time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAllocatorStartsEachMonthAt101(t *testing.T) {
	store := memory.NewStore(nil)
	now := april2025
	a := NewAllocator(store.Counters, testWorkflowConfig(), nil, quietLogger()).
		WithClock(func() time.Time { return now })

	for _, want := range []string{"0425-101", "0425-102", "0425-103"} {
		got, err := a.Allocate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	now = time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	got, err := a.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0525-101", got)

	current, ok := store.Counters.(*memory.CounterRepository).Current("applications_0425")
	require.True(t, ok)
	assert.EqualValues(t, 103, current)
}

func TestAllocatorIsContiguousUnderConcurrency(t *testing.T) {
	store := memory.NewStore(nil)
	a := NewAllocator(store.Counters, testWorkflowConfig(), nil, quietLogger()).
		WithClock(func() time.Time { return april2025 })

	const n = 100
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]int{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := a.Allocate(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[number]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for number, count := range seen {
		assert.Equal(t, 1, count, number)
	}
	assert.Contains(t, seen, "0425-101")
	assert.Contains(t, seen, "0425-200")
}

func TestAllocatorRetriesConflicts(t *testing.T) {
	store := memory.NewStore(nil)
	counters := &conflictingCounters{n: 2, next: store.Counters}
	m := metrics.New()
	a := NewAllocator(counters, testWorkflowConfig(), m, quietLogger()).
		WithClock(func() time.Time { return april2025 })

	got, err := a.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0425-101", got)
	assert.Equal(t, 3, counters.calls)
}

func TestAllocatorGivesUpAfterMaxAttempts(t *testing.T) {
	store := memory.NewStore(nil)
	counters := &conflictingCounters{n: 10, next: store.Counters}
	a := NewAllocator(counters, testWorkflowConfig(), nil, quietLogger())

	_, err := a.Allocate(context.Background())
	require.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, 3, counters.calls)

	_, ok := store.Counters.(*memory.CounterRepository).Current("applications_" + MonthKey(time.Now()))
	assert.False(t, ok, "no number consumed")
}

type brokenCounters struct{ calls int }

func (b *brokenCounters) Increment(context.Context, string, string, int64) (int64, error) {
	b.calls++
	return 0, errors.New("connection refused")
}

func TestAllocatorDoesNotRetryHardErrors(t *testing.T) {
	counters := &brokenCounters{}
	a := NewAllocator(counters, testWorkflowConfig(), nil, quietLogger())

	_, err := a.Allocate(context.Background())
	require.ErrorIs(t, err, ErrAllocationFailed)
	assert.NotErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 1, counters.calls)
}

func TestAllocatorHonoursCancellation(t *testing.T) {
	cfg := testWorkflowConfig()
	cfg.AllocatorBackoff = time.Hour
	counters := &conflictingCounters{n: 10, next: memory.NewStore(nil).Counters}
	a := NewAllocator(counters, cfg, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := a.Allocate(ctx)
	require.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, 1, counters.calls)
}
