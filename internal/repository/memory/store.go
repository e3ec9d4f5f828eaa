// Package memory is an in-process implementation of the repository ports. It backs the service
// tests and DB_DRIVER=memory local runs; data does not survive a restart.
package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

// NewStore returns empty collections sharing one clock.
func NewStore(now func() time.Time) *repository.Store {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &repository.Store{
		Applications:  &ApplicationRepository{now: now, rows: map[uuid.UUID]*entry[models.Application]{}},
		Notifications: &NotificationRepository{now: now, rows: map[uuid.UUID]*entry[models.Notification]{}},
		Counters:      &CounterRepository{now: now, counters: map[string]*models.Counter{}},
		Users:         &UserRepository{now: now, rows: map[uuid.UUID]*entry[models.User]{}},
		Reviews:       &ReviewRepository{now: now},
	}
}

// entry keeps insertion order so rows created within the same clock tick sort deterministically.
type entry[T any] struct {
	seq uint64
	row T
}

// newestFirst orders rows by created time then insertion order, both descending.
func newestFirst[T any](rows []*entry[T], created func(*T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := created(&rows[i].row), created(&rows[j].row)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return rows[i].seq > rows[j].seq
	})
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
