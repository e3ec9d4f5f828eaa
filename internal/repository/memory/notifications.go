package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

type NotificationRepository struct {
	mu   sync.RWMutex
	now  func() time.Time
	seq  uint64
	rows map[uuid.UUID]*entry[models.Notification]
}

func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if _, exists := r.rows[n.ID]; exists {
		return repository.ErrConflict
	}

	now := r.now()
	n.CreatedAt = now
	n.UpdatedAt = now

	r.seq++
	r.rows[n.ID] = &entry[models.Notification]{seq: r.seq, row: *n}
	return nil
}

func (r *NotificationRepository) Get(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := e.row
	return &out, nil
}

func (r *NotificationRepository) List(_ context.Context, filter repository.NotificationFilter) ([]models.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entry[models.Notification]
	for _, e := range r.rows {
		if e.row.UserID != filter.UserID {
			continue
		}
		if filter.UnreadOnly && e.row.Read {
			continue
		}
		matched = append(matched, e)
	}
	newestFirst(matched, func(n *models.Notification) time.Time { return n.CreatedAt })

	out := make([]models.Notification, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.row)
	}
	return page(out, filter.Offset, filter.Limit), int64(len(matched)), nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rows[id]
	if !ok || e.row.Read {
		return nil
	}
	e.row.Read = true
	e.row.ReadAt = &at
	e.row.UpdatedAt = at
	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, e := range r.rows {
		if e.row.UserID == userID && !e.row.Read {
			readAt := at
			e.row.Read = true
			e.row.ReadAt = &readAt
			e.row.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, e := range r.rows {
		if e.row.UserID == userID && !e.row.Read {
			n++
		}
	}
	return n, nil
}
