package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

type UserRepository struct {
	mu   sync.RWMutex
	now  func() time.Time
	seq  uint64
	rows map[uuid.UUID]*entry[models.User]
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, e := range r.rows {
		if e.row.Email == user.Email {
			return repository.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.seq++
	r.rows[user.ID] = &entry[models.User]{seq: r.seq, row: *user}
	return nil
}

func (r *UserRepository) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := e.row
	return &out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, e := range r.rows {
		if e.row.Email == email {
			out := e.row
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entry[models.User]
	for _, e := range r.rows {
		u := &e.row
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Approved != nil && u.IsApproved != *filter.Approved {
			continue
		}
		if filter.Search != "" && !containsFold(u.Email, filter.Search) && !containsFold(u.DisplayName, filter.Search) {
			continue
		}
		matched = append(matched, e)
	}
	newestFirst(matched, func(u *models.User) time.Time { return u.CreatedAt })

	out := make([]models.User, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.row)
	}
	return page(out, filter.Offset, filter.Limit), int64(len(matched)), nil
}

func (r *UserRepository) Update(_ context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&e.row, r.now())
	out := e.row
	return &out, nil
}

func (r *UserRepository) IDsByRole(_ context.Context, role models.UserRole) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entry[models.User]
	for _, e := range r.rows {
		if e.row.Role == role && e.row.IsApproved {
			matched = append(matched, e)
		}
	}
	newestFirst(matched, func(u *models.User) time.Time { return u.CreatedAt })

	ids := make([]uuid.UUID, 0, len(matched))
	for i := len(matched) - 1; i >= 0; i-- {
		ids = append(ids, matched[i].row.ID)
	}
	return ids, nil
}

func (r *UserRepository) Count(_ context.Context, approved *bool) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, e := range r.rows {
		if approved == nil || e.row.IsApproved == *approved {
			n++
		}
	}
	return n, nil
}
