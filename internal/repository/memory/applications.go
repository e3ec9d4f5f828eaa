package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

type ApplicationRepository struct {
	mu   sync.RWMutex
	now  func() time.Time
	seq  uint64
	rows map[uuid.UUID]*entry[models.Application]
}

// cloneApplication detaches the slices so callers never share backing arrays with the store.
func cloneApplication(a models.Application) models.Application {
	if a.Inventors != nil {
		a.Inventors = append(pq.StringArray(nil), a.Inventors...)
	}
	if a.Attachments != nil {
		a.Attachments = append(models.Attachments(nil), a.Attachments...)
	}
	if a.ApplicationNumber != nil {
		n := *a.ApplicationNumber
		a.ApplicationNumber = &n
	}
	return a
}

func (r *ApplicationRepository) Create(_ context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if _, exists := r.rows[app.ID]; exists {
		return repository.ErrConflict
	}
	if app.ApplicationNumber != nil && r.numberTaken(*app.ApplicationNumber) {
		return repository.ErrConflict
	}

	now := r.now()
	app.CreatedAt = now
	app.UpdatedAt = now

	r.seq++
	r.rows[app.ID] = &entry[models.Application]{seq: r.seq, row: cloneApplication(*app)}
	return nil
}

func (r *ApplicationRepository) Get(_ context.Context, id uuid.UUID) (*models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneApplication(e.row)
	return &out, nil
}

func (r *ApplicationRepository) List(_ context.Context, filter repository.ApplicationFilter) ([]models.Application, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entry[models.Application]
	for _, e := range r.rows {
		if matchesApplication(&e.row, filter) {
			matched = append(matched, e)
		}
	}
	newestFirst(matched, func(a *models.Application) time.Time { return a.CreatedAt })

	out := make([]models.Application, 0, len(matched))
	for _, e := range matched {
		out = append(out, cloneApplication(e.row))
	}
	return page(out, filter.Offset, filter.Limit), int64(len(matched)), nil
}

func matchesApplication(a *models.Application, f repository.ApplicationFilter) bool {
	if f.ApplicantEmail != "" && a.ApplicantEmail != f.ApplicantEmail {
		return false
	}
	if !f.IncludeDeleted && a.DeletedAt != nil {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" &&
		!containsFold(a.Title, f.Search) &&
		!containsFold(a.Number(), f.Search) &&
		!containsFold(a.ApplicantName, f.Search) {
		return false
	}
	return true
}

func (r *ApplicationRepository) Update(_ context.Context, id uuid.UUID, patch models.ApplicationPatch) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&e.row, r.now())
	out := cloneApplication(e.row)
	return &out, nil
}

func (r *ApplicationRepository) AssignNumber(_ context.Context, id uuid.UUID, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rows[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if e.row.ApplicationNumber != nil {
		return false, nil
	}
	if r.numberTaken(number) {
		return false, repository.ErrConflict
	}

	e.row.ApplicationNumber = &number
	e.row.UpdatedAt = r.now()
	return true, nil
}

func (r *ApplicationRepository) CountByStatus(_ context.Context) (map[models.ApplicationStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[models.ApplicationStatus]int64{}
	for _, e := range r.rows {
		if e.row.DeletedAt == nil {
			counts[e.row.Status]++
		}
	}
	return counts, nil
}

// numberTaken mirrors the unique index on application_number. Callers hold the lock.
func (r *ApplicationRepository) numberTaken(number string) bool {
	for _, e := range r.rows {
		if e.row.ApplicationNumber != nil && *e.row.ApplicationNumber == number {
			return true
		}
	}
	return false
}
