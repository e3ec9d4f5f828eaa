package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/ipr-backend/internal/models"
)

type ReviewRepository struct {
	mu      sync.RWMutex
	now     func() time.Time
	records []models.ReviewRecord
}

func (r *ReviewRepository) Append(_ context.Context, record *models.ReviewRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.records = append(r.records, *record)
	return nil
}

func (r *ReviewRepository) ListByApplication(_ context.Context, applicationID uuid.UUID) ([]models.ReviewRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.ReviewRecord{}
	for _, rec := range r.records {
		if rec.ApplicationID == applicationID {
			out = append(out, rec)
		}
	}
	return out, nil
}
