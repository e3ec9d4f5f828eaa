// internal/repository/postgres/store.go
package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/ipr-backend/internal/repository"
)

// NewStore wires every gorm-backed repository onto one connection.
func NewStore(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Applications:  NewApplicationRepository(db),
		Notifications: NewNotificationRepository(db),
		Counters:      NewCounterRepository(db),
		Users:         NewUserRepository(db),
		Reviews:       NewReviewRepository(db),
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func paginate(db *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db
}

func likePattern(s string) string {
	return "%" + s + "%"
}
