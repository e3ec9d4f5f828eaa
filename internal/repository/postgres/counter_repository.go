package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Increment runs the read-modify-write at SERIALIZABLE isolation. Postgres aborts the loser of a
// concurrent increment with SQLSTATE 40001, which translate reports as repository.ErrConflict.
func (r *CounterRepository) Increment(ctx context.Context, id, prefix string, base int64) (int64, error) {
	var next int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []struct {
			Current int64
		}
		if err := tx.Raw("SELECT current FROM counters WHERE id = ? FOR UPDATE", id).Scan(&rows).Error; err != nil {
			return err
		}

		next = base + 1
		if len(rows) > 0 {
			next = rows[0].Current + 1
		}

		return tx.Exec(
			`INSERT INTO counters (id, prefix, current, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET current = EXCLUDED.current, updated_at = EXCLUDED.updated_at`,
			id, prefix, next, nowUTC(),
		).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", id, translate(err))
	}

	return next, nil
}
