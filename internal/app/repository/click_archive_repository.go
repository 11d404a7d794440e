package repository

import (
	"context"
	"time"

	"github.com/stubhq/stublink/internal/app/model"
	"gorm.io/gorm"
)

// ClickArchiveRepository defines the data access contract for archived
// click events.
type ClickArchiveRepository interface {
	Create(ctx context.Context, row *model.ClickArchive) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type clickArchiveRepository struct {
	db *gorm.DB
}

// NewClickArchiveRepository returns a GORM-backed ClickArchiveRepository.
func NewClickArchiveRepository(db *gorm.DB) ClickArchiveRepository {
	return &clickArchiveRepository{db: db}
}

func (r *clickArchiveRepository) Create(ctx context.Context, row *model.ClickArchive) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *clickArchiveRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff.UnixMilli()).
		Delete(&model.ClickArchive{})
	return result.RowsAffected, result.Error
}
