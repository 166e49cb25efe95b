package repository

import (
	"context"

	"gorm.io/gorm"

	"projlens/internal/domain"
)

// RunRepository handles pipeline run ledger operations.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record.
func (r *RunRepository) Create(ctx context.Context, run *domain.PipelineRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update saves the run record with its current field values.
func (r *RunRepository) Update(ctx context.Context, run *domain.PipelineRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// List retrieves runs newest first, with paging.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]domain.PipelineRun, error) {
	var runs []domain.PipelineRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// CountByStatus tallies runs per status for the ops overview.
func (r *RunRepository) CountByStatus(ctx context.Context, status domain.RunStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.PipelineRun{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
