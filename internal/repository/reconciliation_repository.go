package repository

import (
	"context"

	"gorm.io/gorm"

	"stayledger/internal/model"
)

// ReconciliationRepository stores reconciliation reports.
type ReconciliationRepository interface {
	Create(ctx context.Context, report *model.ReconciliationReport) error
	Latest(ctx context.Context) (*model.ReconciliationReport, error)
}

type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates a new reconciliation report repository.
func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) Create(ctx context.Context, report *model.ReconciliationReport) error {
	return conn(ctx, r.db).Create(report).Error
}

func (r *reconciliationRepository) Latest(ctx context.Context) (*model.ReconciliationReport, error) {
	var report model.ReconciliationReport
	if err := conn(ctx, r.db).Order("created_at DESC").First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}
