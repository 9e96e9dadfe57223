package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGuardRepository implements ledger.GuardRepository using GORM
type GormGuardRepository struct {
	db *gorm.DB
}

// NewGormGuardRepository creates a new GormGuardRepository
func NewGormGuardRepository(db *gorm.DB) *GormGuardRepository {
	return &GormGuardRepository{db: db}
}

// Insert records the guard. The primary key rejects a second insert, which
// is reported as false rather than an error.
func (r *GormGuardRepository) Insert(ctx context.Context, guard ledger.PeriodGuard) (bool, error) {
	model := models.PeriodGuardModelFromDomain(guard)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return false, translateError("insert period guard", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether the guard is recorded
func (r *GormGuardRepository) Exists(ctx context.Context, unitID uuid.UUID, month time.Time, kind ledger.ReportKind) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PeriodGuardModel{}).
		Where("unit_id = ? AND month = ? AND kind = ?", unitID, ledger.MonthBucket(month), string(kind)).
		Count(&count).Error; err != nil {
		return false, translateError("check period guard", err)
	}
	return count > 0, nil
}

// Delete removes the guard and reports whether one existed
func (r *GormGuardRepository) Delete(ctx context.Context, unitID uuid.UUID, month time.Time, kind ledger.ReportKind) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("unit_id = ? AND month = ? AND kind = ?", unitID, ledger.MonthBucket(month), string(kind)).
		Delete(&models.PeriodGuardModel{})
	if result.Error != nil {
		return false, translateError("delete period guard", result.Error)
	}
	return result.RowsAffected > 0, nil
}

var _ ledger.GuardRepository = (*GormGuardRepository)(nil)
