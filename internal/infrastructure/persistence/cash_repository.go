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

// upsertByContentKey inserts model or, when its content key is already
// stored, updates columns in place and keeps the stored ID
func upsertByContentKey(ctx context.Context, db *gorm.DB, model any, table, key string, columns []string) (uuid.UUID, error) {
	var ids []uuid.UUID
	if err := db.WithContext(ctx).
		Table(table).
		Where("content_key = ?", key).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return uuid.Nil, err
	}
	var existing uuid.UUID
	if len(ids) > 0 {
		existing = ids[0]
	}

	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_key"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(model).Error; err != nil {
		return uuid.Nil, err
	}
	return existing, nil
}

func deleteByContentKeys(ctx context.Context, db *gorm.DB, model any, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	result := db.WithContext(ctx).Where("content_key IN ?", keys).Delete(model)
	return result.RowsAffected, result.Error
}

func withColumns(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// GormCashInRepository implements ledger.CashInRepository using GORM
type GormCashInRepository struct {
	db *gorm.DB
}

// NewGormCashInRepository creates a new GormCashInRepository
func NewGormCashInRepository(db *gorm.DB) *GormCashInRepository {
	return &GormCashInRepository{db: db}
}

// Upsert stores the row under its content key
func (r *GormCashInRepository) Upsert(ctx context.Context, tx *ledger.CashInTransaction) error {
	model := models.CashInModelFromDomain(tx)
	now := time.Now().UTC()
	model.CreatedAt, model.UpdatedAt = now, now
	model.ID = uuid.New()

	existing, err := upsertByContentKey(ctx, r.db, model, models.CashInModel{}.TableName(), tx.ContentKey,
		withColumns(models.EntryColumns, models.CashInColumns...))
	if err != nil {
		return translateError("upsert cash-in row", err)
	}
	tx.ID = model.ID
	if existing != uuid.Nil {
		tx.ID = existing
	}
	return nil
}

// FindByPeriod returns the rows imported for a unit-month
func (r *GormCashInRepository) FindByPeriod(ctx context.Context, unitID uuid.UUID, month time.Time) ([]ledger.CashInTransaction, error) {
	var rows []models.CashInModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND period_month = ?", unitID, ledger.MonthBucket(month)).
		Order("transaction_date ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("find cash-in rows", err)
	}
	out := make([]ledger.CashInTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// DeleteByContentKeys removes rows by content key
func (r *GormCashInRepository) DeleteByContentKeys(ctx context.Context, keys []string) (int64, error) {
	n, err := deleteByContentKeys(ctx, r.db, &models.CashInModel{}, keys)
	return n, translateError("delete cash-in rows", err)
}

// GormCashOutRepository implements ledger.CashOutRepository using GORM
type GormCashOutRepository struct {
	db *gorm.DB
}

// NewGormCashOutRepository creates a new GormCashOutRepository
func NewGormCashOutRepository(db *gorm.DB) *GormCashOutRepository {
	return &GormCashOutRepository{db: db}
}

// Upsert stores the row under its content key
func (r *GormCashOutRepository) Upsert(ctx context.Context, tx *ledger.CashOutTransaction) error {
	model := models.CashOutModelFromDomain(tx)
	now := time.Now().UTC()
	model.CreatedAt, model.UpdatedAt = now, now
	model.ID = uuid.New()

	existing, err := upsertByContentKey(ctx, r.db, model, models.CashOutModel{}.TableName(), tx.ContentKey,
		withColumns(models.EntryColumns, models.CashOutColumns...))
	if err != nil {
		return translateError("upsert cash-out row", err)
	}
	tx.ID = model.ID
	if existing != uuid.Nil {
		tx.ID = existing
	}
	return nil
}

// FindByPeriod returns the rows imported for a unit-month
func (r *GormCashOutRepository) FindByPeriod(ctx context.Context, unitID uuid.UUID, month time.Time) ([]ledger.CashOutTransaction, error) {
	var rows []models.CashOutModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND period_month = ?", unitID, ledger.MonthBucket(month)).
		Order("transaction_date ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("find cash-out rows", err)
	}
	out := make([]ledger.CashOutTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// DeleteByContentKeys removes rows by content key
func (r *GormCashOutRepository) DeleteByContentKeys(ctx context.Context, keys []string) (int64, error) {
	n, err := deleteByContentKeys(ctx, r.db, &models.CashOutModel{}, keys)
	return n, translateError("delete cash-out rows", err)
}

var (
	_ ledger.CashInRepository  = (*GormCashInRepository)(nil)
	_ ledger.CashOutRepository = (*GormCashOutRepository)(nil)
)
