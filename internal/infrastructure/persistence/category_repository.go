package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCategoryRepository implements ledger.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find category", err)
	}
	return model.ToDomain(), nil
}

// FindByKind returns every category of a kind ordered by name
func (r *GormCategoryRepository) FindByKind(ctx context.Context, kind ledger.CategoryKind) ([]ledger.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("kind = ?", string(kind)).
		Order("canonical_name ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("find categories", err)
	}
	out := make([]ledger.Category, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CategoryListQuery filters and orders the category listing. Unknown sort
// fields fall back to canonical_name.
type CategoryListQuery struct {
	Kind    ledger.CategoryKind
	SortBy  string
	SortDir string
}

// List returns categories for the listing endpoint
func (r *GormCategoryRepository) List(ctx context.Context, q CategoryListQuery) ([]ledger.Category, error) {
	field := ValidateSortField(q.SortBy, CategorySortFields, "canonical_name")
	dir := "ASC"
	if q.SortDir != "" {
		dir = ValidateSortOrder(q.SortDir)
	}
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{})
	if q.Kind != "" {
		query = query.Where("kind = ?", string(q.Kind))
	}
	var rows []models.CategoryModel
	if err := query.Order(field + " " + dir).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translateError("list categories", err)
	}
	out := make([]ledger.Category, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// GetOrCreate inserts the category unless (kind, canonical_name) exists and
// returns the stored row either way
func (r *GormCategoryRepository) GetOrCreate(ctx context.Context, kind ledger.CategoryKind, canonicalName string) (*ledger.Category, error) {
	now := time.Now().UTC()
	model := &models.CategoryModel{Kind: string(kind), CanonicalName: canonicalName}
	model.CreatedAt = now
	model.UpdatedAt = now

	// ON CONFLICT makes concurrent first use of the same label safe
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "canonical_name"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		return nil, translateError("create category", err)
	}

	var stored models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND canonical_name = ?", string(kind), canonicalName).
		First(&stored).Error; err != nil {
		return nil, translateError("find category", err)
	}
	return stored.ToDomain(), nil
}

// RecomputeTotals rebuilds total_amount of the given categories from every
// linked cash-in and cash-out row
func (r *GormCategoryRepository) RecomputeTotals(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	inSum := strings.Join(models.CashInColumns, " + ")
	outSum := strings.Join(models.CashOutColumns, " + ")
	total := gorm.Expr(
		"COALESCE((SELECT SUM("+inSum+") FROM cash_in_transactions WHERE category_id = categories.id), 0) + "+
			"COALESCE((SELECT SUM("+outSum+") FROM cash_out_transactions WHERE category_id = categories.id), 0)",
	)
	err := r.db.WithContext(ctx).
		Model(&models.CategoryModel{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"total_amount": total,
			"updated_at":   time.Now().UTC(),
		}).Error
	return translateError("recompute category totals", err)
}

var _ ledger.CategoryRepository = (*GormCategoryRepository)(nil)
