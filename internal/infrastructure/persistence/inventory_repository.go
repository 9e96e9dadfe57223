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

// GormInventoryRepository implements ledger.InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// GetOrCreateBOM returns the BOM with the normalized name, creating it if needed
func (r *GormInventoryRepository) GetOrCreateBOM(ctx context.Context, name string) (*ledger.BOM, error) {
	key := ledger.NormalizeLabel(name)
	model := &models.BOMModel{Name: strings.TrimSpace(name), NameKey: key}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name_key"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		return nil, translateError("create bom", err)
	}

	var stored models.BOMModel
	if err := r.db.WithContext(ctx).Where("name_key = ?", key).First(&stored).Error; err != nil {
		return nil, translateError("find bom", err)
	}
	return stored.ToDomain(), nil
}

// UpsertBOMLine stores the line, replacing qty and price of an existing
// (bom, material) pair
func (r *GormInventoryRepository) UpsertBOMLine(ctx context.Context, line *ledger.BOMLine) error {
	model := models.BOMLineModelFromDomain(line)
	if model.MaterialKey == "" {
		model.MaterialKey = ledger.NormalizeLabel(line.MaterialName)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bom_id"}, {Name: "material_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"material_name", "qty", "price", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return translateError("upsert bom line", err)
	}
	line.ID = model.ID
	line.MaterialKey = model.MaterialKey
	return nil
}

// EnsureItem creates the item if its name key is new, then applies the
// non-nil fields of in. A nil bomID keeps the stored BOM link.
func (r *GormInventoryRepository) EnsureItem(ctx context.Context, in ledger.ItemInput, bomID *uuid.UUID) (*ledger.Item, error) {
	key := ledger.NormalizeLabel(in.Name)
	create := &models.ItemModel{Name: strings.TrimSpace(in.Name), NameKey: key, BOMID: bomID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name_key"}},
			DoNothing: true,
		}).
		Create(create).Error; err != nil {
		return nil, translateError("create item", err)
	}

	updates := map[string]any{}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.BeginningInventory != nil {
		updates["beginning_inventory"] = *in.BeginningInventory
	}
	if in.LessCount != nil {
		updates["less_count"] = *in.LessCount
	}
	if bomID != nil {
		updates["bom_id"] = *bomID
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		if err := r.db.WithContext(ctx).
			Model(&models.ItemModel{}).
			Where("name_key = ?", key).
			Updates(updates).Error; err != nil {
			return nil, translateError("update item", err)
		}
	}

	var stored models.ItemModel
	if err := r.db.WithContext(ctx).Where("name_key = ?", key).First(&stored).Error; err != nil {
		return nil, translateError("find item", err)
	}
	return stored.ToDomain(), nil
}

// FindItemByName looks an item up by its normalized name
func (r *GormInventoryRepository) FindItemByName(ctx context.Context, name string) (*ledger.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("name_key = ?", ledger.NormalizeLabel(name)).
		First(&model).Error; err != nil {
		return nil, translateError("find item", err)
	}
	return model.ToDomain(), nil
}

// UpsertCount stores the count under its content key
func (r *GormInventoryRepository) UpsertCount(ctx context.Context, count *ledger.InventoryCount) error {
	model := models.InventoryCountModelFromDomain(count)
	now := time.Now().UTC()
	model.CreatedAt, model.UpdatedAt = now, now
	model.ID = uuid.New()

	existing, err := upsertByContentKey(ctx, r.db, model, models.InventoryCountModel{}.TableName(),
		count.ContentKey, models.InventoryCountColumns)
	if err != nil {
		return translateError("upsert inventory count", err)
	}
	count.ID = model.ID
	if existing != uuid.Nil {
		count.ID = existing
	}
	return nil
}

// FindCountsByPeriod returns the counts of a unit-month
func (r *GormInventoryRepository) FindCountsByPeriod(ctx context.Context, unitID uuid.UUID, month time.Time) ([]ledger.InventoryCount, error) {
	var rows []models.InventoryCountModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND month = ?", unitID, ledger.MonthBucket(month)).
		Find(&rows).Error; err != nil {
		return nil, translateError("find inventory counts", err)
	}
	out := make([]ledger.InventoryCount, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// DeleteCountsByContentKeys removes counts by content key
func (r *GormInventoryRepository) DeleteCountsByContentKeys(ctx context.Context, keys []string) (int64, error) {
	n, err := deleteByContentKeys(ctx, r.db, &models.InventoryCountModel{}, keys)
	return n, translateError("delete inventory counts", err)
}

var _ ledger.InventoryRepository = (*GormInventoryRepository)(nil)
