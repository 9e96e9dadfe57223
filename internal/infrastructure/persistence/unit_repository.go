package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUnitRepository implements ledger.UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError("find unit", err)
	}
	return model.ToDomain(), nil
}

// FindByScope returns the units in scope ordered by name
func (r *GormUnitRepository) FindByScope(ctx context.Context, scope ledger.Scope) ([]ledger.Unit, error) {
	query := r.db.WithContext(ctx).Model(&models.UnitModel{})
	if scope.UnitID != nil {
		query = query.Where("id = ?", *scope.UnitID)
	}
	if scope.ProgramID != nil {
		query = query.Where("program_id = ?", *scope.ProgramID)
	}

	var rows []models.UnitModel
	if err := query.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translateError("find units", err)
	}
	units := make([]ledger.Unit, len(rows))
	for i := range rows {
		units[i] = *rows[i].ToDomain()
	}
	return units, nil
}

// Save creates the unit or replaces its attributes
func (r *GormUnitRepository) Save(ctx context.Context, unit *ledger.Unit) error {
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	model := models.UnitModelFromDomain(unit)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "abbr", "program_id", "active", "updated_at"}),
		}).
		Create(model).Error
	return translateError("save unit", err)
}

var _ ledger.UnitRepository = (*GormUnitRepository)(nil)
