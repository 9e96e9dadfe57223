package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models with a
// surrogate key
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ensureID assigns a new ID when the model has none
func (m *BaseModel) ensureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// All returns every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&UnitModel{},
		&CategoryModel{},
		&CashInModel{},
		&CashOutModel{},
		&BOMModel{},
		&BOMLineModel{},
		&ItemModel{},
		&InventoryCountModel{},
		&PeriodGuardModel{},
	}
}
