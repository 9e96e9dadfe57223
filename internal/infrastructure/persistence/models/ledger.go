package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnitModel is the persistence model for the out-of-band unit registry
type UnitModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Abbr      string     `gorm:"type:varchar(50);not null;default:''"`
	ProgramID *uuid.UUID `gorm:"type:uuid;index"`
	Active    bool       `gorm:"not null"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit
func (m *UnitModel) ToDomain() *ledger.Unit {
	return &ledger.Unit{
		ID:        m.ID,
		Name:      m.Name,
		Abbr:      m.Abbr,
		ProgramID: m.ProgramID,
		Active:    m.Active,
	}
}

// FromDomain populates the persistence model from a domain Unit
func (m *UnitModel) FromDomain(u *ledger.Unit) {
	m.ID = u.ID
	m.Name = u.Name
	m.Abbr = u.Abbr
	m.ProgramID = u.ProgramID
	m.Active = u.Active
}

// UnitModelFromDomain creates a new persistence model from a domain Unit
func UnitModelFromDomain(u *ledger.Unit) *UnitModel {
	m := &UnitModel{}
	m.FromDomain(u)
	return m
}

// CategoryModel is the persistence model for canonical asset and expense
// categories. (kind, canonical_name) is unique.
type CategoryModel struct {
	BaseModel
	Kind          string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_category_kind_name,priority:1"`
	CanonicalName string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_category_kind_name,priority:2"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// BeforeCreate assigns an ID to rows created through ON CONFLICT inserts
func (m *CategoryModel) BeforeCreate(*gorm.DB) error {
	m.ensureID()
	return nil
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *ledger.Category {
	return &ledger.Category{
		ID:            m.ID,
		Kind:          ledger.CategoryKind(m.Kind),
		CanonicalName: m.CanonicalName,
		TotalAmount:   m.TotalAmount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
