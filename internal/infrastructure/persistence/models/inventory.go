package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BOMModel is the persistence model for a bill of materials
type BOMModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null"`
	NameKey string `gorm:"type:varchar(200);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (BOMModel) TableName() string {
	return "boms"
}

// BeforeCreate assigns an ID to new rows
func (m *BOMModel) BeforeCreate(*gorm.DB) error {
	m.ensureID()
	return nil
}

// ToDomain converts the persistence model to a domain BOM
func (m *BOMModel) ToDomain() *ledger.BOM {
	return &ledger.BOM{ID: m.ID, Name: m.Name, NameKey: m.NameKey}
}

// BOMLineModel is one raw material of a BOM, unique per (bom, material key)
type BOMLineModel struct {
	BaseModel
	BOMID        uuid.UUID       `gorm:"column:bom_id;type:uuid;not null;uniqueIndex:idx_bom_line_material,priority:1"`
	MaterialName string          `gorm:"type:varchar(200);not null"`
	MaterialKey  string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_bom_line_material,priority:2"`
	Qty          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Price        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BOMLineModel) TableName() string {
	return "bom_lines"
}

// BeforeCreate assigns an ID to new rows
func (m *BOMLineModel) BeforeCreate(*gorm.DB) error {
	m.ensureID()
	return nil
}

// BOMLineModelFromDomain creates a new persistence model from a domain BOMLine
func BOMLineModelFromDomain(l *ledger.BOMLine) *BOMLineModel {
	m := &BOMLineModel{
		BOMID:        l.BOMID,
		MaterialName: l.MaterialName,
		MaterialKey:  l.MaterialKey,
		Qty:          l.Qty,
		Price:        l.Price,
	}
	m.ID = l.ID
	return m
}

// ItemModel is the persistence model for a stock-keeping item
type ItemModel struct {
	BaseModel
	Name               string          `gorm:"type:varchar(200);not null"`
	NameKey            string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Price              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BeginningInventory decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LessCount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BOMID              *uuid.UUID      `gorm:"column:bom_id;type:uuid;index"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// BeforeCreate assigns an ID to new rows
func (m *ItemModel) BeforeCreate(*gorm.DB) error {
	m.ensureID()
	return nil
}

// ToDomain converts the persistence model to a domain Item
func (m *ItemModel) ToDomain() *ledger.Item {
	return &ledger.Item{
		ID:                 m.ID,
		Name:               m.Name,
		NameKey:            m.NameKey,
		Price:              m.Price,
		BeginningInventory: m.BeginningInventory,
		LessCount:          m.LessCount,
		BOMID:              m.BOMID,
	}
}

// InventoryCountModel is the begin/final count of one item for one unit-month
type InventoryCountModel struct {
	BaseModel
	UnitID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_count_unit_month,priority:1"`
	Month          time.Time        `gorm:"type:date;not null;index:idx_count_unit_month,priority:2"`
	ItemID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	BeginQty       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	BeginUnitPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	FinalQty       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	FinalUnitPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ContentKey     string           `gorm:"type:varchar(64);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (InventoryCountModel) TableName() string {
	return "inventory_counts"
}

// BeforeCreate assigns an ID to new rows
func (m *InventoryCountModel) BeforeCreate(*gorm.DB) error {
	m.ensureID()
	return nil
}

// InventoryCountColumns are updated in place on re-submission
var InventoryCountColumns = []string{
	"item_id", "begin_qty", "begin_unit_price", "final_qty", "final_unit_price", "updated_at",
}

// ToDomain converts the persistence model to a domain InventoryCount
func (m *InventoryCountModel) ToDomain() *ledger.InventoryCount {
	return &ledger.InventoryCount{
		ID:             m.ID,
		UnitID:         m.UnitID,
		Month:          ledger.MonthBucket(m.Month),
		ItemID:         m.ItemID,
		BeginQty:       m.BeginQty,
		BeginUnitPrice: m.BeginUnitPrice,
		FinalQty:       m.FinalQty,
		FinalUnitPrice: m.FinalUnitPrice,
		ContentKey:     m.ContentKey,
	}
}

// InventoryCountModelFromDomain creates a new persistence model from a domain InventoryCount
func InventoryCountModelFromDomain(c *ledger.InventoryCount) *InventoryCountModel {
	m := &InventoryCountModel{
		UnitID:         c.UnitID,
		Month:          ledger.MonthBucket(c.Month),
		ItemID:         c.ItemID,
		BeginQty:       c.BeginQty,
		BeginUnitPrice: c.BeginUnitPrice,
		FinalQty:       c.FinalQty,
		FinalUnitPrice: c.FinalUnitPrice,
		ContentKey:     c.ContentKey,
	}
	m.ID = c.ID
	return m
}
