package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryModel holds the columns shared by cash-in and cash-out rows
type EntryModel struct {
	BaseModel
	UnitID          uuid.UUID  `gorm:"type:uuid;not null;index:,composite:unit_period,priority:1"`
	PeriodMonth     time.Time  `gorm:"type:date;not null;index:,composite:unit_period,priority:2"`
	TransactionDate time.Time  `gorm:"type:date;not null;index"`
	Mode            string     `gorm:"type:varchar(20);not null"`
	CategoryID      *uuid.UUID `gorm:"type:uuid;index"`
	Note            string     `gorm:"type:text;not null;default:''"`
	EnteredBy       string     `gorm:"type:varchar(200);not null;default:''"`
	ContentKey      string     `gorm:"type:varchar(64);not null;uniqueIndex"`
}

func (m *EntryModel) toDomain() ledger.Entry {
	return ledger.Entry{
		ID:              m.ID,
		UnitID:          m.UnitID,
		PeriodMonth:     ledger.MonthBucket(m.PeriodMonth),
		TransactionDate: m.TransactionDate.UTC(),
		Mode:            ledger.RowMode(m.Mode),
		CategoryID:      m.CategoryID,
		Note:            m.Note,
		EnteredBy:       m.EnteredBy,
		ContentKey:      m.ContentKey,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (m *EntryModel) fromDomain(e ledger.Entry) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
	m.UnitID = e.UnitID
	m.PeriodMonth = ledger.MonthBucket(e.PeriodMonth)
	m.TransactionDate = e.TransactionDate.UTC()
	m.Mode = string(e.Mode)
	m.CategoryID = e.CategoryID
	m.Note = e.Note
	m.EnteredBy = e.EnteredBy
	m.ContentKey = e.ContentKey
}

// EntryColumns are updated in place when a content key is re-submitted
var EntryColumns = []string{
	"period_month", "transaction_date", "mode", "category_id", "note", "entered_by", "updated_at",
}

// CashInModel is the persistence model for cash-in ledger rows
type CashInModel struct {
	EntryModel
	Cash          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Sales         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherRevenue  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Liability     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OwnersCapital decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (CashInModel) TableName() string {
	return "cash_in_transactions"
}

// BeforeCreate assigns an ID to new rows
func (m *CashInModel) BeforeCreate(*gorm.DB) error {
	m.ensureID()
	return nil
}

// CashInColumns are the bucket columns of cash_in_transactions
var CashInColumns = []string{"cash", "sales", "other_revenue", "liability", "owners_capital"}

// ToDomain converts the persistence model to a domain CashInTransaction
func (m *CashInModel) ToDomain() *ledger.CashInTransaction {
	return &ledger.CashInTransaction{
		Entry: m.toDomain(),
		Buckets: ledger.CashInBuckets{
			Cash:          m.Cash,
			Sales:         m.Sales,
			OtherRevenue:  m.OtherRevenue,
			Liability:     m.Liability,
			OwnersCapital: m.OwnersCapital,
		},
	}
}

// CashInModelFromDomain creates a new persistence model from a domain CashInTransaction
func CashInModelFromDomain(tx *ledger.CashInTransaction) *CashInModel {
	m := &CashInModel{
		Cash:          tx.Buckets.Cash,
		Sales:         tx.Buckets.Sales,
		OtherRevenue:  tx.Buckets.OtherRevenue,
		Liability:     tx.Buckets.Liability,
		OwnersCapital: tx.Buckets.OwnersCapital,
	}
	m.fromDomain(tx.Entry)
	return m
}

// CashOutModel is the persistence model for cash-out ledger rows
type CashOutModel struct {
	EntryModel
	Cash             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Inventory        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Liability        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OwnersWithdrawal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (CashOutModel) TableName() string {
	return "cash_out_transactions"
}

// BeforeCreate assigns an ID to new rows
func (m *CashOutModel) BeforeCreate(*gorm.DB) error {
	m.ensureID()
	return nil
}

// CashOutColumns are the bucket columns of cash_out_transactions
var CashOutColumns = []string{"cash", "inventory", "liability", "owners_withdrawal"}

// ToDomain converts the persistence model to a domain CashOutTransaction
func (m *CashOutModel) ToDomain() *ledger.CashOutTransaction {
	return &ledger.CashOutTransaction{
		Entry: m.toDomain(),
		Buckets: ledger.CashOutBuckets{
			Cash:             m.Cash,
			Inventory:        m.Inventory,
			Liability:        m.Liability,
			OwnersWithdrawal: m.OwnersWithdrawal,
		},
	}
}

// CashOutModelFromDomain creates a new persistence model from a domain CashOutTransaction
func CashOutModelFromDomain(tx *ledger.CashOutTransaction) *CashOutModel {
	m := &CashOutModel{
		Cash:             tx.Buckets.Cash,
		Inventory:        tx.Buckets.Inventory,
		Liability:        tx.Buckets.Liability,
		OwnersWithdrawal: tx.Buckets.OwnersWithdrawal,
	}
	m.fromDomain(tx.Entry)
	return m
}
