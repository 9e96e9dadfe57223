package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
)

// PeriodGuardModel marks a (unit, month, kind) as imported. The composite
// primary key is the fencing constraint.
type PeriodGuardModel struct {
	UnitID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Month     time.Time `gorm:"type:date;primaryKey"`
	Kind      string    `gorm:"type:varchar(20);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PeriodGuardModel) TableName() string {
	return "period_guards"
}

// ToDomain converts the persistence model to a domain PeriodGuard
func (m *PeriodGuardModel) ToDomain() ledger.PeriodGuard {
	return ledger.PeriodGuard{
		UnitID:    m.UnitID,
		Month:     ledger.MonthBucket(m.Month),
		Kind:      ledger.ReportKind(m.Kind),
		CreatedAt: m.CreatedAt,
	}
}

// PeriodGuardModelFromDomain creates a new persistence model from a domain PeriodGuard
func PeriodGuardModelFromDomain(g ledger.PeriodGuard) *PeriodGuardModel {
	return &PeriodGuardModel{
		UnitID:    g.UnitID,
		Month:     ledger.MonthBucket(g.Month),
		Kind:      string(g.Kind),
		CreatedAt: g.CreatedAt,
	}
}
