package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/health"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFactSource implements health.FactSource with read-only queries over
// the ledger tables
type GormFactSource struct {
	db *gorm.DB
}

// NewGormFactSource creates a new GormFactSource
func NewGormFactSource(db *gorm.DB) *GormFactSource {
	return &GormFactSource{db: db}
}

// scoped restricts query to the units of q and the window on column
func scoped(query *gorm.DB, q health.FactQuery, unitColumn, dateColumn string) *gorm.DB {
	query = query.Where(unitColumn+" IN ?", q.UnitIDs)
	if q.Window.From != nil {
		query = query.Where(dateColumn+" >= ?", q.Window.From.UTC())
	}
	if q.Window.To != nil {
		query = query.Where(dateColumn+" < ?", q.Window.To.UTC())
	}
	return query
}

func cashDateColumn(b health.DateBasis) string {
	if b == health.BasisTransactionDate {
		return "transaction_date"
	}
	return "period_month"
}

// CashInFacts loads cash-in rows of the scoped units
func (s *GormFactSource) CashInFacts(ctx context.Context, q health.FactQuery) ([]health.CashInFact, error) {
	if len(q.UnitIDs) == 0 {
		return nil, nil
	}
	var rows []models.CashInModel
	query := scoped(s.db.WithContext(ctx).Model(&models.CashInModel{}), q, "unit_id", cashDateColumn(q.Basis))
	if err := query.Order("period_month ASC").Find(&rows).Error; err != nil {
		return nil, translateError("load cash-in facts", err)
	}
	out := make([]health.CashInFact, len(rows))
	for i := range rows {
		tx := rows[i].ToDomain()
		out[i] = health.CashInFact{
			UnitID:          tx.UnitID,
			PeriodMonth:     tx.PeriodMonth,
			TransactionDate: tx.TransactionDate,
			Buckets:         tx.Buckets,
		}
	}
	return out, nil
}

// CashOutFacts loads cash-out rows of the scoped units
func (s *GormFactSource) CashOutFacts(ctx context.Context, q health.FactQuery) ([]health.CashOutFact, error) {
	if len(q.UnitIDs) == 0 {
		return nil, nil
	}
	var rows []models.CashOutModel
	query := scoped(s.db.WithContext(ctx).Model(&models.CashOutModel{}), q, "unit_id", cashDateColumn(q.Basis))
	if err := query.Order("period_month ASC").Find(&rows).Error; err != nil {
		return nil, translateError("load cash-out facts", err)
	}
	out := make([]health.CashOutFact, len(rows))
	for i := range rows {
		tx := rows[i].ToDomain()
		out[i] = health.CashOutFact{
			UnitID:          tx.UnitID,
			PeriodMonth:     tx.PeriodMonth,
			TransactionDate: tx.TransactionDate,
			Buckets:         tx.Buckets,
		}
	}
	return out, nil
}

// inventoryFactRow is the scan target of the counts x items join
type inventoryFactRow struct {
	UnitID         uuid.UUID
	Month          time.Time
	ItemID         uuid.UUID
	ItemName       string
	ItemPrice      decimal.Decimal
	BeginQty       decimal.Decimal
	BeginUnitPrice *decimal.Decimal
	FinalQty       decimal.Decimal
	FinalUnitPrice *decimal.Decimal
}

// InventoryFacts loads counts of the scoped units joined with their items
func (s *GormFactSource) InventoryFacts(ctx context.Context, q health.FactQuery) ([]health.InventoryFact, error) {
	if len(q.UnitIDs) == 0 {
		return nil, nil
	}
	var rows []inventoryFactRow
	query := s.db.WithContext(ctx).
		Table("inventory_counts AS c").
		Select("c.unit_id, c.month, c.item_id, i.name AS item_name, i.price AS item_price, " +
			"c.begin_qty, c.begin_unit_price, c.final_qty, c.final_unit_price").
		Joins("JOIN items AS i ON i.id = c.item_id")
	query = scoped(query, q, "c.unit_id", "c.month")
	if err := query.Order("c.month ASC").Order("i.name ASC").Scan(&rows).Error; err != nil {
		return nil, translateError("load inventory facts", err)
	}
	out := make([]health.InventoryFact, len(rows))
	for i, r := range rows {
		out[i] = health.InventoryFact{
			UnitID:         r.UnitID,
			Month:          ledger.MonthBucket(r.Month),
			ItemID:         r.ItemID,
			ItemName:       r.ItemName,
			ItemPrice:      r.ItemPrice,
			BeginQty:       r.BeginQty,
			BeginUnitPrice: r.BeginUnitPrice,
			FinalQty:       r.FinalQty,
			FinalUnitPrice: r.FinalUnitPrice,
		}
	}
	return out, nil
}

// GuardFacts loads the period guards of the scoped units
func (s *GormFactSource) GuardFacts(ctx context.Context, q health.FactQuery) ([]health.GuardFact, error) {
	if len(q.UnitIDs) == 0 {
		return nil, nil
	}
	var rows []models.PeriodGuardModel
	query := scoped(s.db.WithContext(ctx).Model(&models.PeriodGuardModel{}), q, "unit_id", "month")
	if err := query.Order("month ASC").Find(&rows).Error; err != nil {
		return nil, translateError("load guard facts", err)
	}
	out := make([]health.GuardFact, len(rows))
	for i := range rows {
		g := rows[i].ToDomain()
		out[i] = health.GuardFact{UnitID: g.UnitID, Month: g.Month, Kind: g.Kind}
	}
	return out, nil
}

var _ health.FactSource = (*GormFactSource)(nil)
