package persistence

import (
	"context"

	"github.com/hotteokboki/lseed-project/internal/application/ingestion"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormTransactionScope implements ingestion.TransactionScope using GORM transactions.
// Every repository handed to fn shares the same transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ingestion.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Units() ledger.UnitRepository {
	return NewGormUnitRepository(r.tx)
}

func (r *gormTransactionalRepositories) Categories() ledger.CategoryRepository {
	return NewGormCategoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) CashIn() ledger.CashInRepository {
	return NewGormCashInRepository(r.tx)
}

func (r *gormTransactionalRepositories) CashOut() ledger.CashOutRepository {
	return NewGormCashOutRepository(r.tx)
}

func (r *gormTransactionalRepositories) Inventory() ledger.InventoryRepository {
	return NewGormInventoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) Guards() ledger.GuardRepository {
	return NewGormGuardRepository(r.tx)
}

func (r *gormTransactionalRepositories) Locker() ledger.PeriodLocker {
	return NewPeriodLocker(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ ingestion.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ ingestion.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
