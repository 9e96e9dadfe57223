package ingestion

import (
	"context"

	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
)

// TransactionScope runs ingestion work inside one database transaction.
// If fn returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are repositories bound to the same transaction
type TransactionalRepositories interface {
	Units() ledger.UnitRepository
	Categories() ledger.CategoryRepository
	CashIn() ledger.CashInRepository
	CashOut() ledger.CashOutRepository
	Inventory() ledger.InventoryRepository
	Guards() ledger.GuardRepository
	// Locker takes the transaction-scoped serialization token
	Locker() ledger.PeriodLocker
}
