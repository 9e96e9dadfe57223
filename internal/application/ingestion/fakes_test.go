package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory ledger. Execute serializes transactions and
// restores the previous state when fn fails.
type memStore struct {
	mu         sync.Mutex
	units      map[uuid.UUID]ledger.Unit
	categories map[uuid.UUID]ledger.Category
	cashIn     map[string]ledger.CashInTransaction
	cashOut    map[string]ledger.CashOutTransaction
	boms       map[string]ledger.BOM
	bomLines   map[string]ledger.BOMLine
	items      map[string]ledger.Item
	counts     map[string]ledger.InventoryCount
	guards     map[string]ledger.PeriodGuard
	locks      []string
	failOn     string
}

func newMemStore(units ...ledger.Unit) *memStore {
	s := &memStore{
		units:      make(map[uuid.UUID]ledger.Unit),
		categories: make(map[uuid.UUID]ledger.Category),
		cashIn:     make(map[string]ledger.CashInTransaction),
		cashOut:    make(map[string]ledger.CashOutTransaction),
		boms:       make(map[string]ledger.BOM),
		bomLines:   make(map[string]ledger.BOMLine),
		items:      make(map[string]ledger.Item),
		counts:     make(map[string]ledger.InventoryCount),
		guards:     make(map[string]ledger.PeriodGuard),
	}
	for _, u := range units {
		s.units[u.ID] = u
	}
	return s
}

var errInjected = errors.New("injected failure")

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories, cashIn, cashOut := cloneMap(s.categories), cloneMap(s.cashIn), cloneMap(s.cashOut)
	boms, bomLines, items := cloneMap(s.boms), cloneMap(s.bomLines), cloneMap(s.items)
	counts, guards := cloneMap(s.counts), cloneMap(s.guards)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(memRepos{s}); err != nil {
		s.categories, s.cashIn, s.cashOut = categories, cashIn, cashOut
		s.boms, s.bomLines, s.items = boms, bomLines, items
		s.counts, s.guards = counts, guards
		return err
	}
	return nil
}

func (s *memStore) guardCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.guards)
}

func (s *memStore) categoryByName(kind ledger.CategoryKind, name string) (ledger.Category, bool) {
	for _, c := range s.categories {
		if c.Kind == kind && c.CanonicalName == name {
			return c, true
		}
	}
	return ledger.Category{}, false
}

type memRepos struct{ s *memStore }

func (r memRepos) Units() ledger.UnitRepository { return memUnits{r.s} }
func (r memRepos) Categories() ledger.CategoryRepository { return memCategories{r.s} }
func (r memRepos) CashIn() ledger.CashInRepository { return memCashIn{r.s} }
func (r memRepos) CashOut() ledger.CashOutRepository { return memCashOut{r.s} }
func (r memRepos) Inventory() ledger.InventoryRepository { return memInventory{r.s} }
func (r memRepos) Guards() ledger.GuardRepository { return memGuards{r.s} }
func (r memRepos) Locker() ledger.PeriodLocker { return memLocker{r.s} }

type memUnits struct{ s *memStore }

func (m memUnits) FindByID(_ context.Context, id uuid.UUID) (*ledger.Unit, error) {
	u, ok := m.s.units[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (m memUnits) FindByScope(_ context.Context, scope ledger.Scope) ([]ledger.Unit, error) {
	var out []ledger.Unit
	for _, u := range m.s.units {
		if scope.Matches(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m memUnits) Save(_ context.Context, u *ledger.Unit) error {
	m.s.units[u.ID] = *u
	return nil
}

type memCategories struct{ s *memStore }

func (m memCategories) GetOrCreate(_ context.Context, kind ledger.CategoryKind, name string) (*ledger.Category, error) {
	if m.s.failOn == "category" {
		return nil, errInjected
	}
	if c, ok := m.s.categoryByName(kind, name); ok {
		return &c, nil
	}
	c := ledger.Category{ID: uuid.New(), Kind: kind, CanonicalName: name}
	m.s.categories[c.ID] = c
	return &c, nil
}

func (m memCategories) FindByID(_ context.Context, id uuid.UUID) (*ledger.Category, error) {
	c, ok := m.s.categories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (m memCategories) FindByKind(_ context.Context, kind ledger.CategoryKind) ([]ledger.Category, error) {
	var out []ledger.Category
	for _, c := range m.s.categories {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memCategories) RecomputeTotals(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		c, ok := m.s.categories[id]
		if !ok {
			continue
		}
		total := decimal.Zero
		for _, r := range m.s.cashIn {
			if r.CategoryID != nil && *r.CategoryID == id {
				total = total.Add(r.Buckets.Total())
			}
		}
		for _, r := range m.s.cashOut {
			if r.CategoryID != nil && *r.CategoryID == id {
				total = total.Add(r.Buckets.Total())
			}
		}
		c.TotalAmount = total
		m.s.categories[id] = c
	}
	return nil
}

type memCashIn struct{ s *memStore }

func (m memCashIn) Upsert(_ context.Context, tx *ledger.CashInTransaction) error {
	if prev, ok := m.s.cashIn[tx.ContentKey]; ok {
		tx.ID = prev.ID
	} else if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	m.s.cashIn[tx.ContentKey] = *tx
	return nil
}

func (m memCashIn) FindByPeriod(_ context.Context, unitID uuid.UUID, month time.Time) ([]ledger.CashInTransaction, error) {
	var out []ledger.CashInTransaction
	for _, r := range m.s.cashIn {
		if r.UnitID == unitID && r.PeriodMonth.Equal(month) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memCashIn) DeleteByContentKeys(_ context.Context, keys []string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := m.s.cashIn[k]; ok {
			delete(m.s.cashIn, k)
			n++
		}
	}
	return n, nil
}

type memCashOut struct{ s *memStore }

func (m memCashOut) Upsert(_ context.Context, tx *ledger.CashOutTransaction) error {
	if prev, ok := m.s.cashOut[tx.ContentKey]; ok {
		tx.ID = prev.ID
	} else if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	m.s.cashOut[tx.ContentKey] = *tx
	return nil
}

func (m memCashOut) FindByPeriod(_ context.Context, unitID uuid.UUID, month time.Time) ([]ledger.CashOutTransaction, error) {
	var out []ledger.CashOutTransaction
	for _, r := range m.s.cashOut {
		if r.UnitID == unitID && r.PeriodMonth.Equal(month) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memCashOut) DeleteByContentKeys(_ context.Context, keys []string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := m.s.cashOut[k]; ok {
			delete(m.s.cashOut, k)
			n++
		}
	}
	return n, nil
}

type memInventory struct{ s *memStore }

func (m memInventory) GetOrCreateBOM(_ context.Context, name string) (*ledger.BOM, error) {
	key := ledger.NormalizeLabel(name)
	if b, ok := m.s.boms[key]; ok {
		return &b, nil
	}
	b := ledger.BOM{ID: uuid.New(), Name: name, NameKey: key}
	m.s.boms[key] = b
	return &b, nil
}

func (m memInventory) UpsertBOMLine(_ context.Context, line *ledger.BOMLine) error {
	m.s.bomLines[line.BOMID.String()+"|"+line.MaterialKey] = *line
	return nil
}

func (m memInventory) EnsureItem(_ context.Context, in ledger.ItemInput, bomID *uuid.UUID) (*ledger.Item, error) {
	key := ledger.NormalizeLabel(in.Name)
	it, ok := m.s.items[key]
	if !ok {
		it = ledger.Item{ID: uuid.New(), Name: in.Name, NameKey: key}
	}
	if in.Price != nil {
		it.Price = *in.Price
	}
	if in.BeginningInventory != nil {
		it.BeginningInventory = *in.BeginningInventory
	}
	if in.LessCount != nil {
		it.LessCount = *in.LessCount
	}
	if bomID != nil {
		it.BOMID = bomID
	}
	m.s.items[key] = it
	return &it, nil
}

func (m memInventory) FindItemByName(_ context.Context, name string) (*ledger.Item, error) {
	it, ok := m.s.items[ledger.NormalizeLabel(name)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &it, nil
}

func (m memInventory) UpsertCount(_ context.Context, c *ledger.InventoryCount) error {
	m.s.counts[c.ContentKey] = *c
	return nil
}

func (m memInventory) FindCountsByPeriod(_ context.Context, unitID uuid.UUID, month time.Time) ([]ledger.InventoryCount, error) {
	var out []ledger.InventoryCount
	for _, c := range m.s.counts {
		if c.UnitID == unitID && c.Month.Equal(month) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memInventory) DeleteCountsByContentKeys(_ context.Context, keys []string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := m.s.counts[k]; ok {
			delete(m.s.counts, k)
			n++
		}
	}
	return n, nil
}

type memGuards struct{ s *memStore }

func guardKey(unitID uuid.UUID, month time.Time, kind ledger.ReportKind) string {
	return ledger.LockKey(kind, unitID, month)
}

func (m memGuards) Insert(_ context.Context, g ledger.PeriodGuard) (bool, error) {
	if m.s.failOn == "guard" {
		return false, errInjected
	}
	k := guardKey(g.UnitID, g.Month, g.Kind)
	if _, ok := m.s.guards[k]; ok {
		return false, nil
	}
	m.s.guards[k] = g
	return true, nil
}

func (m memGuards) Exists(_ context.Context, unitID uuid.UUID, month time.Time, kind ledger.ReportKind) (bool, error) {
	_, ok := m.s.guards[guardKey(unitID, month, kind)]
	return ok, nil
}

func (m memGuards) Delete(_ context.Context, unitID uuid.UUID, month time.Time, kind ledger.ReportKind) (bool, error) {
	k := guardKey(unitID, month, kind)
	if _, ok := m.s.guards[k]; !ok {
		return false, nil
	}
	delete(m.s.guards, k)
	return true, nil
}

type memLocker struct{ s *memStore }

func (m memLocker) Lock(_ context.Context, key string) error {
	m.s.locks = append(m.s.locks, key)
	return nil
}

// MockRecorder is a mock implementation of Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ImportFinished(ctx context.Context, kind ledger.ReportKind, outcome string, rows int, elapsed time.Duration) {
	m.Called(ctx, kind, outcome, rows, elapsed)
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, kind ledger.ReportKind, unitID uuid.UUID, month time.Time, payload any) error {
	args := m.Called(ctx, kind, unitID, month, payload)
	return args.Error(0)
}

var (
	_ TransactionScope          = (*memStore)(nil)
	_ TransactionalRepositories = memRepos{}
)
