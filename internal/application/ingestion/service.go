package ingestion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultLockTimeout bounds how long an import waits for a concurrent import
// of the same period
const DefaultLockTimeout = 30 * time.Second

// Service imports monthly cash-in, cash-out and inventory reports. Every
// import runs in one transaction and is fenced by a period guard.
type Service struct {
	scope       TransactionScope
	registry    *Registry
	locks       *keyedMutex
	archiver    Archiver
	recorder    Recorder
	logger      *zap.Logger
	lockTimeout time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry replaces the default label registry
func WithRegistry(r *Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithArchiver sets where accepted payloads are copied after commit
func WithArchiver(a Archiver) Option {
	return func(s *Service) {
		if a != nil {
			s.archiver = a
		}
	}
}

// WithRecorder sets the import metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLockTimeout bounds the wait for the in-process period lock; zero waits
// as long as the request context allows
func WithLockTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.lockTimeout = d
	}
}

// NewService creates an ingestion service
func NewService(scope TransactionScope, opts ...Option) *Service {
	s := &Service{
		scope:       scope,
		registry:    NewRegistry(nil),
		locks:       newKeyedMutex(),
		archiver:    noopArchiver{},
		recorder:    noopRecorder{},
		logger:      zap.NewNop(),
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the label registry used by the service
func (s *Service) Registry() *Registry {
	return s.registry
}

// EnsureRefs registers asset and expense labels and returns their ids keyed
// by lowercased label
func (s *Service) EnsureRefs(ctx context.Context, req EnsureRefsRequest) (*EnsureRefsResult, error) {
	res := &EnsureRefsResult{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		res.AssetMap, err = s.registry.ResolveAll(ctx, repos.Categories(), req.Assets, ledger.CategoryKindAsset)
		if err != nil {
			return err
		}
		res.ExpenseMap, err = s.registry.ResolveAll(ctx, repos.Categories(), req.Expenses, ledger.CategoryKindExpense)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ImportCashIn reconciles one month of cash-in rows for a unit
func (s *Service) ImportCashIn(ctx context.Context, in CashInImport) (*ImportResult, error) {
	kind := ledger.ReportKindCashIn
	if in.UnitID == uuid.Nil || in.PeriodMonth.IsZero() {
		return nil, s.reject(ctx, kind, len(in.Rows), ledger.ErrMissingFields)
	}
	period := ledger.MonthBucket(in.PeriodMonth)
	plan, err := planCashIn(in.UnitID, period, in.Rows)
	if err != nil {
		return nil, s.reject(ctx, kind, len(in.Rows), err)
	}

	result := &ImportResult{}
	err = s.importPeriod(ctx, kind, in.UnitID, period, len(in.Rows), func(ctx context.Context, repos TransactionalRepositories) error {
		existing, err := repos.CashIn().FindByPeriod(ctx, in.UnitID, period)
		if err != nil {
			return err
		}
		previous := keySet{}
		affected := categorySet{}
		for _, e := range existing {
			previous.add(e.ContentKey)
			affected.add(e.CategoryID)
		}

		current := keySet{}
		for _, p := range plan {
			mode, categoryID, err := s.categoryFor(ctx, repos.Categories(), p.link, p.split)
			if err != nil {
				return err
			}
			row := &ledger.CashInTransaction{Entry: p.entry(in.UnitID, period, mode, categoryID), Buckets: p.buckets}
			if err := repos.CashIn().Upsert(ctx, row); err != nil {
				return err
			}
			current.add(p.key)
			affected.add(categoryID)
		}

		removed, err := repos.CashIn().DeleteByContentKeys(ctx, previous.missingFrom(current))
		if err != nil {
			return err
		}
		result.Upserted = len(plan)
		result.Removed = int(removed)
		return repos.Categories().RecomputeTotals(ctx, affected.ids())
	})
	if err != nil {
		return nil, err
	}
	s.archive(ctx, kind, in.UnitID, period, in)
	return result, nil
}

// ImportCashOut reconciles one month of cash-out rows for a unit
func (s *Service) ImportCashOut(ctx context.Context, in CashOutImport) (*ImportResult, error) {
	kind := ledger.ReportKindCashOut
	if in.UnitID == uuid.Nil || in.PeriodMonth.IsZero() {
		return nil, s.reject(ctx, kind, len(in.Rows), ledger.ErrMissingFields)
	}
	period := ledger.MonthBucket(in.PeriodMonth)
	plan, err := planCashOut(in.UnitID, period, in.Rows)
	if err != nil {
		return nil, s.reject(ctx, kind, len(in.Rows), err)
	}

	result := &ImportResult{}
	err = s.importPeriod(ctx, kind, in.UnitID, period, len(in.Rows), func(ctx context.Context, repos TransactionalRepositories) error {
		existing, err := repos.CashOut().FindByPeriod(ctx, in.UnitID, period)
		if err != nil {
			return err
		}
		previous := keySet{}
		affected := categorySet{}
		for _, e := range existing {
			previous.add(e.ContentKey)
			affected.add(e.CategoryID)
		}

		current := keySet{}
		for _, p := range plan {
			mode, categoryID, err := s.categoryFor(ctx, repos.Categories(), p.link, p.split)
			if err != nil {
				return err
			}
			row := &ledger.CashOutTransaction{Entry: p.entry(in.UnitID, period, mode, categoryID), Buckets: p.buckets}
			if err := repos.CashOut().Upsert(ctx, row); err != nil {
				return err
			}
			current.add(p.key)
			affected.add(categoryID)
		}

		removed, err := repos.CashOut().DeleteByContentKeys(ctx, previous.missingFrom(current))
		if err != nil {
			return err
		}
		result.Upserted = len(plan)
		result.Removed = int(removed)
		return repos.Categories().RecomputeTotals(ctx, affected.ids())
	})
	if err != nil {
		return nil, err
	}
	s.archive(ctx, kind, in.UnitID, period, in)
	return result, nil
}

// ImportInventory upserts item reference data and the counts of one month.
// Every report link must target the same month.
func (s *Service) ImportInventory(ctx context.Context, in InventoryImport) (*InventoryResult, error) {
	kind := ledger.ReportKindInventory
	rows := len(in.Items) + len(in.BOMLines) + len(in.Links)
	if in.UnitID == uuid.Nil {
		return nil, s.reject(ctx, kind, rows, ledger.ErrMissingFields)
	}
	month, err := ledger.SingleMonth(in.Links)
	if err != nil {
		return nil, s.reject(ctx, kind, rows, err)
	}

	result := &InventoryResult{}
	err = s.importPeriod(ctx, kind, in.UnitID, month, rows, func(ctx context.Context, repos TransactionalRepositories) error {
		inv := repos.Inventory()
		boms := make(map[string]uuid.UUID)
		bomID := func(name string) (uuid.UUID, error) {
			name = ledger.BOMNameOrDefault(name)
			key := ledger.NormalizeLabel(name)
			if id, ok := boms[key]; ok {
				return id, nil
			}
			b, err := inv.GetOrCreateBOM(ctx, strings.TrimSpace(name))
			if err != nil {
				return uuid.Nil, err
			}
			boms[key] = b.ID
			return b.ID, nil
		}

		items := make(map[string]*ledger.Item)
		for _, it := range in.Items {
			if ledger.NormalizeLabel(it.Name) == "" {
				continue
			}
			// a blank BOM name keeps the item's current BOM
			var link *uuid.UUID
			if ledger.NormalizeLabel(it.BOMName) != "" {
				id, err := bomID(it.BOMName)
				if err != nil {
					return err
				}
				link = &id
			}
			item, err := inv.EnsureItem(ctx, it, link)
			if err != nil {
				return err
			}
			items[item.NameKey] = item
			result.UpsertedItems++
		}

		for _, l := range in.BOMLines {
			key := ledger.NormalizeLabel(l.MaterialName)
			if key == "" {
				continue
			}
			id, err := bomID(l.BOMName)
			if err != nil {
				return err
			}
			line := &ledger.BOMLine{
				BOMID:        id,
				MaterialName: strings.TrimSpace(l.MaterialName),
				MaterialKey:  key,
				Qty:          l.Qty,
				Price:        l.Price,
			}
			if err := inv.UpsertBOMLine(ctx, line); err != nil {
				return err
			}
			result.InsertedBOMLines++
		}

		existing, err := inv.FindCountsByPeriod(ctx, in.UnitID, month)
		if err != nil {
			return err
		}
		previous := keySet{}
		for _, c := range existing {
			previous.add(c.ContentKey)
		}

		current := keySet{}
		for _, l := range in.Links {
			nameKey := ledger.NormalizeLabel(l.ItemName)
			if nameKey == "" {
				continue
			}
			item, ok := items[nameKey]
			if !ok {
				item, err = inv.FindItemByName(ctx, l.ItemName)
				if errors.Is(err, shared.ErrNotFound) {
					s.logger.Debug("Skipping report link to unknown item",
						zap.String("unit_id", in.UnitID.String()),
						zap.String("item", l.ItemName))
					continue
				}
				if err != nil {
					return err
				}
				items[nameKey] = item
			}
			count := &ledger.InventoryCount{
				UnitID:         in.UnitID,
				Month:          month,
				ItemID:         item.ID,
				BeginQty:       l.BeginQty,
				BeginUnitPrice: l.BeginUnitPrice,
				FinalQty:       l.FinalQty,
				FinalUnitPrice: l.FinalUnitPrice,
				ContentKey:     ledger.InventoryKey(in.UnitID, month, nameKey),
			}
			if err := inv.UpsertCount(ctx, count); err != nil {
				return err
			}
			if _, dup := current[count.ContentKey]; !dup {
				result.Linked++
			}
			current.add(count.ContentKey)
		}

		removed, err := inv.DeleteCountsByContentKeys(ctx, previous.missingFrom(current))
		if err != nil {
			return err
		}
		result.Removed = int(removed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.archive(ctx, kind, in.UnitID, month, in)
	return result, nil
}

// ReopenPeriod removes the guard of a (unit, month, kind) so a corrected
// report can be imported. Stored rows stay until that import supersedes them.
func (s *Service) ReopenPeriod(ctx context.Context, req ReopenRequest) error {
	if req.UnitID == uuid.Nil || req.Month.IsZero() {
		return ledger.ErrMissingFields
	}
	if !req.Kind.IsValid() {
		return ledger.ErrInvalidKind
	}
	month := ledger.MonthBucket(req.Month)
	key := ledger.LockKey(req.Kind, req.UnitID, month)
	err := s.withPeriodLock(ctx, key, func(ctx context.Context) error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			if err := repos.Locker().Lock(ctx, key); err != nil {
				return err
			}
			deleted, err := repos.Guards().Delete(ctx, req.UnitID, month, req.Kind)
			if err != nil {
				return err
			}
			if !deleted {
				return shared.ErrNotFound.WithMessage("No import recorded for this unit, month and kind")
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("Period reopened",
		zap.String("unit_id", req.UnitID.String()),
		zap.String("month", ledger.FormatMonth(month)),
		zap.String("kind", string(req.Kind)))
	return nil
}

// importPeriod serializes on the period key, then runs work between the
// unit and guard checks and the final guard insert in one transaction
func (s *Service) importPeriod(
	ctx context.Context,
	kind ledger.ReportKind,
	unitID uuid.UUID,
	month time.Time,
	rows int,
	work func(ctx context.Context, repos TransactionalRepositories) error,
) error {
	start := time.Now()
	key := ledger.LockKey(kind, unitID, month)

	ctx, span := telemetry.StartServiceSpan(ctx, "ingestion", string(kind),
		telemetry.WithAttribute(telemetry.SpanAttrReportKind, string(kind)),
		telemetry.WithAttribute(telemetry.SpanAttrUnitID, unitID),
		telemetry.WithAttribute(telemetry.SpanAttrMonth, month.Format("2006-01")),
		telemetry.WithAttribute(telemetry.SpanAttrRows, rows),
	)
	defer span.End()

	err := s.withPeriodLock(ctx, key, func(ctx context.Context) error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			if err := repos.Locker().Lock(ctx, key); err != nil {
				return err
			}
			if _, err := repos.Units().FindByID(ctx, unitID); err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return ledger.ErrInvalidUnit
				}
				return err
			}
			exists, err := repos.Guards().Exists(ctx, unitID, month, kind)
			if err != nil {
				return err
			}
			if exists {
				return ledger.ErrDuplicatePeriod
			}
			if err := work(ctx, repos); err != nil {
				return err
			}
			inserted, err := repos.Guards().Insert(ctx, ledger.NewPeriodGuard(unitID, month, kind))
			if err != nil {
				return err
			}
			if !inserted {
				return ledger.ErrDuplicatePeriod
			}
			return nil
		})
	})

	outcome := outcomeOf(err)
	telemetry.SetAttributes(span, "outcome", outcome)
	if outcome == OutcomeFailed {
		telemetry.RecordError(span, err)
	}
	s.recorder.ImportFinished(ctx, kind, outcome, rows, time.Since(start))
	fields := []zap.Field{
		zap.String("lock_key", key),
		zap.Int("rows", rows),
		zap.Duration("elapsed", time.Since(start)),
	}
	switch outcome {
	case OutcomeAccepted:
		s.logger.Info("Import accepted", fields...)
	case OutcomeFailed:
		s.logger.Error("Import failed", append(fields, zap.Error(err))...)
	default:
		s.logger.Warn("Import rejected", append(fields, zap.Error(err))...)
	}
	return err
}

// withPeriodLock holds the in-process lock for key while fn runs
func (s *Service) withPeriodLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}
	unlock, err := s.locks.Lock(lockCtx, key)
	if err != nil {
		return shared.ErrConcurrencyConflict.
			WithMessage("Timed out waiting for another import of the same period").
			Wrap(err)
	}
	defer unlock()
	return fn(ctx)
}

// categoryFor resolves the category of a planned row
func (s *Service) categoryFor(ctx context.Context, repo ledger.CategoryRepository, link ledger.CategoryLink, split *ledger.Split) (ledger.RowMode, *uuid.UUID, error) {
	if split != nil {
		ref, err := s.registry.Resolve(ctx, repo, split.Label, split.Kind)
		if err != nil {
			return "", nil, err
		}
		return ledger.SplitMode(*split), ref.IDPtr(), nil
	}
	return s.registry.resolveLink(ctx, repo, link)
}

// reject records a payload refused before any storage access
func (s *Service) reject(ctx context.Context, kind ledger.ReportKind, rows int, err error) error {
	s.recorder.ImportFinished(ctx, kind, OutcomeRejected, rows, 0)
	s.logger.Warn("Import rejected", zap.String("kind", string(kind)), zap.Int("rows", rows), zap.Error(err))
	return err
}

// archive copies an accepted payload; failures are logged only
func (s *Service) archive(ctx context.Context, kind ledger.ReportKind, unitID uuid.UUID, month time.Time, payload any) {
	if err := s.archiver.Archive(ctx, kind, unitID, month, payload); err != nil {
		s.logger.Warn("Failed to archive import payload",
			zap.String("kind", string(kind)),
			zap.String("unit_id", unitID.String()),
			zap.Error(err))
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeAccepted
	}
	if errors.Is(err, ledger.ErrDuplicatePeriod) {
		return OutcomeDuplicate
	}
	var integrity *shared.IntegrityError
	if errors.As(err, &integrity) {
		return OutcomeRejected
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return OutcomeRejected
	}
	return OutcomeFailed
}
