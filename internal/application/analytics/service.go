// Package analytics loads ledger facts for a scope and window and shapes
// them into the dashboard views.
package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/health"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Query selects units and a half-open date window. In Degrade mode load
// failures produce empty results instead of errors.
type Query struct {
	Scope   ledger.Scope
	Window  ledger.Window
	Degrade bool
}

// sources selects which fact tables a view needs
type sources struct {
	cashIn, cashOut, inventory, guards bool
}

var (
	allSources       = sources{cashIn: true, cashOut: true, inventory: true, guards: true}
	cashSources      = sources{cashIn: true, cashOut: true}
	inventorySources = sources{inventory: true}
)

// Service computes health views on demand. Nothing it derives is stored.
type Service struct {
	units       ledger.UnitRepository
	facts       health.FactSource
	logger      *zap.Logger
	observer    DegradeObserver
	openingCash decimal.Decimal
}

// DegradeObserver is told about every view served empty in degrade mode
type DegradeObserver interface {
	DegradedRead(ctx context.Context, view string)
}

// NewService creates an analytics service
func NewService(units ledger.UnitRepository, facts health.FactSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{units: units, facts: facts, logger: logger}
}

// SetDefaultOpeningCash sets the opening balance used when a cash-flow
// request does not pass one
func (s *Service) SetDefaultOpeningCash(v decimal.Decimal) {
	s.openingCash = v
}

// SetDegradeObserver registers o for degraded reads
func (s *Service) SetDegradeObserver(o DegradeObserver) {
	s.observer = o
}

// load resolves the scope to units, then reads the needed fact tables
// concurrently
func (s *Service) load(ctx context.Context, q Query, basis health.DateBasis, need sources) (_ []ledger.Unit, _ health.Facts, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "load",
		telemetry.WithAttribute(telemetry.SpanAttrProgramID, scopeAttr(q.Scope.ProgramID)),
		telemetry.WithAttribute(telemetry.SpanAttrUnitID, scopeAttr(q.Scope.UnitID)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	units, err := s.units.FindByScope(ctx, q.Scope)
	if err != nil {
		return nil, health.Facts{}, err
	}
	if len(units) == 0 {
		return units, health.Facts{}, nil
	}

	ids := make([]uuid.UUID, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	fq := health.FactQuery{UnitIDs: ids, Window: q.Window, Basis: basis}

	var f health.Facts
	g, gctx := errgroup.WithContext(ctx)
	if need.cashIn {
		g.Go(func() error {
			rows, err := s.facts.CashInFacts(gctx, fq)
			f.CashIn = rows
			return err
		})
	}
	if need.cashOut {
		g.Go(func() error {
			rows, err := s.facts.CashOutFacts(gctx, fq)
			f.CashOut = rows
			return err
		})
	}
	if need.inventory {
		g.Go(func() error {
			rows, err := s.facts.InventoryFacts(gctx, fq)
			f.Inventory = rows
			return err
		})
	}
	if need.guards {
		g.Go(func() error {
			rows, err := s.facts.GuardFacts(gctx, fq)
			f.Guards = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, health.Facts{}, err
	}
	return units, f, nil
}

func scopeAttr(id *uuid.UUID) string {
	if id == nil {
		return "all"
	}
	return id.String()
}

// degrade swallows err for dashboard panels
func (s *Service) degrade(ctx context.Context, q Query, view string, err error) error {
	if err == nil || !q.Degrade {
		return err
	}
	s.logger.Warn("Serving empty view after load failure", zap.String("view", view), zap.Error(err))
	telemetry.SetAttributes(telemetry.SpanFromContext(ctx), telemetry.SpanAttrDegraded, true, telemetry.SpanAttrView, view)
	if s.observer != nil {
		s.observer.DegradedRead(ctx, view)
	}
	return nil
}

// Monthly returns the per unit-month aggregates
func (s *Service) Monthly(ctx context.Context, q Query) ([]health.MonthlyAggregate, error) {
	_, f, err := s.load(ctx, q, health.BasisPeriod, allSources)
	if err != nil {
		return []health.MonthlyAggregate{}, s.degrade(ctx, q, "monthly", err)
	}
	return health.ComputeMonthly(f), nil
}

// Scores bands every unit in scope, worst first
func (s *Service) Scores(ctx context.Context, q Query) ([]health.HealthScore, []health.MonthlyAggregate, error) {
	units, f, err := s.load(ctx, q, health.BasisPeriod, allSources)
	if err != nil {
		return []health.HealthScore{}, nil, s.degrade(ctx, q, "scores", err)
	}
	aggs := health.ComputeMonthly(f)
	return health.ScoreAll(units, aggs), aggs, nil
}

// Heatmap returns the unit by indicator grid
func (s *Service) Heatmap(ctx context.Context, q Query) (health.Heatmap, error) {
	scores, aggs, err := s.Scores(ctx, q)
	if err != nil {
		return health.Heatmap{Months: []string{}}, err
	}
	return health.BuildHeatmap(scores, aggs), nil
}

// CategoryHealth returns per-indicator health counts
func (s *Service) CategoryHealth(ctx context.Context, q Query) (health.Overview, error) {
	scores, _, err := s.Scores(ctx, q)
	if err != nil {
		return health.BuildOverview(nil), err
	}
	return health.BuildOverview(scores), nil
}

// Flagged returns eligible units with more than two red indicators
func (s *Service) Flagged(ctx context.Context, q Query) ([]health.HealthScore, error) {
	scores, _, err := s.Scores(ctx, q)
	if err != nil {
		return []health.HealthScore{}, err
	}
	return health.FlaggedUnits(scores), nil
}

// CashFlow returns the waterfall by transaction-date month. A nil opening
// balance uses the configured default.
func (s *Service) CashFlow(ctx context.Context, q Query, opening *decimal.Decimal) ([]health.CashFlowPoint, error) {
	_, f, err := s.load(ctx, q, health.BasisTransactionDate, cashSources)
	if err != nil {
		return []health.CashFlowPoint{}, s.degrade(ctx, q, "cash-flow", err)
	}
	start := s.openingCash
	if opening != nil {
		start = *opening
	}
	return health.Waterfall(health.CashFlowMonths(f), start), nil
}

// InventoryTurnover returns the monthly turnover trend
func (s *Service) InventoryTurnover(ctx context.Context, q Query) ([]health.TurnoverPoint, error) {
	_, f, err := s.load(ctx, q, health.BasisPeriod, inventorySources)
	if err != nil {
		return []health.TurnoverPoint{}, s.degrade(ctx, q, "inventory-turnover", err)
	}
	return health.TurnoverTrend(f.Inventory), nil
}

// TopItemsOptions tunes the top-moving items view
type TopItemsOptions struct {
	Metric       health.MoveMetric
	IncludeZeros bool
	IncludeMeta  bool
}

// TopItemsResult is the ranked item list plus optional period metadata
type TopItemsResult struct {
	Items []health.ItemMovement
	Meta  *health.InventoryMeta
}

// TopItems ranks items by outbound movement. Meta covers every month with
// inventory data in scope, regardless of the window.
func (s *Service) TopItems(ctx context.Context, q Query, opts TopItemsOptions) (*TopItemsResult, error) {
	empty := &TopItemsResult{Items: []health.ItemMovement{}}
	_, f, err := s.load(ctx, q, health.BasisPeriod, inventorySources)
	if err != nil {
		return empty, s.degrade(ctx, q, "top-items", err)
	}
	res := &TopItemsResult{Items: health.TopMovingItems(f.Inventory, opts.Metric, opts.IncludeZeros)}
	if opts.IncludeMeta {
		all := q
		all.Window = ledger.Window{}
		_, mf, err := s.load(ctx, all, health.BasisPeriod, inventorySources)
		if err != nil {
			return empty, s.degrade(ctx, q, "top-items", err)
		}
		meta := health.BuildInventoryMeta(mf.Inventory)
		res.Meta = &meta
	}
	return res, nil
}

// KPIs returns portfolio finance totals
func (s *Service) KPIs(ctx context.Context, q Query) (health.FinanceKPIs, error) {
	units, f, err := s.load(ctx, q, health.BasisPeriod, allSources)
	if err != nil {
		return health.ComputeKPIs(health.Facts{}, 0), s.degrade(ctx, q, "kpis", err)
	}
	return health.ComputeKPIs(f, len(units)), nil
}

// CapitalFlows returns financing movements per reporting month
func (s *Service) CapitalFlows(ctx context.Context, q Query) ([]health.CapitalFlow, error) {
	_, f, err := s.load(ctx, q, health.BasisPeriod, cashSources)
	if err != nil {
		return []health.CapitalFlow{}, s.degrade(ctx, q, "capital-flows", err)
	}
	return health.CapitalFlows(health.PeriodMonths(f)), nil
}

// NetCash returns net cash per reporting month
func (s *Service) NetCash(ctx context.Context, q Query) ([]health.NetCash, error) {
	_, f, err := s.load(ctx, q, health.BasisPeriod, cashSources)
	if err != nil {
		return []health.NetCash{}, s.degrade(ctx, q, "net-cash", err)
	}
	return health.NetCashSeries(health.PeriodMonths(f)), nil
}

// Seasonality returns revenue per calendar month
func (s *Service) Seasonality(ctx context.Context, q Query) ([]health.SeasonalRevenue, error) {
	_, f, err := s.load(ctx, q, health.BasisPeriod, sources{cashIn: true})
	if err != nil {
		return []health.SeasonalRevenue{}, s.degrade(ctx, q, "seasonality", err)
	}
	return health.Seasonality(f), nil
}

// StarTrend returns the monthly star rating of each unit; limit > 0 keeps
// the best units only
func (s *Service) StarTrend(ctx context.Context, q Query, limit int) ([]health.StarPoint, error) {
	units, f, err := s.load(ctx, q, health.BasisPeriod, allSources)
	if err != nil {
		return []health.StarPoint{}, s.degrade(ctx, q, "star-trend", err)
	}
	return health.StarTrend(units, health.ComputeMonthly(f), limit), nil
}
