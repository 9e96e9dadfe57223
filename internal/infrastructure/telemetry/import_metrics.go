package telemetry

import (
	"context"
	"time"

	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"go.opentelemetry.io/otel/metric"
)

// ImportMetrics records one observation per finished import and per
// analytics read. It satisfies ingestion.Recorder.
type ImportMetrics struct {
	imports       *Counter
	rows          *Counter
	duration      *Histogram
	degradedReads *Counter
}

// NewImportMetrics creates the import instruments on meter
func NewImportMetrics(meter metric.Meter) (*ImportMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	imports, err := NewCounter(meter, "ledger_imports_total",
		"Monthly report imports by kind and outcome", "{import}")
	if err != nil {
		return nil, err
	}
	rows, err := NewCounter(meter, "ledger_import_rows_total",
		"Rows submitted in monthly report imports", "{row}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "ledger_import_duration_seconds",
		Description: "Time from lock acquisition to commit or rollback",
		Unit:        "s",
		Boundaries:  ImportDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	degraded, err := NewCounter(meter, "ledger_analytics_degraded_total",
		"Analytics reads answered with an empty result after a storage failure", "{read}")
	if err != nil {
		return nil, err
	}

	return &ImportMetrics{
		imports:       imports,
		rows:          rows,
		duration:      duration,
		degradedReads: degraded,
	}, nil
}

// ImportFinished records a finished import. Rejected payloads never reach
// storage and are not timed.
func (m *ImportMetrics) ImportFinished(ctx context.Context, kind ledger.ReportKind, outcome string, rows int, elapsed time.Duration) {
	kindAttr := AttrReportKind.String(string(kind))
	m.imports.Inc(ctx, kindAttr, AttrOutcome.String(outcome))
	m.rows.Add(ctx, int64(rows), kindAttr, AttrOutcome.String(outcome))
	if elapsed > 0 {
		m.duration.RecordDuration(ctx, elapsed, kindAttr, AttrOutcome.String(outcome))
	}
}

// DegradedRead counts an analytics view served empty in degrade mode
func (m *ImportMetrics) DegradedRead(ctx context.Context, view string) {
	m.degradedReads.Inc(ctx, AttrView.String(view))
}
