package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
)

// Import outcomes reported to a Recorder
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Archiver keeps a copy of accepted payloads. It runs after commit.
type Archiver interface {
	Archive(ctx context.Context, kind ledger.ReportKind, unitID uuid.UUID, month time.Time, payload any) error
}

// Recorder receives one observation per finished import
type Recorder interface {
	ImportFinished(ctx context.Context, kind ledger.ReportKind, outcome string, rows int, elapsed time.Duration)
}

type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, ledger.ReportKind, uuid.UUID, time.Time, any) error {
	return nil
}

type noopRecorder struct{}

func (noopRecorder) ImportFinished(context.Context, ledger.ReportKind, string, int, time.Duration) {}
