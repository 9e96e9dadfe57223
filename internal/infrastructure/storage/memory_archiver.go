package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/application/ingestion"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
)

var _ ingestion.Archiver = (*MemoryArchiver)(nil)

// ArchivedObject is one payload captured by MemoryArchiver
type ArchivedObject struct {
	Kind   ledger.ReportKind
	UnitID uuid.UUID
	Month  time.Time
	Body   []byte
}

// MemoryArchiver keeps archived payloads in memory. Used in development
// when no bucket is configured, and in tests.
type MemoryArchiver struct {
	mu      sync.Mutex
	objects []ArchivedObject
}

// NewMemoryArchiver creates an empty archiver
func NewMemoryArchiver() *MemoryArchiver {
	return &MemoryArchiver{}
}

// Archive implements ingestion.Archiver
func (m *MemoryArchiver) Archive(_ context.Context, kind ledger.ReportKind, unitID uuid.UUID, month time.Time, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = append(m.objects, ArchivedObject{Kind: kind, UnitID: unitID, Month: month, Body: body})
	return nil
}

// Objects returns a snapshot of everything archived so far
func (m *MemoryArchiver) Objects() []ArchivedObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ArchivedObject(nil), m.objects...)
}
