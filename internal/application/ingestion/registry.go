package ingestion

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
)

// Registry resolves free-text labels to canonical category references.
// It holds no connection of its own; callers pass the repository of the
// transaction they are working in.
type Registry struct {
	table *ledger.SynonymTable
}

// NewRegistry creates a registry over a synonym table. A nil table uses the
// built-in one.
func NewRegistry(table *ledger.SynonymTable) *Registry {
	if table == nil {
		table = ledger.DefaultSynonymTable()
	}
	return &Registry{table: table}
}

// Version returns the synonym table revision in use
func (r *Registry) Version() string {
	return r.table.Version()
}

// Resolve returns the canonical reference for raw. Blank labels resolve to
// the uncategorized reference without touching storage.
func (r *Registry) Resolve(ctx context.Context, repo ledger.CategoryRepository, raw string, kind ledger.CategoryKind) (ledger.CategoryRef, error) {
	canonical := r.table.Canonical(kind, raw)
	if canonical == "" {
		return ledger.Uncategorized(kind), nil
	}
	cat, err := repo.GetOrCreate(ctx, kind, canonical)
	if err != nil {
		return ledger.CategoryRef{}, err
	}
	return ledger.CategoryRef{ID: cat.ID, Kind: cat.Kind, Name: cat.CanonicalName}, nil
}

// ResolveAll resolves a batch of labels. The result is keyed by the
// lowercased label exactly as sent, so callers can look up their own
// strings; blank labels are skipped.
func (r *Registry) ResolveAll(ctx context.Context, repo ledger.CategoryRepository, labels []string, kind ledger.CategoryKind) (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(labels))
	byCanonical := make(map[string]uuid.UUID)
	for _, raw := range labels {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		key := strings.ToLower(raw)
		if _, done := out[key]; done {
			continue
		}
		canonical := r.table.Canonical(kind, raw)
		if id, ok := byCanonical[canonical]; ok {
			out[key] = id
			continue
		}
		ref, err := r.Resolve(ctx, repo, raw, kind)
		if err != nil {
			return nil, err
		}
		byCanonical[canonical] = ref.ID
		out[key] = ref.ID
	}
	return out, nil
}

// resolveLink resolves the category of a single-amount row. Explicit ids are
// trusted and checked by the foreign key.
func (r *Registry) resolveLink(ctx context.Context, repo ledger.CategoryRepository, link ledger.CategoryLink) (ledger.RowMode, *uuid.UUID, error) {
	mode := ledger.ClassifyRow(link)
	var (
		id    *uuid.UUID
		label string
	)
	switch mode {
	case ledger.RowModeAssetLinked:
		id, label = link.AssetID, link.AssetLabel
	case ledger.RowModeExpenseLinked:
		id, label = link.ExpenseID, link.ExpenseLabel
	default:
		return mode, nil, nil
	}
	if id != nil {
		return mode, id, nil
	}
	kind, _ := mode.CategoryKind()
	ref, err := r.Resolve(ctx, repo, label, kind)
	if err != nil {
		return mode, nil, err
	}
	return mode, ref.IDPtr(), nil
}
