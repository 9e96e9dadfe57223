package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const keySeparator = "\x1f"

func hashParts(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, keySeparator)))
	return hex.EncodeToString(sum[:])
}

func amountParts(amounts []decimal.Decimal) []string {
	out := make([]string, len(amounts))
	for i, a := range amounts {
		out[i] = a.StringFixed(4)
	}
	return out
}

// Fingerprint identifies a row's content independent of its position
type Fingerprint struct {
	UnitID   uuid.UUID
	Period   time.Time
	Kind     ReportKind
	Date     time.Time
	Amounts  []decimal.Decimal
	Category string
	Note     string
}

func (f Fingerprint) digest() string {
	parts := []string{
		f.UnitID.String(),
		MonthBucket(f.Period).Format("2006-01-02"),
		string(f.Kind),
		f.Date.UTC().Format("2006-01-02"),
		NormalizeLabel(f.Category),
		strings.TrimSpace(f.Note),
	}
	parts = append(parts, amountParts(f.Amounts)...)
	return hashParts(parts...)
}

// KeyBuilder derives content keys for one payload. Identical rows within
// the same payload receive an occurrence suffix so they stay distinct while
// re-imports of the same payload produce the same keys.
type KeyBuilder struct {
	seen map[string]int
}

// NewKeyBuilder creates a builder for one payload
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{seen: make(map[string]int)}
}

// Derive returns the key for a row. A non-empty source key takes precedence
// and is namespaced by unit and kind.
func (b *KeyBuilder) Derive(sourceKey string, f Fingerprint) string {
	if s := strings.TrimSpace(sourceKey); s != "" {
		return hashParts("src", f.UnitID.String(), string(f.Kind), s)
	}
	d := f.digest()
	n := b.seen[d]
	b.seen[d] = n + 1
	return hashParts("row", d, strconv.Itoa(n))
}

// SplitKey derives the key of one split row from its parent's key
func SplitKey(parentKey string, s Split) string {
	return hashParts("split", parentKey, string(s.Kind), NormalizeLabel(s.Label))
}

// CashInFingerprint builds the fingerprint of a cash-in row
func CashInFingerprint(unitID uuid.UUID, period time.Time, r CashInRow) Fingerprint {
	return Fingerprint{
		UnitID:   unitID,
		Period:   period,
		Kind:     ReportKindCashIn,
		Date:     r.TransactionDate,
		Amounts:  r.Buckets.amounts(),
		Category: r.Link.AssetLabel + "|" + r.Link.ExpenseLabel + "|" + idString(r.Link.AssetID) + "|" + idString(r.Link.ExpenseID),
		Note:     r.Note,
	}
}

// CashOutFingerprint builds the fingerprint of a cash-out row
func CashOutFingerprint(unitID uuid.UUID, period time.Time, r CashOutRow) Fingerprint {
	return Fingerprint{
		UnitID:   unitID,
		Period:   period,
		Kind:     ReportKindCashOut,
		Date:     r.TransactionDate,
		Amounts:  r.Buckets.amounts(),
		Category: r.Link.AssetLabel + "|" + r.Link.ExpenseLabel + "|" + idString(r.Link.AssetID) + "|" + idString(r.Link.ExpenseID),
		Note:     r.Note,
	}
}

// InventoryKey is the content key of an inventory count (one per unit, month, item)
func InventoryKey(unitID uuid.UUID, month time.Time, itemKey string) string {
	return hashParts("inv", unitID.String(), MonthBucket(month).Format("2006-01-02"), itemKey)
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
