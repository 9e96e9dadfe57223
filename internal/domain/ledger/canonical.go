package ledger

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SynonymTableVersion identifies the revision of the built-in synonym table.
// Bump it whenever an entry changes so stored canonical names can be audited.
const SynonymTableVersion = "2024.09.1"

// NormalizeLabel applies NFKC, trims, collapses internal whitespace and lowercases
func NormalizeLabel(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Lower(language.Und).String(s)
}

// SynonymTable maps normalized labels onto canonical names per category kind.
// It is immutable once built.
type SynonymTable struct {
	version string
	entries map[CategoryKind]map[string]string
}

// Version returns the table revision
func (t *SynonymTable) Version() string {
	return t.version
}

// Canonical resolves a raw label. Unknown labels canonicalize to their
// normalized form; empty labels return "".
func (t *SynonymTable) Canonical(kind CategoryKind, raw string) string {
	n := NormalizeLabel(raw)
	if n == "" {
		return ""
	}
	if byKind, ok := t.entries[kind]; ok {
		if c, ok := byKind[n]; ok {
			return c
		}
	}
	return n
}

// Len returns the number of synonym entries for kind
func (t *SynonymTable) Len(kind CategoryKind) int {
	return len(t.entries[kind])
}

// NewSynonymTable builds a table from canonical name -> synonyms.
// Keys and synonyms are normalized; each canonical name maps to itself.
func NewSynonymTable(version string, groups map[CategoryKind]map[string][]string) *SynonymTable {
	t := &SynonymTable{
		version: version,
		entries: make(map[CategoryKind]map[string]string, len(groups)),
	}
	for kind, byCanonical := range groups {
		m := make(map[string]string)
		for canonical, synonyms := range byCanonical {
			c := NormalizeLabel(canonical)
			m[c] = c
			for _, s := range synonyms {
				m[NormalizeLabel(s)] = c
			}
		}
		t.entries[kind] = m
	}
	return t
}

var defaultSynonyms = map[CategoryKind]map[string][]string{
	CategoryKindExpense: {
		"utilities":         {"utility", "electricity", "electric bill", "electricity bill", "water", "water bill", "power"},
		"rent":              {"rental", "space rental", "lease", "stall rent"},
		"salaries":          {"salary", "wages", "wage", "payroll", "honorarium", "labor", "labour"},
		"transportation":    {"transport", "transpo", "fare", "delivery", "gas", "fuel", "shipping"},
		"raw materials":     {"raw material", "materials", "ingredients", "supplies", "production supplies"},
		"marketing":         {"advertising", "ads", "promotion", "promotions", "boosting"},
		"communication":     {"internet", "wifi", "load", "mobile load", "phone"},
		"packaging":         {"packaging materials", "packs", "labels"},
		"repairs":           {"repair", "maintenance", "repairs and maintenance"},
		"taxes and permits": {"tax", "taxes", "permit", "permits", "business permit", "licenses"},
		"food":              {"meals", "snacks", "food allowance"},
	},
	CategoryKindAsset: {
		"equipment":          {"equipments", "tools", "machinery", "machine", "machines"},
		"furniture":          {"furnitures", "fixtures", "furniture and fixtures"},
		"vehicle":            {"vehicles", "motorcycle", "tricycle", "van"},
		"property":           {"building", "land", "land and building"},
		"computer equipment": {"computer", "computers", "laptop", "laptops", "printer"},
		"kitchen equipment":  {"stove", "oven", "refrigerator", "freezer", "ref"},
	},
}

// DefaultSynonymTable returns the built-in table
func DefaultSynonymTable() *SynonymTable {
	return NewSynonymTable(SynonymTableVersion, defaultSynonyms)
}
