package ledger

import (
	"strings"

	"github.com/google/uuid"
)

// Unit is an organizational entity whose ledgers are tracked.
// Units are created out-of-band; the engine only references them.
type Unit struct {
	ID        uuid.UUID
	Name      string
	Abbr      string
	ProgramID *uuid.UUID
	Active    bool
}

// DisplayAbbr returns the abbreviation, falling back to the name
func (u Unit) DisplayAbbr() string {
	if a := strings.TrimSpace(u.Abbr); a != "" {
		return a
	}
	return u.Name
}

// Scope narrows a query to a program, a single unit, or both.
// Nil fields mean "any".
type Scope struct {
	ProgramID *uuid.UUID
	UnitID    *uuid.UUID
}

// Matches reports whether u falls inside the scope
func (s Scope) Matches(u Unit) bool {
	if s.UnitID != nil && u.ID != *s.UnitID {
		return false
	}
	if s.ProgramID != nil && (u.ProgramID == nil || *u.ProgramID != *s.ProgramID) {
		return false
	}
	return true
}

// ParseScope validates the raw identifiers. Empty strings mean unscoped.
func ParseScope(programID, unitID string) (Scope, error) {
	var s Scope
	if p := strings.TrimSpace(programID); p != "" {
		id, err := uuid.Parse(p)
		if err != nil {
			return Scope{}, ErrInvalidProgramID.Wrap(err)
		}
		s.ProgramID = &id
	}
	if u := strings.TrimSpace(unitID); u != "" {
		id, err := uuid.Parse(u)
		if err != nil {
			return Scope{}, ErrInvalidUnitID.Wrap(err)
		}
		s.UnitID = &id
	}
	return s, nil
}
