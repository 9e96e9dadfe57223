// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table with a surrogate key
// - ledger.go: units and categories
// - transaction.go: cash-in and cash-out ledger rows
// - inventory.go: items, BOMs, BOM lines and monthly counts
// - guard.go: period guards
package models
