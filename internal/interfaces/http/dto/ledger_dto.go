package dto

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/application/ingestion"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EnsureRefsRequest lists labels to register before an import
type EnsureRefsRequest struct {
	Assets   []string `json:"assets" binding:"omitempty,max=1000,dive,max=255"`
	Expenses []string `json:"expenses" binding:"omitempty,max=1000,dive,max=255"`
}

// ToRequest converts to the ingestion input
func (r EnsureRefsRequest) ToRequest() ingestion.EnsureRefsRequest {
	return ingestion.EnsureRefsRequest{Assets: r.Assets, Expenses: r.Expenses}
}

// TransactionRow is one submitted ledger line. Only the buckets of the
// report kind are read; the others are ignored.
type TransactionRow struct {
	SourceKey       string `json:"sourceKey" binding:"max=128"`
	TransactionDate string `json:"transactionDate" binding:"omitempty,ledgerdate"`

	CashAmount             decimal.Decimal `json:"cashAmount"`
	SalesAmount            decimal.Decimal `json:"salesAmount"`
	OtherRevenueAmount     decimal.Decimal `json:"otherRevenueAmount"`
	LiabilityAmount        decimal.Decimal `json:"liabilityAmount"`
	OwnersCapitalAmount    decimal.Decimal `json:"ownersCapitalAmount"`
	InventoryAmount        decimal.Decimal `json:"inventoryAmount"`
	OwnersWithdrawalAmount decimal.Decimal `json:"ownersWithdrawalAmount"`

	AssetID     string `json:"assetId" binding:"omitempty,uuid"`
	AssetName   string `json:"assetName" binding:"max=255"`
	ExpenseID   string `json:"expenseId" binding:"omitempty,uuid"`
	ExpenseName string `json:"expenseName" binding:"max=255"`

	// label -> amount
	DynamicAssets   map[string]decimal.Decimal `json:"dynamicAssets"`
	DynamicExpenses map[string]decimal.Decimal `json:"dynamicExpenses"`

	Note      string `json:"note"`
	EnteredBy string `json:"enteredBy" binding:"max=255"`
}

// CashImportRequest is the body of both cash import endpoints
type CashImportRequest struct {
	UnitID       string           `json:"unitId" binding:"omitempty,uuid"`
	PeriodMonth  string           `json:"periodMonth" binding:"omitempty,yyyymm"`
	Transactions []TransactionRow `json:"transactions" binding:"omitempty,dive"`
}

// header validates the unit and month shared by every import
func header(unitID, month string) (uuid.UUID, time.Time, error) {
	if strings.TrimSpace(unitID) == "" || strings.TrimSpace(month) == "" {
		return uuid.Nil, time.Time{}, ledger.ErrMissingFields
	}
	id, err := uuid.Parse(strings.TrimSpace(unitID))
	if err != nil {
		return uuid.Nil, time.Time{}, ledger.ErrInvalidUnitID.Wrap(err)
	}
	m, err := ledger.ParseMonth(month)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	return id, m, nil
}

// ToCashIn converts to the ingestion input
func (r CashImportRequest) ToCashIn() (ingestion.CashInImport, error) {
	id, month, err := header(r.UnitID, r.PeriodMonth)
	if err != nil {
		return ingestion.CashInImport{}, err
	}
	rows := make([]ledger.CashInRow, 0, len(r.Transactions))
	for _, t := range r.Transactions {
		base, err := t.common()
		if err != nil {
			return ingestion.CashInImport{}, err
		}
		rows = append(rows, ledger.CashInRow{
			SourceKey:       base.SourceKey,
			TransactionDate: base.TransactionDate,
			Buckets: ledger.CashInBuckets{
				Cash:          t.CashAmount,
				Sales:         t.SalesAmount,
				OtherRevenue:  t.OtherRevenueAmount,
				Liability:     t.LiabilityAmount,
				OwnersCapital: t.OwnersCapitalAmount,
			},
			Link:      base.Link,
			Splits:    base.Splits,
			Note:      base.Note,
			EnteredBy: base.EnteredBy,
		})
	}
	return ingestion.CashInImport{UnitID: id, PeriodMonth: month, Rows: rows}, nil
}

// ToCashOut converts to the ingestion input
func (r CashImportRequest) ToCashOut() (ingestion.CashOutImport, error) {
	id, month, err := header(r.UnitID, r.PeriodMonth)
	if err != nil {
		return ingestion.CashOutImport{}, err
	}
	rows := make([]ledger.CashOutRow, 0, len(r.Transactions))
	for _, t := range r.Transactions {
		base, err := t.common()
		if err != nil {
			return ingestion.CashOutImport{}, err
		}
		rows = append(rows, ledger.CashOutRow{
			SourceKey:       base.SourceKey,
			TransactionDate: base.TransactionDate,
			Buckets: ledger.CashOutBuckets{
				Cash:             t.CashAmount,
				Inventory:        t.InventoryAmount,
				Liability:        t.LiabilityAmount,
				OwnersWithdrawal: t.OwnersWithdrawalAmount,
			},
			Link:      base.Link,
			Splits:    base.Splits,
			Note:      base.Note,
			EnteredBy: base.EnteredBy,
		})
	}
	return ingestion.CashOutImport{UnitID: id, PeriodMonth: month, Rows: rows}, nil
}

// rowCommon is the part of a row both report kinds share
type rowCommon struct {
	SourceKey       string
	TransactionDate time.Time
	Link            ledger.CategoryLink
	Splits          []ledger.Split
	Note            string
	EnteredBy       string
}

func (t TransactionRow) common() (rowCommon, error) {
	out := rowCommon{
		SourceKey: strings.TrimSpace(t.SourceKey),
		Link: ledger.CategoryLink{
			AssetLabel:   t.AssetName,
			ExpenseLabel: t.ExpenseName,
		},
		Note:      t.Note,
		EnteredBy: t.EnteredBy,
	}
	if strings.TrimSpace(t.TransactionDate) != "" {
		d, err := ledger.ParseDate(t.TransactionDate)
		if err != nil {
			return rowCommon{}, err
		}
		out.TransactionDate = d
	}
	var err error
	if out.Link.AssetID, err = optionalID(t.AssetID); err != nil {
		return rowCommon{}, err
	}
	if out.Link.ExpenseID, err = optionalID(t.ExpenseID); err != nil {
		return rowCommon{}, err
	}
	out.Splits = append(splitsOf(ledger.CategoryKindAsset, t.DynamicAssets),
		splitsOf(ledger.CategoryKindExpense, t.DynamicExpenses)...)
	return out, nil
}

func optionalID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage("Invalid category id").Wrap(err)
	}
	return &id, nil
}

// splitsOf orders labels so merging of equivalent labels is deterministic
func splitsOf(kind ledger.CategoryKind, amounts map[string]decimal.Decimal) []ledger.Split {
	if len(amounts) == 0 {
		return nil
	}
	labels := make([]string, 0, len(amounts))
	for l := range amounts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	out := make([]ledger.Split, 0, len(labels))
	for _, l := range labels {
		out = append(out, ledger.Split{Kind: kind, Label: l, Amount: amounts[l]})
	}
	return out
}

// InventoryItemRequest is item reference data
type InventoryItemRequest struct {
	ItemName               string           `json:"itemName" binding:"required,max=255"`
	ItemPrice              *decimal.Decimal `json:"itemPrice"`
	ItemBeginningInventory *decimal.Decimal `json:"itemBeginningInventory"`
	ItemLessCount          *decimal.Decimal `json:"itemLessCount"`
	BOMName                string           `json:"bomName" binding:"max=255"`
}

// BOMLineRequest is one raw material of a bill of materials
type BOMLineRequest struct {
	BOMName          string          `json:"bomName" binding:"required,max=255"`
	RawMaterialName  string          `json:"rawMaterialName" binding:"required,max=255"`
	RawMaterialQty   decimal.Decimal `json:"rawMaterialQty"`
	RawMaterialPrice decimal.Decimal `json:"rawMaterialPrice"`
}

// ReportLinkRequest carries one item's counts for the reported month
type ReportLinkRequest struct {
	ItemName       string           `json:"itemName" binding:"required,max=255"`
	Month          string           `json:"month" binding:"required,yyyymm"`
	BeginQty       decimal.Decimal  `json:"beginQty"`
	BeginUnitPrice *decimal.Decimal `json:"beginUnitPrice"`
	FinalQty       decimal.Decimal  `json:"finalQty"`
	FinalUnitPrice *decimal.Decimal `json:"finalUnitPrice"`
}

// InventoryImportRequest is the body of the inventory import endpoint
type InventoryImportRequest struct {
	UnitID      string                 `json:"unitId" binding:"omitempty,uuid"`
	Items       []InventoryItemRequest `json:"items" binding:"omitempty,dive"`
	BOMLines    []BOMLineRequest       `json:"bomLines" binding:"omitempty,dive"`
	ReportLinks []ReportLinkRequest    `json:"reportLinks" binding:"omitempty,dive"`
}

// ToImport converts to the ingestion input. The month comes from the links.
func (r InventoryImportRequest) ToImport() (ingestion.InventoryImport, error) {
	if strings.TrimSpace(r.UnitID) == "" {
		return ingestion.InventoryImport{}, ledger.ErrMissingFields
	}
	id, err := uuid.Parse(strings.TrimSpace(r.UnitID))
	if err != nil {
		return ingestion.InventoryImport{}, ledger.ErrInvalidUnitID.Wrap(err)
	}
	in := ingestion.InventoryImport{UnitID: id}
	for _, it := range r.Items {
		in.Items = append(in.Items, ledger.ItemInput{
			Name:               it.ItemName,
			Price:              it.ItemPrice,
			BeginningInventory: it.ItemBeginningInventory,
			LessCount:          it.ItemLessCount,
			BOMName:            it.BOMName,
		})
	}
	for _, b := range r.BOMLines {
		in.BOMLines = append(in.BOMLines, ledger.BOMLineInput{
			BOMName:      b.BOMName,
			MaterialName: b.RawMaterialName,
			Qty:          b.RawMaterialQty,
			Price:        b.RawMaterialPrice,
		})
	}
	for _, l := range r.ReportLinks {
		m, err := ledger.ParseMonth(l.Month)
		if err != nil {
			return ingestion.InventoryImport{}, err
		}
		in.Links = append(in.Links, ledger.ReportLinkInput{
			ItemName:       l.ItemName,
			Month:          m,
			BeginQty:       l.BeginQty,
			BeginUnitPrice: l.BeginUnitPrice,
			FinalQty:       l.FinalQty,
			FinalUnitPrice: l.FinalUnitPrice,
		})
	}
	return in, nil
}

// ReopenQuery identifies the guard to delete
type ReopenQuery struct {
	UnitID string `form:"unitId" binding:"required,uuid"`
	Month  string `form:"month" binding:"required,yyyymm"`
	Kind   string `form:"kind" binding:"required,oneof=cash_in cash_out inventory"`
}

// ToRequest converts to the ingestion input
func (q ReopenQuery) ToRequest() (ingestion.ReopenRequest, error) {
	id, month, err := header(q.UnitID, q.Month)
	if err != nil {
		return ingestion.ReopenRequest{}, err
	}
	kind, err := ledger.ParseReportKind(q.Kind)
	if err != nil {
		return ingestion.ReopenRequest{}, err
	}
	return ingestion.ReopenRequest{UnitID: id, Month: month, Kind: kind}, nil
}

// CategoryListQuery filters the category listing
type CategoryListQuery struct {
	Kind  string `form:"kind" binding:"omitempty,oneof=asset expense"`
	Sort  string `form:"sort"`
	Order string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// CategoryResponse is a canonical category with its derived total
type CategoryResponse struct {
	ID            uuid.UUID       `json:"id"`
	Kind          string          `json:"kind"`
	CanonicalName string          `json:"canonicalName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ToCategoryResponses converts domain categories
func ToCategoryResponses(cats []ledger.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryResponse{
			ID:            c.ID,
			Kind:          string(c.Kind),
			CanonicalName: c.CanonicalName,
			TotalAmount:   c.TotalAmount,
			UpdatedAt:     c.UpdatedAt,
		})
	}
	return out
}
