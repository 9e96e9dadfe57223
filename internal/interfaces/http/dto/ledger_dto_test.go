package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUnit = "6b0c2a1e-8d1f-4c33-9a57-2f1f5d0f6a10"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCashImportRequest_ToCashIn(t *testing.T) {
	body := `{
		"unitId": "` + testUnit + `",
		"periodMonth": "2024-03",
		"transactions": [
			{"sourceKey": "r1", "transactionDate": "2024-03-05", "salesAmount": 1000, "cashAmount": "25.50", "assetName": "Store Front", "note": "weekly"},
			{"transactionDate": "03/09/2024", "dynamicAssets": {"Tools": 40, "Equipment": 60}}
		]
	}`
	var req CashImportRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	in, err := req.ToCashIn()
	require.NoError(t, err)

	assert.Equal(t, testUnit, in.UnitID.String())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), in.PeriodMonth)
	require.Len(t, in.Rows, 2)

	first := in.Rows[0]
	assert.Equal(t, "r1", first.SourceKey)
	assert.True(t, first.Buckets.Sales.Equal(dec("1000")))
	assert.True(t, first.Buckets.Cash.Equal(dec("25.5")))
	assert.Equal(t, "Store Front", first.Link.AssetLabel)
	assert.Empty(t, first.Splits)

	second := in.Rows[1]
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), second.TransactionDate)
	require.Len(t, second.Splits, 2)
	assert.Equal(t, "Equipment", second.Splits[0].Label, "labels are sorted")
	assert.Equal(t, ledger.CategoryKindAsset, second.Splits[0].Kind)
}

func TestCashImportRequest_ToCashOut(t *testing.T) {
	req := CashImportRequest{
		UnitID:      testUnit,
		PeriodMonth: "2024-04-15",
		Transactions: []TransactionRow{{
			CashAmount:             dec("400"),
			InventoryAmount:        dec("200"),
			OwnersWithdrawalAmount: dec("50"),
			SalesAmount:            dec("999"),
			ExpenseID:              "0f8a2f5e-1d2b-4c3a-9e8f-7a6b5c4d3e2f",
			DynamicExpenses:        map[string]decimal.Decimal{"Rent": dec("100")},
		}},
	}

	out, err := req.ToCashOut()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), out.PeriodMonth)
	row := out.Rows[0]
	assert.True(t, row.Buckets.Total().Equal(dec("650")), "sales is not a cash-out bucket")
	require.NotNil(t, row.Link.ExpenseID)
	require.Len(t, row.Splits, 1)
	assert.Equal(t, ledger.CategoryKindExpense, row.Splits[0].Kind)
}

func TestCashImportRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  CashImportRequest
		want error
	}{
		{"missing unit", CashImportRequest{PeriodMonth: "2024-03"}, ledger.ErrMissingFields},
		{"missing month", CashImportRequest{UnitID: testUnit}, ledger.ErrMissingFields},
		{"bad unit", CashImportRequest{UnitID: "nope", PeriodMonth: "2024-03"}, ledger.ErrInvalidUnitID},
		{"bad month", CashImportRequest{UnitID: testUnit, PeriodMonth: "March"}, ledger.ErrInvalidMonth},
		{"bad row date", CashImportRequest{UnitID: testUnit, PeriodMonth: "2024-03",
			Transactions: []TransactionRow{{TransactionDate: "yesterday"}}}, ledger.ErrInvalidMonth},
		{"bad asset id", CashImportRequest{UnitID: testUnit, PeriodMonth: "2024-03",
			Transactions: []TransactionRow{{AssetID: "x"}}}, shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.ToCashIn()
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestInventoryImportRequest_ToImport(t *testing.T) {
	body := `{
		"unitId": "` + testUnit + `",
		"items": [{"itemName": "Bread", "itemPrice": 12.5, "bomName": "Bread BOM"}],
		"bomLines": [{"bomName": "Bread BOM", "rawMaterialName": "Flour", "rawMaterialQty": 2, "rawMaterialPrice": 3}],
		"reportLinks": [{"itemName": "Bread", "month": "2024-03", "beginQty": 500, "finalQty": 300, "beginUnitPrice": 1}]
	}`
	var req InventoryImportRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	in, err := req.ToImport()
	require.NoError(t, err)

	require.Len(t, in.Items, 1)
	require.NotNil(t, in.Items[0].Price)
	assert.True(t, in.Items[0].Price.Equal(dec("12.5")))
	assert.Nil(t, in.Items[0].BeginningInventory)
	require.Len(t, in.BOMLines, 1)
	assert.Equal(t, "Flour", in.BOMLines[0].MaterialName)
	require.Len(t, in.Links, 1)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), in.Links[0].Month)
	assert.Nil(t, in.Links[0].FinalUnitPrice)

	_, err = InventoryImportRequest{}.ToImport()
	assert.ErrorIs(t, err, ledger.ErrMissingFields)
}

func TestReopenQuery_ToRequest(t *testing.T) {
	req, err := ReopenQuery{UnitID: testUnit, Month: "2024-03", Kind: "cash_out"}.ToRequest()
	require.NoError(t, err)
	assert.Equal(t, ledger.ReportKindCashOut, req.Kind)

	_, err = ReopenQuery{UnitID: testUnit, Month: "2024-03", Kind: "payroll"}.ToRequest()
	assert.ErrorIs(t, err, ledger.ErrInvalidKind)
}

func TestAnalyticsQuery_ToQuery(t *testing.T) {
	q, err := AnalyticsQuery{From: "2024-01-01", To: "2024-04-01", UnitID: testUnit, Degrade: true}.ToQuery()
	require.NoError(t, err)
	require.NotNil(t, q.Window.From)
	require.NotNil(t, q.Window.To)
	require.NotNil(t, q.Scope.UnitID)
	assert.Nil(t, q.Scope.ProgramID)
	assert.True(t, q.Degrade)

	_, err = AnalyticsQuery{ProgramID: "abc"}.ToQuery()
	assert.ErrorIs(t, err, ledger.ErrInvalidProgramID)

	_, err = AnalyticsQuery{UnitID: "abc"}.ToQuery()
	assert.ErrorIs(t, err, ledger.ErrInvalidUnitID)
}

func TestCashFlowQuery_Opening(t *testing.T) {
	open, err := CashFlowQuery{}.Opening()
	require.NoError(t, err)
	assert.Nil(t, open)

	open, err = CashFlowQuery{OpeningCash: "-250.75"}.Opening()
	require.NoError(t, err)
	assert.True(t, open.Equal(dec("-250.75")))
}
