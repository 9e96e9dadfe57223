package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/application/ingestion"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/cache"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/dto"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testUnitID = "6b0c2a1e-8d1f-4c33-9a57-2f1f5d0f6a10"

type mockImportService struct {
	mock.Mock
}

func (m *mockImportService) EnsureRefs(ctx context.Context, req ingestion.EnsureRefsRequest) (*ingestion.EnsureRefsResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.EnsureRefsResult), args.Error(1)
}

func (m *mockImportService) ImportCashIn(ctx context.Context, in ingestion.CashInImport) (*ingestion.ImportResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.ImportResult), args.Error(1)
}

func (m *mockImportService) ImportCashOut(ctx context.Context, in ingestion.CashOutImport) (*ingestion.ImportResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.ImportResult), args.Error(1)
}

func (m *mockImportService) ImportInventory(ctx context.Context, in ingestion.InventoryImport) (*ingestion.InventoryResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.InventoryResult), args.Error(1)
}

func (m *mockImportService) ReopenPeriod(ctx context.Context, req ingestion.ReopenRequest) error {
	return m.Called(ctx, req).Error(0)
}

// failingReceipts always errors
type failingReceipts struct{}

func (failingReceipts) Save(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func (failingReceipts) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}

func (failingReceipts) Close() error { return nil }

func newImportRouter(h *ImportHandler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func send(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const cashInBody = `{
	"unitId": "` + testUnitID + `",
	"periodMonth": "2024-03",
	"transactions": [
		{"sourceKey": "r1", "transactionDate": "2024-03-05", "cashAmount": "1500.50", "salesAmount": "1500.50"},
		{"sourceKey": "r2", "transactionDate": "03/09/2024", "cashAmount": 200, "dynamicAssets": {"Equipment": "200"}}
	]
}`

func TestImportHandler_ImportCashIn(t *testing.T) {
	svc := new(mockImportService)
	svc.On("ImportCashIn", mock.Anything, mock.MatchedBy(func(in ingestion.CashInImport) bool {
		return in.UnitID.String() == testUnitID &&
			in.PeriodMonth.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) &&
			len(in.Rows) == 2 &&
			in.Rows[0].Buckets.Sales.Equal(decimal.RequireFromString("1500.50")) &&
			len(in.Rows[1].Splits) == 1
	})).Return(&ingestion.ImportResult{Upserted: 2}, nil).Once()

	w := send(newImportRouter(NewImportHandler(svc)), http.MethodPost, "/api/v1/imports/cash-in", cashInBody, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["upserted"])
	svc.AssertExpectations(t)
}

func TestImportHandler_ImportCashIn_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing period",
			body:       `{"unitId": "` + testUnitID + `", "transactions": []}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ledger.CodeMissingFields,
		},
		{
			name:       "bad month",
			body:       `{"unitId": "` + testUnitID + `", "periodMonth": "March"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "malformed json",
			body:       `{"unitId": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
		{
			name:       "duplicate period",
			body:       cashInBody,
			serviceErr: ledger.ErrDuplicatePeriod,
			wantStatus: http.StatusConflict,
			wantCode:   ledger.CodeDuplicatePeriod,
		},
		{
			name:       "unknown unit",
			body:       cashInBody,
			serviceErr: ledger.ErrInvalidUnit,
			wantStatus: http.StatusBadRequest,
			wantCode:   ledger.CodeInvalidUnit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockImportService)
			if tt.serviceErr != nil {
				svc.On("ImportCashIn", mock.Anything, mock.Anything).Return(nil, tt.serviceErr).Once()
			}

			w := send(newImportRouter(NewImportHandler(svc)), http.MethodPost, "/api/v1/imports/cash-in", tt.body, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestImportHandler_ImportCashOut(t *testing.T) {
	svc := new(mockImportService)
	svc.On("ImportCashOut", mock.Anything, mock.MatchedBy(func(in ingestion.CashOutImport) bool {
		return len(in.Rows) == 1 && in.Rows[0].Buckets.Inventory.Equal(decimal.NewFromInt(80))
	})).Return(&ingestion.ImportResult{Upserted: 1, Removed: 3}, nil).Once()

	body := `{"unitId": "` + testUnitID + `", "periodMonth": "2024-03-01",
		"transactions": [{"sourceKey": "o1", "cashAmount": "80", "inventoryAmount": "80"}]}`
	w := send(newImportRouter(NewImportHandler(svc)), http.MethodPost, "/api/v1/imports/cash-out", body, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, float64(3), data["removed"])
	svc.AssertExpectations(t)
}

func TestImportHandler_Idempotency(t *testing.T) {
	store := cache.NewInMemoryReceiptStore()
	defer store.Close()

	svc := new(mockImportService)
	svc.On("ImportCashIn", mock.Anything, mock.Anything).Return(&ingestion.ImportResult{Upserted: 2}, nil).Once()

	router := newImportRouter(NewImportHandler(svc, WithReceipts(store, shared.DefaultReceiptConfig())))
	headers := map[string]string{middleware.IdempotencyKeyHeader: "upload-42"}

	first := send(router, http.MethodPost, "/api/v1/imports/cash-in", cashInBody, headers)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get(ReplayedHeader))

	second := send(router, http.MethodPost, "/api/v1/imports/cash-in", cashInBody, headers)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(ReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// the same key on another kind is a different receipt
	svc.On("ImportCashOut", mock.Anything, mock.Anything).Return(&ingestion.ImportResult{}, nil).Once()
	other := send(router, http.MethodPost, "/api/v1/imports/cash-out", cashInBody, headers)
	assert.Equal(t, http.StatusOK, other.Code)
	assert.Empty(t, other.Header().Get(ReplayedHeader))

	svc.AssertExpectations(t)
}

func TestImportHandler_Idempotency_FailuresAreNotStored(t *testing.T) {
	store := cache.NewInMemoryReceiptStore()
	defer store.Close()

	svc := new(mockImportService)
	svc.On("ImportCashIn", mock.Anything, mock.Anything).Return(nil, ledger.ErrDuplicatePeriod).Once()
	svc.On("ImportCashIn", mock.Anything, mock.Anything).Return(&ingestion.ImportResult{Upserted: 2}, nil).Once()

	router := newImportRouter(NewImportHandler(svc, WithReceipts(store, shared.DefaultReceiptConfig())))
	headers := map[string]string{middleware.IdempotencyKeyHeader: "upload-43"}

	first := send(router, http.MethodPost, "/api/v1/imports/cash-in", cashInBody, headers)
	assert.Equal(t, http.StatusConflict, first.Code)
	assert.Equal(t, 0, store.Size())

	second := send(router, http.MethodPost, "/api/v1/imports/cash-in", cashInBody, headers)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, store.Size())
	svc.AssertExpectations(t)
}

func TestImportHandler_Idempotency_StoreDown(t *testing.T) {
	svc := new(mockImportService)
	svc.On("ImportCashIn", mock.Anything, mock.Anything).Return(&ingestion.ImportResult{Upserted: 2}, nil).Once()

	router := newImportRouter(NewImportHandler(svc, WithReceipts(failingReceipts{}, shared.DefaultReceiptConfig())))
	w := send(router, http.MethodPost, "/api/v1/imports/cash-in", cashInBody,
		map[string]string{middleware.IdempotencyKeyHeader: "upload-44"})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestImportHandler_Idempotency_KeyTooLong(t *testing.T) {
	store := cache.NewInMemoryReceiptStore()
	defer store.Close()

	svc := new(mockImportService)
	router := newImportRouter(NewImportHandler(svc, WithReceipts(store, shared.DefaultReceiptConfig())))

	w := send(router, http.MethodPost, "/api/v1/imports/cash-in", cashInBody,
		map[string]string{middleware.IdempotencyKeyHeader: strings.Repeat("k", 256)})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ImportCashIn", mock.Anything, mock.Anything)
}

func TestImportHandler_ImportInventory(t *testing.T) {
	svc := new(mockImportService)
	svc.On("ImportInventory", mock.Anything, mock.MatchedBy(func(in ingestion.InventoryImport) bool {
		return len(in.Items) == 1 && len(in.BOMLines) == 1 && len(in.Links) == 1 &&
			in.Links[0].Month.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	})).Return(&ingestion.InventoryResult{UpsertedItems: 1, InsertedBOMLines: 1, Linked: 1}, nil).Once()

	body := `{
		"unitId": "` + testUnitID + `",
		"items": [{"itemName": "Ube Jam", "itemPrice": "120", "bomName": "ube-jam"}],
		"bomLines": [{"bomName": "ube-jam", "rawMaterialName": "Ube", "rawMaterialQty": "2", "rawMaterialPrice": "30"}],
		"reportLinks": [{"itemName": "Ube Jam", "month": "2024-03", "beginQty": "10", "finalQty": "4"}]
	}`
	w := send(newImportRouter(NewImportHandler(svc)), http.MethodPost, "/api/v1/imports/inventory", body, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, float64(1), data["linked"])
	svc.AssertExpectations(t)
}

func TestImportHandler_ImportInventory_MultiMonth(t *testing.T) {
	svc := new(mockImportService)
	svc.On("ImportInventory", mock.Anything, mock.Anything).Return(nil, ledger.ErrMultiMonthPayload).Once()

	body := `{"unitId": "` + testUnitID + `", "reportLinks": [
		{"itemName": "A", "month": "2024-03"}, {"itemName": "B", "month": "2024-04"}]}`
	w := send(newImportRouter(NewImportHandler(svc)), http.MethodPost, "/api/v1/imports/inventory", body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ledger.CodeMultiMonthPayload, decodeResponse(t, w).Error.Code)
}

func TestImportHandler_EnsureRefs(t *testing.T) {
	assetID := uuid.New()
	svc := new(mockImportService)
	svc.On("EnsureRefs", mock.Anything, ingestion.EnsureRefsRequest{Assets: []string{"Equipment"}}).
		Return(&ingestion.EnsureRefsResult{
			AssetMap:   map[string]uuid.UUID{"equipment": assetID},
			ExpenseMap: map[string]uuid.UUID{},
		}, nil).Once()

	w := send(newImportRouter(NewImportHandler(svc)), http.MethodPost, "/api/v1/imports/ensure-refs",
		`{"assets": ["Equipment"]}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, assetID.String(), data["assetMap"].(map[string]any)["equipment"])
	svc.AssertExpectations(t)
}

func TestImportHandler_ReopenPeriod(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := new(mockImportService)
		svc.On("ReopenPeriod", mock.Anything, mock.MatchedBy(func(req ingestion.ReopenRequest) bool {
			return req.Kind == ledger.ReportKindCashOut && req.UnitID.String() == testUnitID
		})).Return(nil).Once()

		w := send(newImportRouter(NewImportHandler(svc)), http.MethodDelete,
			"/api/v1/imports/guards?unitId="+testUnitID+"&month=2024-03&kind=cash_out", "", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("no guard", func(t *testing.T) {
		svc := new(mockImportService)
		svc.On("ReopenPeriod", mock.Anything, mock.Anything).Return(shared.ErrNotFound).Once()

		w := send(newImportRouter(NewImportHandler(svc)), http.MethodDelete,
			"/api/v1/imports/guards?unitId="+testUnitID+"&month=2024-03&kind=inventory", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad kind", func(t *testing.T) {
		svc := new(mockImportService)

		w := send(newImportRouter(NewImportHandler(svc)), http.MethodDelete,
			"/api/v1/imports/guards?unitId="+testUnitID+"&month=2024-03&kind=payroll", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "ReopenPeriod", mock.Anything, mock.Anything)
	})
}
