package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hotteokboki/lseed-project/internal/application/ingestion"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/logger"
	"github.com/hotteokboki/lseed-project/internal/infrastructure/telemetry"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/dto"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// ReplayedHeader marks a response served from a stored receipt
const ReplayedHeader = "Idempotent-Replayed"

const maxIdempotencyKeyLength = 255

// ImportService is the ingestion surface the handler needs
type ImportService interface {
	EnsureRefs(ctx context.Context, req ingestion.EnsureRefsRequest) (*ingestion.EnsureRefsResult, error)
	ImportCashIn(ctx context.Context, in ingestion.CashInImport) (*ingestion.ImportResult, error)
	ImportCashOut(ctx context.Context, in ingestion.CashOutImport) (*ingestion.ImportResult, error)
	ImportInventory(ctx context.Context, in ingestion.InventoryImport) (*ingestion.InventoryResult, error)
	ReopenPeriod(ctx context.Context, req ingestion.ReopenRequest) error
}

// ImportHandler serves the ledger upload endpoints
type ImportHandler struct {
	BaseHandler
	service  ImportService
	receipts shared.ReceiptStore
	cfg      shared.ReceiptConfig
}

// ImportHandlerOption configures an ImportHandler
type ImportHandlerOption func(*ImportHandler)

// WithReceipts enables Idempotency-Key replay backed by store
func WithReceipts(store shared.ReceiptStore, cfg shared.ReceiptConfig) ImportHandlerOption {
	return func(h *ImportHandler) {
		h.receipts = store
		h.cfg = cfg
	}
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(service ImportService, opts ...ImportHandlerOption) *ImportHandler {
	h := &ImportHandler{service: service, cfg: shared.DefaultReceiptConfig()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// receipt is what is stored under an idempotency key
type receipt struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// EnsureRefs registers labels ahead of an import. The returned maps are
// keyed by each label lowercased as sent.
func (h *ImportHandler) EnsureRefs(c *gin.Context) {
	var req dto.EnsureRefsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.service.EnsureRefs(c.Request.Context(), req.ToRequest())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// ImportCashIn accepts one unit-month of cash-in rows
func (h *ImportHandler) ImportCashIn(c *gin.Context) {
	var req dto.CashImportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToCashIn()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.idempotent(c, ledger.ReportKindCashIn, in.UnitID.String(), func(ctx context.Context) (any, error) {
		return h.service.ImportCashIn(ctx, in)
	})
}

// ImportCashOut accepts one unit-month of cash-out rows
func (h *ImportHandler) ImportCashOut(c *gin.Context) {
	var req dto.CashImportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToCashOut()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.idempotent(c, ledger.ReportKindCashOut, in.UnitID.String(), func(ctx context.Context) (any, error) {
		return h.service.ImportCashOut(ctx, in)
	})
}

// ImportInventory accepts items, BOM lines and one month of counts
func (h *ImportHandler) ImportInventory(c *gin.Context) {
	var req dto.InventoryImportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToImport()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.idempotent(c, ledger.ReportKindInventory, in.UnitID.String(), func(ctx context.Context) (any, error) {
		return h.service.ImportInventory(ctx, in)
	})
}

// ReopenPeriod deletes the guard of a unit-month-kind
func (h *ImportHandler) ReopenPeriod(c *gin.Context) {
	var q dto.ReopenQuery
	if !h.BindQuery(c, &q) {
		return
	}
	req, err := q.ToRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.service.ReopenPeriod(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// idempotent runs an import, replaying the stored answer when the client
// retries with the same Idempotency-Key. Only successful answers are stored;
// receipt store failures never fail the import.
func (h *ImportHandler) idempotent(c *gin.Context, kind ledger.ReportKind, unitID string, run func(ctx context.Context) (any, error)) {
	ctx, log := logger.WithUnitID(c.Request.Context(), logger.GetGinLogger(c), unitID)
	ctx, log = logger.WithReportKind(ctx, log, string(kind))
	c.Request = c.Request.WithContext(ctx)
	c.Set(string(logger.UnitIDKey), unitID)
	run = profiled(kind, run)

	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	if key == "" || h.receipts == nil || !h.cfg.Enabled {
		h.respond(c, run)
		return
	}
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	storeKey := string(kind) + ":" + key

	if raw, found, err := h.receipts.Load(ctx, storeKey); err != nil {
		log.Warn("Receipt lookup failed", zap.Error(err))
	} else if found {
		var r receipt
		if err := json.Unmarshal(raw, &r); err == nil {
			c.Header(ReplayedHeader, "true")
			c.Data(r.Status, "application/json; charset=utf-8", r.Body)
			return
		}
		log.Warn("Discarding unreadable receipt", zap.String("key", key))
	}

	status, body, ok := h.respond(c, run)
	if !ok {
		return
	}
	raw, err := json.Marshal(receipt{Status: status, Body: body})
	if err != nil {
		return
	}
	saved, err := h.receipts.Save(ctx, storeKey, raw, h.ttl())
	switch {
	case err != nil:
		log.Warn("Receipt not stored", zap.Error(err))
	case !saved:
		log.Debug("Receipt already present", zap.String("key", key))
	}
}

// respond runs the import and writes the answer. It returns the body of a
// successful answer so it can be stored.
func (h *ImportHandler) respond(c *gin.Context, run func(ctx context.Context) (any, error)) (int, []byte, bool) {
	res, err := run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return 0, nil, false
	}
	body, err := json.Marshal(dto.NewSuccessResponse(res))
	if err != nil {
		h.HandleError(c, err)
		return 0, nil, false
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	return http.StatusOK, body, true
}

// profiled tags the profile samples of run with the report kind
func profiled(kind ledger.ReportKind, run func(ctx context.Context) (any, error)) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (res any, err error) {
		telemetry.WithReportKind(ctx, string(kind), func(ctx context.Context) {
			res, err = run(ctx)
		})
		return res, err
	}
}

func (h *ImportHandler) ttl() time.Duration {
	if h.cfg.TTL > 0 {
		return h.cfg.TTL
	}
	return shared.DefaultReceiptConfig().TTL
}

// RegisterRoutes registers all import routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/imports")
	{
		imports.POST("/ensure-refs", h.EnsureRefs)
		imports.POST("/cash-in", h.ImportCashIn)
		imports.POST("/cash-out", h.ImportCashOut)
		imports.POST("/inventory", h.ImportInventory)
		imports.DELETE("/guards", h.ReopenPeriod)
	}
}
