package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/hotteokboki/lseed-project/internal/application/analytics"
	"github.com/hotteokboki/lseed-project/internal/domain/health"
	"github.com/hotteokboki/lseed-project/internal/domain/shared"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// AnalyticsService is the read-side surface the handler needs
type AnalyticsService interface {
	Monthly(ctx context.Context, q analytics.Query) ([]health.MonthlyAggregate, error)
	Heatmap(ctx context.Context, q analytics.Query) (health.Heatmap, error)
	CategoryHealth(ctx context.Context, q analytics.Query) (health.Overview, error)
	Flagged(ctx context.Context, q analytics.Query) ([]health.HealthScore, error)
	CashFlow(ctx context.Context, q analytics.Query, opening *decimal.Decimal) ([]health.CashFlowPoint, error)
	InventoryTurnover(ctx context.Context, q analytics.Query) ([]health.TurnoverPoint, error)
	TopItems(ctx context.Context, q analytics.Query, opts analytics.TopItemsOptions) (*analytics.TopItemsResult, error)
	KPIs(ctx context.Context, q analytics.Query) (health.FinanceKPIs, error)
	CapitalFlows(ctx context.Context, q analytics.Query) ([]health.CapitalFlow, error)
	NetCash(ctx context.Context, q analytics.Query) ([]health.NetCash, error)
	Seasonality(ctx context.Context, q analytics.Query) ([]health.SeasonalRevenue, error)
	StarTrend(ctx context.Context, q analytics.Query, limit int) ([]health.StarPoint, error)
}

// AnalyticsHandler serves the health and finance views
type AnalyticsHandler struct {
	BaseHandler
	service AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// query binds and validates the shared scope and window
func (h *AnalyticsHandler) query(c *gin.Context, in *dto.AnalyticsQuery) (analytics.Query, bool) {
	q, err := in.ToQuery()
	if err != nil {
		h.HandleError(c, err)
		return analytics.Query{}, false
	}
	return q, true
}

// basic handles the views that take only scope and window
func basic[T any, R any](h *AnalyticsHandler, c *gin.Context, load func(context.Context, analytics.Query) (T, error), render func(T) R) {
	var in dto.AnalyticsQuery
	if !h.BindQuery(c, &in) {
		return
	}
	q, ok := h.query(c, &in)
	if !ok {
		return
	}
	out, err := load(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, render(out))
}

// Monthly returns per unit-month aggregates
func (h *AnalyticsHandler) Monthly(c *gin.Context) {
	basic(h, c, h.service.Monthly, dto.ToMonthlyResponses)
}

// Heatmap returns the unit by indicator grid
func (h *AnalyticsHandler) Heatmap(c *gin.Context) {
	basic(h, c, h.service.Heatmap, dto.ToHeatmapResponse)
}

// CategoryHealth returns the portfolio overview grouped by category
func (h *AnalyticsHandler) CategoryHealth(c *gin.Context) {
	basic(h, c, h.service.CategoryHealth, dto.ToOverviewResponse)
}

// Flagged returns units needing attention, worst first
func (h *AnalyticsHandler) Flagged(c *gin.Context) {
	basic(h, c, h.service.Flagged, dto.ToHealthScoreResponses)
}

// InventoryTurnover returns the monthly turnover series
func (h *AnalyticsHandler) InventoryTurnover(c *gin.Context) {
	basic(h, c, h.service.InventoryTurnover, dto.ToTurnoverResponses)
}

// KPIs returns the portfolio finance summary
func (h *AnalyticsHandler) KPIs(c *gin.Context) {
	basic(h, c, h.service.KPIs, dto.ToKPIResponse)
}

// CapitalFlows returns owner capital movements by month
func (h *AnalyticsHandler) CapitalFlows(c *gin.Context) {
	basic(h, c, h.service.CapitalFlows, dto.ToCapitalFlowResponses)
}

// NetCash returns the monthly net cash series
func (h *AnalyticsHandler) NetCash(c *gin.Context) {
	basic(h, c, h.service.NetCash, dto.ToNetCashResponses)
}

// Seasonality returns revenue by calendar month
func (h *AnalyticsHandler) Seasonality(c *gin.Context) {
	basic(h, c, h.service.Seasonality, dto.ToSeasonalityResponses)
}

// CashFlow returns the cash series with runway
func (h *AnalyticsHandler) CashFlow(c *gin.Context) {
	var in dto.CashFlowQuery
	if !h.BindQuery(c, &in) {
		return
	}
	q, ok := h.query(c, &in.AnalyticsQuery)
	if !ok {
		return
	}
	opening, err := in.Opening()
	if err != nil {
		h.HandleError(c, shared.ErrInvalidInput.WithMessage("openingCash must be a number").Wrap(err))
		return
	}
	points, err := h.service.CashFlow(c.Request.Context(), q, opening)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToCashFlowResponses(points))
}

// TopItems returns the top-moving inventory items
func (h *AnalyticsHandler) TopItems(c *gin.Context) {
	var in dto.TopItemsQuery
	if !h.BindQuery(c, &in) {
		return
	}
	q, ok := h.query(c, &in.AnalyticsQuery)
	if !ok {
		return
	}
	res, err := h.service.TopItems(c.Request.Context(), q, in.Options())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToTopItemsResponse(res))
}

// StarTrend returns the star ratings of the best units over time
func (h *AnalyticsHandler) StarTrend(c *gin.Context) {
	var in dto.StarTrendQuery
	if !h.BindQuery(c, &in) {
		return
	}
	q, ok := h.query(c, &in.AnalyticsQuery)
	if !ok {
		return
	}
	points, err := h.service.StarTrend(c.Request.Context(), q, in.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToStarPointResponses(points))
}

// RegisterRoutes registers all analytics routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	views := rg.Group("/analytics")
	{
		views.GET("/monthly", h.Monthly)
		views.GET("/heatmap", h.Heatmap)
		views.GET("/category-health", h.CategoryHealth)
		views.GET("/flagged", h.Flagged)
		views.GET("/cash-flow", h.CashFlow)
		views.GET("/inventory-turnover", h.InventoryTurnover)
		views.GET("/top-items", h.TopItems)
		views.GET("/kpis", h.KPIs)
		views.GET("/capital-flows", h.CapitalFlows)
		views.GET("/net-cash", h.NetCash)
		views.GET("/seasonality", h.Seasonality)
		views.GET("/star-trend", h.StarTrend)
	}
}
