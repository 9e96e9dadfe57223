package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hotteokboki/lseed-project/internal/application/analytics"
	"github.com/hotteokboki/lseed-project/internal/domain/health"
	"github.com/hotteokboki/lseed-project/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AnalyticsQuery is the scope and window shared by every analytics view.
// The window is half-open: from inclusive, to exclusive.
type AnalyticsQuery struct {
	From      string `form:"from" binding:"omitempty,ledgerdate"`
	To        string `form:"to" binding:"omitempty,ledgerdate"`
	ProgramID string `form:"programId"`
	UnitID    string `form:"unitId"`
	// Degrade serves an empty result instead of an error when loading fails
	Degrade bool `form:"degrade"`
}

// ToQuery validates the scope ids and window
func (q AnalyticsQuery) ToQuery() (analytics.Query, error) {
	scope, err := ledger.ParseScope(q.ProgramID, q.UnitID)
	if err != nil {
		return analytics.Query{}, err
	}
	window, err := ledger.ParseWindow(strings.TrimSpace(q.From), strings.TrimSpace(q.To))
	if err != nil {
		return analytics.Query{}, err
	}
	return analytics.Query{Scope: scope, Window: window, Degrade: q.Degrade}, nil
}

// CashFlowQuery adds the opening balance
type CashFlowQuery struct {
	AnalyticsQuery
	OpeningCash string `form:"openingCash" binding:"omitempty,numeric"`
}

// Opening returns nil when no opening balance was passed
func (q CashFlowQuery) Opening() (*decimal.Decimal, error) {
	if strings.TrimSpace(q.OpeningCash) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(q.OpeningCash))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// TopItemsQuery tunes the top-moving items view
type TopItemsQuery struct {
	AnalyticsQuery
	Metric       string `form:"metric" binding:"omitempty,oneof=value qty"`
	IncludeZeros bool   `form:"includeZeros"`
	IncludeMeta  bool   `form:"includeMeta"`
}

// Options converts to the analytics options
func (q TopItemsQuery) Options() analytics.TopItemsOptions {
	return analytics.TopItemsOptions{
		Metric:       health.ParseMoveMetric(q.Metric),
		IncludeZeros: q.IncludeZeros,
		IncludeMeta:  q.IncludeMeta,
	}
}

// StarTrendQuery limits the trend to the best units
type StarTrendQuery struct {
	AnalyticsQuery
	Limit int `form:"limit" binding:"omitempty,min=0,max=500"`
}

// UnitRef identifies a unit in view rows
type UnitRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Abbr string    `json:"abbr"`
}

func unitRef(u ledger.Unit) UnitRef {
	return UnitRef{ID: u.ID, Name: u.Name, Abbr: u.DisplayAbbr()}
}

// MonthlyAggregateResponse is one unit-month of derived metrics
type MonthlyAggregateResponse struct {
	UnitID       uuid.UUID        `json:"unitId"`
	Month        string           `json:"month"`
	Inflow       decimal.Decimal  `json:"inflow"`
	Outflow      decimal.Decimal  `json:"outflow"`
	Net          decimal.Decimal  `json:"net"`
	Purchases    decimal.Decimal  `json:"purchases"`
	BeginValue   decimal.Decimal  `json:"beginValue"`
	EndValue     decimal.Decimal  `json:"endValue"`
	COGS         decimal.Decimal  `json:"cogs"`
	AvgInventory decimal.Decimal  `json:"avgInventory"`
	Turnover     *decimal.Decimal `json:"turnover"`
	ReportCount  int              `json:"reportCount"`
	Completeness decimal.Decimal  `json:"completeness"`
}

// ToMonthlyResponses converts monthly aggregates
func ToMonthlyResponses(aggs []health.MonthlyAggregate) []MonthlyAggregateResponse {
	out := make([]MonthlyAggregateResponse, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, MonthlyAggregateResponse{
			UnitID:       a.UnitID,
			Month:        ledger.FormatMonth(a.Month),
			Inflow:       a.Inflow,
			Outflow:      a.Outflow,
			Net:          a.Inflow.Sub(a.Outflow),
			Purchases:    a.Purchases,
			BeginValue:   a.BeginValue,
			EndValue:     a.EndValue,
			COGS:         a.COGS,
			AvgInventory: a.AvgInventory,
			Turnover:     a.Turnover,
			ReportCount:  a.ReportCount,
			Completeness: a.Completeness,
		})
	}
	return out
}

// IndicatorCell is one cell of the heatmap
type IndicatorCell struct {
	Indicator string          `json:"indicator"`
	Band      decimal.Decimal `json:"band"`
	Level     string          `json:"level"`
}

// HealthScoreResponse is one unit row of the heatmap or flagged list
type HealthScoreResponse struct {
	Unit           UnitRef          `json:"unit"`
	Indicators     []IndicatorCell  `json:"indicators"`
	Composite      decimal.Decimal  `json:"composite"`
	Inflow         decimal.Decimal  `json:"inflow"`
	Outflow        decimal.Decimal  `json:"outflow"`
	Net            decimal.Decimal  `json:"net"`
	AvgTurnover    *decimal.Decimal `json:"avgTurnover"`
	ReportingRate  decimal.Decimal  `json:"reportingRate"`
	Months         int              `json:"months"`
	EligibleMonths int              `json:"eligibleMonths"`
	Eligible       bool             `json:"eligible"`
	RedCount       int              `json:"redCount"`
	Flagged        bool             `json:"flagged"`
	Healthy        bool             `json:"healthy"`
}

// ToHealthScoreResponse converts one score
func ToHealthScoreResponse(s health.HealthScore) HealthScoreResponse {
	cells := make([]IndicatorCell, 0, 4)
	for _, ind := range health.Indicators() {
		cells = append(cells, IndicatorCell{
			Indicator: string(ind),
			Band:      s.Bands.Of(ind),
			Level:     string(s.Level(ind)),
		})
	}
	return HealthScoreResponse{
		Unit:           unitRef(s.Unit),
		Indicators:     cells,
		Composite:      s.Composite,
		Inflow:         s.Totals.Inflow,
		Outflow:        s.Totals.Outflow,
		Net:            s.Totals.Net(),
		AvgTurnover:    s.Totals.AvgTurnover,
		ReportingRate:  s.Totals.ReportingRate,
		Months:         s.Totals.Months,
		EligibleMonths: s.Totals.EligibleMonths,
		Eligible:       s.Eligible,
		RedCount:       s.RedCount,
		Flagged:        s.Flagged,
		Healthy:        s.Healthy,
	}
}

// ToHealthScoreResponses converts a score list, keeping its order
func ToHealthScoreResponses(scores []health.HealthScore) []HealthScoreResponse {
	out := make([]HealthScoreResponse, 0, len(scores))
	for _, s := range scores {
		out = append(out, ToHealthScoreResponse(s))
	}
	return out
}

// HeatmapResponse is the unit x indicator matrix
type HeatmapResponse struct {
	Indicators []string              `json:"indicators"`
	Months     []string              `json:"months"`
	Rows       []HealthScoreResponse `json:"rows"`
}

// ToHeatmapResponse converts the heatmap
func ToHeatmapResponse(h health.Heatmap) HeatmapResponse {
	inds := make([]string, 0, 4)
	for _, ind := range health.Indicators() {
		inds = append(inds, string(ind))
	}
	months := h.Months
	if months == nil {
		months = []string{}
	}
	return HeatmapResponse{Indicators: inds, Months: months, Rows: ToHealthScoreResponses(h.Rows)}
}

// CategoryHealthResponse is one indicator of the overview
type CategoryHealthResponse struct {
	Indicator   string          `json:"indicator"`
	Red         int             `json:"red"`
	Moderate    int             `json:"moderate"`
	Healthy     int             `json:"healthy"`
	RedPct      decimal.Decimal `json:"redPct"`
	ModeratePct decimal.Decimal `json:"moderatePct"`
	HealthyPct  decimal.Decimal `json:"healthyPct"`
}

// OverviewResponse is the category health view
type OverviewResponse struct {
	UnitCount      int                      `json:"seCount"`
	WithFinancials int                      `json:"withFinancials"`
	NoData         int                      `json:"noData"`
	Flagged        int                      `json:"flagged"`
	Healthy        int                      `json:"healthy"`
	Moderate       int                      `json:"moderate"`
	Categories     []CategoryHealthResponse `json:"categories"`
}

// ToOverviewResponse converts the overview
func ToOverviewResponse(o health.Overview) OverviewResponse {
	cats := make([]CategoryHealthResponse, 0, len(o.Categories))
	for _, c := range o.Categories {
		cats = append(cats, CategoryHealthResponse{
			Indicator:   string(c.Indicator),
			Red:         c.Red,
			Moderate:    c.Moderate,
			Healthy:     c.Healthy,
			RedPct:      c.RedPct,
			ModeratePct: c.ModeratePct,
			HealthyPct:  c.HealthyPct,
		})
	}
	return OverviewResponse{
		UnitCount:      o.UnitCount,
		WithFinancials: o.WithFinancials,
		NoData:         o.NoData,
		Flagged:        o.Flagged,
		Healthy:        o.Healthy,
		Moderate:       o.Moderate,
		Categories:     cats,
	}
}

// CashFlowResponse is one month of the waterfall
type CashFlowResponse struct {
	Month         string           `json:"month"`
	Sales         decimal.Decimal  `json:"sales"`
	OtherRevenue  decimal.Decimal  `json:"otherRevenue"`
	Loan          decimal.Decimal  `json:"loan"`
	Capital       decimal.Decimal  `json:"capital"`
	CashMisc      decimal.Decimal  `json:"cashMisc"`
	Opex          decimal.Decimal  `json:"opex"`
	Inventory     decimal.Decimal  `json:"inventory"`
	DebtService   decimal.Decimal  `json:"debtService"`
	OwnersDraw    decimal.Decimal  `json:"ownersDraw"`
	Inflow        decimal.Decimal  `json:"inflow"`
	Outflow       decimal.Decimal  `json:"outflow"`
	Net           decimal.Decimal  `json:"net"`
	Burn          decimal.Decimal  `json:"burn"`
	CashOnHand    decimal.Decimal  `json:"cashOnHand"`
	RunwayInstant *decimal.Decimal `json:"runwayInstant"`
	RunwayMA3     *decimal.Decimal `json:"runwayMa3"`
}

// ToCashFlowResponses converts the waterfall
func ToCashFlowResponses(points []health.CashFlowPoint) []CashFlowResponse {
	out := make([]CashFlowResponse, 0, len(points))
	for _, p := range points {
		out = append(out, CashFlowResponse{
			Month:         ledger.FormatMonth(p.Month),
			Sales:         p.Sales,
			OtherRevenue:  p.OtherRevenue,
			Loan:          p.Loan,
			Capital:       p.Capital,
			CashMisc:      p.CashMisc,
			Opex:          p.Opex,
			Inventory:     p.Inventory,
			DebtService:   p.DebtService,
			OwnersDraw:    p.OwnersDraw,
			Inflow:        p.Inflow(),
			Outflow:       p.Outflow(),
			Net:           p.Net,
			Burn:          p.Burn,
			CashOnHand:    p.CashOnHand,
			RunwayInstant: p.RunwayInstant,
			RunwayMA3:     p.RunwayMA3,
		})
	}
	return out
}

// TurnoverResponse is one month of the turnover trend
type TurnoverResponse struct {
	Month        string           `json:"month"`
	COGS         decimal.Decimal  `json:"cogs"`
	BeginValue   decimal.Decimal  `json:"beginValue"`
	EndValue     decimal.Decimal  `json:"endValue"`
	AvgInventory decimal.Decimal  `json:"avgInventory"`
	Turnover     *decimal.Decimal `json:"turnover"`
	DaysInMonth  int              `json:"daysInMonth"`
	DIODays      *decimal.Decimal `json:"dioDays"`
}

// ToTurnoverResponses converts the trend
func ToTurnoverResponses(points []health.TurnoverPoint) []TurnoverResponse {
	out := make([]TurnoverResponse, 0, len(points))
	for _, p := range points {
		out = append(out, TurnoverResponse{
			Month:        ledger.FormatMonth(p.Month),
			COGS:         p.COGS,
			BeginValue:   p.BeginValue,
			EndValue:     p.EndValue,
			AvgInventory: p.AvgInventory,
			Turnover:     p.Turnover,
			DaysInMonth:  p.DaysInMonth,
			DIODays:      p.DIODays,
		})
	}
	return out
}

// ItemMovementResponse is one ranked item
type ItemMovementResponse struct {
	ItemID     uuid.UUID       `json:"itemId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	MovedQty   decimal.Decimal `json:"movedQty"`
	MovedValue decimal.Decimal `json:"movedValue"`
	Score      decimal.Decimal `json:"score"`
}

// InventoryMetaResponse lists the periods with inventory data
type InventoryMetaResponse struct {
	Years          []int            `json:"years"`
	QuartersByYear map[int][]string `json:"quartersByYear"`
}

// TopItemsResponse is the top-moving items view
type TopItemsResponse struct {
	Items []ItemMovementResponse `json:"items"`
	Meta  *InventoryMetaResponse `json:"meta,omitempty"`
}

// ToTopItemsResponse converts the ranked list
func ToTopItemsResponse(r *analytics.TopItemsResult) TopItemsResponse {
	out := TopItemsResponse{Items: []ItemMovementResponse{}}
	if r == nil {
		return out
	}
	for _, m := range r.Items {
		out.Items = append(out.Items, ItemMovementResponse{
			ItemID:     m.ItemID,
			Name:       m.Name,
			UnitPrice:  m.UnitPrice,
			MovedQty:   m.MovedQty,
			MovedValue: m.MovedValue,
			Score:      m.Score,
		})
	}
	if r.Meta != nil {
		years := r.Meta.Years
		if years == nil {
			years = []int{}
		}
		out.Meta = &InventoryMetaResponse{Years: years, QuartersByYear: r.Meta.QuartersByYear}
	}
	return out
}

// KPIResponse is the portfolio finance summary
type KPIResponse struct {
	Revenue          decimal.Decimal  `json:"revenue"`
	Purchases        decimal.Decimal  `json:"purchases"`
	Opex             decimal.Decimal  `json:"opex"`
	COGS             decimal.Decimal  `json:"cogs"`
	GrossProfit      decimal.Decimal  `json:"grossProfit"`
	OperatingProfit  decimal.Decimal  `json:"operatingProfit"`
	GrossMargin      *decimal.Decimal `json:"grossMargin"`
	OperatingMargin  *decimal.Decimal `json:"operatingMargin"`
	OverallTurnover  *decimal.Decimal `json:"overallTurnover"`
	OverallDIO       *decimal.Decimal `json:"overallDio"`
	NetCashFlow      decimal.Decimal  `json:"netCashFlow"`
	ReportingRate    decimal.Decimal  `json:"reportingRate"`
	ReportsSubmitted int              `json:"reportsSubmitted"`
	ReportsExpected  int              `json:"reportsExpected"`
	Months           int              `json:"months"`
	Units            int              `json:"units"`
}

// ToKPIResponse converts the finance KPIs
func ToKPIResponse(k health.FinanceKPIs) KPIResponse {
	return KPIResponse{
		Revenue:          k.Revenue,
		Purchases:        k.Purchases,
		Opex:             k.Opex,
		COGS:             k.COGS,
		GrossProfit:      k.GrossProfit,
		OperatingProfit:  k.OperatingProfit,
		GrossMargin:      k.GrossMargin,
		OperatingMargin:  k.OperatingMargin,
		OverallTurnover:  k.OverallTurnover,
		OverallDIO:       k.OverallDIO,
		NetCashFlow:      k.NetCashFlow,
		ReportingRate:    k.ReportingRate,
		ReportsSubmitted: k.ReportsSubmitted,
		ReportsExpected:  k.ReportsExpected,
		Months:           k.Months,
		Units:            k.Units,
	}
}

// CapitalFlowResponse is one month of financing movement
type CapitalFlowResponse struct {
	Month           string          `json:"month"`
	DebtIn          decimal.Decimal `json:"debtIn"`
	DebtOut         decimal.Decimal `json:"debtOut"`
	OwnerCapitalIn  decimal.Decimal `json:"ownerCapitalIn"`
	OwnerWithdrawal decimal.Decimal `json:"ownerWithdrawal"`
}

// ToCapitalFlowResponses converts capital flows
func ToCapitalFlowResponses(flows []health.CapitalFlow) []CapitalFlowResponse {
	out := make([]CapitalFlowResponse, 0, len(flows))
	for _, f := range flows {
		out = append(out, CapitalFlowResponse{
			Month:           ledger.FormatMonth(f.Month),
			DebtIn:          f.DebtIn,
			DebtOut:         f.DebtOut,
			OwnerCapitalIn:  f.OwnerCapitalIn,
			OwnerWithdrawal: f.OwnerWithdrawal,
		})
	}
	return out
}

// NetCashResponse is one month of net cash
type NetCashResponse struct {
	Month string          `json:"month"`
	Net   decimal.Decimal `json:"net"`
}

// ToNetCashResponses converts the net cash series
func ToNetCashResponses(series []health.NetCash) []NetCashResponse {
	out := make([]NetCashResponse, 0, len(series))
	for _, n := range series {
		out = append(out, NetCashResponse{Month: ledger.FormatMonth(n.Month), Net: n.Net})
	}
	return out
}

// SeasonalityResponse is revenue of one calendar month
type SeasonalityResponse struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ToSeasonalityResponses converts the seasonality series
func ToSeasonalityResponses(rows []health.SeasonalRevenue) []SeasonalityResponse {
	out := make([]SeasonalityResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, SeasonalityResponse{Year: r.Year, Month: r.Month, Revenue: r.Revenue})
	}
	return out
}

// StarPointResponse is one unit-month of the star trend
type StarPointResponse struct {
	UnitID uuid.UUID       `json:"unitId"`
	Name   string          `json:"name"`
	Month  string          `json:"month"`
	Score  decimal.Decimal `json:"score"`
	Stars  decimal.Decimal `json:"stars"`
}

// ToStarPointResponses converts the star trend
func ToStarPointResponses(points []health.StarPoint) []StarPointResponse {
	out := make([]StarPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, StarPointResponse{
			UnitID: p.UnitID,
			Name:   p.Name,
			Month:  ledger.FormatMonth(p.Month),
			Score:  p.Score,
			Stars:  p.Stars,
		})
	}
	return out
}
