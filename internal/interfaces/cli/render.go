package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// money formats an amount with grouping, e.g. 12,345.60
func money(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.InexactFloat64())
}

// ratio formats a 0..1 ratio as a percentage, or "n/a" when undefined
func ratio(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return printer.Sprintf("%.1f%%", d.Mul(decimal.NewFromInt(100)).InexactFloat64())
}

func times(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return printer.Sprintf("%.2fx", d.InexactFloat64())
}

var levelMark = map[string]string{
	"red":      "🔴",
	"moderate": "🟡",
	"healthy":  "🟢",
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HeatmapMarkdown renders the unit by indicator grid as a table
func HeatmapMarkdown(h dto.HeatmapResponse) string {
	var b strings.Builder
	b.WriteString("# Health heatmap\n\n")
	if len(h.Months) > 0 {
		fmt.Fprintf(&b, "Months: %s to %s (%d)\n\n", h.Months[0], h.Months[len(h.Months)-1], len(h.Months))
	}
	if len(h.Rows) == 0 {
		b.WriteString("_No units in scope._\n")
		return b.String()
	}

	b.WriteString("| Unit |")
	for _, ind := range h.Indicators {
		fmt.Fprintf(&b, " %s |", cell(ind))
	}
	b.WriteString(" Composite | Net cash | Flag |\n|---|")
	b.WriteString(strings.Repeat("---:|", len(h.Indicators)+2))
	b.WriteString("---|\n")

	for _, r := range h.Rows {
		fmt.Fprintf(&b, "| %s |", cell(unitLabel(r.Unit)))
		for _, c := range r.Indicators {
			if !r.Eligible {
				b.WriteString(" - |")
				continue
			}
			fmt.Fprintf(&b, " %s %s |", levelMark[c.Level], c.Band.StringFixed(1))
		}
		flag := ""
		switch {
		case !r.Eligible:
			flag = "no data"
		case r.Flagged:
			flag = fmt.Sprintf("flagged (%d red)", r.RedCount)
		case r.Healthy:
			flag = "healthy"
		}
		fmt.Fprintf(&b, " %s | %s | %s |\n", r.Composite.StringFixed(2), money(r.Net), flag)
	}
	return b.String()
}

func unitLabel(u dto.UnitRef) string {
	if u.Abbr != "" && u.Abbr != u.Name {
		return fmt.Sprintf("%s (%s)", u.Name, u.Abbr)
	}
	return u.Name
}

// OverviewMarkdown renders the portfolio summary with its category split
func OverviewMarkdown(o dto.OverviewResponse, k dto.KPIResponse) string {
	var b strings.Builder
	b.WriteString("# Portfolio overview\n\n")
	fmt.Fprintf(&b, "- Units: **%d** (%d with financials, %d without data)\n", o.UnitCount, o.WithFinancials, o.NoData)
	fmt.Fprintf(&b, "- Health: %d healthy, %d moderate, %d flagged\n", o.Healthy, o.Moderate, o.Flagged)
	fmt.Fprintf(&b, "- Reporting: %d of %d reports (%s)\n\n", k.ReportsSubmitted, k.ReportsExpected, ratio(&k.ReportingRate))

	b.WriteString("## Finance\n\n| Metric | Value |\n|---|---:|\n")
	rows := [][2]string{
		{"Revenue", money(k.Revenue)},
		{"COGS", money(k.COGS)},
		{"Gross profit", money(k.GrossProfit)},
		{"Gross margin", ratio(k.GrossMargin)},
		{"Operating expenses", money(k.Opex)},
		{"Operating profit", money(k.OperatingProfit)},
		{"Operating margin", ratio(k.OperatingMargin)},
		{"Inventory turnover", times(k.OverallTurnover)},
		{"Net cash flow", money(k.NetCashFlow)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r[0], r[1])
	}

	b.WriteString("\n## Categories\n\n")
	if len(o.Categories) == 0 {
		b.WriteString("_No eligible units._\n")
		return b.String()
	}
	b.WriteString("| Indicator | Red | Moderate | Healthy |\n|---|---:|---:|---:|\n")
	for _, c := range o.Categories {
		fmt.Fprintf(&b, "| %s | %d (%s%%) | %d (%s%%) | %d (%s%%) |\n", cell(c.Indicator),
			c.Red, c.RedPct.StringFixed(1),
			c.Moderate, c.ModeratePct.StringFixed(1),
			c.Healthy, c.HealthyPct.StringFixed(1))
	}
	return b.String()
}

// printMarkdown writes md styled for the terminal, or as is when raw
func printMarkdown(w io.Writer, md string, raw bool) error {
	if !raw {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				md = out
			}
		}
	}
	_, err := io.WriteString(w, md)
	return err
}
