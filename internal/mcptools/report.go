package mcptools

import (
	"fmt"
	"strings"

	"fuel-tracker/internal/core"
)

func renderEntries(entries []core.FuelEntry, f core.Formatter) string {
	if len(entries) == 0 {
		return "No fuel entries recorded yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Recent entries (%d):\n", len(entries))
	for _, e := range entries {
		writeEntryLine(&b, e, f)
	}
	return b.String()
}

func writeEntryLine(b *strings.Builder, e core.FuelEntry, f core.Formatter) {
	fmt.Fprintf(b, "- %s: %s for %s (%s)", f.Date(e.Date), f.Currency(e.Cost), f.Amount(e.Amount), f.PricePerUnit(e.PricePerUnit))
	if e.Odometer != nil {
		fmt.Fprintf(b, ", odometer %.0f", *e.Odometer)
	}
	if e.Notes != "" {
		fmt.Fprintf(b, ", %q", e.Notes)
	}
	fmt.Fprintf(b, " [id %s]\n", e.ID)
}

func renderMonthly(stats []core.MonthlyStats, f core.Formatter) string {
	if len(stats) == 0 {
		return "No monthly data."
	}
	var b strings.Builder
	b.WriteString("Monthly stats:\n")
	for _, m := range stats {
		writeMonthLine(&b, "- ", m, f)
	}
	return b.String()
}

func writeMonthLine(b *strings.Builder, indent string, m core.MonthlyStats, f core.Formatter) {
	fmt.Fprintf(b, "%s%s: %s, %s, avg %s, %s\n",
		indent,
		f.MonthYear(m.Month),
		f.Currency(m.TotalCost),
		f.Amount(m.TotalAmount),
		f.PricePerUnit(m.AveragePricePerUnit),
		fillUps(m.EntryCount))
}

func renderYearly(stats []core.YearlyStats, f core.Formatter) string {
	if len(stats) == 0 {
		return "No yearly data."
	}
	var b strings.Builder
	b.WriteString("Yearly stats:\n")
	for _, y := range stats {
		fmt.Fprintf(&b, "%s: %s, %s, avg %s, %s\n",
			y.Year,
			f.Currency(y.TotalCost),
			f.Amount(y.TotalAmount),
			f.PricePerUnit(y.AveragePricePerUnit),
			fillUps(y.EntryCount))
		for _, m := range y.MonthlyBreakdown {
			writeMonthLine(&b, "  - ", m, f)
		}
	}
	return b.String()
}

func renderCurrentMonth(s core.MonthSummary, f core.Formatter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", f.MonthYear(s.Month))
	fmt.Fprintf(&b, "Total spent: %s\n", f.Currency(s.TotalCost))
	fmt.Fprintf(&b, "Total fuel: %s\n", f.Amount(s.TotalAmount))
	fmt.Fprintf(&b, "Average per fill-up: %s\n", f.Currency(s.AveragePerFill))
	fmt.Fprintf(&b, "Fill-ups: %d\n", s.EntryCount)
	return b.String()
}

func renderSettings(s core.Settings) string {
	return fmt.Sprintf("Language: %s\nCurrency: %s\nUnit: %s\n", s.Language, s.Currency, s.Unit)
}

func fillUps(n int) string {
	if n == 1 {
		return "1 fill-up"
	}
	return fmt.Sprintf("%d fill-ups", n)
}
