package http

import (
	"math"

	"fuel-tracker/internal/core"
)

// minBarPercent keeps small but non-empty months visible in charts.
const minBarPercent = 12

type entryView struct {
	core.FuelEntry
	DateDisplay         string `json:"dateDisplay"`
	CostDisplay         string `json:"costDisplay"`
	AmountDisplay       string `json:"amountDisplay"`
	PricePerUnitDisplay string `json:"pricePerUnitDisplay"`
}

type monthlyView struct {
	core.MonthlyStats
	Label                      string `json:"label"`
	TotalCostDisplay           string `json:"totalCostDisplay"`
	TotalAmountDisplay         string `json:"totalAmountDisplay"`
	AveragePricePerUnitDisplay string `json:"averagePricePerUnitDisplay"`
	BarPercent                 int    `json:"barPercent"`
}

type yearlyView struct {
	core.YearlyStats
	TotalCostDisplay           string        `json:"totalCostDisplay"`
	TotalAmountDisplay         string        `json:"totalAmountDisplay"`
	AveragePricePerUnitDisplay string        `json:"averagePricePerUnitDisplay"`
	MonthlyBreakdown           []monthlyView `json:"monthlyBreakdown"`
}

type currentMonthView struct {
	core.MonthSummary
	Label                 string `json:"label"`
	TotalCostDisplay      string `json:"totalCostDisplay"`
	TotalAmountDisplay    string `json:"totalAmountDisplay"`
	AveragePerFillDisplay string `json:"averagePerFillDisplay"`
}

func newEntryViews(entries []core.FuelEntry, f core.Formatter) []entryView {
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryView{
			FuelEntry:           e,
			DateDisplay:         f.Date(e.Date),
			CostDisplay:         f.Currency(e.Cost),
			AmountDisplay:       f.Amount(e.Amount),
			PricePerUnitDisplay: f.PricePerUnit(e.PricePerUnit),
		}
	}
	return views
}

func newMonthlyViews(stats []core.MonthlyStats, f core.Formatter) []monthlyView {
	maxCost := 0.0
	for _, m := range stats {
		maxCost = math.Max(maxCost, m.TotalCost)
	}
	views := make([]monthlyView, len(stats))
	for i, m := range stats {
		views[i] = monthlyView{
			MonthlyStats:               m,
			Label:                      f.MonthYear(m.Month),
			TotalCostDisplay:           f.Currency(m.TotalCost),
			TotalAmountDisplay:         f.Amount(m.TotalAmount),
			AveragePricePerUnitDisplay: f.PricePerUnit(m.AveragePricePerUnit),
			BarPercent:                 barPercent(m.TotalCost, maxCost),
		}
	}
	return views
}

func newYearlyViews(stats []core.YearlyStats, f core.Formatter) []yearlyView {
	views := make([]yearlyView, len(stats))
	for i, y := range stats {
		views[i] = yearlyView{
			YearlyStats:                y,
			TotalCostDisplay:           f.Currency(y.TotalCost),
			TotalAmountDisplay:         f.Amount(y.TotalAmount),
			AveragePricePerUnitDisplay: f.PricePerUnit(y.AveragePricePerUnit),
			MonthlyBreakdown:           newMonthlyViews(y.MonthlyBreakdown, f),
		}
	}
	return views
}

func newCurrentMonthView(summary core.MonthSummary, f core.Formatter) currentMonthView {
	return currentMonthView{
		MonthSummary:          summary,
		Label:                 f.MonthYear(summary.Month),
		TotalCostDisplay:      f.Currency(summary.TotalCost),
		TotalAmountDisplay:    f.Amount(summary.TotalAmount),
		AveragePerFillDisplay: f.Currency(summary.AveragePerFill),
	}
}

func barPercent(value, max float64) int {
	if max <= 0 || value <= 0 {
		return 0
	}
	height := int(math.Round(value / max * 100))
	if height < minBarPercent {
		height = minBarPercent
	}
	return height
}
