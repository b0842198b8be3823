package core

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRecentLimit is the number of entries shown as recent activity.
const DefaultRecentLimit = 3

// MonthlyStats aggregates the entries of one calendar month.
type MonthlyStats struct {
	Month               string  `json:"month"`
	TotalCost           float64 `json:"totalCost"`
	TotalAmount         float64 `json:"totalAmount"`
	AveragePricePerUnit float64 `json:"averagePricePerUnit"`
	EntryCount          int     `json:"entryCount"`
}

// YearlyStats aggregates the entries of one calendar year.
type YearlyStats struct {
	Year                string         `json:"year"`
	TotalCost           float64        `json:"totalCost"`
	TotalAmount         float64        `json:"totalAmount"`
	AveragePricePerUnit float64        `json:"averagePricePerUnit"`
	EntryCount          int            `json:"entryCount"`
	MonthlyBreakdown    []MonthlyStats `json:"monthlyBreakdown"`
}

// MonthSummary is the dashboard view of a single month. AveragePerFill is
// the mean cost of one fill-up, not a price per unit.
type MonthSummary struct {
	Month          string  `json:"month"`
	TotalCost      float64 `json:"totalCost"`
	TotalAmount    float64 `json:"totalAmount"`
	AveragePerFill float64 `json:"averagePerFill"`
	EntryCount     int     `json:"entryCount"`
}

// CalculateMonthlyStats groups entries by month in the local time zone.
func CalculateMonthlyStats(entries []FuelEntry) []MonthlyStats {
	return CalculateMonthlyStatsIn(entries, time.Local)
}

// CalculateMonthlyStatsIn groups entries by the YYYY-MM key of their date in
// loc and returns one record per month, most recent first.
func CalculateMonthlyStatsIn(entries []FuelEntry, loc *time.Location) []MonthlyStats {
	buckets := make(map[string]*totals)
	for _, entry := range entries {
		key := MonthKey(entry.Date, loc)
		b := buckets[key]
		if b == nil {
			b = &totals{}
			buckets[key] = b
		}
		b.add(entry)
	}

	stats := make([]MonthlyStats, 0, len(buckets))
	for key, b := range buckets {
		stats = append(stats, MonthlyStats{
			Month:               key,
			TotalCost:           b.cost.InexactFloat64(),
			TotalAmount:         b.amount.InexactFloat64(),
			AveragePricePerUnit: b.averagePrice(),
			EntryCount:          b.count,
		})
	}
	// Keys are zero padded, so string order is chronological order.
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Month > stats[j].Month
	})
	return stats
}

// CalculateYearlyStats groups entries by year in the local time zone.
func CalculateYearlyStats(entries []FuelEntry) []YearlyStats {
	return CalculateYearlyStatsIn(entries, time.Local)
}

// CalculateYearlyStatsIn groups entries by year in loc, most recent first.
// Each record carries the monthly stats of that year's entries.
func CalculateYearlyStatsIn(entries []FuelEntry, loc *time.Location) []YearlyStats {
	groups := make(map[string][]FuelEntry)
	for _, entry := range entries {
		key := YearKey(entry.Date, loc)
		groups[key] = append(groups[key], entry)
	}

	stats := make([]YearlyStats, 0, len(groups))
	for key, yearEntries := range groups {
		var b totals
		for _, entry := range yearEntries {
			b.add(entry)
		}
		stats = append(stats, YearlyStats{
			Year:                key,
			TotalCost:           b.cost.InexactFloat64(),
			TotalAmount:         b.amount.InexactFloat64(),
			AveragePricePerUnit: b.averagePrice(),
			EntryCount:          b.count,
			MonthlyBreakdown:    CalculateMonthlyStatsIn(yearEntries, loc),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Year > stats[j].Year
	})
	return stats
}

// CurrentMonthSummary totals the entries that fall in the same calendar month
// as now, both evaluated in loc.
func CurrentMonthSummary(entries []FuelEntry, now time.Time, loc *time.Location) MonthSummary {
	key := MonthKey(now, loc)
	var b totals
	for _, entry := range entries {
		if MonthKey(entry.Date, loc) == key {
			b.add(entry)
		}
	}

	summary := MonthSummary{
		Month:       key,
		TotalCost:   b.cost.InexactFloat64(),
		TotalAmount: b.amount.InexactFloat64(),
		EntryCount:  b.count,
	}
	if b.count > 0 {
		summary.AveragePerFill = b.cost.Div(decimal.NewFromInt(int64(b.count))).InexactFloat64()
	}
	return summary
}

// RecentEntries returns up to limit entries, newest first. The input slice is
// left untouched. A non-positive limit falls back to DefaultRecentLimit.
func RecentEntries(entries []FuelEntry, limit int) []FuelEntry {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	sorted := append([]FuelEntry(nil), entries...)
	SortEntries(sorted)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	if sorted == nil {
		sorted = []FuelEntry{}
	}
	return sorted
}

// ConvertEntries returns copies of entries with amounts expressed in target.
// Entries without a recorded unit are assumed to be in fallback.
func ConvertEntries(entries []FuelEntry, target, fallback Unit) []FuelEntry {
	out := make([]FuelEntry, len(entries))
	for i, entry := range entries {
		from := entry.Unit
		if from == "" {
			from = fallback
		}
		if from != target {
			factor := conversionFactor(from, target)
			entry.Amount *= factor
			if factor != 0 {
				entry.PricePerUnit /= factor
			}
		}
		entry.Unit = target
		out[i] = entry
	}
	return out
}

// MonthKey returns the zero padded YYYY-MM key of t in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	lt := t.In(locationOrLocal(loc))
	return fmt.Sprintf("%04d-%02d", lt.Year(), int(lt.Month()))
}

// YearKey returns the four digit year of t in loc.
func YearKey(t time.Time, loc *time.Location) string {
	return fmt.Sprintf("%04d", t.In(locationOrLocal(loc)).Year())
}

type totals struct {
	cost   decimal.Decimal
	amount decimal.Decimal
	count  int
}

func (t *totals) add(entry FuelEntry) {
	t.cost = t.cost.Add(finiteDecimal(entry.Cost))
	t.amount = t.amount.Add(finiteDecimal(entry.Amount))
	t.count++
}

func (t *totals) averagePrice() float64 {
	if t.amount.IsZero() {
		return 0
	}
	return t.cost.Div(t.amount).InexactFloat64()
}

// finiteDecimal converts v, mapping NaN and infinities to zero because they
// have no decimal representation.
func finiteDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func conversionFactor(from, to Unit) float64 {
	switch {
	case from == UnitGallons && to == UnitLiters:
		return LitersPerGallon
	case from == UnitLiters && to == UnitGallons:
		return 1 / LitersPerGallon
	default:
		return 1
	}
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
