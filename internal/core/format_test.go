package core

import (
	"errors"
	"testing"
	"time"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     string
	}{
		{"zero", 0, "USD", "$0.00"},
		{"dollars", 12.5, "USD", "$12.50"},
		{"thousands", 1234567.891, "USD", "$1,234,567.89"},
		{"negative", -9.99, "USD", "-$9.99"},
		{"euro", 1234.5, "EUR", "€1,234.50"},
		{"pound", 3.2, "gbp", "£3.20"},
		{"yen has no fraction", 1234.4, "JPY", "¥1,234"},
		{"canadian", 45, "CAD", "CA$45.00"},
		{"code prefix", 99.1, "SEK", "SEK 99.10"},
		{"tiny negative rounds to zero", -0.001, "USD", "$0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.amount, tt.currency); got != tt.want {
				t.Fatalf("FormatCurrency(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(42.456, UnitLiters); got != "42.46 L" {
		t.Fatalf("FormatAmount(liters) = %q", got)
	}
	if got := FormatAmount(10, UnitGallons); got != "10.00 gal" {
		t.Fatalf("FormatAmount(gallons) = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, time.January, 5, 17, 30, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Jan 5, 2025" {
		t.Fatalf("FormatDate() = %q", got)
	}
}

func TestFormatMonthYear(t *testing.T) {
	got, err := FormatMonthYear("2025-01")
	if err != nil || got != "January 2025" {
		t.Fatalf("FormatMonthYear() = %q, %v", got, err)
	}
	if _, err := FormatMonthYear("2025-13"); !errors.Is(err, ErrInvalidMonthKey) {
		t.Fatalf("expected ErrInvalidMonthKey, got %v", err)
	}
}

func TestFormatter(t *testing.T) {
	f := NewFormatter(Settings{Currency: "EUR", Unit: UnitGallons}, time.FixedZone("CET", 3600))

	if got := f.PricePerUnit(1.5); got != "€1.50/gal" {
		t.Fatalf("PricePerUnit() = %q", got)
	}
	if got := f.Amount(3); got != "3.00 gal" {
		t.Fatalf("Amount() = %q", got)
	}
	if got := f.Date(time.Date(2024, time.December, 31, 23, 30, 0, 0, time.UTC)); got != "Jan 1, 2025" {
		t.Fatalf("Date() = %q", got)
	}
	if got := f.MonthYear("bogus"); got != "bogus" {
		t.Fatalf("MonthYear() = %q", got)
	}
	if f.Settings().Language != "en" {
		t.Fatalf("expected default language, got %q", f.Settings().Language)
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		value float64
		scale int
		want  float64
	}{
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{1.26, 1, 1.3},
	}
	for _, c := range cases {
		if got := roundHalfAwayFromZero(c.value, c.scale); got != c.want {
			t.Fatalf("roundHalfAwayFromZero(%v, %d) = %v, want %v", c.value, c.scale, got, c.want)
		}
	}
}
