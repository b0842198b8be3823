package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// currencySymbols mirrors the en-US symbols for the currencies offered in
// settings. Other codes are rendered with the ISO code as prefix.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
}

// FormatCurrency renders amount in en-US currency style, e.g. "$1,234.50".
// The number of fraction digits follows the currency (JPY has none). Values
// that round to zero print without a sign, so -0.001 is "$0.00".
func FormatCurrency(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	rounded := roundHalfAwayFromZero(amount, scale)
	sign := ""
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}

	p := message.NewPrinter(language.AmericanEnglish)
	digits := p.Sprint(number.Decimal(rounded, number.Scale(scale)))

	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}
	return sign + symbol + digits
}

// FormatAmount renders a volume with two decimals and the unit suffix.
func FormatAmount(amount float64, unit Unit) string {
	return fmt.Sprintf("%.2f %s", amount, unit.Suffix())
}

// FormatDate renders t as "Jan 5, 2025".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatMonthYear expands a YYYY-MM key into "January 2025".
func FormatMonthYear(key string) (string, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthKey, key)
	}
	return t.Format("January 2006"), nil
}

// Formatter binds the formatting helpers to a settings record and a time
// zone so callers never reach for global state.
type Formatter struct {
	settings Settings
	loc      *time.Location
}

// NewFormatter builds a Formatter. Blank settings fields take their defaults
// and a nil location means time.Local.
func NewFormatter(settings Settings, loc *time.Location) Formatter {
	return Formatter{settings: settings.WithDefaults(), loc: locationOrLocal(loc)}
}

// Settings returns the settings the formatter was built with.
func (f Formatter) Settings() Settings {
	return f.settings
}

// Currency formats a money value in the configured currency.
func (f Formatter) Currency(v float64) string {
	return FormatCurrency(v, f.settings.Currency)
}

// Amount formats a volume in the configured unit.
func (f Formatter) Amount(v float64) string {
	return FormatAmount(v, f.settings.Unit)
}

// PricePerUnit formats a unit price, e.g. "$1.50/L".
func (f Formatter) PricePerUnit(v float64) string {
	return f.Currency(v) + "/" + f.settings.Unit.Suffix()
}

// Date formats t in the formatter's time zone.
func (f Formatter) Date(t time.Time) string {
	return FormatDate(t.In(f.loc))
}

// MonthYear formats a month key, falling back to the raw key when it cannot
// be parsed.
func (f Formatter) MonthYear(key string) string {
	label, err := FormatMonthYear(key)
	if err != nil {
		return key
	}
	return label
}

func roundHalfAwayFromZero(value float64, scale int) float64 {
	pow := math.Pow10(scale)
	return math.Round(value*pow) / pow
}
