package core

import (
	"slices"
	"strings"

	"golang.org/x/text/currency"
)

// Settings holds the user preferences that drive formatting.
type Settings struct {
	Language string `json:"language"`
	Currency string `json:"currency"`
	Unit     Unit   `json:"unit"`
}

// SupportedLanguages lists the language codes accepted in Settings.
var SupportedLanguages = []string{"en", "es", "fr", "de", "sv"}

// DefaultSettings returns the settings used when none have been saved.
func DefaultSettings() Settings {
	return Settings{Language: "en", Currency: "USD", Unit: UnitLiters}
}

// WithDefaults fills blank fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	def := DefaultSettings()
	if s.Language == "" {
		s.Language = def.Language
	}
	if s.Currency == "" {
		s.Currency = def.Currency
	}
	if s.Unit == "" {
		s.Unit = def.Unit
	}
	return s
}

// NormalizeSettings lower-cases the language and unit and upper-cases the
// currency code.
func NormalizeSettings(s Settings) Settings {
	return Settings{
		Language: strings.ToLower(strings.TrimSpace(s.Language)),
		Currency: strings.ToUpper(strings.TrimSpace(s.Currency)),
		Unit:     Unit(strings.ToLower(strings.TrimSpace(string(s.Unit)))),
	}
}

// ValidateSettings checks a normalised settings record.
func ValidateSettings(s Settings) ValidationErrors {
	errs := ValidationErrors{}
	errs = errs.AppendIf(!slices.Contains(SupportedLanguages, s.Language), "language", "unsupported language")
	_, curErr := currency.ParseISO(s.Currency)
	errs = errs.AppendIf(curErr != nil, "currency", "unknown currency code")
	errs = errs.AppendIf(!s.Unit.Valid(), "unit", "unit must be liters or gallons")
	return errs
}
