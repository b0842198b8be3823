package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID represents the identifier type for domain entities.
type ID string

// Meta captures metadata for persisted entities.
type Meta struct {
	ID        ID        `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Unit is the volume unit a fuel amount is expressed in.
type Unit string

const (
	UnitLiters  Unit = "liters"
	UnitGallons Unit = "gallons"
)

// LitersPerGallon converts US gallons to liters.
const LitersPerGallon = 3.785411784

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == UnitLiters || u == UnitGallons
}

// Suffix returns the short label appended to formatted amounts.
func (u Unit) Suffix() string {
	if u == UnitGallons {
		return "gal"
	}
	return "L"
}

// ParseUnit normalises a user supplied unit name.
func ParseUnit(value string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(value)))
	if !u.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, value)
	}
	return u, nil
}

// FuelEntry records a single fill-up.
//
// Unit is the volume unit that was active when the entry was saved. Entries
// written before units were tracked leave it empty and are read in the unit of
// the current settings.
type FuelEntry struct {
	Meta
	Date         time.Time `json:"date"`
	Cost         float64   `json:"cost"`
	Amount       float64   `json:"amount"`
	Unit         Unit      `json:"unit,omitempty"`
	PricePerUnit float64   `json:"pricePerUnit"`
	Odometer     *float64  `json:"odometer,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// UnmarshalJSON accepts the ISO-8601 shapes produced by the mobile app as
// well as bare calendar dates, and rejects anything else with ErrInvalidDate.
func (e *FuelEntry) UnmarshalJSON(data []byte) error {
	type alias FuelEntry
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	date, err := ParseDate(aux.Date)
	if err != nil {
		return err
	}
	if date.IsZero() {
		return fmt.Errorf("%w: missing date for entry %q", ErrInvalidDate, e.ID)
	}
	e.Date = date
	return nil
}

// DataStore contains the complete persisted dataset.
type DataStore struct {
	Meta
	Entries  []FuelEntry `json:"entries"`
	Settings Settings    `json:"settings"`
}

// NewID creates a new ULID identifier.
func NewID() ID {
	return ID(ulid.Make().String())
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses an entry date. An empty string yields the zero time so
// callers can apply their own default. Values without a zone are read as UTC,
// which matches how the mobile app interpreted bare dates.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// NormalizeNotes trims surrounding whitespace from free text notes.
func NormalizeNotes(notes string) string {
	return strings.TrimSpace(notes)
}
