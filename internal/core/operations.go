package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// futureTolerance bounds how far ahead of now an entry date may be.
const futureTolerance = 24 * time.Hour

// CreateEntryParams contains the data necessary to create a fuel entry.
type CreateEntryParams struct {
	Date     time.Time
	Cost     float64
	Amount   float64
	Unit     Unit
	Odometer *float64
	Notes    string
}

// UpdateEntryParams captures the replaceable entry fields. A zero Date or an
// empty Unit keeps the stored value.
type UpdateEntryParams struct {
	Date     time.Time
	Cost     float64
	Amount   float64
	Unit     Unit
	Odometer *float64
	Notes    string
}

// ImportResult reports how an import changed the dataset.
type ImportResult struct {
	Added    int `json:"added"`
	Replaced int `json:"replaced"`
}

// NewEntry validates params and builds a new entry with derived fields.
func NewEntry(params CreateEntryParams, now time.Time) (FuelEntry, error) {
	errs := validateEntryInput(params.Cost, params.Amount, params.Unit, params.Odometer, params.Date, now)
	if len(errs) > 0 {
		return FuelEntry{}, errs
	}

	date := params.Date
	if date.IsZero() {
		date = now
	}

	return FuelEntry{
		Meta: Meta{
			ID:        NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Date:         date,
		Cost:         params.Cost,
		Amount:       params.Amount,
		Unit:         params.Unit,
		PricePerUnit: params.Cost / params.Amount,
		Odometer:     cloneFloat(params.Odometer),
		Notes:        NormalizeNotes(params.Notes),
	}, nil
}

// ApplyEntryUpdate replaces the mutable fields of entry as a whole and
// recomputes the derived price.
func ApplyEntryUpdate(entry FuelEntry, params UpdateEntryParams, now time.Time) (FuelEntry, error) {
	unit := params.Unit
	if unit == "" {
		unit = entry.Unit
	}
	errs := validateEntryInput(params.Cost, params.Amount, unit, params.Odometer, params.Date, now)
	if len(errs) > 0 {
		return FuelEntry{}, errs
	}

	if !params.Date.IsZero() {
		entry.Date = params.Date
	}
	entry.Cost = params.Cost
	entry.Amount = params.Amount
	entry.Unit = unit
	entry.PricePerUnit = params.Cost / params.Amount
	entry.Odometer = cloneFloat(params.Odometer)
	entry.Notes = NormalizeNotes(params.Notes)
	entry.UpdatedAt = now
	return entry, nil
}

// AddEntry appends a new entry to the datastore. An empty unit is taken from
// the stored settings.
func AddEntry(ds *DataStore, params CreateEntryParams) (FuelEntry, error) {
	if ds == nil {
		return FuelEntry{}, errors.New("nil datastore")
	}
	if params.Unit == "" {
		params.Unit = ds.Settings.WithDefaults().Unit
	}

	now := time.Now().UTC()
	entry, err := NewEntry(params, now)
	if err != nil {
		return FuelEntry{}, err
	}

	ds.Entries = append(ds.Entries, entry)
	SortEntries(ds.Entries)
	touchDatastore(ds, now)

	return entry, nil
}

// UpdateEntry replaces an existing entry.
func UpdateEntry(ds *DataStore, id ID, params UpdateEntryParams) (FuelEntry, error) {
	if ds == nil {
		return FuelEntry{}, errors.New("nil datastore")
	}

	idx := findEntryIndex(ds.Entries, id)
	if idx == -1 {
		return FuelEntry{}, ErrEntryNotFound
	}

	now := time.Now().UTC()
	entry, err := ApplyEntryUpdate(ds.Entries[idx], params, now)
	if err != nil {
		return FuelEntry{}, err
	}
	ds.Entries[idx] = entry

	SortEntries(ds.Entries)
	touchDatastore(ds, now)

	return entry, nil
}

// DeleteEntry removes an entry.
func DeleteEntry(ds *DataStore, id ID) error {
	if ds == nil {
		return errors.New("nil datastore")
	}
	idx := findEntryIndex(ds.Entries, id)
	if idx == -1 {
		return ErrEntryNotFound
	}
	ds.Entries = append(ds.Entries[:idx], ds.Entries[idx+1:]...)
	touchDatastore(ds, time.Now().UTC())
	return nil
}

// ClearEntries removes every entry while keeping the settings.
func ClearEntries(ds *DataStore) error {
	if ds == nil {
		return errors.New("nil datastore")
	}
	ds.Entries = []FuelEntry{}
	touchDatastore(ds, time.Now().UTC())
	return nil
}

// UpdateSettings validates and stores the settings record.
func UpdateSettings(ds *DataStore, settings Settings) (Settings, error) {
	if ds == nil {
		return Settings{}, errors.New("nil datastore")
	}
	settings = NormalizeSettings(settings)
	if errs := ValidateSettings(settings); len(errs) > 0 {
		return Settings{}, errs
	}
	ds.Settings = settings
	touchDatastore(ds, time.Now().UTC())
	return settings, nil
}

// PrepareImport validates imported entries and fills in what older exports
// lack: identifiers, the volume unit and the derived price. An id may appear
// only once per batch.
func PrepareImport(entries []FuelEntry, unit Unit, now time.Time) ([]FuelEntry, error) {
	prepared := make([]FuelEntry, 0, len(entries))
	seen := make(map[ID]int, len(entries))
	var errs ValidationErrors
	for i, entry := range entries {
		if entry.Unit == "" {
			entry.Unit = unit
		}
		itemErrs := validateEntryInput(entry.Cost, entry.Amount, entry.Unit, entry.Odometer, entry.Date, now)
		itemErrs = itemErrs.AppendIf(entry.Date.IsZero(), "date", "date is required")
		if entry.ID != "" {
			first, dup := seen[entry.ID]
			itemErrs = itemErrs.AppendIf(dup, "id", fmt.Sprintf("duplicates entries[%d]", first))
			if !dup {
				seen[entry.ID] = i
			}
		}
		if len(itemErrs) > 0 {
			errs = append(errs, itemErrs.Prefixed(fmt.Sprintf("entries[%d]", i))...)
			continue
		}
		if entry.ID == "" {
			entry.ID = NewID()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		entry.UpdatedAt = now
		entry.PricePerUnit = entry.Cost / entry.Amount
		entry.Notes = NormalizeNotes(entry.Notes)
		prepared = append(prepared, entry)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return prepared, nil
}

// ImportEntries upserts entries by identifier. The batch is rejected as a
// whole when any entry is invalid.
func ImportEntries(ds *DataStore, entries []FuelEntry) (ImportResult, error) {
	if ds == nil {
		return ImportResult{}, errors.New("nil datastore")
	}

	now := time.Now().UTC()
	prepared, err := PrepareImport(entries, ds.Settings.WithDefaults().Unit, now)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	for _, entry := range prepared {
		if idx := findEntryIndex(ds.Entries, entry.ID); idx != -1 {
			entry.CreatedAt = ds.Entries[idx].CreatedAt
			ds.Entries[idx] = entry
			result.Replaced++
			continue
		}
		ds.Entries = append(ds.Entries, entry)
		result.Added++
	}

	SortEntries(ds.Entries)
	touchDatastore(ds, now)
	return result, nil
}

// SortEntries orders entries newest first, breaking ties by identifier.
func SortEntries(entries []FuelEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date.Equal(entries[j].Date) {
			return string(entries[i].ID) > string(entries[j].ID)
		}
		return entries[i].Date.After(entries[j].Date)
	})
}

func validateEntryInput(cost, amount float64, unit Unit, odometer *float64, date, now time.Time) ValidationErrors {
	errs := ValidationErrors{}
	errs = errs.AppendIf(!isPositive(cost), "cost", "cost must be greater than zero")
	errs = errs.AppendIf(!isPositive(amount), "amount", "amount must be greater than zero")
	errs = errs.AppendIf(!unit.Valid(), "unit", "unit must be liters or gallons")
	if odometer != nil {
		errs = errs.AppendIf(math.IsNaN(*odometer) || math.IsInf(*odometer, 0) || *odometer < 0, "odometer", "odometer cannot be negative")
	}
	errs = errs.AppendIf(!date.IsZero() && date.After(now.Add(futureTolerance)), "date", "date cannot be in the far future")
	return errs
}

func isPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func findEntryIndex(entries []FuelEntry, id ID) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func touchDatastore(ds *DataStore, ts time.Time) {
	if ds.ID == "" {
		ds.ID = NewID()
	}
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = ts
	}
	ds.UpdatedAt = ts
}
