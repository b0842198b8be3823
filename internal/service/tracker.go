// Package service ties a storage backend to the aggregation and formatting
// helpers in core.
package service

//go:generate mockgen -destination=mock/mock_store.go -package=mock fuel-tracker/internal/service EntryStore

import (
	"context"
	"log/slog"
	"time"

	"fuel-tracker/internal/core"
	applog "fuel-tracker/internal/log"
)

// EntryStore persists fuel entries and settings.
type EntryStore interface {
	Entries(ctx context.Context) ([]core.FuelEntry, error)
	AddEntry(ctx context.Context, params core.CreateEntryParams) (core.FuelEntry, error)
	UpdateEntry(ctx context.Context, id core.ID, params core.UpdateEntryParams) (core.FuelEntry, error)
	DeleteEntry(ctx context.Context, id core.ID) error
	ClearEntries(ctx context.Context) error
	ImportEntries(ctx context.Context, entries []core.FuelEntry) (core.ImportResult, error)
	Settings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, settings core.Settings) (core.Settings, error)
}

// Options configures a Tracker.
type Options struct {
	// Location decides which calendar month and year an entry falls in.
	// Nil means time.Local.
	Location    *time.Location
	RecentLimit int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Tracker serves the read models shown on the dashboard and forwards
// mutations to the store.
type Tracker struct {
	store       EntryStore
	loc         *time.Location
	recentLimit int
	logger      *slog.Logger
	now         func() time.Time
}

// NewTracker builds a Tracker over store.
func NewTracker(store EntryStore, opts Options) *Tracker {
	if store == nil {
		panic("nil EntryStore")
	}
	t := &Tracker{
		store:       store,
		loc:         opts.Location,
		recentLimit: opts.RecentLimit,
		logger:      applog.WithComponent(opts.Logger, applog.ComponentTracker),
		now:         opts.Now,
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if t.recentLimit <= 0 {
		t.recentLimit = core.DefaultRecentLimit
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// Location returns the time zone used for grouping.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// LoadEntries returns every stored entry. A storage failure is logged and
// yields an empty list so the dashboard still renders.
func (t *Tracker) LoadEntries(ctx context.Context) []core.FuelEntry {
	entries, err := t.store.Entries(ctx)
	if err != nil {
		t.logger.ErrorContext(ctx, "load entries", applog.FieldError, err)
		return []core.FuelEntry{}
	}
	if entries == nil {
		entries = []core.FuelEntry{}
	}
	return entries
}

// Entries returns every entry, newest first, with amounts and prices
// expressed in the unit of the current settings.
func (t *Tracker) Entries(ctx context.Context) []core.FuelEntry {
	entries := t.normalizedEntries(ctx)
	core.SortEntries(entries)
	return entries
}

// Settings returns the saved settings, or the defaults when they cannot be
// read.
func (t *Tracker) Settings(ctx context.Context) core.Settings {
	settings, err := t.store.Settings(ctx)
	if err != nil {
		t.logger.ErrorContext(ctx, "load settings", applog.FieldError, err)
		return core.DefaultSettings()
	}
	return settings.WithDefaults()
}

// Formatter returns a formatter bound to the current settings.
func (t *Tracker) Formatter(ctx context.Context) core.Formatter {
	return core.NewFormatter(t.Settings(ctx), t.loc)
}

// MonthlyStats aggregates all entries by month, most recent first. Amounts
// are expressed in the unit of the current settings.
func (t *Tracker) MonthlyStats(ctx context.Context) []core.MonthlyStats {
	return core.CalculateMonthlyStatsIn(t.normalizedEntries(ctx), t.loc)
}

// YearlyStats aggregates all entries by year, most recent first.
func (t *Tracker) YearlyStats(ctx context.Context) []core.YearlyStats {
	return core.CalculateYearlyStatsIn(t.normalizedEntries(ctx), t.loc)
}

// CurrentMonth summarises the month containing now.
func (t *Tracker) CurrentMonth(ctx context.Context) core.MonthSummary {
	return core.CurrentMonthSummary(t.normalizedEntries(ctx), t.now(), t.loc)
}

// RecentEntries returns the newest entries. A non-positive limit uses the
// configured default.
func (t *Tracker) RecentEntries(ctx context.Context, limit int) []core.FuelEntry {
	if limit <= 0 {
		limit = t.recentLimit
	}
	return core.RecentEntries(t.normalizedEntries(ctx), limit)
}

// ExportEntries returns every entry as stored. Unlike LoadEntries a storage
// failure is reported to the caller.
func (t *Tracker) ExportEntries(ctx context.Context) ([]core.FuelEntry, error) {
	entries, err := t.store.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []core.FuelEntry{}
	}
	return entries, nil
}

// AddEntry stores a new entry.
func (t *Tracker) AddEntry(ctx context.Context, params core.CreateEntryParams) (core.FuelEntry, error) {
	entry, err := t.store.AddEntry(ctx, params)
	if err != nil {
		return core.FuelEntry{}, err
	}
	t.logSave(ctx, applog.OpCreate, entry.ID)
	return entry, nil
}

// UpdateEntry replaces an existing entry.
func (t *Tracker) UpdateEntry(ctx context.Context, id core.ID, params core.UpdateEntryParams) (core.FuelEntry, error) {
	entry, err := t.store.UpdateEntry(ctx, id, params)
	if err != nil {
		return core.FuelEntry{}, err
	}
	t.logSave(ctx, applog.OpUpdate, entry.ID)
	return entry, nil
}

// DeleteEntry removes an entry.
func (t *Tracker) DeleteEntry(ctx context.Context, id core.ID) error {
	if err := t.store.DeleteEntry(ctx, id); err != nil {
		return err
	}
	t.logSave(ctx, applog.OpDelete, id)
	return nil
}

// ClearEntries removes every entry.
func (t *Tracker) ClearEntries(ctx context.Context) error {
	if err := t.store.ClearEntries(ctx); err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "entries cleared", applog.FieldOperation, applog.OpClear)
	return nil
}

// ImportEntries upserts a batch of entries.
func (t *Tracker) ImportEntries(ctx context.Context, entries []core.FuelEntry) (core.ImportResult, error) {
	result, err := t.store.ImportEntries(ctx, entries)
	if err != nil {
		return core.ImportResult{}, err
	}
	t.logger.InfoContext(ctx, "entries imported",
		applog.FieldOperation, applog.OpImport,
		applog.FieldCount, len(entries),
		"added", result.Added,
		"replaced", result.Replaced)
	return result, nil
}

// SaveSettings validates and stores settings.
func (t *Tracker) SaveSettings(ctx context.Context, settings core.Settings) (core.Settings, error) {
	saved, err := t.store.SaveSettings(ctx, settings)
	if err != nil {
		return core.Settings{}, err
	}
	t.logger.InfoContext(ctx, "settings saved",
		applog.FieldOperation, applog.OpSave,
		"currency", saved.Currency,
		"unit", saved.Unit)
	return saved, nil
}

func (t *Tracker) normalizedEntries(ctx context.Context) []core.FuelEntry {
	settings := t.Settings(ctx)
	return core.ConvertEntries(t.LoadEntries(ctx), settings.Unit, settings.Unit)
}

func (t *Tracker) logSave(ctx context.Context, op string, id core.ID) {
	t.logger.InfoContext(ctx, "entry saved",
		applog.FieldOperation, op,
		applog.FieldEntity, "entry",
		applog.FieldID, string(id))
}
