package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fuel-tracker/internal/core"
)

const timeLayout = time.RFC3339Nano

const selectEntryColumns = `SELECT id, date, cost, amount, unit, price_per_unit, odometer, notes, created_at, updated_at FROM entries`

// SQLiteStore keeps entries and settings in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath and applies pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), dirPerms); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers and keeps transactions simple.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Entries returns every entry, newest first.
func (s *SQLiteStore) Entries(ctx context.Context) ([]core.FuelEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntryColumns)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []core.FuelEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	core.SortEntries(entries)
	return entries, nil
}

// Settings returns the stored settings, or the defaults when none were saved.
func (s *SQLiteStore) Settings(ctx context.Context) (core.Settings, error) {
	return loadSettings(ctx, s.db)
}

// AddEntry validates and inserts a new entry.
func (s *SQLiteStore) AddEntry(ctx context.Context, params core.CreateEntryParams) (core.FuelEntry, error) {
	var entry core.FuelEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if params.Unit == "" {
			settings, err := loadSettings(ctx, tx)
			if err != nil {
				return err
			}
			params.Unit = settings.Unit
		}
		var err error
		entry, err = core.NewEntry(params, time.Now().UTC())
		if err != nil {
			return err
		}
		return upsertEntry(ctx, tx, entry)
	})
	return entry, err
}

// UpdateEntry replaces an existing entry.
func (s *SQLiteStore) UpdateEntry(ctx context.Context, id core.ID, params core.UpdateEntryParams) (core.FuelEntry, error) {
	var entry core.FuelEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanEntry(tx.QueryRowContext(ctx, selectEntryColumns+` WHERE id = ?`, string(id)))
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrEntryNotFound
		}
		if err != nil {
			return err
		}
		entry, err = core.ApplyEntryUpdate(current, params, time.Now().UTC())
		if err != nil {
			return err
		}
		return upsertEntry(ctx, tx, entry)
	})
	return entry, err
}

// DeleteEntry removes an entry.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id core.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return core.ErrEntryNotFound
	}
	return nil
}

// ClearEntries removes every entry and keeps the settings.
func (s *SQLiteStore) ClearEntries(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// ImportEntries upserts a batch of entries in a single transaction.
func (s *SQLiteStore) ImportEntries(ctx context.Context, entries []core.FuelEntry) (core.ImportResult, error) {
	var result core.ImportResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		settings, err := loadSettings(ctx, tx)
		if err != nil {
			return err
		}
		prepared, err := core.PrepareImport(entries, settings.Unit, time.Now().UTC())
		if err != nil {
			return err
		}
		for _, entry := range prepared {
			var createdAt string
			err := tx.QueryRowContext(ctx, `SELECT created_at FROM entries WHERE id = ?`, string(entry.ID)).Scan(&createdAt)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				result.Added++
			case err != nil:
				return fmt.Errorf("lookup entry %s: %w", entry.ID, err)
			default:
				if t, perr := time.Parse(timeLayout, createdAt); perr == nil {
					entry.CreatedAt = t
				}
				result.Replaced++
			}
			if err := upsertEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.ImportResult{}, err
	}
	return result, nil
}

// SaveSettings validates and stores the settings record.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings core.Settings) (core.Settings, error) {
	settings = core.NormalizeSettings(settings)
	if errs := core.ValidateSettings(settings); len(errs) > 0 {
		return core.Settings{}, errs
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, language, currency, unit) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET language = excluded.language, currency = excluded.currency, unit = excluded.unit`,
		settings.Language, settings.Currency, string(settings.Unit))
	if err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadSettings(ctx context.Context, q queryer) (core.Settings, error) {
	var settings core.Settings
	var unit string
	err := q.QueryRowContext(ctx, `SELECT language, currency, unit FROM settings WHERE id = 1`).
		Scan(&settings.Language, &settings.Currency, &unit)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings.Unit = core.Unit(unit)
	return settings.WithDefaults(), nil
}

func upsertEntry(ctx context.Context, tx *sql.Tx, e core.FuelEntry) error {
	var odometer sql.NullFloat64
	if e.Odometer != nil {
		odometer = sql.NullFloat64{Float64: *e.Odometer, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO entries (id, date, cost, amount, unit, price_per_unit, odometer, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			cost = excluded.cost,
			amount = excluded.amount,
			unit = excluded.unit,
			price_per_unit = excluded.price_per_unit,
			odometer = excluded.odometer,
			notes = excluded.notes,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		string(e.ID),
		e.Date.Format(timeLayout),
		e.Cost,
		e.Amount,
		string(e.Unit),
		e.PricePerUnit,
		odometer,
		e.Notes,
		e.CreatedAt.UTC().Format(timeLayout),
		e.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save entry %s: %w", e.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.FuelEntry, error) {
	var (
		e                    core.FuelEntry
		id, date, unit       string
		createdAt, updatedAt string
		odometer             sql.NullFloat64
	)
	if err := row.Scan(&id, &date, &e.Cost, &e.Amount, &unit, &e.PricePerUnit, &odometer, &e.Notes, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.FuelEntry{}, err
		}
		return core.FuelEntry{}, fmt.Errorf("scan entry: %w", err)
	}

	var err error
	e.ID = core.ID(id)
	e.Unit = core.Unit(unit)
	if e.Date, err = time.Parse(timeLayout, date); err != nil {
		return core.FuelEntry{}, fmt.Errorf("%w: entry %s: %q", core.ErrInvalidDate, id, date)
	}
	if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return core.FuelEntry{}, fmt.Errorf("parse created_at of %s: %w", id, err)
	}
	if e.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return core.FuelEntry{}, fmt.Errorf("parse updated_at of %s: %w", id, err)
	}
	if odometer.Valid {
		v := odometer.Float64
		e.Odometer = &v
	}
	return e, nil
}
