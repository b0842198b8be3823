package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"fuel-tracker/internal/core"
)

const (
	backupSuffix   = ".bak"
	maxBackupFiles = 3
	filePerms      = 0o600
	dirPerms       = 0o755
)

// JSONStore manages concurrent access to a JSON-backed datastore.
type JSONStore struct {
	path      string
	backupDir string

	mu   sync.RWMutex
	data *core.DataStore
}

// NewJSONStore loads the datastore from disk or initializes a new one when the
// file does not exist.
func NewJSONStore(path, backupDir string) (*JSONStore, error) {
	data, err := Load(path)
	if err != nil {
		return nil, err
	}

	if backupDir == "" {
		backupDir = filepath.Dir(path)
	}

	if err := os.MkdirAll(backupDir, dirPerms); err != nil {
		return nil, fmt.Errorf("ensure backup dir: %w", err)
	}

	return &JSONStore{path: path, backupDir: backupDir, data: data}, nil
}

// Data returns a deep copy of the current datastore snapshot.
func (s *JSONStore) Data() core.DataStore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneDataStore(s.data)
}

// Entries returns every entry, newest first.
func (s *JSONStore) Entries(ctx context.Context) ([]core.FuelEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Data().Entries, nil
}

// Settings returns the stored settings with defaults applied.
func (s *JSONStore) Settings(ctx context.Context) (core.Settings, error) {
	if err := ctx.Err(); err != nil {
		return core.Settings{}, err
	}
	return s.Data().Settings.WithDefaults(), nil
}

// AddEntry validates and persists a new entry.
func (s *JSONStore) AddEntry(ctx context.Context, params core.CreateEntryParams) (core.FuelEntry, error) {
	var entry core.FuelEntry
	err := s.mutate(ctx, func(ds *core.DataStore) error {
		var err error
		entry, err = core.AddEntry(ds, params)
		return err
	})
	return entry, err
}

// UpdateEntry replaces an existing entry.
func (s *JSONStore) UpdateEntry(ctx context.Context, id core.ID, params core.UpdateEntryParams) (core.FuelEntry, error) {
	var entry core.FuelEntry
	err := s.mutate(ctx, func(ds *core.DataStore) error {
		var err error
		entry, err = core.UpdateEntry(ds, id, params)
		return err
	})
	return entry, err
}

// DeleteEntry removes an entry.
func (s *JSONStore) DeleteEntry(ctx context.Context, id core.ID) error {
	return s.mutate(ctx, func(ds *core.DataStore) error {
		return core.DeleteEntry(ds, id)
	})
}

// ClearEntries removes every entry and keeps the settings.
func (s *JSONStore) ClearEntries(ctx context.Context) error {
	return s.mutate(ctx, core.ClearEntries)
}

// ImportEntries upserts a batch of entries.
func (s *JSONStore) ImportEntries(ctx context.Context, entries []core.FuelEntry) (core.ImportResult, error) {
	var result core.ImportResult
	err := s.mutate(ctx, func(ds *core.DataStore) error {
		var err error
		result, err = core.ImportEntries(ds, entries)
		return err
	})
	return result, err
}

// SaveSettings validates and stores the settings record.
func (s *JSONStore) SaveSettings(ctx context.Context, settings core.Settings) (core.Settings, error) {
	var saved core.Settings
	err := s.mutate(ctx, func(ds *core.DataStore) error {
		var err error
		saved, err = core.UpdateSettings(ds, settings)
		return err
	})
	return saved, err
}

// Replace swaps the in-memory datastore with the provided snapshot and persists it.
func (s *JSONStore) Replace(data core.DataStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := cloneDataStore(&data)
	s.data = &cloned
	return Save(s.path, s.backupDir, s.data)
}

// Close is a no-op; the file is rewritten on every change.
func (s *JSONStore) Close() error {
	return nil
}

// mutate applies fn to a copy of the datastore and swaps it in only when fn
// and the write to disk both succeed.
func (s *JSONStore) mutate(ctx context.Context, fn func(*core.DataStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := cloneDataStore(s.data)
	if err := fn(&working); err != nil {
		return err
	}
	if err := Save(s.path, s.backupDir, &working); err != nil {
		return err
	}
	s.data = &working
	return nil
}

// Load reads a datastore from disk. When the file does not exist a new
// datastore is returned with initialized metadata.
func Load(path string) (*core.DataStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			now := time.Now().UTC()
			return &core.DataStore{
				Meta:     core.Meta{ID: core.NewID(), CreatedAt: now, UpdatedAt: now},
				Entries:  []core.FuelEntry{},
				Settings: core.DefaultSettings(),
			}, nil
		}
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	var ds core.DataStore
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode datastore: %w", err)
	}

	if ds.Meta.ID == "" {
		ds.Meta.ID = core.NewID()
	}
	if ds.Meta.CreatedAt.IsZero() {
		ds.Meta.CreatedAt = time.Now().UTC()
	}
	if ds.Entries == nil {
		ds.Entries = []core.FuelEntry{}
	}
	ds.Settings = ds.Settings.WithDefaults()
	core.SortEntries(ds.Entries)

	return &ds, nil
}

// Save persists the datastore to disk with pretty-printed JSON, creating a
// rotated backup beforehand.
func Save(path, backupDir string, data *core.DataStore) error {
	if data == nil {
		return fmt.Errorf("nil datastore")
	}

	data.Meta.UpdatedAt = time.Now().UTC()

	if err := Backup(path, backupDir); err != nil {
		return fmt.Errorf("backup datastore: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "datastore-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode datastore: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, filePerms); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Backup copies the current datastore file aside before it is overwritten,
// keeping only the latest maxBackupFiles copies.
func Backup(path, backupDir string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("stat datastore: %w", err)
	}

	if backupDir == "" {
		backupDir = filepath.Dir(path)
	}

	if err := os.MkdirAll(backupDir, dirPerms); err != nil {
		return fmt.Errorf("ensure backup dir: %w", err)
	}

	base := filepath.Base(path)
	name := fmt.Sprintf("%s-%s%s", base, time.Now().UTC().Format("20060102T150405.000000000Z"), backupSuffix)
	backupPath := filepath.Join(backupDir, name)

	if err := copyFile(path, backupPath); err != nil {
		return fmt.Errorf("copy backup: %w", err)
	}

	pattern := fmt.Sprintf("%s-%s%s", base, "*", backupSuffix)
	matches, err := filepath.Glob(filepath.Join(backupDir, pattern))
	if err != nil {
		return fmt.Errorf("glob backups: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i] > matches[j] })

	for idx, file := range matches {
		if idx < maxBackupFiles {
			continue
		}
		_ = os.Remove(file)
	}

	return nil
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, input, filePerms)
}

func cloneDataStore(ds *core.DataStore) core.DataStore {
	if ds == nil {
		return core.DataStore{}
	}
	clone := *ds
	clone.Entries = make([]core.FuelEntry, len(ds.Entries))
	for i, e := range ds.Entries {
		if e.Odometer != nil {
			v := *e.Odometer
			e.Odometer = &v
		}
		clone.Entries[i] = e
	}
	return clone
}
