package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envMu prevents concurrent sub-tests from clobbering process-wide environment variables.
var envMu sync.Mutex

var managedKeys = []string{
	"FUEL_BACKEND",
	"FUEL_DATA_FILE",
	"FUEL_BACKUP_DIR",
	"FUEL_SQLITE_PATH",
	"FUEL_LISTEN_ADDR",
	"FUEL_TIMEZONE",
	"FUEL_RECENT_LIMIT",
	"FUEL_LOG_LEVEL",
	"FUEL_LOG_FORMAT",
	"FUEL_TSNET_ENABLED",
	"FUEL_TSNET_DIR",
}

// withEnv sets the managed variables for the duration of a sub-test. Keys not
// present in env are unset. The mutex is released on cleanup.
func withEnv(t *testing.T, env map[string]string) {
	t.Helper()

	envMu.Lock()
	saved := make(map[string]*string, len(managedKeys))
	for _, key := range managedKeys {
		if val, ok := os.LookupEnv(key); ok {
			v := val
			saved[key] = &v
		} else {
			saved[key] = nil
		}
		if val, ok := env[key]; ok {
			require.NoError(t, os.Setenv(key, val))
		} else {
			require.NoError(t, os.Unsetenv(key))
		}
	}

	t.Cleanup(func() {
		for key, val := range saved {
			if val == nil {
				_ = os.Unsetenv(key)
				continue
			}
			_ = os.Setenv(key, *val)
		}
		envMu.Unlock()
	})
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	dataFile := filepath.Join(tempDir, "nested", "fuel.json")
	backupDir := filepath.Join(tempDir, "backups")

	withEnv(t, map[string]string{
		"FUEL_DATA_FILE":  dataFile,
		"FUEL_BACKUP_DIR": backupDir,
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, dataFile, cfg.DataFile)
	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, defaultRecentLimit, cfg.RecentLimit)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.TsnetEnabled)
	assert.Equal(t, "fuel", cfg.TsnetHostname)

	assert.DirExists(t, filepath.Dir(dataFile))
	assert.DirExists(t, backupDir)
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	type params struct {
		env map[string]string
	}
	type want struct {
		expectErr bool
		check     func(t *testing.T, cfg *Config)
	}

	tcs := []struct {
		name   string
		params params
		want   want
	}{
		{
			name:   "sqlite backend",
			params: params{env: map[string]string{"FUEL_BACKEND": "SQLite"}},
			want: want{check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendSQLite, cfg.Backend)
			}},
		},
		{
			name:   "unknown backend",
			params: params{env: map[string]string{"FUEL_BACKEND": "postgres"}},
			want:   want{expectErr: true},
		},
		{
			name:   "named time zone",
			params: params{env: map[string]string{"FUEL_TIMEZONE": "UTC"}},
			want: want{check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "UTC", cfg.Location.String())
			}},
		},
		{
			name:   "unknown time zone",
			params: params{env: map[string]string{"FUEL_TIMEZONE": "Mars/Olympus"}},
			want:   want{expectErr: true},
		},
		{
			name:   "custom recent limit",
			params: params{env: map[string]string{"FUEL_RECENT_LIMIT": "10"}},
			want: want{check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10, cfg.RecentLimit)
			}},
		},
		{
			name:   "zero recent limit",
			params: params{env: map[string]string{"FUEL_RECENT_LIMIT": "0"}},
			want:   want{expectErr: true},
		},
		{
			name:   "json debug logging",
			params: params{env: map[string]string{"FUEL_LOG_LEVEL": "debug", "FUEL_LOG_FORMAT": "json"}},
			want: want{check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
				assert.Equal(t, "json", cfg.LogFormat)
			}},
		},
		{
			name:   "bad log level",
			params: params{env: map[string]string{"FUEL_LOG_LEVEL": "chatty"}},
			want:   want{expectErr: true},
		},
		{
			name:   "tsnet enabled",
			params: params{env: map[string]string{"FUEL_TSNET_ENABLED": "yes"}},
			want: want{check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.TsnetEnabled)
				assert.DirExists(t, cfg.TsnetDir)
			}},
		},
		{
			name:   "tsnet flag not boolean",
			params: params{env: map[string]string{"FUEL_TSNET_ENABLED": "maybe"}},
			want:   want{expectErr: true},
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tempDir := t.TempDir()
			env := map[string]string{
				"FUEL_DATA_FILE":   filepath.Join(tempDir, "fuel.json"),
				"FUEL_BACKUP_DIR":  filepath.Join(tempDir, "backups"),
				"FUEL_SQLITE_PATH": filepath.Join(tempDir, "db", "fuel.db"),
				"FUEL_TSNET_DIR":   filepath.Join(tempDir, "tsnet"),
			}
			for k, v := range tc.params.env {
				env[k] = v
			}
			withEnv(t, env)

			cfg, err := Load()
			if tc.want.expectErr {
				require.Error(t, err, tc.name)
				return
			}
			require.NoError(t, err, tc.name)
			tc.want.check(t, cfg)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	require.NoError(t, LoadDotEnv(filepath.Join(tempDir, "missing.env")))

	path := filepath.Join(tempDir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FUEL_RECENT_LIMIT=7\n"), 0o600))

	withEnv(t, map[string]string{
		"FUEL_DATA_FILE":  filepath.Join(tempDir, "fuel.json"),
		"FUEL_BACKUP_DIR": filepath.Join(tempDir, "backups"),
	})
	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RecentLimit)
}
