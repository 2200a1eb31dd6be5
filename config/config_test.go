package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_DATABASE_DSN", "file::memory:")
	t.Setenv("APP_FEED_PAGE_SIZE", "10")
	t.Setenv("APP_FEED_RETRY_LEASE", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Feed.PageSize)
	assert.Equal(t, 100, cfg.Feed.MaxPageSize)
	assert.Equal(t, 5*time.Minute, cfg.Redis.FollowerTTL)
	assert.Equal(t, 90*time.Second, cfg.Feed.RetryLease)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	yaml := []byte("database:\n  driver: sqlite\n  dsn: test.db\nfeed:\n  insert_batch_size: 64\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test.db", cfg.Database.DSN)
	assert.Equal(t, 64, cfg.Feed.InsertBatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Feed.RetryLease)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "mysql", DSN: "x"},
		JWT:      JWTConfig{Secret: "s"},
		Feed:     FeedConfig{PageSize: 20, MaxPageSize: 100},
	}
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	assert.NoError(t, cfg.Validate())

	cfg.Feed.MaxPageSize = 5
	assert.Error(t, cfg.Validate())
}
