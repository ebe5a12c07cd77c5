package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, filepath.Join(dir, ".guidepost", "sessions"), cfg.SessionsDir)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
port: "9090"
store: redis
tours_dir: tours
redis:
  addr: redis:6379
  ttl: 1h
  locking: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(content), 0644))
	t.Setenv("GUIDEPOST_PORT", "7070")

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port, "env overrides file")
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.True(t, cfg.Redis.Locking)
	assert.Equal(t, filepath.Join(dir, "tours"), cfg.ToursDir)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("GUIDEPOST_REDIS_DB", "one")
	_, err := Load(t.TempDir(), "")
	assert.ErrorContains(t, err, "parse env")
	assert.ErrorContains(t, err, `"DB"`)
}

func TestLoad_NestedRedisEnv(t *testing.T) {
	t.Setenv("GUIDEPOST_STORE", "redis")
	t.Setenv("GUIDEPOST_REDIS_ADDR", "cache:6380")
	t.Setenv("GUIDEPOST_REDIS_DB", "2")
	t.Setenv("GUIDEPOST_REDIS_TTL", "90m")
	t.Setenv("GUIDEPOST_REDIS_LOCKING", "true")
	t.Setenv("GUIDEPOST_MAX_INPUT_SIZE", "512")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 90*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.Redis.Locking)
	assert.Equal(t, 512, cfg.MaxInputSize)
	assert.Equal(t, "guidepost:session:", cfg.Redis.Prefix, "unset variables keep defaults")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unknown store")

	cfg = Default()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxInputSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadDotEnv(dir), "missing .env is fine")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GUIDEPOST_TEST_DOTENV=loaded\n"), 0644))
	t.Setenv("GUIDEPOST_TEST_DOTENV", "")
	os.Unsetenv("GUIDEPOST_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(dir))
	assert.Equal(t, "loaded", os.Getenv("GUIDEPOST_TEST_DOTENV"))
}
