package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT",
		"ARCHIVE_BUCKET", "ARCHIVE_REGION", "ARCHIVE_ENDPOINT", "ARCHIVE_ACCESS_KEY",
		"ARCHIVE_SECRET_KEY", "ARCHIVE_KEY_PREFIX", "ARCHIVE_FORCE_PATH_STYLE", "ARCHIVE_LOCAL_DIR",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWhenNothingIsSet(t *testing.T) {
	clearEnv(t)

	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
port: "9090"
database_url: sqlite:/var/lib/projects.db
log_format: json
archive:
  bucket: originals
  region: eu-central-1
  key_prefix: /repairs/
  force_path_style: true
`)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ARCHIVE_BUCKET", "from-env")

	cfg, err := load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite:/var/lib/projects.db", cfg.DatabaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "from-env", cfg.Archive.Bucket)
	assert.Equal(t, "eu-central-1", cfg.Archive.Region)
	assert.Equal(t, "repairs", cfg.Archive.KeyPrefix)
	assert.True(t, cfg.Archive.ForcePathStyle)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "APP_PORT=7070\nARCHIVE_LOCAL_DIR=/tmp/archive\n")
	t.Setenv("APP_PORT", "6060")
	// godotenv treats a variable set to "" as present.
	require.NoError(t, os.Unsetenv("ARCHIVE_LOCAL_DIR"))

	cfg, err := load("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "6060", cfg.Port)
	assert.Equal(t, "/tmp/archive", cfg.Archive.LocalDir)
}

func TestLoad_RejectsBrokenYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", "port: [unterminated")

	_, err := load(path, "")
	assert.Error(t, err)
}

func TestGetenvBool(t *testing.T) {
	t.Setenv("FLAG", "yes-please")
	assert.True(t, getenvBool("FLAG", true))
	t.Setenv("FLAG", "false")
	assert.False(t, getenvBool("FLAG", true))
}
