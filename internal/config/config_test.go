package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklite/internal/storage"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, filepath.Join(dir, "sub", DefaultDBName), cfg.DBPath)
	assert.Equal(t, "all", cfg.DefaultFilter)
	assert.Equal(t, "ctrl+d", cfg.Keys.Theme)
	assert.Equal(t, " ", cfg.Keys.Toggle)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreate_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
backend = "file"
file_path = "/abs/tasks.json"
default_filter = " Active "

[keys]
quit = "x"

[ambient]
population = 5
`), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, "/abs/tasks.json", cfg.FilePath)
	assert.Equal(t, "active", cfg.DefaultFilter)
	assert.Equal(t, "x", cfg.Keys.Quit)
	assert.Equal(t, "a", cfg.Keys.Add)
	assert.Equal(t, storage.DefaultTasksKey, cfg.TasksKey)
	assert.Equal(t, DefaultAddr, cfg.Web.Addr)

	field := cfg.Ambient.Field()
	assert.Equal(t, 5, field.Population)
	assert.Equal(t, 45*time.Second, field.Lifetime)
}

func TestLoadOrCreate_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad toml":    `backend = `,
		"bad backend": `backend = "redis"`,
		"bad filter":  `default_filter = "someday"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadOrCreate(path)
			assert.Error(t, err)
		})
	}
}

func TestResolveConfigPath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ResolveConfigPath())
}

func TestOpenKV(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.DBPath = filepath.Join(dir, "a.db")
	cfg.FilePath = filepath.Join(dir, "a.json")

	for _, backend := range []string{BackendSQLite, BackendFile, BackendMemory} {
		cfg.Backend = backend
		kv, err := cfg.OpenKV()
		require.NoError(t, err, backend)
		require.NoError(t, kv.Set("k", "v"), backend)
		v, ok, err := kv.Get("k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", v)
		require.NoError(t, kv.Close())
	}
}
