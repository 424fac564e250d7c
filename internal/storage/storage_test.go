package storage

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklite/internal/task"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	db, err := Open(filepath.Join(dir, "nested", "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fs, err := OpenFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)

	return map[string]KV{
		"sqlite": db,
		"file":   fs,
		"memory": NewMemory(),
	}
}

func TestKV_GetSet(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("k", "v1"))
			require.NoError(t, kv.Set("k", "v2"))
			v, ok, err := kv.Get("k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", v)
		})
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
	_, err = OpenFile("")
	assert.Error(t, err)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Set("tasks", `[]`))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := db.Get("tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	fs, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, fs.Set("darkMode", "true"))

	fs, err = OpenFile(path)
	require.NoError(t, err)
	v, ok, _ := fs.Get("darkMode")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestFileStore_DamagedFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	fs, err := OpenFile(path)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "warning: "+path+" is not valid JSON")
	_, ok, _ := fs.Get("tasks")
	assert.False(t, ok)

	require.NoError(t, fs.Set("tasks", "[]"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"tasks"`)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:already", sqliteDSN("file:already"))
	dsn := sqliteDSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:///tmp/x.db")
	assert.Contains(t, dsn, "mode=rwc")
}

func TestAdapter_RoundTrip(t *testing.T) {
	lists := [][]task.Task{
		{},
		{{ID: "1", Text: "Buy milk"}},
		{{ID: "1", Text: "A", Completed: true}, {ID: "2", Text: "B"}, {ID: "3", Text: "<b>C</b> & \"quotes\""}},
	}
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(kv, "", "")
			for _, tasks := range lists {
				require.NoError(t, a.SaveTasks(tasks))
				assert.Equal(t, tasks, a.LoadTasks())
			}
		})
	}
}

func TestAdapter_LoadTasksDegradesToEmpty(t *testing.T) {
	cases := map[string]string{
		"invalid json": `[{"id":`,
		"object":       `{"id":"1","text":"A"}`,
		"wrong types":  `[{"id":"1","text":"A","completed":"yes"}]`,
		"null":         `null`,
		"empty":        ``,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			kv := NewMemory()
			require.NoError(t, kv.Set(DefaultTasksKey, raw))
			got := NewAdapter(kv, "", "").LoadTasks()
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}

	assert.Empty(t, NewAdapter(NewMemory(), "", "").LoadTasks())
}

func TestAdapter_LoadTasksDropsMalformedRecords(t *testing.T) {
	kv := NewMemory()
	require.NoError(t, kv.Set(DefaultTasksKey, `[
		{"id":"1","text":"  keep  "},
		{"id":"","text":"no id"},
		{"id":"2","text":"   "},
		{"id":"1","text":"duplicate"},
		{"id":"3","text":"done","completed":true}
	]`))

	got := NewAdapter(kv, "", "").LoadTasks()
	assert.Equal(t, []task.Task{
		{ID: "1", Text: "keep"},
		{ID: "3", Text: "done", Completed: true},
	}, got)
}

func TestAdapter_SavesNilAsEmptyArray(t *testing.T) {
	kv := NewMemory()
	require.NoError(t, NewAdapter(kv, "", "").SaveTasks(nil))
	v, _, _ := kv.Get(DefaultTasksKey)
	assert.Equal(t, "[]", v)
}

func TestAdapter_DisplayMode(t *testing.T) {
	kv := NewMemory()
	a := NewAdapter(kv, "t", "theme")

	assert.False(t, a.LoadDisplayMode())
	require.NoError(t, a.SaveDisplayMode(true))
	assert.True(t, a.LoadDisplayMode())
	v, _, _ := kv.Get("theme")
	assert.Equal(t, "true", v)

	require.NoError(t, a.SaveDisplayMode(false))
	assert.False(t, a.LoadDisplayMode())

	require.NoError(t, kv.Set("theme", "garbage"))
	assert.False(t, a.LoadDisplayMode())
}

func TestAdapter_KeysAreIndependent(t *testing.T) {
	kv := NewMemory()
	a := NewAdapter(kv, "", "")
	require.NoError(t, a.SaveDisplayMode(true))
	require.NoError(t, a.SaveTasks([]task.Task{{ID: "1", Text: "A"}}))
	assert.True(t, a.LoadDisplayMode())
	assert.Len(t, a.LoadTasks(), 1)
}
