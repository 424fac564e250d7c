package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tasklite/internal/app"
	"tasklite/internal/task"
)

func execute(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func run(t *testing.T, cfgPath, stdin string, args ...string) string {
	t.Helper()
	out, err := execute(t, cfgPath, stdin, args...)
	require.NoError(t, err)
	return out
}

func listJSON(t *testing.T, cfgPath string, extra ...string) listing {
	t.Helper()
	out := run(t, cfgPath, "", append([]string{"list", "--format", "json"}, extra...)...)
	var l listing
	require.NoError(t, json.Unmarshal([]byte(out), &l))
	return l
}

func tempConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "config.toml")
}

func TestCLI_AddAndList(t *testing.T) {
	cfg := tempConfig(t)

	assert.Contains(t, run(t, cfg, "", "add", "Buy", "milk"), "Added ")
	assert.Equal(t, "Nothing to save\n", run(t, cfg, "", "add", "   "))

	l := listJSON(t, cfg)
	require.Len(t, l.Tasks, 1)
	assert.Equal(t, "Buy milk", l.Tasks[0].Text)
	assert.Equal(t, app.Counts{Total: 1, Active: 1}, l.Counts)
	assert.Equal(t, task.FilterAll, l.Filter)

	text := run(t, cfg, "", "list")
	assert.Contains(t, text, "[ ] "+l.Tasks[0].ID+"  Buy milk")
	assert.Contains(t, text, "Total 1 • Active 1 • Completed 0")
}

func TestCLI_ToggleEditAndFilter(t *testing.T) {
	cfg := tempConfig(t)
	run(t, cfg, "", "add", "A")
	run(t, cfg, "", "add", "B")
	ids := listJSON(t, cfg).Tasks

	assert.Contains(t, run(t, cfg, "", "toggle", ids[0].ID), "is completed")
	run(t, cfg, "", "edit", ids[1].ID, "B2")

	active := listJSON(t, cfg, "--filter", "active")
	require.Len(t, active.Tasks, 1)
	assert.Equal(t, "B2", active.Tasks[0].Text)
	assert.Equal(t, app.Counts{Total: 2, Active: 1, Completed: 1}, active.Counts)

	done := listJSON(t, cfg, "--filter", "COMPLETED")
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, "A", done.Tasks[0].Text)

	_, err := execute(t, cfg, "", "list", "--filter", "someday")
	assert.Error(t, err)
	_, err = execute(t, cfg, "", "list", "--format", "xml")
	assert.Error(t, err)
}

func TestCLI_RmAsks(t *testing.T) {
	cfg := tempConfig(t)
	run(t, cfg, "", "add", "A")
	id := listJSON(t, cfg).Tasks[0].ID

	out := run(t, cfg, "n\n", "rm", id)
	assert.Contains(t, out, app.PromptDelete+" [y/N]")
	assert.Contains(t, out, "Kept")
	assert.Len(t, listJSON(t, cfg).Tasks, 1)

	assert.Contains(t, run(t, cfg, "", "rm", id), "Kept", "no answer declines")

	assert.Contains(t, run(t, cfg, "y\n", "rm", id), "Deleted "+id)
	assert.Empty(t, listJSON(t, cfg).Tasks)

	_, err := execute(t, cfg, "", "rm", id)
	assert.Error(t, err)
}

func TestCLI_Clear(t *testing.T) {
	cfg := tempConfig(t)
	assert.Equal(t, "Nothing to clear\n", run(t, cfg, "", "clear"))

	run(t, cfg, "", "add", "A")
	run(t, cfg, "", "add", "B")

	out := run(t, cfg, "no\n", "clear")
	assert.Contains(t, out, app.PromptClear)
	assert.Len(t, listJSON(t, cfg).Tasks, 2)

	assert.Equal(t, "Cleared\n", run(t, cfg, "", "clear", "--yes"))
	l := listJSON(t, cfg)
	assert.Empty(t, l.Tasks)
	assert.Equal(t, app.Counts{}, l.Counts)
}

func TestCLI_Theme(t *testing.T) {
	cfg := tempConfig(t)
	assert.Equal(t, "Theme: dark\n", run(t, cfg, "", "theme"))
	assert.Equal(t, "Theme: light\n", run(t, cfg, "", "theme"))
}

func TestResolveID(t *testing.T) {
	tasks := []task.Task{{ID: "abc1"}, {ID: "abc2"}, {ID: "abc"}, {ID: "xyz"}}

	id, err := resolveID(tasks, "x")
	require.NoError(t, err)
	assert.Equal(t, "xyz", id)

	id, err = resolveID(tasks, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", id, "exact match wins over prefixes")

	_, err = resolveID(tasks, "ab")
	assert.ErrorContains(t, err, "ambiguous")
	_, err = resolveID(tasks, "q")
	assert.ErrorContains(t, err, "no task")
	_, err = resolveID(tasks, "")
	assert.Error(t, err)
}

func TestWriteListing_YAMLAndPlainText(t *testing.T) {
	l := listing{
		Filter: task.FilterActive,
		Tasks:  []task.Task{{ID: "1", Text: "red\x1b[31m text"}},
		Counts: app.Counts{Total: 1, Active: 1},
	}

	plainListing := l
	plainListing.Tasks = []task.Task{{ID: "1", Text: "Buy milk", Completed: true}}

	var buf bytes.Buffer
	require.NoError(t, writeListing(&buf, plainListing, "yaml"))
	assert.Contains(t, buf.String(), "text: Buy milk")
	var back listing
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, plainListing, back)

	buf.Reset()
	require.NoError(t, writeListing(&buf, l, "text"))
	assert.NotContains(t, buf.String(), "\x1b")
	assert.Contains(t, buf.String(), "[ ] 1  red text")

	buf.Reset()
	require.NoError(t, writeListing(&buf, listing{}, ""))
	assert.Contains(t, buf.String(), "No tasks.")
}
