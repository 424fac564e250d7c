package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"tasklite/internal/task"
)

const (
	DefaultTasksKey = "tasks"
	DefaultThemeKey = "darkMode"
)

// Adapter stores the task list and the dark-mode flag as two independent
// values in a KV. Loads never fail: anything unreadable comes back as the
// zero state and is logged.
type Adapter struct {
	kv       KV
	tasksKey string
	themeKey string
}

func NewAdapter(kv KV, tasksKey, themeKey string) *Adapter {
	if tasksKey == "" {
		tasksKey = DefaultTasksKey
	}
	if themeKey == "" {
		themeKey = DefaultThemeKey
	}
	return &Adapter{kv: kv, tasksKey: tasksKey, themeKey: themeKey}
}

func (a *Adapter) LoadTasks() []task.Task {
	raw, ok, err := a.kv.Get(a.tasksKey)
	if err != nil {
		log.Printf("warning: failed to read %q: %v", a.tasksKey, err)
		return []task.Task{}
	}
	if !ok {
		return []task.Task{}
	}
	var records []task.Task
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.Printf("warning: failed to parse %q, starting empty: %v", a.tasksKey, err)
		return []task.Task{}
	}

	out := make([]task.Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		r.Text = strings.TrimSpace(r.Text)
		if r.ID == "" || r.Text == "" {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (a *Adapter) SaveTasks(tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	if err := a.kv.Set(a.tasksKey, string(b)); err != nil {
		return fmt.Errorf("write %q: %w", a.tasksKey, err)
	}
	return nil
}

func (a *Adapter) LoadDisplayMode() bool {
	raw, ok, err := a.kv.Get(a.themeKey)
	if err != nil {
		log.Printf("warning: failed to read %q: %v", a.themeKey, err)
		return false
	}
	return ok && raw == "true"
}

func (a *Adapter) SaveDisplayMode(dark bool) error {
	if err := a.kv.Set(a.themeKey, strconv.FormatBool(dark)); err != nil {
		return fmt.Errorf("write %q: %w", a.themeKey, err)
	}
	return nil
}
