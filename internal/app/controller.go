// Package app holds the controller that reconciles the task store, the
// active filter and the edit session with whatever surface paints them.
//
// Every mutation ends in a full Render: surfaces never patch their previous
// output, they replace it.
package app

import (
	"tasklite/internal/task"
)

const (
	PromptDelete = "Delete this task forever?"
	PromptClear  = "NUKE ALL TASKS? This is permanent!"
)

// Renderer is the painting side of a surface.
type Renderer interface {
	RenderList(items []Item)
	RenderStats(c Counts)
	SetEmptyState(empty bool)
	SetClearAllVisible(visible bool)
}

// InputFiller is implemented by surfaces that own the shared input field.
type InputFiller interface {
	FillInput(text string)
}

// Confirmer gates destructive actions.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// ThemeStore persists the display-mode flag.
type ThemeStore interface {
	LoadDisplayMode() bool
	SaveDisplayMode(dark bool) error
}

type Item struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Editing   bool   `json:"editing"`
	Index     int    `json:"index"`
}

type Counts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

func Tally(tasks []task.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		}
	}
	c.Active = c.Total - c.Completed
	return c
}

type ActionKind int

const (
	ActionToggle ActionKind = iota + 1
	ActionEdit
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionToggle:
		return "toggle"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ParseAction is the inverse of ActionKind.String; unknown names yield 0.
func ParseAction(s string) ActionKind {
	switch s {
	case "toggle":
		return ActionToggle
	case "edit":
		return ActionEdit
	case "delete":
		return ActionDelete
	default:
		return 0
	}
}

// Event is what a surface emits for an interaction on one item.
type Event struct {
	Kind   ActionKind
	TaskID string
}

// Controller owns the UI state. It is not safe for concurrent use.
type Controller struct {
	store   *task.Store
	edit    *task.EditSession
	filter  task.Filter
	dark    bool
	theme   ThemeStore
	view    Renderer
	confirm Confirmer
}

func New(store *task.Store, theme ThemeStore, view Renderer, confirm Confirmer) *Controller {
	return &Controller{
		store:   store,
		edit:    task.NewEditSession(store),
		filter:  task.FilterAll,
		dark:    theme.LoadDisplayMode(),
		theme:   theme,
		view:    view,
		confirm: confirm,
	}
}

// Render paints the current snapshot from scratch.
func (c *Controller) Render() {
	all := c.store.List()
	visible := task.Select(all, c.filter)
	editing, _ := c.edit.Active()

	items := make([]Item, 0, len(visible))
	for i, t := range visible {
		items = append(items, Item{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			Editing:   t.ID == editing,
			Index:     i,
		})
	}
	counts := Tally(all)

	c.view.RenderList(items)
	c.view.SetEmptyState(len(items) == 0)
	c.view.RenderStats(counts)
	c.view.SetClearAllVisible(counts.Total > 0)
}

// Submit is the input field's submit action. It creates a task, or commits
// the edit when a session is active.
func (c *Controller) Submit(text string) error {
	defer c.Render()
	return c.edit.Commit(text)
}

// Dispatch handles an item event. Unknown ids are ignored.
func (c *Controller) Dispatch(ev Event) error {
	switch ev.Kind {
	case ActionToggle:
		defer c.Render()
		return c.store.Toggle(ev.TaskID)
	case ActionEdit:
		c.BeginEdit(ev.TaskID)
		return nil
	case ActionDelete:
		return c.Delete(ev.TaskID)
	}
	return nil
}

// BeginEdit loads the task's text into the input. Any edit already in
// progress is dropped.
func (c *Controller) BeginEdit(id string) bool {
	text, ok := c.edit.Begin(id)
	if !ok {
		return false
	}
	if f, isFiller := c.view.(InputFiller); isFiller {
		f.FillInput(text)
	}
	c.Render()
	return true
}

func (c *Controller) CancelEdit() {
	c.edit.Cancel()
	c.Render()
}

func (c *Controller) Delete(id string) error {
	if _, ok := c.store.Get(id); !ok {
		return nil
	}
	if !c.confirm.Confirm(PromptDelete) {
		return nil
	}
	defer c.Render()
	return c.store.Remove(id)
}

// ClearAll empties the list after confirmation. It asks nothing when the
// list is already empty.
func (c *Controller) ClearAll() error {
	if c.store.Len() == 0 {
		return nil
	}
	if !c.confirm.Confirm(PromptClear) {
		return nil
	}
	defer c.Render()
	return c.store.Clear()
}

func (c *Controller) SetFilter(f task.Filter) {
	if !f.Valid() {
		f = task.FilterAll
	}
	c.filter = f
	c.Render()
}

func (c *Controller) Filter() task.Filter {
	return c.filter
}

// ToggleTheme flips and persists the display mode. The flip sticks even if
// the write fails.
func (c *Controller) ToggleTheme() error {
	c.dark = !c.dark
	return c.theme.SaveDisplayMode(c.dark)
}

func (c *Controller) DarkMode() bool {
	return c.dark
}

func (c *Controller) Editing() (string, bool) {
	return c.edit.Active()
}

func (c *Controller) Tasks() []task.Task {
	return c.store.List()
}
