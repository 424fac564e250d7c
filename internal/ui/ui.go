package ui

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasklite/internal/ambient"
	"tasklite/internal/app"
	"tasklite/internal/config"
	"tasklite/internal/task"
)

const tickInterval = time.Second

type mode int

const (
	modeList mode = iota
	modeInput
	modeConfirm
)

type tickMsg time.Time

type Model struct {
	ctrl    *app.Controller
	frame   *app.Frame
	gate    *app.Gate
	field   *ambient.Field
	cfg     config.Config
	cursor  int
	mode    mode
	input   textinput.Model
	status  string
	confirm func() error
	done    string
	width   int
	styles  styles
}

// New wires a model to a controller that renders into frame and asks gate
// for confirmations. field may be nil.
func New(ctrl *app.Controller, frame *app.Frame, gate *app.Gate, field *ambient.Field, cfg config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 0
	ti.Width = 40

	m := Model{
		ctrl:   ctrl,
		frame:  frame,
		gate:   gate,
		field:  field,
		cfg:    cfg,
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Delete),
		width:  60,
		styles: newStyles(ctrl.DarkMode()),
	}
	ctrl.SetFilter(task.ParseFilter(cfg.DefaultFilter))
	return m
}

func Run(m Model) error {
	if m.cfg.LogPath != "" {
		f, err := tea.LogToFile(m.cfg.LogPath, "tasklite")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	if m.field == nil {
		return nil
	}
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.field == nil {
			return m, nil
		}
		m.field.Advance(time.Time(msg))
		return m, tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Theme:
		return m.toggleTheme(), nil
	}

	switch m.mode {
	case modeConfirm:
		return m.updateConfirm(key)
	case modeInput:
		return m.updateInputMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) toggleTheme() Model {
	if err := m.ctrl.ToggleTheme(); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
	} else if m.ctrl.DarkMode() {
		m.status = "Dark mode"
	} else {
		m.status = "Light mode"
	}
	m.styles = newStyles(m.ctrl.DarkMode())
	return m
}

func (m Model) focusInput(status string) (Model, tea.Cmd) {
	m.mode = modeInput
	m.status = status
	return m, m.input.Focus()
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		if _, editing := m.ctrl.Editing(); editing {
			m.ctrl.CancelEdit()
			m.status = "Edit cancelled"
		} else {
			m.status = "Cancelled"
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return m, nil
	case m.cfg.Keys.Confirm:
		_, editing := m.ctrl.Editing()
		blank := strings.TrimSpace(m.input.Value()) == ""
		if err := m.ctrl.Submit(m.input.Value()); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
		} else {
			switch {
			case blank:
				m.status = "Nothing to save"
			case editing:
				m.status = "Saved edit"
			default:
				m.status = "Added task"
			}
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		m.cursor = clampCursor(m.cursor, len(m.frame.Items))
		return m, nil
	case m.cfg.Keys.FocusInput:
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	items := m.frame.Items
	switch key {
	case m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(items))
	case m.cfg.Keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(items))
	case m.cfg.Keys.Add, m.cfg.Keys.FocusInput:
		return m.focusInput("Type a task and press Enter")
	case m.cfg.Keys.Toggle:
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.ctrl.Dispatch(app.Event{Kind: app.ActionToggle, TaskID: item.ID}); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.status = "Toggled task"
	case m.cfg.Keys.Edit:
		item, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		if err := m.ctrl.Dispatch(app.Event{Kind: app.ActionEdit, TaskID: item.ID}); err != nil {
			m.status = fmt.Sprintf("edit failed: %v", err)
			return m, nil
		}
		text, filled := m.frame.TakeFill()
		if !filled {
			return m, nil
		}
		m.input.SetValue(text)
		m.input.CursorEnd()
		return m.focusInput("Editing: Enter to save, Esc to cancel")
	case m.cfg.Keys.Delete:
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		ev := app.Event{Kind: app.ActionDelete, TaskID: item.ID}
		return m.ask(func() error { return m.ctrl.Dispatch(ev) }, "Deleted task")
	case m.cfg.Keys.ClearAll:
		return m.ask(m.ctrl.ClearAll, "Cleared all tasks")
	case m.cfg.Keys.CycleFilter:
		m.setFilter(m.ctrl.Filter().Next())
	case m.cfg.Keys.FilterAll:
		m.setFilter(task.FilterAll)
	case m.cfg.Keys.FilterOpen:
		m.setFilter(task.FilterActive)
	case m.cfg.Keys.FilterDone:
		m.setFilter(task.FilterCompleted)
	}
	m.cursor = clampCursor(m.cursor, len(m.frame.Items))
	return m, nil
}

func (m *Model) setFilter(f task.Filter) {
	m.ctrl.SetFilter(f)
	m.cursor = 0
	m.status = "Showing " + strings.ToLower(f.Label()) + " tasks"
}

// ask runs action once against the gate. If the gate collected a prompt,
// the model waits for y/n and replays action on yes.
func (m Model) ask(action func() error, done string) (tea.Model, tea.Cmd) {
	m.gate.Reset()
	if err := action(); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	prompt, pending := m.gate.Pending()
	if !pending {
		return m, nil
	}
	m.mode = modeConfirm
	m.confirm = action
	m.done = done
	m.status = prompt + " y/n"
	return m, nil
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.gate.Approve()
		err := m.confirm()
		m.gate.Reset()
		if err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
		} else {
			m.status = m.done
		}
	case "n", "N", m.cfg.Keys.Cancel:
		m.gate.Reset()
		m.status = "Cancelled"
	default:
		return m, nil
	}
	m.confirm = nil
	m.done = ""
	m.mode = modeList
	m.cursor = clampCursor(m.cursor, len(m.frame.Items))
	return m, nil
}

func (m Model) selected() (app.Item, bool) {
	if len(m.frame.Items) == 0 {
		return app.Item{}, false
	}
	return m.frame.Items[clampCursor(m.cursor, len(m.frame.Items))], true
}

func (m Model) View() string {
	var b strings.Builder
	s := m.styles

	if m.field != nil {
		b.WriteString(m.renderParticles())
		b.WriteString("\n")
	}

	mark := "☀"
	if m.ctrl.DarkMode() {
		mark = "☾"
	}
	b.WriteString(s.title.Render("tasklite") + " " + s.muted.Render(mark))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	if m.frame.Empty {
		b.WriteString(s.muted.Render(emptyMessage(m.ctrl.Filter())))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n")
	c := m.frame.Counts
	b.WriteString(s.muted.Render(fmt.Sprintf("Total %d • Active %d • Completed %d", c.Total, c.Active, c.Completed)))
	if m.frame.ClearAll {
		b.WriteString("   " + s.danger.Render(fmt.Sprintf("%s clear all", m.cfg.Keys.ClearAll)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(s.muted.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	s := m.styles
	for i, it := range m.frame.Items {
		cursor := " "
		if m.cursor == i && m.mode != modeInput {
			cursor = s.cursor.Render(">")
		}
		checkbox := "[ ]"
		text := s.item.Render(Plain(it.Text))
		if it.Completed {
			checkbox = "[x]"
			text = s.done.Render(Plain(it.Text))
		}
		line := fmt.Sprintf("%s %s %s", cursor, checkbox, text)
		if it.Editing {
			line += " " + s.editing.Render("(editing)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFilters() string {
	parts := make([]string, 0, 3)
	for _, f := range task.Filters() {
		if f == m.ctrl.Filter() {
			parts = append(parts, m.styles.tabActive.Render(f.Label()))
			continue
		}
		parts = append(parts, m.styles.tab.Render(f.Label()))
	}
	return strings.Join(parts, " ")
}

// renderParticles paints the ambient field as one line of dots.
func (m Model) renderParticles() string {
	width := m.width
	if width <= 0 {
		width = 60
	}
	row := []rune(strings.Repeat(" ", width))
	for _, p := range m.field.Particles() {
		col := int(p.X / 100 * float64(width))
		if col >= width {
			col = width - 1
		}
		glyph := '·'
		switch {
		case p.Size >= 95:
			glyph = '●'
		case p.Size >= 65:
			glyph = '•'
		}
		row[col] = glyph
	}
	return m.styles.particle.Render(string(row))
}

func emptyMessage(f task.Filter) string {
	switch f {
	case task.FilterActive:
		return "Nothing active. Nice."
	case task.FilterCompleted:
		return "Nothing completed yet."
	default:
		return "No tasks yet. Press 'a' to add one."
	}
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s edit • %s delete • %s/%s/%s filter • %s theme • %s quit",
		k.Up, k.Down, k.Add, keyLabel(k.Toggle), k.Edit, k.Delete, k.FilterAll, k.FilterOpen, k.FilterDone, k.Theme, k.Quit)
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
