package web

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"tasklite/internal/app"
	"tasklite/internal/task"
)

type particleView struct {
	Style template.CSS
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func (s *Server) particles() []particleView {
	if s.field == nil {
		return nil
	}
	ps := s.field.Particles()
	out := make([]particleView, 0, len(ps))
	for _, p := range ps {
		// Only numbers go into the declaration.
		out = append(out, particleView{Style: template.CSS(fmt.Sprintf(
			"width:%.0fpx;height:%.0fpx;left:%.2f%%;top:%.2f%%;animation-delay:%s;animation-duration:%s",
			p.Size, p.Size, p.X, p.Y, formatSeconds(p.Delay), formatSeconds(p.Duration)))})
	}
	return out
}

// draftLocked is the text the input should show: the edit target's text
// while an edit session is active.
func (s *Server) draftLocked() string {
	if text, ok := s.frame.TakeFill(); ok {
		return text
	}
	id, ok := s.ctrl.Editing()
	if !ok {
		return ""
	}
	for _, t := range s.ctrl.Tasks() {
		if t.ID == id {
			return t.Text
		}
	}
	return ""
}

func (s *Server) fail(c *gin.Context, err error) {
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
}

func home(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleIndex(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Render()
	_, editing := s.ctrl.Editing()

	c.HTML(http.StatusOK, "index.html", gin.H{
		"items":     s.frame.Items,
		"counts":    s.frame.Counts,
		"empty":     s.frame.Empty,
		"clearAll":  s.frame.ClearAll,
		"filter":    s.ctrl.Filter(),
		"filters":   task.Filters(),
		"dark":      s.ctrl.DarkMode(),
		"editing":   editing,
		"draft":     s.draftLocked(),
		"particles": s.particles(),
	})
}

func (s *Server) handleSubmit(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.Submit(c.PostForm("text")); err != nil {
		s.fail(c, err)
		return
	}
	home(c)
}

// handleAction is the single entry point for per-item interactions.
func (s *Server) handleAction(c *gin.Context) {
	kind := app.ParseAction(c.PostForm("kind"))
	if kind == 0 {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "unknown action"})
		return
	}
	ev := app.Event{Kind: kind, TaskID: c.PostForm("id")}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.gated(c.PostForm("confirmed") == "yes", func() error { return s.ctrl.Dispatch(ev) })
	if err != nil {
		s.fail(c, err)
		return
	}
	if pending {
		c.Redirect(http.StatusSeeOther, "/confirm?"+url.Values{"kind": {kind.String()}, "id": {ev.TaskID}}.Encode())
		return
	}
	home(c)
}

func (s *Server) handleClear(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.gated(c.PostForm("confirmed") == "yes", s.ctrl.ClearAll)
	if err != nil {
		s.fail(c, err)
		return
	}
	if pending {
		c.Redirect(http.StatusSeeOther, "/confirm?kind=clear")
		return
	}
	home(c)
}

// gated runs action with the gate pre-approved when the request carries a
// confirmation, and reports whether the action stopped at a prompt.
func (s *Server) gated(confirmed bool, action func() error) (bool, error) {
	s.gate.Reset()
	defer s.gate.Reset()
	if confirmed {
		s.gate.Approve()
	}
	err := action()
	_, pending := s.gate.Pending()
	return pending, err
}

func (s *Server) handleConfirmPage(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c.Query("kind") {
	case "clear":
		if len(s.ctrl.Tasks()) == 0 {
			home(c)
			return
		}
		c.HTML(http.StatusOK, "confirm.html", gin.H{
			"prompt": app.PromptClear,
			"action": "/clear",
			"dark":   s.ctrl.DarkMode(),
		})
	case app.ActionDelete.String():
		id := c.Query("id")
		for _, t := range s.ctrl.Tasks() {
			if t.ID != id {
				continue
			}
			c.HTML(http.StatusOK, "confirm.html", gin.H{
				"prompt": app.PromptDelete,
				"action": "/action",
				"kind":   app.ActionDelete.String(),
				"id":     id,
				"text":   t.Text,
				"dark":   s.ctrl.DarkMode(),
			})
			return
		}
		home(c)
	default:
		home(c)
	}
}

func (s *Server) handleFilter(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.SetFilter(task.ParseFilter(c.PostForm("filter")))
	home(c)
}

func (s *Server) handleTheme(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.ToggleTheme(); err != nil {
		s.fail(c, err)
		return
	}
	home(c)
}

func (s *Server) handleCancel(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.CancelEdit()
	s.frame.TakeFill()
	home(c)
}

func (s *Server) handleAPITasks(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Render()
	c.JSON(http.StatusOK, gin.H{
		"tasks":     s.ctrl.Tasks(),
		"visible":   s.frame.Items,
		"counts":    s.frame.Counts,
		"filter":    s.ctrl.Filter(),
		"dark_mode": s.ctrl.DarkMode(),
	})
}
