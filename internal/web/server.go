package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"tasklite/internal/ambient"
	"tasklite/internal/app"
)

//go:embed templates/*
var templates embed.FS

// Server serves one controller over HTTP. Every controller call happens
// under mu, so requests apply one at a time like key presses in the TUI.
type Server struct {
	mu     sync.Mutex
	ctrl   *app.Controller
	frame  *app.Frame
	gate   *app.Gate
	field  *ambient.Field
	router *gin.Engine
}

// NewServer wires ctrl, which must render into frame and confirm through
// gate. field may be nil.
func NewServer(ctrl *app.Controller, frame *app.Frame, gate *app.Gate, field *ambient.Field) *Server {
	router := gin.Default()
	router.SetHTMLTemplate(template.Must(template.New("").Funcs(template.FuncMap{
		"delay": func(i int) string { return formatSeconds(time.Duration(i) * 60 * time.Millisecond) },
	}).ParseFS(templates, "templates/*.html")))

	s := &Server{
		ctrl:   ctrl,
		frame:  frame,
		gate:   gate,
		field:  field,
		router: router,
	}

	router.GET("/", s.handleIndex)
	router.POST("/submit", s.handleSubmit)
	router.POST("/action", s.handleAction)
	router.GET("/confirm", s.handleConfirmPage)
	router.POST("/clear", s.handleClear)
	router.POST("/filter", s.handleFilter)
	router.POST("/theme", s.handleTheme)
	router.POST("/cancel", s.handleCancel)

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleAPITasks)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, animating the ambient field
// alongside.
func (s *Server) Run(ctx context.Context, addr string) error {
	if s.field != nil {
		go s.field.Run(ctx, time.Second)
	}
	srv := &http.Server{Addr: addr, Handler: s.router}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
