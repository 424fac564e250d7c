package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Persister is the storage side of the store. LoadTasks never fails; a
// missing or unreadable blob comes back as an empty list.
type Persister interface {
	LoadTasks() []Task
	SaveTasks(tasks []Task) error
}

type Option func(*Store)

// WithIDFunc replaces the UUIDv7 generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store owns the canonical task list. Every mutation is written through to
// the Persister before it returns. Not safe for concurrent use.
type Store struct {
	p     Persister
	tasks []Task
	newID func() string
}

func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{
		p:     p,
		newID: defaultID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = append([]Task(nil), p.LoadTasks()...)
	return s
}

func defaultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return id.String()
}

func (s *Store) Create(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.tasks = append(s.tasks, Task{ID: s.freshID(), Text: text})
	return s.persist()
}

func (s *Store) UpdateText(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Text = text
	return s.persist()
}

func (s *Store) Toggle(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	return s.persist()
}

// Remove deletes the task with id. Callers confirm with the user first.
func (s *Store) Remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return s.persist()
}

func (s *Store) Clear() error {
	s.tasks = nil
	return s.persist()
}

// List returns a copy of the tasks in insertion order.
func (s *Store) List() []Task {
	return append([]Task(nil), s.tasks...)
}

func (s *Store) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) Len() int {
	return len(s.tasks)
}

func (s *Store) index(id string) int {
	if id == "" {
		return -1
	}
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) freshID() string {
	for {
		id := s.newID()
		if id != "" && s.index(id) < 0 {
			return id
		}
	}
}

func (s *Store) persist() error {
	if err := s.p.SaveTasks(s.List()); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
