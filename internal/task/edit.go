package task

// EditSession tracks the one task whose text is loaded into the shared input.
// Beginning a second edit drops the first without saving it.
type EditSession struct {
	store  *Store
	target string
}

func NewEditSession(store *Store) *EditSession {
	return &EditSession{store: store}
}

// Begin makes id the edit target and returns its current text for the input.
// Unknown ids leave the session as it was.
func (e *EditSession) Begin(id string) (string, bool) {
	t, ok := e.store.Get(id)
	if !ok {
		return "", false
	}
	e.target = id
	return t.Text, true
}

// Commit is the single submit path: it edits the target when a session is
// active and creates a task otherwise. The session always ends.
func (e *EditSession) Commit(text string) error {
	if e.target == "" {
		return e.store.Create(text)
	}
	id := e.target
	e.target = ""
	return e.store.UpdateText(id, text)
}

func (e *EditSession) Cancel() {
	e.target = ""
}

func (e *EditSession) Active() (string, bool) {
	return e.target, e.target != ""
}
