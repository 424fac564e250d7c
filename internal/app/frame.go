package app

// Frame is a Renderer that keeps the last painted state for surfaces that
// draw on their own schedule (a bubbletea View, an HTTP response).
type Frame struct {
	Items    []Item
	Counts   Counts
	Empty    bool
	ClearAll bool
	Renders  int

	fill   string
	filled bool
}

func (f *Frame) RenderList(items []Item) {
	f.Items = items
	f.Renders++
}

func (f *Frame) RenderStats(c Counts) { f.Counts = c }

func (f *Frame) SetEmptyState(empty bool) { f.Empty = empty }

func (f *Frame) SetClearAllVisible(visible bool) { f.ClearAll = visible }

func (f *Frame) FillInput(text string) {
	f.fill = text
	f.filled = true
}

// TakeFill returns the pending input pre-fill once.
func (f *Frame) TakeFill() (string, bool) {
	text, ok := f.fill, f.filled
	f.fill, f.filled = "", false
	return text, ok
}

// Gate is a Confirmer for surfaces that ask asynchronously. The first
// Confirm call declines and records the prompt; after Approve, the next
// Confirm call accepts.
type Gate struct {
	prompt   string
	pending  bool
	approved bool
}

func (g *Gate) Confirm(prompt string) bool {
	if g.approved {
		g.Reset()
		return true
	}
	g.prompt = prompt
	g.pending = true
	return false
}

func (g *Gate) Approve() {
	g.approved = true
	g.pending = false
}

func (g *Gate) Pending() (string, bool) {
	return g.prompt, g.pending
}

func (g *Gate) Reset() {
	*g = Gate{}
}
