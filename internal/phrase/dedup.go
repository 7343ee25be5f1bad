package phrase

import "context"

// Window is a bounded recent-history set of emitted texts, used to bias
// generation away from repeats. Exact string membership only.
type Window struct {
	cap   int
	order []string
	seen  map[string]struct{}
}

func NewWindow(cap int) *Window {
	if cap < 1 {
		cap = 1
	}
	return &Window{cap: cap, seen: make(map[string]struct{})}
}

// BuildWindow rebuilds the window from the tails of both pools. The cap is
// twice the per-pool limit so a full rebuild never evicts what it just read.
func BuildWindow(ctx context.Context, store *Store, limit int) (*Window, error) {
	texts, err := store.RecentTexts(ctx, limit)
	if err != nil {
		return nil, err
	}
	w := NewWindow(2 * limit)
	for _, t := range texts {
		w.Add(t)
	}
	return w, nil
}

func (w *Window) Contains(text string) bool {
	_, ok := w.seen[text]
	return ok
}

func (w *Window) Add(text string) {
	if w.Contains(text) {
		return
	}
	w.order = append(w.order, text)
	w.seen[text] = struct{}{}
	if len(w.order) > w.cap {
		delete(w.seen, w.order[0])
		w.order = w.order[1:]
	}
}

func (w *Window) Len() int { return len(w.order) }

// Tail returns the most recent n entries, oldest first.
func (w *Window) Tail(n int) []string {
	if n >= len(w.order) {
		return append([]string(nil), w.order...)
	}
	return append([]string(nil), w.order[len(w.order)-n:]...)
}
