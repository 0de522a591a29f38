package dom

import "sync"

// Entry is one history record: the view state, its title and the fragment URL.
type Entry struct {
	State string
	Title string
	URL   string
}

// History is a back/forward stack. Moving through it fires popstate listeners
// with the entry that became current.
type History struct {
	mu        sync.Mutex
	doc       *Document
	entries   []Entry
	index     int
	listeners []func(Entry)
}

func newHistory(doc *Document) *History {
	return &History{doc: doc, index: -1}
}

// Push adds an entry after the current one, dropping any forward entries.
func (h *History) Push(e Entry) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], e)
	h.index = len(h.entries) - 1
	h.mu.Unlock()

	if h.doc != nil {
		h.doc.record(Patch{Kind: PatchPush, State: e.State, Title: e.Title, URL: e.URL})
	}
}

// Replace overwrites the current entry without firing popstate.
func (h *History) Replace(e Entry) {
	h.mu.Lock()
	if h.index < 0 {
		h.entries = []Entry{e}
		h.index = 0
	} else {
		h.entries[h.index] = e
	}
	h.mu.Unlock()

	if h.doc != nil {
		h.doc.record(Patch{Kind: PatchReplaceState, State: e.State, Title: e.Title, URL: e.URL})
	}
}

// OnPopState registers a listener for back/forward moves.
func (h *History) OnPopState(fn func(Entry)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Back moves one entry back. It reports false at the start of the stack.
func (h *History) Back() bool {
	return h.Go(-1)
}

// Forward moves one entry forward. It reports false at the end of the stack.
func (h *History) Forward() bool {
	return h.Go(1)
}

// Go moves by delta entries and fires popstate listeners.
func (h *History) Go(delta int) bool {
	h.mu.Lock()
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = target
	entry := h.entries[target]
	listeners := append([]func(Entry){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
	return true
}

// Traverse follows a popstate reported by the browser: it moves to the nearest
// entry carrying state, looking backwards first. When the stack has no such
// entry the listeners still fire so the view follows the browser.
func (h *History) Traverse(state string) {
	h.mu.Lock()
	delta := 0
	for i := h.index - 1; i >= 0; i-- {
		if h.entries[i].State == state {
			delta = i - h.index
			break
		}
	}
	if delta == 0 {
		for i := h.index + 1; i < len(h.entries); i++ {
			if h.entries[i].State == state {
				delta = i - h.index
				break
			}
		}
	}
	listeners := append([]func(Entry){}, h.listeners...)
	h.mu.Unlock()

	if delta != 0 {
		h.Go(delta)
		return
	}
	for _, fn := range listeners {
		fn(Entry{State: state, URL: "#" + state})
	}
}

// Current returns the current entry.
func (h *History) Current() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index < 0 {
		return Entry{}, false
	}
	return h.entries[h.index], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
