// Package dom is the server-side model of one dashboard page: an HTML node tree
// addressed by element id, plus the session's navigation history. Every change
// is recorded as a Patch so the browser shell can mirror it.
package dom

import (
	"bytes"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Document is a mutable HTML document guarded by a single mutex.
type Document struct {
	mu       sync.Mutex
	root     *html.Node
	dirty    []string
	dirtySet map[string]bool
	events   []Patch
	scrolled string
	onChange func()

	history *History
}

// Parse builds a document from a complete HTML page.
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	d := &Document{
		root:     root,
		dirtySet: make(map[string]bool),
	}
	d.history = newHistory(d)
	return d, nil
}

// MustParse is Parse for trusted, embedded markup.
func MustParse(markup string) *Document {
	d, err := Parse(markup)
	if err != nil {
		panic(err)
	}
	return d
}

// History returns the session history bound to this document.
func (d *Document) History() *History {
	return d.history
}

// OnChange registers a callback run after every mutation, outside the lock.
func (d *Document) OnChange(fn func()) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// Finder looks elements up by id. Document implements it, as do wrappers
// that refuse lookups once their owner is no longer current.
type Finder interface {
	ByID(id string) *Element
}

// ByID returns the element with the given id, or nil when it is not in the document.
func (d *Document) ByID(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := findByID(d.root, id); n != nil {
		return &Element{doc: d, n: n}
	}
	return nil
}

// Root returns the <html> element.
func (d *Document) Root() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := find(d.root, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "html" })
	if n == nil {
		return nil
	}
	return &Element{doc: d, n: n}
}

// ElementsWithAttr returns every element carrying the attribute, in document order.
func (d *Document) ElementsWithAttr(name string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Element
	walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := attr(n, name); ok {
				out = append(out, &Element{doc: d, n: n})
			}
		}
	})
	return out
}

// HTML serialises the whole document.
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

// ScrollTarget returns the id of the element most recently scrolled into view.
func (d *Document) ScrollTarget() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrolled
}

// Flush returns pending patches and clears them. Replace patches come first,
// in first-touched order, and a changed element nested in another changed
// element is covered by its ancestor's patch.
func (d *Document) Flush() []Patch {
	d.mu.Lock()
	defer d.mu.Unlock()

	var patches []Patch
	for _, id := range d.dirty {
		n := findByID(d.root, id)
		if n == nil || d.hasDirtyAncestor(n) {
			continue
		}
		patches = append(patches, Patch{Kind: PatchReplace, Target: id, HTML: outerHTML(n)})
	}
	patches = append(patches, d.events...)

	d.dirty = nil
	d.dirtySet = make(map[string]bool)
	d.events = nil
	return patches
}

func (d *Document) hasDirtyAncestor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if id, ok := attr(p, "id"); ok && d.dirtySet[id] {
			return true
		}
	}
	return false
}

// mutate runs fn under the lock and marks the nearest identified ancestor of n dirty.
// Detached nodes are left alone.
func (d *Document) mutate(n *html.Node, fn func()) bool {
	d.mu.Lock()
	if !d.attached(n) {
		d.mu.Unlock()
		return false
	}
	fn()
	d.markDirty(n)
	cb := d.onChange
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

func (d *Document) markDirty(n *html.Node) {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && (cur.Data == "html" || cur.Data == "head" || cur.Data == "body") {
			// html/body/head-level changes are delivered as root events
			if cur.Data == "html" {
				d.events = append(d.events, Patch{Kind: PatchRootClass, HTML: classAttr(cur)})
			}
			return
		}
		if id, ok := attr(cur, "id"); ok {
			if !d.dirtySet[id] {
				d.dirtySet[id] = true
				d.dirty = append(d.dirty, id)
			}
			return
		}
	}
}

func (d *Document) record(p Patch) {
	d.mu.Lock()
	d.events = append(d.events, p)
	cb := d.onChange
	d.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (d *Document) attached(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findByID(root *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	return find(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := attr(n, "id")
		return ok && v == id
	})
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func classAttr(n *html.Node) string {
	v, _ := attr(n, "class")
	return v
}

func outerHTML(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}
