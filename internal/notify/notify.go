// Package notify shows auto-dismissing toast messages in a document.
package notify

import (
	"fmt"
	"html"
	"sync"
	"time"

	"pricedash/internal/dom"
)

// Kind selects the toast styling.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
	Warning Kind = "warning"
)

// RegionID is the container toasts are appended to.
const RegionID = "toast-region"

// Center owns the toasts of one document.
type Center struct {
	doc *dom.Document
	ttl time.Duration

	mu     sync.Mutex
	seq    int
	timers map[string]*time.Timer
	closed bool
}

// NewCenter creates a notification center. A non-positive ttl keeps toasts until Close.
func NewCenter(doc *dom.Document, ttl time.Duration) *Center {
	return &Center{doc: doc, ttl: ttl, timers: make(map[string]*time.Timer)}
}

// Show appends a toast and returns its element id, or "" when the region is missing.
func (c *Center) Show(kind Kind, message string) string {
	region := c.doc.ByID(RegionID)
	if region == nil {
		return ""
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ""
	}
	c.seq++
	id := fmt.Sprintf("toast-%d", c.seq)
	c.mu.Unlock()

	markup := fmt.Sprintf(`<div id="%s" class="toast toast-%s" role="status">%s</div>`,
		id, kind, html.EscapeString(message))
	if err := region.AppendHTML(markup); err != nil {
		return ""
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.timers[id] = time.AfterFunc(c.ttl, func() { c.Dismiss(id) })
		c.mu.Unlock()
	}
	return id
}

// Success shows a success toast.
func (c *Center) Success(message string) string { return c.Show(Success, message) }

// Error shows an error toast.
func (c *Center) Error(message string) string { return c.Show(Error, message) }

// Dismiss removes a toast early.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	if el := c.doc.ByID(id); el != nil {
		el.Remove()
	}
}

// Active returns the number of toasts still waiting for dismissal.
func (c *Center) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Close stops pending dismissal timers. Toasts shown afterwards are ignored.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}
