// Package api streams document patches to connected browser shells.
package api

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"pricedash/internal"
	"pricedash/internal/dom"
)

// PingInterval is how often an idle stream sends a keep-alive event.
const PingInterval = 30 * time.Second

// SSEClient is one connected browser tab. Resync, when set, receives a
// signal after patches for the tab were dropped.
type SSEClient struct {
	SessionID string
	Channel   chan PatchEvent
	Resync    chan struct{}
}

// PatchEvent carries a batch of patches for one session.
type PatchEvent struct {
	SessionID string      `json:"-"`
	Patches   []dom.Patch `json:"patches"`
	Timestamp time.Time   `json:"timestamp"`
}

// SSEHub fans patch batches out to the tabs of a session.
type SSEHub struct {
	clients    map[string]map[chan PatchEvent]chan struct{}
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan PatchEvent
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once
	logger     *internal.Logger
}

// NewSSEHub creates a hub and starts its dispatch loop. Close stops it.
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &SSEHub{
		clients:    make(map[string]map[chan PatchEvent]chan struct{}),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan PatchEvent, 100),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}

	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan PatchEvent]chan struct{})
			}
			h.clients[client.SessionID][client.Channel] = client.Resync
			h.logger.Debug("[SSE] Client registered for session %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			clients := h.clients[client.SessionID]
			if _, registered := clients[client.Channel]; registered {
				delete(clients, client.Channel)
				close(client.Channel)
				h.logger.Debug("[SSE] Client unregistered from session %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan, resync := range h.clients[event.SessionID] {
				select {
				case clientChan <- event:
				default:
					h.logger.Warn("[SSE] Client channel full for session %s, dropping %d patches",
						event.SessionID, len(event.Patches))
					signal(resync)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			h.clientsMu.Lock()
			for _, clients := range h.clients {
				for ch := range clients {
					close(ch)
				}
			}
			h.clients = make(map[string]map[chan PatchEvent]chan struct{})
			h.clientsMu.Unlock()
			return
		}
	}
}

// Publish queues patches for every tab of the session.
func (h *SSEHub) Publish(sessionID string, patches []dom.Patch) {
	if len(patches) == 0 {
		return
	}
	event := PatchEvent{SessionID: sessionID, Patches: patches, Timestamp: time.Now()}
	select {
	case h.broadcast <- event:
	case <-h.done:
	default:
		h.logger.Warn("[SSE] Broadcast channel full, dropping %d patches for %s", len(patches), sessionID)
		h.clientsMu.RLock()
		for _, resync := range h.clients[sessionID] {
			signal(resync)
		}
		h.clientsMu.RUnlock()
	}
}

// signal marks a tab for reload without blocking; a nil channel is ignored.
func signal(resync chan struct{}) {
	select {
	case resync <- struct{}{}:
	default:
	}
}

// Close disconnects every client and stops the dispatch loop.
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}

// HandleSSE streams the session's patches until the client goes away.
func (h *SSEHub) HandleSSE(c *gin.Context, sessionID string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientChan := make(chan PatchEvent, 16)
	resync := make(chan struct{}, 1)
	select {
	case h.register <- SSEClient{SessionID: sessionID, Channel: clientChan, Resync: resync}:
	case <-h.done:
		c.AbortWithStatus(503)
		return
	}

	defer func() {
		select {
		case h.unregister <- SSEClient{SessionID: sessionID, Channel: clientChan}:
		case <-h.done:
		}
	}()

	// the shell waits for this before bootstrapping
	c.SSEvent("ready", `{"session":"`+sessionID+`"}`)
	c.Writer.Flush()

	ctx := c.Request.Context()
	ping := time.NewTicker(PingInterval)
	defer ping.Stop()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("[SSE] Failed to marshal patches: %v", err)
				return true
			}
			c.SSEvent("patch", string(payload))
			return true

		case <-resync:
			// the tab missed patches and reloads the current document
			c.SSEvent("reload", `{"session":"`+sessionID+`"}`)
			return false

		case <-ping.C:
			c.SSEvent("ping", `{"status":"alive","timestamp":"`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetActiveSessions returns sessions with connected clients.
func (h *SSEHub) GetActiveSessions() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	sessions := make([]string, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetClientCount returns the number of clients connected for a session.
func (h *SSEHub) GetClientCount(sessionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}
