// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans out server-sent events to signed-in administrators.
package sse

import (
	"sync"
)

const clientBuffer = 8

// Hub tracks open event streams. Each browser tab holds its own stream,
// so one administrator may have several.
type Hub struct {
	clients map[chan string]int64
	mu      sync.RWMutex
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]int64)}
}

// Register opens a stream for userID and returns the channel it reads from.
func (h *Hub) Register(userID int64) chan string {
	ch := make(chan string, clientBuffer)

	h.mu.Lock()
	h.clients[ch] = userID
	h.mu.Unlock()

	return ch
}

// Unregister removes and closes a stream. Unknown channels are ignored.
func (h *Hub) Unregister(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
}

// Broadcast queues message on every stream. Streams whose buffer is full
// miss the message rather than block the sender.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- message:
		default:
		}
	}
}

// ClientCount returns the number of open streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// UserCount returns the number of administrators with at least one stream.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make(map[int64]struct{}, len(h.clients))
	for _, id := range h.clients {
		users[id] = struct{}{}
	}
	return len(users)
}
