package selection

import (
	"sync"
)

// History is the browser history the selection is mirrored into. Locations
// are query strings without the leading "?".
type History interface {
	Location() string
	Push(location string)
	Back() (string, bool)
	Forward() (string, bool)
}

// MemoryHistory is an in-process History: a list of entries and a cursor.
// Pushing drops every entry ahead of the cursor, like a browser does.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
	cur     int
}

// NewMemoryHistory starts a history at location.
func NewMemoryHistory(location string) *MemoryHistory {
	return &MemoryHistory{entries: []string{normalize(location)}}
}

func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cur]
}

func (h *MemoryHistory) Push(location string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.cur+1], normalize(location))
	h.cur++
}

func (h *MemoryHistory) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == 0 {
		return h.entries[0], false
	}
	h.cur--
	return h.entries[h.cur], true
}

func (h *MemoryHistory) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == len(h.entries)-1 {
		return h.entries[h.cur], false
	}
	h.cur++
	return h.entries[h.cur], true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
