package pipeline

import (
	"strings"
	"sync"
	"time"

	"github.com/runger/methodmap/internal/scholar"
)

// DefaultHistorySize is the number of searches a History keeps.
const DefaultHistorySize = 50

// Entry is one search made during the session.
type Entry struct {
	Query    scholar.SearchQuery
	At       time.Time
	Rows     int
	ResultID string
}

// History is the in-memory list of searches made in this session. It is
// never persisted.
type History struct {
	mu      sync.Mutex
	max     int
	entries []Entry // oldest first
}

// NewHistory creates a History holding at most max entries.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Add appends e, dropping the oldest entry when full.
func (h *History) Add(e Entry) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = append([]Entry(nil), h.entries[over:]...)
	}
}

// Entries returns the recorded searches, newest first.
func (h *History) Entries() []Entry {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, 0, len(h.entries))
	for i := len(h.entries) - 1; i >= 0; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

// Len returns the number of recorded searches.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Goals returns up to limit distinct goals starting with prefix (case
// insensitive), most recent first. An empty prefix matches every goal.
func (h *History) Goals(prefix string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	prefix = strings.ToLower(prefix)

	seen := make(map[string]bool)
	var results []string
	for _, e := range h.Entries() {
		if len(results) >= limit {
			break
		}
		goal := e.Query.Goal
		if !strings.HasPrefix(strings.ToLower(goal), prefix) || seen[goal] {
			continue
		}
		seen[goal] = true
		results = append(results, goal)
	}
	return results
}
