// Package server exposes the chat orchestrator over HTTP.
package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nakamo-io/supportflow/ai/agents"
)

// threadRegistry keeps conversation threads in memory, one per thread id.
// Each entry carries its own lock so concurrent requests on the same
// thread serialize while different threads proceed independently.
type threadRegistry struct {
	mu      sync.Mutex
	entries map[string]*threadEntry
}

type threadEntry struct {
	mu     sync.Mutex
	thread *agents.Thread
}

func newThreadRegistry() *threadRegistry {
	return &threadRegistry{entries: make(map[string]*threadEntry)}
}

// acquire returns the thread for id, creating it (and the id itself when
// empty) as needed. The caller must call release when done.
func (r *threadRegistry) acquire(id string) (string, *agents.Thread, func()) {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	entry, ok := r.entries[id]
	if !ok {
		entry = &threadEntry{thread: agents.NewThread()}
		r.entries[id] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	return id, entry.thread, entry.mu.Unlock
}

func (r *threadRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
