package store

import (
	"sync"

	"github.com/recollectdb/recollect/internal/model"
)

// WorkingMemory is a short-term buffer of the most recently saved memories.
// It holds at most capacity items; saving past capacity evicts the oldest.
type WorkingMemory struct {
	mu       sync.Mutex
	capacity int
	items    []model.Memory
}

func NewWorkingMemory(capacity int) *WorkingMemory {
	if capacity < 1 {
		capacity = 1
	}
	return &WorkingMemory{capacity: capacity}
}

// Add appends a memory, evicting the oldest entry when the buffer is full.
func (w *WorkingMemory) Add(m model.Memory) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, m)
	if len(w.items) > w.capacity {
		w.items = w.items[len(w.items)-w.capacity:]
	}
}

// Items returns the buffer contents oldest first.
func (w *WorkingMemory) Items() []model.Memory {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Memory, len(w.items))
	copy(out, w.items)
	return out
}

// Len reports the current buffer size.
func (w *WorkingMemory) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Capacity reports the configured maximum size.
func (w *WorkingMemory) Capacity() int {
	return w.capacity
}

// Clear empties the buffer.
func (w *WorkingMemory) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = nil
}
