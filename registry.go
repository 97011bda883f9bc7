package livestow

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps object names to the buffer currently installed for them.
//
// Replacing or deleting a name only changes the mapping. Streams already
// holding the previous buffer keep reading it undisturbed.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]*Buffer
}

func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]*Buffer)}
}

// CreateOrReplace installs a fresh, empty buffer under name and returns it.
func (r *Registry) CreateOrReplace(name string) *Buffer {
	b := NewBuffer(name)

	r.mu.Lock()
	r.objects[name] = b
	r.mu.Unlock()

	return b
}

// Lookup returns the buffer registered under name, or ErrNotFound.
func (r *Registry) Lookup(name string) (*Buffer, error) {
	r.mu.RLock()
	b, ok := r.objects[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", name, ErrNotFound)
	}
	return b, nil
}

// Delete removes the mapping for name, or returns ErrNotFound.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[name]; !ok {
		return fmt.Errorf("delete %s: %w", name, ErrNotFound)
	}
	delete(r.objects, name)
	return nil
}

// List returns metadata for every registered name starting with prefix,
// sorted by name.
func (r *Registry) List(prefix string) []ObjectInfo {
	r.mu.RLock()
	buffers := make([]*Buffer, 0, len(r.objects))
	for name, b := range r.objects {
		if strings.HasPrefix(name, prefix) {
			buffers = append(buffers, b)
		}
	}
	r.mu.RUnlock()

	items := make([]ObjectInfo, 0, len(buffers))
	for _, b := range buffers {
		items = append(items, b.Info())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
