// Package session holds connection-scoped key/value attributes, keyed by
// connection id. The transport layer owns the lifecycle: attributes are set
// while the connection lives and released when disconnect handling completes.
package session

import "sync"

// Registry stores string attributes per connection id.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	attrs map[string]map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{attrs: make(map[string]map[string]string)}
}

// Set stores value under key for connID, creating the connection's attribute
// bag if needed.
func (r *Registry) Set(connID, key, value string) {
	if connID == "" || key == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bag, ok := r.attrs[connID]
	if !ok {
		bag = make(map[string]string)
		r.attrs[connID] = bag
	}
	bag[key] = value
}

// Get returns the value stored under key for connID.
func (r *Registry) Get(connID, key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bag, ok := r.attrs[connID]
	if !ok {
		return "", false
	}
	value, ok := bag[key]
	return value, ok
}

// Remove deletes a single attribute for connID.
func (r *Registry) Remove(connID, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bag, ok := r.attrs[connID]; ok {
		delete(bag, key)
	}
}

// Release discards every attribute for connID. Releasing an unknown
// connection id is a no-op.
func (r *Registry) Release(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.attrs, connID)
}
