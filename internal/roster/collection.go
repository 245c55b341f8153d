package roster

import (
	"strings"
	"sync"
)

type entity interface {
	Participant | Role
	entityID() string
	entityName() string
}

// Collection is an ordered sequence of named entities with case-insensitive
// name uniqueness. It is safe for concurrent use.
type Collection[T entity] struct {
	mu      sync.RWMutex
	kind    string
	newItem func(name string) T
	items   []T
}

// NewParticipants returns an empty participant collection.
func NewParticipants() *Collection[Participant] {
	return &Collection[Participant]{kind: "participant", newItem: NewParticipant}
}

// NewRoles returns an empty role collection.
func NewRoles() *Collection[Role] {
	return &Collection[Role]{kind: "role", newItem: NewRole}
}

// Add appends a new entity named name.
//
// It fails with ErrEmptyName if name is blank after trimming and with
// ErrDuplicate if an existing name matches case-insensitively.
func (c *Collection[T]) Add(name string) (T, error) {
	var zero T

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return zero, &ValidationError{Reason: ReasonEmptyName, Entity: c.kind}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := foldKey(trimmed)
	for _, it := range c.items {
		if foldKey(it.entityName()) == key {
			return zero, &ValidationError{Reason: ReasonDuplicate, Entity: c.kind, Name: trimmed}
		}
	}

	item := c.newItem(trimmed)
	c.items = append(c.items, item)
	return item, nil
}

// Remove deletes the entity with id. It reports whether anything was removed;
// an unknown id is not an error.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, it := range c.items {
		if it.entityID() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the entity with id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, it := range c.items {
		if it.entityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Items returns a snapshot of the entities in insertion order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// validateAll checks items the way Add would, without mutating anything.
// Missing ids are an error since ids are never regenerated on load.
func (c *Collection[T]) validateAll(items []T) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.entityName())
		if name == "" || it.entityID() == "" {
			return &ValidationError{Reason: ReasonEmptyName, Entity: c.kind}
		}
		key := foldKey(name)
		if _, dup := seen[key]; dup {
			return &ValidationError{Reason: ReasonDuplicate, Entity: c.kind, Name: name}
		}
		seen[key] = struct{}{}
	}
	return nil
}

// set replaces the contents. Callers validate first.
func (c *Collection[T]) set(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
}

// update rewrites entities in place.
func (c *Collection[T]) update(fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i] = fn(c.items[i])
	}
}
