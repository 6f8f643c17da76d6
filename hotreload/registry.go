package hotreload

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
)

// Entry is one (identifier, descriptor) pair in a registry snapshot.
type Entry struct {
	ID         uuid.UUID
	Descriptor Descriptor
}

// Registry maps stable identifiers to the descriptors of the active unit.
// The host fills it on load and clears it on unload; callers only read.
type Registry struct {
	byID map[uuid.UUID]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uuid.UUID]Descriptor)}
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id uuid.UUID) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// LookupName returns the first descriptor with the given name, in All order.
func (r *Registry) LookupName(name string) (Descriptor, bool) {
	for _, e := range r.All() {
		if e.Descriptor.Name == name {
			return e.Descriptor, true
		}
	}
	return Descriptor{}, false
}

// All returns a snapshot of every entry, sorted by name and then id.
func (r *Registry) All() []Entry {
	entries := make([]Entry, 0, len(r.byID))
	for id, d := range r.byID {
		entries = append(entries, Entry{ID: id, Descriptor: d})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Descriptor.Name != b.Descriptor.Name {
			return a.Descriptor.Name < b.Descriptor.Name
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	return entries
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.byID)
}

func (r *Registry) set(d Descriptor) {
	r.byID[d.ID] = d
}

func (r *Registry) clear() {
	clear(r.byID)
}
