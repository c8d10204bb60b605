package registry

import (
	"sort"
	"sync"

	"github.com/cuemby/reportwatch/pkg/types"
)

// Observer receives registry changes. Calls are made after the registry lock
// is released, on the goroutine that made the change.
type Observer interface {
	CategoryAdded(index int, c types.Category)
	CategoryUpdated(index int, c types.Category)
	// MembershipChanged is signalled after every add or enabled-flag change
	// so that filters can drop cached decisions.
	MembershipChanged()
}

// Registry is the ordered set of known report categories
type Registry struct {
	mu         sync.RWMutex
	categories []types.Category
	observers  []Observer
}

// New creates a registry seeded with previously known categories
func New(seed ...types.Category) *Registry {
	r := &Registry{}
	for _, c := range seed {
		i, found := r.search(c.Name)
		if found {
			r.categories[i].Enabled = c.Enabled
			continue
		}
		r.categories = append(r.categories, types.Category{})
		copy(r.categories[i+1:], r.categories[i:])
		r.categories[i] = c
	}
	return r
}

// Observe registers an observer
func (r *Registry) Observe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// search returns the insertion index of name and whether it is present.
// Callers hold r.mu.
func (r *Registry) search(name string) (int, bool) {
	i := sort.Search(len(r.categories), func(i int) bool {
		return r.categories[i].Name >= name
	})
	return i, i < len(r.categories) && r.categories[i].Name == name
}

// IsEnabled reports whether events of this category should be shown.
// Unknown categories are enabled.
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, found := r.search(name)
	if !found {
		return true
	}
	return r.categories[i].Enabled
}

// Add inserts a category in name order. It is a no-op when the name is
// already known, whatever its current flag.
func (r *Registry) Add(name string, enabled bool) {
	r.mu.Lock()
	i, found := r.search(name)
	if found {
		r.mu.Unlock()
		return
	}
	c := types.Category{Name: name, Enabled: enabled}
	r.categories = append(r.categories, types.Category{})
	copy(r.categories[i+1:], r.categories[i:])
	r.categories[i] = c
	observers := r.snapshotObservers()
	r.mu.Unlock()

	for _, o := range observers {
		o.CategoryAdded(i, c)
	}
	for _, o := range observers {
		o.MembershipChanged()
	}
}

// SetEnabled changes the flag of the category at index
func (r *Registry) SetEnabled(index int, enabled bool) bool {
	r.mu.Lock()
	if index < 0 || index >= len(r.categories) {
		r.mu.Unlock()
		return false
	}
	r.categories[index].Enabled = enabled
	c := r.categories[index]
	observers := r.snapshotObservers()
	r.mu.Unlock()

	for _, o := range observers {
		o.CategoryUpdated(index, c)
	}
	for _, o := range observers {
		o.MembershipChanged()
	}
	return true
}

// SetEnabledByName changes the flag of a known category. It returns false
// when the name is unknown.
func (r *Registry) SetEnabledByName(name string, enabled bool) bool {
	r.mu.RLock()
	i, found := r.search(name)
	r.mu.RUnlock()
	if !found {
		return false
	}
	return r.SetEnabled(i, enabled)
}

// SetAll sets every category's flag and signals a single membership change
func (r *Registry) SetAll(enabled bool) {
	r.mu.Lock()
	var changed []int
	for i := range r.categories {
		if r.categories[i].Enabled != enabled {
			r.categories[i].Enabled = enabled
			changed = append(changed, i)
		}
	}
	updated := make([]types.Category, len(changed))
	for k, i := range changed {
		updated[k] = r.categories[i]
	}
	observers := r.snapshotObservers()
	r.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	for _, o := range observers {
		for k, i := range changed {
			o.CategoryUpdated(i, updated[k])
		}
	}
	for _, o := range observers {
		o.MembershipChanged()
	}
}

// Len returns the number of categories
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.categories)
}

// At returns the category at index
func (r *Registry) At(index int) types.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categories[index]
}

// Categories returns a copy of all categories in name order
func (r *Registry) Categories() []types.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Category, len(r.categories))
	copy(out, r.categories)
	return out
}

func (r *Registry) snapshotObservers() []Observer {
	if len(r.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(r.observers))
	copy(out, r.observers)
	return out
}
