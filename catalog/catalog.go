package catalog

import (
	"fmt"
	"sync"
)

// Catalog is a registry of validated profiles keyed by id
// Profiles are stored and returned by value; registration is the only mutation
type Catalog struct {
	mu        sync.RWMutex
	profiles  map[string]Profile
	order     []string
	defaultID string
}

// New creates an empty catalog whose fallback is defaultID
// The default must be registered before Lookup or Default is used
func New(defaultID string) *Catalog {
	return &Catalog{
		profiles:  make(map[string]Profile),
		defaultID: defaultID,
	}
}

// NewBuiltin creates a catalog holding the built-in profiles with DefaultID as fallback
func NewBuiltin() *Catalog {
	c := New(DefaultID)
	for _, p := range Builtin() {
		if err := c.Register(p); err != nil {
			// Built-in table is static; failure here is a programming error
			panic(err)
		}
	}
	return c
}

// Register validates and adds a profile
func (c *Catalog) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.profiles[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProfile, p.ID)
	}
	c.profiles[p.ID] = p
	c.order = append(c.order, p.ID)
	return nil
}

// Get returns the profile for id
func (c *Catalog) Get(id string) (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[id]
	return p, ok
}

// Has reports whether id is registered
func (c *Catalog) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Lookup returns the profile for id, or the default profile when id is unknown
func (c *Catalog) Lookup(id string) Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.profiles[id]; ok {
		return p
	}
	return c.profiles[c.defaultID]
}

// Resolve returns the profile for id or ErrUnknownProfile
func (c *Catalog) Resolve(id string) (Profile, error) {
	p, ok := c.Get(id)
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	return p, nil
}

// Default returns the fallback profile
func (c *Catalog) Default() Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profiles[c.defaultID]
}

// DefaultID returns the fallback profile id
func (c *Catalog) DefaultID() string {
	return c.defaultID
}

// IDs returns registered ids in registration order
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of registered profiles
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
