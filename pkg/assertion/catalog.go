package assertion

import (
	"fmt"
	"sync"
)

// Catalog is an insertion-ordered set of named checks. Once
// frozen it rejects further registration and is safe to share
// between goroutines without coordination. The zero value is an
// empty, unfrozen catalog.
type Catalog struct {
	mu     sync.RWMutex
	names  []string
	checks map[string]Check
	frozen bool
}

// NewCatalog creates an empty, unfrozen Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		checks: make(map[string]Check),
	}
}

// Register adds a check. Returns an error if the check is
// malformed, its name is taken, or the catalog is frozen.
func (c *Catalog) Register(check Check) error {
	if err := check.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return fmt.Errorf("%w: cannot register %s", ErrCatalogFrozen, check.Name)
	}
	if _, exists := c.checks[check.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCheck, check.Name)
	}
	if c.checks == nil {
		c.checks = make(map[string]Check)
	}

	c.names = append(c.names, check.Name)
	c.checks[check.Name] = check
	return nil
}

// MustRegister registers every check and panics on the first
// error. It is meant for init-time tables.
func (c *Catalog) MustRegister(checks ...Check) *Catalog {
	for _, check := range checks {
		if err := c.Register(check); err != nil {
			panic(err)
		}
	}
	return c
}

// Lookup returns the check registered under name.
func (c *Catalog) Lookup(name string) (Check, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	check, ok := c.checks[name]
	return check, ok
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Names returns the registered names in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Checks returns the registered checks in registration order.
func (c *Catalog) Checks() []Check {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Check, len(c.names))
	for i, name := range c.names {
		out[i] = c.checks[name]
	}
	return out
}

// Len returns the number of registered checks.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Freeze makes the catalog read-only and returns it.
func (c *Catalog) Freeze() *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
	return c
}

// Frozen reports whether Freeze has been called.
func (c *Catalog) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// Clone returns an unfrozen copy, so a frozen catalog can be
// extended without touching the original.
func (c *Catalog) Clone() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := &Catalog{
		names:  make([]string, len(c.names)),
		checks: make(map[string]Check, len(c.checks)),
	}
	copy(out.names, c.names)
	for k, v := range c.checks {
		out.checks[k] = v
	}
	return out
}
