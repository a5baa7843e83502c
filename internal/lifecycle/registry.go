package lifecycle

import "sync"

// Registry tracks the live controller per order id. Replacing an entry
// supersedes the previous controller, so responses still in flight for
// the old instance are discarded instead of applied.
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		controllers: make(map[string]*Controller),
	}
}

// Put registers the controller for an order id, superseding any previous
// controller bound to the same order.
func (r *Registry) Put(orderID string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.controllers[orderID]; ok && prev != c {
		prev.Supersede()
	}
	r.controllers[orderID] = c
}

// Get returns the live controller for an order id.
func (r *Registry) Get(orderID string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[orderID]
	return c, ok
}

// Remove drops and supersedes the controller for an order id.
func (r *Registry) Remove(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[orderID]; ok {
		c.Supersede()
		delete(r.controllers, orderID)
	}
}
