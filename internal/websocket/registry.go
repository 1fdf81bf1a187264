package websocket

import "sync"

// registry is the process-wide set of open connections, keyed by identity.
// It is mutated only by admission (insert), the nick command (nickname
// update, via the Conn itself) and close/timeout handling (remove).
// Iteration order is insertion order; fan-out never depends on it.
type registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	order []*Conn
}

func newRegistry() *registry {
	return &registry{conns: make(map[string]*Conn)}
}

func (r *registry) add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c.ID()]; ok {
		return
	}
	r.conns[c.ID()] = c
	r.order = append(r.order, c)
}

// remove reports whether the connection was still registered. The caller
// that wins the removal owns the departure announcement.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return false
	}
	delete(r.conns, id)
	for i, c := range r.order {
		if c.ID() == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// snapshot returns the registered connections in insertion order. Mutations
// after the snapshot do not affect an iteration already in progress.
func (r *registry) snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, len(r.order))
	copy(out, r.order)
	return out
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
