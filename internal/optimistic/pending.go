package optimistic

import "sync"

// PendingSet tracks which keys have a mutation in flight. It is the guard
// that serializes per-entity mutations: a key can only be added once until it
// is removed again.
type PendingSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewPendingSet() *PendingSet {
	return &PendingSet{keys: make(map[string]struct{})}
}

// Add marks key pending. Returns false if the key was already pending.
func (p *PendingSet) Add(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.keys[key]; ok {
		return false
	}
	p.keys[key] = struct{}{}
	return true
}

// Remove clears the pending mark. Removing an absent key is a no-op.
func (p *PendingSet) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.keys, key)
}

// Has reports whether key is pending.
func (p *PendingSet) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.keys[key]
	return ok
}
