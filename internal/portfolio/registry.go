package portfolio

import (
	"strings"
	"sync"
)

// Registry is the ordered set of watched symbols. Symbols are normalized
// on entry and kept in insertion order for display.
type Registry struct {
	mu      sync.RWMutex
	symbols []string
	index   map[string]struct{}
}

func NewRegistry(seed ...string) *Registry {
	r := &Registry{index: make(map[string]struct{})}
	for _, s := range seed {
		r.Add(s)
	}
	return r
}

// Normalize converts a raw ticker to its canonical form.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Add appends a symbol to the watchlist. It reports false when the
// symbol was already present (the list is unchanged in that case).
func (r *Registry) Add(symbol string) bool {
	symbol = Normalize(symbol)
	if symbol == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[symbol]; ok {
		return false
	}
	r.index[symbol] = struct{}{}
	r.symbols = append(r.symbols, symbol)
	return true
}

// Remove drops a symbol from the watchlist. Removing an absent symbol
// is a no-op.
func (r *Registry) Remove(symbol string) bool {
	symbol = Normalize(symbol)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[symbol]; !ok {
		return false
	}
	delete(r.index, symbol)
	for i, s := range r.symbols {
		if s == symbol {
			r.symbols = append(r.symbols[:i], r.symbols[i+1:]...)
			break
		}
	}
	return true
}

// List returns a snapshot of the watchlist in insertion order. The
// returned slice is safe to iterate while the registry is mutated.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.symbols))
	copy(out, r.symbols)
	return out
}

// Contains reports whether the symbol is currently watched.
func (r *Registry) Contains(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.index[Normalize(symbol)]
	return ok
}

// Len returns the number of watched symbols.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.symbols)
}
