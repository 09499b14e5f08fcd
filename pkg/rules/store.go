// Package rules holds the ClearURLs-style rule corpus: compiled providers in
// application order, and the loaders that build them from a rule document.
package rules

// Store is an ordered, read-only list of providers. The order is the order in
// which providers are applied and is significant. A Store is built once and may
// then be shared by any number of goroutines without locking.
type Store struct {
	providers []*Provider
}

// NewStore returns a Store applying providers in the given order.
func NewStore(providers ...*Provider) *Store {
	ps := make([]*Provider, len(providers))
	copy(ps, providers)
	return &Store{providers: ps}
}

// Providers returns the providers in application order. Read-only.
func (s *Store) Providers() []*Provider {
	if s == nil {
		return nil
	}
	return s.providers
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.providers)
}

// Names lists provider names in application order.
func (s *Store) Names() []string {
	out := make([]string, 0, s.Len())
	for _, p := range s.Providers() {
		out = append(out, p.Name())
	}
	return out
}

// Lookup returns the first provider declared under name.
func (s *Store) Lookup(name string) (*Provider, bool) {
	for _, p := range s.Providers() {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}
