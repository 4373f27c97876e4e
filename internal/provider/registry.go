package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Auto picks the first usable backend in ProviderPriority order.
const Auto = "auto"

// ProviderPriority is the auto-mode search order. Local inference is tried
// before anything that sends abstracts over the network.
var ProviderPriority = []string{NameProcess, NameInference, NameOllamaAPI}

var (
	// ErrUnknownProvider is returned when the configured backend was never
	// registered.
	ErrUnknownProvider = errors.New("unknown model provider")
	// ErrProviderUnavailable is returned when the chosen backend, or every
	// backend in auto mode, cannot run.
	ErrProviderUnavailable = errors.New("model provider unavailable")
)

// Registry holds the configured model backends keyed by name and decides
// which one extraction talks to. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	preferred string
}

// NewRegistry returns a registry in auto mode holding providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
		preferred: Auto,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register stores p under its name. A later backend with the same name wins.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	r.providers[p.Name()] = p
	r.mu.Unlock()
}

// SetPreferred pins selection to one backend. Auto and "" restore the
// priority search.
func (r *Registry) SetPreferred(name string) {
	r.mu.Lock()
	r.preferred = name
	r.mu.Unlock()
}

// GetPreferred reports the pinned backend name, or Auto.
func (r *Registry) GetPreferred() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.preferred
}

// Get looks up a backend by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// GetBest resolves the backend extraction should use. A pinned backend is
// never silently replaced by another one: if it is missing or unusable the
// call fails.
func (r *Registry) GetBest() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pinned := r.preferred; pinned != "" && pinned != Auto {
		return r.pinned(pinned)
	}
	for _, name := range ProviderPriority {
		if p, ok := r.providers[name]; ok && p.Available() {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: none of %v is usable", ErrProviderUnavailable, ProviderPriority)
}

func (r *Registry) pinned(name string) (Provider, error) {
	p, ok := r.providers[name]
	switch {
	case !ok:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, name)
	case !p.Available():
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, name)
	default:
		return p, nil
	}
}

// ListAvailable returns the sorted names of usable backends.
func (r *Registry) ListAvailable() []string {
	var names []string
	for name, ok := range r.ListAll() {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ListAll maps every registered backend name to whether it can run now.
func (r *Registry) ListAll() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := make(map[string]bool, len(r.providers))
	for name, p := range r.providers {
		status[name] = p.Available()
	}
	return status
}
