package passlib

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/notypecheck/passlib/hash"
)

// Factory constructs a scheme's Hasher. A successful result is cached per
// Registry per canonical name, so a factory that succeeds runs once; a
// failed call is not cached and is retried on the next lookup. A factory that fails
// (e.g. a backend dependency could not initialize) surfaces as
// [hash.MissingBackendError] only when the scheme is actually exercised,
// satisfying the lazy-loading requirement in spec §4.4.
type Factory func() (hash.Hasher, error)

// Registry is a name -> hasher factory table. The zero value is not
// usable; construct one with [NewRegistry]. Registration ("write") is
// expected to happen once at process startup via scheme packages' init()
// functions; lookups ("read") happen throughout a program's life, so
// publication happens-before reads per spec §5.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	aliases    map[string]string // lowercase alias -> canonical name
	instances  map[string]hash.Hasher
	envOverride map[string]string // scheme -> env var name, see SetBackendEnvOverride
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories:   make(map[string]Factory),
		aliases:     make(map[string]string),
		instances:   make(map[string]hash.Hasher),
		envOverride: make(map[string]string),
	}
}

// defaultRegistry is the process-wide registry scheme packages populate
// via blank import (see schemes/all). Most callers never construct their
// own Registry; Context falls back to this one.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds a scheme factory under name and any additional aliases,
// on the process-wide default registry. Scheme packages call this from
// init().
func Register(name string, f Factory, aliases ...string) {
	defaultRegistry.Register(name, f, aliases...)
}

// Register adds a scheme factory under name and any additional aliases.
// Registering the same canonical name twice panics: scheme registration
// is meant to happen once, deterministically, at package init, not at
// runtime in response to arbitrary input.
func (r *Registry) Register(name string, f Factory, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	canonical := strings.ToLower(name)
	if _, exists := r.factories[canonical]; exists {
		panic(fmt.Sprintf("passlib: scheme %q already registered", name))
	}
	r.factories[canonical] = f
	r.aliases[canonical] = canonical
	for _, alias := range aliases {
		r.aliases[strings.ToLower(alias)] = canonical
	}
}

// Get resolves name (case-insensitively, through aliases) to a Hasher,
// instantiating and caching it on first use. It returns
// [hash.MissingBackendError] if the scheme is known but its factory
// fails.
func (r *Registry) Get(name string) (hash.Hasher, error) {
	lower := strings.ToLower(name)

	r.mu.RLock()
	canonical, known := r.aliases[lower]
	if known {
		if h, cached := r.instances[canonical]; cached {
			r.mu.RUnlock()
			return h, nil
		}
	}
	r.mu.RUnlock()

	if !known {
		return nil, fmt.Errorf("passlib: unknown scheme %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, cached := r.instances[canonical]; cached {
		return h, nil
	}
	h, err := r.factories[canonical]()
	if err != nil {
		return nil, &hash.MissingBackendError{Scheme: canonical, Reason: err.Error()}
	}
	r.instances[canonical] = h
	return h, nil
}

// Has reports whether name (case-insensitively, through aliases) is
// registered, without instantiating it.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.aliases[strings.ToLower(name)]
	return ok
}

// Names returns every canonical scheme name registered, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SetBackendEnvOverride records that, for scheme, the environment
// variable envVar MAY be consulted to pin a non-default backend. Per
// spec §6, a conforming implementation that reads such a variable must
// document it: this implementation ships exactly one backend per scheme
// (no cgo/native bindings), so the override currently has no observable
// effect beyond being queryable via BackendEnvOverride — it exists so
// callers and future backends have a stable extension point.
func (r *Registry) SetBackendEnvOverride(scheme, envVar string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envOverride[strings.ToLower(scheme)] = envVar
}

// BackendEnvOverride returns the environment variable name registered for
// scheme via SetBackendEnvOverride, if any.
func (r *Registry) BackendEnvOverride(scheme string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.envOverride[strings.ToLower(scheme)]
	return v, ok
}
