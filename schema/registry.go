package schema

import (
	"reflect"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wirebind/wirebind/internal/reflection"
	"github.com/wirebind/wirebind/logger"
)

// cacheKey identifies one resolved descriptor set: the structure type by
// identity, not by name, plus the transform policy fingerprint. Distinct
// types sharing a name (e.g. function-local structs) must never collide.
type cacheKey struct {
	t  reflect.Type
	fp string
}

// Registry caches resolved descriptor sets keyed by structure type and
// config fingerprint. Resolution is pure, so racing builds would merely be
// wasteful; the singleflight group collapses concurrent builds per key.
type Registry struct {
	mu      sync.RWMutex
	entries map[cacheKey][]FieldDescriptor
	group   singleflight.Group
	log     logger.Logger
}

// NewRegistry creates an empty descriptor registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[cacheKey][]FieldDescriptor)}
}

// SetLogger attaches a logger for cache-build diagnostics. Safe to leave
// unset; the registry stays silent.
func (r *Registry) SetLogger(l logger.Logger) {
	r.mu.Lock()
	r.log = l
	r.mu.Unlock()
}

// Resolve returns the cached descriptor set for the type and config,
// building it on first use. The returned slice is shared and must be
// treated as read-only.
func (r *Registry) Resolve(t reflect.Type, cfg *Config) ([]FieldDescriptor, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	key := cacheKey{t: t, fp: cfg.fingerprint()}

	r.mu.RLock()
	cached, ok := r.entries[key]
	log := r.log
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	// reflect.Type values are canonical, so the pointer identity gives a
	// collision-free string key for the flight group.
	flightKey := strconv.FormatUint(uint64(reflect.ValueOf(t).Pointer()), 16) + "|" + key.fp
	result, err, _ := r.group.Do(flightKey, func() (any, error) {
		descriptors, rerr := resolve(t, cfg)
		if rerr != nil {
			return nil, rerr
		}
		r.mu.Lock()
		r.entries[key] = descriptors
		r.mu.Unlock()
		if log != nil {
			log.Debug().
				Str("type", reflection.TypeName(t)).
				Int("fields", len(descriptors)).
				Msg("Resolved descriptor set")
		}
		return descriptors, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]FieldDescriptor), nil
}

// Reset clears all cached descriptor sets. Intended for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.entries = make(map[cacheKey][]FieldDescriptor)
	r.mu.Unlock()
}

// Default is the process-wide registry used by the package-level helpers.
var Default = NewRegistry()

// Resolve resolves through the default registry.
func Resolve(t reflect.Type, cfg *Config) ([]FieldDescriptor, error) {
	return Default.Resolve(t, cfg)
}

// ResolveFor resolves the descriptor set for the type of the given value.
func ResolveFor(v any, cfg *Config) ([]FieldDescriptor, error) {
	return Default.Resolve(reflect.TypeOf(v), cfg)
}

// Reset clears the default registry. Intended for tests.
func Reset() {
	Default.Reset()
}
