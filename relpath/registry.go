package relpath

import (
	"reflect"
	"sync"
)

// Static is a named package-level value published by a generated holder,
// normally the holder's singleton path.
type Static struct {
	Name  string
	Value any
}

// Registry records generated holder types by package path and name along
// with their statics. It is safe for concurrent use; generated init
// functions fill it before main runs.
type Registry struct {
	mu      sync.RWMutex
	types   map[string]reflect.Type
	statics map[reflect.Type]map[string]any
}

func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[string]reflect.Type),
		statics: make(map[reflect.Type]map[string]any),
	}
}

// Default is the registry generated holders register with.
var Default = NewRegistry()

// Register records holder and its statics. Pointer types are dereferenced.
// Registering a holder again adds to or replaces its statics.
func (r *Registry) Register(holder reflect.Type, statics ...Static) {
	for holder.Kind() == reflect.Ptr {
		holder = holder.Elem()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.types[qualified(holder.PkgPath(), holder.Name())] = holder
	values, ok := r.statics[holder]
	if !ok {
		values = make(map[string]any, len(statics))
		r.statics[holder] = values
	}
	for _, s := range statics {
		values[s.Name] = s.Value
	}
}

// LookupType returns the holder type registered under pkgPath and name.
func (r *Registry) LookupType(pkgPath, name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[qualified(pkgPath, name)]
	return t, ok
}

// LookupStatic returns the static called name of holder.
func (r *Registry) LookupStatic(holder reflect.Type, name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.statics[holder][name]
	return v, ok
}

func qualified(pkgPath, name string) string {
	return pkgPath + "." + name
}
