package fluid

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Registry maps substance names to property backends and implements Source.
type Registry struct {
	backends map[string]Backend
	names    map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
		names:    make(map[string]string),
	}
}

// Default returns a registry with every built-in backend registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register("NitrousOxide", NewNitrousOxide(), "N2O")
	return r
}

// Register adds a backend under name and any aliases. Names are matched
// case-insensitively.
func (r *Registry) Register(name string, b Backend, aliases ...string) {
	r.backends[name] = b
	r.names[strings.ToLower(name)] = name
	for _, a := range aliases {
		r.names[strings.ToLower(a)] = name
	}
}

func (r *Registry) backend(substance string) (Backend, error) {
	name, ok := r.names[strings.ToLower(substance)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubstance, substance)
	}
	return r.backends[name], nil
}

func (r *Registry) Lookup(substance string, a, b Input) (State, error) {
	be, err := r.backend(substance)
	if err != nil {
		return State{}, &LookupError{Substance: substance, Inputs: [2]Input{a, b}, Wrapped: err}
	}
	st, err := be.Lookup(a, b)
	if err != nil {
		var le *LookupError
		if errors.As(err, &le) {
			return State{}, err
		}
		return State{}, &LookupError{Substance: substance, Inputs: [2]Input{a, b}, Wrapped: err}
	}
	return st, nil
}

func (r *Registry) CriticalPoint(substance string) (CriticalPoint, error) {
	be, err := r.backend(substance)
	if err != nil {
		return CriticalPoint{}, err
	}
	return be.CriticalPoint(), nil
}

func (r *Registry) Limits(substance string) (Limits, error) {
	be, err := r.backend(substance)
	if err != nil {
		return Limits{}, err
	}
	return be.Limits(), nil
}

// Substances lists the canonical names of the registered backends.
func (r *Registry) Substances() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
