package pointgen

import (
	"fmt"
	"sort"
)

// Registry maps generator names to generator factory functions
// Factories hand out a fresh generator so each caller can Init its own source
var Registry = map[string]func() Generator{
	"uniform": func() Generator { return &UniformGenerator{} },
	"scatter": func() Generator { return &ScatterGenerator{} },
	"surface": func() Generator { return &SurfaceGenerator{} },
	"bar":     func() Generator { return &BarGenerator{} },
}

// Get returns a generator by name
func Get(name string) (Generator, error) {
	factory, exists := Registry[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
	return factory(), nil
}

// List returns all available generator names, sorted
func List() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
