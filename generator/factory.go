package generator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/order"
)

// UnknownTypeError is returned by Factory.Get for unsupported transport types.
type UnknownTypeError struct {
	Name      string
	Available []string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unsupported transport type %q, available types: %s", e.Name, strings.Join(e.Available, ", "))
}

// Factory hands out the generator of each transport type.
type Factory struct {
	mu         sync.RWMutex
	generators map[order.TransportType]Generator
	types      []order.TransportType
}

// NewFactory registers the built-in generators.
func NewFactory(c *catalog.Catalog) *Factory {
	f := &Factory{generators: map[order.TransportType]Generator{}}
	f.Register(NewSimpleRoad(c))
	f.Register(NewComplexRoad(c))
	f.Register(NewOceanVisibility(c))
	return f
}

// Register adds or replaces the generator of g.Type().
func (f *Factory) Register(g Generator) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.generators[g.Type()]; !ok {
		f.types = append(f.types, g.Type())
	}
	f.generators[g.Type()] = g
}

// Get returns the generator of name. The error lists the supported types.
func (f *Factory) Get(name string) (Generator, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if t, ok := order.ParseTransportType(name); ok {
		if g, ok := f.generators[t]; ok {
			return g, nil
		}
	}
	return nil, &UnknownTypeError{Name: name, Available: f.typeNames()}
}

// Types returns the registered transport types in registration order.
func (f *Factory) Types() []order.TransportType {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]order.TransportType(nil), f.types...)
}

// TypeNames returns Types as strings.
func (f *Factory) TypeNames() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.typeNames()
}

func (f *Factory) typeNames() []string {
	names := make([]string, 0, len(f.types))
	for _, t := range f.types {
		names = append(names, string(t))
	}
	return names
}
