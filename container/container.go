package container

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/beanpot-io/beanpot-go"
)

// Container wires a manifest, a factory source, and a registry into one
// startable unit. Beans declared non-lazy are created eagerly by Start
// in dependency order; lazy beans are created on first Get.
type Container struct {
	id       string
	name     string
	manifest *Manifest
	registry *beanpot.Registry
	defs     map[string]*beanpot.Definition
	order    []string
}

// Option configures a container at build time.
type Option func(*build)

type build struct {
	registryOpts []beanpot.RegistryOption
}

// WithRegistryOptions forwards options to the underlying registry, such
// as post-processors and observers.
func WithRegistryOptions(opts ...beanpot.RegistryOption) Option {
	return func(b *build) {
		b.registryOpts = append(b.registryOpts, opts...)
	}
}

// New builds a container: every bean's definition is produced from its
// factory, the startup edges (manifest dependsOn plus declared
// constructor deps) are checked acyclic, and a creation order is fixed.
// No bean is created yet; call Start.
func New(m *Manifest, source *Source, opts ...Option) (*Container, error) {
	if m == nil {
		return nil, fmt.Errorf("nil manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("nil factory source")
	}

	var b build
	for _, opt := range opts {
		opt(&b)
	}

	defs := make(map[string]*beanpot.Definition, len(m.Beans))
	for i := range m.Beans {
		spec := &m.Beans[i]
		factory, err := source.Lookup(spec.Uses)
		if err != nil {
			return nil, fmt.Errorf("bean %q: %w", spec.Name, err)
		}
		def, err := factory(spec.Config)
		if err != nil {
			return nil, fmt.Errorf("bean %q: building definition: %w", spec.Name, err)
		}
		if def == nil {
			return nil, fmt.Errorf("bean %q: factory %q returned nil definition", spec.Name, spec.Uses)
		}
		defs[spec.Name] = def
	}

	graph := manifestGraph(m)
	for i := range m.Beans {
		spec := &m.Beans[i]
		for _, dep := range defs[spec.Name].ConstructorDeps() {
			// Constructor deps on beans outside the manifest are the
			// definition's own business; only declared beans order startup.
			if _, declared := defs[dep]; declared {
				graph.addEdge(spec.Name, dep)
			}
		}
	}

	order, err := graph.topoOrder()
	if err != nil {
		return nil, err
	}

	return &Container{
		id:       uuid.NewString(),
		name:     m.Container.Name,
		manifest: m,
		registry: beanpot.NewRegistry(b.registryOpts...),
		defs:     defs,
		order:    order,
	}, nil
}

// ID returns the container's unique instance id.
func (c *Container) ID() string {
	return c.id
}

// Name returns the manifest's container name.
func (c *Container) Name() string {
	return c.name
}

// Registry exposes the underlying bean registry.
func (c *Container) Registry() *beanpot.Registry {
	return c.registry
}

// StartOrder returns the fixed creation order for eager startup.
func (c *Container) StartOrder() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Start eagerly creates every non-lazy bean in dependency order. A
// failure stops startup and leaves already-created beans in place; the
// caller decides whether to Close or retry.
func (c *Container) Start() error {
	for _, name := range c.order {
		spec, _ := c.manifest.Bean(name)
		if spec.Lazy {
			continue
		}
		if _, err := c.registry.GetOrCreate(name, c.defs[name]); err != nil {
			return fmt.Errorf("starting bean %q: %w", name, err)
		}
	}
	return nil
}

// Get returns the instance for a declared bean, creating it if needed.
func (c *Container) Get(name string) (any, error) {
	def, ok := c.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBean, name)
	}
	return c.registry.GetOrCreate(name, def)
}

// Handle returns a bound accessor for a declared bean.
func (c *Container) Handle(name string) (*beanpot.Handle, error) {
	def, ok := c.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBean, name)
	}
	return beanpot.NewHandle(c.registry, name, def), nil
}

// BeanNames returns the sorted names of all declared beans.
func (c *Container) BeanNames() []string {
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close tears the container down via the registry's DestroyAll.
func (c *Container) Close() error {
	return c.registry.DestroyAll()
}
