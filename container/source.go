// Package container assembles a beanpot registry from a declarative
// manifest: bean definitions come from named factories, startup order
// from a dependency graph, teardown from the registry's DestroyAll.
package container

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/beanpot-io/beanpot-go"
)

var (
	// ErrDuplicateFactory indicates a factory name registered twice.
	ErrDuplicateFactory = errors.New("factory already registered")

	// ErrUnknownFactory indicates a manifest bean referencing an
	// unregistered factory.
	ErrUnknownFactory = errors.New("unknown factory")

	// ErrUnknownBean indicates a lookup for a name the manifest does not
	// declare.
	ErrUnknownBean = errors.New("unknown bean")
)

// Factory builds a bean definition from the manifest's per-bean config
// block.
type Factory func(config map[string]any) (*beanpot.Definition, error)

// Source is a thread-safe catalog of named definition factories. A
// process typically fills one source at init time and feeds it to every
// container it builds.
type Source struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewSource creates an empty factory catalog.
func NewSource() *Source {
	return &Source{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name. Registering the same name twice is
// an error.
func (s *Source) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("empty factory name")
	}
	if factory == nil {
		return fmt.Errorf("factory %q is nil", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateFactory, name)
	}
	s.factories[name] = factory
	return nil
}

// MustRegister is Register that panics on error, for package init blocks.
func (s *Source) MustRegister(name string, factory Factory) {
	if err := s.Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (s *Source) Lookup(name string) (Factory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	factory, ok := s.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFactory, name)
	}
	return factory, nil
}

// Names returns the sorted names of all registered factories.
func (s *Source) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.factories))
	for name := range s.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
