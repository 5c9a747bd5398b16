package container

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MaxBeanNameLength bounds manifest bean names.
const MaxBeanNameLength = 64

// Manifest is the declarative description of one container: which beans
// exist, which factory builds each, and the explicit ordering edges
// between them.
type Manifest struct {
	Container ContainerSpec `yaml:"container"`
	Beans     []BeanSpec    `yaml:"beans"`
}

// ContainerSpec carries container-level settings.
type ContainerSpec struct {
	Name string `yaml:"name"`
}

// BeanSpec declares one bean.
type BeanSpec struct {
	// Name is the unique bean name within the container.
	Name string `yaml:"name"`

	// Uses names the registered factory that builds the definition.
	Uses string `yaml:"uses"`

	// Lazy excludes the bean from eager startup; it is created on first
	// lookup instead.
	Lazy bool `yaml:"lazy"`

	// DependsOn lists beans that must be finished before this one starts
	// creating. Field-style references resolved inside injectors do not
	// belong here; those may be circular.
	DependsOn []string `yaml:"dependsOn"`

	// Config is the free-form block handed to the factory.
	Config map[string]any `yaml:"config"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural manifest rules: unique well-formed bean
// names, factories named on every bean, dependsOn edges pointing at
// declared beans.
func (m *Manifest) Validate() error {
	if len(m.Beans) == 0 {
		return errors.New("manifest declares no beans")
	}

	seen := make(map[string]bool, len(m.Beans))
	for i := range m.Beans {
		spec := &m.Beans[i]
		if err := ValidateBeanName(spec.Name); err != nil {
			return fmt.Errorf("bean %d: %w", i, err)
		}
		if seen[spec.Name] {
			return fmt.Errorf("bean %q declared twice", spec.Name)
		}
		seen[spec.Name] = true

		if spec.Uses == "" {
			return fmt.Errorf("bean %q names no factory", spec.Name)
		}
	}

	for i := range m.Beans {
		spec := &m.Beans[i]
		for _, dep := range spec.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("bean %q depends on undeclared bean %q", spec.Name, dep)
			}
			if dep == spec.Name {
				return fmt.Errorf("bean %q depends on itself", spec.Name)
			}
		}
	}

	return nil
}

// Bean returns the spec for a declared bean name.
func (m *Manifest) Bean(name string) (*BeanSpec, bool) {
	for i := range m.Beans {
		if m.Beans[i].Name == name {
			return &m.Beans[i], true
		}
	}
	return nil, false
}

// ValidateBeanName enforces the bean naming rules: lowercase
// alphanumerics separated by single '-', '_' or '.', starting with a
// letter, at most MaxBeanNameLength characters.
func ValidateBeanName(name string) error {
	if name == "" {
		return errors.New("empty bean name")
	}
	if len(name) > MaxBeanNameLength {
		return fmt.Errorf("bean name %q exceeds %d characters", name, MaxBeanNameLength)
	}
	if name[0] < 'a' || name[0] > 'z' {
		return fmt.Errorf("bean name %q must start with a lowercase letter", name)
	}

	prevSep := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			prevSep = false
		case r == '-' || r == '_' || r == '.':
			if prevSep {
				return fmt.Errorf("bean name %q has consecutive separators", name)
			}
			prevSep = true
		default:
			return fmt.Errorf("bean name %q contains invalid character %q", name, r)
		}
	}
	if prevSep {
		return fmt.Errorf("bean name %q ends with a separator", name)
	}
	return nil
}
