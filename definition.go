package beanpot

// Scope identifies the lifetime model of a bean definition.
type Scope string

const (
	// ScopeSingleton means exactly one instance per name for the
	// registry's lifetime. The only scope this registry handles.
	ScopeSingleton Scope = "singleton"
)

// Constructor produces the raw instance of a bean. Nested lookups made
// through the CreateCtx resolve constructor-argument dependencies; a
// cycle reached this way is unresolvable and fails fast.
type Constructor func(ctx *CreateCtx) (any, error)

// Injector populates a raw instance after construction. Nested lookups
// made through the CreateCtx at this point may receive early references,
// which is how field/setter-style cycles are resolved.
type Injector func(ctx *CreateCtx, instance any) error

// Definition describes how to build one named bean: its scope, its
// constructor, an optional post-construction injector, and the names the
// constructor itself depends on.
type Definition struct {
	scope           Scope
	construct       Constructor
	inject          Injector
	constructorDeps []string
	attributes      map[string]any
}

// DefinitionOption configures a Definition.
type DefinitionOption func(*Definition)

// WithInject sets the dependency-population function invoked after the
// constructor returns and the early-reference producer is installed.
func WithInject(inject Injector) DefinitionOption {
	return func(d *Definition) {
		d.inject = inject
	}
}

// WithConstructorDeps declares the names the constructor resolves. Used
// by static analysis (container validation); the registry itself detects
// constructor cycles structurally at creation time.
func WithConstructorDeps(names ...string) DefinitionOption {
	return func(d *Definition) {
		d.constructorDeps = append(d.constructorDeps, names...)
	}
}

// WithScope overrides the definition scope. Anything other than
// ScopeSingleton is rejected by the registry.
func WithScope(scope Scope) DefinitionOption {
	return func(d *Definition) {
		d.scope = scope
	}
}

// WithAttribute attaches free-form metadata to the definition.
func WithAttribute(key string, value any) DefinitionOption {
	return func(d *Definition) {
		if d.attributes == nil {
			d.attributes = make(map[string]any)
		}
		d.attributes[key] = value
	}
}

// NewDefinition creates a singleton definition with the given constructor.
func NewDefinition(construct Constructor, opts ...DefinitionOption) *Definition {
	d := &Definition{
		scope:     ScopeSingleton,
		construct: construct,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Scope returns the definition's scope.
func (d *Definition) Scope() Scope {
	return d.scope
}

// ConstructorDeps returns the declared constructor dependency names.
func (d *Definition) ConstructorDeps() []string {
	out := make([]string, len(d.constructorDeps))
	copy(out, d.constructorDeps)
	return out
}

// Attribute returns a metadata value by key.
func (d *Definition) Attribute(key string) (any, bool) {
	v, ok := d.attributes[key]
	return v, ok
}

// Attr returns a typed metadata value from a definition.
func Attr[T any](d *Definition, key string) (T, bool) {
	v, ok := d.attributes[key]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, false
	}
	return typed, true
}
