package beanpot

// Handle binds a name and its definition to a registry, giving embedding
// code a stable accessor for one bean.
type Handle struct {
	registry *Registry
	name     string
	def      *Definition
}

// NewHandle creates a handle for a named definition on a registry.
func NewHandle(r *Registry, name string, def *Definition) *Handle {
	return &Handle{
		registry: r,
		name:     name,
		def:      def,
	}
}

// Name returns the bean name this handle is bound to.
func (h *Handle) Name() string {
	return h.name
}

// Get retrieves the finished instance, creating it if needed.
func (h *Handle) Get() (any, error) {
	return h.registry.GetOrCreate(h.name, h.def)
}

// Peek returns the finished instance without triggering creation.
func (h *Handle) Peek() (any, bool) {
	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()

	v, ok := h.registry.finished[h.name]
	return v, ok
}

// IsFinished checks whether the bean has reached the finished state.
func (h *Handle) IsFinished() bool {
	return h.registry.Contains(h.name)
}
