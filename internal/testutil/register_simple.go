package testutil

import "github.com/vk/varflow/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single handler.
type SimpleModule struct {
	Name    string
	Handler *registry.Handler
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Name != "" && m.Handler != nil {
		r.Register(m.Name, m.Handler)
	}
}
