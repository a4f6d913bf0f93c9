package theme

import (
	"github.com/aretw0/introspection"
)

// RegistryState exposes internal state for observability.
type RegistryState struct {
	Active      string   `json:"active"`
	Themes      []string `json:"themes"`
	Loads       int      `json:"loads"`
	EventBuffer int      `json:"event_buffer"`
}

// State implements introspection.Introspectable.
func (r *Registry) State() any {
	themes := r.ListAvailableThemes()

	r.mu.RLock()
	defer r.mu.RUnlock()
	return RegistryState{
		Active:      r.active,
		Themes:      themes,
		Loads:       r.loads,
		EventBuffer: cap(r.events),
	}
}

// ComponentType implements introspection.Component.
func (r *Registry) ComponentType() string {
	return "theme-registry"
}

var _ introspection.Introspectable = (*Registry)(nil)
var _ introspection.Component = (*Registry)(nil)
