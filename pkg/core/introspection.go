package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	ThemeResolver string `json:"theme_resolver"`
	Exporter      string `json:"exporter"`
	Source        string `json:"source"`
	Generated     int64  `json:"generated"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	return ServiceState{
		ThemeResolver: componentType(s.themes),
		Exporter:      componentType(s.exporter),
		Source:        componentType(s.source),
		Generated:     s.generated.Load(),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "generator"
}

func componentType(v any) string {
	if v == nil {
		return "none"
	}
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return "custom"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
