package render

import (
	"fmt"

	"github.com/pklcore/typedcore/internal/vm"
)

// Registry is the host-configurable set of renderer plug-ins (spec §6,
// §A.3's renderers.enabled config). New renderer kinds register themselves
// by name rather than the core hard-coding a fixed set.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry builds a registry with the given renderers registered by
// their Name().
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[string]Renderer, len(renderers))}
	for _, rr := range renderers {
		r.renderers[rr.Name()] = rr
	}
	return r
}

// Default returns a registry with the json and yaml renderers registered,
// matching config.DefaultConfig's Renderers.Enabled list.
func Default() *Registry {
	return NewRegistry(JSONRenderer{}, YAMLRenderer{})
}

// allKnown lists every renderer this core ships, keyed by Name(), for
// FromEnabled to select from.
func allKnown() map[string]Renderer {
	return map[string]Renderer{
		"json": JSONRenderer{},
		"yaml": YAMLRenderer{},
	}
}

// FromEnabled builds a registry containing only the renderers named in
// enabled (a host's config.RenderersConfig.Enabled, spec §A.3), ignoring
// unknown names rather than erroring - config.Validate already rejects
// those before a Config reaches here. An empty/nil enabled list falls back
// to Default(), matching config.DefaultConfig()'s own enabled list.
func FromEnabled(enabled []string) *Registry {
	if len(enabled) == 0 {
		return Default()
	}
	known := allKnown()
	r := &Registry{renderers: make(map[string]Renderer, len(enabled))}
	for _, name := range enabled {
		if rr, ok := known[name]; ok {
			r.renderers[name] = rr
		}
	}
	return r
}

// Render looks up kind and renders v, per spec §6's render(value,
// renderer_kind) -> bytes.
func (r *Registry) Render(reg *vm.Registry, kind string, v vm.Value) ([]byte, error) {
	rr, ok := r.renderers[kind]
	if !ok {
		return nil, fmt.Errorf("render: no renderer registered for kind %q", kind)
	}
	return rr.Render(reg, v)
}

// Has reports whether kind has a registered renderer.
func (r *Registry) Has(kind string) bool {
	_, ok := r.renderers[kind]
	return ok
}
