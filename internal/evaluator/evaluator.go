// Package evaluator implements the stable surface spec §6 exposes to a
// host: evaluate, read_property, render, and mirror_of. It consumes a
// parser/module-loader/security-manager from the host (spec §6 "Consumed")
// rather than doing resolution, parsing, or I/O itself — those remain this
// core's Non-goals — and wires internal/vm, internal/check, internal/amend,
// and internal/render together behind one entry point, the way a build
// pipeline wires its independently-tested stages without those stages
// needing to know about the wiring.
package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pklcore/typedcore/internal/check"
	"github.com/pklcore/typedcore/internal/config"
	"github.com/pklcore/typedcore/internal/diagnostic"
	"github.com/pklcore/typedcore/internal/ident"
	"github.com/pklcore/typedcore/internal/render"
	"github.com/pklcore/typedcore/internal/vm"
)

// Resolver is the module loader collaborator (spec §6: "resolve(uri) ->
// module_value"). Implementations must be idempotent for a given uri within
// one evaluation; Evaluator additionally caches on top so a non-idempotent
// Resolver still behaves correctly within a single evaluation.
type Resolver interface {
	Resolve(uri string) (vm.Value, error)
}

// ResourceLoader is the "resource(uri) -> string|bytes" collaborator.
type ResourceLoader interface {
	Resource(uri string) ([]byte, error)
}

// SecurityManager is the capability-check collaborator ("allow(uri) ->
// bool|error").
type SecurityManager interface {
	Allow(uri string) (bool, error)
}

// AllowAll is a SecurityManager that permits every uri, for hosts that don't
// sandbox module resolution (tests, trusted embedders).
type AllowAll struct{}

func (AllowAll) Allow(string) (bool, error) { return true, nil }

// Evaluator ties the core's packages to one host-facing surface. Every
// Evaluator carries its own Registry and module cache; nothing is shared
// across Evaluators, matching spec §6's "persisted state: none, caches are
// per-evaluation".
type Evaluator struct {
	ID uuid.UUID

	Registry *vm.Registry
	Config   *config.Config
	Renderers *render.Registry

	resolver Resolver
	security SecurityManager

	mu       sync.Mutex
	modules  map[string]vm.Value
}

// New builds an Evaluator over the given collaborators, with a fresh
// registry and the default renderer set.
func New(resolver Resolver, security SecurityManager, cfg *config.Config) *Evaluator {
	if security == nil {
		security = AllowAll{}
	}
	if cfg == nil {
		c := config.DefaultConfig()
		cfg = &c
	}
	reg := vm.NewRegistry()
	reg.SetLimits(cfg.Limits.MaxMemberCacheDepth, cfg.Limits.MaxTypeParameterDepth)
	return &Evaluator{
		ID:        uuid.New(),
		Registry:  reg,
		Config:    cfg,
		Renderers: render.FromEnabled(cfg.Renderers.Enabled),
		resolver:  resolver,
		security:  security,
		modules:   make(map[string]vm.Value),
	}
}

// Evaluate implements spec §6's "evaluate(module_uri) -> module_value |
// error": a capability check, then an idempotent resolve, memoized for the
// lifetime of this Evaluator.
func (e *Evaluator) Evaluate(moduleURI string) (vm.Value, error) {
	e.mu.Lock()
	if v, ok := e.modules[moduleURI]; ok {
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()

	allowed, err := e.security.Allow(moduleURI)
	if err != nil {
		return nil, fmt.Errorf("evaluator %s: capability check for %q failed: %w", e.ID, moduleURI, err)
	}
	if !allowed {
		return nil, fmt.Errorf("evaluator %s: module %q denied by security manager", e.ID, moduleURI)
	}

	v, err := e.resolver.Resolve(moduleURI)
	if err != nil {
		return nil, fmt.Errorf("evaluator %s: resolving %q: %w", e.ID, moduleURI, err)
	}

	e.mu.Lock()
	e.modules[moduleURI] = v
	e.mu.Unlock()
	return v, nil
}

// ReadProperty implements "read_property(value, name) -> value | error":
// materializing a named property on demand via the member cache (spec
// §4.6), then checking the result against its declared type (spec §4.5) so
// a bad override or constraint violation surfaces here rather than only
// when a renderer happens to walk that far. Only meaningful on an Object;
// scalar/domain values have no named properties.
func (e *Evaluator) ReadProperty(value vm.Value, name string) (vm.Value, error) {
	obj, ok := value.(*vm.Object)
	if !ok {
		return nil, fmt.Errorf("evaluator %s: cannot read property %q of non-object value %T", e.ID, name, value)
	}
	key := vm.MemberKey{Ident: ident.Regular(name)}
	v, err := vm.ReadMemberReg(obj, key, e.Registry)
	if err != nil {
		return nil, err
	}
	if m := vm.DescriptorOf(obj, key); m != nil && m.Declared != nil {
		frame := &vm.Frame{Receiver: obj, RenderWidth: e.Config.Diagnostics.TruncateWidth}
		if err := check.Check(e.Registry, m.Declared, v, frame, diagnostic.Span{}); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Render implements "render(value, renderer_kind) -> bytes" by delegating
// to the renderer plug-in registry (spec §6: "renderers are plug-ins and
// not part of the core").
func (e *Evaluator) Render(value vm.Value, rendererKind string) ([]byte, error) {
	return e.Renderers.Render(e.Registry, rendererKind, value)
}

// MirrorOf implements "mirror_of(value) -> value": a reflective Dynamic
// descriptor of value's runtime shape — its class, and for an Object, each
// own member's name paired with a mirror of its declared type (vm.ToMirror,
// spec §8's to_mirror/from_mirror round-trip law, applied per-member here
// rather than to a single type).
func (e *Evaluator) MirrorOf(value vm.Value) vm.Value {
	class := vm.ClassOf(e.Registry, value)
	dyn := e.Registry.Builtins().Dynamic
	mirror := vm.NewObject(vm.ObjectDynamic, dyn, nil)
	setConst(mirror, "class", vm.String(class.QualifiedName))
	setConst(mirror, "valueKind", vm.String(kindName(value.Kind())))

	obj, ok := value.(*vm.Object)
	if !ok {
		return mirror
	}
	members := &vm.List{}
	for _, name := range obj.OwnPropertyNames() {
		m, _ := obj.OwnProperty(name)
		entry := vm.NewObject(vm.ObjectDynamic, dyn, nil)
		setConst(entry, "name", vm.String(name))
		if m.Declared != nil {
			setConst(entry, "declaredType", vm.ToMirror(e.Registry, m.Declared))
		}
		members.Elements = append(members.Elements, entry)
	}
	setConst(mirror, "members", members)
	return mirror
}

func setConst(o *vm.Object, name string, v vm.Value) {
	o.SetProperty(&vm.Member{
		Kind:     vm.MemberProperty,
		Key:      vm.MemberKey{Ident: ident.Regular(name)},
		BodyKind: vm.BodyConstant,
		Constant: v,
	})
}

func kindName(k vm.Kind) string {
	switch k {
	case vm.KindBool:
		return "bool"
	case vm.KindInt:
		return "int"
	case vm.KindFloat:
		return "float"
	case vm.KindString:
		return "string"
	case vm.KindNull:
		return "null"
	case vm.KindObject:
		return "object"
	default:
		return "value"
	}
}

// BatchEvaluate evaluates several module uris concurrently, each against
// this Evaluator's shared Registry but with independent per-module caching
// (spec §5: "multiple module evaluations may proceed in parallel"). The
// returned slice preserves uris' order; a failure on one uri does not
// cancel the others — every slot is populated with either a value or an
// error.
type BatchResult struct {
	URI   string
	Value vm.Value
	Err   error
}

func (e *Evaluator) BatchEvaluate(ctx context.Context, uris []string) []BatchResult {
	results := make([]BatchResult, len(uris))
	g, _ := errgroup.WithContext(ctx)
	for i, uri := range uris {
		i, uri := i, uri
		g.Go(func() error {
			v, err := e.Evaluate(uri)
			results[i] = BatchResult{URI: uri, Value: v, Err: err}
			return nil // collect per-module errors in results, never cancel siblings
		})
	}
	_ = g.Wait()
	return results
}
