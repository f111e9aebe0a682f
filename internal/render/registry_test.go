package render

import (
	"testing"

	"github.com/pklcore/typedcore/internal/vm"
)

func TestRegistry_DefaultHasJSONAndYAML(t *testing.T) {
	reg := Default()
	if !reg.Has("json") || !reg.Has("yaml") {
		t.Error("expected Default() to register both json and yaml renderers")
	}
	if reg.Has("msgpack") {
		t.Error("expected an unregistered kind to report Has() = false")
	}
}

func TestRegistry_RenderUnknownKindErrors(t *testing.T) {
	reg := Default()
	vmReg := vm.NewRegistry()
	if _, err := reg.Render(vmReg, "msgpack", vm.Int(1)); err == nil {
		t.Error("expected Render() with an unregistered kind to error")
	}
}

func TestRegistry_RenderDelegatesToNamedRenderer(t *testing.T) {
	reg := Default()
	vmReg := vm.NewRegistry()
	out, err := reg.Render(vmReg, "json", vm.String("hi"))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(out) != `"hi"` {
		t.Errorf("Render(json, \"hi\") = %s, want \"hi\"", out)
	}
}
