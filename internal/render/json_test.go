package render

import (
	"strings"
	"testing"

	"github.com/pklcore/typedcore/internal/vm"
)

func TestJSONRenderer_RendersObject(t *testing.T) {
	reg := vm.NewRegistry()
	obj := vm.NewObject(vm.ObjectTyped, nil, nil)
	obj.SetProperty(propMember("name", vm.String("widget"), vm.Modifiers{}))

	out, err := JSONRenderer{}.Render(reg, obj)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"name"`) || !strings.Contains(s, "widget") {
		t.Errorf("unexpected JSON output: %s", s)
	}
}

func TestJSONRenderer_Name(t *testing.T) {
	if JSONRenderer{}.Name() != "json" {
		t.Errorf("Name() = %q, want json", JSONRenderer{}.Name())
	}
}
