package render

import (
	"strings"
	"testing"

	"github.com/pklcore/typedcore/internal/vm"
)

func TestYAMLRenderer_RendersObject(t *testing.T) {
	reg := vm.NewRegistry()
	obj := vm.NewObject(vm.ObjectTyped, nil, nil)
	obj.SetProperty(propMember("name", vm.String("widget"), vm.Modifiers{}))

	out, err := YAMLRenderer{}.Render(reg, obj)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "name:") || !strings.Contains(s, "widget") {
		t.Errorf("unexpected YAML output: %s", s)
	}
}

func TestYAMLRenderer_Name(t *testing.T) {
	if (YAMLRenderer{}).Name() != "yaml" {
		t.Errorf("Name() = %q, want yaml", (YAMLRenderer{}).Name())
	}
}
