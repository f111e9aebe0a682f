package render

import (
	"github.com/go-json-experiment/json"

	"github.com/pklcore/typedcore/internal/vm"
)

// JSONRenderer renders a value as JSON via go-json-experiment/json, the
// experimental JSON v2 module.
type JSONRenderer struct{}

func (JSONRenderer) Name() string { return "json" }

func (JSONRenderer) Render(reg *vm.Registry, v vm.Value) ([]byte, error) {
	plain, err := ToPlain(reg, v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(plain)
}
