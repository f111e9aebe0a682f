package render

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/pklcore/typedcore/internal/vm"
)

// YAMLRenderer renders a value as YAML via yaml.v3, grounded on the same
// dependency the config-formatter example uses to re-encode a tree after
// walking it.
type YAMLRenderer struct {
	Indent int // default 2 when zero
}

func (YAMLRenderer) Name() string { return "yaml" }

func (r YAMLRenderer) Render(reg *vm.Registry, v vm.Value) ([]byte, error) {
	plain, err := ToPlain(reg, v)
	if err != nil {
		return nil, err
	}
	indent := r.Indent
	if indent == 0 {
		indent = 2
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(plain); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
