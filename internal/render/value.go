// Package render implements the renderer plug-ins named by spec §6
// (render(value, renderer_kind) -> bytes): value trees are first reduced to
// plain Go data (bool/int64/float64/string/nil/[]any/map[string]any) by
// ToPlain, then handed to an encoding/json- or yaml.v3-shaped encoder —
// walking the tree once before re-encoding it rather than hand-rolling
// serialization inline.
package render

import (
	"fmt"

	"github.com/pklcore/typedcore/internal/ident"
	"github.com/pklcore/typedcore/internal/vm"
)

// Renderer turns a forced vm.Value into its wire-format bytes.
type Renderer interface {
	// Name is the renderer_kind string a host selects render() by (e.g.
	// "json", "yaml").
	Name() string
	Render(reg *vm.Registry, v vm.Value) ([]byte, error)
}

// ToPlain reduces v to the subset of Go values JSON/YAML encoders accept
// directly: bool, int64, float64, string, nil, []any, map[string]any.
// Listing/Dynamic/Typed objects become arrays/maps; Mapping becomes a map
// when every key renders to a string, else a list of {"key","value"} pairs
// (matching Pkl's own renderer: "a Map or Mapping with non-String keys
// cannot be rendered to JSON/YAML directly").
func ToPlain(reg *vm.Registry, v vm.Value) (any, error) {
	switch val := v.(type) {
	case vm.Bool:
		return bool(val), nil
	case vm.Int:
		return int64(val), nil
	case vm.Float:
		return float64(val), nil
	case vm.String:
		return string(val), nil
	case vm.Null:
		return nil, nil
	case vm.Duration:
		return fmt.Sprintf("%g.%s", val.Value, val.Unit), nil
	case vm.DataSize:
		return fmt.Sprintf("%g.%s", val.Value, val.Unit), nil
	case *vm.Regex:
		return val.Pattern, nil
	case vm.Pair:
		first, err := ToPlain(reg, val.First)
		if err != nil {
			return nil, err
		}
		second, err := ToPlain(reg, val.Second)
		if err != nil {
			return nil, err
		}
		return []any{first, second}, nil
	case vm.IntSeq:
		return map[string]any{"start": val.Start, "end": val.End, "step": val.Step}, nil
	case *vm.List:
		return plainList(reg, val.Elements)
	case *vm.Set:
		return plainList(reg, val.Elements())
	case *vm.Map:
		keys, vals := val.Entries()
		return plainMapOrPairs(reg, keys, vals)
	case *vm.Object:
		return plainObject(reg, val)
	case *vm.Function:
		return nil, fmt.Errorf("render: a Function has no representable value")
	default:
		return nil, fmt.Errorf("render: unsupported value type %T", v)
	}
}

func plainList(reg *vm.Registry, elems []vm.Value) (any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		p, err := ToPlain(reg, e)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func plainMapOrPairs(reg *vm.Registry, keys, vals []vm.Value) (any, error) {
	allString := true
	for _, k := range keys {
		if _, ok := k.(vm.String); !ok {
			allString = false
			break
		}
	}
	if allString {
		out := make(map[string]any, len(keys))
		for i, k := range keys {
			p, err := ToPlain(reg, vals[i])
			if err != nil {
				return nil, err
			}
			out[string(k.(vm.String))] = p
		}
		return out, nil
	}
	out := make([]any, len(keys))
	for i := range keys {
		k, err := ToPlain(reg, keys[i])
		if err != nil {
			return nil, err
		}
		val, err := ToPlain(reg, vals[i])
		if err != nil {
			return nil, err
		}
		out[i] = map[string]any{"key": k, "value": val}
	}
	return out, nil
}

func plainObject(reg *vm.Registry, o *vm.Object) (any, error) {
	switch o.Variant {
	case vm.ObjectListing:
		n := o.ElementCount()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			v, err := vm.ReadMemberReg(o, vm.MemberKey{Entry: vm.Int(i)}, reg)
			if err != nil {
				return nil, err
			}
			p, err := ToPlain(reg, v)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil

	case vm.ObjectMapping:
		keys, err := mappingKeysInOrder(o)
		if err != nil {
			return nil, err
		}
		vals := make([]vm.Value, len(keys))
		for i, k := range keys {
			v, err := vm.ReadMemberReg(o, vm.MemberKey{Entry: k}, reg)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return plainMapOrPairs(reg, keys, vals)

	default: // ObjectTyped, ObjectDynamic
		names := propertyOrder(o)
		out := make(map[string]any, len(names))
		for _, name := range names {
			v, err := vm.ReadMemberReg(o, vm.MemberKey{Ident: ident.Regular(name)}, reg)
			if err != nil {
				return nil, err
			}
			p, err := ToPlain(reg, v)
			if err != nil {
				return nil, err
			}
			out[name] = p
		}
		return out, nil
	}
}

// propertyOrder walks the parent chain root-first, returning every visible
// (non-local, non-hidden) property name in first-declared order, with a
// later override keeping its original position (spec §3.1: render walks the
// full inheritance/amendment chain, not just own members).
func propertyOrder(o *vm.Object) []string {
	chain := ancestry(o)
	seen := make(map[string]bool)
	var order []string
	for _, cur := range chain {
		for _, name := range cur.OwnPropertyNames() {
			if seen[name] {
				continue
			}
			seen[name] = true
			if m := nearestProperty(o, name); m != nil && (m.Modifiers.Hidden || m.Modifiers.Local) {
				continue
			}
			order = append(order, name)
		}
	}
	return order
}

// mappingKeysInOrder walks the parent chain root-first, collecting entry
// keys in declaration order (earlier entries with an equal key are shadowed
// by later ones, per the amendment engine's append semantics).
func mappingKeysInOrder(o *vm.Object) ([]vm.Value, error) {
	chain := ancestry(o)
	var keys []vm.Value
	for _, cur := range chain {
		for _, m := range cur.OwnEntries() {
			dup := -1
			for i, k := range keys {
				if vm.Equal(k, m.Key.Entry) {
					dup = i
					break
				}
			}
			if dup >= 0 {
				keys[dup] = m.Key.Entry
				continue
			}
			keys = append(keys, m.Key.Entry)
		}
	}
	return keys, nil
}

// ancestry returns o's parent chain from root to leaf.
func ancestry(o *vm.Object) []*vm.Object {
	var chain []*vm.Object
	for cur := o; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// nearestProperty finds name's closest (most-derived) declaration, whose
// modifiers govern visibility for the whole chain.
func nearestProperty(o *vm.Object, name string) *vm.Member {
	for cur := o; cur != nil; cur = cur.Parent {
		if m, ok := cur.OwnProperty(name); ok {
			return m
		}
	}
	return nil
}

