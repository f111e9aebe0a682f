package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pklcore/typedcore/internal/diagnostic"
)

// DefaultRenderWidth is the truncation width used when no host config is
// available (spec §7's default "80 columns minus indent").
const DefaultRenderWidth = 80

// Render produces a human-readable rendering of a value for diagnostics,
// truncated to DefaultRenderWidth columns. Callers that have a host config
// in hand should use RenderWidth instead, so the configured
// diagnostics.truncateWidth actually governs what gets printed.
func Render(v Value) string {
	return RenderWidth(v, DefaultRenderWidth)
}

// RenderWidth is Render with an explicit truncation width, sourced from a
// host's config.DiagnosticsConfig.TruncateWidth (spec §A.3).
func RenderWidth(v Value, width int) string {
	return diagnostic.TruncateValue(renderFull(v, 0), width, 0)
}

// renderShallow renders a value without truncation, for use as a member-key
// cache-table discriminator alongside Hash (see member.go's lookupString).
func renderShallow(v Value) string {
	return renderFull(v, 0)
}

func renderFull(v Value, depth int) string {
	if depth > 6 {
		return "..."
	}
	if v == nil {
		return "null"
	}
	switch vv := v.(type) {
	case Bool:
		return strconv.FormatBool(bool(vv))
	case Int:
		return strconv.FormatInt(int64(vv), 10)
	case Float:
		return strconv.FormatFloat(float64(vv), 'g', -1, 64)
	case String:
		return fmt.Sprintf("%q", string(vv))
	case Null:
		return "null"
	case Duration:
		return fmt.Sprintf("%g.%s", vv.Value, vv.Unit)
	case DataSize:
		return fmt.Sprintf("%g.%s", vv.Value, vv.Unit)
	case Pair:
		return fmt.Sprintf("Pair(%s, %s)", renderFull(vv.First, depth+1), renderFull(vv.Second, depth+1))
	case *Regex:
		return fmt.Sprintf("Regex(%q)", vv.Pattern)
	case IntSeq:
		return fmt.Sprintf("IntSeq(%d, %d, %d)", vv.Start, vv.End, vv.Step)
	case *List:
		parts := make([]string, len(vv.Elements))
		for i, e := range vv.Elements {
			parts[i] = renderFull(e, depth+1)
		}
		return "List(" + strings.Join(parts, ", ") + ")"
	case *Set:
		parts := make([]string, len(vv.elements))
		for i, e := range vv.elements {
			parts[i] = renderFull(e, depth+1)
		}
		return "Set(" + strings.Join(parts, ", ") + ")"
	case *Map:
		parts := make([]string, len(vv.keys))
		for i, k := range vv.keys {
			parts[i] = fmt.Sprintf("%s: %s", renderFull(k, depth+1), renderFull(vv.values[i], depth+1))
		}
		return "Map(" + strings.Join(parts, ", ") + ")"
	case *Object:
		return renderObject(vv, depth)
	case *Function:
		return fmt.Sprintf("function(%d args)", vv.Arity)
	case *Class:
		return "class " + vv.QualifiedName
	default:
		return fmt.Sprintf("%v", v)
	}
}

func renderObject(o *Object, depth int) string {
	switch o.Variant {
	case ObjectListing:
		return fmt.Sprintf("new Listing { /* %d elements */ }", o.ElementCount())
	case ObjectMapping:
		return fmt.Sprintf("new Mapping { /* %d entries */ }", len(o.OwnEntries()))
	case ObjectDynamic:
		return "new Dynamic {}"
	default:
		name := "Typed"
		if o.Class != nil {
			name = o.Class.QualifiedName
		}
		return fmt.Sprintf("new %s {}", name)
	}
}
