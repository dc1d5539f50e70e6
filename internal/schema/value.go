package schema

import (
	"fmt"
	"strconv"
)

// Native converts the literal into its native Go representation: strings and
// block strings yield their unescaped text, ints yield int64, floats float64,
// booleans bool, null nil, enum values their name, lists []any and objects
// map[string]any with every child converted recursively. Numeric literals
// that overflow fall back to float64 and then to the raw text; anything else
// malformed is the parser's problem, not ours. An unknown kind is a
// programming error and panics.
func (v *Value) Native() any {
	switch v.Kind {
	case ValueString, ValueBlockString:
		return v.Raw
	case ValueInt:
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v.Raw, 64); err == nil {
			return f
		}
		return v.Raw
	case ValueFloat:
		if f, err := strconv.ParseFloat(v.Raw, 64); err == nil {
			return f
		}
		return v.Raw
	case ValueBoolean:
		return v.Raw == "true"
	case ValueNull:
		return nil
	case ValueEnum:
		return v.Raw
	case ValueList:
		out := make([]any, 0, len(v.Children))
		for _, ch := range v.Children {
			out = append(out, ch.Value.Native())
		}
		return out
	case ValueObject:
		out := make(map[string]any, len(v.Children))
		for _, ch := range v.Children {
			out[ch.Name] = ch.Value.Native()
		}
		return out
	}
	panic(fmt.Sprintf("schema: unknown value kind %d", v.Kind))
}
