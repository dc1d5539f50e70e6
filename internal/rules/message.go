package rules

import "strings"

// Expand substitutes every {placeholder} occurrence in the template with the
// matching params value. Placeholders without a value are left intact, which
// keeps broken catalogs visible instead of silently blank.
func Expand(template string, params map[string]string) string {
	out := template
	for name, value := range params {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}
