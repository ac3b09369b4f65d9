// Package subst implements the %key% placeholder substitution used by all
// generated artifacts. Values may be scalars or nested contexts; nested
// contexts are flattened by key, so an inner key can satisfy a placeholder
// anywhere in the template.
//
// Substitution is textual and sequential, not atomic: a replacement value that
// itself contains a %key% token is subject to later passes when that key is
// also present. Existing template corpora depend on this, so it is preserved.
// Keys are visited in sorted order to keep output deterministic.
package subst

import (
	"fmt"
	"sort"
	"strings"
)

// IndentKey is the placeholder name for one soft-tab of indentation. It is
// injected automatically on every render from the configured indent width.
const IndentKey = "STAB"

// Context maps placeholder names to values. A value is either a scalar
// (string, int, bool, ...) or a nested Context / map[string]any.
type Context map[string]any

// Merge builds a new Context layering the given contexts left to right.
// Later layers win on key collisions. The inputs are never mutated.
func Merge(layers ...Context) Context {
	merged := make(Context)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

// Render replaces %key% placeholders in template with values from ctx.
// indentWidth controls the %STAB% placeholder (number of spaces per soft tab).
// Unresolved placeholders are left in place: they are a visible diagnostic in
// generated source, not an error.
func Render(template string, ctx Context, indentWidth int) string {
	withTab := Merge(ctx, Context{IndentKey: strings.Repeat(" ", indentWidth)})
	return renderLayer(template, withTab)
}

func renderLayer(template string, ctx Context) string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := ctx[key].(type) {
		case Context:
			template = renderLayer(template, v)
		case map[string]any:
			template = renderLayer(template, Context(v))
		default:
			template = strings.ReplaceAll(template, "%"+key+"%", scalarText(v))
		}
	}
	return template
}

// scalarText coerces a scalar substitution value to its textual form.
func scalarText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
