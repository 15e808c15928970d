package schema

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/timescape"
)

// Walk calls fn for n and every descendant in depth-first order. The path
// lists the structural steps from the root: property names, "[]" for array
// items, "[i]" for tuple elements and "<i>" for union/intersection members.
// Walking stops at the first error returned by fn.
func Walk(n *Node, fn func(path []string, n *Node) error) error {
	return walk(nil, n, fn)
}

func walk(path []string, n *Node, fn func([]string, *Node) error) error {
	if n == nil {
		return nil
	}
	if err := fn(path, n); err != nil {
		return err
	}
	switch n.Kind {
	case KindObject:
		for _, p := range n.Properties {
			if err := walk(append(slices.Clip(path), p.Name), p.Schema, fn); err != nil {
				return err
			}
		}
	case KindArray:
		return walk(append(slices.Clip(path), "[]"), n.Items, fn)
	case KindTuple:
		for i, e := range n.Elements {
			if err := walk(append(slices.Clip(path), "["+strconv.Itoa(i)+"]"), e, fn); err != nil {
				return err
			}
		}
	case KindUnion, KindIntersection:
		for i, m := range n.Members {
			if err := walk(append(slices.Clip(path), "<"+strconv.Itoa(i)+">"), m, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatPath joins a Walk path for error messages.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Validate checks that the tree rooted at n is well-formed. It returns a
// *timescape.SchemaError naming the schema and the offending path for the
// first problem found.
func Validate(name string, n *Node) error {
	if n == nil {
		return timescape.NewSchemaError(name, "", "schema is nil", nil)
	}
	return Walk(n, func(path []string, n *Node) error {
		if err := validateNode(n); err != nil {
			var se *timescape.SchemaError
			if errors.As(err, &se) {
				se.Schema, se.Path = name, FormatPath(path)
				return se
			}
			return timescape.NewSchemaError(name, FormatPath(path), "", err)
		}
		return nil
	})
}

// MustValidate is like Validate but panics on error.
func MustValidate(name string, n *Node) *Node {
	if err := Validate(name, n); err != nil {
		panic(err)
	}
	return n
}

func validateNode(n *Node) error {
	if !n.Kind.Valid() {
		return schemaErr("unknown kind %q", n.Kind)
	}
	if len(n.Checks) > 0 && n.Kind != KindPrimitive {
		return schemaErr("named validators attach to primitives only, found on %s", n.Kind)
	}
	switch n.Kind {
	case KindPrimitive:
		if !n.Primitive.Valid() {
			return schemaErr("unknown primitive type %q", n.Primitive)
		}
		for _, c := range n.Checks {
			if err := validateCheck(n.Primitive, c); err != nil {
				return err
			}
		}
	case KindLiteral:
		if !IsScalar(n.Value) {
			return schemaErr("literal value must be a string, number, boolean or null, got %T", n.Value)
		}
	case KindObject:
		seen := make(map[string]bool, len(n.Properties))
		for _, p := range n.Properties {
			if p == nil || p.Schema == nil {
				return schemaErr("property without schema")
			}
			if p.Name == "" {
				return schemaErr("property with empty name")
			}
			if seen[p.Name] {
				return schemaErr("duplicate property %q", p.Name)
			}
			seen[p.Name] = true
		}
		for _, r := range n.RequiredNames() {
			if !seen[r] {
				return schemaErr("required property %q is not declared", r)
			}
		}
		if n.Additional != AdditionalAllow && n.Additional != AdditionalForbid {
			return schemaErr("unknown additional-properties policy %q", n.Additional)
		}
	case KindArray:
		if n.Items == nil {
			return schemaErr("array without element schema")
		}
		if n.MinItems != nil && *n.MinItems < 0 {
			return schemaErr("minItems must not be negative")
		}
		if n.MaxItems != nil && *n.MaxItems < 0 {
			return schemaErr("maxItems must not be negative")
		}
		if n.MinItems != nil && n.MaxItems != nil && *n.MinItems > *n.MaxItems {
			return schemaErr("minItems %d exceeds maxItems %d", *n.MinItems, *n.MaxItems)
		}
	case KindTuple:
		for _, e := range n.Elements {
			if e == nil {
				return schemaErr("tuple element without schema")
			}
		}
	case KindUnion, KindIntersection:
		if len(n.Members) == 0 {
			return schemaErr("%s requires at least one member", n.Kind)
		}
		for _, m := range n.Members {
			if m == nil {
				return schemaErr("%s member without schema", n.Kind)
			}
		}
	case KindEnum:
		if len(n.Values) == 0 {
			return schemaErr("enum requires at least one value")
		}
		for i, v := range n.Values {
			if !IsScalar(v) {
				return schemaErr("enum value %d must be a string, number, boolean or null, got %T", i, v)
			}
			for _, prev := range n.Values[:i] {
				if Equal(prev, v) {
					return schemaErr("duplicate enum value %s", FormatValue(v))
				}
			}
		}
	}
	return nil
}

func validateCheck(p Primitive, c Check) error {
	want := c.Name.Applies()
	if want == "" {
		return schemaErr("unknown validator %q", c.Name)
	}
	if want != p {
		return schemaErr("validator %q applies to %s, not %s", c.Name, want, p)
	}
	switch c.Name {
	case CheckMin, CheckMax:
		if _, ok := c.Bound(); !ok {
			return schemaErr("validator %q requires a numeric parameter", c.Name)
		}
	case CheckMinLength, CheckMaxLength:
		f, ok := c.Bound()
		if !ok || f < 0 || f != float64(int(f)) {
			return schemaErr("validator %q requires a non-negative integer parameter", c.Name)
		}
	case CheckPattern:
		expr, ok := c.Pattern()
		if !ok {
			return schemaErr("validator %q requires a string parameter", c.Name)
		}
		if _, err := regexp.Compile(expr); err != nil {
			return timescape.NewSchemaError("", "", "invalid pattern", err)
		}
	}
	return nil
}

func schemaErr(format string, args ...any) error {
	return timescape.NewSchemaError("", "", fmt.Sprintf(format, args...), nil)
}
