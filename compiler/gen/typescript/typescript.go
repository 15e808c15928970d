// Package typescript lowers schema nodes to TypeScript type declarations.
package typescript

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/timescape/internal/codewriter"
	"github.com/syssam/timescape/internal/naming"
	"github.com/syssam/timescape/schema"
)

// TypeName returns the exported TypeScript name of a schema.
func TypeName(name string) string {
	return naming.Pascal(name)
}

// Expr returns the type expression of n. The nullable modifier appends
// "| null" after the kind-specific lowering.
func Expr(n *schema.Node) string {
	s := base(n)
	if n.Nullable {
		s += " | null"
	}
	return s
}

func base(n *schema.Node) string {
	switch n.Kind {
	case schema.KindPrimitive:
		return string(n.Primitive)
	case schema.KindLiteral:
		return codewriter.Literal(schema.Normalize(n.Value))
	case schema.KindObject:
		if len(n.Properties) == 0 {
			return "Record<string, unknown>"
		}
		fields := make([]string, len(n.Properties))
		for i, p := range n.Properties {
			fields[i] = field(n, p)
		}
		return "{ " + strings.Join(fields, "; ") + " }"
	case schema.KindArray:
		return "Array<" + Expr(n.Items) + ">"
	case schema.KindTuple:
		elems := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Expr(e)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case schema.KindUnion:
		return join(n.Members, " | ", func(m *schema.Node) bool {
			return m.Kind == schema.KindUnion || m.Kind == schema.KindIntersection || m.Nullable
		})
	case schema.KindIntersection:
		return join(n.Members, " & ", alternation)
	case schema.KindEnum:
		values := make([]string, len(n.Values))
		for i, v := range n.Values {
			values[i] = codewriter.Literal(schema.Normalize(v))
		}
		return strings.Join(values, " | ")
	default:
		return "unknown"
	}
}

// alternation reports whether the expression of n has union precedence
// and must be parenthesized inside a conjunction.
func alternation(n *schema.Node) bool {
	return n.Kind == schema.KindUnion || n.Nullable || (n.Kind == schema.KindEnum && len(n.Values) > 1)
}

func join(members []*schema.Node, sep string, wrap func(*schema.Node) bool) string {
	parts := make([]string, len(members))
	for i, m := range members {
		s := Expr(m)
		if wrap(m) {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

func propertyKey(name string) string {
	if naming.IsJSIdent(name) {
		return name
	}
	return codewriter.Quote(name)
}

// field renders one property of obj. A property is optional when its
// schema is optional or obj declares a required set that omits it.
func field(obj *schema.Node, p *schema.Property) string {
	key := propertyKey(p.Name)
	if obj.PropertyOptional(p.Name) {
		key += "?"
	}
	return key + ": " + Expr(p.Schema)
}

// Declare returns the exported declaration of a named schema: an interface
// for a non-nullable object, a type alias for everything else.
func Declare(name string, n *schema.Node) (string, error) {
	if err := schema.Validate(name, n); err != nil {
		return "", err
	}
	w := codewriter.New("  ")
	w.DocComment(n.Description)
	typeName := TypeName(name)
	if n.Kind != schema.KindObject || n.Nullable {
		w.Line("export type %s = %s;", typeName, Expr(n))
		return w.String(), nil
	}
	w.Block(fmt.Sprintf("export interface %s {", typeName), "}", func() {
		for _, p := range n.Properties {
			w.DocComment(p.Schema.Description)
			w.Line("%s;", field(n, p))
		}
		if len(n.Properties) == 0 && n.Additional != schema.AdditionalForbid {
			w.Line("[key: string]: unknown;")
		}
	})
	return w.String(), nil
}

// Brand returns a branded alias: the base expression intersected with a
// marker property unique to the brand name, so that two structurally
// identical identifiers are not assignable to each other.
//
//	export type UserId = string & { readonly __brand: "UserId" };
func Brand(name string, n *schema.Node) (string, error) {
	if err := schema.Validate(name, n); err != nil {
		return "", err
	}
	typeName := TypeName(name)
	expr := Expr(n)
	if alternation(n) {
		expr = "(" + expr + ")"
	}
	w := codewriter.New("  ")
	w.DocComment(n.Description)
	w.Line("export type %s = %s & { readonly __brand: %s };", typeName, expr, codewriter.Quote(typeName))
	return w.String(), nil
}

// Index returns a module re-exporting every named declaration file.
func Index(names []string) string {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	w := codewriter.New("  ")
	for _, n := range sorted {
		w.Line(`export * from "./%s";`, FileName(n))
	}
	return w.String()
}

// FileName returns the module name, without extension, of a declaration.
func FileName(name string) string {
	return TypeName(name)
}
