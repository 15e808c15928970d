// Package golang lowers named schemas to Go type declarations.
//
// Objects become structs with json tags, string enums become a named
// string type with one constant per value, and shapes Go cannot express
// precisely (heterogeneous unions, tuples of mixed types, null) fall back
// to any.
package golang

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/timescape/internal/naming"
	"github.com/syssam/timescape/schema"
)

// File returns a Go file in package pkg declaring one type per schema.
// Declarations are emitted in schema-name order; nested objects and enums
// are declared as "<Parent><Property>" right after their parent.
func File(pkg string, schemas map[string]*schema.Node) (*jen.File, error) {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := schema.Validate(name, schemas[name]); err != nil {
			return nil, err
		}
	}
	l := &lowerer{f: jen.NewFile(pkg), declared: make(map[string]bool)}
	// Reserve top-level names first so nested types never take them.
	idents := make(map[string]string, len(names))
	for _, name := range names {
		idents[name] = l.reserve(naming.GoIdent(name))
	}
	for _, name := range names {
		l.declare(idents[name], schemas[name])
	}
	return l.f, nil
}

// goType is a lowered type expression.
type goType struct {
	code jen.Code
	// ref is set for types that already have a nil value (slices, any).
	ref bool
	// key identifies the type for equality checks between members.
	key string
}

var (
	anyType    = goType{code: jen.Any(), ref: true, key: "any"}
	stringType = goType{code: jen.String(), key: "string"}
	numberType = goType{code: jen.Float64(), key: "float64"}
	boolType   = goType{code: jen.Bool(), key: "bool"}
)

type lowerer struct {
	f        *jen.File
	declared map[string]bool
}

// reserve returns a unique identifier derived from id.
func (l *lowerer) reserve(id string) string {
	name := id
	for i := 2; l.declared[name]; i++ {
		name = id + strconv.Itoa(i)
	}
	l.declared[name] = true
	return name
}

// declare emits the top-level declaration of a named node.
func (l *lowerer) declare(name string, n *schema.Node) {
	if n.Description != "" {
		l.f.Comment(n.Description)
	}
	switch {
	case isStruct(n):
		l.declareStruct(name, n)
	case n.Kind == schema.KindEnum && allStrings(n.Values):
		l.declareEnum(name, n.Values)
	case n.Kind == schema.KindLiteral:
		t := scalarType(n.Value)
		if t.key == "any" {
			l.f.Type().Id(name).Op("=").Any()
			return
		}
		l.f.Type().Id(name).Add(t.code)
		l.f.Const().Id(l.reserve(name+"Value")).Id(name).Op("=").Lit(literalValue(n.Value))
	default:
		t := l.lower(name, n)
		if t.key == "any" {
			l.f.Type().Id(name).Op("=").Any()
			return
		}
		l.f.Type().Id(name).Add(t.code)
	}
}

func (l *lowerer) declareStruct(name string, n *schema.Node) {
	var nested []func()
	fields := make([]jen.Code, 0, len(n.Properties))
	seen := make(map[string]bool)
	for _, m := range properties(n) {
		p := m.prop
		id := naming.GoIdent(p.Name)
		for i := 2; seen[id]; i++ {
			id = naming.GoIdent(p.Name) + strconv.Itoa(i)
		}
		seen[id] = true

		optional := m.owner.PropertyOptional(p.Name)
		t, decl := l.lowerField(name+id, p.Schema)
		if decl != nil {
			nested = append(nested, decl)
		}
		code := t.code
		if (optional || p.Schema.Nullable) && !t.ref {
			code = jen.Op("*").Add(t.code)
		}
		tag := p.Name
		if optional {
			tag += ",omitempty"
		}
		if p.Schema.Description != "" {
			fields = append(fields, jen.Comment(p.Schema.Description))
		}
		fields = append(fields, jen.Id(id).Add(code).Tag(map[string]string{"json": tag}))
	}
	l.f.Type().Id(name).Struct(fields...)
	for _, decl := range nested {
		decl()
	}
}

type member struct {
	owner *schema.Node
	prop  *schema.Property
}

// properties flattens the object members of an intersection; a property
// declared twice keeps its first schema.
func properties(n *schema.Node) []member {
	if n.Kind == schema.KindObject {
		out := make([]member, len(n.Properties))
		for i, p := range n.Properties {
			out[i] = member{owner: n, prop: p}
		}
		return out
	}
	var out []member
	seen := make(map[string]bool)
	for _, m := range n.Members {
		for _, p := range properties(m) {
			if !seen[p.prop.Name] {
				seen[p.prop.Name] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// isStruct reports whether n lowers to a struct: an object, or an
// intersection made only of objects.
func isStruct(n *schema.Node) bool {
	switch n.Kind {
	case schema.KindObject:
		return true
	case schema.KindIntersection:
		for _, m := range n.Members {
			if !isStruct(m) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// lowerField lowers a property schema. Objects, intersections of objects
// and string enums get a named declaration, returned as a deferred func.
func (l *lowerer) lowerField(hint string, n *schema.Node) (goType, func()) {
	switch {
	case isStruct(n):
		name := l.reserve(hint)
		return goType{code: jen.Id(name), key: name}, func() { l.declareStruct(name, n) }
	case n.Kind == schema.KindEnum && allStrings(n.Values):
		name := l.reserve(hint)
		return goType{code: jen.Id(name), key: name}, func() { l.declareEnum(name, n.Values) }
	case n.Kind == schema.KindArray:
		item, decl := l.lowerField(naming.Singular(hint), n.Items)
		if n.Items.Nullable && !item.ref {
			item = goType{code: jen.Op("*").Add(item.code), key: "*" + item.key}
		}
		return goType{code: jen.Index().Add(item.code), ref: true, key: "[]" + item.key}, decl
	}
	return l.lower(hint, n), nil
}

// lower returns the type of n used where no named declaration is allowed.
func (l *lowerer) lower(hint string, n *schema.Node) goType {
	switch n.Kind {
	case schema.KindPrimitive, schema.KindLiteral:
		return primitiveType(n)
	case schema.KindEnum:
		return commonType(valueTypes(n.Values))
	case schema.KindArray:
		t, decl := l.lowerField(hint, n)
		if decl != nil {
			decl()
		}
		return t
	case schema.KindTuple:
		elem := commonType(scalars(n.Elements))
		return goType{code: jen.Index(jen.Lit(len(n.Elements))).Add(elem.code), key: fmt.Sprintf("[%d]%s", len(n.Elements), elem.key)}
	case schema.KindUnion:
		return commonType(scalars(n.Members))
	case schema.KindObject, schema.KindIntersection:
		if !isStruct(n) {
			return anyType
		}
		t, decl := l.lowerField(hint, n)
		decl()
		return t
	}
	return anyType
}

func (l *lowerer) declareEnum(name string, values []any) {
	consts := make([]jen.Code, 0, len(values))
	ids := make([]jen.Code, 0, len(values))
	for _, v := range values {
		s := v.(string)
		suffix := naming.Pascal(s)
		if suffix == "" {
			suffix = "Empty"
		}
		id := l.reserve(name + suffix)
		consts = append(consts, jen.Id(id).Id(name).Op("=").Lit(s))
		ids = append(ids, jen.Id(id))
	}
	l.f.Type().Id(name).String()
	l.f.Const().Defs(consts...)
	l.f.Comment("Valid reports whether v is one of the declared values.")
	l.f.Func().Params(jen.Id("v").Id(name)).Id("Valid").Params().Bool().Block(
		jen.Switch(jen.Id("v")).Block(
			jen.Case(ids...).Block(jen.Return(jen.True())),
		),
		jen.Return(jen.False()),
	)
}

// scalars returns the types of scalar nodes; any other node, or a
// nullable one, maps to any.
func scalars(nodes []*schema.Node) []goType {
	types := make([]goType, len(nodes))
	for i, n := range nodes {
		types[i] = anyType
		if n.Nullable {
			continue
		}
		switch n.Kind {
		case schema.KindPrimitive, schema.KindLiteral:
			types[i] = primitiveType(n)
		case schema.KindEnum:
			types[i] = commonType(valueTypes(n.Values))
		}
	}
	return types
}

func primitiveType(n *schema.Node) goType {
	if n.Kind == schema.KindLiteral {
		return scalarType(n.Value)
	}
	switch n.Primitive {
	case schema.TypeString:
		return stringType
	case schema.TypeNumber:
		return numberType
	case schema.TypeBoolean:
		return boolType
	default:
		return anyType
	}
}

func allStrings(values []any) bool {
	for _, v := range values {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return len(values) > 0
}

func scalarType(v any) goType {
	switch v.(type) {
	case string:
		return stringType
	case bool:
		return boolType
	case nil:
		return anyType
	}
	if _, ok := schema.ToFloat(v); ok {
		return numberType
	}
	return anyType
}

func literalValue(v any) any {
	if f, ok := schema.ToFloat(v); ok {
		return f
	}
	return v
}

func valueTypes(values []any) []goType {
	types := make([]goType, len(values))
	for i, v := range values {
		types[i] = scalarType(v)
	}
	return types
}

// commonType returns the shared type of all members, or any.
func commonType(types []goType) goType {
	if len(types) == 0 {
		return anyType
	}
	first := types[0]
	if slices.ContainsFunc(types[1:], func(t goType) bool { return t.key != first.key }) {
		return anyType
	}
	return first
}
