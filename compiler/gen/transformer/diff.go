package transformer

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/syssam/timescape/schema"
)

// Op is the operation of a schema change.
type Op string

// Change operations.
const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpModify Op = "modify"
)

// Change is one structural difference between two schema versions.
type Change struct {
	Op Op `json:"op" yaml:"op"`
	// Path locates the change: property names joined by dots, "[]" for
	// array items, "[i]" for tuple elements and "<i>" for union or
	// intersection members. The root is the empty path.
	Path        string `json:"path" yaml:"path"`
	Before      any    `json:"before,omitempty" yaml:"before,omitempty"`
	After       any    `json:"after,omitempty" yaml:"after,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SchemaDiff partitions the changes between two schema versions.
type SchemaDiff struct {
	Breaking    []Change `json:"breaking" yaml:"breaking"`
	NonBreaking []Change `json:"nonBreaking" yaml:"nonBreaking"`
}

// IsBreaking reports whether the diff holds a breaking change.
func (d SchemaDiff) IsBreaking() bool {
	return len(d.Breaking) > 0
}

// Empty reports whether the two versions are structurally identical.
func (d SchemaDiff) Empty() bool {
	return len(d.Breaking) == 0 && len(d.NonBreaking) == 0
}

// Diff computes the structural changes from one schema version to the
// next. A change is breaking when a value valid against from may be
// rejected by to: an added required property, a removed property, a kind
// or type change, a property becoming required, nullability removed, an
// enum value removed, a union alternative removed, an added validator or a
// tightened bound. The reverse changes are non-breaking. A nil schema on
// either side compares as absent.
func Diff(from, to *schema.Node) SchemaDiff {
	d := &differ{}
	switch {
	case from == nil && to == nil:
	case from == nil:
		d.add(true, Change{Op: OpAdd, After: to.String(), Description: "schema added"})
	case to == nil:
		d.add(true, Change{Op: OpRemove, Before: from.String(), Description: "schema removed"})
	default:
		d.node(nil, from, to)
	}
	return d.diff
}

type differ struct {
	diff SchemaDiff
}

func (d *differ) add(breaking bool, c Change) {
	if breaking {
		d.diff.Breaking = append(d.diff.Breaking, c)
	} else {
		d.diff.NonBreaking = append(d.diff.NonBreaking, c)
	}
}

func (d *differ) modify(path []string, breaking bool, before, after any, format string, args ...any) {
	d.add(breaking, Change{
		Op:          OpModify,
		Path:        schema.FormatPath(path),
		Before:      before,
		After:       after,
		Description: fmt.Sprintf(format, args...),
	})
}

func (d *differ) node(path []string, a, b *schema.Node) {
	if a.Nullable != b.Nullable {
		d.modify(path, a.Nullable, a.Nullable, b.Nullable, "nullable changed from %t to %t", a.Nullable, b.Nullable)
	}
	if a.Kind != b.Kind {
		d.modify(path, true, a.String(), b.String(), "kind changed from %s to %s", a.Kind, b.Kind)
		return
	}
	switch a.Kind {
	case schema.KindPrimitive:
		if a.Primitive != b.Primitive {
			d.modify(path, true, string(a.Primitive), string(b.Primitive), "type changed from %s to %s", a.Primitive, b.Primitive)
			return
		}
		d.checks(path, a.Checks, b.Checks)
	case schema.KindLiteral:
		if !schema.Equal(a.Value, b.Value) {
			d.modify(path, true, schema.Normalize(a.Value), schema.Normalize(b.Value),
				"literal changed from %s to %s", schema.FormatValue(a.Value), schema.FormatValue(b.Value))
		}
	case schema.KindEnum:
		d.enum(path, a.Values, b.Values)
	case schema.KindObject:
		d.object(path, a, b)
	case schema.KindArray:
		d.bounds(path, "minItems", a.MinItems, b.MinItems, true)
		d.bounds(path, "maxItems", a.MaxItems, b.MaxItems, false)
		d.node(append(slices.Clip(path), "[]"), a.Items, b.Items)
	case schema.KindTuple:
		if len(a.Elements) != len(b.Elements) {
			d.modify(path, true, len(a.Elements), len(b.Elements), "tuple length changed from %d to %d", len(a.Elements), len(b.Elements))
		}
		for i := range min(len(a.Elements), len(b.Elements)) {
			d.node(append(slices.Clip(path), "["+strconv.Itoa(i)+"]"), a.Elements[i], b.Elements[i])
		}
	case schema.KindUnion, schema.KindIntersection:
		d.members(path, a, b)
	}
}

func (d *differ) object(path []string, a, b *schema.Node) {
	if a.Additional != b.Additional {
		strict := b.Additional == schema.AdditionalForbid
		policy := "allowed"
		if strict {
			policy = "forbidden"
		}
		d.modify(path, strict, string(a.Additional), string(b.Additional), "unknown keys %s", policy)
	}
	for _, p := range a.Properties {
		sub := append(slices.Clip(path), p.Name)
		q := b.Property(p.Name)
		if q == nil {
			d.add(true, Change{
				Op:          OpRemove,
				Path:        schema.FormatPath(sub),
				Before:      p.Schema.String(),
				Description: fmt.Sprintf("property %q removed", p.Name),
			})
			continue
		}
		wasOptional, isOptional := a.PropertyOptional(p.Name), b.PropertyOptional(p.Name)
		if wasOptional != isOptional {
			d.modify(sub, wasOptional, optionality(wasOptional), optionality(isOptional),
				"property %q became %s", p.Name, optionality(isOptional))
		}
		d.node(sub, p.Schema, q.Schema)
	}
	for _, q := range b.Properties {
		if a.Property(q.Name) != nil {
			continue
		}
		required := !b.PropertyOptional(q.Name)
		d.add(required, Change{
			Op:          OpAdd,
			Path:        schema.FormatPath(append(slices.Clip(path), q.Name)),
			After:       q.Schema.String(),
			Description: fmt.Sprintf("%s property %q added", optionality(!required), q.Name),
		})
	}
}

func optionality(optional bool) string {
	if optional {
		return "optional"
	}
	return "required"
}

func (d *differ) enum(path []string, a, b []any) {
	for _, v := range a {
		if !slices.ContainsFunc(b, func(w any) bool { return schema.Equal(v, w) }) {
			d.add(true, Change{
				Op:          OpRemove,
				Path:        schema.FormatPath(path),
				Before:      schema.Normalize(v),
				Description: fmt.Sprintf("enum value %s removed", schema.FormatValue(v)),
			})
		}
	}
	for _, w := range b {
		if !slices.ContainsFunc(a, func(v any) bool { return schema.Equal(v, w) }) {
			d.add(false, Change{
				Op:          OpAdd,
				Path:        schema.FormatPath(path),
				After:       schema.Normalize(w),
				Description: fmt.Sprintf("enum value %s added", schema.FormatValue(w)),
			})
		}
	}
}

// members compares union alternatives or intersection conjuncts by
// position. Removing an alternative narrows a union; adding a conjunct
// narrows an intersection.
func (d *differ) members(path []string, a, b *schema.Node) {
	union := a.Kind == schema.KindUnion
	for i := range min(len(a.Members), len(b.Members)) {
		d.node(append(slices.Clip(path), "<"+strconv.Itoa(i)+">"), a.Members[i], b.Members[i])
	}
	for i := len(b.Members); i < len(a.Members); i++ {
		d.add(union, Change{
			Op:          OpRemove,
			Path:        schema.FormatPath(append(slices.Clip(path), "<"+strconv.Itoa(i)+">")),
			Before:      a.Members[i].String(),
			Description: fmt.Sprintf("%s member %s removed", a.Kind, a.Members[i]),
		})
	}
	for i := len(a.Members); i < len(b.Members); i++ {
		d.add(!union, Change{
			Op:          OpAdd,
			Path:        schema.FormatPath(append(slices.Clip(path), "<"+strconv.Itoa(i)+">")),
			After:       b.Members[i].String(),
			Description: fmt.Sprintf("%s member %s added", b.Kind, b.Members[i]),
		})
	}
}

// checks compares named validators. Validators are matched by name; a
// node carrying the same validator twice is compared pairwise in order.
func (d *differ) checks(path []string, a, b []schema.Check) {
	matched := make([]bool, len(b))
	for _, c := range a {
		j := slices.IndexFunc(b, func(o schema.Check) bool { return o.Name == c.Name })
		for j >= 0 && matched[j] {
			next := slices.IndexFunc(b[j+1:], func(o schema.Check) bool { return o.Name == c.Name })
			if next < 0 {
				j = -1
				break
			}
			j += next + 1
		}
		if j < 0 {
			d.add(false, Change{
				Op:          OpRemove,
				Path:        schema.FormatPath(path),
				Before:      string(c.Name),
				Description: fmt.Sprintf("validator %s removed", c.Name),
			})
			continue
		}
		matched[j] = true
		d.check(path, c, b[j])
	}
	for j, c := range b {
		if matched[j] {
			continue
		}
		d.add(true, Change{
			Op:          OpAdd,
			Path:        schema.FormatPath(path),
			After:       string(c.Name),
			Description: fmt.Sprintf("validator %s added", c.Name),
		})
	}
}

func (d *differ) check(path []string, a, b schema.Check) {
	switch a.Name {
	case schema.CheckMin, schema.CheckMinLength, schema.CheckMax, schema.CheckMaxLength:
		x, _ := a.Bound()
		y, _ := b.Bound()
		if x == y {
			return
		}
		lower := a.Name == schema.CheckMin || a.Name == schema.CheckMinLength
		tightened := (lower && y > x) || (!lower && y < x)
		d.modify(path, tightened, x, y, "%s changed from %s to %s", a.Name, formatFloat(x), formatFloat(y))
	case schema.CheckPattern:
		x, _ := a.Pattern()
		y, _ := b.Pattern()
		if x != y {
			d.modify(path, true, x, y, "pattern changed from /%s/ to /%s/", x, y)
		}
	}
}

// bounds compares an optional array bound; lower reports whether it is a
// minimum.
func (d *differ) bounds(path []string, name string, a, b *int, lower bool) {
	switch {
	case a == nil && b == nil:
	case a == nil:
		d.modify(path, true, nil, *b, "%s %d added", name, *b)
	case b == nil:
		d.modify(path, false, *a, nil, "%s %d removed", name, *a)
	case *a != *b:
		tightened := (lower && *b > *a) || (!lower && *b < *a)
		d.modify(path, tightened, *a, *b, "%s changed from %d to %d", name, *a, *b)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
