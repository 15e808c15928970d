package schema

import (
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant of a schema node.
type Kind string

// Schema node kinds.
const (
	KindPrimitive    Kind = "primitive"
	KindLiteral      Kind = "literal"
	KindObject       Kind = "object"
	KindArray        Kind = "array"
	KindTuple        Kind = "tuple"
	KindUnion        Kind = "union"
	KindIntersection Kind = "intersection"
	KindEnum         Kind = "enum"
)

// AllKinds holds every schema kind. Generators are tested against each of
// them so that a new kind cannot be added without a lowering.
var AllKinds = []Kind{
	KindPrimitive,
	KindLiteral,
	KindObject,
	KindArray,
	KindTuple,
	KindUnion,
	KindIntersection,
	KindEnum,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return slices.Contains(AllKinds, k)
}

// Primitive is the built-in type of a primitive node.
type Primitive string

// Primitive types.
const (
	TypeString    Primitive = "string"
	TypeNumber    Primitive = "number"
	TypeBoolean   Primitive = "boolean"
	TypeNull      Primitive = "null"
	TypeUndefined Primitive = "undefined"
)

// Valid reports whether p is a known primitive type.
func (p Primitive) Valid() bool {
	switch p {
	case TypeString, TypeNumber, TypeBoolean, TypeNull, TypeUndefined:
		return true
	default:
		return false
	}
}

// AdditionalPolicy controls keys that an object node does not declare.
type AdditionalPolicy string

// Additional-properties policies. The zero value allows unknown keys.
const (
	AdditionalAllow  AdditionalPolicy = ""
	AdditionalForbid AdditionalPolicy = "forbid"
)

// Node is one node of the schema algebra. Which of the kind-specific
// fields is meaningful depends on Kind.
type Node struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Primitive holds the type of a KindPrimitive node.
	Primitive Primitive `json:"primitive,omitempty" yaml:"primitive,omitempty"`
	// Value holds the value of a KindLiteral node.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Properties holds the ordered properties of a KindObject node.
	Properties []*Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	// Required is the explicit required-name set of an object. When nil,
	// every property whose schema is not Optional is required; a declared
	// empty set makes every property optional.
	Required *[]string `json:"required,omitempty" yaml:"required,omitempty"`
	// Additional is the additional-properties policy of an object.
	Additional AdditionalPolicy `json:"additional,omitempty" yaml:"additional,omitempty"`

	// Items is the element schema of a KindArray node.
	Items    *Node `json:"items,omitempty" yaml:"items,omitempty"`
	MinItems *int  `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems *int  `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`

	// Elements holds the positional schemas of a KindTuple node.
	Elements []*Node `json:"elements,omitempty" yaml:"elements,omitempty"`

	// Members holds the alternatives of a KindUnion node or the conjuncts
	// of a KindIntersection node.
	Members []*Node `json:"members,omitempty" yaml:"members,omitempty"`

	// Values holds the members of a KindEnum node.
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Modifiers, meaningful for every kind.
	Optional    bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Nullable    bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Checks holds the named validators of a primitive, in declaration order.
	Checks []Check `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// Property is a named member of an object node.
type Property struct {
	Name   string `json:"name" yaml:"name"`
	Schema *Node  `json:"schema" yaml:"schema"`
}

// Prop returns a new property.
func Prop(name string, s *Node) *Property {
	return &Property{Name: name, Schema: s}
}

// Property returns the declared property with the given name, or nil.
func (n *Node) Property(name string) *Property {
	for _, p := range n.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// RequiredNames returns the required-name set of an object node: the
// explicit Required list when declared, otherwise every property whose
// schema is not optional.
func (n *Node) RequiredNames() []string {
	if n.Required != nil {
		return slices.Clone(*n.Required)
	}
	var names []string
	for _, p := range n.Properties {
		if p.Schema != nil && !p.Schema.Optional {
			names = append(names, p.Name)
		}
	}
	return names
}

// PropertyOptional reports whether the named property may be omitted from
// a record: its schema is optional, or a required set is declared and
// does not list it.
func (n *Node) PropertyOptional(name string) bool {
	p := n.Property(name)
	if p == nil {
		return true
	}
	if p.Schema != nil && p.Schema.Optional {
		return true
	}
	return n.Required != nil && !slices.Contains(*n.Required, name)
}

// String returns a short type description, used as the "expected" text
// of validation errors.
func (n *Node) String() string {
	if n == nil {
		return "unknown"
	}
	s := n.describe()
	if n.Nullable {
		s += " | null"
	}
	return s
}

func (n *Node) describe() string {
	switch n.Kind {
	case KindPrimitive:
		return string(n.Primitive)
	case KindLiteral:
		return FormatValue(n.Value)
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindTuple:
		parts := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindUnion:
		return joinMembers(n.Members, " | ")
	case KindIntersection:
		return joinMembers(n.Members, " & ")
	case KindEnum:
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			parts[i] = FormatValue(v)
		}
		return strings.Join(parts, " | ")
	default:
		return "unknown"
	}
}

func joinMembers(members []*Node, sep string) string {
	parts := make([]string, len(members))
	for i, m := range members {
		s := m.String()
		if m.Kind == KindUnion || m.Kind == KindIntersection || m.Nullable {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

// FormatValue renders a scalar value the way it is written as a literal:
// strings are double-quoted, nil is null.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	}
	if f, ok := ToFloat(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "unknown"
}
