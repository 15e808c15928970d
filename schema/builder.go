package schema

import "slices"

// String returns a string primitive.
func String() *Node { return primitive(TypeString) }

// Number returns a number primitive.
func Number() *Node { return primitive(TypeNumber) }

// Boolean returns a boolean primitive.
func Boolean() *Node { return primitive(TypeBoolean) }

// Null returns the null primitive.
func Null() *Node { return primitive(TypeNull) }

// Undefined returns the undefined primitive.
func Undefined() *Node { return primitive(TypeUndefined) }

func primitive(p Primitive) *Node {
	return &Node{Kind: KindPrimitive, Primitive: p}
}

// Literal returns a node matching exactly one scalar value.
func Literal(v any) *Node {
	return &Node{Kind: KindLiteral, Value: v}
}

// Object returns an object node with the given ordered properties.
func Object(props ...*Property) *Node {
	return &Node{Kind: KindObject, Properties: props}
}

// Array returns an array node with the given element schema.
func Array(items *Node) *Node {
	return &Node{Kind: KindArray, Items: items}
}

// Tuple returns a fixed-arity tuple node.
func Tuple(elements ...*Node) *Node {
	return &Node{Kind: KindTuple, Elements: elements}
}

// Union returns a union of the given alternatives.
func Union(alternatives ...*Node) *Node {
	return &Node{Kind: KindUnion, Members: alternatives}
}

// Intersection returns an intersection of the given members.
func Intersection(members ...*Node) *Node {
	return &Node{Kind: KindIntersection, Members: members}
}

// Enum returns an enum of the given literal values.
func Enum(values ...any) *Node {
	return &Node{Kind: KindEnum, Values: values}
}

// AsOptional marks the node as omittable from an enclosing object.
func (n *Node) AsOptional() *Node {
	return n.with(func(m *Node) { m.Optional = true })
}

// AsNullable permits null in addition to the node's type.
func (n *Node) AsNullable() *Node {
	return n.with(func(m *Node) { m.Nullable = true })
}

// Describe sets the documentation string.
func (n *Node) Describe(description string) *Node {
	return n.with(func(m *Node) { m.Description = description })
}

// Require declares the explicit required-name set of an object node.
// Calling it without names declares an empty set.
func (n *Node) Require(names ...string) *Node {
	return n.with(func(m *Node) {
		set := []string{}
		if m.Required != nil {
			set = append(set, *m.Required...)
		}
		set = append(set, names...)
		m.Required = &set
	})
}

// Strict forbids keys the object node does not declare.
func (n *Node) Strict() *Node {
	return n.with(func(m *Node) { m.Additional = AdditionalForbid })
}

// AtLeast sets the minimum length of an array node.
func (n *Node) AtLeast(v int) *Node {
	return n.with(func(m *Node) { m.MinItems = &v })
}

// AtMost sets the maximum length of an array node.
func (n *Node) AtMost(v int) *Node {
	return n.with(func(m *Node) { m.MaxItems = &v })
}

// with returns a shallow copy of n, with its own copies of the slices a
// builder may append to, after applying fn.
func (n *Node) with(fn func(*Node)) *Node {
	m := *n
	m.Checks = slices.Clone(n.Checks)
	m.Required = cloneNames(n.Required)
	fn(&m)
	return &m
}

// Clone returns a deep copy of the tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	m := *n
	m.Checks = slices.Clone(n.Checks)
	m.Required = cloneNames(n.Required)
	m.Values = slices.Clone(n.Values)
	m.Items = n.Items.Clone()
	if n.MinItems != nil {
		v := *n.MinItems
		m.MinItems = &v
	}
	if n.MaxItems != nil {
		v := *n.MaxItems
		m.MaxItems = &v
	}
	if n.Properties != nil {
		m.Properties = make([]*Property, len(n.Properties))
		for i, p := range n.Properties {
			m.Properties[i] = &Property{Name: p.Name, Schema: p.Schema.Clone()}
		}
	}
	m.Elements = cloneAll(n.Elements)
	m.Members = cloneAll(n.Members)
	return &m
}

func cloneAll(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, c := range nodes {
		out[i] = c.Clone()
	}
	return out
}

func cloneNames(names *[]string) *[]string {
	if names == nil {
		return nil
	}
	c := append([]string{}, *names...)
	return &c
}
