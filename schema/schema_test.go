package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/schema"
)

func TestBuildersDoNotMutate(t *testing.T) {
	base := schema.String()
	opt := base.AsOptional()
	withCheck := base.MinLength(1)

	assert.False(t, base.Optional)
	assert.True(t, opt.Optional)
	assert.Empty(t, base.Checks)
	require.Len(t, withCheck.Checks, 1)
	assert.Equal(t, schema.CheckMinLength, withCheck.Checks[0].Name)

	// Appending to a derived node must not leak into its sibling.
	a := withCheck.MaxLength(5)
	b := withCheck.Email()
	assert.Equal(t, schema.CheckMaxLength, a.Checks[1].Name)
	assert.Equal(t, schema.CheckEmail, b.Checks[1].Name)
}

func TestModifiersApplyToEveryKind(t *testing.T) {
	nodes := map[schema.Kind]*schema.Node{
		schema.KindPrimitive:    schema.String(),
		schema.KindLiteral:      schema.Literal("x"),
		schema.KindObject:       schema.Object(),
		schema.KindArray:        schema.Array(schema.String()),
		schema.KindTuple:        schema.Tuple(schema.String()),
		schema.KindUnion:        schema.Union(schema.String()),
		schema.KindIntersection: schema.Intersection(schema.Object()),
		schema.KindEnum:         schema.Enum("a"),
	}
	require.Len(t, nodes, len(schema.AllKinds))
	for _, k := range schema.AllKinds {
		n := nodes[k].AsOptional().AsNullable().Describe("doc")
		assert.Equal(t, k, n.Kind)
		assert.True(t, n.Optional)
		assert.True(t, n.Nullable)
		assert.Equal(t, "doc", n.Description)
		assert.NoError(t, schema.Validate("T", n), k)
	}
}

func TestRequiredNames(t *testing.T) {
	t.Run("Derived from optional flags", func(t *testing.T) {
		n := schema.Object(
			schema.Prop("name", schema.String()),
			schema.Prop("age", schema.Number().AsOptional()),
		)
		assert.Equal(t, []string{"name"}, n.RequiredNames())
		assert.False(t, n.PropertyOptional("name"))
		assert.True(t, n.PropertyOptional("age"))
	})

	t.Run("Explicit set", func(t *testing.T) {
		n := schema.Object(
			schema.Prop("name", schema.String()),
			schema.Prop("age", schema.Number()),
		).Require("age")
		assert.Equal(t, []string{"age"}, n.RequiredNames())
		assert.True(t, n.PropertyOptional("name"))
		assert.False(t, n.PropertyOptional("age"))
	})

	t.Run("Declared empty set", func(t *testing.T) {
		n := schema.Object(schema.Prop("name", schema.String())).Require()
		require.NotNil(t, n.Required)
		assert.Empty(t, n.RequiredNames())
		assert.True(t, n.PropertyOptional("name"))

		buf, err := json.Marshal(n)
		require.NoError(t, err)
		assert.Contains(t, string(buf), `"required":[]`)
		var back schema.Node
		require.NoError(t, json.Unmarshal(buf, &back))
		assert.True(t, back.PropertyOptional("name"))

		undeclared := schema.Object(schema.Prop("name", schema.String()))
		buf, err = json.Marshal(undeclared)
		require.NoError(t, err)
		assert.NotContains(t, string(buf), "required")
	})

	t.Run("Optional flag wins over required set", func(t *testing.T) {
		n := schema.Object(schema.Prop("age", schema.Number().AsOptional())).Require("age")
		assert.True(t, n.PropertyOptional("age"))
	})
}

func TestString(t *testing.T) {
	tests := []struct {
		node *schema.Node
		want string
	}{
		{schema.String(), "string"},
		{schema.String().AsNullable(), "string | null"},
		{schema.Literal("active"), `"active"`},
		{schema.Literal(42), "42"},
		{schema.Literal(nil), "null"},
		{schema.Tuple(schema.String(), schema.Number()), "[string, number]"},
		{schema.Union(schema.String(), schema.Union(schema.Boolean(), schema.Null())), "string | (boolean | null)"},
		{schema.Intersection(schema.Object(), schema.Number().AsNullable()), "object & (number | null)"},
		{schema.Enum("a", 1, true), `"a" | 1 | true`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.String())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		node    *schema.Node
		path    string
		message string
	}{
		{"empty union", schema.Union(), "", "union requires at least one member"},
		{"empty intersection", schema.Object(schema.Prop("x", schema.Intersection())), "x", "intersection requires at least one member"},
		{"empty enum", schema.Array(schema.Enum()), "[]", "enum requires at least one value"},
		{"duplicate enum", schema.Enum("a", "a"), "", "duplicate enum value"},
		{"duplicate property", schema.Object(schema.Prop("a", schema.String()), schema.Prop("a", schema.String())), "", `duplicate property "a"`},
		{"undeclared required", schema.Object(schema.Prop("a", schema.String())).Require("b"), "", `required property "b" is not declared`},
		{"check on wrong primitive", schema.Number().Email(), "", `validator "email" applies to string`},
		{"bad pattern", schema.Tuple(schema.String(), schema.String().Pattern("(")), "[1]", "invalid pattern"},
		{"literal object", schema.Literal(map[string]any{}), "", "literal value must be"},
		{"inverted bounds", schema.Array(schema.String()).AtLeast(3).AtMost(1), "", "minItems 3 exceeds maxItems 1"},
		{"array without items", &schema.Node{Kind: schema.KindArray}, "", "array without element schema"},
		{"unknown kind", &schema.Node{Kind: "map"}, "", `unknown kind "map"`},
		{"union member path", schema.Union(schema.String(), schema.Enum()), "<1>", "enum requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate("Thing", tt.node)
			require.Error(t, err)
			assert.True(t, timescape.IsSchemaError(err))

			var se *timescape.SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "Thing", se.Schema)
			assert.Equal(t, tt.path, se.Path)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	t.Run("nil schema", func(t *testing.T) {
		assert.True(t, timescape.IsSchemaError(schema.Validate("T", nil)))
	})

	t.Run("well-formed tree", func(t *testing.T) {
		n := schema.Object(
			schema.Prop("id", schema.String().UUID()),
			schema.Prop("email", schema.String().Email().MaxLength(255)),
			schema.Prop("age", schema.Number().Min(0).Max(150).AsOptional()),
			schema.Prop("tags", schema.Array(schema.String()).AtMost(10)),
			schema.Prop("point", schema.Tuple(schema.Number(), schema.Number())),
			schema.Prop("role", schema.Enum("admin", "member")),
		).Strict()
		assert.NoError(t, schema.Validate("User", n))
		assert.NotPanics(t, func() { schema.MustValidate("User", n) })
	})
}

func TestWalkPaths(t *testing.T) {
	n := schema.Object(
		schema.Prop("items", schema.Array(schema.Object(schema.Prop("sku", schema.String())))),
		schema.Prop("pair", schema.Tuple(schema.String(), schema.Number())),
	)
	var paths []string
	err := schema.Walk(n, func(path []string, _ *schema.Node) error {
		paths = append(paths, schema.FormatPath(path))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "items", "items[]", "items[].sku", "pair", "pair[0]", "pair[1]"}, paths)
}

func TestEqual(t *testing.T) {
	assert.True(t, schema.Equal(1, float64(1)))
	assert.True(t, schema.Equal(json.Number("2.5"), float32(2.5)))
	assert.True(t, schema.Equal(nil, nil))
	assert.True(t, schema.Equal("a", "a"))
	assert.False(t, schema.Equal("1", 1))
	assert.False(t, schema.Equal(true, 1))
	assert.False(t, schema.Equal(nil, false))
}

func TestCloneIsDeep(t *testing.T) {
	n := schema.Object(schema.Prop("tags", schema.Array(schema.String()).AtLeast(1)))
	c := n.Clone()
	*c.Properties[0].Schema.MinItems = 5
	c.Properties[0].Name = "labels"

	assert.Equal(t, 1, *n.Properties[0].Schema.MinItems)
	assert.Equal(t, "tags", n.Properties[0].Name)
}

func TestJSONRoundTrip(t *testing.T) {
	n := schema.Object(
		schema.Prop("status", schema.Enum("on", "off")),
		schema.Prop("flag", schema.Literal(false)),
		schema.Prop("name", schema.String().Pattern("^[a-z]+$", "lowercase only").AsNullable()),
	).Require("status").Strict()

	buf, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"value":false`)

	var back schema.Node
	require.NoError(t, json.Unmarshal(buf, &back))
	assert.Equal(t, schema.KindObject, back.Kind)
	assert.Equal(t, schema.AdditionalForbid, back.Additional)
	require.NotNil(t, back.Required)
	assert.Equal(t, []string{"status"}, *back.Required)
	assert.Equal(t, false, back.Properties[1].Schema.Value)
	assert.Equal(t, "lowercase only", back.Properties[2].Schema.Checks[0].Message)
	assert.True(t, back.Properties[2].Schema.Nullable)
}
