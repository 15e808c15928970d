package typescript

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/internal/tscheck"
	"github.com/syssam/timescape/schema"
)

func TestExpr(t *testing.T) {
	tests := []struct {
		name string
		node *schema.Node
		want string
	}{
		{"string", schema.String(), "string"},
		{"undefined", schema.Undefined(), "undefined"},
		{"nullable string", schema.String().AsNullable(), "string | null"},
		{"string literal", schema.Literal(`say "hi"`), `"say \"hi\""`},
		{"number literal", schema.Literal(3), "3"},
		{"null literal", schema.Literal(nil), "null"},
		{"array", schema.Array(schema.Number()), "Array<number>"},
		{"array of nullable", schema.Array(schema.Number().AsNullable()), "Array<number | null>"},
		{"nullable array", schema.Array(schema.Number()).AsNullable(), "Array<number> | null"},
		{"tuple", schema.Tuple(schema.String(), schema.Boolean()), "[string, boolean]"},
		{"empty tuple", schema.Tuple(), "[]"},
		{"union", schema.Union(schema.String(), schema.Number()), "string | number"},
		{"nested union", schema.Union(schema.String(), schema.Union(schema.Number(), schema.Boolean())), "string | (number | boolean)"},
		{"union with intersection", schema.Union(schema.String(), schema.Intersection(schema.Object(), schema.Object())), "string | (Record<string, unknown> & Record<string, unknown>)"},
		{"intersection with union", schema.Intersection(schema.Union(schema.String(), schema.Number()), schema.String()), "(string | number) & string"},
		{"intersection with enum", schema.Intersection(schema.Enum("a", "b"), schema.String()), `("a" | "b") & string`},
		{"intersection with nullable", schema.Intersection(schema.String().AsNullable(), schema.String()), "(string | null) & string"},
		{"enum", schema.Enum("a", 1, true, nil), `"a" | 1 | true | null`},
		{"nullable enum", schema.Enum("a").AsNullable(), `"a" | null`},
		{"empty object", schema.Object(), "Record<string, unknown>"},
		{"object", schema.Object(
			schema.Prop("name", schema.String()),
			schema.Prop("age", schema.Number().AsOptional()),
			schema.Prop("content-type", schema.String().AsNullable()),
		), `{ name: string; age?: number; "content-type": string | null }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expr(tt.node))
		})
	}
}

func TestExprCoversEveryKind(t *testing.T) {
	for _, k := range schema.AllKinds {
		assert.NotEqual(t, "unknown", Expr(&schema.Node{Kind: k, Primitive: schema.TypeString, Items: schema.String(), Values: []any{"v"}}), k)
	}
}

func TestDeclareInterface(t *testing.T) {
	n := schema.Object(
		schema.Prop("name", schema.String().Describe("Display name.")),
		schema.Prop("age", schema.Number().AsOptional()),
		schema.Prop("nick", schema.String().AsNullable()),
		schema.Prop("bio", schema.String().AsOptional().AsNullable()),
	).Describe("A registered user.")

	src, err := Declare("user", n)
	require.NoError(t, err)
	assert.Equal(t, "/** A registered user. */\n"+
		"export interface User {\n"+
		"  /** Display name. */\n"+
		"  name: string;\n"+
		"  age?: number;\n"+
		"  nick: string | null;\n"+
		"  bio?: string | null;\n"+
		"}\n", src)
	assert.NoError(t, tscheck.Balanced(src))
}

func TestDeclareRequiredSet(t *testing.T) {
	n := schema.Object(
		schema.Prop("id", schema.String()),
		schema.Prop("note", schema.String()),
		schema.Prop("flag", schema.Boolean().AsOptional()),
	).Require("id", "flag")

	src, err := Declare("Item", n)
	require.NoError(t, err)
	assert.Contains(t, src, "  id: string;\n")
	assert.Contains(t, src, "  note?: string;\n")
	// The optional flag wins over the required set.
	assert.Contains(t, src, "  flag?: boolean;\n")
}

func TestDeclareEmptyRequiredSet(t *testing.T) {
	var n schema.Node
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"object","required":[],"properties":[{"name":"a","schema":{"kind":"primitive","primitive":"string"}}]}`), &n))

	src, err := Declare("Loose", &n)
	require.NoError(t, err)
	assert.Contains(t, src, "  a?: string;\n")

	src, err = Declare("Strict", schema.Object(schema.Prop("a", schema.String())))
	require.NoError(t, err)
	assert.Contains(t, src, "  a: string;\n")
}

func TestDeclareAlias(t *testing.T) {
	tests := []struct {
		name string
		node *schema.Node
		want string
	}{
		{"Status", schema.Enum("active", "disabled"), `export type Status = "active" | "disabled";` + "\n"},
		{"MaybeUser", schema.Object(schema.Prop("id", schema.String())).AsNullable(), "export type MaybeUser = { id: string } | null;\n"},
		{"Point", schema.Tuple(schema.Number(), schema.Number()), "export type Point = [number, number];\n"},
		{"Email", schema.String().Email(), "export type Email = string;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Declare(tt.name, tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, src)
		})
	}
}

func TestDeclareOpenEmptyObject(t *testing.T) {
	src, err := Declare("Bag", schema.Object())
	require.NoError(t, err)
	assert.Equal(t, "export interface Bag {\n  [key: string]: unknown;\n}\n", src)

	src, err = Declare("Empty", schema.Object().Strict())
	require.NoError(t, err)
	assert.Equal(t, "export interface Empty {\n}\n", src)
}

func TestDeclareRejectsMalformedSchema(t *testing.T) {
	_, err := Declare("Bad", schema.Union())
	assert.True(t, timescape.IsSchemaError(err))
	_, err = Brand("Bad", schema.Enum())
	assert.True(t, timescape.IsSchemaError(err))
}

func TestBrand(t *testing.T) {
	src, err := Brand("user_id", schema.String().UUID())
	require.NoError(t, err)
	assert.Equal(t, `export type UserID = string & { readonly __brand: "UserID" };`+"\n", src)

	src, err = Brand("OrderRef", schema.Union(schema.String(), schema.Number()))
	require.NoError(t, err)
	assert.Equal(t, `export type OrderRef = (string | number) & { readonly __brand: "OrderRef" };`+"\n", src)

	a, _ := Brand("A", schema.String())
	b, _ := Brand("B", schema.String())
	assert.NotEqual(t, a[len("export type A"):], b[len("export type B"):])
}

func TestIndex(t *testing.T) {
	assert.Equal(t, "export * from \"./Order\";\nexport * from \"./User\";\n", Index([]string{"user", "order"}))
}
