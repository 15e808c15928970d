package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/schema"
)

func userSchema() *schema.Node {
	return schema.Object(
		schema.Prop("id", schema.String().UUID()),
		schema.Prop("name", schema.String().MinLength(1).MaxLength(20)),
		schema.Prop("email", schema.String().Email().AsOptional()),
		schema.Prop("age", schema.Number().Min(0).Max(150).AsOptional()),
		schema.Prop("role", schema.Enum("admin", "member")),
		schema.Prop("tags", schema.Array(schema.String()).AtMost(3)),
		schema.Prop("home", schema.String().URL().AsNullable()),
		schema.Prop("point", schema.Tuple(schema.Number(), schema.Number()).AsOptional()),
	).Strict()
}

func validUser() map[string]any {
	return map[string]any{
		"id":    "5b0e1b5c-4c5a-4c1e-9c7a-0d6f3b1e2a11",
		"name":  "Ada",
		"email": "ada@example.com",
		"age":   36,
		"role":  "admin",
		"tags":  []any{"math"},
		"home":  nil,
		"point": []any{1.5, 2},
	}
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestCompileRejectsMalformedSchema(t *testing.T) {
	_, err := Compile(schema.Union())
	require.Error(t, err)
	assert.True(t, timescape.IsSchemaError(err))
	assert.Panics(t, func() { MustCompile(schema.Enum()) })
}

func TestValidUser(t *testing.T) {
	v := MustCompile(userSchema())
	res := v.Validate(validUser())
	assert.True(t, res.Valid, res.Errors.Error())
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())

	decoded := decode(t, `{"id":"5b0e1b5c-4c5a-4c1e-9c7a-0d6f3b1e2a11","name":"Bo","role":"member","tags":[],"home":"https://bo.dev"}`)
	assert.True(t, v.Validate(decoded).Valid)
}

// Each single mutation of a valid value is reported at the mutated path.
func TestSingleViolation(t *testing.T) {
	tests := []struct {
		name string
		edit func(map[string]any)
		path []any
		code Code
	}{
		{"bad uuid", func(m map[string]any) { m["id"] = "not-a-uuid" }, []any{"id"}, CodeInvalidFormat},
		{"braced uuid", func(m map[string]any) { m["id"] = "{5b0e1b5c-4c5a-4c1e-9c7a-0d6f3b1e2a11}" }, []any{"id"}, CodeInvalidFormat},
		{"empty name", func(m map[string]any) { m["name"] = "" }, []any{"name"}, CodeTooShort},
		{"long name", func(m map[string]any) { m["name"] = "abcdefghijklmnopqrstu" }, []any{"name"}, CodeTooLong},
		{"name wrong type", func(m map[string]any) { m["name"] = 7 }, []any{"name"}, CodeInvalidType},
		{"missing name", func(m map[string]any) { delete(m, "name") }, []any{"name"}, CodeRequired},
		{"undefined name", func(m map[string]any) { m["name"] = Undefined }, []any{"name"}, CodeRequired},
		{"bad email", func(m map[string]any) { m["email"] = "ada" }, []any{"email"}, CodeInvalidFormat},
		{"negative age", func(m map[string]any) { m["age"] = -1 }, []any{"age"}, CodeTooSmall},
		{"old age", func(m map[string]any) { m["age"] = 151.5 }, []any{"age"}, CodeTooBig},
		{"bad role", func(m map[string]any) { m["role"] = "owner" }, []any{"role"}, CodeInvalidEnum},
		{"too many tags", func(m map[string]any) { m["tags"] = []any{"a", "b", "c", "d"} }, []any{"tags"}, CodeTooBig},
		{"tag wrong type", func(m map[string]any) { m["tags"] = []any{"a", false} }, []any{"tags", 1}, CodeInvalidType},
		{"relative url", func(m map[string]any) { m["home"] = "/home" }, []any{"home"}, CodeInvalidFormat},
		{"short tuple", func(m map[string]any) { m["point"] = []any{1} }, []any{"point"}, CodeInvalidTuple},
		{"tuple element", func(m map[string]any) { m["point"] = []any{1, "2"} }, []any{"point", 1}, CodeInvalidType},
		{"unknown key", func(m map[string]any) { m["extra"] = true }, []any{"extra"}, CodeUnknownKey},
	}
	v := MustCompile(userSchema())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := validUser()
			tt.edit(value)
			res := v.Validate(value)
			assert.False(t, res.Valid)
			require.Len(t, res.Errors, 1, res.Errors.Error())
			assert.Equal(t, tt.path, res.Errors[0].Path)
			assert.Equal(t, tt.code, res.Errors[0].Code)
			assert.Error(t, res.Err())
		})
	}
}

func TestResultJSON(t *testing.T) {
	v := MustCompile(userSchema())

	buf, err := json.Marshal(v.Validate(validUser()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true,"errors":[]}`, string(buf))

	buf, err = json.Marshal(v.Validate("x"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"path":[]`)
	assert.Contains(t, string(buf), `"actual":"x"`)
}

func TestObjectShape(t *testing.T) {
	v := MustCompile(userSchema())
	for _, value := range []any{nil, "x", []any{}, Undefined, 3} {
		res := v.Validate(value)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, CodeInvalidType, res.Errors[0].Code)
		assert.Empty(t, res.Errors[0].Path)
		assert.Equal(t, "object", res.Errors[0].Expected)
	}
}

func TestSiblingChecksAllReported(t *testing.T) {
	v := MustCompile(schema.String().MinLength(5).Pattern("^[0-9]+$", "digits only"))
	res := v.Validate("ab")
	require.Len(t, res.Errors, 2)
	assert.Equal(t, CodeTooShort, res.Errors[0].Code)
	assert.Equal(t, CodePattern, res.Errors[1].Code)
	assert.Equal(t, "digits only", res.Errors[1].Message)
}

func TestNullableAndOptional(t *testing.T) {
	t.Run("nullable string", func(t *testing.T) {
		v := MustCompile(schema.String().AsNullable())
		assert.True(t, v.Validate(nil).Valid)
		assert.True(t, v.Validate("x").Valid)
		res := v.Validate(1)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "string | null", res.Errors[0].Expected)
		assert.Equal(t, "Expected string | null, received number", res.Errors[0].Message)
		assert.False(t, v.Validate(Undefined).Valid)
	})

	t.Run("optional is not nullable", func(t *testing.T) {
		v := MustCompile(schema.String().AsOptional())
		assert.True(t, v.Validate(Undefined).Valid)
		assert.False(t, v.Validate(nil).Valid)
	})

	t.Run("required but nullable property", func(t *testing.T) {
		v := MustCompile(schema.Object(schema.Prop("a", schema.Number().AsNullable())))
		assert.True(t, v.Validate(map[string]any{"a": nil}).Valid)
		res := v.Validate(map[string]any{})
		require.Len(t, res.Errors, 1)
		assert.Equal(t, CodeRequired, res.Errors[0].Code)
		assert.Equal(t, Undefined, res.Errors[0].Actual)
	})

	t.Run("explicit required set", func(t *testing.T) {
		v := MustCompile(schema.Object(
			schema.Prop("a", schema.String()),
			schema.Prop("b", schema.String()),
		).Require("b"))
		assert.True(t, v.Validate(map[string]any{"b": "x"}).Valid)
		assert.False(t, v.Validate(map[string]any{"a": "x"}).Valid)
	})

	t.Run("declared empty required set", func(t *testing.T) {
		var n schema.Node
		require.NoError(t, json.Unmarshal([]byte(`{"kind":"object","required":[],"properties":[{"name":"a","schema":{"kind":"primitive","primitive":"string"}}]}`), &n))
		v := MustCompile(&n)
		assert.True(t, v.Validate(map[string]any{}).Valid)
		assert.True(t, v.Validate(map[string]any{"a": "x"}).Valid)
		assert.False(t, v.Validate(map[string]any{"a": 1}).Valid)
	})

	t.Run("additional keys allowed by default", func(t *testing.T) {
		v := MustCompile(schema.Object(schema.Prop("a", schema.String())))
		assert.True(t, v.Validate(map[string]any{"a": "x", "b": 1}).Valid)
	})
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		node *schema.Node
		good []any
		bad  []any
	}{
		{schema.String(), []any{"", "x"}, []any{1, nil, true}},
		{schema.Number(), []any{0, 1.5, int64(3), json.Number("4")}, []any{"1", nil, false}},
		{schema.Boolean(), []any{true, false}, []any{0, "true"}},
		{schema.Null(), []any{nil}, []any{0, "", Undefined}},
		{schema.Undefined(), []any{Undefined}, []any{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.node.String(), func(t *testing.T) {
			v := MustCompile(tt.node)
			for _, g := range tt.good {
				assert.True(t, v.Validate(g).Valid, "%v", g)
			}
			for _, b := range tt.bad {
				assert.False(t, v.Validate(b).Valid, "%v", b)
			}
		})
	}
}

func TestLiteralAndEnum(t *testing.T) {
	lit := MustCompile(schema.Literal(1))
	assert.True(t, lit.Validate(float64(1)).Valid)
	assert.False(t, lit.Validate("1").Valid)
	res := lit.Validate(2)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeInvalidLiteral, res.Errors[0].Code)
	assert.Equal(t, "Expected literal 1", res.Errors[0].Message)

	enum := MustCompile(schema.Enum("a", 2, nil))
	assert.True(t, enum.Validate(nil).Valid)
	assert.True(t, enum.Validate(2.0).Valid)
	assert.False(t, enum.Validate([]any{"a"}).Valid)
	assert.Equal(t, `Expected one of "a", 2, null`, enum.Validate("b").Errors[0].Message)
}

func TestUnionTrial(t *testing.T) {
	v := MustCompile(schema.Union(
		schema.Object(schema.Prop("kind", schema.Literal("a")), schema.Prop("x", schema.Number())),
		schema.Object(schema.Prop("kind", schema.Literal("b")), schema.Prop("y", schema.String())),
	))
	assert.True(t, v.Validate(map[string]any{"kind": "a", "x": 1}).Valid)
	assert.True(t, v.Validate(map[string]any{"kind": "b", "y": "s"}).Valid)

	res := v.Validate(map[string]any{"kind": "b", "y": 1})
	require.Len(t, res.Errors, 1, "member errors must not leak")
	assert.Equal(t, CodeInvalidUnion, res.Errors[0].Code)
	assert.Equal(t, unionMessage, res.Errors[0].Message)
}

func TestNestedUnionPath(t *testing.T) {
	v := MustCompile(schema.Object(
		schema.Prop("items", schema.Array(schema.Union(schema.String(), schema.Number()))),
	))
	res := v.Validate(map[string]any{"items": []any{"a", 1, true}})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, []any{"items", 2}, res.Errors[0].Path)
	assert.Equal(t, "items[2]: "+unionMessage, res.Errors[0].Error())
}

func TestIntersectionCollectsAllMembers(t *testing.T) {
	v := MustCompile(schema.Intersection(
		schema.Object(schema.Prop("a", schema.String())),
		schema.Object(schema.Prop("b", schema.Number())),
	))
	assert.True(t, v.Validate(map[string]any{"a": "x", "b": 1}).Valid)
	res := v.Validate(map[string]any{})
	require.Len(t, res.Errors, 2)
	assert.Equal(t, []any{"a"}, res.Errors[0].Path)
	assert.Equal(t, []any{"b"}, res.Errors[1].Path)
}

func TestArrayBounds(t *testing.T) {
	v := MustCompile(schema.Array(schema.Number()).AtLeast(2).AtMost(3))
	assert.True(t, v.Validate([]any{1, 2}).Valid)
	assert.Equal(t, CodeTooSmall, v.Validate([]any{1}).Errors[0].Code)
	assert.Equal(t, CodeTooBig, v.Validate([]any{1, 2, 3, 4}).Errors[0].Code)
	assert.Equal(t, CodeInvalidType, v.Validate(map[string]any{}).Errors[0].Code)
}

func TestMinLengthCountsRunes(t *testing.T) {
	v := MustCompile(schema.String().MaxLength(2))
	assert.True(t, v.Validate("né").Valid)
	assert.False(t, v.Validate("née").Valid)
}

func TestUnknownKeysSorted(t *testing.T) {
	v := MustCompile(schema.Object().Strict())
	res := v.Validate(map[string]any{"z": 1, "a": 2, "m": 3})
	require.Len(t, res.Errors, 3)
	assert.Equal(t, []any{"a"}, res.Errors[0].Path)
	assert.Equal(t, []any{"m"}, res.Errors[1].Path)
	assert.Equal(t, []any{"z"}, res.Errors[2].Path)
	assert.Equal(t, `Unrecognized property "a"`, res.Errors[0].Message)
}

func TestErrorsSummary(t *testing.T) {
	errs := Errors{
		{Message: "root"},
		{Path: []any{"a", 0, "b"}, Message: "one"},
		{Path: []any{"c"}, Message: "two"},
		{Path: []any{"d"}, Message: "three"},
	}
	assert.Equal(t, "root; a[0].b: one; c: two; ... (total 4)", errs.Error())
	assert.Equal(t, "", Errors(nil).Error())
}

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "", FormatPath(nil))
	assert.Equal(t, "[0].a", FormatPath([]any{0, "a"}))
	assert.Equal(t, "a.b[1][2]", FormatPath([]any{"a", "b", 1, 2}))
}

func TestValidatorIsReusable(t *testing.T) {
	v := MustCompile(schema.Array(schema.Object(schema.Prop("n", schema.Number()))))
	first := v.Validate([]any{map[string]any{"n": "x"}})
	second := v.Validate([]any{map[string]any{}, map[string]any{"n": "y"}})
	require.Len(t, first.Errors, 1)
	require.Len(t, second.Errors, 2)
	assert.Equal(t, []any{0, "n"}, first.Errors[0].Path)
	assert.Equal(t, []any{0, "n"}, second.Errors[0].Path)
	assert.Equal(t, []any{1, "n"}, second.Errors[1].Path)
	assert.Same(t, v.Schema(), v.Schema())
}
