package transformer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/internal/tscheck"
	"github.com/syssam/timescape/schema"
)

func user() *schema.Node {
	return schema.Object(
		schema.Prop("id", schema.String().UUID()),
		schema.Prop("name", schema.String().MinLength(1)),
		schema.Prop("age", schema.Number().Min(0).AsOptional()),
		schema.Prop("role", schema.Enum("admin", "member")),
		schema.Prop("tags", schema.Array(schema.String()).AtMost(5)),
	)
}

// paths returns "op path" for every change.
func paths(changes []Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = string(c.Op) + " " + c.Path
	}
	return out
}

func TestDiffIdentical(t *testing.T) {
	d := Diff(user(), user())
	assert.True(t, d.Empty())
	assert.False(t, d.IsBreaking())
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name        string
		to          *schema.Node
		breaking    []string
		nonBreaking []string
	}{
		{
			name: "AddRequired",
			to: schema.Object(append(user().Properties,
				schema.Prop("email", schema.String().Email()))...),
			breaking: []string{"add email"},
		},
		{
			name: "AddOptional",
			to: schema.Object(append(user().Properties,
				schema.Prop("email", schema.String().AsOptional()))...),
			nonBreaking: []string{"add email"},
		},
		{
			name:     "RemoveProperty",
			to:       schema.Object(user().Properties[:4]...),
			breaking: []string{"remove tags"},
		},
		{
			name: "KindChange",
			to: schema.Object(
				schema.Prop("id", schema.Number()),
				user().Properties[1], user().Properties[2], user().Properties[3], user().Properties[4],
			),
			breaking: []string{"modify id"},
		},
		{
			name: "OptionalToRequired",
			to: schema.Object(
				user().Properties[0], user().Properties[1],
				schema.Prop("age", schema.Number().Min(0)),
				user().Properties[3], user().Properties[4],
			),
			breaking: []string{"modify age"},
		},
		{
			name: "EnumValues",
			to: schema.Object(
				user().Properties[0], user().Properties[1], user().Properties[2],
				schema.Prop("role", schema.Enum("admin", "owner")),
				user().Properties[4],
			),
			breaking:    []string{"remove role"},
			nonBreaking: []string{"add role"},
		},
		{
			name: "Bounds",
			to: schema.Object(
				user().Properties[0],
				schema.Prop("name", schema.String().MinLength(3)),
				schema.Prop("age", schema.Number().AsOptional()),
				user().Properties[3],
				schema.Prop("tags", schema.Array(schema.String()).AtMost(10)),
			),
			breaking:    []string{"modify name"},
			nonBreaking: []string{"remove age", "modify tags"},
		},
		{
			name: "NullableAndItems",
			to: schema.Object(
				user().Properties[0], user().Properties[1], user().Properties[2], user().Properties[3],
				schema.Prop("tags", schema.Array(schema.Number()).AtMost(5).AsNullable()),
			),
			breaking:    []string{"modify tags[]"},
			nonBreaking: []string{"modify tags"},
		},
		{
			name:     "Strict",
			to:       user().Strict(),
			breaking: []string{"modify "},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diff(user(), tt.to)
			assert.Equal(t, tt.breaking, nilIfEmpty(paths(d.Breaking)), "breaking")
			assert.Equal(t, tt.nonBreaking, nilIfEmpty(paths(d.NonBreaking)), "non-breaking")
			assert.Equal(t, len(tt.breaking) > 0, d.IsBreaking())
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestDiffReverseIsNonBreaking(t *testing.T) {
	narrow := schema.Object(schema.Prop("status", schema.Enum("on")), schema.Prop("n", schema.Number().Max(5)))
	wide := schema.Object(schema.Prop("status", schema.Enum("on", "off")), schema.Prop("n", schema.Number().Max(10)))
	assert.False(t, Diff(narrow, wide).IsBreaking())
	assert.True(t, Diff(wide, narrow).IsBreaking())
}

func TestDiffMembersAndTuples(t *testing.T) {
	u1 := schema.Union(schema.String(), schema.Number())
	u2 := schema.Union(schema.String())
	assert.Equal(t, []string{"remove <1>"}, paths(Diff(u1, u2).Breaking))
	assert.Equal(t, []string{"add <1>"}, paths(Diff(u2, u1).NonBreaking))

	i1 := schema.Intersection(schema.Object())
	i2 := schema.Intersection(schema.Object(), schema.Object(schema.Prop("x", schema.String())))
	assert.Equal(t, []string{"add <1>"}, paths(Diff(i1, i2).Breaking))

	t1 := schema.Tuple(schema.String(), schema.Number())
	t2 := schema.Tuple(schema.String(), schema.Boolean(), schema.Number())
	assert.Equal(t, []string{"modify ", "modify [1]"}, paths(Diff(t1, t2).Breaking))
}

func TestDiffValues(t *testing.T) {
	d := Diff(schema.Literal("v1"), schema.Literal("v2"))
	require.Len(t, d.Breaking, 1)
	c := d.Breaking[0]
	assert.Equal(t, OpModify, c.Op)
	assert.Equal(t, "v1", c.Before)
	assert.Equal(t, "v2", c.After)
	assert.Equal(t, `literal changed from "v1" to "v2"`, c.Description)

	d = Diff(nil, schema.String())
	assert.Equal(t, []string{"add "}, paths(d.Breaking))
	assert.True(t, Diff(nil, nil).Empty())
}

func TestFilePath(t *testing.T) {
	assert.Equal(t, "transformers/tsv_1000-users-0__tsv_2000-users-0.ts", FilePath("tsv:1000-users-0", "tsv:2000-users-0"))
}

func TestPlaceholder(t *testing.T) {
	add := Change{Op: OpAdd, Path: "email", Description: "required property \"email\" added"}
	remove := Change{Op: OpRemove, Path: "tags"}
	modify := Change{Op: OpModify, Path: "id", Before: "string", After: "number"}

	assert.Equal(t, `populate "email" (required property "email" added)`, Placeholder(true, add))
	assert.Equal(t, `remove "email" (required property "email" added)`, Placeholder(false, add))
	assert.Equal(t, `remove "tags"`, Placeholder(true, remove))
	assert.Equal(t, `populate "tags"`, Placeholder(false, remove))
	assert.Equal(t, `transform the value at "id" from string to number`, Placeholder(true, modify))
	assert.Equal(t, `transform the value at "id" from number to string`, Placeholder(false, modify))
	assert.Equal(t, "transform the value at the root value", Placeholder(true, Change{Op: OpModify}))
}

func TestRender(t *testing.T) {
	to := schema.Object(append(user().Properties[1:], schema.Prop("email", schema.String()))...)
	in := Input{
		From:        "tsv:1000-users-0",
		To:          "tsv:2000-users-0",
		Request:     Diff(user(), to),
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600)),
		Header:      "Code generated by timescape.",
	}
	src, err := Render(in)
	require.NoError(t, err)
	require.NoError(t, tscheck.Balanced(src), src)

	for _, want := range []string{
		"// Code generated by timescape.",
		"@immutable",
		`export const fromVersion = "tsv:1000-users-0";`,
		`export const toVersion = "tsv:2000-users-0";`,
		"export const immutable = true;",
		`export const generatedAt = "2026-01-02T02:04:05Z";`,
		"export function forwardRequest(input: unknown): unknown {",
		"export function backwardRequest(input: unknown): unknown {",
		"export function forwardResponse(input: unknown): unknown {",
		"export function backwardResponse(input: unknown): unknown {",
		"const output = structuredClone(input);",
		`// TODO(transform): remove "id" (property "id" removed)`,
		`// TODO(transform): populate "id" (property "id" removed)`,
		`// TODO(transform): populate "email" (required property "email" added)`,
		`// TODO(transform): remove "email" (required property "email" added)`,
		"forward: { request: forwardRequest, response: forwardResponse },",
	} {
		assert.Contains(t, src, want)
	}
	// Placeholders appear once per direction of the request shape only.
	assert.Equal(t, 4, strings.Count(src, "TODO(transform)"))

	again, err := Render(in)
	require.NoError(t, err)
	assert.Equal(t, src, again)
}

func TestRenderRejectsVersions(t *testing.T) {
	_, err := Render(Input{From: "v1", To: "tsv:2000-users-0"})
	require.Error(t, err)
	assert.True(t, timescape.IsDescriptorError(err))

	_, err = Render(Input{From: "tsv:2000-users-0", To: "tsv:1000-users-0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ordered after")
}
