package manifest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/schema"
)

func sampleBundle() *Bundle {
	return &Bundle{
		Version: "1.0.0",
		Handlers: []Handler{{
			HandlerID:      "getUser",
			Path:           "/users/:userId",
			Methods:        []string{MethodGet},
			ResponseSchema: "User",
			Version:        "tsv:1000-users-1",
			Dependencies:   []string{"db"},
		}},
		Modules: []Module{{ModuleID: "db", Runtime: "go", Network: Network{Mode: "allowlist", Hosts: []string{"db.internal"}}}},
		Schemas: map[string]*schema.Node{
			"User": schema.Object(
				schema.Prop("id", schema.String().UUID()),
				schema.Prop("age", schema.Number().Min(0).AsOptional()),
			),
		},
		VersionGraph: VersionGraph{
			Nodes: []VersionNode{{Version: "tsv:1000-users-1", ResourcePath: "/users/:userId", HandlerID: "getUser"}},
		},
		Checksum: "sha256:00",
		Metadata: &Metadata{ProjectName: "demo"},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, f, sampleBundle()))

			back, err := UnmarshalBundle(buf.Bytes(), f)
			require.NoError(t, err)
			assert.Equal(t, "1.0.0", back.Version)
			require.Len(t, back.Handlers, 1)
			assert.Equal(t, "getUser", back.Handlers[0].HandlerID)
			assert.Equal(t, []string{"db.internal"}, back.Modules[0].Network.Hosts)
			assert.Equal(t, "demo", back.Metadata.ProjectName)

			user := back.Schemas["User"]
			require.NotNil(t, user)
			assert.Equal(t, schema.KindObject, user.Kind)
			assert.True(t, user.Property("age").Schema.Optional)
			bound, ok := user.Property("age").Schema.Checks[0].Bound()
			assert.True(t, ok)
			assert.Zero(t, bound)
		})
	}
}

func TestDecodeRejectsUnknownJSONFields(t *testing.T) {
	_, err := UnmarshalBundle([]byte(`{"version":"1","bogus":true}`), FormatJSON)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("a/b.yml"))
	assert.Equal(t, FormatYAML, FormatOf("b.YAML"))
	assert.Equal(t, FormatJSON, FormatOf("manifest.json"))
	assert.Equal(t, FormatJSON, FormatOf("noext"))
}

func TestHandlerCheck(t *testing.T) {
	valid := func() Handler {
		return Handler{HandlerID: "h", Path: "/users/:id", Methods: []string{"get"}, Version: "tsv:1-users-0"}
	}
	require.NoError(t, func() error { h := valid(); return h.Check() }())

	tests := []struct {
		name  string
		edit  func(*Handler)
		field string
	}{
		{"empty id", func(h *Handler) { h.HandlerID = "" }, "handlerId"},
		{"relative path", func(h *Handler) { h.Path = "users" }, "path"},
		{"unnamed param", func(h *Handler) { h.Path = "/users/:" }, "path"},
		{"no verbs", func(h *Handler) { h.Methods = nil }, "methods"},
		{"unknown verb", func(h *Handler) { h.Methods = []string{"FETCH"} }, "methods"},
		{"bad version", func(h *Handler) { h.Version = "v1" }, "version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid()
			tt.edit(&h)
			err := h.Check()
			require.Error(t, err)
			var de *timescape.DescriptorError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestModuleCheck(t *testing.T) {
	assert.NoError(t, (&Module{ModuleID: "m"}).Check())
	assert.NoError(t, (&Module{ModuleID: "m", Network: Network{Mode: "allowlist", Hosts: []string{"x"}}}).Check())
	assert.True(t, timescape.IsDescriptorError((&Module{}).Check()))
	assert.True(t, timescape.IsDescriptorError((&Module{ModuleID: "m", Network: Network{Mode: "none", Hosts: []string{"x"}}}).Check()))
	assert.True(t, timescape.IsDescriptorError((&Module{ModuleID: "m", Network: Network{Mode: "open"}}).Check()))
}

func TestPathParams(t *testing.T) {
	assert.Equal(t, []string{"userId", "postId"}, PathParams("/users/:userId/posts/:postId"))
	assert.Empty(t, PathParams("/health"))
	h := Handler{}
	assert.Equal(t, MethodGet, h.PrimaryMethod())
}
