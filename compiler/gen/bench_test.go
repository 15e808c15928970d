package gen_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/timescape/compiler/gen"
	"github.com/syssam/timescape/manifest"
	"github.com/syssam/timescape/schema"
)

func BenchmarkGenerate(b *testing.B) {
	in := &gen.Input{
		Schemas: map[string]*schema.Node{},
		Modules: []manifest.Module{{ModuleID: "db"}},
	}
	for i := range 50 {
		name := fmt.Sprintf("Entity%d", i)
		in.Schemas[name] = schema.Object(
			schema.Prop("id", schema.String().UUID()),
			schema.Prop("name", schema.String().MinLength(1).MaxLength(64)),
			schema.Prop("tags", schema.Array(schema.String()).AtMost(10).AsOptional()),
			schema.Prop("state", schema.Enum("on", "off").AsNullable()),
		)
		in.Handlers = append(in.Handlers, manifest.Handler{
			HandlerID:      fmt.Sprintf("entity-%d", i),
			Path:           fmt.Sprintf("/entities%d/:id", i),
			Methods:        []string{"GET"},
			Version:        fmt.Sprintf("tsv:%d-entity-0", 1000+i),
			ResponseSchema: name,
			Dependencies:   []string{"db"},
		})
	}
	cfg, err := gen.NewConfig(gen.WithFeatures(gen.FeatureGoTypes))
	require.NoError(b, err)
	for b.Loop() {
		_, err := gen.Generate(context.Background(), cfg, in)
		require.NoError(b, err)
	}
}
