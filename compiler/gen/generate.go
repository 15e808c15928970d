package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/compiler/gen/bundle"
	"github.com/syssam/timescape/compiler/gen/client"
	"github.com/syssam/timescape/compiler/gen/golang"
	"github.com/syssam/timescape/compiler/gen/transformer"
	"github.com/syssam/timescape/compiler/gen/typescript"
	"github.com/syssam/timescape/compiler/gen/validator"
	"github.com/syssam/timescape/internal/codewriter"
	"github.com/syssam/timescape/internal/tscheck"
	"github.com/syssam/timescape/manifest"
	"github.com/syssam/timescape/schema"
)

// Output layout, relative to the target directory.
const (
	TypesDir      = "types"
	ValidatorsDir = "validators"
	ClientDir     = "client"
	GoDir         = "go"
	GoFile        = "types.go"
	IndexFile     = "index.ts"
	ManifestFile  = "manifest.json"
)

// Input is the in-memory source set of one generation run.
type Input struct {
	Schemas map[string]*schema.Node
	// Brands names the schemas declared as branded types.
	Brands   []string
	Handlers []manifest.Handler
	Modules  []manifest.Module
}

// Result of a generation run.
type Result struct {
	// Files maps slash-separated paths relative to the target directory to
	// their content.
	Files map[string]string
	// Bundle is the manifest written to ManifestFile.
	Bundle *manifest.Bundle
}

// Paths returns the generated paths in lexical order.
func (r *Result) Paths() []string {
	return slices.Sorted(maps.Keys(r.Files))
}

// task renders one output file.
type task struct {
	phase  Phase
	path   string
	render func() (string, error)
}

// generator holds the state shared by the tasks of one run.
type generator struct {
	cfg    *Config
	in     *Input
	log    *zap.Logger
	header string

	mu    sync.Mutex
	files map[string]string
}

// Generate assembles the bundle and renders every artifact of in. All
// input problems are reported before anything is rendered; rendering runs
// on up to cfg.Workers goroutines and stops at the first failure.
func Generate(ctx context.Context, cfg *Config, in *Input) (*Result, error) {
	if cfg == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if in == nil {
		return nil, NewConfigError("Input", nil, "input cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	g := &generator{
		cfg:    cfg,
		in:     in,
		log:    cfg.logger(),
		header: cfg.header(),
		files:  make(map[string]string),
	}
	if err := g.checkNames(); err != nil {
		return nil, NewGenerationError(PhaseCheck, "", "", err)
	}
	now := cfg.now()
	b, err := g.bundle(now)
	if err != nil {
		return nil, err
	}
	g.log.Debug("bundle assembled",
		zap.String("checksum", b.Checksum),
		zap.Int("nodes", len(b.VersionGraph.Nodes)),
		zap.Int("edges", len(b.VersionGraph.Edges)),
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.workers())
	for _, t := range g.tasks(b, now) {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.run(t)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	g.log.Info("generation complete",
		zap.Int("files", len(g.files)),
		zap.Int("schemas", len(in.Schemas)),
		zap.Int("handlers", len(in.Handlers)),
		zap.Int("transformers", len(b.Transformers)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{Files: g.files, Bundle: b}, nil
}

// checkNames rejects brands of undeclared schemas and schema names that
// map to the same output file.
func (g *generator) checkNames() error {
	var errs []error
	files := make(map[string]string, len(g.in.Schemas))
	for _, name := range slices.Sorted(maps.Keys(g.in.Schemas)) {
		file := typescript.FileName(name)
		if prev, ok := files[file]; ok {
			errs = append(errs, timescape.NewReferentialError("schema", name, prev,
				fmt.Sprintf("schemas %q and %q are both declared in %s.ts", prev, name, file)))
			continue
		}
		files[file] = name
	}
	for _, name := range g.in.Brands {
		if _, ok := g.in.Schemas[name]; !ok {
			errs = append(errs, timescape.NewReferentialError("brand", name, name,
				fmt.Sprintf("brands undeclared schema %q", name)))
		}
	}
	return errors.Join(errs...)
}

func (g *generator) bundle(now time.Time) (*manifest.Bundle, error) {
	b, err := bundle.Build(bundle.Input{
		Version:         g.cfg.BundleVersion,
		Handlers:        g.in.Handlers,
		Modules:         g.in.Modules,
		Schemas:         g.in.Schemas,
		Metadata:        g.cfg.Project,
		IncludeMetadata: g.cfg.enabled(FeatureBundleMetadata),
		GeneratedAt:     now,
	})
	if err != nil {
		return nil, NewGenerationError(PhaseBundle, "", "", err)
	}
	if g.cfg.enabled(FeatureBundleSign) {
		if g.cfg.SigningKey == nil {
			return nil, NewConfigError("SigningKey", nil, FeatureBundleSign.Name+" is enabled but no signing key is configured")
		}
		if err := bundle.Sign(b, g.cfg.SigningKey); err != nil {
			return nil, NewGenerationError(PhaseBundle, ManifestFile, "", err)
		}
	}
	return b, nil
}

// tasks lists every file of the run. The bundle has been built, so the
// input is known to be well formed.
func (g *generator) tasks(b *manifest.Bundle, now time.Time) []task {
	names := slices.Sorted(maps.Keys(g.in.Schemas))
	var tasks []task
	for _, name := range names {
		n := g.in.Schemas[name]
		file := typescript.FileName(name) + ".ts"
		brand := slices.Contains(g.in.Brands, name)
		tasks = append(tasks,
			task{phase: PhaseTypes, path: TypesDir + "/" + file, render: func() (string, error) {
				if brand {
					return g.withHeader(typescript.Brand(name, n))
				}
				return g.withHeader(typescript.Declare(name, n))
			}},
			task{phase: PhaseValidators, path: ValidatorsDir + "/" + file, render: func() (string, error) {
				return g.withHeader(validator.Render(name, n))
			}},
		)
	}
	if len(names) > 0 {
		tasks = append(tasks,
			task{phase: PhaseTypes, path: TypesDir + "/" + IndexFile, render: func() (string, error) {
				return g.withHeader(typescript.Index(names), nil)
			}},
			task{phase: PhaseValidators, path: ValidatorsDir + "/" + IndexFile, render: func() (string, error) {
				return g.withHeader(typescript.Index(names), nil)
			}},
			task{phase: PhaseValidators, path: ValidatorsDir + "/" + validator.RuntimeFile, render: func() (string, error) {
				return g.withHeader(validator.Runtime(), nil)
			}},
		)
	}
	if len(g.in.Handlers) > 0 {
		tasks = append(tasks, task{phase: PhaseClient, path: ClientDir + "/" + client.FileName, render: func() (string, error) {
			return client.Render(g.in.Handlers, client.Config{
				ClassName: g.cfg.ClientName,
				Header:    g.header,
				Auth:      g.cfg.enabled(FeatureClientAuth),
				Timeout:   g.cfg.enabled(FeatureClientTimeout),
			})
		}})
	}
	for _, in := range transformerInputs(bundle.Steps(g.in.Handlers, g.in.Schemas), now, g.header) {
		tasks = append(tasks, task{phase: PhaseTransformers, path: transformer.FilePath(in.From, in.To), render: func() (string, error) {
			return transformer.Render(in)
		}})
	}
	if g.cfg.enabled(FeatureGoTypes) {
		tasks = append(tasks, task{phase: PhaseGo, path: GoDir + "/" + GoFile, render: g.goTypes})
	}
	tasks = append(tasks, task{phase: PhaseManifest, path: ManifestFile, render: func() (string, error) {
		data, err := manifest.MarshalBundle(b)
		return string(data), err
	}})
	return tasks
}

// transformerInputs returns one input per breaking version pair. Steps of
// different paths that share a version pair are merged into one file.
func transformerInputs(steps []bundle.Step, now time.Time, header string) []transformer.Input {
	var inputs []transformer.Input
	index := make(map[string]int)
	for _, s := range steps {
		if !s.Breaking() {
			continue
		}
		path := transformer.FilePath(s.From, s.To)
		i, ok := index[path]
		if !ok {
			index[path] = len(inputs)
			inputs = append(inputs, transformer.Input{From: s.From, To: s.To, GeneratedAt: now, Header: header})
			i = len(inputs) - 1
		}
		in := &inputs[i]
		in.Request.Breaking = append(in.Request.Breaking, s.Request.Breaking...)
		in.Request.NonBreaking = append(in.Request.NonBreaking, s.Request.NonBreaking...)
		in.Response.Breaking = append(in.Response.Breaking, s.Response.Breaking...)
		in.Response.NonBreaking = append(in.Response.NonBreaking, s.Response.NonBreaking...)
	}
	return inputs
}

// goTypes renders the Go declarations and formats them with goimports.
func (g *generator) goTypes() (string, error) {
	f, err := golang.File(g.cfg.goPackage(), g.in.Schemas)
	if err != nil {
		return "", err
	}
	f.HeaderComment(g.header)
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", err
	}
	out, err := imports.Process(GoFile, buf.Bytes(), nil)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return string(out), nil
}

func (g *generator) withHeader(src string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	w := codewriter.New("  ")
	w.Comment(g.header)
	w.Line("")
	return w.String() + src, nil
}

// run renders t and records the output. TypeScript output must have
// balanced delimiters.
func (g *generator) run(t task) error {
	text, err := t.render()
	if err != nil {
		return NewGenerationError(t.phase, t.path, "", err)
	}
	if strings.HasSuffix(t.path, ".ts") {
		if err := tscheck.Balanced(text); err != nil {
			return NewGenerationError(t.phase, t.path, "malformed TypeScript output", err)
		}
	}
	g.mu.Lock()
	g.files[t.path] = text
	g.mu.Unlock()
	g.log.Debug("generated file",
		zap.String("phase", string(t.phase)),
		zap.String("path", t.path),
		zap.Int("bytes", len(text)),
	)
	return nil
}
