// Package bundle assembles handler, module and schema descriptions into a
// checksum-protected manifest bundle with a version graph.
package bundle

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/compiler/gen/transformer"
	"github.com/syssam/timescape/manifest"
	"github.com/syssam/timescape/schema"
	"github.com/syssam/timescape/tsv"
)

// DefaultVersion is the bundle format version used when none is given.
const DefaultVersion = "1.0.0"

// Input is what a bundle is built from.
type Input struct {
	Version  string
	Handlers []manifest.Handler
	Modules  []manifest.Module
	Schemas  map[string]*schema.Node
	// Metadata is attached only when IncludeMetadata is set.
	Metadata        manifest.Metadata
	IncludeMetadata bool
	// GeneratedAt is recorded in the bundle; the zero time records nothing.
	GeneratedAt time.Time
}

// Build validates the input and returns the bundle. Every problem found is
// reported: descriptor errors, repeated ids, undeclared module
// dependencies, unknown schema references and malformed schemas are
// combined with errors.Join, and no bundle is produced.
func Build(in Input) (*manifest.Bundle, error) {
	if err := Check(in.Handlers, in.Modules, in.Schemas); err != nil {
		return nil, err
	}
	b := &manifest.Bundle{
		Version:  cmp.Or(in.Version, DefaultVersion),
		Handlers: slices.Clone(in.Handlers),
		Modules:  slices.Clone(in.Modules),
		Schemas:  in.Schemas,
	}
	if b.Handlers == nil {
		b.Handlers = []manifest.Handler{}
	}
	if b.Modules == nil {
		b.Modules = []manifest.Module{}
	}
	if b.Schemas == nil {
		b.Schemas = map[string]*schema.Node{}
	}
	if !in.GeneratedAt.IsZero() {
		b.GeneratedAt = in.GeneratedAt.UTC().Format(time.RFC3339)
	}
	if in.IncludeMetadata {
		md := in.Metadata
		b.Metadata = &md
	}
	b.VersionGraph, b.Transformers = Graph(Steps(b.Handlers, b.Schemas), b.Handlers)
	sum, err := Checksum(b)
	if err != nil {
		return nil, err
	}
	b.Checksum = sum
	return b, nil
}

// Check reports every structural and referential problem of a descriptor
// set.
func Check(handlers []manifest.Handler, modules []manifest.Module, schemas map[string]*schema.Node) error {
	var errs []error
	moduleIDs := make(map[string]bool, len(modules))
	for i := range modules {
		m := &modules[i]
		if err := m.Check(); err != nil {
			errs = append(errs, err)
			continue
		}
		if moduleIDs[m.ModuleID] {
			errs = append(errs, timescape.NewReferentialError("module", m.ModuleID, "", "duplicate module id"))
		}
		moduleIDs[m.ModuleID] = true
	}
	handlerIDs := make(map[string]bool, len(handlers))
	for i := range handlers {
		h := &handlers[i]
		if err := h.Check(); err != nil {
			errs = append(errs, err)
			continue
		}
		if handlerIDs[h.HandlerID] {
			errs = append(errs, timescape.NewReferentialError("handler", h.HandlerID, "", "duplicate handler id"))
		}
		handlerIDs[h.HandlerID] = true
		for _, dep := range h.Dependencies {
			if !moduleIDs[dep] {
				errs = append(errs, timescape.NewReferentialError("handler", h.HandlerID, dep,
					fmt.Sprintf("depends on undeclared module %q", dep)))
			}
		}
		errs = append(errs, checkRefs(h, schemas)...)
	}
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := schema.Validate(name, schemas[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkRefs(h *manifest.Handler, schemas map[string]*schema.Node) []error {
	var errs []error
	for _, ref := range []string{h.RequestSchema, h.ResponseSchema} {
		if ref == "" {
			continue
		}
		if _, ok := schemas[ref]; !ok {
			errs = append(errs, timescape.NewReferentialError("handler", h.HandlerID, ref,
				fmt.Sprintf("references undeclared schema %q", ref)))
		}
	}
	return errs
}

// Step is a version transition on one resource path: two consecutive
// versions and the diffs of their message shapes.
type Step struct {
	Path     string
	From, To string
	// FromID and ToID are the handlers representing each version.
	FromID, ToID string
	Request      transformer.SchemaDiff
	Response     transformer.SchemaDiff
}

// Breaking reports whether a client of From may fail against To.
func (s Step) Breaking() bool {
	return s.Request.IsBreaking() || s.Response.IsBreaking()
}

// version is the set of handlers sharing a path and a version.
type version struct {
	v        tsv.Version
	handlers []*manifest.Handler
}

// Steps groups handlers by resource path, orders each group by version and
// returns one step per pair of consecutive versions. Handlers must have
// passed Check. Within a version, handlers are matched across steps by
// primary verb; a verb that disappears is a breaking removal and a new
// verb a non-breaking addition.
func Steps(handlers []manifest.Handler, schemas map[string]*schema.Node) []Step {
	groups := group(handlers)
	var steps []Step
	for _, path := range sortedKeys(groups) {
		versions := groups[path]
		for i := 1; i < len(versions); i++ {
			steps = append(steps, step(path, versions[i-1], versions[i], schemas))
		}
	}
	return steps
}

// group returns the versions of every path in ascending order.
func group(handlers []manifest.Handler) map[string][]*version {
	groups := make(map[string][]*version)
	for i := range handlers {
		h := &handlers[i]
		v := tsv.MustParse(h.Version)
		versions := groups[h.Path]
		j := slices.IndexFunc(versions, func(x *version) bool { return x.v.Raw == v.Raw })
		if j < 0 {
			versions = append(versions, &version{v: v})
			j = len(versions) - 1
		}
		versions[j].handlers = append(versions[j].handlers, h)
		groups[h.Path] = versions
	}
	for _, versions := range groups {
		slices.SortFunc(versions, func(a, b *version) int { return tsv.Compare(a.v, b.v) })
	}
	return groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func step(path string, a, b *version, schemas map[string]*schema.Node) Step {
	s := Step{
		Path:   path,
		From:   a.v.Raw,
		To:     b.v.Raw,
		FromID: a.handlers[0].HandlerID,
		ToID:   b.handlers[0].HandlerID,
	}
	verbs := func(v *version) map[string]*manifest.Handler {
		m := make(map[string]*manifest.Handler)
		for _, h := range v.handlers {
			verb := normalizeVerb(h.PrimaryMethod())
			if _, ok := m[verb]; !ok {
				m[verb] = h
			}
		}
		return m
	}
	before, after := verbs(a), verbs(b)
	for _, verb := range sortedKeys(before) {
		old := before[verb]
		cur, ok := after[verb]
		if !ok {
			s.Request.Breaking = append(s.Request.Breaking, transformer.Change{
				Op:          transformer.OpRemove,
				Before:      verb,
				Description: fmt.Sprintf("%s %s removed", verb, path),
			})
			continue
		}
		merge(&s.Request, transformer.Diff(schemas[old.RequestSchema], schemas[cur.RequestSchema]))
		merge(&s.Response, transformer.Diff(schemas[old.ResponseSchema], schemas[cur.ResponseSchema]))
	}
	for _, verb := range sortedKeys(after) {
		if _, ok := before[verb]; !ok {
			s.Request.NonBreaking = append(s.Request.NonBreaking, transformer.Change{
				Op:          transformer.OpAdd,
				After:       verb,
				Description: fmt.Sprintf("%s %s added", verb, path),
			})
		}
	}
	return s
}

func normalizeVerb(verb string) string {
	return strings.ToUpper(verb)
}

func merge(dst *transformer.SchemaDiff, src transformer.SchemaDiff) {
	dst.Breaking = append(dst.Breaking, src.Breaking...)
	dst.NonBreaking = append(dst.NonBreaking, src.NonBreaking...)
}

// Graph returns the version graph of a set of steps: one node per
// (path, version), one edge per step, and a transformer record for every
// breaking edge. Paths with a single version contribute a node and no
// edge, so handlers is consulted for them.
func Graph(steps []Step, handlers []manifest.Handler) (manifest.VersionGraph, []manifest.TransformerRef) {
	g := manifest.VersionGraph{Nodes: []manifest.VersionNode{}, Edges: []manifest.VersionEdge{}}
	refs := []manifest.TransformerRef{}
	groups := group(handlers)
	for _, path := range sortedKeys(groups) {
		for _, v := range groups[path] {
			g.Nodes = append(g.Nodes, manifest.VersionNode{
				Version:      v.v.Raw,
				ResourcePath: path,
				HandlerID:    v.handlers[0].HandlerID,
			})
		}
	}
	for _, s := range steps {
		edge := manifest.VersionEdge{From: s.From, To: s.To, EdgeType: manifest.EdgeCompatible}
		if s.Breaking() {
			edge.EdgeType = manifest.EdgeBreaking
			ref := manifest.TransformerRef{
				FromVersion: s.From,
				ToVersion:   s.To,
				Path:        transformer.FilePath(s.From, s.To),
			}
			if !slices.Contains(refs, ref) {
				refs = append(refs, ref)
			}
		}
		g.Edges = append(g.Edges, edge)
	}
	return g, refs
}
