// Package transformer computes schema diffs between consecutive versions
// and renders the migration skeletons that bridge them.
//
// A skeleton copies its input unchanged and lists one placeholder per
// breaking change. Completing the migration is left to a person; once
// deployed the file is immutable.
package transformer

import (
	"fmt"
	"strings"
	"time"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/internal/codewriter"
	"github.com/syssam/timescape/schema"
	"github.com/syssam/timescape/tsv"
)

// Dir is the output directory of transformer files.
const Dir = "transformers"

// FilePath returns the conventional relative path of the transformer
// between two versions.
//
//	tsv:1000-users-0, tsv:2000-users-0 => transformers/tsv_1000-users-0__tsv_2000-users-0.ts
func FilePath(from, to string) string {
	return Dir + "/" + tsv.FileName(from) + "__" + tsv.FileName(to) + ".ts"
}

// Input is what a transformer file is rendered from.
type Input struct {
	From, To string
	// Request and Response hold the diffs of the two message shapes.
	Request  SchemaDiff
	Response SchemaDiff
	// GeneratedAt is recorded in the file; it is passed in so that
	// rendering stays reproducible.
	GeneratedAt time.Time
	// Header is written as a line comment at the top of the file.
	Header string
}

// Direction of a migration function.
type direction int

const (
	forward direction = iota
	backward
)

func (d direction) String() string {
	if d == forward {
		return "forward"
	}
	return "backward"
}

// Render returns the transformer module for in: forwardRequest,
// backwardRequest, forwardResponse and backwardResponse, plus a descriptor
// object grouping them.
func Render(in Input) (string, error) {
	from, err := tsv.Parse(in.From)
	if err != nil {
		return "", timescape.NewDescriptorError("transformer", in.From, "fromVersion", "", err)
	}
	to, err := tsv.Parse(in.To)
	if err != nil {
		return "", timescape.NewDescriptorError("transformer", in.To, "toVersion", "", err)
	}
	if !from.Before(to) {
		return "", timescape.NewDescriptorError("transformer", in.From, "toVersion",
			fmt.Sprintf("%s is not ordered after %s", in.To, in.From), nil)
	}

	w := codewriter.New("  ")
	if in.Header != "" {
		w.Comment(in.Header)
		w.Line("")
	}
	w.DocComment(fmt.Sprintf("Migrations between %s and %s.\n\n@immutable Do not edit once deployed; add a new version instead.", in.From, in.To))
	w.Line("export const fromVersion = %s;", codewriter.Quote(in.From))
	w.Line("export const toVersion = %s;", codewriter.Quote(in.To))
	w.Line("export const immutable = true;")
	w.Line("export const generatedAt = %s;", codewriter.Quote(in.GeneratedAt.UTC().Format(time.RFC3339)))
	for _, shape := range []struct {
		name string
		diff SchemaDiff
	}{
		{"Request", in.Request},
		{"Response", in.Response},
	} {
		for _, dir := range []direction{forward, backward} {
			w.Line("")
			writeFunc(w, dir, shape.name, shape.diff, in)
		}
	}
	w.Line("")
	w.Block("export const transformer = {", "};", func() {
		w.Line("fromVersion,")
		w.Line("toVersion,")
		w.Line("immutable,")
		w.Line("forward: { request: forwardRequest, response: forwardResponse },")
		w.Line("backward: { request: backwardRequest, response: backwardResponse },")
	})
	return w.String(), nil
}

func writeFunc(w *codewriter.Writer, dir direction, shape string, diff SchemaDiff, in Input) {
	src, dst := in.From, in.To
	if dir == backward {
		src, dst = in.To, in.From
	}
	w.DocComment(fmt.Sprintf("Converts a %s %s into its %s shape.", src, strings.ToLower(shape), dst))
	w.Block(fmt.Sprintf("export function %s%s(input: unknown): unknown {", dir, shape), "}", func() {
		w.Line("const output = structuredClone(input);")
		for _, c := range diff.Breaking {
			w.Comment("TODO(transform): " + Placeholder(dir == forward, c))
		}
		w.Line("return output;")
	})
}

// Placeholder describes the hand edit a breaking change requires in one
// direction. Added fields are populated going forward and dropped going
// backward; removed fields the reverse; modified values are transformed
// both ways.
func Placeholder(forward bool, c Change) string {
	at := location(c.Path)
	var s string
	switch {
	case c.Op == OpAdd && forward, c.Op == OpRemove && !forward:
		s = "populate " + at
	case c.Op == OpAdd, c.Op == OpRemove:
		s = "remove " + at
	default:
		s = "transform the value at " + at
		if c.Before != nil || c.After != nil {
			before, after := c.Before, c.After
			if !forward {
				before, after = after, before
			}
			s += fmt.Sprintf(" from %s to %s", describe(before), describe(after))
		}
	}
	if c.Description != "" {
		s += " (" + c.Description + ")"
	}
	return strings.Join(strings.Fields(s), " ")
}

func location(path string) string {
	if path == "" {
		return "the root value"
	}
	return codewriter.Quote(path)
}

func describe(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil || schema.IsScalar(v) {
		return schema.FormatValue(v)
	}
	return fmt.Sprint(v)
}
