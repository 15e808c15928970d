package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/timescape/internal/codewriter"
	"github.com/syssam/timescape/internal/naming"
	"github.com/syssam/timescape/schema"
)

// RuntimeFile is the name of the shared TypeScript module imported by
// every rendered validator.
const RuntimeFile = "validation.ts"

// Runtime returns the shared TypeScript types and helpers.
func Runtime() string {
	w := codewriter.New("  ")
	w.Line("export type Path = (string | number)[];")
	w.Line("")
	w.Block("export interface ValidationError {", "}", func() {
		w.Line("path: Path;")
		w.Line("expected: string;")
		w.Line("actual: unknown;")
		w.Line("message: string;")
		w.Line("code: string;")
	})
	w.Line("")
	w.Block("export interface ValidationResult {", "}", func() {
		w.Line("valid: boolean;")
		w.Line("errors: ValidationError[];")
	})
	w.Line("")
	w.Line("export type Check = (value: unknown, path: Path, errors: ValidationError[]) => void;")
	w.Line("")
	w.Line("export const EMAIL_PATTERN = new RegExp(%s);", codewriter.Quote(EmailPattern))
	w.Line("export const UUID_PATTERN = new RegExp(%s);", codewriter.Quote(UUIDPattern))
	w.Line("")
	w.Block("export function typeOf(value: unknown): string {", "}", func() {
		w.Line(`if (value === null) return "null";`)
		w.Line(`if (Array.isArray(value)) return "array";`)
		w.Line("return typeof value;")
	})
	w.Line("")
	w.Block("export function isRecord(value: unknown): value is Record<string, unknown> {", "}", func() {
		w.Line(`return typeof value === "object" && value !== null && !Array.isArray(value);`)
	})
	w.Line("")
	w.Block("export function isURL(value: string): boolean {", "}", func() {
		w.Block("try {", "}", func() {
			w.Line("const url = new URL(value);")
			w.Line(`return url.protocol !== "" && url.host !== "";`)
		})
		w.Block("catch {", "}", func() {
			w.Line("return false;")
		})
	})
	w.Line("")
	w.Block("export function length(value: string): number {", "}", func() {
		w.Line("return [...value].length;")
	})
	w.Line("")
	w.DocComment("trial runs a check against a scratch list and reports whether it passed.")
	w.Block("export function trial(check: Check, value: unknown, path: Path): boolean {", "}", func() {
		w.Line("const scratch: ValidationError[] = [];")
		w.Line("check(value, path, scratch);")
		w.Line("return scratch.length === 0;")
	})
	return w.String()
}

// FuncName returns the exported validator function name for a schema.
func FuncName(name string) string {
	return "validate" + naming.Pascal(name)
}

// Render returns a TypeScript module exporting validate<Name>, built
// from one check function per schema node.
func Render(name string, n *schema.Node) (string, error) {
	if err := schema.Validate(name, n); err != nil {
		return "", err
	}
	r := &renderer{}
	root := r.node(n)

	w := codewriter.New("  ")
	w.Line(`import { %s } from "./%s";`, r.imports(), strings.TrimSuffix(RuntimeFile, ".ts"))
	w.Line("")
	w.DocComment(n.Description)
	w.Block(fmt.Sprintf("export function %s(value: unknown): ValidationResult {", FuncName(name)), "}", func() {
		w.Line("const errors: ValidationError[] = [];")
		w.Line("%s(value, [], errors);", root)
		w.Line("return { valid: errors.length === 0, errors };")
	})
	for _, body := range r.funcs {
		w.Line("")
		for _, l := range strings.Split(strings.TrimSuffix(body, "\n"), "\n") {
			w.Line("%s", l)
		}
	}
	return w.String(), nil
}

type renderer struct {
	funcs []string
	uses  map[string]bool
}

func (r *renderer) use(helper string) {
	if r.uses == nil {
		r.uses = make(map[string]bool)
	}
	r.uses[helper] = true
}

// imports lists the runtime helpers referenced by the rendered checks.
func (r *renderer) imports() string {
	names := []string{"Path", "ValidationError", "ValidationResult"}
	for _, h := range []string{"EMAIL_PATTERN", "UUID_PATTERN", "isRecord", "isURL", "length", "trial", "typeOf"} {
		if r.uses[h] {
			names = append(names, h)
		}
	}
	return strings.Join(names, ", ")
}

// node renders n and its descendants and returns the name of n's check
// function.
func (r *renderer) node(n *schema.Node) string {
	id := len(r.funcs)
	name := "check" + strconv.Itoa(id)
	r.funcs = append(r.funcs, "")

	w := codewriter.New("  ")
	w.Block(fmt.Sprintf("function %s(value: unknown, path: Path, errors: ValidationError[]): void {", name), "}", func() {
		if n.Optional {
			w.Line("if (value === undefined) return;")
		}
		if n.Nullable {
			w.Line("if (value === null) return;")
		}
		r.kind(w, n)
	})
	r.funcs[id] = w.String()
	return name
}

func push(w *codewriter.Writer, path, expected, actual, message string, code Code) {
	w.Line("errors.push({ path: %s, expected: %s, actual: %s, message: %s, code: %s });",
		path, codewriter.Quote(expected), actual, message, codewriter.Quote(string(code)))
}

func (r *renderer) pushType(w *codewriter.Writer, n *schema.Node) {
	r.use("typeOf")
	push(w, "path", n.String(), "value", codewriter.Quote(typePrefix(n.String()))+" + typeOf(value)", CodeInvalidType)
}

func (r *renderer) kind(w *codewriter.Writer, n *schema.Node) {
	switch n.Kind {
	case schema.KindPrimitive:
		r.primitive(w, n)
	case schema.KindLiteral:
		w.Block(fmt.Sprintf("if (value !== %s) {", codewriter.Literal(schema.Normalize(n.Value))), "}", func() {
			push(w, "path", n.String(), "value", codewriter.Quote(literalMessage(n)), CodeInvalidLiteral)
		})
	case schema.KindEnum:
		values := make([]string, len(n.Values))
		for i, v := range n.Values {
			values[i] = codewriter.Literal(schema.Normalize(v))
		}
		w.Line("const allowed: unknown[] = [%s];", strings.Join(values, ", "))
		w.Block("if (!allowed.includes(value)) {", "}", func() {
			push(w, "path", n.String(), "value", codewriter.Quote(enumMessage(n)), CodeInvalidEnum)
		})
	case schema.KindObject:
		r.object(w, n)
	case schema.KindArray:
		item := r.node(n.Items)
		w.Block("if (!Array.isArray(value)) {", "}", func() {
			r.pushType(w, n)
			w.Line("return;")
		})
		if n.MinItems != nil {
			s := minItemsSpec(*n.MinItems)
			w.Block(fmt.Sprintf("if (value.length < %d) {", *n.MinItems), "}", func() {
				push(w, "path", s.expected, "value", codewriter.Quote(s.message), s.code)
			})
		}
		if n.MaxItems != nil {
			s := maxItemsSpec(*n.MaxItems)
			w.Block(fmt.Sprintf("if (value.length > %d) {", *n.MaxItems), "}", func() {
				push(w, "path", s.expected, "value", codewriter.Quote(s.message), s.code)
			})
		}
		w.Line("value.forEach((item: unknown, i: number) => %s(item, [...path, i], errors));", item)
	case schema.KindTuple:
		elems := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = r.node(e)
		}
		w.Block("if (!Array.isArray(value)) {", "}", func() {
			r.pushType(w, n)
			w.Line("return;")
		})
		w.Block(fmt.Sprintf("if (value.length !== %d) {", len(elems)), "}", func() {
			push(w, "path", n.String(), "value", codewriter.Quote(tupleMessage(len(elems))), CodeInvalidTuple)
			w.Line("return;")
		})
		for i, e := range elems {
			w.Line("%s(value[%d], [...path, %d], errors);", e, i, i)
		}
	case schema.KindUnion:
		members := make([]string, len(n.Members))
		for i, m := range n.Members {
			members[i] = r.node(m)
		}
		w.Block(fmt.Sprintf("for (const member of [%s]) {", strings.Join(members, ", ")), "}", func() {
			w.Line("if (trial(member, value, path)) return;")
			r.use("trial")
		})
		push(w, "path", n.String(), "value", codewriter.Quote(unionMessage), CodeInvalidUnion)
	case schema.KindIntersection:
		members := make([]string, len(n.Members))
		for i, m := range n.Members {
			members[i] = r.node(m)
		}
		for _, m := range members {
			w.Line("%s(value, path, errors);", m)
		}
	}
}

func (r *renderer) primitive(w *codewriter.Writer, n *schema.Node) {
	var cond string
	switch n.Primitive {
	case schema.TypeString:
		cond = `typeof value !== "string"`
	case schema.TypeNumber:
		cond = `typeof value !== "number"`
	case schema.TypeBoolean:
		cond = `typeof value !== "boolean"`
	case schema.TypeNull:
		cond = "value !== null"
	case schema.TypeUndefined:
		cond = "value !== undefined"
	}
	w.Block(fmt.Sprintf("if (%s) {", cond), "}", func() {
		r.pushType(w, n)
		w.Line("return;")
	})
	for _, c := range n.Checks {
		var fail string
		switch c.Name {
		case schema.CheckMin:
			b, _ := c.Bound()
			fail = "value < " + codewriter.Literal(b)
		case schema.CheckMax:
			b, _ := c.Bound()
			fail = "value > " + codewriter.Literal(b)
		case schema.CheckMinLength:
			b, _ := c.Bound()
			fail = fmt.Sprintf("length(value) < %d", int(b))
			r.use("length")
		case schema.CheckMaxLength:
			b, _ := c.Bound()
			fail = fmt.Sprintf("length(value) > %d", int(b))
			r.use("length")
		case schema.CheckPattern:
			p, _ := c.Pattern()
			fail = fmt.Sprintf("!new RegExp(%s).test(value)", codewriter.Quote(p))
		case schema.CheckEmail:
			fail = "!EMAIL_PATTERN.test(value)"
			r.use("EMAIL_PATTERN")
		case schema.CheckURL:
			fail = "!isURL(value)"
			r.use("isURL")
		case schema.CheckUUID:
			fail = "!UUID_PATTERN.test(value)"
			r.use("UUID_PATTERN")
		}
		s := describeCheck(c)
		w.Block(fmt.Sprintf("if (%s) {", fail), "}", func() {
			push(w, "path", s.expected, "value", codewriter.Quote(s.message), s.code)
		})
	}
}

func (r *renderer) object(w *codewriter.Writer, n *schema.Node) {
	props := make([]string, len(n.Properties))
	for i, p := range n.Properties {
		props[i] = r.node(p.Schema)
	}
	r.use("isRecord")
	w.Block("if (!isRecord(value)) {", "}", func() {
		r.pushType(w, n)
		w.Line("return;")
	})
	for _, p := range n.Properties {
		if n.PropertyOptional(p.Name) {
			continue
		}
		key := codewriter.Quote(p.Name)
		w.Block(fmt.Sprintf("if (value[%s] === undefined) {", key), "}", func() {
			push(w, fmt.Sprintf("[...path, %s]", key), p.Schema.String(), "undefined", codewriter.Quote(requiredMessage(p.Name)), CodeRequired)
		})
	}
	for i, p := range n.Properties {
		key := codewriter.Quote(p.Name)
		w.Block(fmt.Sprintf("if (value[%s] !== undefined) {", key), "}", func() {
			w.Line("%s(value[%s], [...path, %s], errors);", props[i], key, key)
		})
	}
	if n.Additional != schema.AdditionalForbid {
		return
	}
	known := make([]string, len(n.Properties))
	for i, p := range n.Properties {
		known[i] = codewriter.Quote(p.Name)
	}
	w.Line("const known: string[] = [%s];", strings.Join(known, ", "))
	w.Block("for (const key of Object.keys(value).sort()) {", "}", func() {
		w.Block("if (!known.includes(key)) {", "}", func() {
			push(w, "[...path, key]", "never", "value[key]", `"Unrecognized property \"" + key + "\""`, CodeUnknownKey)
		})
	})
}
