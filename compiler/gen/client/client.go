// Package client generates a typed TypeScript client with one method per
// (verb, path) pair of a handler set.
package client

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/compiler/gen/typescript"
	"github.com/syssam/timescape/internal/codewriter"
	"github.com/syssam/timescape/internal/naming"
	"github.com/syssam/timescape/manifest"
	"github.com/syssam/timescape/tsv"
)

// FileName is the conventional name of the generated client module.
const FileName = "client.ts"

// Config controls the generated client.
type Config struct {
	// ClassName defaults to "Client".
	ClassName string
	// Header is written verbatim as a line comment at the top of the file.
	Header string
	// TypesModule is the import path of the type declarations referenced by
	// request and response schemas. Defaults to "../types".
	TypesModule string
	// Auth adds a token option sent as a bearer authorization header.
	Auth bool
	// Timeout adds a timeoutMs option applied through AbortSignal.timeout.
	Timeout bool
}

// Method is one generated client method.
type Method struct {
	Name    string
	Verb    string
	Path    string
	Params  []Param
	Body    bool
	Handler *manifest.Handler
}

// Param is a path parameter and the argument that carries it.
type Param struct {
	Name string
	Arg  string
}

var prefixes = map[string]string{
	manifest.MethodGet:    "get",
	manifest.MethodPost:   "create",
	manifest.MethodPut:    "update",
	manifest.MethodPatch:  "patch",
	manifest.MethodDelete: "delete",
}

// HasBody reports whether calls with the verb carry a request payload.
func HasBody(verb string) bool {
	switch strings.ToUpper(verb) {
	case manifest.MethodPost, manifest.MethodPut, manifest.MethodPatch:
		return true
	default:
		return false
	}
}

// MethodName derives the method name of a (verb, path) pair: a verb prefix
// followed by the camel-cased non-parameter segments of the path.
//
//	GET  /users/:userId/posts  => getUsersPosts
//	POST /user-profiles        => createUserProfiles
func MethodName(verb, path string) string {
	prefix, ok := prefixes[strings.ToUpper(verb)]
	if !ok {
		prefix = "call"
	}
	var b strings.Builder
	b.WriteString(prefix)
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, ":") {
			continue
		}
		b.WriteString(naming.Pascal(seg))
	}
	return b.String()
}

// Methods resolves the method set of a handler set. Only the primary verb
// of a handler produces a method. Handlers sharing (verb, path) are
// resolved by version: the latest wins. Distinct paths that produce the
// same name are disambiguated with their path parameters ("ByUserID").
func Methods(handlers []manifest.Handler) ([]Method, error) {
	var errs []error
	for i := range handlers {
		if err := handlers[i].Check(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	type route struct{ verb, path string }
	latest := make(map[route]*manifest.Handler)
	var routes []route
	for i := range handlers {
		h := &handlers[i]
		r := route{strings.ToUpper(h.PrimaryMethod()), h.Path}
		prev, ok := latest[r]
		if !ok {
			latest[r] = h
			routes = append(routes, r)
			continue
		}
		switch c := tsv.Compare(tsv.MustParse(prev.Version), tsv.MustParse(h.Version)); {
		case c == 0:
			return nil, timescape.NewReferentialError("handler", h.HandlerID, prev.HandlerID,
				fmt.Sprintf("%s %s at version %s is also declared by handler %q", r.verb, r.path, h.Version, prev.HandlerID))
		case c < 0:
			latest[r] = h
		}
	}
	slices.SortFunc(routes, func(a, b route) int {
		return cmp.Or(cmp.Compare(a.path, b.path), cmp.Compare(a.verb, b.verb))
	})

	methods := make([]Method, len(routes))
	byName := make(map[string][]int)
	for i, r := range routes {
		h := latest[r]
		methods[i] = Method{
			Name:    MethodName(r.verb, r.path),
			Verb:    r.verb,
			Path:    r.path,
			Params:  params(h.PathParams()),
			Body:    HasBody(r.verb),
			Handler: h,
		}
		byName[methods[i].Name] = append(byName[methods[i].Name], i)
	}
	for _, idx := range byName {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			if len(methods[i].Params) > 0 {
				methods[i].Name += "By" + paramSuffix(methods[i].Params)
			}
		}
	}
	seen := make(map[string]*Method, len(methods))
	for i := range methods {
		m := &methods[i]
		if prev, ok := seen[m.Name]; ok {
			return nil, timescape.NewReferentialError("handler", m.Handler.HandlerID, prev.Handler.HandlerID,
				fmt.Sprintf("method %s is produced by both %s %s and %s %s", m.Name, prev.Verb, prev.Path, m.Verb, m.Path))
		}
		seen[m.Name] = m
	}
	return methods, nil
}

func paramSuffix(ps []Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = naming.Pascal(p.Name)
	}
	return strings.Join(parts, "And")
}

// reserved argument names used by every method.
var reserved = []string{"body", "query"}

func params(names []string) []Param {
	out := make([]Param, len(names))
	used := make(map[string]bool)
	for i, name := range names {
		arg := name
		if !naming.IsJSIdent(arg) {
			arg = naming.Camel(name)
		}
		if arg == "" || slices.Contains(reserved, arg) || used[arg] {
			arg += "Param"
		}
		for n := 2; used[arg]; n++ {
			arg = fmt.Sprintf("%sParam%d", naming.Camel(name), n)
		}
		used[arg] = true
		out[i] = Param{Name: name, Arg: arg}
	}
	return out
}

// Signature returns the parameter list of m.
func (m *Method) Signature() string {
	args := make([]string, 0, len(m.Params)+2)
	for _, p := range m.Params {
		args = append(args, p.Arg+": string")
	}
	if m.Body {
		args = append(args, "body: "+schemaType(m.Handler.RequestSchema))
	}
	args = append(args, "query?: Query")
	return strings.Join(args, ", ")
}

// URL returns the template literal that builds the request path.
func (m *Method) URL() string {
	var b strings.Builder
	b.WriteByte('`')
	segs := strings.Split(m.Path, "/")
	p := 0
	for i, seg := range segs {
		if i > 0 {
			b.WriteByte('/')
		}
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			fmt.Fprintf(&b, "${encodeURIComponent(%s)}", m.Params[p].Arg)
			p++
			continue
		}
		b.WriteString(escapeTemplate(seg))
	}
	b.WriteByte('`')
	return b.String()
}

func escapeTemplate(s string) string {
	return strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`).Replace(s)
}

func schemaType(name string) string {
	if name == "" {
		return "unknown"
	}
	return typescript.TypeName(name)
}

// Render returns the client module for a handler set.
func Render(handlers []manifest.Handler, cfg Config) (string, error) {
	methods, err := Methods(handlers)
	if err != nil {
		return "", err
	}
	className := cmp.Or(cfg.ClassName, "Client")
	if !naming.IsJSIdent(className) {
		return "", fmt.Errorf("client: invalid class name %q", className)
	}
	w := codewriter.New("  ")
	if cfg.Header != "" {
		w.Comment(cfg.Header)
		w.Line("")
	}
	if types := imports(methods); len(types) > 0 {
		w.Line("import type { %s } from %s;", strings.Join(types, ", "), codewriter.Quote(cmp.Or(cfg.TypesModule, "../types")))
		w.Line("")
	}
	w.Line("export type Query = Record<string, string | number | boolean | undefined>;")
	w.Line("")
	writeOptions(w, cfg)
	w.Line("")
	writeError(w)
	w.Line("")
	w.Block(fmt.Sprintf("export class %s {", className), "}", func() {
		w.Line("private readonly baseUrl: string;")
		w.Line("private readonly options: ClientOptions;")
		w.Line("")
		w.Block("constructor(baseUrl: string, options: ClientOptions = {}) {", "}", func() {
			w.Line(`this.baseUrl = baseUrl.endsWith("/") ? baseUrl.slice(0, -1) : baseUrl;`)
			w.Line("this.options = options;")
		})
		for i := range methods {
			w.Line("")
			writeMethod(w, &methods[i])
		}
		w.Line("")
		writeRequest(w, cfg)
	})
	return w.String(), nil
}

// imports returns the sorted type names referenced by the methods.
func imports(methods []Method) []string {
	var names []string
	for _, m := range methods {
		if m.Body && m.Handler.RequestSchema != "" {
			names = append(names, schemaType(m.Handler.RequestSchema))
		}
		if m.Handler.ResponseSchema != "" {
			names = append(names, schemaType(m.Handler.ResponseSchema))
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func writeOptions(w *codewriter.Writer, cfg Config) {
	w.Block("export interface ClientOptions {", "}", func() {
		if cfg.Auth {
			w.DocComment("Sent as a bearer token in the Authorization header.")
			w.Line("token?: string;")
		}
		if cfg.Timeout {
			w.DocComment("Aborts a request that takes longer, in milliseconds.")
			w.Line("timeoutMs?: number;")
		}
		w.Line("headers?: Record<string, string>;")
		w.Line("fetch?: typeof fetch;")
	})
}

func writeError(w *codewriter.Writer) {
	w.Block("export class ApiError extends Error {", "}", func() {
		w.Block("constructor(readonly status: number, readonly body: string) {", "}", func() {
			w.Line("super(`request failed with status ${status}`);")
			w.Line(`this.name = "ApiError";`)
		})
	})
}

func writeMethod(w *codewriter.Writer, m *Method) {
	h := m.Handler
	doc := fmt.Sprintf("%s %s (%s, %s)", m.Verb, m.Path, h.HandlerID, h.Version)
	if h.Description != "" {
		doc = h.Description + "\n\n" + doc
	}
	w.DocComment(doc)
	result := schemaType(h.ResponseSchema)
	body := "undefined"
	if m.Body {
		body = "body"
	}
	w.Block(fmt.Sprintf("async %s(%s): Promise<%s> {", m.Name, m.Signature(), result), "}", func() {
		w.Line("return this.request<%s>(%s, %s, %s, query);", result, codewriter.Quote(m.Verb), m.URL(), body)
	})
}

func writeRequest(w *codewriter.Writer, cfg Config) {
	w.Block("private async request<T>(method: string, path: string, body: unknown, query?: Query): Promise<T> {", "}", func() {
		w.Line("let url = this.baseUrl + path;")
		w.Line("const search = new URLSearchParams();")
		w.Block("for (const [key, value] of Object.entries(query ?? {})) {", "}", func() {
			w.Line("if (value !== undefined) search.append(key, String(value));")
		})
		w.Line("const qs = search.toString();")
		w.Line(`if (qs) url += "?" + qs;`)
		w.Line(`const headers: Record<string, string> = { "Content-Type": "application/json", ...this.options.headers };`)
		if cfg.Auth {
			w.Line("if (this.options.token) headers.Authorization = `Bearer ${this.options.token}`;")
		}
		w.Line("const init: RequestInit = { method, headers };")
		w.Line("if (body !== undefined) init.body = JSON.stringify(body);")
		if cfg.Timeout {
			w.Line("if (this.options.timeoutMs !== undefined) init.signal = AbortSignal.timeout(this.options.timeoutMs);")
		}
		w.Line("const response = await (this.options.fetch ?? fetch)(url, init);")
		w.Block("if (!response.ok) {", "}", func() {
			w.Line("throw new ApiError(response.status, await response.text());")
		})
		w.Line("if (response.status === 204) return undefined as T;")
		w.Line("return (await response.json()) as T;")
	})
}
