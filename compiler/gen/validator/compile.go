package validator

import (
	"net/url"
	"regexp"
	"slices"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/syssam/timescape/schema"
)

// Validator validates decoded values against one schema. Values follow the
// shape produced by a JSON decoder: map[string]any for records, []any for
// sequences, any Go numeric type (or json.Number) for numbers, nil for
// null and Undefined for an absent value.
//
// A Validator holds no mutable state and may be shared by goroutines.
type Validator struct {
	node  *schema.Node
	check checkFunc
}

type checkFunc func(v any, path []any, errs *Errors)

// Compile checks that n is well-formed and returns its validator.
func Compile(n *schema.Node) (*Validator, error) {
	if err := schema.Validate("", n); err != nil {
		return nil, err
	}
	return &Validator{node: n, check: compileNode(n)}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(n *schema.Node) *Validator {
	v, err := Compile(n)
	if err != nil {
		panic(err)
	}
	return v
}

// Schema returns the schema the validator was compiled from.
func (v *Validator) Schema() *schema.Node {
	return v.node
}

// Validate never fails: every problem found is reported in the result.
func (v *Validator) Validate(value any) Result {
	errs := Errors{}
	v.check(value, []any{}, &errs)
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func compileNode(n *schema.Node) checkFunc {
	body := compileKind(n)
	return func(v any, path []any, errs *Errors) {
		if n.Optional && IsUndefined(v) {
			return
		}
		if n.Nullable && v == nil {
			return
		}
		body(v, path, errs)
	}
}

func compileKind(n *schema.Node) checkFunc {
	switch n.Kind {
	case schema.KindPrimitive:
		return compilePrimitive(n)
	case schema.KindLiteral:
		return compileLiteral(n)
	case schema.KindObject:
		return compileObject(n)
	case schema.KindArray:
		return compileArray(n)
	case schema.KindTuple:
		return compileTuple(n)
	case schema.KindUnion:
		return compileUnion(n)
	case schema.KindIntersection:
		return compileIntersection(n)
	case schema.KindEnum:
		return compileEnum(n)
	default:
		// Unreachable after schema.Validate.
		panic("validator: unknown kind " + string(n.Kind))
	}
}

func typeError(n *schema.Node, v any, path []any) Error {
	return Error{
		Path:     path,
		Expected: n.String(),
		Actual:   v,
		Message:  typePrefix(n.String()) + typeOf(v),
		Code:     CodeInvalidType,
	}
}

func compilePrimitive(n *schema.Node) checkFunc {
	var match func(any) bool
	switch n.Primitive {
	case schema.TypeString:
		match = func(v any) bool { _, ok := v.(string); return ok }
	case schema.TypeNumber:
		match = func(v any) bool { _, ok := schema.ToFloat(v); return ok }
	case schema.TypeBoolean:
		match = func(v any) bool { _, ok := v.(bool); return ok }
	case schema.TypeNull:
		match = func(v any) bool { return v == nil }
	case schema.TypeUndefined:
		match = IsUndefined
	}
	checks := make([]func(v any, path []any, errs *Errors), len(n.Checks))
	for i, c := range n.Checks {
		checks[i] = compileCheck(c)
	}
	return func(v any, path []any, errs *Errors) {
		if !match(v) {
			errs.add(typeError(n, v, path))
			return
		}
		// Every failing check is reported.
		for _, c := range checks {
			c(v, path, errs)
		}
	}
}

func compileCheck(c schema.Check) func(v any, path []any, errs *Errors) {
	spec := describeCheck(c)
	var ok func(v any) bool
	switch c.Name {
	case schema.CheckMin:
		bound, _ := c.Bound()
		ok = func(v any) bool { f, _ := schema.ToFloat(v); return f >= bound }
	case schema.CheckMax:
		bound, _ := c.Bound()
		ok = func(v any) bool { f, _ := schema.ToFloat(v); return f <= bound }
	case schema.CheckMinLength:
		bound, _ := c.Bound()
		ok = func(v any) bool { return utf8.RuneCountInString(v.(string)) >= int(bound) }
	case schema.CheckMaxLength:
		bound, _ := c.Bound()
		ok = func(v any) bool { return utf8.RuneCountInString(v.(string)) <= int(bound) }
	case schema.CheckPattern:
		expr, _ := c.Pattern()
		re := regexp.MustCompile(expr)
		ok = func(v any) bool { return re.MatchString(v.(string)) }
	case schema.CheckEmail:
		ok = func(v any) bool { return emailRE.MatchString(v.(string)) }
	case schema.CheckURL:
		ok = func(v any) bool { return isURL(v.(string)) }
	case schema.CheckUUID:
		ok = func(v any) bool { return isUUID(v.(string)) }
	}
	return func(v any, path []any, errs *Errors) {
		if ok(v) {
			return
		}
		errs.add(Error{Path: path, Expected: spec.expected, Actual: v, Message: spec.message, Code: spec.code})
	}
}

func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// isUUID accepts the canonical 8-4-4-4-12 form only; uuid.Parse alone also
// accepts the braced, urn and undashed forms.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func compileLiteral(n *schema.Node) checkFunc {
	return func(v any, path []any, errs *Errors) {
		if IsUndefined(v) || !schema.IsScalar(v) || !schema.Equal(n.Value, v) {
			errs.add(Error{Path: path, Expected: n.String(), Actual: v, Message: literalMessage(n), Code: CodeInvalidLiteral})
		}
	}
}

func compileEnum(n *schema.Node) checkFunc {
	return func(v any, path []any, errs *Errors) {
		if IsUndefined(v) || !schema.IsScalar(v) || !slices.ContainsFunc(n.Values, func(x any) bool { return schema.Equal(x, v) }) {
			errs.add(Error{Path: path, Expected: n.String(), Actual: v, Message: enumMessage(n), Code: CodeInvalidEnum})
		}
	}
}

func compileObject(n *schema.Node) checkFunc {
	type prop struct {
		name  string
		check checkFunc
	}
	props := make([]prop, len(n.Properties))
	declared := make(map[string]bool, len(n.Properties))
	for i, p := range n.Properties {
		props[i] = prop{name: p.Name, check: compileNode(p.Schema)}
		declared[p.Name] = true
	}
	var required []*schema.Property
	for _, p := range n.Properties {
		if !n.PropertyOptional(p.Name) {
			required = append(required, p)
		}
	}
	return func(v any, path []any, errs *Errors) {
		rec, ok := v.(map[string]any)
		if !ok || rec == nil {
			errs.add(typeError(n, v, path))
			return
		}
		for _, p := range required {
			if x, ok := rec[p.Name]; !ok || IsUndefined(x) {
				errs.add(Error{
					Path:     appendPath(path, p.Name),
					Expected: p.Schema.String(),
					Actual:   Undefined,
					Message:  requiredMessage(p.Name),
					Code:     CodeRequired,
				})
			}
		}
		for _, p := range props {
			if x, ok := rec[p.name]; ok && !IsUndefined(x) {
				p.check(x, appendPath(path, p.name), errs)
			}
		}
		if n.Additional != schema.AdditionalForbid {
			return
		}
		var unknown []string
		for k := range rec {
			if !declared[k] {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			errs.add(Error{Path: appendPath(path, k), Expected: "never", Actual: rec[k], Message: unknownKeyMessage(k), Code: CodeUnknownKey})
		}
	}
}

func compileArray(n *schema.Node) checkFunc {
	item := compileNode(n.Items)
	return func(v any, path []any, errs *Errors) {
		seq, ok := v.([]any)
		if !ok {
			errs.add(typeError(n, v, path))
			return
		}
		if n.MinItems != nil && len(seq) < *n.MinItems {
			s := minItemsSpec(*n.MinItems)
			errs.add(Error{Path: path, Expected: s.expected, Actual: v, Message: s.message, Code: s.code})
		}
		if n.MaxItems != nil && len(seq) > *n.MaxItems {
			s := maxItemsSpec(*n.MaxItems)
			errs.add(Error{Path: path, Expected: s.expected, Actual: v, Message: s.message, Code: s.code})
		}
		for i, x := range seq {
			item(x, appendPath(path, i), errs)
		}
	}
}

func compileTuple(n *schema.Node) checkFunc {
	elems := make([]checkFunc, len(n.Elements))
	for i, e := range n.Elements {
		elems[i] = compileNode(e)
	}
	return func(v any, path []any, errs *Errors) {
		seq, ok := v.([]any)
		if !ok {
			errs.add(typeError(n, v, path))
			return
		}
		if len(seq) != len(elems) {
			errs.add(Error{Path: path, Expected: n.String(), Actual: v, Message: tupleMessage(len(elems)), Code: CodeInvalidTuple})
			return
		}
		for i, e := range elems {
			e(seq[i], appendPath(path, i), errs)
		}
	}
}

func compileUnion(n *schema.Node) checkFunc {
	members := make([]checkFunc, len(n.Members))
	for i, m := range n.Members {
		members[i] = compileNode(m)
	}
	return func(v any, path []any, errs *Errors) {
		for _, m := range members {
			if len(trial(m, v, path)) == 0 {
				return
			}
		}
		errs.add(Error{Path: path, Expected: n.String(), Actual: v, Message: unionMessage, Code: CodeInvalidUnion})
	}
}

// trial runs check against a scratch list so that a failed alternative
// never leaks errors into the caller's list.
func trial(check checkFunc, v any, path []any) Errors {
	var scratch Errors
	check(v, path, &scratch)
	return scratch
}

func compileIntersection(n *schema.Node) checkFunc {
	members := make([]checkFunc, len(n.Members))
	for i, m := range n.Members {
		members[i] = compileNode(m)
	}
	return func(v any, path []any, errs *Errors) {
		for _, m := range members {
			m(v, path, errs)
		}
	}
}

func appendPath(path []any, seg any) []any {
	return append(slices.Clip(path), seg)
}
