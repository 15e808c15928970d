package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/timescape/schema"
)

// Code classifies a validation error.
type Code string

// Validation error codes.
const (
	CodeInvalidType    Code = "invalid_type"
	CodeRequired       Code = "required"
	CodeUnknownKey     Code = "unknown_key"
	CodeTooSmall       Code = "too_small"
	CodeTooBig         Code = "too_big"
	CodeTooShort       Code = "too_short"
	CodeTooLong        Code = "too_long"
	CodePattern        Code = "pattern"
	CodeInvalidFormat  Code = "invalid_format"
	CodeInvalidLiteral Code = "invalid_literal"
	CodeInvalidEnum    Code = "invalid_enum"
	CodeInvalidUnion   Code = "invalid_union"
	CodeInvalidTuple   Code = "invalid_tuple"
)

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined is the absent value. A property missing from a record is
// treated the same as a property holding Undefined.
var Undefined any = undefinedValue{}

// IsUndefined reports whether v is the absent value.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// Error is a single validation failure.
type Error struct {
	// Path holds property names (string) and element indices (int) from
	// the root to the failing value.
	Path     []any  `json:"path"`
	Expected string `json:"expected"`
	Actual   any    `json:"actual"`
	Message  string `json:"message"`
	Code     Code   `json:"code"`
}

// Error implements the error interface.
func (e Error) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return FormatPath(e.Path) + ": " + e.Message
}

// Errors is a list of validation failures that implements error.
type Errors []Error

// Error summarizes the first few errors.
func (es Errors) Error() string {
	if len(es) == 0 {
		return ""
	}
	const maxShown = 3
	var b strings.Builder
	for i, e := range es {
		if i == maxShown {
			fmt.Fprintf(&b, "; ... (total %d)", len(es))
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

func (es *Errors) add(e Error) {
	*es = append(*es, e)
}

// Result is the outcome of validating one value.
type Result struct {
	Valid  bool   `json:"valid"`
	Errors Errors `json:"errors"`
}

// Err returns the errors as an error value, or nil when the value is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return r.Errors
}

// FormatPath renders a path as "users[0].name". The root path is empty.
func FormatPath(path []any) string {
	var b strings.Builder
	for _, p := range path {
		switch p := p.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(p) + "]")
		case string:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(p)
		default:
			fmt.Fprintf(&b, "[%v]", p)
		}
	}
	return b.String()
}

// typeOf names the runtime type of a decoded value the way the generated
// TypeScript helper of the same name does.
func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case undefinedValue:
		return "undefined"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := schema.ToFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
