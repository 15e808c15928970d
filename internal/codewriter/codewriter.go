// Package codewriter is a small line-oriented writer for generated
// TypeScript.
package codewriter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Writer accumulates indented lines. The zero value is ready to use and
// indents with two spaces.
type Writer struct {
	buf    bytes.Buffer
	indent int
	unit   string
}

// New returns a writer using unit as one indentation level.
func New(unit string) *Writer {
	return &Writer{unit: unit}
}

// Line writes one formatted line at the current indentation. An empty
// format writes a blank line.
func (w *Writer) Line(format string, args ...any) {
	if format == "" {
		w.buf.WriteByte('\n')
		return
	}
	unit := w.unit
	if unit == "" {
		unit = "  "
	}
	w.buf.WriteString(strings.Repeat(unit, w.indent))
	if len(args) > 0 {
		fmt.Fprintf(&w.buf, format, args...)
	} else {
		w.buf.WriteString(format)
	}
	w.buf.WriteByte('\n')
}

// Open writes a line and indents the following ones.
func (w *Writer) Open(format string, args ...any) {
	w.Line(format, args...)
	w.indent++
}

// Close dedents and writes a line.
func (w *Writer) Close(format string, args ...any) {
	if w.indent > 0 {
		w.indent--
	}
	w.Line(format, args...)
}

// Block writes open, calls body one level deeper and writes close.
func (w *Writer) Block(open, close string, body func()) {
	w.Open("%s", open)
	body()
	w.Close("%s", close)
}

// Comment writes a line comment for every line of text.
func (w *Writer) Comment(text string) {
	for _, l := range strings.Split(text, "\n") {
		w.Line("// %s", l)
	}
}

// DocComment writes a JSDoc block. Nothing is written for empty text.
func (w *Writer) DocComment(text string) {
	if text == "" {
		return
	}
	text = strings.ReplaceAll(text, "*/", "*\\/")
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		w.Line("/** %s */", lines[0])
		return
	}
	w.Line("/**")
	for _, l := range lines {
		w.Line(" * %s", l)
	}
	w.Line(" */")
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.buf.String()
}

// Literal renders a scalar as a TypeScript literal. JSON text is valid
// JavaScript for strings, numbers, booleans and null.
func Literal(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return "undefined"
	}
	return string(buf)
}

// Quote renders s as a TypeScript string literal.
func Quote(s string) string {
	return Literal(s)
}
