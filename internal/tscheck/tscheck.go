// Package tscheck performs a lexical sanity check of generated TypeScript:
// brackets balance and every string, template and comment is terminated.
// It does not parse the language.
package tscheck

import (
	"fmt"
	"strings"
)

// Balanced returns an error describing the first unbalanced delimiter or
// unterminated token in src. Regular-expression literals are not
// recognized; generated code builds expressions with new RegExp.
func Balanced(src string) error {
	var (
		stack []byte // '(', '[', '{', or '$' for a template substitution.
		line  = 1
	)
	closing := map[byte]byte{')': '(', ']': '[', '}': '{'}
	i := 0
	inTemplate := false
	for i < len(src) {
		c := src[i]
		if c == '\n' {
			line++
		}
		if inTemplate {
			switch {
			case c == '\\':
				i++
			case c == '`':
				inTemplate = false
			case c == '$' && i+1 < len(src) && src[i+1] == '{':
				stack = append(stack, '$')
				inTemplate = false
				i++
			}
			i++
			continue
		}
		switch c {
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
				continue
			}
			if i+1 < len(src) && src[i+1] == '*' {
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return fmt.Errorf("line %d: unterminated block comment", line)
				}
				end += i + 2
				line += strings.Count(src[i:end], "\n")
				i = end + 2
				continue
			}
		case '"', '\'':
			j := i + 1
			for ; j < len(src) && src[j] != c; j++ {
				if src[j] == '\\' {
					j++
				} else if src[j] == '\n' {
					return fmt.Errorf("line %d: unterminated string", line)
				}
			}
			if j >= len(src) {
				return fmt.Errorf("line %d: unterminated string", line)
			}
			i = j + 1
			continue
		case '`':
			inTemplate = true
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 {
				return fmt.Errorf("line %d: unexpected %q", line, c)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if c == '}' && top == '$' {
				inTemplate = true
				break
			}
			if top != closing[c] {
				return fmt.Errorf("line %d: %q closes %q", line, c, top)
			}
		}
		i++
	}
	if inTemplate {
		return fmt.Errorf("line %d: unterminated template literal", line)
	}
	if len(stack) > 0 {
		return fmt.Errorf("line %d: %d unclosed delimiter(s), innermost %q", line, len(stack), stack[len(stack)-1])
	}
	return nil
}
