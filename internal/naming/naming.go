// Package naming converts schema, property and path names into identifiers
// for the generated targets.
package naming

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	mu       sync.RWMutex
	rules    = ruleset()
	acronyms = set(
		"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP",
		"HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA",
		"SMTP", "SQL", "SSH", "TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI",
		"URL", "UTF8", "UUID", "VM", "XML", "XMPP", "XSRF", "XSS",
	)
)

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	for _, w := range []string{"data", "metadata", "status", "series"} {
		r.AddUncountable(w)
	}
	return r
}

// AddAcronym registers a word that Pascal and Camel keep upper-cased.
func AddAcronym(word string) {
	mu.Lock()
	defer mu.Unlock()
	acronyms[strings.ToUpper(word)] = struct{}{}
	rules.AddAcronym(strings.ToUpper(word))
}

func isAcronym(w string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := acronyms[strings.ToUpper(w)]
	return ok
}

// Words splits s on every rune that is not a letter or digit, and on
// lower-to-upper case transitions, so "user_id", "user-id", "userId" and
// "user id" all yield ["user", "id"].
func Words(s string) []string {
	var words []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words = append(words, strings.Split(Snake(part), "_")...)
	}
	return words
}

// Pascal returns s in PascalCase, upper-casing known acronyms.
//
//	user_info => UserInfo
//	api_url   => APIURL
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		if isAcronym(w) {
			b.WriteString(strings.ToUpper(w))
			continue
		}
		// Casers are stateful and must not be shared across goroutines.
		b.WriteString(cases.Title(language.English, cases.NoLower).String(w))
	}
	return b.String()
}

// Camel returns s in camelCase. The first word is lower-cased entirely.
//
//	user_info => userInfo
//	http_code => httpCode
func Camel(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	first := strings.ToLower(words[0])
	if len(words) == 1 {
		return first
	}
	return first + Pascal(strings.Join(words[1:], "_"))
}

// Snake converts a camel or Pascal cased name to snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
func Snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	rs := []rune(s)
	for i, r := range rs {
		// Start a new word on a lower-to-upper transition ("userInfo"), or on
		// the last capital of an acronym followed by a lower-case letter
		// ("HTTPCode").
		if i > 0 && i < len(rs)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rs[i-1]) ||
				j != i-1 && unicode.IsLower(rs[i+1]) && unicode.IsLetter(rs[i-1]) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Singular returns the singular form of the last word of s, keeping the
// original casing of the rest.
func Singular(s string) string {
	mu.RLock()
	defer mu.RUnlock()
	return rules.Singularize(s)
}

// GoIdent returns an exported Go identifier for name.
func GoIdent(name string) string {
	id := Pascal(name)
	if id == "" {
		return "X"
	}
	if unicode.IsDigit([]rune(id)[0]) {
		return "X" + id
	}
	return id
}

// IsJSIdent reports whether s can be used as a bare TypeScript property
// name.
func IsJSIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
