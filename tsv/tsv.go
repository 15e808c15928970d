// Package tsv parses and orders Timescape Version identifiers.
//
// A TSV has the form
//
//	tsv:<epoch>-<resource>-<seq>
//
// where epoch is a non-negative integer timestamp, resource is a free-form
// discriminator (it may itself contain dashes) and seq is a non-negative
// integer that orders versions sharing a timestamp.
package tsv

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Prefix starts every version identifier.
const Prefix = "tsv:"

// ErrMalformed is wrapped by every parse error.
var ErrMalformed = errors.New("malformed version identifier")

// Version is a parsed Timescape Version.
type Version struct {
	Raw       string
	Timestamp int64
	Resource  string
	Seq       int64
}

// Parse parses a version identifier.
func Parse(s string) (Version, error) {
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return Version{}, fmt.Errorf("%w %q: missing %q prefix", ErrMalformed, s, Prefix)
	}
	first := strings.IndexByte(rest, '-')
	last := strings.LastIndexByte(rest, '-')
	if first <= 0 || last == first || last == len(rest)-1 {
		return Version{}, fmt.Errorf("%w %q: want %s<epoch>-<resource>-<seq>", ErrMalformed, s, Prefix)
	}
	ts, err := strconv.ParseInt(rest[:first], 10, 64)
	if err != nil || ts < 0 {
		return Version{}, fmt.Errorf("%w %q: invalid timestamp %q", ErrMalformed, s, rest[:first])
	}
	seq, err := strconv.ParseInt(rest[last+1:], 10, 64)
	if err != nil || seq < 0 {
		return Version{}, fmt.Errorf("%w %q: invalid sequence %q", ErrMalformed, s, rest[last+1:])
	}
	return Version{
		Raw:       s,
		Timestamp: ts,
		Resource:  rest[first+1 : last],
		Seq:       seq,
	}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// New formats a version identifier.
func New(timestamp int64, resource string, seq int64) string {
	return fmt.Sprintf("%s%d-%s-%d", Prefix, timestamp, resource, seq)
}

// String returns the raw identifier.
func (v Version) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return New(v.Timestamp, v.Resource, v.Seq)
}

// Compare orders versions by timestamp, then sequence, then resource and
// finally the raw text, so that distinct identifiers never compare equal.
func Compare(a, b Version) int {
	return cmp.Or(
		cmp.Compare(a.Timestamp, b.Timestamp),
		cmp.Compare(a.Seq, b.Seq),
		cmp.Compare(a.Resource, b.Resource),
		cmp.Compare(a.String(), b.String()),
	)
}

// Before reports whether a is ordered before b.
func (v Version) Before(o Version) bool {
	return Compare(v, o) < 0
}

// FileName turns an identifier into a string safe to use in file names.
func FileName(raw string) string {
	return strings.NewReplacer(":", "_", "/", "_", `\`, "_").Replace(raw)
}
