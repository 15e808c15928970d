package manifest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format of a bundle or descriptor document.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf infers the format from a file name, defaulting to JSON.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode writes v in the given format. JSON output is indented with two
// spaces and ends with a newline.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("manifest: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("manifest: encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("manifest: unknown format %q", f)
	}
}

// Decode reads a document in the given format into v.
func Decode(data []byte, f Format, v any) error {
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("manifest: decode yaml: %w", err)
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("manifest: decode json: %w", err)
		}
	default:
		return fmt.Errorf("manifest: unknown format %q", f)
	}
	return nil
}

// MarshalBundle returns the JSON form of b.
func MarshalBundle(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatJSON, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBundle parses a bundle document.
func UnmarshalBundle(data []byte, f Format) (*Bundle, error) {
	b := &Bundle{}
	if err := Decode(data, f, b); err != nil {
		return nil, err
	}
	return b, nil
}
