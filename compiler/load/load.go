// Package load reads schema, handler and module sources from YAML or JSON
// documents into a generation input.
package load

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/compiler/gen"
	"github.com/syssam/timescape/manifest"
	"github.com/syssam/timescape/schema"
)

// Source is one source document. Every section is optional, so a project
// may keep schemas, handlers and modules in separate files.
type Source struct {
	Schemas map[string]*schema.Node `json:"schemas,omitempty" yaml:"schemas,omitempty"`
	// Brands names schemas declared as branded types.
	Brands   []string           `json:"brands,omitempty" yaml:"brands,omitempty"`
	Handlers []manifest.Handler `json:"handlers,omitempty" yaml:"handlers,omitempty"`
	Modules  []manifest.Module  `json:"modules,omitempty" yaml:"modules,omitempty"`
}

// IsSource reports whether path has a source file extension.
func IsSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// File reads one source document. The format follows the extension.
func File(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src := &Source{}
	if err := manifest.Decode(data, manifest.FormatOf(path), src); err != nil {
		return nil, timescape.NewDescriptorError("source", path, "", "", err)
	}
	return src, nil
}

// Files returns the source files under dir in lexical order. Hidden
// entries and the directories listed in skip are not visited.
func Files(dir string, skip ...string) ([]string, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		if s == "" {
			continue
		}
		abs, err := filepath.Abs(s)
		if err != nil {
			return nil, err
		}
		skipped[abs] = true
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if skipped[abs] {
				return filepath.SkipDir
			}
			return nil
		}
		if IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load: walk %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}

// Dir reads and merges every source file under dir. See Files for the
// meaning of skip.
func Dir(dir string, skip ...string) (*gen.Input, error) {
	files, err := Files(dir, skip...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load: no source files in %s", dir)
	}
	sources := make(map[string]*Source, len(files))
	var errs []error
	for _, f := range files {
		src, err := File(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sources[f] = src
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return Merge(files, sources)
}

// Merge combines sources in the given order. A schema declared by two
// sources is an error; handlers and modules are concatenated and checked
// for duplicates by the bundle.
func Merge(order []string, sources map[string]*Source) (*gen.Input, error) {
	in := &gen.Input{Schemas: make(map[string]*schema.Node)}
	declared := make(map[string]string)
	var errs []error
	for _, name := range order {
		src, ok := sources[name]
		if !ok {
			continue
		}
		for _, s := range sortedKeys(src.Schemas) {
			if prev, ok := declared[s]; ok {
				errs = append(errs, timescape.NewReferentialError("schema", s, prev,
					fmt.Sprintf("schema %q declared in both %s and %s", s, prev, name)))
				continue
			}
			declared[s] = name
			in.Schemas[s] = src.Schemas[s]
		}
		for _, b := range src.Brands {
			if !slices.Contains(in.Brands, b) {
				in.Brands = append(in.Brands, b)
			}
		}
		in.Handlers = append(in.Handlers, src.Handlers...)
		in.Modules = append(in.Modules, src.Modules...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return in, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
