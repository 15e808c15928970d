package gen

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/timescape/compiler/gen/transformer"
)

// Write persists files under dir. Every file is written to a temporary
// file in its destination directory and renamed into place, so readers
// never observe a partial file. Transformer files that already exist are
// left untouched: once deployed they are edited by hand and immutable.
func Write(ctx context.Context, dir string, files map[string]string) error {
	if dir == "" {
		return NewConfigError("Target", nil, "target directory cannot be empty")
	}
	paths := slices.Sorted(maps.Keys(files))
	for _, p := range paths {
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			return NewGenerationError(PhaseWrite, p, "path escapes the target directory", nil)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			full := filepath.Join(dir, filepath.FromSlash(p))
			if Immutable(p) {
				if _, err := os.Stat(full); err == nil {
					return nil
				}
			}
			if err := writeFile(full, []byte(files[p])); err != nil {
				return NewGenerationError(PhaseWrite, p, "", err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// Immutable reports whether the generated path is never overwritten once
// it exists.
func Immutable(path string) bool {
	return strings.HasPrefix(path, transformer.Dir+"/")
}

// writeFile atomically replaces path with data.
func writeFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
