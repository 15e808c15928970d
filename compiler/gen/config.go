package gen

import (
	"crypto/ed25519"
	"errors"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/timescape/manifest"
)

// DefaultHeader is written at the top of every generated file.
const DefaultHeader = "Code generated by timescape. DO NOT EDIT."

// Config holds the global generation options.
type Config struct {
	// Target is the output directory used by Write and Cleanup.
	Target string

	// Header is the comment written at the top of each generated file.
	Header string

	// Features enabled for this run.
	Features []Feature

	// Workers bounds the number of files rendered concurrently.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// Logger receives per-file debug entries and a summary. Nil disables
	// logging.
	Logger *zap.Logger

	// Clock supplies the generation time recorded in transformers and
	// the bundle. Nil means time.Now.
	Clock func() time.Time

	// BundleVersion is the manifest bundle format version.
	BundleVersion string

	// Project is attached to the bundle when FeatureBundleMetadata is on.
	Project manifest.Metadata

	// ClientName is the class name of the generated client.
	ClientName string

	// GoPackage is the package clause of the Go declarations.
	GoPackage string

	// SigningKey signs the bundle when FeatureBundleSign is on.
	SigningKey ed25519.PrivateKey
}

// FeatureEnabled reports whether the named feature is enabled. An error is
// returned for names that are not registered features.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	if _, err := FeatureByName(name); err != nil {
		return false, err
	}
	for _, f := range c.Features {
		if f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// enabled is FeatureEnabled for features known to be registered.
func (c *Config) enabled(f Feature) bool {
	ok, _ := c.FeatureEnabled(f.Name)
	return ok
}

// Cleanup removes, under dir, the output of features that are turned off.
func (c *Config) Cleanup(dir string) error {
	var errs []error
	for _, f := range AllFeatures {
		if f.cleanup == nil || c.enabled(f) {
			continue
		}
		if err := f.cleanup(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Config) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock()
}

func (c *Config) workers() int {
	if c.Workers < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

func (c *Config) header() string {
	if c.Header == "" {
		return DefaultHeader
	}
	return c.Header
}

func (c *Config) goPackage() string {
	if c.GoPackage == "" {
		return "types"
	}
	return c.GoPackage
}
