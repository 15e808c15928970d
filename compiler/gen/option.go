package gen

import (
	"crypto/ed25519"
	"errors"
	"go/token"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/timescape/internal/naming"
)

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithFeatures enables specific features.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		for _, f := range features {
			if _, err := FeatureByName(f.Name); err != nil {
				return err
			}
			if !c.enabled(f) {
				c.Features = append(c.Features, f)
			}
		}
		return nil
	}
}

// WithFeatureNames enables features by name, as read from a config file.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			f, err := FeatureByName(name)
			if err != nil {
				return err
			}
			if err := WithFeatures(f)(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithWorkers sets the number of files rendered in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "must be at least 1")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger used by Generate.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithClock sets the source of the generation time.
func WithClock(now func() time.Time) Option {
	return func(c *Config) error {
		if now == nil {
			return NewConfigError("Clock", nil, "clock cannot be nil")
		}
		c.Clock = now
		return nil
	}
}

// WithBundleVersion sets the bundle format version.
func WithBundleVersion(v string) Option {
	return func(c *Config) error {
		if v == "" {
			return NewConfigError("BundleVersion", nil, "bundle version cannot be empty")
		}
		c.BundleVersion = v
		return nil
	}
}

// WithProject sets the project metadata attached to the bundle.
func WithProject(name, environment string) Option {
	return func(c *Config) error {
		c.Project.ProjectName = name
		c.Project.Environment = environment
		return nil
	}
}

// WithClientName sets the class name of the generated client.
func WithClientName(name string) Option {
	return func(c *Config) error {
		if !naming.IsJSIdent(name) {
			return NewConfigError("ClientName", name, "not a valid TypeScript identifier")
		}
		c.ClientName = name
		return nil
	}
}

// WithGoPackage sets the package name of the generated Go declarations.
func WithGoPackage(pkg string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(pkg) {
			return NewConfigError("GoPackage", pkg, "not a valid Go package name")
		}
		c.GoPackage = pkg
		return nil
	}
}

// WithSigningKey sets the ed25519 key used to sign the bundle.
func WithSigningKey(key ed25519.PrivateKey) Option {
	return func(c *Config) error {
		if len(key) != ed25519.PrivateKeySize {
			return NewConfigError("SigningKey", len(key), "ed25519 private key must be 64 bytes")
		}
		c.SigningKey = key
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the default features and the given
// options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{Header: DefaultHeader}
	for _, f := range AllFeatures {
		if f.Default {
			c.Features = append(c.Features, f)
		}
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
