package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/syssam/timescape/compiler/gen"
	"github.com/syssam/timescape/compiler/gen/bundle"
)

// Config is the content of timescape.yaml.
type Config struct {
	Source   string        `mapstructure:"source"`
	Output   string        `mapstructure:"output"`
	Header   string        `mapstructure:"header"`
	Features []string      `mapstructure:"features"`
	Workers  int           `mapstructure:"workers"`
	Project  ProjectConfig `mapstructure:"project"`
	Bundle   BundleConfig  `mapstructure:"bundle"`
	Client   ClientConfig  `mapstructure:"client"`
	Go       GoConfig      `mapstructure:"go"`
}

// ProjectConfig is attached to the bundle with the bundle/metadata feature.
type ProjectConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// BundleConfig configures the manifest bundle.
type BundleConfig struct {
	Version string `mapstructure:"version"`
	// SigningKey is a base64 ed25519 seed or private key. It is usually
	// supplied through TIMESCAPE_BUNDLE_SIGNING_KEY.
	SigningKey string `mapstructure:"signing_key"`
}

// ClientConfig configures the generated client.
type ClientConfig struct {
	Name string `mapstructure:"name"`
}

// GoConfig configures the Go declarations of the go/types feature.
type GoConfig struct {
	Package string `mapstructure:"package"`
}

// loadConfig reads the config file, if any, and applies TIMESCAPE_*
// environment variables and the flags bound to keys.
func loadConfig(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("source", "schemas")
	v.SetDefault("output", "generated")
	v.SetDefault("header", gen.DefaultHeader)
	v.SetDefault("features", []string{})
	v.SetDefault("workers", 0)
	v.SetDefault("project.name", "")
	v.SetDefault("project.environment", "")
	v.SetDefault("bundle.version", bundle.DefaultVersion)
	v.SetDefault("bundle.signing_key", "")
	v.SetDefault("client.name", "Client")
	v.SetDefault("go.package", "types")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("timescape")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TIMESCAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{"source", "output"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Source == "" {
		return nil, gen.NewConfigError("source", nil, "source directory cannot be empty")
	}
	return &cfg, nil
}

// options translates the file config into generator options.
func (c *Config) options(logger *zap.Logger) ([]gen.Option, error) {
	opts := []gen.Option{
		gen.WithTarget(c.Output),
		gen.WithHeader(c.Header),
		gen.WithFeatureNames(c.Features...),
		gen.WithLogger(logger),
		gen.WithBundleVersion(c.Bundle.Version),
		gen.WithProject(c.Project.Name, c.Project.Environment),
		gen.WithClientName(c.Client.Name),
		gen.WithGoPackage(c.Go.Package),
	}
	if c.Workers > 0 {
		opts = append(opts, gen.WithWorkers(c.Workers))
	}
	if c.Bundle.SigningKey != "" {
		key, err := bundle.ParsePrivateKey(c.Bundle.SigningKey)
		if err != nil {
			return nil, gen.NewConfigError("bundle.signing_key", nil, err.Error())
		}
		opts = append(opts, gen.WithSigningKey(key))
	}
	return opts, nil
}

// genConfig builds the generator config.
func (c *Config) genConfig(logger *zap.Logger) (*gen.Config, error) {
	opts, err := c.options(logger)
	if err != nil {
		return nil, err
	}
	return gen.NewConfig(opts...)
}
