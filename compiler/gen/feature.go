package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// FeatureClientAuth adds a client-level token sent as a bearer
	// authorization header on every request.
	FeatureClientAuth = Feature{
		Name:        "client/auth",
		Stage:       Stable,
		Default:     false,
		Description: "Adds a token option to the generated client and sends it as an Authorization header",
	}

	// FeatureClientTimeout adds a per-client timeout applied through
	// AbortSignal.timeout.
	FeatureClientTimeout = Feature{
		Name:        "client/timeout",
		Stage:       Beta,
		Default:     false,
		Description: "Adds a timeoutMs option to the generated client that aborts slow requests",
	}

	// FeatureBundleMetadata attaches the project name and environment to the
	// bundle. Metadata is covered by the checksum.
	FeatureBundleMetadata = Feature{
		Name:        "bundle/metadata",
		Stage:       Stable,
		Default:     false,
		Description: "Attaches project metadata (name, environment) to the manifest bundle",
	}

	// FeatureGoTypes emits Go declarations of every schema next to the
	// TypeScript ones.
	FeatureGoTypes = Feature{
		Name:        "go/types",
		Stage:       Alpha,
		Default:     false,
		Description: "Generates Go type declarations for every schema",
		cleanup: func(dir string) error {
			return remove(filepath.Join(dir, GoDir), GoFile)
		},
	}

	// FeatureBundleSign signs the bundle checksum with the configured
	// ed25519 key.
	FeatureBundleSign = Feature{
		Name:        "bundle/sign",
		Stage:       Experimental,
		Default:     false,
		Description: "Signs the manifest bundle checksum with an ed25519 key",
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureClientAuth,
		FeatureClientTimeout,
		FeatureBundleMetadata,
		FeatureGoTypes,
		FeatureBundleSign,
	}
)

// FeatureStage describes the stage of a generator feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development and may change or go away.
	Experimental

	// Alpha features are complete but their output may still change shape.
	Alpha

	// Beta features are documented and no breaking changes are expected.
	Beta

	// Stable features have been in use for a while.
	Stable
)

// String returns the lower-case stage name.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return fmt.Sprintf("FeatureStage(%d)", int(s))
	}
}

// A Feature of the timescape generators.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup removes the output of a previous run when the feature is
	// turned off. dir is the output root.
	cleanup func(dir string) error
}

// FeatureByName returns the registered feature with the given name.
func FeatureByName(name string) (Feature, error) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, nil
		}
	}
	names := make([]string, len(AllFeatures))
	for i, f := range AllFeatures {
		names[i] = f.Name
	}
	return Feature{}, NewConfigError("Features", name, "unknown feature; use one of "+strings.Join(names, ", "))
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
