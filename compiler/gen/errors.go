package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by ConfigError and GenerationError.
var (
	ErrMissingConfig    = errors.New("timescape: invalid generator configuration")
	ErrGenerationFailed = errors.New("timescape: generation failed")
)

// Phase is the stage of a run an error comes from.
type Phase string

// Phases of Generate and Write.
const (
	PhaseCheck        Phase = "check"
	PhaseBundle       Phase = "bundle"
	PhaseTypes        Phase = "types"
	PhaseValidators   Phase = "validators"
	PhaseClient       Phase = "client"
	PhaseTransformers Phase = "transformers"
	PhaseGo           Phase = "go"
	PhaseManifest     Phase = "manifest"
	PhaseWrite        Phase = "write"
)

// ConfigError reports an option or feature setting that cannot be used.
// Option is the option or config key, Value the rejected value if any.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("timescape: config error: ")
	b.WriteString(e.Option)
	if e.Value != nil {
		fmt.Fprintf(&b, " (got %v)", e.Value)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is matches ErrMissingConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError returns a ConfigError for option.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// GenerationError reports an output that could not be produced or
// persisted. File is the path relative to the target, when one is known.
// Cause keeps the typed input errors of the root package reachable.
type GenerationError struct {
	Phase   Phase
	File    string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("timescape: generation error")
	if e.Phase != "" {
		fmt.Fprintf(&b, " [%s]", e.Phase)
	}
	if e.File != "" {
		b.WriteString(" ")
		b.WriteString(e.File)
	}
	for _, part := range []string{e.Message, causeText(e.Cause)} {
		if part != "" {
			b.WriteString(": ")
			b.WriteString(part)
		}
	}
	return b.String()
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is matches ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError returns a GenerationError for file in phase.
func NewGenerationError(phase Phase, file, message string, cause error) *GenerationError {
	return &GenerationError{Phase: phase, File: file, Message: message, Cause: cause}
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsGenerationError reports whether err wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}
