package bundle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/manifest"
	"github.com/syssam/timescape/schema"
)

// Algorithm prefixes every checksum.
const Algorithm = "sha256"

// covered is the part of a bundle protected by the checksum. The
// generation time, the checksum itself and the signature are excluded.
type covered struct {
	Version      string                    `json:"version"`
	Handlers     []manifest.Handler        `json:"handlers"`
	Modules      []manifest.Module         `json:"modules"`
	Schemas      map[string]*schema.Node   `json:"schemas"`
	VersionGraph manifest.VersionGraph     `json:"versionGraph"`
	Transformers []manifest.TransformerRef `json:"transformers"`
	Metadata     *manifest.Metadata        `json:"metadata,omitempty"`
}

// Canonical returns the canonical serialization of the covered content:
// the JSON form decoded to plain values, so that numbers and omitted
// fields read back from JSON or YAML match the in-memory form, then
// encoded as MessagePack with sorted map keys.
func Canonical(b *manifest.Bundle) ([]byte, error) {
	data, err := json.Marshal(covered{
		Version:      b.Version,
		Handlers:     b.Handlers,
		Modules:      b.Modules,
		Schemas:      b.Schemas,
		VersionGraph: b.VersionGraph,
		Transformers: b.Transformers,
		Metadata:     b.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("bundle: encode canonical form: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("bundle: decode canonical form: %w", err)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(tree); err != nil {
		return nil, fmt.Errorf("bundle: encode canonical form: %w", err)
	}
	return buf.Bytes(), nil
}

// Checksum returns the "sha256:<hex>" digest of the canonical form.
func Checksum(b *manifest.Bundle) (string, error) {
	data, err := Canonical(b)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return Algorithm + ":" + hex.EncodeToString(sum[:]), nil
}

// Verify re-derives the checksum of a previously produced bundle and
// checks that every schema a handler references is present. A mismatch is
// reported as a *timescape.IntegrityError, a dangling reference as a
// *timescape.ReferentialError.
func Verify(b *manifest.Bundle) error {
	var errs []error
	if !strings.HasPrefix(b.Checksum, Algorithm+":") {
		errs = append(errs, timescape.NewIntegrityError("", b.Checksum, "unsupported checksum algorithm"))
	} else if sum, err := Checksum(b); err != nil {
		errs = append(errs, err)
	} else if sum != b.Checksum {
		errs = append(errs, timescape.NewIntegrityError(sum, b.Checksum, "checksum mismatch"))
	}
	for i := range b.Handlers {
		errs = append(errs, checkRefs(&b.Handlers[i], b.Schemas)...)
	}
	return errors.Join(errs...)
}
