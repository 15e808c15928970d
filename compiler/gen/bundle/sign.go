package bundle

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/timescape"
	"github.com/syssam/timescape/manifest"
)

// Sign records an ed25519 signature over the bundle checksum. The bundle
// must already carry its checksum.
func Sign(b *manifest.Bundle, key ed25519.PrivateKey) error {
	if b.Checksum == "" {
		return errors.New("bundle: sign: bundle has no checksum")
	}
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("bundle: sign: invalid private key length %d", len(key))
	}
	b.Signature = base64.StdEncoding.EncodeToString(ed25519.Sign(key, []byte(b.Checksum)))
	return nil
}

// VerifySignature checks the recorded signature against the recorded
// checksum. It does not re-derive the checksum; call Verify for that.
func VerifySignature(b *manifest.Bundle, pub ed25519.PublicKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("bundle: verify signature: invalid public key length %d", len(pub))
	}
	if b.Signature == "" {
		return timescape.NewIntegrityError("", "", "bundle is not signed")
	}
	sig, err := base64.StdEncoding.DecodeString(b.Signature)
	if err != nil || !ed25519.Verify(pub, []byte(b.Checksum), sig) {
		return timescape.NewIntegrityError("", "", "signature mismatch")
	}
	return nil
}

// ParsePrivateKey decodes a base64 ed25519 key: either a 32-byte seed or
// the 64-byte private key.
func ParsePrivateKey(text string) (ed25519.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("bundle: decode private key: %w", err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("bundle: private key must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

// ParsePublicKey decodes a base64 ed25519 public key.
func ParsePublicKey(text string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("bundle: decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("bundle: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}
