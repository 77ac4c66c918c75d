// Package contracts holds on-chain program metadata: program addresses,
// public key checks and Anchor IDL parsing.
package contracts

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Public key bounds.
const (
	PublicKeySize      = 32
	minPublicKeyLength = 32
	maxPublicKeyLength = 44
)

// PDA derivation limits.
const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

// ErrOnCurve is returned by CreateProgramAddress for an on-curve result.
var ErrOnCurve = errors.New("derived address is on curve")

// DecodePublicKey decodes a base58 public key of exactly 32 bytes.
func DecodePublicKey(s string) ([]byte, error) {
	if n := len(s); n < minPublicKeyLength || n > maxPublicKeyLength {
		return nil, fmt.Errorf("public key must be %d-%d characters, got %d", minPublicKeyLength, maxPublicKeyLength, n)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("public key is not base58: %w", err)
	}
	if len(raw) != PublicKeySize {
		return nil, fmt.Errorf("public key must decode to %d bytes, got %d", PublicKeySize, len(raw))
	}
	return raw, nil
}

// ValidatePublicKey reports whether s is a well-formed public key string.
func ValidatePublicKey(s string) error {
	_, err := DecodePublicKey(s)
	return err
}

// IsOnCurve reports whether a 32-byte key is a valid ed25519 point.
// Program derived addresses are off curve by construction.
func IsOnCurve(key []byte) bool {
	if len(key) != PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(key)
	return err == nil
}

// IsOnCurveString is IsOnCurve for a base58 key. Malformed keys are off curve.
func IsOnCurveString(pubkey string) bool {
	raw, err := DecodePublicKey(pubkey)
	if err != nil {
		return false
	}
	return IsOnCurve(raw)
}

// CreateProgramAddress hashes seeds with programID. It fails when the result
// lies on the curve, since such an address could have a private key.
func CreateProgramAddress(seeds [][]byte, programID string) (string, error) {
	program, err := DecodePublicKey(programID)
	if err != nil {
		return "", fmt.Errorf("program id: %w", err)
	}
	if len(seeds) > maxSeeds {
		return "", fmt.Errorf("at most %d seeds, got %d", maxSeeds, len(seeds))
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return "", fmt.Errorf("seed %d exceeds %d bytes", i, maxSeedLength)
		}
		h.Write(seed)
	}
	h.Write(program)
	h.Write([]byte(pdaMarker))
	hash := h.Sum(nil)

	if IsOnCurve(hash) {
		return "", ErrOnCurve
	}
	return base58.Encode(hash), nil
}

// FindProgramAddress searches bump seeds from 255 down for the first
// off-curve address.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	for bump := 255; bump > 0; bump-- {
		withBump := make([][]byte, 0, len(seeds)+1)
		withBump = append(withBump, seeds...)
		withBump = append(withBump, []byte{byte(bump)})

		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return "", 0, err
		}
	}
	return "", 0, fmt.Errorf("no viable bump seed")
}
