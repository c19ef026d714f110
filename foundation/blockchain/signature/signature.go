// Package signature provides the cryptographic primitives used across the
// blockchain: ed25519 keypairs derived from secret phrases, content ids, and
// the address form of a public key.
package signature

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
)

// Sizes of the binary fields as they appear on the wire and in storage.
const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

// ZeroSignature is the all-zero 64 byte signature carried by the genesis
// block as its generation signature.
var ZeroSignature = make([]byte, SignatureSize)

// =============================================================================

// Keypair represents an ed25519 keypair derived from a secret phrase.
type Keypair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// NewKeypair derives a deterministic keypair from the specified secret phrase.
// The seed is the sha256 of the phrase so the same phrase always produces the
// same keys on every node.
func NewKeypair(secret string) Keypair {
	seed := sha256.Sum256([]byte(secret))
	privateKey := ed25519.NewKeyFromSeed(seed[:])

	return Keypair{
		PublicKey:  privateKey.Public().(ed25519.PublicKey),
		PrivateKey: privateKey,
	}
}

// PublicKeyString returns the lowercase hex form of the public key.
func (kp Keypair) PublicKeyString() string {
	return hex.EncodeToString(kp.PublicKey)
}

// Sign signs the sha256 hash of the specified bytes.
func (kp Keypair) Sign(data []byte) []byte {
	hash := sha256.Sum256(data)
	return ed25519.Sign(kp.PrivateKey, hash[:])
}

// =============================================================================

// Verify reports whether sig is a valid signature over the sha256 hash of
// data by the holder of publicKey.
func Verify(publicKey []byte, data []byte, sig []byte) bool {
	if len(publicKey) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}

	hash := sha256.Sum256(data)
	return ed25519.Verify(ed25519.PublicKey(publicKey), hash[:], sig)
}

// VerifyHex is like Verify with the public key and signature in their hex
// string forms.
func VerifyHex(publicKey string, data []byte, sig string) bool {
	pk, err := DecodePublicKey(publicKey)
	if err != nil {
		return false
	}

	sg, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	return Verify(pk, data, sg)
}

// DecodePublicKey decodes a hex public key and validates its length.
func DecodePublicKey(publicKey string) ([]byte, error) {
	pk, err := hex.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex in public key: %w", err)
	}

	if len(pk) != PublicKeySize {
		return nil, errors.New("invalid length for public key")
	}

	return pk, nil
}

// =============================================================================

// AddressFromPublicKey derives the account address for a public key: the
// first 8 bytes of sha256(publicKey) reversed, read as a big-endian integer,
// rendered in decimal with a "C" suffix. The derivation is part of the
// consensus contract and must not change.
func AddressFromPublicKey(publicKey []byte) string {
	hash := sha256.Sum256(publicKey)

	var temp [8]byte
	for i := 0; i < 8; i++ {
		temp[i] = hash[7-i]
	}

	return strconv.FormatUint(binary.BigEndian.Uint64(temp[:]), 10) + "C"
}

// AddressFromHexPublicKey derives the account address for a hex public key.
func AddressFromHexPublicKey(publicKey string) (string, error) {
	pk, err := DecodePublicKey(publicKey)
	if err != nil {
		return "", err
	}

	return AddressFromPublicKey(pk), nil
}

// AddressNumber returns the numeric part of an address for use in canonical
// byte serializations. The trailing "C" suffix is stripped before parsing.
func AddressNumber(address string) uint64 {
	if address == "" {
		return 0
	}

	trimmed := address
	if trimmed[len(trimmed)-1] == 'C' {
		trimmed = trimmed[:len(trimmed)-1]
	}

	n, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

// ContentID derives the chain id for a piece of content (a transaction or a
// block): the first 8 bytes of sha256(data) reversed, read as a big-endian
// integer, rendered in decimal.
func ContentID(data []byte) string {
	hash := sha256.Sum256(data)

	var temp [8]byte
	for i := 0; i < 8; i++ {
		temp[i] = hash[7-i]
	}

	return strconv.FormatUint(binary.BigEndian.Uint64(temp[:]), 10)
}

// IDNumber returns the numeric form of a content id, zero for the empty id.
func IDNumber(id string) uint64 {
	if id == "" {
		return 0
	}

	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0
	}

	return n
}
