package domain

import (
	"crypto/ed25519"
	"encoding/hex"
	"strconv"
	"strings"

	dErrors "raffle/pkg/domain-errors"
)

// KeySize is the byte length of public keys and asset addresses.
const KeySize = ed25519.PublicKeySize

// Identity is a verifiable principal: an ed25519 public key.
// The zero value means "no identity" and is never accepted by ParseIdentity.
type Identity [KeySize]byte

// AssetID identifies the non-fungible asset held in escrow (the mint address).
// The zero value is the default address and is never a valid asset.
type AssetID [KeySize]byte

// RaffleID is the registry-issued raffle identifier. Valid ids start at 1.
type RaffleID uint64

// ParseIdentity parses a hex-encoded public key at trust boundaries.
//
// Errors: returns CodeInvalidInput for empty, malformed or all-zero keys.
func ParseIdentity(s string) (Identity, error) {
	raw, err := parseKey(s, "identity")
	if err != nil {
		return Identity{}, err
	}
	return Identity(raw), nil
}

// IdentityFromPublicKey converts an ed25519 public key.
func IdentityFromPublicKey(pub ed25519.PublicKey) (Identity, error) {
	if len(pub) != KeySize {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity must be a 32-byte public key")
	}
	var out Identity
	copy(out[:], pub)
	if out.IsZero() {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity cannot be the zero key")
	}
	return out, nil
}

func (i Identity) String() string { return hex.EncodeToString(i[:]) }

func (i Identity) IsZero() bool { return i == Identity{} }

// PublicKey returns the identity as an ed25519 verification key.
func (i Identity) PublicKey() ed25519.PublicKey {
	out := make(ed25519.PublicKey, KeySize)
	copy(out, i[:])
	return out
}

func (i Identity) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Identity) UnmarshalText(b []byte) error {
	parsed, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ParseAssetID parses a hex-encoded asset address.
//
// Errors: returns CodeInvalidInput for empty, malformed or default (all-zero) addresses.
func ParseAssetID(s string) (AssetID, error) {
	raw, err := parseKey(s, "asset")
	if err != nil {
		return AssetID{}, err
	}
	return AssetID(raw), nil
}

func (a AssetID) String() string { return hex.EncodeToString(a[:]) }

func (a AssetID) IsZero() bool { return a == AssetID{} }

func (a AssetID) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText accepts the default address so that request validation, not
// decoding, reports it.
func (a *AssetID) UnmarshalText(b []byte) error {
	raw, err := decodeKey(string(b), "asset")
	if err != nil {
		return err
	}
	*a = AssetID(raw)
	return nil
}

// ParseRaffleID parses a decimal raffle id from a path or query parameter.
func ParseRaffleID(s string) (RaffleID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "raffle id cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "raffle id must be a positive integer")
	}
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "raffle id must be a positive integer")
	}
	return RaffleID(n), nil
}

func (r RaffleID) String() string { return strconv.FormatUint(uint64(r), 10) }

func parseKey(s, kind string) ([KeySize]byte, error) {
	raw, err := decodeKey(s, kind)
	if err != nil {
		return raw, err
	}
	if raw == ([KeySize]byte{}) {
		return raw, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be the default address")
	}
	return raw, nil
}

func decodeKey(s, kind string) ([KeySize]byte, error) {
	var out [KeySize]byte
	if s == "" {
		return out, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	if len(s) != hex.EncodedLen(KeySize) {
		return out, dErrors.New(dErrors.CodeInvalidInput, kind+" must be 64 hex characters")
	}
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return out, dErrors.New(dErrors.CodeInvalidInput, kind+" must be hex encoded")
	}
	copy(out[:], b)
	return out, nil
}
