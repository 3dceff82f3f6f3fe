package crypto

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Derivation limits.
const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

// derivationMarker separates program-derived digests from every other hash
// domain in the ledger.
var derivationMarker = []byte("ProgramDerivedAddress")

// Derivation errors.
var (
	ErrMaxSeedLength         = errors.New("seed exceeds maximum length")
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrOnCurve               = errors.New("derived address lies on the curve")
	ErrAddressSpaceExhausted = errors.New("no viable bump seed found")
)

// IsOnCurve reports whether addr is the x-coordinate of a secp256k1 point,
// i.e. whether some private key could sign for it.
func IsOnCurve(addr types.Address) bool {
	var buf [PubKeySize]byte
	buf[0] = secp256k1.PubKeyFormatCompressedEven
	copy(buf[1:], addr[:])
	_, err := secp256k1.ParsePubKey(buf[:])
	return err == nil
}

// CreateProgramAddress hashes seeds under programID into an address with no
// private key. Fails with ErrOnCurve when the digest happens to be a curve point.
//
//	addr = BLAKE3(seed_0 || ... || seed_n || programID || "ProgramDerivedAddress")
func CreateProgramAddress(seeds [][]byte, programID types.Address) (types.Address, error) {
	if len(seeds) > MaxSeeds {
		return types.Address{}, ErrTooManySeeds
	}
	parts := make([][]byte, 0, len(seeds)+2)
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return types.Address{}, fmt.Errorf("seed %d: %w", i, ErrMaxSeedLength)
		}
		parts = append(parts, s)
	}
	parts = append(parts, programID[:], derivationMarker)

	addr := types.Address(HashParts(parts...))
	if IsOnCurve(addr) {
		return types.Address{}, ErrOnCurve
	}
	return addr, nil
}

// FindProgramAddress searches bump seeds from 255 down to 0 and returns the
// first off-curve address together with its bump. Identical inputs always
// produce the identical (address, bump).
func FindProgramAddress(seeds [][]byte, programID types.Address) (types.Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return types.Address{}, 0, ErrTooManySeeds
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return types.Address{}, 0, err
		}
	}
	return types.Address{}, 0, ErrAddressSpaceExhausted
}
