// Package crypto provides the hashing, signing and address-derivation
// primitives used by the ledger and the GM program.
package crypto

import (
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// HashParts hashes the concatenation of parts without building the
// concatenated buffer.
func HashParts(parts ...[]byte) types.Hash {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Discriminator returns the 8-byte tag BLAKE3(namespace ":" name)[:8] used to
// mark account and instruction layouts.
func Discriminator(namespace, name string) [8]byte {
	h := Hash([]byte(namespace + ":" + name))
	var d [8]byte
	copy(d[:], h[:8])
	return d
}
