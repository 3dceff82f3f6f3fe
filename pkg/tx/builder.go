package tx

import (
	"fmt"

	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a new transaction builder.
func NewBuilder() *Builder {
	return &Builder{
		tx: &Transaction{Version: 1},
	}
}

// SetNonce sets the transaction nonce. Two otherwise identical transactions
// need different nonces to get different IDs.
func (b *Builder) SetNonce(nonce uint64) *Builder {
	b.tx.Nonce = nonce
	return b
}

// AddInstruction appends an instruction.
func (b *Builder) AddInstruction(ix Instruction) *Builder {
	b.tx.Instructions = append(b.tx.Instructions, ix)
	return b
}

// Sign attaches one signature per key over the transaction hash.
// Every required signer must be covered by one of the keys.
func (b *Builder) Sign(keys ...crypto.Signer) error {
	hash := b.tx.Hash()
	have := make(map[types.Address]bool, len(keys))
	for i, key := range keys {
		addr, err := crypto.AddressFromPubKey(key.PublicKey())
		if err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
		if have[addr] {
			continue
		}
		sig, err := key.Sign(hash[:])
		if err != nil {
			return fmt.Errorf("sign tx: %w", err)
		}
		b.tx.Signatures = append(b.tx.Signatures, Signature{PubKey: key.PublicKey(), Signature: sig})
		have[addr] = true
	}
	for _, addr := range b.tx.RequiredSigners() {
		if !have[addr] {
			return fmt.Errorf("no key for required signer %s", addr)
		}
	}
	return nil
}

// Build returns the constructed transaction.
// Does NOT validate; call tx.Validate() separately.
func (b *Builder) Build() *Transaction {
	return b.tx
}
