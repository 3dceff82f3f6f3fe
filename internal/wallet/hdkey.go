package wallet

import (
	"fmt"

	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/tyler-smith/go-bip32"
)

// Derivation path: m/44'/CoinType'/account'/index.
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44
	CoinType     = bip32.FirstHardenedChild + 6006
)

// HDKey is a BIP-32 extended key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates the root key of a seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// Child derives one level down. Add bip32.FirstHardenedChild for hardened keys.
func (k *HDKey) Child(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// Account derives the signing key at m/44'/6006'/account'/index.
func (k *HDKey) Account(account, index uint32) (*HDKey, error) {
	current := k
	for _, idx := range []uint32{PurposeBIP44, CoinType, bip32.FirstHardenedChild + account, index} {
		next, err := current.Child(idx)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// Signer returns the private key, or an error for public-only keys.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	if !k.key.IsPrivate {
		return nil, fmt.Errorf("public-only key cannot sign")
	}
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	return crypto.PrivateKeyFromBytes(raw)
}

// Address is the x-coordinate of the key's compressed public key.
func (k *HDKey) Address() (types.Address, error) {
	return crypto.AddressFromPubKey(k.key.PublicKey().Key)
}

// Depth is 0 for the master key.
func (k *HDKey) Depth() uint8 {
	return k.key.Depth
}

// DeriveSigner walks the seed down to the account key in one call.
func DeriveSigner(seed []byte, account, index uint32) (*crypto.PrivateKey, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	key, err := master.Account(account, index)
	if err != nil {
		return nil, err
	}
	return key.Signer()
}
