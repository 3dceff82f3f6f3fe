package program

import (
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/cockroachdb/errors"
)

// Canonical derivation seeds, one per account role.
const (
	SeedMint           = "golf_mellow"
	SeedMintProxy      = "mint_pda"
	SeedBurnProxy      = "burn_pda"
	SeedPolygonAddress = "InitializePDA"
)

var seedAliases = map[string]string{
	"InitMint":   SeedMint,
	"MintTokens": SeedMintProxy,
}

// CanonicalSeed maps a legacy seed spelling onto the seed actually used for
// derivation. Unknown seeds are returned unchanged.
func CanonicalSeed(seed string) string {
	if c, ok := seedAliases[seed]; ok {
		return c
	}
	return seed
}

// SeedRole returns the account role stored under a derivation seed.
func SeedRole(seed string) AccountRole {
	switch CanonicalSeed(seed) {
	case SeedMint:
		return RoleMint
	case SeedMintProxy:
		return RoleMintProxy
	case SeedBurnProxy:
		return RoleBurnProxy
	case SeedPolygonAddress:
		return RolePolygonAddress
	default:
		return RoleUnknown
	}
}

func seedsFor(seed string, key types.Address) [][]byte {
	return [][]byte{[]byte(CanonicalSeed(seed)), key[:]}
}

// Derive computes the program-owned address for (seed, key).
// It is a pure function: the same inputs always give the same address and bump.
func Derive(seed string, key types.Address) (types.Address, uint8, error) {
	addr, bump, err := crypto.FindProgramAddress(seedsFor(seed, key), ID)
	if err != nil {
		return types.Address{}, 0, deriveError(err)
	}
	return addr, bump, nil
}

func deriveError(err error) error {
	if errors.Is(err, crypto.ErrAddressSpaceExhausted) {
		return errors.WithStack(AddressSpaceExhausted)
	}
	return errors.Wrap(InvalidInstruction, err.Error())
}

// MintAddress derives the MintAccount address owned by authority.
func MintAddress(authority types.Address) (types.Address, uint8, error) {
	return Derive(SeedMint, authority)
}

// MintProxyAddress derives the MintProxyAccount address of a mint.
func MintProxyAddress(mint types.Address) (types.Address, uint8, error) {
	return Derive(SeedMintProxy, mint)
}

// BurnProxyAddress derives the BurnProxyAccount address of a mint.
func BurnProxyAddress(mint types.Address) (types.Address, uint8, error) {
	return Derive(SeedBurnProxy, mint)
}

// PolygonAccountAddress derives the PolygonAddressAccount address of a mint.
func PolygonAccountAddress(mint types.Address) (types.Address, uint8, error) {
	return Derive(SeedPolygonAddress, mint)
}

// TokenAccountAddress derives the native token account holding owner's
// balance of mint.
func TokenAccountAddress(owner, mint types.Address) (types.Address, uint8, error) {
	addr, bump, err := crypto.FindProgramAddress([][]byte{[]byte("token"), owner[:], mint[:]}, TokenProgramID)
	if err != nil {
		return types.Address{}, 0, deriveError(err)
	}
	return addr, bump, nil
}
