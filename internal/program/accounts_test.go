package program

import (
	"testing"

	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Deterministic(t *testing.T) {
	key := types.Address{0x01, 0x02, 0x03}
	a1, b1, err := Derive(SeedMint, key)
	require.NoError(t, err)
	a2, b2, err := Derive(SeedMint, key)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.False(t, crypto.IsOnCurve(a1))

	alias, aliasBump, err := Derive("InitMint", key)
	require.NoError(t, err)
	assert.Equal(t, a1, alias, "alias must resolve to the canonical seed")
	assert.Equal(t, b1, aliasBump)

	viaAlias, _, _ := Derive("MintTokens", key)
	canonical, _, _ := Derive(SeedMintProxy, key)
	assert.Equal(t, canonical, viaAlias)
}

func TestDerive_DistinctFamilies(t *testing.T) {
	key := types.Address{0xab}
	seen := map[types.Address]string{}
	for _, seed := range []string{SeedMint, SeedMintProxy, SeedBurnProxy, SeedPolygonAddress} {
		addr, _, err := Derive(seed, key)
		require.NoError(t, err)
		_, dup := seen[addr]
		assert.False(t, dup, "seed %q collides with %q", seed, seen[addr])
		seen[addr] = seed
	}
	other, _, _ := Derive(SeedMint, types.Address{0xac})
	_, dup := seen[other]
	assert.False(t, dup)
}

func TestSeedRole(t *testing.T) {
	assert.Equal(t, RoleMint, SeedRole("InitMint"))
	assert.Equal(t, RoleMintProxy, SeedRole(SeedMintProxy))
	assert.Equal(t, RoleBurnProxy, SeedRole(SeedBurnProxy))
	assert.Equal(t, RolePolygonAddress, SeedRole(SeedPolygonAddress))
	assert.Equal(t, RoleUnknown, SeedRole("other"))
}

func TestAccounts_Encoding(t *testing.T) {
	mint := &MintAccount{Name: "Golf Mellow Token", Symbol: "GMT", Decimals: 9, TotalSupply: 42, Authority: admin, MetadataURI: "ipfs://x", Bump: 254}
	gotMint, err := DecodeMintAccount(mint.Encode())
	require.NoError(t, err)
	assert.Equal(t, mint, gotMint)

	mp := &MintProxyAccount{Mint: types.Address{1}, Authority: admin, MintTotal: 7, Bump: 3}
	gotMP, err := DecodeMintProxyAccount(mp.Encode())
	require.NoError(t, err)
	assert.Equal(t, mp, gotMP)

	bp := &BurnProxyAccount{Mint: types.Address{1}, Authority: admin, BurnTotal: 5, Bump: 9}
	gotBP, err := DecodeBurnProxyAccount(bp.Encode())
	require.NoError(t, err)
	assert.Equal(t, bp, gotBP)

	pa := &PolygonAddressAccount{Mint: types.Address{1}, Authority: admin, PolygonAddress: "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"}
	gotPA, err := DecodePolygonAddressAccount(pa.Encode())
	require.NoError(t, err)
	assert.Equal(t, pa, gotPA)
}

func TestAccounts_RoleChecks(t *testing.T) {
	mp := (&MintProxyAccount{MintTotal: 1}).Encode()
	assert.Equal(t, RoleMintProxy, RoleOf(mp))

	_, err := DecodeBurnProxyAccount(mp)
	assertKind(t, err, InvalidAccountRole)

	_, err = DecodeMintProxyAccount(mp[:len(mp)-1])
	assertKind(t, err, InvalidAccountRole)

	_, err = DecodeMintProxyAccount(append(mp, 0))
	assertKind(t, err, InvalidAccountRole)

	assert.Equal(t, RoleUnknown, RoleOf([]byte{1, 2}))
}

func TestErrorKinds(t *testing.T) {
	seen := map[uint32]bool{}
	for k, name := range kindNames {
		assert.NotZero(t, k.Code(), name)
		assert.False(t, seen[k.Code()], "duplicate code for %s", name)
		seen[k.Code()] = true
		back, ok := KindByName(name)
		assert.True(t, ok)
		assert.Equal(t, k, back)
	}

	err := fail(SupplyExceeded, "minted %d", 5)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, SupplyExceeded, kind)
	assert.Contains(t, err.Error(), "supply cap exceeded")
}

func TestChecksumPolygonAddress(t *testing.T) {
	for _, want := range []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	} {
		assert.Equal(t, want, ChecksumPolygonAddress(want))
		require.NoError(t, ValidatePolygonAddress(want, 42))
	}
}
