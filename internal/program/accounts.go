package program

import (
	"bytes"

	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// AccountRole is the canonical role of a program-owned account. Every
// derivation family stores exactly one role, and the role travels in the
// first eight bytes of the account data.
type AccountRole uint8

// Account roles. RoleUnknown marks data without a known discriminator.
const (
	RoleUnknown AccountRole = iota
	RoleMint
	RoleMintProxy
	RoleBurnProxy
	RolePolygonAddress
)

// String returns the role name used for the discriminator.
func (r AccountRole) String() string {
	switch r {
	case RoleMint:
		return "MintAccount"
	case RoleMintProxy:
		return "MintProxyAccount"
	case RoleBurnProxy:
		return "BurnProxyAccount"
	case RolePolygonAddress:
		return "PolygonAddressAccount"
	default:
		return "Unknown"
	}
}

// DiscriminatorSize is the length of the role prefix on account data.
const DiscriminatorSize = 8

// maxStoredString bounds string fields read back from account data.
const maxStoredString = 1024

var discriminators = map[AccountRole][DiscriminatorSize]byte{}

func init() {
	for _, r := range []AccountRole{RoleMint, RoleMintProxy, RoleBurnProxy, RolePolygonAddress} {
		discriminators[r] = crypto.Discriminator("account", r.String())
	}
}

// Discriminator returns the data prefix identifying role.
func (r AccountRole) Discriminator() [DiscriminatorSize]byte {
	return discriminators[r]
}

// RoleOf identifies the role of raw account data.
func RoleOf(data []byte) AccountRole {
	if len(data) < DiscriminatorSize {
		return RoleUnknown
	}
	for r, d := range discriminators {
		if bytes.Equal(data[:DiscriminatorSize], d[:]) {
			return r
		}
	}
	return RoleUnknown
}

// MintAccount is a token's identity and authority.
type MintAccount struct {
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Decimals    uint8         `json:"decimals"`
	TotalSupply uint64        `json:"total_supply"`
	Authority   types.Address `json:"authority"`
	MetadataURI string        `json:"metadata_uri"`
	Bump        uint8         `json:"bump"`
}

// MintProxyAccount counts everything minted through the program for one mint.
type MintProxyAccount struct {
	Mint      types.Address `json:"mint"`
	Authority types.Address `json:"authority"`
	MintTotal uint64        `json:"mint_total"`
	Bump      uint8         `json:"bump"`
}

// BurnProxyAccount counts everything burned through the program for one mint.
type BurnProxyAccount struct {
	Mint      types.Address `json:"mint"`
	Authority types.Address `json:"authority"`
	BurnTotal uint64        `json:"burn_total"`
	Bump      uint8         `json:"bump"`
}

// PolygonAddressAccount holds the Polygon address paired with a mint.
type PolygonAddressAccount struct {
	Mint           types.Address `json:"mint"`
	Authority      types.Address `json:"authority"`
	PolygonAddress string        `json:"polygon_address"`
	Bump           uint8         `json:"bump"`
}

func header(r AccountRole) *encoder {
	d := r.Discriminator()
	return (&encoder{}).raw(d[:])
}

// body strips the discriminator after checking it matches role.
func body(data []byte, role AccountRole) (*decoder, error) {
	if got := RoleOf(data); got != role {
		return nil, fail(InvalidAccountRole, "expected %s, found %s", role, got)
	}
	return &decoder{data: data[DiscriminatorSize:]}, nil
}

func corrupt(role AccountRole) error {
	return fail(InvalidAccountRole, "malformed %s data", role)
}

// Encode serializes the account with its discriminator.
func (m *MintAccount) Encode() []byte {
	return header(RoleMint).
		str(m.Name).str(m.Symbol).u8(m.Decimals).u64(m.TotalSupply).
		addr(m.Authority).str(m.MetadataURI).u8(m.Bump).buf
}

// DecodeMintAccount parses MintAccount data.
func DecodeMintAccount(data []byte) (*MintAccount, error) {
	d, err := body(data, RoleMint)
	if err != nil {
		return nil, err
	}
	m := &MintAccount{
		Name:        d.str(maxStoredString),
		Symbol:      d.str(maxStoredString),
		Decimals:    d.u8(),
		TotalSupply: d.u64(),
		Authority:   d.addr(),
		MetadataURI: d.str(maxStoredString),
		Bump:        d.u8(),
	}
	if !d.done() {
		return nil, corrupt(RoleMint)
	}
	return m, nil
}

// Encode serializes the account with its discriminator.
func (p *MintProxyAccount) Encode() []byte {
	return header(RoleMintProxy).addr(p.Mint).addr(p.Authority).u64(p.MintTotal).u8(p.Bump).buf
}

// DecodeMintProxyAccount parses MintProxyAccount data.
func DecodeMintProxyAccount(data []byte) (*MintProxyAccount, error) {
	d, err := body(data, RoleMintProxy)
	if err != nil {
		return nil, err
	}
	p := &MintProxyAccount{Mint: d.addr(), Authority: d.addr(), MintTotal: d.u64(), Bump: d.u8()}
	if !d.done() {
		return nil, corrupt(RoleMintProxy)
	}
	return p, nil
}

// Encode serializes the account with its discriminator.
func (p *BurnProxyAccount) Encode() []byte {
	return header(RoleBurnProxy).addr(p.Mint).addr(p.Authority).u64(p.BurnTotal).u8(p.Bump).buf
}

// DecodeBurnProxyAccount parses BurnProxyAccount data.
func DecodeBurnProxyAccount(data []byte) (*BurnProxyAccount, error) {
	d, err := body(data, RoleBurnProxy)
	if err != nil {
		return nil, err
	}
	p := &BurnProxyAccount{Mint: d.addr(), Authority: d.addr(), BurnTotal: d.u64(), Bump: d.u8()}
	if !d.done() {
		return nil, corrupt(RoleBurnProxy)
	}
	return p, nil
}

// Encode serializes the account with its discriminator.
func (p *PolygonAddressAccount) Encode() []byte {
	return header(RolePolygonAddress).addr(p.Mint).addr(p.Authority).str(p.PolygonAddress).u8(p.Bump).buf
}

// DecodePolygonAddressAccount parses PolygonAddressAccount data.
func DecodePolygonAddressAccount(data []byte) (*PolygonAddressAccount, error) {
	d, err := body(data, RolePolygonAddress)
	if err != nil {
		return nil, err
	}
	p := &PolygonAddressAccount{
		Mint:           d.addr(),
		Authority:      d.addr(),
		PolygonAddress: d.str(maxStoredString),
		Bump:           d.u8(),
	}
	if !d.done() {
		return nil, corrupt(RolePolygonAddress)
	}
	return p, nil
}
