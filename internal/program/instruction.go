package program

import (
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// Tag is the first byte of instruction data.
type Tag uint8

// Instruction tags of the GM program.
const (
	TagInitMint            Tag = 1
	TagMintTokens          Tag = 2
	TagBurnTokens          Tag = 3
	TagTransferTokens      Tag = 4
	TagInitializePda       Tag = 5
	TagStorePolygonAddress Tag = 6
	TagTrackBurnMetadata   Tag = 7
)

// String returns the instruction name.
func (t Tag) String() string {
	switch t {
	case TagInitMint:
		return "initMint"
	case TagMintTokens:
		return "mintTokens"
	case TagBurnTokens:
		return "burnTokens"
	case TagTransferTokens:
		return "transferTokens"
	case TagInitializePda:
		return "initializePda"
	case TagStorePolygonAddress:
		return "storePolygonAddress"
	case TagTrackBurnMetadata:
		return "trackBurnMetadata"
	default:
		return "unknown"
	}
}

// maxArgString bounds strings decoded from instruction data.
const maxArgString = 512

// InitMintParams are the arguments of initMint.
type InitMintParams struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Supply uint64 `json:"supply"`
	URI    string `json:"uri"`
}

func (p InitMintParams) encode() []byte {
	return (&encoder{}).u8(uint8(TagInitMint)).str(p.Name).str(p.Symbol).u64(p.Supply).str(p.URI).buf
}

func decodeInitMint(d *decoder) (InitMintParams, error) {
	p := InitMintParams{
		Name:   d.str(maxArgString),
		Symbol: d.str(maxArgString),
		Supply: d.u64(),
		URI:    d.str(maxArgString),
	}
	if !d.done() {
		return p, fail(InvalidInstruction, "malformed initMint arguments")
	}
	return p, nil
}

func encodeAmount(tag Tag, amount uint64) []byte {
	return (&encoder{}).u8(uint8(tag)).u64(amount).buf
}

func decodeAmount(d *decoder, tag Tag) (uint64, error) {
	amount := d.u64()
	if !d.done() {
		return 0, fail(InvalidInstruction, "malformed %s arguments", tag)
	}
	return amount, nil
}

func encodeString(tag Tag, s string) []byte {
	return (&encoder{}).u8(uint8(tag)).str(s).buf
}

func decodeString(d *decoder, tag Tag) (string, error) {
	s := d.str(maxArgString)
	if !d.done() {
		return "", fail(InvalidInstruction, "malformed %s arguments", tag)
	}
	return s, nil
}

func meta(addr types.Address, signer, writable bool) tx.AccountMeta {
	return tx.AccountMeta{Address: addr, Signer: signer, Writable: writable}
}

// NewInitMintInstruction builds initMint for the mint derived from authority.
func NewInitMintInstruction(authority types.Address, p InitMintParams) (tx.Instruction, error) {
	mint, _, err := MintAddress(authority)
	if err != nil {
		return tx.Instruction{}, err
	}
	return tx.Instruction{
		ProgramID: ID,
		Accounts: []tx.AccountMeta{
			meta(mint, false, true),
			meta(authority, true, true),
			meta(SystemProgramID, false, false),
			meta(TokenProgramID, false, false),
		},
		Data: p.encode(),
	}, nil
}

// NewMintTokensInstruction builds mintTokens crediting dest.
func NewMintTokensInstruction(mint, dest, authority types.Address, amount uint64) (tx.Instruction, error) {
	proxy, _, err := MintProxyAddress(mint)
	if err != nil {
		return tx.Instruction{}, err
	}
	return tx.Instruction{
		ProgramID: ID,
		Accounts: []tx.AccountMeta{
			meta(mint, false, true),
			meta(dest, false, true),
			meta(proxy, false, true),
			meta(authority, true, false),
			meta(TokenProgramID, false, false),
		},
		Data: encodeAmount(TagMintTokens, amount),
	}, nil
}

// NewBurnTokensInstruction builds burnTokens debiting source.
func NewBurnTokensInstruction(mint, source, authority types.Address, amount uint64) (tx.Instruction, error) {
	burnProxy, _, err := BurnProxyAddress(mint)
	if err != nil {
		return tx.Instruction{}, err
	}
	mintProxy, _, err := MintProxyAddress(mint)
	if err != nil {
		return tx.Instruction{}, err
	}
	return tx.Instruction{
		ProgramID: ID,
		Accounts: []tx.AccountMeta{
			meta(mint, false, true),
			meta(source, false, true),
			meta(burnProxy, false, true),
			meta(mintProxy, false, false),
			meta(authority, true, false),
			meta(TokenProgramID, false, false),
		},
		Data: encodeAmount(TagBurnTokens, amount),
	}, nil
}

// NewTransferTokensInstruction builds transferTokens from source to dest.
func NewTransferTokensInstruction(source, dest, authority types.Address, amount uint64) tx.Instruction {
	return tx.Instruction{
		ProgramID: ID,
		Accounts: []tx.AccountMeta{
			meta(source, false, true),
			meta(dest, false, true),
			meta(authority, true, false),
			meta(TokenProgramID, false, false),
		},
		Data: encodeAmount(TagTransferTokens, amount),
	}
}

// NewInitializePdaInstruction builds initializePda for mint.
func NewInitializePdaInstruction(mint, authority types.Address, polygonAddress string) (tx.Instruction, error) {
	acct, _, err := PolygonAccountAddress(mint)
	if err != nil {
		return tx.Instruction{}, err
	}
	return tx.Instruction{
		ProgramID: ID,
		Accounts: []tx.AccountMeta{
			meta(mint, false, false),
			meta(acct, false, true),
			meta(authority, true, true),
			meta(SystemProgramID, false, false),
		},
		Data: encodeString(TagInitializePda, polygonAddress),
	}, nil
}

// NewStorePolygonAddressInstruction builds storePolygonAddress for mint.
func NewStorePolygonAddressInstruction(mint, authority types.Address, polygonAddress string) (tx.Instruction, error) {
	acct, _, err := PolygonAccountAddress(mint)
	if err != nil {
		return tx.Instruction{}, err
	}
	return tx.Instruction{
		ProgramID: ID,
		Accounts: []tx.AccountMeta{
			meta(mint, false, false),
			meta(acct, false, true),
			meta(authority, true, false),
		},
		Data: encodeString(TagStorePolygonAddress, polygonAddress),
	}, nil
}

// NewTrackBurnMetadataInstruction builds trackBurnMetadata for mint.
func NewTrackBurnMetadataInstruction(mint, authority types.Address, burnedAmount uint64) (tx.Instruction, error) {
	burnProxy, _, err := BurnProxyAddress(mint)
	if err != nil {
		return tx.Instruction{}, err
	}
	return tx.Instruction{
		ProgramID: ID,
		Accounts: []tx.AccountMeta{
			meta(mint, false, false),
			meta(burnProxy, false, false),
			meta(authority, true, false),
		},
		Data: encodeAmount(TagTrackBurnMetadata, burnedAmount),
	}, nil
}
