// Package program implements the golf-mellow token issuance program: mint
// registration, proxy-counted minting and burning, transfers, and the Polygon
// address store. Every operation is a state transition executed against an
// injected Host, which stages the writes and commits them atomically.
package program

import (
	"fmt"

	"github.com/Klingon-tech/golfmellow/config"
	klog "github.com/Klingon-tech/golfmellow/internal/log"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// Program dispatches instructions addressed to ID.
type Program struct {
	rules config.ProgramRules
}

// New creates the program with the given rules.
func New(rules config.ProgramRules) *Program {
	return &Program{rules: rules}
}

// Rules returns the rules the program enforces.
func (p *Program) Rules() config.ProgramRules {
	return p.rules
}

// Process executes one instruction. All validation happens before the first
// write; on error the caller must discard everything staged in h.
func (p *Program) Process(h Host, accounts []tx.AccountMeta, data []byte) error {
	if len(data) == 0 {
		return fail(InvalidInstruction, "empty instruction data")
	}
	tag := Tag(data[0])
	d := &decoder{data: data[1:]}

	var err error
	switch tag {
	case TagInitMint:
		var params InitMintParams
		if params, err = decodeInitMint(d); err == nil {
			err = withAccounts(accounts, 4, func(a []tx.AccountMeta) error { return p.initMint(h, a, params) })
		}
	case TagMintTokens:
		var amount uint64
		if amount, err = decodeAmount(d, tag); err == nil {
			err = withAccounts(accounts, 5, func(a []tx.AccountMeta) error { return p.mintTokens(h, a, amount) })
		}
	case TagBurnTokens:
		var amount uint64
		if amount, err = decodeAmount(d, tag); err == nil {
			err = withAccounts(accounts, 6, func(a []tx.AccountMeta) error { return p.burnTokens(h, a, amount) })
		}
	case TagTransferTokens:
		var amount uint64
		if amount, err = decodeAmount(d, tag); err == nil {
			err = withAccounts(accounts, 4, func(a []tx.AccountMeta) error { return p.transferTokens(h, a, amount) })
		}
	case TagInitializePda:
		var addr string
		if addr, err = decodeString(d, tag); err == nil {
			err = withAccounts(accounts, 4, func(a []tx.AccountMeta) error { return p.initializePda(h, a, addr) })
		}
	case TagStorePolygonAddress:
		var addr string
		if addr, err = decodeString(d, tag); err == nil {
			err = withAccounts(accounts, 3, func(a []tx.AccountMeta) error { return p.storePolygonAddress(h, a, addr) })
		}
	case TagTrackBurnMetadata:
		var amount uint64
		if amount, err = decodeAmount(d, tag); err == nil {
			err = withAccounts(accounts, 3, func(a []tx.AccountMeta) error { return p.trackBurnMetadata(h, a, amount) })
		}
	default:
		return fail(InvalidInstruction, "unknown tag %d", data[0])
	}

	if err != nil {
		klog.Program.Debug().Str("instruction", tag.String()).Err(err).Msg("Instruction rejected")
		return err
	}
	klog.Program.Debug().Str("instruction", tag.String()).Msg("Instruction executed")
	return nil
}

func withAccounts(accounts []tx.AccountMeta, n int, fn func([]tx.AccountMeta) error) error {
	if len(accounts) != n {
		return fail(InvalidInstruction, "expected %d accounts, got %d", n, len(accounts))
	}
	return fn(accounts)
}

// initMint accounts: mint, authority, system program, token program.
func (p *Program) initMint(h Host, a []tx.AccountMeta, params InitMintParams) error {
	mintAcct, authority := a[0], a[1]
	if err := requireSigner(h, authority); err != nil {
		return err
	}
	if err := requireProgram(a[2], SystemProgramID, "system"); err != nil {
		return err
	}
	if err := requireProgram(a[3], TokenProgramID, "token"); err != nil {
		return err
	}
	if err := ValidateMintParams(params, p.rules); err != nil {
		return err
	}
	bump, err := requireDerived(h, mintAcct, SeedMint, authority.Address)
	if err != nil {
		return err
	}
	existing, err := h.Account(mintAcct.Address)
	if err != nil {
		return err
	}
	if existing != nil {
		return fail(AlreadyInitialized, "mint %s", mintAcct.Address)
	}

	mint := &MintAccount{
		Name:        params.Name,
		Symbol:      params.Symbol,
		Decimals:    p.rules.Decimals,
		TotalSupply: params.Supply,
		Authority:   authority.Address,
		MetadataURI: params.URI,
		Bump:        bump,
	}
	if err := h.CreateAccount(mintAcct.Address, h.ProgramID(), mint.Encode()); err != nil {
		return err
	}
	if err := h.InitializeMint(mintAcct.Address, mint.Decimals, authority.Address); err != nil {
		return err
	}
	h.Log(fmt.Sprintf("Mint initialized: name=%s symbol=%s supply=%d", mint.Name, mint.Symbol, mint.TotalSupply))
	return nil
}

// mintTokens accounts: mint, destination, mint proxy, authority, token program.
func (p *Program) mintTokens(h Host, a []tx.AccountMeta, amount uint64) error {
	mintAcct, dest, proxyAcct, authority := a[0], a[1], a[2], a[3]
	if amount == 0 {
		return fail(InvalidAmount, "mint amount")
	}
	if err := requireProgram(a[4], TokenProgramID, "token"); err != nil {
		return err
	}
	mint, err := loadMint(h, mintAcct.Address)
	if err != nil {
		return err
	}
	if err := requireAuthority(h, authority, mint.Authority); err != nil {
		return err
	}
	limit := p.rules.MaxMintBaseUnits()
	if already := h.MintedInTx(mintAcct.Address); amount > limit || already > limit-amount {
		return fail(MintLimitExceeded, "amount %d with %d already minted in this transaction, limit %d", amount, already, limit)
	}
	bump, err := requireDerived(h, proxyAcct, SeedMintProxy, mintAcct.Address)
	if err != nil {
		return err
	}

	info, err := loadOwned(h, proxyAcct.Address)
	if err != nil {
		return err
	}
	proxy := &MintProxyAccount{Mint: mintAcct.Address, Authority: mint.Authority, Bump: bump}
	if info != nil {
		if proxy, err = DecodeMintProxyAccount(info.Data); err != nil {
			return err
		}
		if proxy.Mint != mintAcct.Address {
			return fail(AddressMismatch, "mint proxy belongs to %s", proxy.Mint)
		}
	}

	total, ok := addChecked(proxy.MintTotal, amount)
	if !ok || total > mint.TotalSupply {
		return fail(SupplyExceeded, "minted %d + %d exceeds cap %d", proxy.MintTotal, amount, mint.TotalSupply)
	}

	if err := h.MintTo(mintAcct.Address, dest.Address, amount); err != nil {
		return err
	}
	proxy.MintTotal = total
	if err := store(h, proxyAcct.Address, info == nil, proxy.Encode()); err != nil {
		return err
	}
	h.Log(fmt.Sprintf("Minted %d tokens. Total minted: %d", amount, total))
	return nil
}

// burnTokens accounts: mint, source, burn proxy, mint proxy, authority, token program.
func (p *Program) burnTokens(h Host, a []tx.AccountMeta, amount uint64) error {
	mintAcct, source, burnAcct, mintProxyAcct, authority := a[0], a[1], a[2], a[3], a[4]
	if amount == 0 {
		return fail(InvalidAmount, "burn amount")
	}
	if err := requireProgram(a[5], TokenProgramID, "token"); err != nil {
		return err
	}
	mint, err := loadMint(h, mintAcct.Address)
	if err != nil {
		return err
	}
	if err := requireAuthority(h, authority, mint.Authority); err != nil {
		return err
	}
	bump, err := requireDerived(h, burnAcct, SeedBurnProxy, mintAcct.Address)
	if err != nil {
		return err
	}
	if _, err := requireDerived(h, mintProxyAcct, SeedMintProxy, mintAcct.Address); err != nil {
		return err
	}

	var minted uint64
	mintInfo, err := loadOwned(h, mintProxyAcct.Address)
	if err != nil {
		return err
	}
	if mintInfo != nil {
		mp, err := DecodeMintProxyAccount(mintInfo.Data)
		if err != nil {
			return err
		}
		minted = mp.MintTotal
	}

	burnInfo, err := loadOwned(h, burnAcct.Address)
	if err != nil {
		return err
	}
	proxy := &BurnProxyAccount{Mint: mintAcct.Address, Authority: mint.Authority, Bump: bump}
	if burnInfo != nil {
		if proxy, err = DecodeBurnProxyAccount(burnInfo.Data); err != nil {
			return err
		}
		if proxy.Mint != mintAcct.Address {
			return fail(AddressMismatch, "burn proxy belongs to %s", proxy.Mint)
		}
	}

	var available uint64
	if minted > proxy.BurnTotal {
		available = minted - proxy.BurnTotal
	}
	if amount > available {
		return fail(InsufficientMinted, "burn %d, available %d (minted %d, burned %d)", amount, available, minted, proxy.BurnTotal)
	}

	if err := h.Burn(mintAcct.Address, source.Address, authority.Address, amount); err != nil {
		return err
	}
	proxy.BurnTotal += amount
	if err := store(h, burnAcct.Address, burnInfo == nil, proxy.Encode()); err != nil {
		return err
	}
	h.Log(fmt.Sprintf("Burned %d tokens. Total burned: %d", amount, proxy.BurnTotal))
	return nil
}

// transferTokens accounts: source, destination, authority, token program.
func (p *Program) transferTokens(h Host, a []tx.AccountMeta, amount uint64) error {
	source, dest, authority := a[0], a[1], a[2]
	if amount == 0 {
		return fail(InvalidAmount, "transfer amount")
	}
	if err := requireProgram(a[3], TokenProgramID, "token"); err != nil {
		return err
	}
	from, err := loadToken(h, source.Address)
	if err != nil {
		return err
	}
	to, err := loadToken(h, dest.Address)
	if err != nil {
		return err
	}
	if err := requireAuthority(h, authority, from.Owner); err != nil {
		return err
	}
	if from.Mint != to.Mint {
		return fail(AddressMismatch, "source mint %s, destination mint %s", from.Mint, to.Mint)
	}
	if from.Amount < amount {
		return fail(InsufficientBalance, "balance %d, transfer %d", from.Amount, amount)
	}
	if source.Address != dest.Address {
		if _, ok := addChecked(to.Amount, amount); !ok {
			return fail(Overflow, "destination balance")
		}
	}

	if err := h.Transfer(source.Address, dest.Address, authority.Address, amount); err != nil {
		return err
	}
	h.Log(fmt.Sprintf("Transferred %d tokens", amount))
	return nil
}

// initializePda accounts: mint, polygon account, authority, system program.
func (p *Program) initializePda(h Host, a []tx.AccountMeta, polygonAddress string) error {
	mintAcct, acct, authority := a[0], a[1], a[2]
	if err := requireProgram(a[3], SystemProgramID, "system"); err != nil {
		return err
	}
	mint, err := loadMint(h, mintAcct.Address)
	if err != nil {
		return err
	}
	if err := requireAuthority(h, authority, mint.Authority); err != nil {
		return err
	}
	bump, err := requireDerived(h, acct, SeedPolygonAddress, mintAcct.Address)
	if err != nil {
		return err
	}
	existing, err := h.Account(acct.Address)
	if err != nil {
		return err
	}
	if existing != nil {
		return fail(AlreadyInitialized, "polygon address account %s", acct.Address)
	}
	if err := ValidatePolygonAddress(polygonAddress, p.rules.PolygonAddressLen); err != nil {
		return err
	}

	rec := &PolygonAddressAccount{
		Mint:           mintAcct.Address,
		Authority:      authority.Address,
		PolygonAddress: polygonAddress,
		Bump:           bump,
	}
	if err := h.CreateAccount(acct.Address, h.ProgramID(), rec.Encode()); err != nil {
		return err
	}
	h.Log("PDA initialized successfully")
	h.Log("Polygon Address: " + polygonAddress)
	return nil
}

// storePolygonAddress accounts: mint, polygon account, authority.
func (p *Program) storePolygonAddress(h Host, a []tx.AccountMeta, polygonAddress string) error {
	mintAcct, acct, authority := a[0], a[1], a[2]
	if _, err := requireDerived(h, acct, SeedPolygonAddress, mintAcct.Address); err != nil {
		return err
	}
	info, err := loadOwned(h, acct.Address)
	if err != nil {
		return err
	}
	if info == nil {
		return fail(AccountNotFound, "polygon address account %s", acct.Address)
	}
	rec, err := DecodePolygonAddressAccount(info.Data)
	if err != nil {
		return err
	}
	if err := requireAuthority(h, authority, rec.Authority); err != nil {
		return err
	}
	if rec.Mint != mintAcct.Address {
		return fail(AddressMismatch, "polygon account belongs to %s", rec.Mint)
	}
	if err := ValidatePolygonAddress(polygonAddress, p.rules.PolygonAddressLen); err != nil {
		return err
	}

	rec.PolygonAddress = polygonAddress
	if err := h.WriteAccount(acct.Address, rec.Encode()); err != nil {
		return err
	}
	h.Log("Polygon address stored successfully: " + polygonAddress)
	return nil
}

// trackBurnMetadata accounts: mint, burn proxy, authority.
func (p *Program) trackBurnMetadata(h Host, a []tx.AccountMeta, burned uint64) error {
	mintAcct, burnAcct, authority := a[0], a[1], a[2]
	if _, err := requireDerived(h, burnAcct, SeedBurnProxy, mintAcct.Address); err != nil {
		return err
	}
	info, err := loadOwned(h, burnAcct.Address)
	if err != nil {
		return err
	}
	if info == nil {
		return fail(AccountNotFound, "burn proxy %s", burnAcct.Address)
	}
	proxy, err := DecodeBurnProxyAccount(info.Data)
	if err != nil {
		return err
	}
	if err := requireAuthority(h, authority, proxy.Authority); err != nil {
		return err
	}
	h.Log(fmt.Sprintf("Burn metadata: burned=%d total_burned=%d", burned, proxy.BurnTotal))
	return nil
}

func loadToken(h Host, addr types.Address) (*TokenAccount, error) {
	acct, err := h.TokenAccount(addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fail(AccountNotFound, "token account %s", addr)
	}
	return acct, nil
}

func addChecked(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}
