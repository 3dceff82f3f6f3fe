package program

import (
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/cockroachdb/errors"
)

// requireSigner fails unless acct is declared as signer and actually signed.
func requireSigner(h Host, acct tx.AccountMeta) error {
	if !acct.Signer || !h.IsSigner(acct.Address) {
		return fail(Unauthorized, "%s did not sign", acct.Address)
	}
	return nil
}

// requireAuthority fails unless acct signed and is the stored authority.
func requireAuthority(h Host, acct tx.AccountMeta, stored types.Address) error {
	if err := requireSigner(h, acct); err != nil {
		return err
	}
	if acct.Address != stored {
		return fail(Unauthorized, "%s is not authority %s", acct.Address, stored)
	}
	return nil
}

// requireProgram fails unless acct is the expected program account.
func requireProgram(acct tx.AccountMeta, want types.Address, name string) error {
	if acct.Address != want {
		return fail(AddressMismatch, "expected %s program %s, got %s", name, want, acct.Address)
	}
	return nil
}

// requireDerived fails unless acct sits at derive(seed, key) for the
// executing program, and returns the bump.
func requireDerived(h Host, acct tx.AccountMeta, seed string, key types.Address) (uint8, error) {
	addr, bump, err := h.FindProgramAddress(seedsFor(seed, key))
	if err != nil {
		return 0, deriveError(err)
	}
	if addr != acct.Address {
		return 0, fail(AddressMismatch, "%s account %s, derived %s", SeedRole(seed), acct.Address, addr)
	}
	return bump, nil
}

// loadOwned reads a program-owned account. It returns nil when absent.
func loadOwned(h Host, addr types.Address) (*AccountInfo, error) {
	info, err := h.Account(addr)
	if err != nil {
		return nil, errors.Wrap(err, "read account")
	}
	if info == nil {
		return nil, nil
	}
	if info.Owner != h.ProgramID() {
		return nil, fail(InvalidAccountRole, "account %s owned by %s", addr, info.Owner)
	}
	return info, nil
}

// loadMint reads and decodes the MintAccount at addr.
func loadMint(h Host, addr types.Address) (*MintAccount, error) {
	info, err := loadOwned(h, addr)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fail(AccountNotFound, "mint %s", addr)
	}
	return DecodeMintAccount(info.Data)
}

// store creates the account when isNew, otherwise overwrites it.
func store(h Host, addr types.Address, isNew bool, data []byte) error {
	if isNew {
		return h.CreateAccount(addr, h.ProgramID(), data)
	}
	return h.WriteAccount(addr, data)
}
