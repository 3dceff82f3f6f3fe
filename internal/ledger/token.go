package ledger

import (
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/cockroachdb/errors"
)

// Native token program instructions.
const (
	TokenCreateAccount byte = 1
)

// NewCreateTokenAccountInstruction opens owner's token account for mint.
// The payer signs; the owner does not have to.
func NewCreateTokenAccountInstruction(payer, owner, mint types.Address) (tx.Instruction, error) {
	addr, _, err := program.TokenAccountAddress(owner, mint)
	if err != nil {
		return tx.Instruction{}, err
	}
	return tx.Instruction{
		ProgramID: program.TokenProgramID,
		Accounts: []tx.AccountMeta{
			{Address: addr, Writable: true},
			{Address: owner},
			{Address: mint},
			{Address: payer, Signer: true, Writable: true},
		},
		Data: []byte{TokenCreateAccount},
	}, nil
}

// processToken executes an instruction addressed to the native token program.
func processToken(inv *invocation, ix tx.Instruction) error {
	if len(ix.Data) != 1 || ix.Data[0] != TokenCreateAccount {
		return errors.Wrap(program.InvalidInstruction, "unknown token instruction")
	}
	if len(ix.Accounts) != 4 {
		return errors.Wrapf(program.InvalidInstruction, "createAccount expects 4 accounts, got %d", len(ix.Accounts))
	}
	acct, owner, mint, payer := ix.Accounts[0], ix.Accounts[1], ix.Accounts[2], ix.Accounts[3]
	if !payer.Signer || !inv.IsSigner(payer.Address) {
		return errors.Wrapf(program.Unauthorized, "payer %s did not sign", payer.Address)
	}
	want, _, err := program.TokenAccountAddress(owner.Address, mint.Address)
	if err != nil {
		return err
	}
	if acct.Address != want {
		return errors.Wrapf(program.AddressMismatch, "token account %s, derived %s", acct.Address, want)
	}
	m, err := inv.stage.mint(mint.Address)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.Wrapf(program.AccountNotFound, "mint %s not registered", mint.Address)
	}
	data := encodeTokenAccount(&program.TokenAccount{Mint: mint.Address, Owner: owner.Address})
	if err := inv.CreateAccount(acct.Address, program.TokenProgramID, data); err != nil {
		return err
	}
	inv.Log("Token account created for " + owner.Address.String())
	return nil
}
