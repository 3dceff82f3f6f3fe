package ledger

import (
	"github.com/Klingon-tech/golfmellow/config"
	klog "github.com/Klingon-tech/golfmellow/internal/log"
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/cockroachdb/errors"
)

// invocation is the program.Host handed to one instruction. It enforces the
// account permissions the instruction declared.
type invocation struct {
	stage     *stage
	programID types.Address
	metas     []tx.AccountMeta
	signers   map[types.Address]bool
	logs      *[]string
}

var _ program.Host = (*invocation)(nil)

func (inv *invocation) ProgramID() types.Address {
	return inv.programID
}

func (inv *invocation) writable(addr types.Address) bool {
	for _, m := range inv.metas {
		if m.Address == addr && m.Writable {
			return true
		}
	}
	return false
}

func (inv *invocation) requireWritable(addr types.Address) error {
	if !inv.writable(addr) {
		return errors.Wrapf(program.InvalidInstruction, "account %s not declared writable", addr)
	}
	return nil
}

func (inv *invocation) Account(addr types.Address) (*program.AccountInfo, error) {
	rec, err := inv.stage.account(addr)
	if err != nil || rec == nil {
		return nil, err
	}
	return &program.AccountInfo{Address: addr, Owner: rec.Owner, Data: rec.Data}, nil
}

func (inv *invocation) CreateAccount(addr, owner types.Address, data []byte) error {
	if err := inv.requireWritable(addr); err != nil {
		return err
	}
	if owner != inv.programID {
		return errors.Wrapf(program.Unauthorized, "program %s cannot create accounts for %s", inv.programID, owner)
	}
	if len(data) > config.MaxAccountData {
		return errors.Wrapf(program.InvalidInstruction, "account data %d bytes, max %d", len(data), config.MaxAccountData)
	}
	existing, err := inv.stage.account(addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(program.AlreadyInitialized, "account %s", addr)
	}
	inv.stage.putAccount(addr, &accountRecord{Owner: owner, Data: data})
	return nil
}

func (inv *invocation) WriteAccount(addr types.Address, data []byte) error {
	if err := inv.requireWritable(addr); err != nil {
		return err
	}
	if len(data) > config.MaxAccountData {
		return errors.Wrapf(program.InvalidInstruction, "account data %d bytes, max %d", len(data), config.MaxAccountData)
	}
	rec, err := inv.stage.account(addr)
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.Wrapf(program.AccountNotFound, "account %s", addr)
	}
	if rec.Owner != inv.programID {
		return errors.Wrapf(program.Unauthorized, "account %s owned by %s", addr, rec.Owner)
	}
	rec.Data = data
	inv.stage.putAccount(addr, rec)
	return nil
}

func (inv *invocation) IsSigner(addr types.Address) bool {
	return inv.signers[addr]
}

func (inv *invocation) FindProgramAddress(seeds [][]byte) (types.Address, uint8, error) {
	return crypto.FindProgramAddress(seeds, inv.programID)
}

func (inv *invocation) TokenAccount(addr types.Address) (*program.TokenAccount, error) {
	return inv.stage.tokenAccount(addr)
}

func (inv *invocation) InitializeMint(mint types.Address, decimals uint8, authority types.Address) error {
	rec, err := inv.stage.account(mint)
	if err != nil {
		return err
	}
	if rec == nil || rec.Owner != inv.programID {
		return errors.Wrapf(program.Unauthorized, "mint %s is not owned by %s", mint, inv.programID)
	}
	existing, err := inv.stage.mint(mint)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(program.AlreadyInitialized, "mint %s already registered", mint)
	}
	inv.stage.putMint(mint, &mintRecord{Decimals: decimals, Authority: authority, Registrar: inv.programID})
	return nil
}

// registeredMint loads a mint the executing program may mint and burn.
func (inv *invocation) registeredMint(mint types.Address) (*mintRecord, error) {
	m, err := inv.stage.mint(mint)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.Wrapf(program.AccountNotFound, "mint %s not registered", mint)
	}
	if m.Registrar != inv.programID {
		return nil, errors.Wrapf(program.Unauthorized, "mint %s belongs to %s", mint, m.Registrar)
	}
	return m, nil
}

// holding loads a writable token account of mint.
func (inv *invocation) holding(addr, mint types.Address) (*program.TokenAccount, error) {
	if err := inv.requireWritable(addr); err != nil {
		return nil, err
	}
	t, err := inv.stage.tokenAccount(addr)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.Wrapf(program.AccountNotFound, "token account %s", addr)
	}
	if t.Mint != mint {
		return nil, errors.Wrapf(program.AddressMismatch, "token account %s holds mint %s", addr, t.Mint)
	}
	return t, nil
}

func (inv *invocation) requireOwner(t *program.TokenAccount, owner types.Address) error {
	if t.Owner != owner || !inv.signers[owner] {
		return errors.Wrapf(program.Unauthorized, "%s does not own the token account", owner)
	}
	return nil
}

func (inv *invocation) MintTo(mint, dest types.Address, amount uint64) error {
	m, err := inv.registeredMint(mint)
	if err != nil {
		return err
	}
	t, err := inv.holding(dest, mint)
	if err != nil {
		return err
	}
	if m.Supply+amount < m.Supply || t.Amount+amount < t.Amount {
		return errors.Wrap(program.Overflow, "mint to")
	}
	m.Supply += amount
	t.Amount += amount
	inv.stage.putMint(mint, m)
	inv.stage.putTokenAccount(dest, t)
	inv.stage.minted[mint] += amount
	return nil
}

func (inv *invocation) MintedInTx(mint types.Address) uint64 {
	return inv.stage.minted[mint]
}

func (inv *invocation) Burn(mint, source, owner types.Address, amount uint64) error {
	m, err := inv.registeredMint(mint)
	if err != nil {
		return err
	}
	t, err := inv.holding(source, mint)
	if err != nil {
		return err
	}
	if err := inv.requireOwner(t, owner); err != nil {
		return err
	}
	if t.Amount < amount {
		return errors.Wrapf(program.InsufficientBalance, "balance %d, burn %d", t.Amount, amount)
	}
	t.Amount -= amount
	m.Supply -= amount
	inv.stage.putMint(mint, m)
	inv.stage.putTokenAccount(source, t)
	return nil
}

func (inv *invocation) Transfer(source, dest, owner types.Address, amount uint64) error {
	src, err := inv.stage.tokenAccount(source)
	if err != nil {
		return err
	}
	if src == nil {
		return errors.Wrapf(program.AccountNotFound, "token account %s", source)
	}
	from, err := inv.holding(source, src.Mint)
	if err != nil {
		return err
	}
	to, err := inv.holding(dest, src.Mint)
	if err != nil {
		return err
	}
	if err := inv.requireOwner(from, owner); err != nil {
		return err
	}
	if from.Amount < amount {
		return errors.Wrapf(program.InsufficientBalance, "balance %d, transfer %d", from.Amount, amount)
	}
	if source == dest {
		return nil
	}
	if to.Amount+amount < to.Amount {
		return errors.Wrap(program.Overflow, "transfer")
	}
	from.Amount -= amount
	to.Amount += amount
	inv.stage.putTokenAccount(source, from)
	inv.stage.putTokenAccount(dest, to)
	return nil
}

func (inv *invocation) Log(msg string) {
	*inv.logs = append(*inv.logs, msg)
	klog.Program.Debug().Str("program", inv.programID.Hex()).Msg(msg)
}
