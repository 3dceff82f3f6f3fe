package program

import (
	"maps"

	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/cockroachdb/errors"
)

// fakeHost applies writes directly. Program handlers validate before their
// first write, so a rejected instruction must leave it untouched.
type fakeHost struct {
	accounts map[types.Address]AccountInfo
	tokens   map[types.Address]TokenAccount
	mints    map[types.Address]uint8
	signers  map[types.Address]bool
	minted   map[types.Address]uint64
	logs     []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		accounts: make(map[types.Address]AccountInfo),
		tokens:   make(map[types.Address]TokenAccount),
		mints:    make(map[types.Address]uint8),
		signers:  make(map[types.Address]bool),
		minted:   make(map[types.Address]uint64),
	}
}

type hostState struct {
	accounts map[types.Address]AccountInfo
	tokens   map[types.Address]TokenAccount
	mints    map[types.Address]uint8
}

func (h *fakeHost) snapshot() hostState {
	accounts := make(map[types.Address]AccountInfo, len(h.accounts))
	for k, v := range h.accounts {
		v.Data = append([]byte{}, v.Data...)
		accounts[k] = v
	}
	return hostState{accounts: accounts, tokens: maps.Clone(h.tokens), mints: maps.Clone(h.mints)}
}

func (h *fakeHost) ProgramID() types.Address { return ID }

func (h *fakeHost) Account(addr types.Address) (*AccountInfo, error) {
	a, ok := h.accounts[addr]
	if !ok {
		return nil, nil
	}
	a.Data = append([]byte{}, a.Data...)
	return &a, nil
}

func (h *fakeHost) CreateAccount(addr, owner types.Address, data []byte) error {
	if _, ok := h.accounts[addr]; ok {
		return errors.WithStack(AlreadyInitialized)
	}
	h.accounts[addr] = AccountInfo{Address: addr, Owner: owner, Data: append([]byte{}, data...)}
	return nil
}

func (h *fakeHost) WriteAccount(addr types.Address, data []byte) error {
	a, ok := h.accounts[addr]
	if !ok {
		return errors.WithStack(AccountNotFound)
	}
	a.Data = append([]byte{}, data...)
	h.accounts[addr] = a
	return nil
}

func (h *fakeHost) IsSigner(addr types.Address) bool { return h.signers[addr] }

func (h *fakeHost) FindProgramAddress(seeds [][]byte) (types.Address, uint8, error) {
	return crypto.FindProgramAddress(seeds, ID)
}

func (h *fakeHost) TokenAccount(addr types.Address) (*TokenAccount, error) {
	t, ok := h.tokens[addr]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (h *fakeHost) InitializeMint(mint types.Address, decimals uint8, _ types.Address) error {
	h.mints[mint] = decimals
	return nil
}

func (h *fakeHost) MintTo(mint, dest types.Address, amount uint64) error {
	t, ok := h.tokens[dest]
	if !ok {
		return errors.WithStack(AccountNotFound)
	}
	if t.Mint != mint {
		return errors.WithStack(AddressMismatch)
	}
	t.Amount += amount
	h.tokens[dest] = t
	h.minted[mint] += amount
	return nil
}

func (h *fakeHost) MintedInTx(mint types.Address) uint64 { return h.minted[mint] }

func (h *fakeHost) Burn(mint, source, owner types.Address, amount uint64) error {
	t, ok := h.tokens[source]
	if !ok {
		return errors.WithStack(AccountNotFound)
	}
	if t.Mint != mint {
		return errors.WithStack(AddressMismatch)
	}
	if t.Owner != owner {
		return errors.WithStack(Unauthorized)
	}
	if t.Amount < amount {
		return errors.WithStack(InsufficientBalance)
	}
	t.Amount -= amount
	h.tokens[source] = t
	return nil
}

func (h *fakeHost) Transfer(source, dest, owner types.Address, amount uint64) error {
	from := h.tokens[source]
	if from.Owner != owner {
		return errors.WithStack(Unauthorized)
	}
	if from.Amount < amount {
		return errors.WithStack(InsufficientBalance)
	}
	from.Amount -= amount
	h.tokens[source] = from
	to := h.tokens[dest]
	to.Amount += amount
	h.tokens[dest] = to
	return nil
}

func (h *fakeHost) Log(msg string) { h.logs = append(h.logs, msg) }

// openTokenAccount creates an empty native token account for owner.
func (h *fakeHost) openTokenAccount(owner, mint types.Address) types.Address {
	addr, _, err := TokenAccountAddress(owner, mint)
	if err != nil {
		panic(err)
	}
	h.tokens[addr] = TokenAccount{Mint: mint, Owner: owner}
	return addr
}
