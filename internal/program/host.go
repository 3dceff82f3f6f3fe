package program

import "github.com/Klingon-tech/golfmellow/pkg/types"

// AccountInfo is a ledger account as seen by a program.
type AccountInfo struct {
	Address types.Address `json:"address"`
	Owner   types.Address `json:"owner"`
	Data    []byte        `json:"data"`
}

// TokenAccount is a balance held in the ledger's native token standard.
type TokenAccount struct {
	Mint   types.Address `json:"mint"`
	Owner  types.Address `json:"owner"`
	Amount uint64        `json:"amount"`
}

// Host is the ledger runtime an instruction executes against. Every write
// made through a Host is staged; the host commits all of them together when
// the instruction (and its transaction) succeeds, and discards all of them
// otherwise.
type Host interface {
	// ProgramID is the program currently executing.
	ProgramID() types.Address

	// Account returns the account at addr, or nil when it does not exist.
	Account(addr types.Address) (*AccountInfo, error)
	// CreateAccount allocates a new account owned by owner.
	CreateAccount(addr, owner types.Address, data []byte) error
	// WriteAccount replaces the data of an existing account the program owns.
	WriteAccount(addr types.Address, data []byte) error

	// IsSigner reports whether addr signed the enclosing transaction.
	IsSigner(addr types.Address) bool
	// FindProgramAddress derives an off-curve address for the executing program.
	FindProgramAddress(seeds [][]byte) (types.Address, uint8, error)

	// TokenAccount reads a native token account, or nil when absent.
	TokenAccount(addr types.Address) (*TokenAccount, error)
	// InitializeMint registers mint with the native token standard.
	InitializeMint(mint types.Address, decimals uint8, authority types.Address) error
	// MintTo credits amount of mint to dest.
	MintTo(mint, dest types.Address, amount uint64) error
	// MintedInTx is the amount of mint credited by earlier instructions of
	// the enclosing transaction.
	MintedInTx(mint types.Address) uint64
	// Burn debits amount of mint from source, which owner must own.
	Burn(mint, source, owner types.Address, amount uint64) error
	// Transfer moves amount from source to dest; owner must own source.
	Transfer(source, dest, owner types.Address, amount uint64) error

	// Log appends a line to the transaction's program log.
	Log(msg string)
}
