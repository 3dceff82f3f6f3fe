// Package ledger is the reference host for the token-issuance program. It
// keeps accounts in a key-value store, verifies transaction signatures, runs
// each instruction against a staged overlay and commits a transaction's
// writes in one atomic batch.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Klingon-tech/golfmellow/config"
	klog "github.com/Klingon-tech/golfmellow/internal/log"
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/internal/storage"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Ledger errors.
var (
	ErrInvalidTx       = errors.New("invalid transaction")
	ErrDuplicateTx     = errors.New("transaction already committed")
	ErrUnknownProgram  = errors.New("unknown program")
	ErrGenesisMismatch = errors.New("database was created with a different genesis")
)

// TxError reports which instruction rejected a transaction.
type TxError struct {
	TxID        types.TxID
	Instruction int
	Err         error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("tx %s instruction %d: %v", e.TxID, e.Instruction, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

// Receipt records a committed transaction.
type Receipt struct {
	TxID         types.TxID      `json:"txid"`
	Sequence     uint64          `json:"sequence"`
	Timestamp    int64           `json:"timestamp"`
	Signers      []types.Address `json:"signers"`
	Instructions int             `json:"instructions"`
	Logs         []string        `json:"logs"`
}

// Info summarizes the ledger.
type Info struct {
	ChainID        string              `json:"chain_id"`
	GenesisHash    types.Hash          `json:"genesis_hash"`
	TxCount        uint64              `json:"tx_count"`
	ProgramID      types.Address       `json:"program_id"`
	TokenProgramID types.Address       `json:"token_program_id"`
	Rules          config.ProgramRules `json:"rules"`
}

// NativeMint is a mint registered with the native token standard.
type NativeMint struct {
	Address   types.Address `json:"address"`
	Decimals  uint8         `json:"decimals"`
	Authority types.Address `json:"authority"`
	Supply    uint64        `json:"supply"`
	Registrar types.Address `json:"registrar"`
}

type processor func(inv *invocation, ix tx.Instruction) error

// Ledger executes transactions one at a time. Queries may run concurrently
// with each other but not with a commit.
type Ledger struct {
	mu          sync.RWMutex
	store       *store
	genesis     *config.Genesis
	genesisHash types.Hash
	txCount     uint64
	programs    map[types.Address]processor
	now         func() time.Time
}

// New opens a ledger over db. db must implement storage.Batcher.
func New(db storage.DB, genesis *config.Genesis) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("storage db is nil")
	}
	if _, ok := db.(storage.Batcher); !ok {
		return nil, fmt.Errorf("storage db must support atomic batches")
	}
	if err := genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	hash, err := genesis.Hash()
	if err != nil {
		return nil, fmt.Errorf("genesis hash: %w", err)
	}

	s := newStore(db)
	stored, ok, err := s.genesisHash()
	if err != nil {
		return nil, err
	}
	if ok && stored != hash {
		return nil, fmt.Errorf("%w: stored %s, configured %s", ErrGenesisMismatch, stored, hash)
	}
	if !ok {
		if err := s.putGenesisHash(hash); err != nil {
			return nil, fmt.Errorf("store genesis hash: %w", err)
		}
	}
	count, err := s.txCount()
	if err != nil {
		return nil, err
	}

	gm := program.New(genesis.Program)
	l := &Ledger{
		store:       s,
		genesis:     genesis,
		genesisHash: hash,
		txCount:     count,
		now:         time.Now,
		programs: map[types.Address]processor{
			program.ID: func(inv *invocation, ix tx.Instruction) error {
				return gm.Process(inv, ix.Accounts, ix.Data)
			},
			program.TokenProgramID: processToken,
		},
	}
	klog.Ledger.Info().
		Str("chain_id", genesis.ChainID).
		Str("genesis", hash.String()).
		Uint64("tx_count", count).
		Msg("Ledger opened")
	return l, nil
}

// Submit verifies, executes and commits t. On any error nothing is written.
func (l *Ledger) Submit(ctx context.Context, t *tx.Transaction) (*Receipt, error) {
	return l.execute(ctx, t, true)
}

// Simulate executes t against current state and discards the result.
func (l *Ledger) Simulate(ctx context.Context, t *tx.Transaction) (*Receipt, error) {
	return l.execute(ctx, t, false)
}

func (l *Ledger) execute(ctx context.Context, t *tx.Transaction, commit bool) (*Receipt, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transaction", ErrInvalidTx)
	}
	defer klog.Benchmark("execute tx")()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	if err := t.VerifySignatures(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := t.Hash()
	signers := t.SignedAddresses()
	signerSet := lo.Associate(signers, func(a types.Address) (types.Address, bool) { return a, true })

	if commit {
		l.mu.Lock()
		defer l.mu.Unlock()
	} else {
		l.mu.RLock()
		defer l.mu.RUnlock()
	}

	dup, err := l.store.hasReceipt(id)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTx, id)
	}

	st := newStage(l.store)
	var logs []string
	for i, ix := range t.Instructions {
		run, ok := l.programs[ix.ProgramID]
		if !ok {
			return nil, &TxError{TxID: id, Instruction: i, Err: fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)}
		}
		inv := &invocation{stage: st, programID: ix.ProgramID, metas: ix.Accounts, signers: signerSet, logs: &logs}
		if err := run(inv, ix); err != nil {
			klog.Ledger.Debug().Str("tx", id.String()).Int("instruction", i).Err(err).Msg("Transaction rejected")
			return nil, &TxError{TxID: id, Instruction: i, Err: err}
		}
	}

	receipt := &Receipt{
		TxID:         id,
		Sequence:     l.txCount + 1,
		Timestamp:    l.now().Unix(),
		Signers:      signers,
		Instructions: len(t.Instructions),
		Logs:         lo.Ternary(logs == nil, []string{}, logs),
	}
	if !commit {
		return receipt, nil
	}

	data, err := json.Marshal(receipt)
	if err != nil {
		return nil, fmt.Errorf("receipt marshal: %w", err)
	}
	err = st.commit(func(w batchWriter) error {
		if err := w.putReceipt(id, data); err != nil {
			return err
		}
		return w.putTxCount(receipt.Sequence)
	})
	if err != nil {
		return nil, fmt.Errorf("commit tx %s: %w", id, err)
	}
	l.txCount = receipt.Sequence

	klog.Ledger.Info().
		Str("tx", id.String()).
		Uint64("seq", receipt.Sequence).
		Int("instructions", receipt.Instructions).
		Msg("Transaction committed")
	return receipt, nil
}

// Info returns ledger metadata.
func (l *Ledger) Info() Info {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Info{
		ChainID:        l.genesis.ChainID,
		GenesisHash:    l.genesisHash,
		TxCount:        l.txCount,
		ProgramID:      program.ID,
		TokenProgramID: program.TokenProgramID,
		Rules:          l.genesis.Program,
	}
}

// Account returns a committed account, or nil when absent.
func (l *Ledger) Account(addr types.Address) (*program.AccountInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, err := l.store.getAccount(addr)
	if err != nil || rec == nil {
		return nil, err
	}
	return &program.AccountInfo{Address: addr, Owner: rec.Owner, Data: rec.Data}, nil
}

// TokenAccount returns a committed native token account, or nil when absent.
func (l *Ledger) TokenAccount(addr types.Address) (*program.TokenAccount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return newStage(l.store).tokenAccount(addr)
}

// Mint returns a registered native mint, or nil when absent.
func (l *Ledger) Mint(addr types.Address) (*NativeMint, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, err := l.store.getMint(addr)
	if err != nil || m == nil {
		return nil, err
	}
	return &NativeMint{Address: addr, Decimals: m.Decimals, Authority: m.Authority, Supply: m.Supply, Registrar: m.Registrar}, nil
}

// Receipt returns the receipt of a committed transaction, or nil.
func (l *Ledger) Receipt(id types.TxID) (*Receipt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.getReceipt(id)
}

// TokenAccountsByOwner lists the committed token accounts of owner.
func (l *Ledger) TokenAccountsByOwner(owner types.Address) (map[types.Address]program.TokenAccount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[types.Address]program.TokenAccount)
	err := l.store.forEachAccount(program.TokenProgramID, func(addr types.Address, rec *accountRecord) error {
		t, err := decodeTokenAccount(rec.Data)
		if err != nil {
			return err
		}
		if t.Owner == owner {
			out[addr] = *t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
