package ledger

import (
	"encoding/binary"

	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/internal/storage"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/cockroachdb/errors"
)

// stage is the write overlay of one transaction. Reads fall through to the
// committed store; nothing reaches the store until commit.
type stage struct {
	store    *store
	accounts map[types.Address]*accountRecord
	mints    map[types.Address]*mintRecord
	minted   map[types.Address]uint64 // issued per mint by this transaction
}

func newStage(s *store) *stage {
	return &stage{
		store:    s,
		accounts: make(map[types.Address]*accountRecord),
		mints:    make(map[types.Address]*mintRecord),
		minted:   make(map[types.Address]uint64),
	}
}

// account returns a copy of the account, or nil when absent.
func (st *stage) account(addr types.Address) (*accountRecord, error) {
	if rec, ok := st.accounts[addr]; ok {
		return &accountRecord{Owner: rec.Owner, Data: append([]byte{}, rec.Data...)}, nil
	}
	return st.store.getAccount(addr)
}

func (st *stage) putAccount(addr types.Address, rec *accountRecord) {
	st.accounts[addr] = &accountRecord{Owner: rec.Owner, Data: append([]byte{}, rec.Data...)}
}

func (st *stage) mint(addr types.Address) (*mintRecord, error) {
	if m, ok := st.mints[addr]; ok {
		cp := *m
		return &cp, nil
	}
	return st.store.getMint(addr)
}

func (st *stage) putMint(addr types.Address, m *mintRecord) {
	cp := *m
	st.mints[addr] = &cp
}

// tokenAccount decodes a native token account, or nil when absent.
func (st *stage) tokenAccount(addr types.Address) (*program.TokenAccount, error) {
	rec, err := st.account(addr)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.Owner != program.TokenProgramID {
		return nil, errors.Wrapf(program.InvalidAccountRole, "%s is not a token account", addr)
	}
	return decodeTokenAccount(rec.Data)
}

func (st *stage) putTokenAccount(addr types.Address, t *program.TokenAccount) {
	st.putAccount(addr, &accountRecord{Owner: program.TokenProgramID, Data: encodeTokenAccount(t)})
}

// commit writes every staged change plus extra receipts into one batch.
func (st *stage) commit(extra func(b batchWriter) error) error {
	batch, err := st.store.newBatch()
	if err != nil {
		return err
	}
	accounts := st.store.accounts.Wrap(batch)
	for addr, rec := range st.accounts {
		if err := accounts.Put(addr[:], rec.encode()); err != nil {
			return err
		}
	}
	mints := st.store.mints.Wrap(batch)
	for addr, m := range st.mints {
		if err := mints.Put(addr[:], m.encode()); err != nil {
			return err
		}
	}
	if extra != nil {
		if err := extra(batchWriter{store: st.store, batch: batch}); err != nil {
			return err
		}
	}
	return batch.Commit()
}

// batchWriter exposes the receipt and state namespaces of an open batch.
type batchWriter struct {
	store *store
	batch storage.Batch
}

func (w batchWriter) putReceipt(id types.TxID, data []byte) error {
	return w.store.receipts.Wrap(w.batch).Put(id[:], data)
}

func (w batchWriter) putTxCount(n uint64) error {
	return w.store.state.Wrap(w.batch).Put(keyTxCount, binary.BigEndian.AppendUint64(nil, n))
}

const tokenAccountSize = 32 + 32 + 8

func encodeTokenAccount(t *program.TokenAccount) []byte {
	out := make([]byte, 0, tokenAccountSize)
	out = append(out, t.Mint[:]...)
	out = append(out, t.Owner[:]...)
	return binary.LittleEndian.AppendUint64(out, t.Amount)
}

func decodeTokenAccount(b []byte) (*program.TokenAccount, error) {
	if len(b) != tokenAccountSize {
		return nil, errors.Wrapf(program.InvalidAccountRole, "token account has %d bytes", len(b))
	}
	t := &program.TokenAccount{Amount: binary.LittleEndian.Uint64(b[64:])}
	copy(t.Mint[:], b[:32])
	copy(t.Owner[:], b[32:64])
	return t, nil
}
