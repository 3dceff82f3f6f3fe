package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/golfmellow/internal/storage"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// Key prefixes and state keys for the ledger store.
var (
	prefixAccount = []byte("a/") // a/<addr(32)> -> owner(32) || data
	prefixMint    = []byte("n/") // n/<mint(32)> -> native mint record
	prefixReceipt = []byte("r/") // r/<txid(32)> -> receipt JSON
	prefixState   = []byte("s/")
	keyGenesis    = []byte("genesis") // genesis hash(32)
	keyTxCount    = []byte("txcount") // committed transactions(8)
)

// accountRecord is the persisted form of an account.
type accountRecord struct {
	Owner types.Address
	Data  []byte
}

func (r *accountRecord) encode() []byte {
	out := make([]byte, 0, types.AddressSize+len(r.Data))
	out = append(out, r.Owner[:]...)
	return append(out, r.Data...)
}

func decodeAccountRecord(b []byte) (*accountRecord, error) {
	if len(b) < types.AddressSize {
		return nil, fmt.Errorf("account record too short: %d bytes", len(b))
	}
	r := &accountRecord{Data: append([]byte{}, b[types.AddressSize:]...)}
	copy(r.Owner[:], b[:types.AddressSize])
	return r, nil
}

// mintRecord is a mint registered with the native token standard.
type mintRecord struct {
	Decimals  uint8         `json:"decimals"`
	Authority types.Address `json:"authority"`
	Supply    uint64        `json:"supply"`
	Registrar types.Address `json:"registrar"` // Program allowed to mint and burn.
}

const mintRecordSize = 1 + 32 + 8 + 32

func (m *mintRecord) encode() []byte {
	out := make([]byte, 0, mintRecordSize)
	out = append(out, m.Decimals)
	out = append(out, m.Authority[:]...)
	out = binary.LittleEndian.AppendUint64(out, m.Supply)
	return append(out, m.Registrar[:]...)
}

func decodeMintRecord(b []byte) (*mintRecord, error) {
	if len(b) != mintRecordSize {
		return nil, fmt.Errorf("mint record has %d bytes, want %d", len(b), mintRecordSize)
	}
	m := &mintRecord{Decimals: b[0], Supply: binary.LittleEndian.Uint64(b[33:41])}
	copy(m.Authority[:], b[1:33])
	copy(m.Registrar[:], b[41:])
	return m, nil
}

// store wraps the namespaces of one database.
type store struct {
	db       storage.DB
	accounts *storage.PrefixDB
	mints    *storage.PrefixDB
	receipts *storage.PrefixDB
	state    *storage.PrefixDB
}

func newStore(db storage.DB) *store {
	return &store{
		db:       db,
		accounts: storage.NewPrefixDB(db, prefixAccount),
		mints:    storage.NewPrefixDB(db, prefixMint),
		receipts: storage.NewPrefixDB(db, prefixReceipt),
		state:    storage.NewPrefixDB(db, prefixState),
	}
}

// getAccount returns nil when the account does not exist.
func (s *store) getAccount(addr types.Address) (*accountRecord, error) {
	b, err := s.accounts.Get(addr[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account get %s: %w", addr, err)
	}
	return decodeAccountRecord(b)
}

// getMint returns nil when the mint is not registered.
func (s *store) getMint(addr types.Address) (*mintRecord, error) {
	b, err := s.mints.Get(addr[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mint get %s: %w", addr, err)
	}
	return decodeMintRecord(b)
}

// getReceipt returns nil when no transaction with id was committed.
func (s *store) getReceipt(id types.TxID) (*Receipt, error) {
	b, err := s.receipts.Get(id[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("receipt get %s: %w", id, err)
	}
	var r Receipt
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("receipt unmarshal: %w", err)
	}
	return &r, nil
}

func (s *store) hasReceipt(id types.TxID) (bool, error) {
	return s.receipts.Has(id[:])
}

func (s *store) txCount() (uint64, error) {
	b, err := s.state.Get(keyTxCount)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("tx count get: %w", err)
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("tx count has %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func (s *store) genesisHash() (types.Hash, bool, error) {
	b, err := s.state.Get(keyGenesis)
	if errors.Is(err, storage.ErrNotFound) {
		return types.Hash{}, false, nil
	}
	if err != nil {
		return types.Hash{}, false, fmt.Errorf("genesis get: %w", err)
	}
	var h types.Hash
	if len(b) != types.HashSize {
		return h, false, fmt.Errorf("genesis hash has %d bytes", len(b))
	}
	copy(h[:], b)
	return h, true, nil
}

func (s *store) putGenesisHash(h types.Hash) error {
	return s.state.Put(keyGenesis, h[:])
}

// newBatch opens an atomic batch spanning every namespace.
func (s *store) newBatch() (storage.Batch, error) {
	b, ok := s.db.(storage.Batcher)
	if !ok {
		return nil, fmt.Errorf("database does not support atomic batches")
	}
	return b.NewBatch(), nil
}

// forEachAccount iterates committed accounts owned by owner.
func (s *store) forEachAccount(owner types.Address, fn func(addr types.Address, rec *accountRecord) error) error {
	return s.accounts.ForEach(nil, func(key, value []byte) error {
		rec, err := decodeAccountRecord(value)
		if err != nil {
			return err
		}
		if rec.Owner != owner {
			return nil
		}
		var addr types.Address
		copy(addr[:], key)
		return fn(addr, rec)
	})
}
