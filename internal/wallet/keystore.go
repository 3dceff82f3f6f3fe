package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	klog "github.com/Klingon-tech/golfmellow/internal/log"
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
)

const keystoreVersion = 1

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
)

// walletFile is the on-disk JSON form of a wallet.
type walletFile struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Seed      []byte         `json:"seed"`
	Accounts  []AccountEntry `json:"accounts"`
}

// AccountEntry names a derived signing key.
type AccountEntry struct {
	Account uint32 `json:"account"`
	Index   uint32 `json:"index"`
	Label   string `json:"label,omitempty"`
	Address string `json:"address"`
}

// Keystore is a directory of encrypted wallet files.
type Keystore struct {
	dir string
}

// NewKeystore opens dir, creating it with owner-only permissions.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

func (ks *Keystore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid wallet name %q", name)
	}
	return filepath.Join(ks.dir, name+".wallet"), nil
}

// Create seals seed under password and records account 0/0.
func (ks *Keystore) Create(name string, seed, password []byte, params KDFParams) (*AccountEntry, error) {
	path, err := ks.path(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrWalletExists, name)
	}
	first, err := entryFor(seed, 0, 0, "default")
	if err != nil {
		return nil, err
	}
	sealed, err := Seal(seed, password, params)
	if err != nil {
		return nil, fmt.Errorf("seal seed: %w", err)
	}
	wf := &walletFile{
		Version:   keystoreVersion,
		CreatedAt: time.Now().UTC(),
		Seed:      sealed,
		Accounts:  []AccountEntry{*first},
	}
	if err := writeWallet(path, wf); err != nil {
		return nil, err
	}
	klog.Wallet.Info().Str("wallet", name).Str("address", first.Address).Msg("Wallet created")
	return first, nil
}

// Seed decrypts the wallet seed.
func (ks *Keystore) Seed(name string, password []byte) ([]byte, error) {
	wf, _, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	return Open(wf.Seed, password)
}

// Signer decrypts the wallet and derives the key of one account entry.
func (ks *Keystore) Signer(name string, password []byte, account, index uint32) (*crypto.PrivateKey, error) {
	seed, err := ks.Seed(name, password)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)
	return DeriveSigner(seed, account, index)
}

// AddAccount derives and records the key at account/index.
func (ks *Keystore) AddAccount(name string, password []byte, account, index uint32, label string) (*AccountEntry, error) {
	wf, path, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	for _, e := range wf.Accounts {
		if e.Account == account && e.Index == index {
			return &e, nil
		}
	}
	seed, err := Open(wf.Seed, password)
	if err != nil {
		return nil, err
	}
	defer wipe(seed)
	entry, err := entryFor(seed, account, index, label)
	if err != nil {
		return nil, err
	}
	wf.Accounts = append(wf.Accounts, *entry)
	sort.Slice(wf.Accounts, func(i, j int) bool {
		a, b := wf.Accounts[i], wf.Accounts[j]
		return a.Account < b.Account || (a.Account == b.Account && a.Index < b.Index)
	})
	if err := writeWallet(path, wf); err != nil {
		return nil, err
	}
	return entry, nil
}

// Accounts lists the recorded account entries.
func (ks *Keystore) Accounts(name string) ([]AccountEntry, error) {
	wf, _, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	return wf.Accounts, nil
}

// List returns the wallet names in the keystore, sorted.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".wallet" {
			names = append(names, strings.TrimSuffix(e.Name(), ".wallet"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path, err := ks.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
		}
		return err
	}
	return nil
}

func entryFor(seed []byte, account, index uint32, label string) (*AccountEntry, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	key, err := master.Account(account, index)
	if err != nil {
		return nil, err
	}
	addr, err := key.Address()
	if err != nil {
		return nil, err
	}
	return &AccountEntry{Account: account, Index: index, Label: label, Address: addr.String()}, nil
}

func (ks *Keystore) read(name string) (*walletFile, string, error) {
	path, err := ks.path(name)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrWalletNotFound, name)
		}
		return nil, "", fmt.Errorf("read wallet: %w", err)
	}
	var wf walletFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, "", fmt.Errorf("parse wallet: %w", err)
	}
	if wf.Version != keystoreVersion {
		return nil, "", fmt.Errorf("unsupported wallet version %d", wf.Version)
	}
	return &wf, path, nil
}

func writeWallet(path string, wf *walletFile) error {
	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return os.Rename(tmp, path)
}
