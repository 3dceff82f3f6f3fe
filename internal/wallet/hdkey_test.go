package wallet

import (
	"encoding/hex"
	"testing"
)

func hexPrefix(b []byte, n int) string {
	return hex.EncodeToString(b[:n])
}

func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	return seed
}

func TestNewMasterKey_InvalidSeedLength(t *testing.T) {
	for _, n := range []int{0, 32, 128} {
		if _, err := NewMasterKey(make([]byte, n)); err == nil {
			t.Errorf("NewMasterKey(%d bytes) should fail", n)
		}
	}
}

func TestAccount_Depth(t *testing.T) {
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	if master.Depth() != 0 {
		t.Errorf("master depth = %d", master.Depth())
	}
	key, err := master.Account(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if key.Depth() != 4 {
		t.Errorf("account key depth = %d, want 4", key.Depth())
	}
}

func TestAccount_AddressMatchesSigner(t *testing.T) {
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	key, err := master.Account(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	addr, err := key.Address()
	if err != nil {
		t.Fatal(err)
	}
	signer, err := key.Signer()
	if err != nil {
		t.Fatal(err)
	}
	if signer.Address() != addr {
		t.Errorf("signer address %s != key address %s", signer.Address(), addr)
	}
}

func TestDeriveSigner_Deterministic(t *testing.T) {
	seed := testSeed(t)
	a, err := DeriveSigner(seed, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveSigner(seed, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	c, err := DeriveSigner(seed, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if a.Address() != b.Address() {
		t.Error("same path produced different keys")
	}
	if a.Address() == c.Address() {
		t.Error("different paths produced the same key")
	}
}
