package rpcclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Klingon-tech/golfmellow/config"
	"github.com/Klingon-tech/golfmellow/internal/ledger"
	klog "github.com/Klingon-tech/golfmellow/internal/log"
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/internal/rpc"
	"github.com/Klingon-tech/golfmellow/internal/storage"
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
)

type testEnv struct {
	client *Client
	ledger *ledger.Ledger
	key    *crypto.PrivateKey
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	l, err := ledger.New(storage.NewMemory(), config.TestnetGenesis())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	srv := rpc.New("127.0.0.1:0", l)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		client: New(fmt.Sprintf("http://%s/", srv.Addr())),
		ledger: l,
		key:    key,
	}
}

func TestClient_LedgerGetInfo(t *testing.T) {
	env := setupTestEnv(t)

	var result rpc.InfoResult
	if err := env.client.Call("ledger_getInfo", nil, &result); err != nil {
		t.Fatalf("call: %v", err)
	}
	if result.ChainID != config.TestnetGenesis().ChainID {
		t.Errorf("chain_id = %q", result.ChainID)
	}
}

func TestClient_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	err := env.client.Call("no_such_method", nil, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if rpcErr.Code != rpc.CodeMethodNotFound {
		t.Errorf("code = %d, want %d", rpcErr.Code, rpc.CodeMethodNotFound)
	}
	if rpcErr.Kind != "" {
		t.Errorf("kind = %q, want empty", rpcErr.Kind)
	}
}

func TestClient_ProgramErrorKind(t *testing.T) {
	env := setupTestEnv(t)

	// Minting against a mint that was never initialized.
	mint, _, err := program.MintAddress(env.key.Address())
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	ata, _, _ := program.TokenAccountAddress(env.key.Address(), mint)
	ix, err := program.NewMintTokensInstruction(mint, ata, env.key.Address(), config.Token)
	if err != nil {
		t.Fatalf("ix: %v", err)
	}
	b := tx.NewBuilder().SetNonce(1).AddInstruction(ix)
	if err := b.Sign(env.key); err != nil {
		t.Fatalf("sign: %v", err)
	}

	err = env.client.Call("tx_submit", rpc.TxSubmitParam{Transaction: b.Build()}, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if rpcErr.Code != CodeProgramError {
		t.Fatalf("code = %d, want %d", rpcErr.Code, CodeProgramError)
	}
	if rpcErr.Kind != "AccountNotFound" {
		t.Errorf("kind = %q, want AccountNotFound", rpcErr.Kind)
	}
	if rpcErr.Instruction != 0 {
		t.Errorf("instruction = %d, want 0", rpcErr.Instruction)
	}
}

func TestClient_BadEndpoint(t *testing.T) {
	c := New("http://127.0.0.1:1/")
	if err := c.Call("ledger_getInfo", nil, nil); err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}
}
