package node

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/golfmellow/config"
	"github.com/Klingon-tech/golfmellow/internal/rpc"
	"github.com/Klingon-tech/golfmellow/internal/rpcclient"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default(config.Testnet)
	cfg.DataDir = t.TempDir()
	cfg.RPC.Enabled = true
	cfg.RPC.Addr = "127.0.0.1"
	cfg.RPC.Port = 0
	cfg.Log.Level = "error"
	return cfg
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.golfmellow/genesis.json", filepath.Join(home, ".golfmellow/genesis.json")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveGenesis_BuiltIn(t *testing.T) {
	cfg := testConfig(t)
	g, err := resolveGenesis(cfg)
	if err != nil {
		t.Fatalf("resolveGenesis: %v", err)
	}
	if g.ChainID != config.TestnetGenesis().ChainID {
		t.Errorf("chain_id = %q", g.ChainID)
	}
}

func TestResolveGenesis_File(t *testing.T) {
	cfg := testConfig(t)
	g := config.TestnetGenesis()
	g.ChainID = "golfmellow-custom"
	g.Program.MaxMintPerTx = 100
	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := g.Save(path); err != nil {
		t.Fatalf("save genesis: %v", err)
	}
	cfg.Genesis = path

	loaded, err := resolveGenesis(cfg)
	if err != nil {
		t.Fatalf("resolveGenesis: %v", err)
	}
	if loaded.ChainID != "golfmellow-custom" || loaded.Program.MaxMintPerTx != 100 {
		t.Errorf("loaded genesis = %+v", loaded)
	}

	cfg.Genesis = filepath.Join(t.TempDir(), "missing.json")
	if _, err := resolveGenesis(cfg); err == nil {
		t.Error("expected error for missing genesis file")
	}
}

func TestNode_StartServeStop(t *testing.T) {
	cfg := testConfig(t)
	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	client := rpcclient.New(fmt.Sprintf("http://%s/", n.RPCAddr()))
	var info rpc.InfoResult
	if err := client.Call("ledger_getInfo", nil, &info); err != nil {
		n.Stop()
		t.Fatalf("ledger_getInfo: %v", err)
	}
	if info.ChainID != n.Genesis().ChainID {
		t.Errorf("chain_id = %q, want %q", info.ChainID, n.Genesis().ChainID)
	}
	n.Stop()

	// The ledger directory survives a restart.
	n2, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer n2.Stop()
	if n2.Ledger().Info().GenesisHash != n.Ledger().Info().GenesisHash {
		t.Error("genesis hash changed across restart")
	}
}

func TestNode_RPCDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.RPC.Enabled = false
	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Stop()
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n.RPCAddr() != "" {
		t.Errorf("RPCAddr = %q, want empty", n.RPCAddr())
	}
}
