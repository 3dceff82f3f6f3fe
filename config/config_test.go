package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gm.conf")
	content := "# comment\nnetwork = testnet\nrpc.port = 9100\nrpc.allowed = 127.0.0.1, 10.0.0.0/8\nlog.level = \"debug\"\nunknown.key = 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatal(err)
	}
	if cfg.Network != Testnet || cfg.RPC.Port != 9100 || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.RPC.AllowedIPs) != 2 || cfg.RPC.AllowedIPs[1] != "10.0.0.0/8" {
		t.Fatalf("allowed = %v", cfg.RPC.AllowedIPs)
	}
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil || len(values) != 0 {
		t.Fatalf("missing file should yield empty map, got %v %v", values, err)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gm.conf")
	os.WriteFile(path, []byte("justakey\n"), 0644)
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseArgsAndResolve(t *testing.T) {
	dir := t.TempDir()
	f, err := ParseArgs([]string{"--testnet", "--datadir", dir, "--rpc=false", "--log-level", "warn"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Resolve(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Network != Testnet || cfg.RPC.Enabled || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RPC.Port != 8999 {
		t.Fatalf("testnet rpc port = %d", cfg.RPC.Port)
	}
	if _, err := os.Stat(cfg.ConfigFile()); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if _, err := os.Stat(cfg.LedgerDir()); err != nil {
		t.Fatalf("ledger dir not created: %v", err)
	}
}

func TestParseArgs_StrayFlag(t *testing.T) {
	if _, err := ParseArgs([]string{"extra", "--rpc-port", "1"}, io.Discard); err == nil {
		t.Fatal("expected error for flag after positional argument")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad network", func(c *Config) { c.Network = "devnet" }},
		{"no datadir", func(c *Config) { c.DataDir = "" }},
		{"bad port", func(c *Config) { c.RPC.Port = 70000 }},
		{"bad allowed", func(c *Config) { c.RPC.AllowedIPs = []string{"not-an-ip"} }},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultMainnet()
			tt.mutate(c)
			if err := Validate(c); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
