package config

import (
	"path/filepath"
	"testing"
)

func TestGenesis_Validate_Builtin(t *testing.T) {
	for _, g := range []*Genesis{MainnetGenesis(), TestnetGenesis()} {
		if err := g.Validate(); err != nil {
			t.Fatalf("%s: %v", g.ChainID, err)
		}
	}
}

func TestProgramRules_MaxMintBaseUnits(t *testing.T) {
	r := DefaultProgramRules()
	if got, want := r.MaxMintBaseUnits(), uint64(15_000*Token); got != want {
		t.Fatalf("MaxMintBaseUnits = %d, want %d", got, want)
	}
}

func TestProgramRules_AllowsScheme(t *testing.T) {
	r := DefaultProgramRules()
	for _, s := range []string{"https", "HTTP", "ipfs", "ar"} {
		if !r.AllowsScheme(s) {
			t.Errorf("scheme %q should be allowed", s)
		}
	}
	if r.AllowsScheme("ftp") {
		t.Error("ftp should not be allowed")
	}
}

func TestGenesis_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Genesis)
	}{
		{"no chain id", func(g *Genesis) { g.ChainID = "" }},
		{"zero supply", func(g *Genesis) { g.Program.MaxSupply = 0 }},
		{"zero mint limit", func(g *Genesis) { g.Program.MaxMintPerTx = 0 }},
		{"too many decimals", func(g *Genesis) { g.Program.Decimals = 19 }},
		{"mint limit overflow", func(g *Genesis) { g.Program.MaxMintPerTx = 1 << 62 }},
		{"no schemes", func(g *Genesis) { g.Program.URISchemes = nil }},
		{"bad polygon len", func(g *Genesis) { g.Program.PolygonAddressLen = 40 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MainnetGenesis()
			tt.mutate(g)
			if err := g.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestGenesis_SaveLoadHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	g := TestnetGenesis()
	if err := g.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadGenesis(path)
	if err != nil {
		t.Fatal(err)
	}
	h1, _ := g.Hash()
	h2, _ := loaded.Hash()
	if h1 != h2 {
		t.Fatal("hash changed across save/load")
	}
	main, _ := MainnetGenesis().Hash()
	if main == h1 {
		t.Fatal("mainnet and testnet genesis must differ")
	}
}
