// derive_key.go prints the pubkey, address and GM program accounts for a
// hex-encoded private key file.
// Usage: go run scripts/derive_key.go [--testnet] <keyfile>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "--testnet" {
		types.SetAddressHRP(types.TestnetHRP)
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: derive_key [--testnet] <keyfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	keyBytes, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer key.Zero()

	addr := key.Address()
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(key.PublicKey()))
	fmt.Printf("address=%s\n", addr)

	mint, bump, err := program.MintAddress(addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("mint=%s bump=%d\n", mint, bump)
	for _, d := range []struct {
		name   string
		derive func(types.Address) (types.Address, uint8, error)
	}{
		{"mint_proxy", program.MintProxyAddress},
		{"burn_proxy", program.BurnProxyAddress},
		{"polygon_account", program.PolygonAccountAddress},
	} {
		a, b, err := d.derive(mint)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("%s=%s bump=%d\n", d.name, a, b)
	}
}
