package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/internal/rpc"
	"github.com/Klingon-tech/golfmellow/internal/rpcclient"
	"github.com/Klingon-tech/golfmellow/pkg/amount"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// ── derive ──────────────────────────────────────────────────────────────

func cmdDerive(e *env, args []string) {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	seed := fs.String("seed", "", "Seed name (golf_mellow, mint_pda, burn_pda, InitializePDA)")
	key := fs.String("key", "", "Key address (authority for the mint, mint otherwise)")
	fs.Parse(args)

	if *seed == "" || *key == "" {
		fatal("Usage: gm-cli derive --seed <seed> --key <addr>")
	}

	var res rpc.DeriveResult
	if err := e.client.Call("gm_derive", rpc.DeriveParam{Seed: *seed, Key: *key}, &res); err != nil {
		fatal("gm_derive: %v", err)
	}

	fmt.Printf("Address: %s\n", res.Address)
	fmt.Printf("Seed:    %s\n", res.Seed)
	fmt.Printf("Bump:    %d\n", res.Bump)
	fmt.Printf("Exists:  %v\n", res.Exists)
}

// ── mint ────────────────────────────────────────────────────────────────

func cmdMint(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gm-cli mint <init|mint|burn|info>")
	}

	switch args[0] {
	case "init":
		cmdMintInit(e, args[1:])
	case "mint":
		cmdMintTokens(e, args[1:])
	case "burn":
		cmdMintBurn(e, args[1:])
	case "info":
		cmdMintInfo(e, args[1:])
	default:
		fatal("unknown mint command: %s", args[0])
	}
}

func cmdMintInit(e *env, args []string) {
	fs := flag.NewFlagSet("mint init", flag.ExitOnError)
	k := addKeyFlags(fs)
	name := fs.String("name", "", "Token name")
	symbol := fs.String("symbol", "", "Token symbol")
	supplyStr := fs.String("supply", "", "Total supply (e.g. 1000000)")
	uri := fs.String("uri", "", "Metadata URI")
	fs.Parse(args)

	if *k.wallet == "" || *name == "" || *symbol == "" || *supplyStr == "" || *uri == "" {
		fatal("Usage: gm-cli mint init --wallet <w> --name <n> --symbol <SYM> --supply <amt> --uri <uri>")
	}

	supply, err := amount.Parse(*supplyStr, decimals(e))
	if err != nil {
		fatal("invalid supply: %v", err)
	}

	key := k.signer(e)
	ix, err := program.NewInitMintInstruction(key.Address(), program.InitMintParams{
		Name:   *name,
		Symbol: *symbol,
		Supply: supply,
		URI:    *uri,
	})
	if err != nil {
		fatal("build instruction: %v", err)
	}
	mint, _, err := program.MintAddress(key.Address())
	if err != nil {
		fatal("derive mint: %v", err)
	}

	fmt.Printf("Mint: %s\n", mint)
	k.submit(e, key, ix)
}

func cmdMintTokens(e *env, args []string) {
	fs := flag.NewFlagSet("mint mint", flag.ExitOnError)
	k := addKeyFlags(fs)
	to := fs.String("to", "", "Recipient owner address (default: the wallet key)")
	amountStr := fs.String("amount", "", "Amount to issue")
	fs.Parse(args)

	if *k.wallet == "" || *amountStr == "" {
		fatal("Usage: gm-cli mint mint --wallet <w> --amount <amt> [--to <owner>]")
	}

	units, err := amount.Parse(*amountStr, decimals(e))
	if err != nil {
		fatal("invalid amount: %v", err)
	}

	key := k.signer(e)
	authority := key.Address()
	mint, _, err := program.MintAddress(authority)
	if err != nil {
		fatal("derive mint: %v", err)
	}
	owner := authority
	if *to != "" {
		owner = mustAddress("recipient", *to)
	}

	dest, create := tokenAccountFor(e, authority, owner, mint)
	ix, err := program.NewMintTokensInstruction(mint, dest, authority, units)
	if err != nil {
		fatal("build instruction: %v", err)
	}
	k.submit(e, key, append(create, ix)...)
}

func cmdMintBurn(e *env, args []string) {
	fs := flag.NewFlagSet("mint burn", flag.ExitOnError)
	k := addKeyFlags(fs)
	amountStr := fs.String("amount", "", "Amount to burn")
	fs.Parse(args)

	if *k.wallet == "" || *amountStr == "" {
		fatal("Usage: gm-cli mint burn --wallet <w> --amount <amt>")
	}

	units, err := amount.Parse(*amountStr, decimals(e))
	if err != nil {
		fatal("invalid amount: %v", err)
	}

	key := k.signer(e)
	authority := key.Address()
	mint, _, err := program.MintAddress(authority)
	if err != nil {
		fatal("derive mint: %v", err)
	}
	source, _, err := program.TokenAccountAddress(authority, mint)
	if err != nil {
		fatal("derive token account: %v", err)
	}

	ix, err := program.NewBurnTokensInstruction(mint, source, authority, units)
	if err != nil {
		fatal("build instruction: %v", err)
	}
	k.submit(e, key, ix)
}

func cmdMintInfo(e *env, args []string) {
	params := mintSelector("mint info", args)

	var m rpc.MintResult
	if err := e.client.Call("gm_getMint", params, &m); err != nil {
		fatal("gm_getMint: %v", err)
	}

	fmt.Printf("Mint:         %s\n", m.Address)
	fmt.Printf("Name:         %s\n", m.Name)
	fmt.Printf("Symbol:       %s\n", m.Symbol)
	fmt.Printf("Decimals:     %d\n", m.Decimals)
	fmt.Printf("Supply:       %s\n", m.TotalSupply)
	fmt.Printf("Circulating:  %s\n", m.Circulating)
	fmt.Printf("Authority:    %s\n", m.Authority)
	fmt.Printf("Metadata:     %s\n", m.MetadataURI)

	for _, p := range []struct{ label, method string }{
		{"Minted", "gm_getMintProxy"},
		{"Burned", "gm_getBurnProxy"},
	} {
		var proxy rpc.ProxyResult
		if err := e.client.Call(p.method, rpc.MintParam{Mint: m.Address}, &proxy); err != nil {
			fatal("%s: %v", p.method, err)
		}
		fmt.Printf("%-13s %s", p.label+":", proxy.UITotal)
		if !proxy.Initialized {
			fmt.Print("  (proxy not created)")
		}
		fmt.Println()
	}
}

// mintSelector parses --mint or --authority into gm_* query params.
func mintSelector(name string, args []string) rpc.MintParam {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	mint := fs.String("mint", "", "Mint address")
	authority := fs.String("authority", "", "Mint authority address")
	fs.Parse(args)

	if (*mint == "") == (*authority == "") {
		fatal("Usage: gm-cli %s --mint <addr> | --authority <addr>", name)
	}
	return rpc.MintParam{Mint: *mint, Authority: *authority}
}

// ── polygon ─────────────────────────────────────────────────────────────

func cmdPolygon(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gm-cli polygon <init|store|show>")
	}

	switch args[0] {
	case "init":
		cmdPolygonWrite(e, args[1:], "polygon init", program.NewInitializePdaInstruction)
	case "store":
		cmdPolygonWrite(e, args[1:], "polygon store", program.NewStorePolygonAddressInstruction)
	case "show":
		cmdPolygonShow(e, args[1:])
	default:
		fatal("unknown polygon command: %s", args[0])
	}
}

type polygonBuilder func(mint, authority types.Address, polygonAddress string) (tx.Instruction, error)

func cmdPolygonWrite(e *env, args []string, name string, build polygonBuilder) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	k := addKeyFlags(fs)
	address := fs.String("address", "", "Polygon address (0x + 40 hex)")
	fs.Parse(args)

	if *k.wallet == "" || *address == "" {
		fatal("Usage: gm-cli %s --wallet <w> --address <0x...>", name)
	}

	key := k.signer(e)
	mint, _, err := program.MintAddress(key.Address())
	if err != nil {
		fatal("derive mint: %v", err)
	}
	ix, err := build(mint, key.Address(), *address)
	if err != nil {
		fatal("build instruction: %v", err)
	}
	k.submit(e, key, ix)
}

func cmdPolygonShow(e *env, args []string) {
	params := mintSelector("polygon show", args)

	var res rpc.PolygonResult
	if err := e.client.Call("gm_getPolygonAddress", params, &res); err != nil {
		var rpcErr *rpcclient.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == rpc.CodeNotFound {
			fmt.Println("No polygon address recorded.")
			return
		}
		fatal("gm_getPolygonAddress: %v", err)
	}

	fmt.Printf("Account:   %s\n", res.Address)
	fmt.Printf("Mint:      %s\n", res.Mint)
	fmt.Printf("Authority: %s\n", res.Authority)
	fmt.Printf("Polygon:   %s\n", res.PolygonAddress)
}

// ── track-burn ──────────────────────────────────────────────────────────

func cmdTrackBurn(e *env, args []string) {
	fs := flag.NewFlagSet("track-burn", flag.ExitOnError)
	k := addKeyFlags(fs)
	amountStr := fs.String("amount", "", "Claimed burned amount")
	fs.Parse(args)

	if *k.wallet == "" || *amountStr == "" {
		fatal("Usage: gm-cli track-burn --wallet <w> --amount <amt>")
	}

	units, err := amount.Parse(*amountStr, decimals(e))
	if err != nil {
		fatal("invalid amount: %v", err)
	}

	key := k.signer(e)
	mint, _, err := program.MintAddress(key.Address())
	if err != nil {
		fatal("derive mint: %v", err)
	}
	ix, err := program.NewTrackBurnMetadataInstruction(mint, key.Address(), units)
	if err != nil {
		fatal("build instruction: %v", err)
	}
	k.submit(e, key, ix)
}
