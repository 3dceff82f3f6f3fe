package main

import (
	"flag"
	"fmt"

	"github.com/Klingon-tech/golfmellow/internal/ledger"
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/internal/rpc"
	"github.com/Klingon-tech/golfmellow/pkg/amount"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// ── token ───────────────────────────────────────────────────────────────

func cmdToken(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gm-cli token <create-account|transfer|balance|list>")
	}

	switch args[0] {
	case "create-account":
		cmdTokenCreateAccount(e, args[1:])
	case "transfer":
		cmdTokenTransfer(e, args[1:])
	case "balance":
		cmdTokenBalance(e, args[1:])
	case "list":
		cmdTokenList(e, args[1:])
	default:
		fatal("unknown token command: %s", args[0])
	}
}

// tokenAccountFor derives owner's token account for mint. When the account
// does not exist yet it also returns the instruction creating it, paid by payer.
func tokenAccountFor(e *env, payer, owner, mint types.Address) (types.Address, []tx.Instruction) {
	var res rpc.DeriveResult
	params := rpc.TokenAccountParam{Owner: owner.String(), Mint: mint.String()}
	if err := e.client.Call("token_deriveAccount", params, &res); err != nil {
		fatal("token_deriveAccount: %v", err)
	}
	addr := mustAddress("token account", res.Address)
	if res.Exists {
		return addr, nil
	}
	ix, err := ledger.NewCreateTokenAccountInstruction(payer, owner, mint)
	if err != nil {
		fatal("build instruction: %v", err)
	}
	return addr, []tx.Instruction{ix}
}

func cmdTokenCreateAccount(e *env, args []string) {
	fs := flag.NewFlagSet("token create-account", flag.ExitOnError)
	k := addKeyFlags(fs)
	mintStr := fs.String("mint", "", "Mint address")
	ownerStr := fs.String("owner", "", "Owner address (default: the wallet key)")
	fs.Parse(args)

	if *k.wallet == "" || *mintStr == "" {
		fatal("Usage: gm-cli token create-account --wallet <w> --mint <addr> [--owner <addr>]")
	}
	mint := mustAddress("mint", *mintStr)

	key := k.signer(e)
	owner := key.Address()
	if *ownerStr != "" {
		owner = mustAddress("owner", *ownerStr)
	}

	ix, err := ledger.NewCreateTokenAccountInstruction(key.Address(), owner, mint)
	if err != nil {
		fatal("build instruction: %v", err)
	}
	fmt.Printf("Token account: %s\n", ix.Accounts[0].Address)
	k.submit(e, key, ix)
}

func cmdTokenTransfer(e *env, args []string) {
	fs := flag.NewFlagSet("token transfer", flag.ExitOnError)
	k := addKeyFlags(fs)
	mintStr := fs.String("mint", "", "Mint address")
	to := fs.String("to", "", "Recipient owner address")
	amountStr := fs.String("amount", "", "Amount to transfer")
	fs.Parse(args)

	if *k.wallet == "" || *mintStr == "" || *to == "" || *amountStr == "" {
		fatal("Usage: gm-cli token transfer --wallet <w> --mint <addr> --to <owner> --amount <amt>")
	}
	mint := mustAddress("mint", *mintStr)
	recipient := mustAddress("recipient", *to)

	var m rpc.MintResult
	if err := e.client.Call("gm_getMint", rpc.MintParam{Mint: mint.String()}, &m); err != nil {
		fatal("gm_getMint: %v", err)
	}
	units, err := amount.Parse(*amountStr, m.Decimals)
	if err != nil {
		fatal("invalid amount: %v", err)
	}

	key := k.signer(e)
	source, _, err := program.TokenAccountAddress(key.Address(), mint)
	if err != nil {
		fatal("derive token account: %v", err)
	}
	dest, create := tokenAccountFor(e, key.Address(), recipient, mint)
	ix := program.NewTransferTokensInstruction(source, dest, key.Address(), units)
	k.submit(e, key, append(create, ix)...)
}

func cmdTokenBalance(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gm-cli token balance <owner> --mint <addr>")
	}
	owner := args[0]

	fs := flag.NewFlagSet("token balance", flag.ExitOnError)
	mint := fs.String("mint", "", "Mint address")
	fs.Parse(args[1:])

	if *mint == "" {
		fatal("Usage: gm-cli token balance <owner> --mint <addr>")
	}

	var derived rpc.DeriveResult
	if err := e.client.Call("token_deriveAccount", rpc.TokenAccountParam{Owner: owner, Mint: *mint}, &derived); err != nil {
		fatal("token_deriveAccount: %v", err)
	}
	if !derived.Exists {
		fmt.Printf("Token account %s does not exist (balance 0)\n", derived.Address)
		return
	}

	var acct rpc.TokenAccountResult
	if err := e.client.Call("token_getAccount", rpc.AddressParam{Address: derived.Address}, &acct); err != nil {
		fatal("token_getAccount: %v", err)
	}
	fmt.Printf("Account: %s\n", acct.Address)
	fmt.Printf("Balance: %s\n", acct.UIAmount)
}

func cmdTokenList(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gm-cli token list <owner>")
	}

	var accounts []rpc.TokenAccountResult
	if err := e.client.Call("token_listByOwner", rpc.TokenAccountParam{Owner: args[0]}, &accounts); err != nil {
		fatal("token_listByOwner: %v", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No token accounts found.")
		return
	}

	for _, a := range accounts {
		fmt.Printf("  %s  mint=%s  balance=%s\n", a.Address, a.Mint, a.UIAmount)
	}
}
