// gm-cli is a command-line client for a gmd ledger node.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Klingon-tech/golfmellow/config"
	"github.com/Klingon-tech/golfmellow/internal/rpc"
	"github.com/Klingon-tech/golfmellow/internal/rpcclient"
	"github.com/Klingon-tech/golfmellow/internal/wallet"
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"golang.org/x/term"
)

// keystoreDir returns the keystore path matching gmd's layout:
// <datadir>/<network>/keystore
func keystoreDir(dataDir, network string) string {
	return filepath.Join(dataDir, network, "keystore")
}

// env carries the global flags into subcommands.
type env struct {
	client *rpcclient.Client
	ksDir  string
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	rpcURL := "http://127.0.0.1:8899"
	dataDir := config.DefaultDataDir()
	network := "mainnet"

	// Scan for --rpc, --datadir and --network before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if network == "testnet" {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	e := &env{
		client: rpcclient.New(rpcURL),
		ksDir:  keystoreDir(dataDir, network),
	}
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(e)
	case "tx":
		cmdTx(e, cmdArgs)
	case "account":
		cmdAccount(e, cmdArgs)
	case "wallet":
		cmdWallet(e, cmdArgs)
	case "derive":
		cmdDerive(e, cmdArgs)
	case "mint":
		cmdMint(e, cmdArgs)
	case "token":
		cmdToken(e, cmdArgs)
	case "polygon":
		cmdPolygon(e, cmdArgs)
	case "track-burn":
		cmdTrackBurn(e, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: gm-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8899)
  --datadir <path>    Data directory (default: ~/.golfmellow)
  --network <net>     mainnet (default) or testnet

Commands:
  status                          Show ledger status and program rules
  tx <txid>                       Show a transaction receipt
  account <address>               Show a raw account

  wallet create --name <n> [--words 12|24]
                                  Create a new wallet
  wallet import --name <n> --mnemonic "..."
                                  Import wallet from mnemonic
  wallet list                     List wallets
  wallet address --wallet <w>     List wallet addresses
  wallet new-address --wallet <w> [--account <a>]
                                  Derive the next address

  derive --seed <seed> --key <addr>
                                  Derive a program address

  mint init --wallet <w> --name <n> --symbol <SYM> --supply <amt> --uri <uri>
                                  Create the mint owned by the wallet key
  mint mint --wallet <w> --amount <amt> [--to <owner>]
                                  Issue tokens from the wallet's mint
  mint burn --wallet <w> --amount <amt>
                                  Burn tokens from the wallet's token account
  mint info [--mint <addr> | --authority <addr>]
                                  Show mint, mint proxy and burn proxy

  token create-account --wallet <w> --mint <addr> [--owner <addr>]
                                  Create a token account
  token transfer --wallet <w> --mint <addr> --to <owner> --amount <amt>
                                  Transfer tokens
  token balance <owner> --mint <addr>
                                  Show one token balance
  token list <owner>              List all token accounts of an owner

  polygon init --wallet <w> --address <0x...>
                                  Create the polygon address record
  polygon store --wallet <w> --address <0x...>
                                  Replace the polygon address
  polygon show [--mint <addr> | --authority <addr>]
                                  Show the polygon address record

  track-burn --wallet <w> --amount <amt>
                                  Check a claimed burned amount

Transaction commands accept --simulate to execute without committing and
--account/--index to pick the wallet key (default 0/0).
`)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(e *env) {
	var info rpc.InfoResult
	if err := e.client.Call("ledger_getInfo", nil, &info); err != nil {
		fatal("ledger_getInfo: %v", err)
	}

	fmt.Printf("Chain:          %s\n", info.ChainID)
	fmt.Printf("Genesis:        %s\n", info.GenesisHash)
	fmt.Printf("Transactions:   %d\n", info.TxCount)
	fmt.Printf("Program:        %s\n", info.ProgramID)
	fmt.Printf("Token program:  %s\n", info.TokenProgramID)
	fmt.Printf("Decimals:       %d\n", info.Decimals)
	fmt.Printf("Max supply:     %s\n", info.MaxSupply)
	fmt.Printf("Max mint/tx:    %s\n", info.MaxMintPerTx)
}

// ── tx ──────────────────────────────────────────────────────────────────

func cmdTx(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gm-cli tx <txid>")
	}

	var receipt struct {
		TxID         string   `json:"txid"`
		Sequence     uint64   `json:"sequence"`
		Timestamp    int64    `json:"timestamp"`
		Signers      []string `json:"signers"`
		Instructions int      `json:"instructions"`
		Logs         []string `json:"logs"`
	}
	if err := e.client.Call("tx_getReceipt", rpc.TxIDParam{TxID: args[0]}, &receipt); err != nil {
		fatal("tx_getReceipt: %v", err)
	}

	fmt.Printf("TxID:         %s\n", receipt.TxID)
	fmt.Printf("Sequence:     %d\n", receipt.Sequence)
	ts := time.Unix(receipt.Timestamp, 0).UTC()
	fmt.Printf("Timestamp:    %s\n", ts.Format("2006-01-02 15:04:05 UTC"))
	fmt.Printf("Instructions: %d\n", receipt.Instructions)
	for i, s := range receipt.Signers {
		fmt.Printf("Signer [%d]:   %s\n", i, s)
	}
	printLogs(receipt.Logs)
}

// ── account ─────────────────────────────────────────────────────────────

func cmdAccount(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gm-cli account <address>")
	}

	var acct rpc.AccountResult
	if err := e.client.Call("account_get", rpc.AddressParam{Address: args[0]}, &acct); err != nil {
		fatal("account_get: %v", err)
	}

	fmt.Printf("Address: %s\n", acct.Address)
	fmt.Printf("Owner:   %s\n", acct.Owner)
	if acct.Role != "" {
		fmt.Printf("Role:    %s\n", acct.Role)
	}
	fmt.Printf("Data:    %s\n", acct.Data)
}

// ── signing ─────────────────────────────────────────────────────────────

// keyFlags selects a wallet key and submission mode for a transaction command.
type keyFlags struct {
	wallet   *string
	account  *uint
	index    *uint
	simulate *bool
}

func addKeyFlags(fs *flag.FlagSet) *keyFlags {
	return &keyFlags{
		wallet:   fs.String("wallet", "", "Wallet name"),
		account:  fs.Uint("account", 0, "Wallet account"),
		index:    fs.Uint("index", 0, "Address index within the account"),
		simulate: fs.Bool("simulate", false, "Execute without committing"),
	}
}

// signer prompts for the wallet password and derives the selected key.
func (k *keyFlags) signer(e *env) *crypto.PrivateKey {
	ks, err := wallet.NewKeystore(e.ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	key, err := ks.Signer(*k.wallet, password, uint32(*k.account), uint32(*k.index))
	if err != nil {
		fatal("load key: %v", err)
	}
	return key
}

// submit signs the instructions with key and sends them as one transaction.
func (k *keyFlags) submit(e *env, key *crypto.PrivateKey, ixs ...tx.Instruction) {
	b := tx.NewBuilder().SetNonce(uint64(time.Now().UnixNano()))
	for _, ix := range ixs {
		b.AddInstruction(ix)
	}
	if err := b.Sign(key); err != nil {
		fatal("sign: %v", err)
	}
	key.Zero()

	var result rpc.SubmitResult
	err := e.client.Call("tx_submit", rpc.TxSubmitParam{Transaction: b.Build(), Simulate: *k.simulate}, &result)
	if err != nil {
		var rpcErr *rpcclient.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Kind != "" {
			fatal("instruction %d failed with %s: %s", rpcErr.Instruction, rpcErr.Kind, rpcErr.Message)
		}
		fatal("tx_submit: %v", err)
	}

	if result.Committed {
		fmt.Printf("Committed: %s\n", result.TxID)
	} else {
		fmt.Printf("Simulated: %s\n", result.TxID)
	}
	if result.Receipt != nil {
		printLogs(result.Receipt.Logs)
	}
}

func printLogs(logs []string) {
	if len(logs) == 0 {
		return
	}
	fmt.Println("Logs:")
	for _, l := range logs {
		fmt.Printf("  %s\n", l)
	}
}

// decimals returns the decimals every mint on the ledger uses.
func decimals(e *env) uint8 {
	var info rpc.InfoResult
	if err := e.client.Call("ledger_getInfo", nil, &info); err != nil {
		fatal("ledger_getInfo: %v", err)
	}
	return info.Decimals
}

func mustAddress(field, s string) types.Address {
	addr, err := types.ParseAddress(s)
	if err != nil {
		fatal("invalid %s address: %v", field, err)
	}
	return addr
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
