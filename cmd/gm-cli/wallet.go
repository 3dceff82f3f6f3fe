package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Klingon-tech/golfmellow/internal/wallet"
)

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: gm-cli wallet <create|import|list|address|new-address>")
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(e, args[1:])
	case "import":
		cmdWalletImport(e, args[1:])
	case "list":
		cmdWalletList(e)
	case "address":
		cmdWalletAddress(e, args[1:])
	case "new-address":
		cmdWalletNewAddress(e, args[1:])
	default:
		fatal("unknown wallet command: %s", args[0])
	}
}

func cmdWalletCreate(e *env, args []string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	words := fs.Int("words", 24, "Mnemonic length (12 or 24)")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: gm-cli wallet create --name <name> [--words 12|24]")
	}

	mnemonic, err := wallet.GenerateMnemonic(*words)
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	createWallet(e, *name, mnemonic)
	fmt.Printf("\nWallet created: %s\n", *name)
}

func cmdWalletImport(e *env, args []string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: gm-cli wallet import --name <name> --mnemonic \"word1 word2 ...\"")
	}

	createWallet(e, *name, *mnemonic)
	fmt.Printf("Wallet imported: %s\n", *name)
}

// createWallet seals the mnemonic's seed under a new password.
func createWallet(e *env, name, mnemonic string) {
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	defer func() {
		for i := range seed {
			seed[i] = 0
		}
	}()

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	ks, err := wallet.NewKeystore(e.ksDir)
	if err != nil {
		fatal("create keystore: %v", err)
	}
	first, err := ks.Create(name, seed, password, wallet.DefaultKDFParams())
	if err != nil {
		fatal("create wallet: %v", err)
	}
	fmt.Printf("Address: %s\n", first.Address)
}

func cmdWalletList(e *env) {
	ks, err := wallet.NewKeystore(e.ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}

	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}

	for _, name := range names {
		fmt.Println(name)
	}
}

func cmdWalletAddress(e *env, args []string) {
	fs := flag.NewFlagSet("wallet address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: gm-cli wallet address --wallet <name>")
	}

	ks, err := wallet.NewKeystore(e.ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	accounts, err := ks.Accounts(*walletName)
	if err != nil {
		fatal("list accounts: %v", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No addresses found.")
		return
	}

	for _, acct := range accounts {
		fmt.Printf("  [%d/%d] %s", acct.Account, acct.Index, acct.Address)
		if acct.Label != "" {
			fmt.Printf("  (%s)", acct.Label)
		}
		fmt.Println()
	}
}

func cmdWalletNewAddress(e *env, args []string) {
	fs := flag.NewFlagSet("wallet new-address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Wallet account")
	label := fs.String("label", "", "Optional label")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: gm-cli wallet new-address --wallet <name> [--account <a>] [--label <l>]")
	}

	ks, err := wallet.NewKeystore(e.ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	accounts, err := ks.Accounts(*walletName)
	if err != nil {
		fatal("list accounts: %v", err)
	}
	// Next index after the highest one recorded for this account.
	var next uint32
	for _, a := range accounts {
		if a.Account == uint32(*account) && a.Index >= next {
			next = a.Index + 1
		}
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	entry, err := ks.AddAccount(*walletName, password, uint32(*account), next, *label)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hint: check the password for wallet %q\n", *walletName)
		fatal("add account: %v", err)
	}

	fmt.Printf("New address [%d/%d]: %s\n", entry.Account, entry.Index, entry.Address)
}
