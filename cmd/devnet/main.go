// Command devnet boots a throwaway local ledger and walks the Golf Mellow
// token lifecycle through its JSON-RPC interface.
//
// Usage: go run ./cmd/devnet/ [--keep]
//
// It generates an authority key, starts an in-process node on a temporary
// data directory, then initializes a mint, issues, transfers and burns GMT,
// records a polygon address and checks a burn claim. With --keep the node
// keeps serving until Ctrl+C.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Klingon-tech/golfmellow/config"
	"github.com/Klingon-tech/golfmellow/internal/ledger"
	klog "github.com/Klingon-tech/golfmellow/internal/log"
	"github.com/Klingon-tech/golfmellow/internal/node"
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/internal/rpc"
	"github.com/Klingon-tech/golfmellow/internal/rpcclient"
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/rs/zerolog"
)

const token = uint64(1_000_000_000)

func main() {
	keep := flag.Bool("keep", false, "Keep the node running after the walkthrough")
	flag.Parse()

	klog.Init("info", false, "")
	logger := klog.WithComponent("devnet")

	logger.Info().Msg("=== Golf Mellow Local Devnet ===")

	// ── Phase 1: Node ────────────────────────────────────────────────────

	dataDir, err := os.MkdirTemp("", "gm-devnet-*")
	if err != nil {
		logger.Fatal().Err(err).Msg("create data dir")
	}
	defer os.RemoveAll(dataDir)

	cfg := config.DefaultTestnet()
	cfg.DataDir = dataDir
	cfg.RPC.Port = 0
	cfg.Log.Level = "warn"
	if err := config.EnsureDataDirs(cfg); err != nil {
		logger.Fatal().Err(err).Msg("prepare data dir")
	}

	n, err := node.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("build node")
	}
	if err := n.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start node")
	}
	defer n.Stop()

	// node.New re-initializes logging from the node config.
	klog.Init("info", false, "")
	logger = klog.WithComponent("devnet")

	endpoint := "http://" + n.RPCAddr()
	client := rpcclient.New(endpoint)
	logger.Info().Str("rpc", endpoint).Str("datadir", dataDir).Msg("Node started")

	// ── Phase 2: Authority ───────────────────────────────────────────────

	authority, err := crypto.GenerateKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("generate authority key")
	}
	holder, err := crypto.GenerateKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("generate holder key")
	}
	mint, _, err := program.MintAddress(authority.Address())
	if err != nil {
		logger.Fatal().Err(err).Msg("derive mint")
	}
	logger.Info().
		Str("authority", authority.Address().String()).
		Str("mint", mint.String()).
		Msg("Keys generated")

	d := &driver{client: client, logger: logger}

	// ── Phase 3: Lifecycle ───────────────────────────────────────────────

	initIx, err := program.NewInitMintInstruction(authority.Address(), program.InitMintParams{
		Name:   "Golf Mellow Token",
		Symbol: "GMT",
		Supply: 600_000 * token,
		URI:    "ipfs://golf-mellow/metadata.json",
	})
	d.check(err)
	d.submit("init mint", authority, initIx)

	ownAcct, err := ledger.NewCreateTokenAccountInstruction(authority.Address(), authority.Address(), mint)
	d.check(err)
	holderAcct, err := ledger.NewCreateTokenAccountInstruction(authority.Address(), holder.Address(), mint)
	d.check(err)
	d.submit("create token accounts", authority, ownAcct, holderAcct)

	src := ownAcct.Accounts[0].Address
	dst := holderAcct.Accounts[0].Address

	mintIx, err := program.NewMintTokensInstruction(mint, src, authority.Address(), 1000*token)
	d.check(err)
	d.submit("mint 1000 GMT", authority, mintIx)

	d.submit("transfer 250 GMT", authority,
		program.NewTransferTokensInstruction(src, dst, authority.Address(), 250*token))

	burnIx, err := program.NewBurnTokensInstruction(mint, src, authority.Address(), 500*token)
	d.check(err)
	d.submit("burn 500 GMT", authority, burnIx)

	overBurn, err := program.NewBurnTokensInstruction(mint, src, authority.Address(), 600*token)
	d.check(err)
	d.expectKind("burn 600 GMT", authority, program.InsufficientMinted, overBurn)

	polyIx, err := program.NewInitializePdaInstruction(mint, authority.Address(), "0x52908400098527886E0F7030069857D2E4169EE7")
	d.check(err)
	d.submit("record polygon address", authority, polyIx)

	trackIx, err := program.NewTrackBurnMetadataInstruction(mint, authority.Address(), 500*token)
	d.check(err)
	d.submit("track burn", authority, trackIx)

	// ── Phase 4: Verification ────────────────────────────────────────────

	var m rpc.MintResult
	d.call("gm_getMint", rpc.MintParam{Mint: mint.String()}, &m)
	var minted, burned rpc.ProxyResult
	d.call("gm_getMintProxy", rpc.MintParam{Mint: mint.String()}, &minted)
	d.call("gm_getBurnProxy", rpc.MintParam{Mint: mint.String()}, &burned)
	var held []rpc.TokenAccountResult
	d.call("token_listByOwner", rpc.TokenAccountParam{Owner: holder.Address().String()}, &held)
	var info rpc.InfoResult
	d.call("ledger_getInfo", nil, &info)

	fmt.Println()
	fmt.Printf("  Mint:             %s (%s)\n", m.Name, m.Symbol)
	fmt.Printf("  Supply cap:       %s\n", m.TotalSupply)
	fmt.Printf("  Circulating:      %s\n", m.Circulating)
	fmt.Printf("  Minted:           %s\n", minted.UITotal)
	fmt.Printf("  Burned:           %s\n", burned.UITotal)
	for _, a := range held {
		fmt.Printf("  Holder balance:   %s\n", a.UIAmount)
	}
	fmt.Printf("  Transactions:     %d\n", info.TxCount)
	fmt.Println()

	if minted.Total != 1000*token || burned.Total != 500*token {
		logger.Error().Msg("FAILURE: proxy totals do not match the walkthrough")
		os.Exit(1)
	}
	logger.Info().Msg("SUCCESS: lifecycle completed")

	if !*keep {
		return
	}
	logger.Info().Str("rpc", endpoint).Msg("Serving until Ctrl+C")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info().Msg("Shutdown signal received")
}

// driver submits walkthrough transactions and aborts on the first surprise.
type driver struct {
	client *rpcclient.Client
	logger zerolog.Logger
	nonce  uint64
}

func (d *driver) check(err error) {
	if err != nil {
		d.logger.Fatal().Err(err).Msg("build instruction")
	}
}

func (d *driver) call(method string, params, result interface{}) {
	if err := d.client.Call(method, params, result); err != nil {
		d.logger.Fatal().Err(err).Str("method", method).Msg("rpc call")
	}
}

func (d *driver) send(key *crypto.PrivateKey, ixs ...tx.Instruction) (*rpc.SubmitResult, error) {
	d.nonce++
	b := tx.NewBuilder().SetNonce(uint64(time.Now().UnixNano()) + d.nonce)
	for _, ix := range ixs {
		b.AddInstruction(ix)
	}
	if err := b.Sign(key); err != nil {
		return nil, err
	}
	var res rpc.SubmitResult
	if err := d.client.Call("tx_submit", rpc.TxSubmitParam{Transaction: b.Build()}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (d *driver) submit(step string, key *crypto.PrivateKey, ixs ...tx.Instruction) {
	res, err := d.send(key, ixs...)
	if err != nil {
		d.logger.Fatal().Err(err).Str("step", step).Msg("Transaction failed")
	}
	ev := d.logger.Info().Str("step", step).Str("txid", shortID(res.TxID))
	if res.Receipt != nil && len(res.Receipt.Logs) > 0 {
		ev = ev.Str("log", res.Receipt.Logs[len(res.Receipt.Logs)-1])
	}
	ev.Msg("Committed")
}

func (d *driver) expectKind(step string, key *crypto.PrivateKey, want program.ErrorKind, ixs ...tx.Instruction) {
	_, err := d.send(key, ixs...)
	var rpcErr *rpcclient.RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Kind != want.Name() {
		d.logger.Fatal().Err(err).Str("step", step).Str("want", want.Name()).Msg("Expected program error")
	}
	d.logger.Info().Str("step", step).Str("kind", rpcErr.Kind).Msg("Rejected as expected")
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16] + "..."
	}
	return id
}
