// Package node wires the ledger, its storage and the RPC server into one
// process that the daemon (or a test) can start and stop.
package node

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Klingon-tech/golfmellow/config"
	"github.com/Klingon-tech/golfmellow/internal/ledger"
	klog "github.com/Klingon-tech/golfmellow/internal/log"
	"github.com/Klingon-tech/golfmellow/internal/rpc"
	"github.com/Klingon-tech/golfmellow/internal/storage"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/rs/zerolog"
)

// Node is a fully-initialized ledger node.
type Node struct {
	cfg     *config.Config
	genesis *config.Genesis
	logger  zerolog.Logger

	db        storage.DB
	ledger    *ledger.Ledger
	rpcServer *rpc.Server
}

// New performs every setup step (logger, genesis, storage, ledger, RPC)
// but does not start serving. Call Start for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Address HRP ──────────────────────────────────────────────
	if cfg.Network == config.Testnet {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	// ── 2. Logger ───────────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		if err := os.MkdirAll(cfg.LogsDir(), 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(cfg.LogsDir(), "gmd.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.Node

	// ── 3. Genesis ──────────────────────────────────────────────────
	genesis, err := resolveGenesis(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("chain_id", genesis.ChainID).
		Str("network", string(cfg.Network)).
		Uint64("max_mint_per_tx", genesis.Program.MaxMintPerTx).
		Msg("Starting GolfMellow ledger node")

	// ── 4. Storage ──────────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.LedgerDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.LedgerDir(), err)
	}
	logger.Info().Str("path", cfg.LedgerDir()).Msg("Database opened")

	// ── 5. Ledger ───────────────────────────────────────────────────
	l, err := ledger.New(db, genesis)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	n := &Node{
		cfg:     cfg,
		genesis: genesis,
		logger:  logger,
		db:      db,
		ledger:  l,
	}

	// ── 6. RPC ──────────────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := net.JoinHostPort(cfg.RPC.Addr, strconv.Itoa(cfg.RPC.Port))
		n.rpcServer = rpc.New(addr, l, cfg.RPC)
	}

	return n, nil
}

// Start begins serving RPC.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return err
		}
	}
	info := n.ledger.Info()
	n.logger.Info().
		Uint64("tx_count", info.TxCount).
		Str("program_id", info.ProgramID.String()).
		Str("rpc", n.RPCAddr()).
		Msg("Node started successfully")
	return nil
}

// Stop shuts the node down in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	if n.db != nil {
		n.db.Close()
	}
	n.logger.Info().Msg("Goodbye!")
}

// Ledger returns the node's ledger.
func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

// Genesis returns the genesis the ledger was opened with.
func (n *Node) Genesis() *config.Genesis {
	return n.genesis
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}
