package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// =============================================================================
// Program Rules (immutable, defined in genesis)
// Changing these after the ledger holds state changes which transactions
// are valid.
// =============================================================================

// Denomination constants for the GM token.
// 1 token = 10^9 base units. All on-ledger amounts are in base units.
const (
	Decimals = 9
	Token    = 1_000_000_000
)

// Transaction size limits enforced by the ledger before execution.
const (
	MaxTxInstructions   = 16
	MaxInstructionAccts = 16
	MaxInstructionData  = 1024
	MaxTxSignatures     = 8
	MaxAccountData      = 10 * 1024
)

// Genesis holds the ledger identity and program rules.
type Genesis struct {
	ChainID   string `json:"chain_id"`
	ChainName string `json:"chain_name"`
	Timestamp uint64 `json:"timestamp"`

	Program ProgramRules `json:"program"`
}

// ProgramRules bound what the token-issuance program accepts.
type ProgramRules struct {
	// Decimals of every mint created by the program.
	Decimals uint8 `json:"decimals"`

	// MaxSupply is the largest total_supply an initMint may declare (base units).
	MaxSupply uint64 `json:"max_supply"`

	// MaxMintPerTx is the per-transaction mint limit in whole tokens, summed
	// over every mintTokens instruction of the transaction.
	MaxMintPerTx uint64 `json:"max_mint_per_tx"`

	// Metadata bounds (bytes).
	MaxNameLen   int      `json:"max_name_len"`
	MaxSymbolLen int      `json:"max_symbol_len"`
	MaxURILen    int      `json:"max_uri_len"`
	URISchemes   []string `json:"uri_schemes"`

	// PolygonAddressLen is the exact length of a stored Polygon address ("0x" + 40 hex).
	PolygonAddressLen int `json:"polygon_address_len"`
}

// MaxMintBaseUnits returns the per-transaction mint limit in base units.
func (r ProgramRules) MaxMintBaseUnits() uint64 {
	limit := r.MaxMintPerTx
	for i := uint8(0); i < r.Decimals; i++ {
		if limit > math.MaxUint64/10 {
			return math.MaxUint64
		}
		limit *= 10
	}
	return limit
}

// AllowsScheme reports whether a metadata URI scheme is accepted.
func (r ProgramRules) AllowsScheme(scheme string) bool {
	for _, s := range r.URISchemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// DefaultProgramRules returns the rules the GM program launched with.
func DefaultProgramRules() ProgramRules {
	return ProgramRules{
		Decimals:          Decimals,
		MaxSupply:         600_000 * Token,
		MaxMintPerTx:      15_000,
		MaxNameLen:        32,
		MaxSymbolLen:      10,
		MaxURILen:         200,
		URISchemes:        []string{"https", "http", "ipfs", "ar"},
		PolygonAddressLen: 42,
	}
}

// =============================================================================
// Pre-defined genesis configurations
// =============================================================================

// MainnetGenesis returns the mainnet genesis configuration.
func MainnetGenesis() *Genesis {
	return &Genesis{
		ChainID:   "golfmellow-mainnet-1",
		ChainName: "Golf Mellow Mainnet",
		Timestamp: 1776297600, // 2026-04-16
		Program:   DefaultProgramRules(),
	}
}

// TestnetGenesis returns the testnet genesis configuration.
func TestnetGenesis() *Genesis {
	g := MainnetGenesis()
	g.ChainID = "golfmellow-testnet-1"
	g.ChainName = "Golf Mellow Testnet"
	return g
}

// GenesisFor returns the genesis config for the given network.
func GenesisFor(network NetworkType) *Genesis {
	switch network {
	case Testnet:
		return TestnetGenesis()
	default:
		return MainnetGenesis()
	}
}

// =============================================================================
// Genesis file I/O
// =============================================================================

// LoadGenesis loads genesis configuration from a file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	return &g, nil
}

// Save writes the genesis configuration to a file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}
	return nil
}

// Validate checks that the genesis configuration is valid.
func (g *Genesis) Validate() error {
	if g.ChainID == "" {
		return fmt.Errorf("chain_id is required")
	}

	r := g.Program
	if r.Decimals > 18 {
		return fmt.Errorf("decimals must be at most 18")
	}
	if r.MaxSupply == 0 {
		return fmt.Errorf("max_supply must be positive")
	}
	if r.MaxMintPerTx == 0 {
		return fmt.Errorf("max_mint_per_tx must be positive")
	}
	if r.MaxMintBaseUnits() == math.MaxUint64 {
		return fmt.Errorf("max_mint_per_tx overflows at %d decimals", r.Decimals)
	}
	if r.MaxNameLen < 1 || r.MaxSymbolLen < 1 || r.MaxURILen < 1 {
		return fmt.Errorf("metadata length bounds must be positive")
	}
	if len(r.URISchemes) == 0 {
		return fmt.Errorf("uri_schemes must not be empty")
	}
	if r.PolygonAddressLen != 42 {
		return fmt.Errorf("polygon_address_len must be 42")
	}
	return nil
}

// Hash returns a BLAKE3 hash of the genesis configuration.
// Used to detect a data directory opened with a different genesis.
func (g *Genesis) Hash() (types.Hash, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(data), nil
}
