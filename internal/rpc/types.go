package rpc

import (
	"encoding/hex"

	"github.com/Klingon-tech/golfmellow/internal/ledger"
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/pkg/amount"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeTxRejected     = -32001
	CodeProgramError   = -32010
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProgramErrorData is attached to CodeProgramError responses.
type ProgramErrorData struct {
	Kind        string `json:"kind"`
	Code        uint32 `json:"code"`
	Instruction int    `json:"instruction"`
}

// ── Param types ─────────────────────────────────────────────────────────

// AddressParam is used by endpoints that take a single address.
type AddressParam struct {
	Address string `json:"address"`
}

// MintParam selects a mint by its address or by its authority.
type MintParam struct {
	Mint      string `json:"mint,omitempty"`
	Authority string `json:"authority,omitempty"`
}

// TxIDParam is used by tx_getReceipt.
type TxIDParam struct {
	TxID string `json:"txid"`
}

// TxSubmitParam is used by tx_submit. Simulate executes without committing.
type TxSubmitParam struct {
	Transaction *tx.Transaction `json:"transaction"`
	Simulate    bool            `json:"simulate,omitempty"`
}

// DeriveParam is used by gm_derive.
type DeriveParam struct {
	Seed string `json:"seed"`
	Key  string `json:"key"`
}

// TokenAccountParam is used by token_deriveAccount and token_listByOwner.
type TokenAccountParam struct {
	Owner string `json:"owner"`
	Mint  string `json:"mint,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// InfoResult is returned by ledger_getInfo.
type InfoResult struct {
	ChainID         string `json:"chain_id"`
	GenesisHash     string `json:"genesis_hash"`
	TxCount         uint64 `json:"tx_count"`
	ProgramID       string `json:"program_id"`
	TokenProgramID  string `json:"token_program_id"`
	SystemProgramID string `json:"system_program_id"`
	Decimals        uint8  `json:"decimals"`
	MaxSupply       string `json:"max_supply"`
	MaxMintPerTx    string `json:"max_mint_per_tx"`
}

// SubmitResult is returned by tx_submit.
type SubmitResult struct {
	TxID      string          `json:"txid"`
	Committed bool            `json:"committed"`
	Receipt   *ledger.Receipt `json:"receipt"`
}

// AccountResult is returned by account_get.
type AccountResult struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Role    string `json:"role,omitempty"`
	Data    string `json:"data"`
}

// DeriveResult is returned by gm_derive and token_deriveAccount.
type DeriveResult struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
	Seed    string `json:"seed,omitempty"`
	Exists  bool   `json:"exists"`
}

// MintResult is returned by gm_getMint.
type MintResult struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply"`
	Circulating string `json:"circulating"`
	Authority   string `json:"authority"`
	MetadataURI string `json:"metadata_uri"`
	Bump        uint8  `json:"bump"`
}

// ProxyResult is returned by gm_getMintProxy and gm_getBurnProxy.
type ProxyResult struct {
	Address     string `json:"address"`
	Mint        string `json:"mint"`
	Authority   string `json:"authority"`
	Total       uint64 `json:"total"`
	UITotal     string `json:"ui_total"`
	Bump        uint8  `json:"bump"`
	Initialized bool   `json:"initialized"`
}

// PolygonResult is returned by gm_getPolygonAddress.
type PolygonResult struct {
	Address        string `json:"address"`
	Mint           string `json:"mint"`
	Authority      string `json:"authority"`
	PolygonAddress string `json:"polygon_address"`
	Bump           uint8  `json:"bump"`
}

// TokenAccountResult is returned by token_getAccount.
type TokenAccountResult struct {
	Address  string `json:"address"`
	Mint     string `json:"mint"`
	Owner    string `json:"owner"`
	Amount   uint64 `json:"amount"`
	UIAmount string `json:"ui_amount"`
}

func newAccountResult(info *program.AccountInfo) *AccountResult {
	r := &AccountResult{
		Address: info.Address.String(),
		Owner:   info.Owner.String(),
		Data:    hex.EncodeToString(info.Data),
	}
	if role := program.RoleOf(info.Data); info.Owner == program.ID && role != program.RoleUnknown {
		r.Role = role.String()
	}
	return r
}

func newMintResult(addr types.Address, m *program.MintAccount, circulating uint64) *MintResult {
	return &MintResult{
		Address:     addr.String(),
		Name:        m.Name,
		Symbol:      m.Symbol,
		Decimals:    m.Decimals,
		TotalSupply: amount.Format(m.TotalSupply, m.Decimals),
		Circulating: amount.Format(circulating, m.Decimals),
		Authority:   m.Authority.String(),
		MetadataURI: m.MetadataURI,
		Bump:        m.Bump,
	}
}

func newTokenAccountResult(addr types.Address, t *program.TokenAccount, decimals uint8) *TokenAccountResult {
	return &TokenAccountResult{
		Address:  addr.String(),
		Mint:     t.Mint.String(),
		Owner:    t.Owner.String(),
		Amount:   t.Amount,
		UIAmount: amount.Format(t.Amount, decimals),
	}
}
