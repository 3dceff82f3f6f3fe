package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/Klingon-tech/golfmellow/config"
	"github.com/Klingon-tech/golfmellow/internal/ledger"
	klog "github.com/Klingon-tech/golfmellow/internal/log"
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/internal/storage"
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/tx"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

const token = config.Token

// testEnv holds all components for an RPC test.
type testEnv struct {
	server *Server
	ledger *ledger.Ledger
	admin  *crypto.PrivateKey
	mint   types.Address
	ata    types.Address
	url    string
	nonce  uint64
}

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithConfig(t, config.RPCConfig{})
}

func setupTestEnvWithConfig(t *testing.T, rpcCfg config.RPCConfig) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	l, err := ledger.New(storage.NewMemory(), config.TestnetGenesis())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	admin, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	mint, _, err := program.MintAddress(admin.Address())
	if err != nil {
		t.Fatalf("derive mint: %v", err)
	}
	ata, _, err := program.TokenAccountAddress(admin.Address(), mint)
	if err != nil {
		t.Fatalf("derive token account: %v", err)
	}

	srv := New("127.0.0.1:0", l, rpcCfg)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server: srv,
		ledger: l,
		admin:  admin,
		mint:   mint,
		ata:    ata,
		url:    fmt.Sprintf("http://%s/", srv.Addr()),
	}
}

// signed builds a transaction signed by the admin key.
func (env *testEnv) signed(t *testing.T, ixs ...tx.Instruction) *tx.Transaction {
	t.Helper()
	env.nonce++
	b := tx.NewBuilder().SetNonce(env.nonce)
	for _, ix := range ixs {
		b.AddInstruction(ix)
	}
	if err := b.Sign(env.admin); err != nil {
		t.Fatalf("sign: %v", err)
	}
	return b.Build()
}

// initMint registers the GMT mint and the admin's token account over RPC.
func (env *testEnv) initMint(t *testing.T) {
	t.Helper()
	initIx, err := program.NewInitMintInstruction(env.admin.Address(), program.InitMintParams{
		Name:   "Golf Mellow Token",
		Symbol: "GMT",
		Supply: 600_000 * token,
		URI:    "https://golfmellow.io/gmt.json",
	})
	if err != nil {
		t.Fatalf("init ix: %v", err)
	}
	ataIx, err := ledger.NewCreateTokenAccountInstruction(env.admin.Address(), env.admin.Address(), env.mint)
	if err != nil {
		t.Fatalf("ata ix: %v", err)
	}
	resp := rpcCall(t, env.url, "tx_submit", TxSubmitParam{Transaction: env.signed(t, initIx, ataIx)})
	if resp.Error != nil {
		t.Fatalf("init mint: %s", resp.Error.Message)
	}
}

func (env *testEnv) mintIx(t *testing.T, amount uint64) tx.Instruction {
	t.Helper()
	ix, err := program.NewMintTokensInstruction(env.mint, env.ata, env.admin.Address(), amount)
	if err != nil {
		t.Fatalf("mint ix: %v", err)
	}
	return ix
}

func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

func decodeResult(t *testing.T, resp Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func programErrorKind(t *testing.T, resp Response) string {
	t.Helper()
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != CodeProgramError {
		t.Fatalf("error code = %d, want %d (%s)", resp.Error.Code, CodeProgramError, resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Error.Data)
	var pe ProgramErrorData
	json.Unmarshal(data, &pe)
	return pe.Kind
}

// ── Tests ───────────────────────────────────────────────────────────────

func TestRPC_LedgerGetInfo(t *testing.T) {
	env := setupTestEnv(t)

	var result InfoResult
	decodeResult(t, rpcCall(t, env.url, "ledger_getInfo", nil), &result)

	if result.ChainID != config.TestnetGenesis().ChainID {
		t.Errorf("chain_id = %q", result.ChainID)
	}
	if result.ProgramID != program.ID.String() {
		t.Errorf("program_id = %q, want %q", result.ProgramID, program.ID.String())
	}
	if result.MaxSupply != "600000.000000000" {
		t.Errorf("max_supply = %q", result.MaxSupply)
	}
	if result.MaxMintPerTx != "15000.000000000" {
		t.Errorf("max_mint_per_tx = %q", result.MaxMintPerTx)
	}
}

func TestRPC_SubmitAndQuery(t *testing.T) {
	env := setupTestEnv(t)
	env.initMint(t)

	var submitted SubmitResult
	decodeResult(t, rpcCall(t, env.url, "tx_submit", TxSubmitParam{Transaction: env.signed(t, env.mintIx(t, 1500*token))}), &submitted)
	if !submitted.Committed {
		t.Error("expected committed result")
	}

	var receipt ledger.Receipt
	decodeResult(t, rpcCall(t, env.url, "tx_getReceipt", TxIDParam{TxID: submitted.TxID}), &receipt)
	if receipt.Sequence != 2 {
		t.Errorf("sequence = %d, want 2", receipt.Sequence)
	}
	if len(receipt.Logs) == 0 {
		t.Error("receipt has no logs")
	}

	var mint MintResult
	decodeResult(t, rpcCall(t, env.url, "gm_getMint", MintParam{Authority: env.admin.Address().String()}), &mint)
	if mint.Symbol != "GMT" || mint.Decimals != 9 {
		t.Errorf("mint = %+v", mint)
	}
	if mint.Circulating != "1500.000000000" {
		t.Errorf("circulating = %q", mint.Circulating)
	}

	var proxy ProxyResult
	decodeResult(t, rpcCall(t, env.url, "gm_getMintProxy", MintParam{Mint: env.mint.String()}), &proxy)
	if !proxy.Initialized || proxy.Total != 1500*token {
		t.Errorf("mint proxy = %+v", proxy)
	}

	var burn ProxyResult
	decodeResult(t, rpcCall(t, env.url, "gm_getBurnProxy", MintParam{Mint: env.mint.String()}), &burn)
	if burn.Initialized || burn.Total != 0 || burn.UITotal != "0.000000000" {
		t.Errorf("burn proxy = %+v", burn)
	}

	var acct TokenAccountResult
	decodeResult(t, rpcCall(t, env.url, "token_getAccount", AddressParam{Address: env.ata.String()}), &acct)
	if acct.Amount != 1500*token || acct.UIAmount != "1500.000000000" {
		t.Errorf("token account = %+v", acct)
	}

	var held []TokenAccountResult
	decodeResult(t, rpcCall(t, env.url, "token_listByOwner", TokenAccountParam{Owner: env.admin.Address().String()}), &held)
	if len(held) != 1 || held[0].Address != env.ata.String() {
		t.Errorf("held = %+v", held)
	}

	var raw AccountResult
	decodeResult(t, rpcCall(t, env.url, "account_get", AddressParam{Address: env.mint.String()}), &raw)
	if raw.Role != program.RoleMint.String() {
		t.Errorf("role = %q, want %q", raw.Role, program.RoleMint.String())
	}
}

func TestRPC_Simulate(t *testing.T) {
	env := setupTestEnv(t)
	env.initMint(t)

	var res SubmitResult
	decodeResult(t, rpcCall(t, env.url, "tx_submit", TxSubmitParam{
		Transaction: env.signed(t, env.mintIx(t, token)),
		Simulate:    true,
	}), &res)
	if res.Committed {
		t.Error("simulation must not commit")
	}

	resp := rpcCall(t, env.url, "tx_getReceipt", TxIDParam{TxID: res.TxID})
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("expected not found for simulated tx, got %+v", resp.Error)
	}
}

func TestRPC_ProgramErrorKind(t *testing.T) {
	env := setupTestEnv(t)
	env.initMint(t)

	resp := rpcCall(t, env.url, "tx_submit", TxSubmitParam{Transaction: env.signed(t, env.mintIx(t, 15_001*token))})
	if kind := programErrorKind(t, resp); kind != "MintLimitExceeded" {
		t.Errorf("kind = %q, want MintLimitExceeded", kind)
	}

	ix, err := program.NewBurnTokensInstruction(env.mint, env.ata, env.admin.Address(), token)
	if err != nil {
		t.Fatalf("burn ix: %v", err)
	}
	resp = rpcCall(t, env.url, "tx_submit", TxSubmitParam{Transaction: env.signed(t, ix)})
	if kind := programErrorKind(t, resp); kind != "InsufficientMinted" {
		t.Errorf("kind = %q, want InsufficientMinted", kind)
	}
}

func TestRPC_DuplicateTx(t *testing.T) {
	env := setupTestEnv(t)
	env.initMint(t)

	t1 := env.signed(t, env.mintIx(t, token))
	if resp := rpcCall(t, env.url, "tx_submit", TxSubmitParam{Transaction: t1}); resp.Error != nil {
		t.Fatalf("first submit: %s", resp.Error.Message)
	}
	resp := rpcCall(t, env.url, "tx_submit", TxSubmitParam{Transaction: t1})
	if resp.Error == nil || resp.Error.Code != CodeTxRejected {
		t.Fatalf("expected tx rejected, got %+v", resp.Error)
	}
}

func TestRPC_GMDerive(t *testing.T) {
	env := setupTestEnv(t)

	var canonical, alias DeriveResult
	decodeResult(t, rpcCall(t, env.url, "gm_derive", DeriveParam{Seed: program.SeedMint, Key: env.admin.Address().String()}), &canonical)
	decodeResult(t, rpcCall(t, env.url, "gm_derive", DeriveParam{Seed: "InitMint", Key: env.admin.Address().String()}), &alias)

	if canonical.Address != env.mint.String() {
		t.Errorf("address = %s, want %s", canonical.Address, env.mint)
	}
	if alias.Address != canonical.Address || alias.Seed != program.SeedMint {
		t.Errorf("alias derived %+v, canonical %+v", alias, canonical)
	}
	if canonical.Exists {
		t.Error("mint should not exist yet")
	}

	env.initMint(t)
	decodeResult(t, rpcCall(t, env.url, "gm_derive", DeriveParam{Seed: program.SeedMint, Key: env.admin.Address().String()}), &canonical)
	if !canonical.Exists {
		t.Error("mint should exist after init")
	}

	resp := rpcCall(t, env.url, "gm_derive", DeriveParam{Seed: "nope", Key: env.admin.Address().String()})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("expected invalid params for unknown seed, got %+v", resp.Error)
	}
}

func TestRPC_TokenDeriveAccount(t *testing.T) {
	env := setupTestEnv(t)

	var res DeriveResult
	decodeResult(t, rpcCall(t, env.url, "token_deriveAccount", TokenAccountParam{
		Owner: env.admin.Address().String(),
		Mint:  env.mint.String(),
	}), &res)
	if res.Address != env.ata.String() {
		t.Errorf("address = %s, want %s", res.Address, env.ata)
	}
}

func TestRPC_PolygonAddress(t *testing.T) {
	env := setupTestEnv(t)
	env.initMint(t)

	resp := rpcCall(t, env.url, "gm_getPolygonAddress", MintParam{Mint: env.mint.String()})
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Fatalf("expected not found before initializePda, got %+v", resp.Error)
	}

	const polygon = "0x52908400098527886E0F7030069857D2E4169EE7"
	ix, err := program.NewInitializePdaInstruction(env.mint, env.admin.Address(), polygon)
	if err != nil {
		t.Fatalf("pda ix: %v", err)
	}
	if resp := rpcCall(t, env.url, "tx_submit", TxSubmitParam{Transaction: env.signed(t, ix)}); resp.Error != nil {
		t.Fatalf("initializePda: %s", resp.Error.Message)
	}

	var res PolygonResult
	decodeResult(t, rpcCall(t, env.url, "gm_getPolygonAddress", MintParam{Mint: env.mint.String()}), &res)
	if res.PolygonAddress != polygon {
		t.Errorf("polygon address = %q, want %q", res.PolygonAddress, polygon)
	}
}

func TestRPC_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "gm_getMint", MintParam{Mint: env.mint.String()})
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("gm_getMint: expected not found, got %+v", resp.Error)
	}
	resp = rpcCall(t, env.url, "account_get", AddressParam{Address: env.ata.String()})
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("account_get: expected not found, got %+v", resp.Error)
	}
	resp = rpcCall(t, env.url, "tx_getReceipt", TxIDParam{TxID: types.Hash{}.String()})
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("tx_getReceipt: expected not found, got %+v", resp.Error)
	}
}

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "nonexistent_method", nil)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeMethodNotFound)
	}
}

func TestRPC_InvalidParams(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "account_get", nil)
	if resp.Error == nil {
		t.Fatal("expected error for missing params")
	}
	if resp.Error.Code != CodeInvalidParams {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeInvalidParams)
	}

	resp = rpcCall(t, env.url, "gm_getMint", MintParam{})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("expected invalid params for empty mint selector, got %+v", resp.Error)
	}
}

func TestRPC_InvalidAddress(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "account_get", AddressParam{Address: "xyz"})
	if resp.Error == nil {
		t.Fatal("expected error for invalid address")
	}
	if resp.Error.Code != CodeInvalidParams {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeInvalidParams)
	}
}

func TestRPC_InvalidJSON(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Post(env.url, "application/json", bytes.NewReader([]byte("not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)

	if rpcResp.Error == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if rpcResp.Error.Code != CodeParseError {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeParseError)
	}
}

func TestRPC_GetMethodNotAllowed(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)

	if rpcResp.Error == nil {
		t.Fatal("expected error for GET request")
	}
	if rpcResp.Error.Code != CodeInvalidRequest {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeInvalidRequest)
	}
}

// --- IP Filtering ---

func TestRPC_IPFilter_Allowed(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"127.0.0.1"},
	})

	resp := rpcCall(t, env.url, "ledger_getInfo", nil)
	if resp.Error != nil {
		t.Errorf("expected success for 127.0.0.1, got error: %s", resp.Error.Message)
	}
}

func TestRPC_IPFilter_Blocked(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"10.0.0.0/8"},
	})

	req := Request{JSONRPC: "2.0", Method: "ledger_getInfo", ID: 1}
	body, _ := json.Marshal(req)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRPC_IPFilter_Wildcard(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"10.0.0.0/8", "*"},
	})

	resp := rpcCall(t, env.url, "ledger_getInfo", nil)
	if resp.Error != nil {
		t.Errorf("wildcard should allow all: %s", resp.Error.Message)
	}
}

// --- CORS ---

func TestRPC_CORS_SpecificOrigin(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		CORSOrigins: []string{"http://myapp.com"},
	})

	req := Request{JSONRPC: "2.0", Method: "ledger_getInfo", ID: 1}
	body, _ := json.Marshal(req)

	httpReq, _ := http.NewRequest("POST", env.url, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Origin", "http://myapp.com")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "http://myapp.com" {
		t.Errorf("CORS origin = %q, want %q", origin, "http://myapp.com")
	}

	httpReq2, _ := http.NewRequest("POST", env.url, bytes.NewReader(body))
	httpReq2.Header.Set("Content-Type", "application/json")
	httpReq2.Header.Set("Origin", "http://evil.com")

	resp2, err := http.DefaultClient.Do(httpReq2)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp2.Body.Close()

	if origin := resp2.Header.Get("Access-Control-Allow-Origin"); origin != "" {
		t.Errorf("non-matching origin should have no CORS header, got %q", origin)
	}
}

func TestRPC_CORS_Preflight(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		CORSOrigins: []string{"*"},
	})

	httpReq, _ := http.NewRequest("OPTIONS", env.url, nil)
	httpReq.Header.Set("Origin", "http://example.com")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("preflight should allow any origin")
	}
}

func TestRPC_BodySizeLimit(t *testing.T) {
	env := setupTestEnv(t)

	bigPayload := bytes.Repeat([]byte{'A'}, (1<<20)+1024)

	resp, err := http.Post(env.url, "application/json", bytes.NewReader(bigPayload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)

	if rpcResp.Error == nil {
		t.Fatal("expected error for oversized request body")
	}
	if rpcResp.Error.Code != CodeInvalidRequest {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeInvalidRequest)
	}
}
