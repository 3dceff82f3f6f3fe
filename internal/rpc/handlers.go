package rpc

import (
	"context"
	"fmt"
	"sort"

	"github.com/Klingon-tech/golfmellow/internal/ledger"
	"github.com/Klingon-tech/golfmellow/internal/program"
	"github.com/Klingon-tech/golfmellow/pkg/amount"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/cockroachdb/errors"
)

// ── Ledger endpoints ────────────────────────────────────────────────────

func (s *Server) handleLedgerGetInfo(_ *Request) (interface{}, *Error) {
	info := s.ledger.Info()
	return &InfoResult{
		ChainID:         info.ChainID,
		GenesisHash:     info.GenesisHash.String(),
		TxCount:         info.TxCount,
		ProgramID:       info.ProgramID.String(),
		TokenProgramID:  info.TokenProgramID.String(),
		SystemProgramID: program.SystemProgramID.String(),
		Decimals:        info.Rules.Decimals,
		MaxSupply:       amount.Format(info.Rules.MaxSupply, info.Rules.Decimals),
		MaxMintPerTx:    amount.Format(info.Rules.MaxMintBaseUnits(), info.Rules.Decimals),
	}, nil
}

// ── Transaction endpoints ───────────────────────────────────────────────

func (s *Server) handleTxSubmit(ctx context.Context, req *Request) (interface{}, *Error) {
	var params TxSubmitParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Transaction == nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "transaction is required"}
	}

	submit := s.ledger.Submit
	if params.Simulate {
		submit = s.ledger.Simulate
	}
	receipt, err := submit(ctx, params.Transaction)
	if err != nil {
		return nil, txError(err)
	}
	return &SubmitResult{
		TxID:      receipt.TxID.String(),
		Committed: !params.Simulate,
		Receipt:   receipt,
	}, nil
}

func (s *Server) handleTxGetReceipt(req *Request) (interface{}, *Error) {
	var params TxIDParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	id, err := types.HexToHash(params.TxID)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid txid: must be 32-byte hex"}
	}
	receipt, err := s.ledger.Receipt(id)
	if err != nil {
		return nil, internalError(err)
	}
	if receipt == nil {
		return nil, &Error{Code: CodeNotFound, Message: "receipt not found"}
	}
	return receipt, nil
}

// txError maps a rejected submission onto a JSON-RPC error. Program
// failures carry their kind so clients can branch on it.
func txError(err error) *Error {
	if kind, ok := program.KindOf(err); ok {
		data := ProgramErrorData{Kind: kind.Name(), Code: kind.Code(), Instruction: -1}
		var txErr *ledger.TxError
		if errors.As(err, &txErr) {
			data.Instruction = txErr.Instruction
		}
		return &Error{Code: CodeProgramError, Message: err.Error(), Data: data}
	}
	switch {
	case errors.Is(err, ledger.ErrInvalidTx), errors.Is(err, ledger.ErrDuplicateTx), errors.Is(err, ledger.ErrUnknownProgram):
		return &Error{Code: CodeTxRejected, Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: CodeInternalError, Message: "request cancelled"}
	default:
		return internalError(err)
	}
}

func internalError(err error) *Error {
	return &Error{Code: CodeInternalError, Message: err.Error()}
}

// ── Account endpoints ───────────────────────────────────────────────────

func (s *Server) handleAccountGet(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, rpcErr := parseAddress("address", params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	info, err := s.ledger.Account(addr)
	if err != nil {
		return nil, internalError(err)
	}
	if info == nil {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("account %s not found", addr)}
	}
	return newAccountResult(info), nil
}

// ── GM program endpoints ────────────────────────────────────────────────

func (s *Server) handleGMDerive(req *Request) (interface{}, *Error) {
	var params DeriveParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if program.SeedRole(params.Seed) == program.RoleUnknown {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown seed %q", params.Seed)}
	}
	key, rpcErr := parseAddress("key", params.Key)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, bump, err := program.Derive(params.Seed, key)
	if err != nil {
		return nil, programError(err)
	}
	info, err := s.ledger.Account(addr)
	if err != nil {
		return nil, internalError(err)
	}
	return &DeriveResult{
		Address: addr.String(),
		Bump:    bump,
		Seed:    program.CanonicalSeed(params.Seed),
		Exists:  info != nil,
	}, nil
}

func (s *Server) handleGMGetMint(req *Request) (interface{}, *Error) {
	mintAddr, rpcErr := s.mintFromParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	m, rpcErr := s.loadMint(mintAddr)
	if rpcErr != nil {
		return nil, rpcErr
	}
	var circulating uint64
	native, err := s.ledger.Mint(mintAddr)
	if err != nil {
		return nil, internalError(err)
	}
	if native != nil {
		circulating = native.Supply
	}
	return newMintResult(mintAddr, m, circulating), nil
}

func (s *Server) handleGMGetMintProxy(req *Request) (interface{}, *Error) {
	mintAddr, rpcErr := s.mintFromParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	m, rpcErr := s.loadMint(mintAddr)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, bump, err := program.MintProxyAddress(mintAddr)
	if err != nil {
		return nil, programError(err)
	}
	res := &ProxyResult{Address: addr.String(), Mint: mintAddr.String(), Authority: m.Authority.String(), Bump: bump}
	info, rpcErr := s.programAccount(addr)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if info != nil {
		p, err := program.DecodeMintProxyAccount(info.Data)
		if err != nil {
			return nil, programError(err)
		}
		res.Total, res.Initialized = p.MintTotal, true
	}
	res.UITotal = amount.Format(res.Total, m.Decimals)
	return res, nil
}

func (s *Server) handleGMGetBurnProxy(req *Request) (interface{}, *Error) {
	mintAddr, rpcErr := s.mintFromParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	m, rpcErr := s.loadMint(mintAddr)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, bump, err := program.BurnProxyAddress(mintAddr)
	if err != nil {
		return nil, programError(err)
	}
	res := &ProxyResult{Address: addr.String(), Mint: mintAddr.String(), Authority: m.Authority.String(), Bump: bump}
	info, rpcErr := s.programAccount(addr)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if info != nil {
		p, err := program.DecodeBurnProxyAccount(info.Data)
		if err != nil {
			return nil, programError(err)
		}
		res.Total, res.Initialized = p.BurnTotal, true
	}
	res.UITotal = amount.Format(res.Total, m.Decimals)
	return res, nil
}

func (s *Server) handleGMGetPolygonAddress(req *Request) (interface{}, *Error) {
	mintAddr, rpcErr := s.mintFromParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, _, err := program.PolygonAccountAddress(mintAddr)
	if err != nil {
		return nil, programError(err)
	}
	info, rpcErr := s.programAccount(addr)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if info == nil {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("polygon address account %s not initialized", addr)}
	}
	p, err := program.DecodePolygonAddressAccount(info.Data)
	if err != nil {
		return nil, programError(err)
	}
	return &PolygonResult{
		Address:        addr.String(),
		Mint:           p.Mint.String(),
		Authority:      p.Authority.String(),
		PolygonAddress: p.PolygonAddress,
		Bump:           p.Bump,
	}, nil
}

// mintFromParams resolves the mint named by address or by its authority.
func (s *Server) mintFromParams(req *Request) (types.Address, *Error) {
	var params MintParam
	if err := parseParams(req, &params); err != nil {
		return types.Address{}, err
	}
	switch {
	case params.Mint != "":
		return parseAddress("mint", params.Mint)
	case params.Authority != "":
		authority, rpcErr := parseAddress("authority", params.Authority)
		if rpcErr != nil {
			return types.Address{}, rpcErr
		}
		mint, _, err := program.MintAddress(authority)
		if err != nil {
			return types.Address{}, programError(err)
		}
		return mint, nil
	default:
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: "mint or authority is required"}
	}
}

func (s *Server) loadMint(addr types.Address) (*program.MintAccount, *Error) {
	info, rpcErr := s.programAccount(addr)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if info == nil {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("mint %s not initialized", addr)}
	}
	m, err := program.DecodeMintAccount(info.Data)
	if err != nil {
		return nil, programError(err)
	}
	return m, nil
}

// programAccount loads an account that must be owned by the GM program.
func (s *Server) programAccount(addr types.Address) (*program.AccountInfo, *Error) {
	info, err := s.ledger.Account(addr)
	if err != nil {
		return nil, internalError(err)
	}
	if info != nil && info.Owner != program.ID {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("account %s is not owned by the program", addr)}
	}
	return info, nil
}

func programError(err error) *Error {
	kind, ok := program.KindOf(err)
	if !ok {
		return internalError(err)
	}
	return &Error{
		Code:    CodeProgramError,
		Message: err.Error(),
		Data:    ProgramErrorData{Kind: kind.Name(), Code: kind.Code(), Instruction: -1},
	}
}

// ── Token endpoints ─────────────────────────────────────────────────────

func (s *Server) handleTokenGetAccount(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, rpcErr := parseAddress("address", params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	t, err := s.ledger.TokenAccount(addr)
	if err != nil {
		return nil, programError(err)
	}
	if t == nil {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("token account %s not found", addr)}
	}
	decimals, rpcErr := s.decimalsOf(t.Mint)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return newTokenAccountResult(addr, t, decimals), nil
}

func (s *Server) handleTokenDeriveAccount(req *Request) (interface{}, *Error) {
	var params TokenAccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	owner, rpcErr := parseAddress("owner", params.Owner)
	if rpcErr != nil {
		return nil, rpcErr
	}
	mint, rpcErr := parseAddress("mint", params.Mint)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, bump, err := program.TokenAccountAddress(owner, mint)
	if err != nil {
		return nil, programError(err)
	}
	info, err := s.ledger.Account(addr)
	if err != nil {
		return nil, internalError(err)
	}
	return &DeriveResult{Address: addr.String(), Bump: bump, Exists: info != nil}, nil
}

func (s *Server) handleTokenListByOwner(req *Request) (interface{}, *Error) {
	var params TokenAccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	owner, rpcErr := parseAddress("owner", params.Owner)
	if rpcErr != nil {
		return nil, rpcErr
	}
	var mint types.Address
	if params.Mint != "" {
		if mint, rpcErr = parseAddress("mint", params.Mint); rpcErr != nil {
			return nil, rpcErr
		}
	}
	held, err := s.ledger.TokenAccountsByOwner(owner)
	if err != nil {
		return nil, internalError(err)
	}
	results := make([]*TokenAccountResult, 0, len(held))
	for addr, t := range held {
		if params.Mint != "" && t.Mint != mint {
			continue
		}
		decimals, rpcErr := s.decimalsOf(t.Mint)
		if rpcErr != nil {
			return nil, rpcErr
		}
		results = append(results, newTokenAccountResult(addr, &t, decimals))
	}
	sortTokenAccounts(results)
	return results, nil
}

func (s *Server) decimalsOf(mint types.Address) (uint8, *Error) {
	native, err := s.ledger.Mint(mint)
	if err != nil {
		return 0, internalError(err)
	}
	if native == nil {
		return 0, &Error{Code: CodeNotFound, Message: fmt.Sprintf("mint %s not registered", mint)}
	}
	return native.Decimals, nil
}

func parseAddress(field, s string) (types.Address, *Error) {
	if s == "" {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: field + " is required"}
	}
	addr, err := types.ParseAddress(s)
	if err != nil {
		return types.Address{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid %s: %v", field, err)}
	}
	return addr, nil
}

func sortTokenAccounts(results []*TokenAccountResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Address < results[j].Address })
}
