package program

import (
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// Well-known program identifiers.
var (
	// ID is the address of the token-issuance program.
	ID = programID("golf_mellow")
	// TokenProgramID is the ledger's native token standard.
	TokenProgramID = programID("token")
	// SystemProgramID owns account creation.
	SystemProgramID = programID("system")
)

func programID(name string) types.Address {
	return types.Address(crypto.HashParts([]byte("program:"), []byte(name)))
}
