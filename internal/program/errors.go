package program

import (
	"github.com/cockroachdb/errors"
)

// ErrorKind identifies why an instruction was rejected.
// Fully supports errors.Is and errors.As through wrapping.
type ErrorKind string

// Error kinds surfaced to callers. Codes are stable and travel over RPC.
const (
	AlreadyInitialized    = ErrorKind("account already initialized")
	AccountNotFound       = ErrorKind("account not found")
	Unauthorized          = ErrorKind("signer is not the stored authority")
	SupplyExceeded        = ErrorKind("supply cap exceeded")
	InsufficientMinted    = ErrorKind("burn exceeds minted minus burned")
	InsufficientBalance   = ErrorKind("insufficient token balance")
	InvalidAddressFormat  = ErrorKind("invalid polygon address format")
	AddressSpaceExhausted = ErrorKind("no viable bump for derived address")
	InvalidAmount         = ErrorKind("amount must be greater than zero")
	MintLimitExceeded     = ErrorKind("amount exceeds per-transaction mint limit")
	InvalidMintParams     = ErrorKind("invalid mint parameters")
	AddressMismatch       = ErrorKind("account address does not match derivation")
	InvalidAccountRole    = ErrorKind("account has the wrong role")
	Overflow              = ErrorKind("arithmetic overflow")
	InvalidInstruction    = ErrorKind("invalid instruction")
)

var kindCodes = map[ErrorKind]uint32{
	AlreadyInitialized:    1,
	AccountNotFound:       2,
	Unauthorized:          3,
	SupplyExceeded:        4,
	InsufficientMinted:    5,
	InsufficientBalance:   6,
	InvalidAddressFormat:  7,
	AddressSpaceExhausted: 8,
	InvalidAmount:         9,
	MintLimitExceeded:     10,
	InvalidMintParams:     11,
	AddressMismatch:       12,
	InvalidAccountRole:    13,
	Overflow:              14,
	InvalidInstruction:    15,
}

var kindNames = map[ErrorKind]string{
	AlreadyInitialized:    "AlreadyInitialized",
	AccountNotFound:       "AccountNotFound",
	Unauthorized:          "Unauthorized",
	SupplyExceeded:        "SupplyExceeded",
	InsufficientMinted:    "InsufficientMinted",
	InsufficientBalance:   "InsufficientBalance",
	InvalidAddressFormat:  "InvalidAddressFormat",
	AddressSpaceExhausted: "AddressSpaceExhausted",
	InvalidAmount:         "InvalidAmount",
	MintLimitExceeded:     "MintLimitExceeded",
	InvalidMintParams:     "InvalidMintParams",
	AddressMismatch:       "AddressMismatch",
	InvalidAccountRole:    "InvalidAccountRole",
	Overflow:              "Overflow",
	InvalidInstruction:    "InvalidInstruction",
}

// Error satisfies the error interface.
func (e ErrorKind) Error() string {
	return string(e)
}

// Code returns the stable numeric code of the kind, 0 if unknown.
func (e ErrorKind) Code() uint32 {
	return kindCodes[e]
}

// Name returns the kind's identifier, e.g. "SupplyExceeded".
func (e ErrorKind) Name() string {
	return kindNames[e]
}

// KindOf extracts the ErrorKind from a wrapped error chain.
func KindOf(err error) (ErrorKind, bool) {
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind, true
	}
	return "", false
}

// KindByName resolves a kind from its identifier.
func KindByName(name string) (ErrorKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return "", false
}

func fail(kind ErrorKind, format string, args ...any) error {
	return errors.Wrapf(kind, format, args...)
}
