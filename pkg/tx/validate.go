package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/golfmellow/config"
	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// Validation errors.
var (
	ErrNoInstructions     = errors.New("transaction has no instructions")
	ErrTooManyInstrs      = errors.New("too many instructions")
	ErrTooManyAccounts    = errors.New("too many instruction accounts")
	ErrDataTooLarge       = errors.New("instruction data too large")
	ErrZeroProgramID      = errors.New("instruction has zero program id")
	ErrNoSignatures       = errors.New("transaction has no signatures")
	ErrTooManySignatures  = errors.New("too many signatures")
	ErrInvalidPubKey      = errors.New("invalid public key")
	ErrInvalidSig         = errors.New("invalid signature")
	ErrDuplicateSignature = errors.New("duplicate signature")
	ErrMissingSigner      = errors.New("missing signature for required signer")
)

// Validate checks transaction structure and size limits.
// It does not verify signatures; see VerifySignatures.
func (tx *Transaction) Validate() error {
	if len(tx.Instructions) == 0 {
		return ErrNoInstructions
	}
	if len(tx.Instructions) > config.MaxTxInstructions {
		return fmt.Errorf("%w: %d, max %d", ErrTooManyInstrs, len(tx.Instructions), config.MaxTxInstructions)
	}
	for i, ix := range tx.Instructions {
		if ix.ProgramID.IsZero() {
			return fmt.Errorf("instruction %d: %w", i, ErrZeroProgramID)
		}
		if len(ix.Accounts) > config.MaxInstructionAccts {
			return fmt.Errorf("instruction %d: %w: %d, max %d", i, ErrTooManyAccounts, len(ix.Accounts), config.MaxInstructionAccts)
		}
		if len(ix.Data) > config.MaxInstructionData {
			return fmt.Errorf("instruction %d: %w: %d bytes, max %d", i, ErrDataTooLarge, len(ix.Data), config.MaxInstructionData)
		}
	}

	if len(tx.Signatures) == 0 {
		return ErrNoSignatures
	}
	if len(tx.Signatures) > config.MaxTxSignatures {
		return fmt.Errorf("%w: %d, max %d", ErrTooManySignatures, len(tx.Signatures), config.MaxTxSignatures)
	}
	seen := make(map[types.Address]bool, len(tx.Signatures))
	for i, s := range tx.Signatures {
		addr, err := crypto.AddressFromPubKey(s.PubKey)
		if err != nil {
			return fmt.Errorf("signature %d: %w: %v", i, ErrInvalidPubKey, err)
		}
		if seen[addr] {
			return fmt.Errorf("signature %d: %w", i, ErrDuplicateSignature)
		}
		seen[addr] = true
	}
	for _, addr := range tx.RequiredSigners() {
		if !seen[addr] {
			return fmt.Errorf("%w: %s", ErrMissingSigner, addr)
		}
	}
	return nil
}

// VerifySignatures checks every attached signature against the transaction hash.
func (tx *Transaction) VerifySignatures() error {
	hash := tx.Hash()
	for i, s := range tx.Signatures {
		if !crypto.VerifySignature(hash[:], s.Signature, s.PubKey) {
			return fmt.Errorf("signature %d: %w", i, ErrInvalidSig)
		}
	}
	return nil
}
