// Package tx defines transactions, instructions and their validation.
package tx

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/Klingon-tech/golfmellow/pkg/crypto"
	"github.com/Klingon-tech/golfmellow/pkg/types"
	"github.com/samber/lo"
)

// Transaction is a signed, ordered list of instructions executed atomically.
type Transaction struct {
	Version      uint32        `json:"version"`
	Nonce        uint64        `json:"nonce"`
	Instructions []Instruction `json:"instructions"`
	Signatures   []Signature   `json:"signatures"`
}

// AccountMeta names an account an instruction touches and how.
type AccountMeta struct {
	Address  types.Address `json:"address"`
	Signer   bool          `json:"signer"`
	Writable bool          `json:"writable"`
}

// Instruction is one program invocation.
type Instruction struct {
	ProgramID types.Address `json:"program_id"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      []byte        `json:"data"`
}

type instructionJSON struct {
	ProgramID types.Address `json:"program_id"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      string        `json:"data"`
}

// MarshalJSON encodes the instruction with hex-encoded data.
func (ix Instruction) MarshalJSON() ([]byte, error) {
	return json.Marshal(instructionJSON{
		ProgramID: ix.ProgramID,
		Accounts:  ix.Accounts,
		Data:      hex.EncodeToString(ix.Data),
	})
}

// UnmarshalJSON decodes an instruction with hex-encoded data.
func (ix *Instruction) UnmarshalJSON(data []byte) error {
	var j instructionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	b, err := hex.DecodeString(j.Data)
	if err != nil {
		return err
	}
	ix.ProgramID = j.ProgramID
	ix.Accounts = j.Accounts
	ix.Data = b
	return nil
}

// Signature pairs a compressed public key with its Schnorr signature over
// the transaction hash.
type Signature struct {
	PubKey    []byte `json:"pubkey"`
	Signature []byte `json:"signature"`
}

type signatureJSON struct {
	PubKey    string `json:"pubkey"`
	Signature string `json:"signature"`
}

// MarshalJSON encodes the signature with hex-encoded fields.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(signatureJSON{
		PubKey:    hex.EncodeToString(s.PubKey),
		Signature: hex.EncodeToString(s.Signature),
	})
}

// UnmarshalJSON decodes a signature with hex-encoded fields.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var j signatureJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	pub, err := hex.DecodeString(j.PubKey)
	if err != nil {
		return err
	}
	sig, err := hex.DecodeString(j.Signature)
	if err != nil {
		return err
	}
	s.PubKey, s.Signature = pub, sig
	return nil
}

// Hash computes the transaction ID (BLAKE3 hash of the signing bytes).
// Signatures are excluded.
func (tx *Transaction) Hash() types.TxID {
	return crypto.Hash(tx.SigningBytes())
}

// SigningBytes returns the canonical byte representation used for signing.
// Format: version(4) | nonce(8) | ix_count(4) |
// [program_id(32) | account_count(4) | [address(32) | flags(1)]... | data_len(4) | data]...
func (tx *Transaction) SigningBytes() []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, tx.Version)
	buf = binary.LittleEndian.AppendUint64(buf, tx.Nonce)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Instructions)))
	for _, ix := range tx.Instructions {
		buf = append(buf, ix.ProgramID[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.Accounts)))
		for _, a := range ix.Accounts {
			buf = append(buf, a.Address[:]...)
			buf = append(buf, a.flags())
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.Data)))
		buf = append(buf, ix.Data...)
	}
	return buf
}

func (a AccountMeta) flags() byte {
	var f byte
	if a.Signer {
		f |= 1
	}
	if a.Writable {
		f |= 2
	}
	return f
}

// RequiredSigners returns every address marked as signer, in first-seen order.
func (tx *Transaction) RequiredSigners() []types.Address {
	metas := lo.FlatMap(tx.Instructions, func(ix Instruction, _ int) []AccountMeta {
		return ix.Accounts
	})
	signers := lo.FilterMap(metas, func(a AccountMeta, _ int) (types.Address, bool) {
		return a.Address, a.Signer
	})
	return lo.Uniq(signers)
}

// SignedAddresses returns the addresses of the attached signatures.
// Malformed public keys are skipped; Validate reports them.
func (tx *Transaction) SignedAddresses() []types.Address {
	return lo.FilterMap(tx.Signatures, func(s Signature, _ int) (types.Address, bool) {
		addr, err := crypto.AddressFromPubKey(s.PubKey)
		return addr, err == nil
	})
}
