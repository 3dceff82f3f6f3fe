package wallet

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// SaltSize is the Argon2id salt length.
const SaltSize = 16

// Sealed layout: salt | time(4) | memory(4) | threads(1) | nonce(24) | ciphertext.
const sealedHeader = SaltSize + 4 + 4 + 1 + chacha20poly1305.NonceSizeX

// ErrWrongPassword is returned when authentication of the sealed data fails.
var ErrWrongPassword = errors.New("wrong password or corrupted keystore")

// KDFParams tunes Argon2id.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultKDFParams are used for keystores written by gm-cli.
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: 3, Memory: 64 * 1024, Threads: 4}
}

func (p KDFParams) validate() error {
	if p.Time == 0 || p.Memory < 8*uint32(p.Threads) || p.Threads == 0 {
		return fmt.Errorf("invalid kdf params %+v", p)
	}
	return nil
}

func (p KDFParams) key(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, chacha20poly1305.KeySize)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Seal encrypts plaintext under password with XChaCha20-Poly1305.
func Seal(plaintext, password []byte, params KDFParams) ([]byte, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	header := make([]byte, SaltSize, sealedHeader)
	if _, err := rand.Read(header); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	header = binary.LittleEndian.AppendUint32(header, params.Time)
	header = binary.LittleEndian.AppendUint32(header, params.Memory)
	header = append(header, params.Threads)
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	header = append(header, nonce...)

	key := params.key(password, header[:SaltSize])
	defer wipe(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	// The header is authenticated as associated data.
	return append(header, aead.Seal(nil, nonce, plaintext, header)...), nil
}

// Open reverses Seal.
func Open(sealed, password []byte) ([]byte, error) {
	if len(sealed) < sealedHeader+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("sealed data too short: %d bytes", len(sealed))
	}
	header := sealed[:sealedHeader]
	params := KDFParams{
		Time:    binary.LittleEndian.Uint32(header[SaltSize:]),
		Memory:  binary.LittleEndian.Uint32(header[SaltSize+4:]),
		Threads: header[SaltSize+8],
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	key := params.key(password, header[:SaltSize])
	defer wipe(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, header[SaltSize+9:], sealed[sealedHeader:], header)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}
