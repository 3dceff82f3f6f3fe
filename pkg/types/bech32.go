package types

import (
	"errors"
	"fmt"
	"strings"
)

// bech32MaxLength is the BIP-173 upper bound on an encoded string.
const bech32MaxLength = 90

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var bech32Gen = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// bech32Rev maps a charset byte to its 5-bit value, -1 for bytes outside the charset.
var bech32Rev = func() (rev [128]int8) {
	for i := range rev {
		rev[i] = -1
	}
	for i := 0; i < len(bech32Charset); i++ {
		rev[bech32Charset[i]] = int8(i)
	}
	return rev
}()

// Bech32 errors.
var (
	ErrBech32Checksum = errors.New("bech32: invalid checksum")
	ErrBech32Length   = errors.New("bech32: invalid length")
	ErrBech32Case     = errors.New("bech32: mixed case")
)

// Bech32Encode encodes hrp and 8-bit data as a bech32 string.
func Bech32Encode(hrp string, data []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("bech32: empty HRP")
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return "", fmt.Errorf("bech32: invalid HRP character %q", hrp[i])
		}
	}
	hrp = strings.ToLower(hrp)

	groups, err := regroupBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	if len(hrp)+1+len(groups)+6 > bech32MaxLength {
		return "", ErrBech32Length
	}

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(groups) + 6)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, g := range groups {
		sb.WriteByte(bech32Charset[g])
	}
	for _, g := range bech32Checksum(hrp, groups) {
		sb.WriteByte(bech32Charset[g])
	}
	return sb.String(), nil
}

// Bech32Decode splits a bech32 string into its HRP and 8-bit payload.
func Bech32Decode(s string) (string, []byte, error) {
	if len(s) < 8 || len(s) > bech32MaxLength {
		return "", nil, ErrBech32Length
	}
	lower := strings.ToLower(s)
	if lower != s && strings.ToUpper(s) != s {
		return "", nil, ErrBech32Case
	}

	sep := strings.LastIndexByte(lower, '1')
	if sep < 1 || sep+7 > len(lower) {
		return "", nil, fmt.Errorf("bech32: missing or misplaced separator")
	}
	hrp, payload := lower[:sep], lower[sep+1:]

	groups := make([]byte, len(payload))
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c >= 128 || bech32Rev[c] < 0 {
			return "", nil, fmt.Errorf("bech32: invalid character %q", c)
		}
		groups[i] = byte(bech32Rev[c])
	}
	if bech32Polymod(append(hrpExpand(hrp), groups...)) != 1 {
		return "", nil, ErrBech32Checksum
	}

	data, err := regroupBits(groups[:len(groups)-6], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, data, nil
}

func bech32Polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i, g := range bech32Gen {
			if (top>>uint(i))&1 == 1 {
				chk ^= g
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func bech32Checksum(hrp string, groups []byte) []byte {
	values := append(hrpExpand(hrp), groups...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := bech32Polymod(values) ^ 1
	out := make([]byte, 6)
	for i := range out {
		out[i] = byte(mod>>uint(5*(5-i))) & 31
	}
	return out
}

// regroupBits converts a byte stream between group sizes (8→5 on encode, 5→8 on decode).
func regroupBits(data []byte, from, to uint, pad bool) ([]byte, error) {
	var (
		acc  uint32
		bits uint
		out  = make([]byte, 0, len(data)*int(from)/int(to)+1)
		mask = uint32(1)<<to - 1
	)
	for _, b := range data {
		if uint32(b)>>from != 0 {
			return nil, fmt.Errorf("bech32: invalid data byte %d", b)
		}
		acc = acc<<from | uint32(b)
		bits += from
		for bits >= to {
			bits -= to
			out = append(out, byte(acc>>bits&mask))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(to-bits)&mask))
		}
		return out, nil
	}
	if bits >= from || acc<<(to-bits)&mask != 0 {
		return nil, fmt.Errorf("bech32: non-zero padding")
	}
	return out, nil
}
