package program

import (
	"encoding/hex"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Klingon-tech/golfmellow/config"
	"golang.org/x/crypto/sha3"
)

// ValidateMintParams checks initMint arguments against rules.
func ValidateMintParams(p InitMintParams, rules config.ProgramRules) error {
	if err := checkText("name", p.Name, rules.MaxNameLen); err != nil {
		return err
	}
	if err := checkText("symbol", p.Symbol, rules.MaxSymbolLen); err != nil {
		return err
	}
	if err := checkURI(p.URI, rules); err != nil {
		return err
	}
	if p.Supply == 0 {
		return fail(InvalidMintParams, "supply must be positive")
	}
	if p.Supply > rules.MaxSupply {
		return fail(SupplyExceeded, "supply %d above maximum %d", p.Supply, rules.MaxSupply)
	}
	return nil
}

func checkText(field, s string, max int) error {
	if s == "" || strings.TrimSpace(s) != s {
		return fail(InvalidMintParams, "%s must be non-empty without surrounding spaces", field)
	}
	if len(s) > max {
		return fail(InvalidMintParams, "%s is %d bytes, max %d", field, len(s), max)
	}
	if !utf8.ValidString(s) {
		return fail(InvalidMintParams, "%s is not valid UTF-8", field)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fail(InvalidMintParams, "%s contains control characters", field)
		}
	}
	return nil
}

func checkURI(raw string, rules config.ProgramRules) error {
	if raw == "" || len(raw) > rules.MaxURILen {
		return fail(InvalidMintParams, "uri must be 1..%d bytes", rules.MaxURILen)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fail(InvalidMintParams, "uri: %v", err)
	}
	if !rules.AllowsScheme(u.Scheme) {
		return fail(InvalidMintParams, "uri scheme %q not allowed", u.Scheme)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return fail(InvalidMintParams, "uri has no host")
		}
	default:
		// ipfs://<cid>/path and ar://<txid> put the content id in the host.
		if u.Host == "" && u.Opaque == "" && strings.Trim(u.Path, "/") == "" {
			return fail(InvalidMintParams, "uri has no content identifier")
		}
	}
	return nil
}

// ValidatePolygonAddress checks that s is "0x" followed by 40 hex digits.
// All-lowercase and all-uppercase digits are accepted as-is; mixed case must
// carry a valid EIP-55 checksum.
func ValidatePolygonAddress(s string, length int) error {
	if len(s) != length || length != 42 {
		return fail(InvalidAddressFormat, "length %d, want 42", len(s))
	}
	if s[0] != '0' || s[1] != 'x' {
		return fail(InvalidAddressFormat, "missing 0x prefix")
	}
	digits := s[2:]
	if _, err := hex.DecodeString(digits); err != nil {
		return fail(InvalidAddressFormat, "non-hex characters")
	}
	if digits == strings.ToLower(digits) || digits == strings.ToUpper(digits) {
		return nil
	}
	if ChecksumPolygonAddress(s) != s {
		return fail(InvalidAddressFormat, "EIP-55 checksum mismatch")
	}
	return nil
}

// ChecksumPolygonAddress returns the EIP-55 mixed-case form of a
// "0x"-prefixed 40-digit hex address. The input is assumed well-formed.
func ChecksumPolygonAddress(s string) string {
	lower := strings.ToLower(s[2:])
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := []byte("0x" + lower)
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i+2] = c - 'a' + 'A'
		}
	}
	return string(out)
}
