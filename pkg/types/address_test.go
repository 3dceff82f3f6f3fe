package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func testAddress() Address {
	var a Address
	for i := range a {
		a[i] = byte(0xA0 + i)
	}
	return a
}

func TestAddress_String(t *testing.T) {
	old := GetAddressHRP()
	defer SetAddressHRP(old)

	SetAddressHRP(MainnetHRP)
	if s := testAddress().String(); !strings.HasPrefix(s, "gm1") {
		t.Errorf("String() = %s, want gm1 prefix", s)
	}

	SetAddressHRP(TestnetHRP)
	if s := testAddress().String(); !strings.HasPrefix(s, "tgm1") {
		t.Errorf("String() = %s, want tgm1 prefix", s)
	}
}

func TestParseAddress(t *testing.T) {
	a := testAddress()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bech32", a.String(), false},
		{"hex", a.Hex(), false},
		{"padded", "  " + a.Hex() + " ", false},
		{"empty", "", true},
		{"short hex", a.Hex()[:40], true},
		{"bad bech32", "gm1qqqq", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAddress(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress(%q): %v", tt.input, err)
			}
			if got != a {
				t.Errorf("ParseAddress = %x, want %x", got, a)
			}
		})
	}
}

func TestParseAddress_UnknownPrefix(t *testing.T) {
	s, err := Bech32Encode("sol", testAddress().Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAddress(s); err == nil {
		t.Error("expected error for foreign HRP")
	}
}

func TestAddress_JSON(t *testing.T) {
	a := testAddress()
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var back Address
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != a {
		t.Errorf("round trip = %x, want %x", back, a)
	}

	var zero Address
	if err := json.Unmarshal([]byte(`""`), &zero); err != nil || !zero.IsZero() {
		t.Errorf("empty string should decode to zero address, err=%v", err)
	}
}

func TestHash_HexRoundTrip(t *testing.T) {
	var h Hash
	h[0], h[31] = 0xde, 0xad
	got, err := HexToHash(h.String())
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Errorf("HexToHash = %x, want %x", got, h)
	}
	if _, err := HexToHash("abcd"); err == nil {
		t.Error("expected length error")
	}
	if !(Hash{}).IsZero() || h.IsZero() {
		t.Error("IsZero mismatch")
	}
}
