package crypto

import (
	"bytes"
	"testing"
)

func TestHash_KnownVector(t *testing.T) {
	got := Hash([]byte{})
	want := "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got.String() != want {
		t.Errorf("Hash(empty) = %s, want %s", got, want)
	}
}

func TestHashParts_EqualsConcat(t *testing.T) {
	a, b, c := []byte("golf"), []byte("_"), []byte("mellow")
	if HashParts(a, b, c) != Hash([]byte("golf_mellow")) {
		t.Error("HashParts should equal Hash of the concatenation")
	}
}

func TestDiscriminator(t *testing.T) {
	d1 := Discriminator("account", "MintAccount")
	d2 := Discriminator("account", "MintAccount")
	d3 := Discriminator("account", "MintProxyAccount")
	if d1 != d2 {
		t.Error("discriminator should be deterministic")
	}
	if bytes.Equal(d1[:], d3[:]) {
		t.Error("different names should give different discriminators")
	}
}
