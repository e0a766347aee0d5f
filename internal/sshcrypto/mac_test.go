package sshcrypto

import "testing"

func TestConstantTimeCompareEqual(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 2, 3, 4}
	if !ConstantTimeCompare(a, b) {
		t.Error("expected equal")
	}
}

func TestConstantTimeCompareDiffers(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 2, 3, 5}
	if ConstantTimeCompare(a, b) {
		t.Error("expected not equal")
	}
}

func TestConstantTimeCompareLengthMismatch(t *testing.T) {
	if ConstantTimeCompare([]byte{1, 2}, []byte{1, 2, 3}) {
		t.Error("expected not equal for differing lengths")
	}
}

func TestNewMACUnknown(t *testing.T) {
	if _, err := NewMAC("hmac-md5"); err == nil {
		t.Fatal("expected error for unknown mac")
	}
}

func TestHmacSha256Size(t *testing.T) {
	m, err := NewMAC("hmac-sha2-256")
	if err != nil {
		t.Fatal(err)
	}
	h := m.New(make([]byte, m.KeyLen))
	if h.Size() != 32 {
		t.Errorf("size = %d, want 32", h.Size())
	}
}
