package sshcrypto

import "testing"

func TestNewCipherUnknown(t *testing.T) {
	if _, err := NewCipher("rot13"); err == nil {
		t.Fatal("expected error for unknown cipher")
	}
}

func TestNoneCipherIsIdentity(t *testing.T) {
	c, err := NewCipher("none")
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.Stream(nil, nil, Encrypt)
	if err != nil {
		t.Fatal(err)
	}
	src := []byte("hello world")
	dst := make([]byte, len(src))
	s.XORKeyStream(dst, src)
	if string(dst) != "hello world" {
		t.Errorf("got %q", dst)
	}
}

func TestAES128CTRRoundTrip(t *testing.T) {
	c, err := NewCipher("aes128-ctr")
	if err != nil {
		t.Fatal(err)
	}
	key := make([]byte, c.KeyLen)
	iv := make([]byte, c.IVLen)
	for i := range key {
		key[i] = byte(i)
	}
	enc, err := c.Stream(key, iv, Encrypt)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := c.Stream(key, iv, Decrypt)
	if err != nil {
		t.Fatal(err)
	}
	plain := []byte("0123456789abcdef")
	ct := make([]byte, len(plain))
	enc.XORKeyStream(ct, plain)
	pt := make([]byte, len(ct))
	dec.XORKeyStream(pt, ct)
	if string(pt) != string(plain) {
		t.Errorf("got %q, want %q", pt, plain)
	}
}

func TestAES128CBCRoundTrip(t *testing.T) {
	c, err := NewCipher("aes128-cbc")
	if err != nil {
		t.Fatal(err)
	}
	key := make([]byte, c.KeyLen)
	iv := make([]byte, c.IVLen)
	enc, err := c.Stream(key, iv, Encrypt)
	if err != nil {
		t.Fatal(err)
	}
	plain := []byte("0123456789abcdef") // one block
	ct := make([]byte, len(plain))
	enc.XORKeyStream(ct, plain)
	dec, err := c.Stream(key, iv, Decrypt)
	if err != nil {
		t.Fatal(err)
	}
	pt := make([]byte, len(ct))
	dec.XORKeyStream(pt, ct)
	if string(pt) != string(plain) {
		t.Errorf("got %q, want %q", pt, plain)
	}
}

func TestBlowfishCBCRoundTrip(t *testing.T) {
	c, err := NewCipher("blowfish-cbc")
	if err != nil {
		t.Fatal(err)
	}
	key := make([]byte, c.KeyLen)
	iv := make([]byte, c.IVLen)
	enc, err := c.Stream(key, iv, Encrypt)
	if err != nil {
		t.Fatal(err)
	}
	plain := []byte("01234567") // one block (8 bytes)
	ct := make([]byte, len(plain))
	enc.XORKeyStream(ct, plain)
	dec, err := c.Stream(key, iv, Decrypt)
	if err != nil {
		t.Fatal(err)
	}
	pt := make([]byte, len(ct))
	dec.XORKeyStream(pt, ct)
	if string(pt) != string(plain) {
		t.Errorf("got %q, want %q", pt, plain)
	}
}
