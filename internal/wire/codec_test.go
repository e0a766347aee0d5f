package wire

import (
	"bytes"
	"math/big"
	"testing"
)

func TestUint32RoundTrip(t *testing.T) {
	w := &Buffer{}
	w.PutUint32(0xDEADBEEF)
	r := NewReader(w.Bytes())
	v, err := r.Uint32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xDEADBEEF {
		t.Errorf("got %x, want %x", v, 0xDEADBEEF)
	}
}

func TestStringRoundTrip(t *testing.T) {
	w := &Buffer{}
	w.PutString([]byte("hello"))
	r := NewReader(w.Bytes())
	s, err := r.String()
	if err != nil {
		t.Fatal(err)
	}
	if string(s) != "hello" {
		t.Errorf("got %q", s)
	}
}

func TestNameListRoundTrip(t *testing.T) {
	names := []string{"diffie-hellman-group14-sha1", "diffie-hellman-group1-sha1"}
	w := &Buffer{}
	w.PutNameList(names)
	r := NewReader(w.Bytes())
	got, err := r.NameList()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != names[0] || got[1] != names[1] {
		t.Errorf("got %v, want %v", got, names)
	}
}

func TestNameListEmpty(t *testing.T) {
	w := &Buffer{}
	w.PutNameList(nil)
	r := NewReader(w.Bytes())
	got, err := r.NameList()
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestMPIntZero(t *testing.T) {
	w := &Buffer{}
	w.PutMPInt(big.NewInt(0))
	if !bytes.Equal(w.Bytes(), []byte{0, 0, 0, 0}) {
		t.Errorf("zero mpint encoding = %x", w.Bytes())
	}
}

func TestMPIntHighBitPadding(t *testing.T) {
	// 0x80 alone would look like a negative sign bit; must be padded
	// with a leading 0x00.
	n := big.NewInt(0x80)
	w := &Buffer{}
	w.PutMPInt(n)
	want := []byte{0, 0, 0, 2, 0x00, 0x80}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("got %x, want %x", w.Bytes(), want)
	}
	r := NewReader(w.Bytes())
	got, err := r.MPInt()
	if err != nil {
		t.Fatal(err)
	}
	if got.Cmp(n) != 0 {
		t.Errorf("got %s, want %s", got, n)
	}
}

func TestMPIntNoPaddingNeeded(t *testing.T) {
	n := big.NewInt(0x7F)
	w := &Buffer{}
	w.PutMPInt(n)
	want := []byte{0, 0, 0, 1, 0x7F}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("got %x, want %x", w.Bytes(), want)
	}
}

func TestMPIntRejectsNonCanonical(t *testing.T) {
	// length 2, bytes [0x00, 0x01]: leading zero not required since
	// 0x01's high bit is already clear.
	b := []byte{0, 0, 0, 2, 0x00, 0x01}
	r := NewReader(b)
	if _, err := r.MPInt(); err == nil {
		t.Fatal("expected error for non-canonical mpint")
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 10, 1, 2})
	if _, err := r.String(); err == nil {
		t.Fatal("expected error reading truncated string")
	}
}
