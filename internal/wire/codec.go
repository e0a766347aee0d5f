// codec.go - RFC 4253 wire primitive encode/decode

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

// Package wire implements the primitive data encodings used throughout
// the SSH binary packet protocol: byte, uint32, string, mpint and
// name-list, per RFC 4253 section 5.
package wire

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrMalformed is returned when a Reader runs out of bytes or encounters
// a field that cannot be a valid encoding of its type (e.g. a negative
// length prefix implied by truncation).
var ErrMalformed = errors.New("wire: malformed field")

// Buffer is a growable write-side accumulator for wire-encoded values.
// The zero value is ready to use.
type Buffer struct {
	b []byte
}

// NewBuffer returns a Buffer seeded with the given bytes, useful when
// building a payload that starts with a fixed message-type byte.
func NewBuffer(seed []byte) *Buffer {
	buf := &Buffer{}
	buf.b = append(buf.b, seed...)
	return buf
}

// Bytes returns the accumulated wire encoding.
func (w *Buffer) Bytes() []byte { return w.b }

// Len returns the number of bytes written so far.
func (w *Buffer) Len() int { return len(w.b) }

// PutByte appends a single byte.
func (w *Buffer) PutByte(v byte) { w.b = append(w.b, v) }

// PutBool appends a boolean as a single 0/1 byte.
func (w *Buffer) PutBool(v bool) {
	if v {
		w.PutByte(1)
	} else {
		w.PutByte(0)
	}
}

// PutUint32 appends a big-endian uint32.
func (w *Buffer) PutUint32(v uint32) {
	w.b = append(w.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// PutRaw appends raw bytes with no length prefix.
func (w *Buffer) PutRaw(p []byte) { w.b = append(w.b, p...) }

// PutString appends a length-prefixed byte string.
func (w *Buffer) PutString(p []byte) {
	w.PutUint32(uint32(len(p)))
	w.b = append(w.b, p...)
}

// PutNameList appends a comma-separated name-list as a length-prefixed
// string, per RFC 4253 section 6.6 / 5.
func (w *Buffer) PutNameList(names []string) {
	joined := joinNames(names)
	w.PutString([]byte(joined))
}

// PutMPInt appends a big.Int as a canonical two's-complement mpint:
// minimal length, a leading 0x00 byte inserted only when the high bit
// of the first magnitude byte would otherwise be mistaken for a sign bit.
func (w *Buffer) PutMPInt(n *big.Int) {
	if n.Sign() == 0 {
		w.PutUint32(0)
		return
	}
	mag := n.Bytes()
	if n.Sign() < 0 {
		// Negative values are not supported and panic; this protocol
		// only encodes positive ones (K, e, f, primes).
		panic("wire: negative mpint not supported")
	}
	if mag[0]&0x80 != 0 {
		buf := make([]byte, len(mag)+1)
		copy(buf[1:], mag)
		mag = buf
	}
	w.PutString(mag)
}

func joinNames(names []string) string {
	out := make([]byte, 0, 32)
	for i, n := range names {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, n...)
	}
	return string(out)
}

// Reader is a read-side cursor over a fixed byte slice.
type Reader struct {
	b   []byte
	pos int
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader { return &Reader{b: b} }

// Remaining reports how many bytes have not yet been consumed.
func (r *Reader) Remaining() int { return len(r.b) - r.pos }

func (r *Reader) need(n int) error {
	if n < 0 || r.Remaining() < n {
		return errors.WithStack(ErrMalformed)
	}
	return nil
}

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

// Bool reads a single byte as a boolean (nonzero is true).
func (r *Reader) Bool() (bool, error) {
	v, err := r.Byte()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := uint32(r.b[r.pos])<<24 | uint32(r.b[r.pos+1])<<16 | uint32(r.b[r.pos+2])<<8 | uint32(r.b[r.pos+3])
	r.pos += 4
	return v, nil
}

// Raw reads n raw bytes with no length prefix.
func (r *Reader) Raw(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.b[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// String reads a length-prefixed byte string.
func (r *Reader) String() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	return r.Raw(int(n))
}

// NameList reads a length-prefixed comma-separated name-list.
func (r *Reader) NameList() ([]string, error) {
	s, err := r.String()
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, nil
	}
	var names []string
	start := 0
	for i, c := range s {
		if c == ',' {
			names = append(names, string(s[start:i]))
			start = i + 1
		}
	}
	names = append(names, string(s[start:]))
	return names, nil
}

// MPInt reads a canonical two's-complement mpint and returns its value.
// Non-canonical encodings (a leading 0x00 not required to clear the
// sign bit, or a leading all-one-bits byte signalling a negative value
// this protocol never uses) are rejected.
func (r *Reader) MPInt() (*big.Int, error) {
	s, err := r.String()
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return big.NewInt(0), nil
	}
	if s[0]&0x80 != 0 {
		return nil, errors.Wrap(ErrMalformed, "mpint: negative value unsupported")
	}
	if len(s) > 1 && s[0] == 0x00 && s[1]&0x80 == 0 {
		return nil, errors.Wrap(ErrMalformed, "mpint: non-canonical leading zero")
	}
	return new(big.Int).SetBytes(s), nil
}
