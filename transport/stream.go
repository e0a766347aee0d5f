// stream.go - RFC 4253 binary packet protocol over a net.Conn

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

// Package transport implements the SSH binary packet protocol: framing,
// padding, per-direction encryption and MAC authentication, and
// monotonic sequence numbers, structured after xsnet.Conn's Read/Write
// pair but reframed to RFC 4253's exact
// packet_length|padding_length|payload|padding|mac record layout
// instead of the teacher's own ad hoc framing.
package transport

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"blitter.com/go/eessh/internal/sshcrypto"
)

// Sentinel errors, matching the taxonomy this transport reports to
// callers; DISCONNECT reason-code mapping lives in package kex.
var (
	ErrIo                = errors.New("transport: io error")
	ErrMalformed         = errors.New("transport: malformed packet")
	ErrOversizedPacket   = errors.New("transport: packet exceeds configured maximum")
	ErrBadPadding        = errors.New("transport: invalid padding length")
	ErrBadMac            = errors.New("transport: mac verification failed")
	ErrProtocolViolation = errors.New("transport: protocol violation")
)

const (
	// DefaultMaxPacketSize is RFC 4253's recommended minimum a peer
	// must accept.
	DefaultMaxPacketSize = 65536
	// HardMaxPacketSize bounds how large a packet_length this stream
	// will ever allocate for, regardless of configuration.
	HardMaxPacketSize = 262144

	minPaddingLen = 4
)

// directionState holds the cipher/MAC material for one traffic
// direction (read or write), swapped atomically at NEWKEYS.
type directionState struct {
	cipherSpec *sshcrypto.CipherSpec
	cipher     interface{ XORKeyStream(dst, src []byte) }
	macSpec    *sshcrypto.MACSpec
	macKey     []byte
	seq        uint32
}

func (d *directionState) blockLen() int {
	if d.cipherSpec == nil {
		return 8
	}
	if d.cipherSpec.BlockLen > 8 {
		return d.cipherSpec.BlockLen
	}
	return 8
}

// Stream implements the binary packet protocol on top of a net.Conn.
// It is safe for one writer goroutine and one reader goroutine to use
// concurrently; Send is additionally internally serialized by a mutex
// the way xsnet.Conn.Write serializes on hc.m.
type Stream struct {
	conn net.Conn

	wMu sync.Mutex
	w   directionState
	r   directionState

	maxPacketSize uint32

	// RandSource supplies padding bytes; overridable in tests to
	// reproduce literal wire fixtures. Defaults to crypto/rand.Reader.
	RandSource io.Reader
}

// NewStream wraps conn with unencrypted, unauthenticated "none" cipher
// and "none" MAC in both directions, the state every connection starts
// in before the first NEWKEYS.
func NewStream(conn net.Conn) *Stream {
	none, _ := sshcrypto.NewCipher("none")
	noneMac, _ := sshcrypto.NewMAC("none")
	noneStream, _ := none.Stream(nil, nil, sshcrypto.Encrypt)
	noneStreamR, _ := none.Stream(nil, nil, sshcrypto.Decrypt)
	return &Stream{
		conn:          conn,
		w:             directionState{cipherSpec: none, cipher: noneStream, macSpec: noneMac},
		r:             directionState{cipherSpec: none, cipher: noneStreamR, macSpec: noneMac},
		maxPacketSize: DefaultMaxPacketSize,
		RandSource:    rand.Reader,
	}
}

// SetMaxPacketSize overrides the default maximum accepted packet_length
// (the payload+padding portion), clamped to HardMaxPacketSize.
func (s *Stream) SetMaxPacketSize(n uint32) {
	if n > HardMaxPacketSize {
		n = HardMaxPacketSize
	}
	s.maxPacketSize = n
}

// KeyMaterial carries the per-direction cipher/MAC state installed at
// NEWKEYS.
type KeyMaterial struct {
	CipherName string
	CipherKey  []byte
	CipherIV   []byte
	MACName    string
	MACKey     []byte
}

// InstallWriteKeys atomically switches the write direction to newly
// negotiated cipher/MAC state. The sequence number is NOT reset: it is
// monotonic for the lifetime of the connection across rekeys.
func (s *Stream) InstallWriteKeys(km KeyMaterial) error {
	spec, stream, macSpec, err := buildDirection(km, sshcrypto.Encrypt)
	if err != nil {
		return err
	}
	s.wMu.Lock()
	defer s.wMu.Unlock()
	s.w.cipherSpec = spec
	s.w.cipher = stream
	s.w.macSpec = macSpec
	s.w.macKey = km.MACKey
	return nil
}

// InstallReadKeys atomically switches the read direction to newly
// negotiated cipher/MAC state.
func (s *Stream) InstallReadKeys(km KeyMaterial) error {
	spec, stream, macSpec, err := buildDirection(km, sshcrypto.Decrypt)
	if err != nil {
		return err
	}
	s.r.cipherSpec = spec
	s.r.cipher = stream
	s.r.macSpec = macSpec
	s.r.macKey = km.MACKey
	return nil
}

func buildDirection(km KeyMaterial, dir sshcrypto.Direction) (*sshcrypto.CipherSpec, cipherStreamer, *sshcrypto.MACSpec, error) {
	spec, err := sshcrypto.NewCipher(km.CipherName)
	if err != nil {
		return nil, nil, nil, err
	}
	stream, err := spec.Stream(km.CipherKey, km.CipherIV, dir)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "installing cipher")
	}
	macSpec, err := sshcrypto.NewMAC(km.MACName)
	if err != nil {
		return nil, nil, nil, err
	}
	return spec, stream, macSpec, nil
}

type cipherStreamer = interface {
	XORKeyStream(dst, src []byte)
}

// WriteSeq returns the current write-direction sequence number.
func (s *Stream) WriteSeq() uint32 { return s.w.seq }

// ReadSeq returns the current read-direction sequence number.
func (s *Stream) ReadSeq() uint32 { return s.r.seq }

// Send frames, pads, encrypts and (if a MAC is active) authenticates
// payload, then writes the resulting record and advances the write
// sequence number.
func (s *Stream) Send(payload []byte) error {
	s.wMu.Lock()
	defer s.wMu.Unlock()

	block := s.w.blockLen()
	// packet_length = 1 (padding_length byte) + len(payload) + padding
	padLen := block - (5+len(payload))%block
	if padLen < minPaddingLen {
		padLen += block
	}
	packetLen := 1 + len(payload) + padLen
	if uint32(packetLen) > s.maxPacketSize {
		return errors.Wrapf(ErrOversizedPacket, "packet_length=%d max=%d", packetLen, s.maxPacketSize)
	}

	record := make([]byte, 4+packetLen)
	binary.BigEndian.PutUint32(record[0:4], uint32(packetLen))
	record[4] = byte(padLen)
	copy(record[5:5+len(payload)], payload)
	padding := record[5+len(payload):]
	if s.w.cipherSpec.Name == "none" {
		for i := range padding {
			padding[i] = 0xFF
		}
	} else if _, err := io.ReadFull(s.RandSource, padding); err != nil {
		return errors.Wrap(ErrIo, "reading padding bytes")
	}

	var mac []byte
	if s.w.macSpec.Size > 0 {
		mac = computeMac(s.w.macSpec, s.w.macKey, s.w.seq, record)
	}

	s.w.cipher.XORKeyStream(record, record)

	if _, err := s.conn.Write(record); err != nil {
		return errors.Wrap(ErrIo, err.Error())
	}
	if mac != nil {
		if _, err := s.conn.Write(mac); err != nil {
			return errors.Wrap(ErrIo, err.Error())
		}
	}
	s.w.seq++
	return nil
}

// Recv reads, decrypts, validates and returns the next packet's
// payload, advancing the read sequence number.
func (s *Stream) Recv() ([]byte, error) {
	block := s.r.blockLen()

	// The packet_length field is itself enciphered, so the first whole
	// cipher block must be decrypted before packet_length is known.
	// Block-mode ciphers chain their internal IV/counter state across
	// successive XORKeyStream/CryptBlocks calls, so decrypting the
	// first block now and the remainder once packet_length is known
	// produces the same plaintext as decrypting the whole record in
	// one call.
	firstBlock := make([]byte, block)
	if _, err := io.ReadFull(s.conn, firstBlock); err != nil {
		return nil, errors.Wrap(ErrIo, err.Error())
	}
	s.r.cipher.XORKeyStream(firstBlock, firstBlock)
	packetLen := binary.BigEndian.Uint32(firstBlock[0:4])

	if packetLen < uint32(minPaddingLen+1) || uint32(packetLen) > s.maxPacketSize {
		return nil, errors.Wrapf(ErrOversizedPacket, "packet_length=%d max=%d", packetLen, s.maxPacketSize)
	}
	if (4+int(packetLen))%block != 0 {
		return nil, errors.Wrapf(ErrMalformed, "packet_length=%d not aligned to block=%d", packetLen, block)
	}

	rest := make([]byte, packetLen)
	copy(rest, firstBlock[4:])
	if remaining := rest[len(firstBlock)-4:]; len(remaining) > 0 {
		if _, err := io.ReadFull(s.conn, remaining); err != nil {
			return nil, errors.Wrap(ErrIo, err.Error())
		}
		s.r.cipher.XORKeyStream(remaining, remaining)
	}

	padLen := int(rest[0])
	if padLen < minPaddingLen || padLen > int(packetLen)-1 {
		return nil, errors.Wrapf(ErrBadPadding, "padding_length=%d packet_length=%d", padLen, packetLen)
	}
	payloadLen := int(packetLen) - 1 - padLen
	payload := rest[1 : 1+payloadLen]

	if s.r.macSpec.Size > 0 {
		macBuf := make([]byte, s.r.macSpec.Size)
		if _, err := io.ReadFull(s.conn, macBuf); err != nil {
			return nil, errors.Wrap(ErrIo, err.Error())
		}
		full := append(append([]byte{}, firstBlock[0:4]...), rest...)
		want := computeMac(s.r.macSpec, s.r.macKey, s.r.seq, full)
		if !sshcrypto.ConstantTimeCompare(want, macBuf) {
			return nil, errors.Wrap(ErrBadMac, "mac mismatch")
		}
	}

	s.r.seq++
	out := make([]byte, payloadLen)
	copy(out, payload)
	return out, nil
}

func computeMac(spec *sshcrypto.MACSpec, key []byte, seq uint32, plaintextRecord []byte) []byte {
	h := spec.New(key)
	var seqBuf [4]byte
	binary.BigEndian.PutUint32(seqBuf[:], seq)
	h.Write(seqBuf[:])
	h.Write(plaintextRecord)
	return h.Sum(nil)
}

// SetDeadline, SetReadDeadline and SetWriteDeadline delegate to the
// underlying connection, as hkexnet.Conn's do.
func (s *Stream) SetDeadline(t time.Time) error      { return s.conn.SetDeadline(t) }
func (s *Stream) SetReadDeadline(t time.Time) error  { return s.conn.SetReadDeadline(t) }
func (s *Stream) SetWriteDeadline(t time.Time) error { return s.conn.SetWriteDeadline(t) }

// Close closes the underlying connection.
func (s *Stream) Close() error { return s.conn.Close() }

// Conn returns the underlying net.Conn, for callers that need to adjust
// deadlines or inspect the peer address.
func (s *Stream) Conn() net.Conn { return s.conn }
