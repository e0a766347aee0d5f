// derive.go - RFC 4253 section 7.2 key derivation

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package kex

import (
	"hash"
	"math/big"

	"blitter.com/go/eessh/internal/wire"
)

// deriveKey computes one of the six key-material values defined by
// RFC 4253 section 7.2:
//
//	K1 = HASH(K || H || X || session_id)
//	Ki = HASH(K || H || K1 || K2 || ... || K(i-1))   for i > 1
//
// grown by repeated hashing until it is at least n bytes long.
func deriveKey(newHash func() hash.Hash, k *big.Int, h, sessionID []byte, label byte, n int) []byte {
	kEnc := mpintBytes(k)

	k1 := func() []byte {
		hh := newHash()
		hh.Write(kEnc)
		hh.Write(h)
		hh.Write([]byte{label})
		hh.Write(sessionID)
		return hh.Sum(nil)
	}()

	out := append([]byte{}, k1...)
	for len(out) < n {
		hh := newHash()
		hh.Write(kEnc)
		hh.Write(h)
		hh.Write(out)
		out = append(out, hh.Sum(nil)...)
	}
	return out[:n]
}

// Key derivation labels, RFC 4253 section 7.2.
const (
	labelIVClientToServer  = 'A'
	labelIVServerToClient  = 'B'
	labelKeyClientToServer = 'C'
	labelKeyServerToClient = 'D'
	labelMACClientToServer = 'E'
	labelMACServerToClient = 'F'
)

// mpintBytes returns k's wire-format mpint encoding (length-prefixed),
// which is what section 7.2 means by "K" in the concatenation order.
func mpintBytes(k *big.Int) []byte {
	w := &wire.Buffer{}
	w.PutMPInt(k)
	return w.Bytes()
}
