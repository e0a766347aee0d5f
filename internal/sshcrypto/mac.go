// mac.go - tagged-variant MAC lookup by wire name

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package sshcrypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/pkg/errors"
)

// ErrUnknownMAC is returned by NewMAC for an unrecognized name.
var ErrUnknownMAC = errors.New("sshcrypto: unknown mac algorithm")

// MACSpec describes a negotiated MAC algorithm: its wire name, full
// digest length and key length.
type MACSpec struct {
	Name         string
	Size, KeyLen int
	newHash      func(key []byte) hash.Hash
}

// New builds the keyed hash.Hash computing this MAC.
func (m *MACSpec) New(key []byte) hash.Hash { return m.newHash(key) }

var macs = map[string]*MACSpec{
	"none": {
		Name: "none", Size: 0, KeyLen: 0,
		newHash: func(key []byte) hash.Hash { return nil },
	},
	"hmac-sha2-256": {
		Name: "hmac-sha2-256", Size: sha256.Size, KeyLen: sha256.Size,
		newHash: func(key []byte) hash.Hash { return hmac.New(sha256.New, key) },
	},
	"hmac-sha2-512": {
		Name: "hmac-sha2-512", Size: sha512.Size, KeyLen: sha512.Size,
		newHash: func(key []byte) hash.Hash { return hmac.New(sha512.New, key) },
	},
}

// NewMAC looks up a MACSpec by its RFC 4253 wire name.
func NewMAC(name string) (*MACSpec, error) {
	m, ok := macs[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMAC, "name=%q", name)
	}
	return m, nil
}

// MACNames returns all recognized MAC names, required names first.
func MACNames() []string {
	return []string{"hmac-sha2-256", "hmac-sha2-512"}
}

// ConstantTimeCompare reports whether a and b are equal using an
// XOR-accumulate pass with no early return, so comparison time does not
// leak how many leading bytes matched. Unlike crypto/subtle's version
// this never short-circuits on a length mismatch either: it folds the
// length difference into the accumulator so callers on a MAC-verify hot
// path can compare truncated prefixes without an extra allocation.
func ConstantTimeCompare(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var v byte
	for i := 0; i < n; i++ {
		var ca, cb byte
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		v |= ca ^ cb
	}
	if len(a) != len(b) {
		v |= 1
	}
	return v == 0
}
