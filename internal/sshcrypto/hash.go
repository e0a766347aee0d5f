// hash.go - tagged-variant hash lookup by wire name

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package sshcrypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/pkg/errors"
)

// ErrUnknownHash is returned by NewHash for an unrecognized name.
var ErrUnknownHash = errors.New("sshcrypto: unknown hash algorithm")

var hashes = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// NewHash looks up the hash constructor used by a KEX or signature
// algorithm's exchange-hash/digest step.
func NewHash(name string) (func() hash.Hash, error) {
	h, ok := hashes[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHash, "name=%q", name)
	}
	return h, nil
}
