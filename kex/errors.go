// errors.go - key exchange error taxonomy

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package kex

import "github.com/pkg/errors"

var (
	ErrUnexpectedMessage   = errors.New("kex: unexpected message type")
	ErrMalformed           = errors.New("kex: malformed message")
	ErrNoAlgorithmInCommon = errors.New("kex: no algorithm in common")
	ErrSignatureInvalid    = errors.New("kex: host key signature invalid")
	ErrUntrustedHost       = errors.New("kex: host identity rejected")
	ErrCryptoFailure       = errors.New("kex: crypto operation failed")
)
