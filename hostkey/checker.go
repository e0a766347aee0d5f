// checker.go - host-identity accept/reject hook

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

// Package hostkey implements the pluggable host-identity verification
// hook this transport calls after a KEXDH_REPLY signature verifies
// cryptographically, plus a default flat-file store, grounded on
// xspasswd's CSV-based user-record file.
package hostkey

// Checker decides whether a server's host key is acceptable for a given
// host:port. It is consulted only after the signature over the
// exchange hash has already verified; Checker governs trust, not
// cryptographic validity.
type Checker interface {
	// Check returns nil to proceed with the connection, or a non-nil
	// error (conventionally ErrRejected) to abort it. Implementations
	// that want to persist a newly-seen key (trust-on-first-use)
	// should do so before returning nil.
	Check(host string, port int, algorithm string, keyBlob []byte) error
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(host string, port int, algorithm string, keyBlob []byte) error

func (f CheckerFunc) Check(host string, port int, algorithm string, keyBlob []byte) error {
	return f(host, port, algorithm, keyBlob)
}
