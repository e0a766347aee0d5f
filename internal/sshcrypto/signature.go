// signature.go - host key parsing and signature verification

// Copyright (c) 2017-2020 the eessh authors
// Licensed under the terms of the MIT license (see LICENSE in this
// distribution)

package sshcrypto

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"

	"github.com/pkg/errors"

	"blitter.com/go/eessh/internal/wire"
)

// ErrUnknownHostKeyAlg is returned when a host key blob names an
// algorithm this transport does not recognize.
var ErrUnknownHostKeyAlg = errors.New("sshcrypto: unknown host key algorithm")

// ErrSignatureInvalid is returned when a signature fails to verify
// against a host key.
var ErrSignatureInvalid = errors.New("sshcrypto: signature invalid")

// HostKey is a parsed RFC 4253 section 6.6 public key blob.
type HostKey struct {
	Algorithm string
	RSA       *rsa.PublicKey
	Raw       []byte
}

// ParseHostKey parses the wire-format host key blob:
// string "ssh-rsa" | mpint e | mpint n.
func ParseHostKey(blob []byte) (*HostKey, error) {
	r := wire.NewReader(blob)
	algBytes, err := r.String()
	if err != nil {
		return nil, errors.Wrap(err, "host key: reading algorithm name")
	}
	alg := string(algBytes)
	switch alg {
	case "ssh-rsa", "rsa-sha2-256", "rsa-sha2-512":
		e, err := r.MPInt()
		if err != nil {
			return nil, errors.Wrap(err, "host key: reading rsa e")
		}
		n, err := r.MPInt()
		if err != nil {
			return nil, errors.Wrap(err, "host key: reading rsa n")
		}
		return &HostKey{
			Algorithm: alg,
			RSA:       &rsa.PublicKey{E: int(e.Int64()), N: n},
			Raw:       blob,
		}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownHostKeyAlg, "alg=%q", alg)
	}
}

// VerifySignature checks an RFC 4253 section 6.6 signature blob
// (string algorithm-name | string signature-blob) against digest,
// using the hash implied by the signature algorithm name: ssh-rsa uses
// SHA-1, rsa-sha2-256/512 use SHA-256/512 per RFC 8332.
func (k *HostKey) VerifySignature(digest []byte, sigBlob []byte) error {
	r := wire.NewReader(sigBlob)
	algBytes, err := r.String()
	if err != nil {
		return errors.Wrap(err, "signature: reading algorithm name")
	}
	sig, err := r.String()
	if err != nil {
		return errors.Wrap(err, "signature: reading signature blob")
	}
	alg := string(algBytes)

	var hashID crypto.Hash
	switch alg {
	case "ssh-rsa":
		hashID = crypto.SHA1
	case "rsa-sha2-256":
		hashID = crypto.SHA256
	case "rsa-sha2-512":
		hashID = crypto.SHA512
	default:
		return errors.Wrapf(ErrUnknownHostKeyAlg, "sig-alg=%q", alg)
	}
	if k.RSA == nil {
		return errors.New("signature: host key has no RSA public key")
	}

	h := digest
	switch hashID {
	case crypto.SHA1:
		sum := shaSum1(digest)
		h = sum[:]
	case crypto.SHA256:
		sum := sha256.Sum256(digest)
		h = sum[:]
	case crypto.SHA512:
		sum := sha512.Sum512(digest)
		h = sum[:]
	}

	if err := rsa.VerifyPKCS1v15(k.RSA, hashID, h, sig); err != nil {
		return errors.Wrap(ErrSignatureInvalid, err.Error())
	}
	return nil
}

func shaSum1(b []byte) [20]byte {
	hf, _ := NewHash("sha1")
	hh := hf()
	hh.Write(b)
	var out [20]byte
	copy(out[:], hh.Sum(nil))
	return out
}
